package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorBody carries the stable error kind clients can branch on.
type ErrorBody struct {
	Kind string `json:"kind"`
}

// OK sends a 200 success envelope.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return Respond(c, fiber.StatusOK, data, message, meta)
}

// Created sends a 201 success envelope.
func Created(c *fiber.Ctx, data interface{}, message string) error {
	return Respond(c, fiber.StatusCreated, data, message, nil)
}

// Respond sends a success envelope with the provided status code.
func Respond(c *fiber.Ctx, status int, data interface{}, message string, meta interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Fail sends an error envelope without a kind.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return FailWithKind(c, status, "", message, details)
}

// FailWithKind sends an error envelope tagged with an error kind.
func FailWithKind(c *fiber.Ctx, status int, kind, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	payload := APIResponse{
		Success: false,
		Message: message,
		Details: details,
	}
	if kind != "" {
		payload.Error = &ErrorBody{Kind: kind}
	}

	return c.Status(status).JSON(payload)
}
