package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// AuthHandler exposes registration and login for both account types.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register/candidate", h.registerCandidate)
	router.Post("/register/company", h.registerCompany)
	router.Post("/login/candidate", h.loginCandidate)
	router.Post("/login/company", h.loginCompany)
}

func (h *AuthHandler) registerCandidate(c *fiber.Ctx) error {
	var req dto.CandidateRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.service.RegisterCandidate(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, resp, "candidate registered")
}

func (h *AuthHandler) registerCompany(c *fiber.Ctx) error {
	var req dto.CompanyRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.service.RegisterCompany(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, resp, "company registered")
}

func (h *AuthHandler) loginCandidate(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.service.LoginCandidate(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "login successful", nil)
}

func (h *AuthHandler) loginCompany(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.service.LoginCompany(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "login successful", nil)
}
