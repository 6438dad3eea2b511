package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

const kindInternal = "internal"

func statusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindInvalidState, service.KindConflict:
		return fiber.StatusConflict
	case service.KindOracleFailure:
		return fiber.StatusBadGateway
	case service.KindStoreFailure:
		return fiber.StatusServiceUnavailable
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps a service error onto the error envelope. Internal causes are
// logged, never returned.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	log := requestLogger(logger, c)

	var serviceErr *service.Error
	if !errors.As(err, &serviceErr) {
		log.Error().Err(err).Msg("unclassified failure")
		return utils.FailWithKind(c, fiber.StatusInternalServerError, kindInternal, "internal server error", nil)
	}

	status := statusForKind(serviceErr.Kind)
	if errors.Is(err, service.ErrMediaTooLarge) {
		status = fiber.StatusRequestEntityTooLarge
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("kind", string(serviceErr.Kind)).Msg("request failed")
	default:
		log.Debug().Err(err).Str("kind", string(serviceErr.Kind)).Msg("request rejected")
	}

	var details interface{}
	if len(serviceErr.Details) > 0 {
		details = serviceErr.Details
	} else if fields := validationDetails(err); len(fields) > 0 {
		details = fields
	}

	return utils.FailWithKind(c, status, string(serviceErr.Kind), serviceErr.Message, details)
}

// validationDetails lists failing fields by their JSON name.
func validationDetails(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[toSnake(fieldErr.Field())] = fieldErr.Tag()
	}
	return fields
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.FailWithKind(c, fiber.StatusBadRequest, string(service.KindValidation), message, nil)
}

func principalFromContext(c *fiber.Ctx) service.Principal {
	return service.Principal{
		ID:   middleware.UserID(c),
		Role: middleware.UserRole(c),
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func statusQuery(c *fiber.Ctx) string {
	return strings.ToLower(strings.TrimSpace(c.Query("status")))
}
