package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderCorrelationID carries the request correlation identifier.
const HeaderCorrelationID = "X-Correlation-ID"

const localCorrelationID = "correlation_id"

type correlationIDKey struct{}

// CorrelationID ensures every request carries a correlation identifier. An incoming
// X-Correlation-ID or X-Request-ID is reused; otherwise a UUID is minted.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals(localCorrelationID, incoming)
		c.Set(HeaderCorrelationID, incoming)
		c.SetUserContext(ContextWithCorrelation(c.UserContext(), incoming))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier from ctx, if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetCorrelationID returns the correlation identifier bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(localCorrelationID).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation attaches the correlation identifier to ctx.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}
