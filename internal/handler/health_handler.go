package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/interview-agent-api/internal/config"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// DependencyCheck reports whether a backing service is reachable.
type DependencyCheck func(ctx context.Context) error

// HealthCheck returns a handler that reports application and dependency health.
func HealthCheck(cfg config.Config, checks map[string]DependencyCheck) fiber.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(names) > 0 {
			ctx, cancel := context.WithTimeout(requestContext(c), 2*time.Second)
			defer cancel()

			payload.Dependencies = make(map[string]string, len(names))
			for _, name := range names {
				if err := checks[name](ctx); err != nil {
					payload.Dependencies[name] = "unavailable"
					payload.Status = "degraded"
					continue
				}
				payload.Dependencies[name] = "ok"
			}
		}

		if payload.Status != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
				Success: false,
				Message: "service degraded",
				Data:    payload,
			})
		}
		return utils.OK(c, payload, "service healthy", nil)
	}
}
