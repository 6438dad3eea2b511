package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/interview-agent-api/internal/config"
	"github.com/noah-isme/interview-agent-api/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "Interview Agent API", AppEnv: "test"}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, map[string]handler.DependencyCheck{
		"database": func(context.Context) error { return nil },
	}))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	var health handler.HealthResponse
	decodeData(t, payload, &health)
	require.True(t, payload.Success)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, cfg.AppName, health.Service)
	require.Equal(t, "ok", health.Dependencies["database"])
	require.WithinDuration(t, time.Now().UTC(), health.Timestamp, 2*time.Second)
}

func TestHealthCheckDegraded(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{}, map[string]handler.DependencyCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	var health handler.HealthResponse
	decodeData(t, payload, &health)
	require.False(t, payload.Success)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "unavailable", health.Dependencies["redis"])
}
