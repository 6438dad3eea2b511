package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/interview-agent-api/internal/config"
	"github.com/noah-isme/interview-agent-api/internal/handler"
	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/observability"
	"github.com/noah-isme/interview-agent-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CandidateHandler  *handler.CandidateHandler
	CompanyHandler    *handler.CompanyHandler
	EvaluationHandler *handler.EvaluationHandler
	LiveHandler       *handler.LiveHandler
	HealthChecks      map[string]handler.DependencyCheck
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Candidate session
	if deps.CandidateHandler != nil {
		candidate := api.Group("/candidate", jwtMiddleware, middleware.RequireRole(service.RoleCandidate))
		deps.CandidateHandler.Register(candidate)
	}

	// Company console: interviews, evaluations and live progress
	company := api.Group("/company", jwtMiddleware, middleware.RequireRole(service.RoleCompany))
	if deps.CompanyHandler != nil {
		deps.CompanyHandler.Register(company)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(company)
	}
	if deps.LiveHandler != nil {
		deps.LiveHandler.Register(company)
	}
}
