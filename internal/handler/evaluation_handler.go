package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// EvaluationHandler serves evaluation reports to companies.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires evaluation routes under the company group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/interviews/:id/evaluation", h.generate)
	router.Get("/interviews/:id/evaluation", h.get)
	router.Get("/interviews/:id/evaluation/status", h.status)
	router.Delete("/interviews/:id/evaluation", h.delete)
	router.Get("/evaluations", h.summary)
	router.Get("/candidates/:id/evaluations", h.candidateSummary)
}

func (h *EvaluationHandler) generate(c *fiber.Ctx) error {
	resp, created, err := h.service.Trigger(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if created {
		return utils.Created(c, resp, "evaluation generated")
	}
	return utils.OK(c, resp, "evaluation already exists", nil)
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	resp, err := h.service.Get(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "evaluation", nil)
}

func (h *EvaluationHandler) status(c *fiber.Ctx) error {
	resp, err := h.service.Status(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "evaluation status", nil)
}

func (h *EvaluationHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, nil, "evaluation deleted", nil)
}

func (h *EvaluationHandler) summary(c *fiber.Ctx) error {
	items, err := h.service.CompanySummary(requestContext(c), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, items, "evaluations", fiber.Map{"count": len(items)})
}

func (h *EvaluationHandler) candidateSummary(c *fiber.Ctx) error {
	resp, err := h.service.CandidateSummary(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "candidate evaluation summary", nil)
}
