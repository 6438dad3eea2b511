package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// CompanyHandler serves interview management for companies.
type CompanyHandler struct {
	interviews service.InterviewService
	candidates service.CandidateService
	logger     zerolog.Logger
}

// NewCompanyHandler constructs a company handler.
func NewCompanyHandler(interviews service.InterviewService, candidates service.CandidateService, logger zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		interviews: interviews,
		candidates: candidates,
		logger:     logger.With().Str("component", "company_handler").Logger(),
	}
}

// Register wires company routes. The router is expected to enforce the company role.
func (h *CompanyHandler) Register(router fiber.Router) {
	router.Post("/interviews", h.create)
	router.Get("/interviews", h.list)
	router.Get("/interviews/:id", h.get)
	router.Get("/interviews/:id/status", h.progress)
	router.Post("/interviews/:id/cancel", h.cancel)
	router.Post("/interviews/:id/retry", h.retry)
	router.Get("/interviews/:id/questions", h.questions)
	router.Get("/interviews/:id/questions/stats", h.questionStats)
	router.Post("/questions/preview", h.preview)
	router.Get("/candidates/:id", h.candidate)
}

func (h *CompanyHandler) create(c *fiber.Ctx) error {
	var req dto.InterviewCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.interviews.Create(requestContext(c), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, resp, "interview created")
}

func (h *CompanyHandler) list(c *fiber.Ctx) error {
	items, err := h.interviews.ListForCompany(requestContext(c), middleware.UserID(c), statusQuery(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, items, "interviews", fiber.Map{"count": len(items)})
}

func (h *CompanyHandler) get(c *fiber.Ctx) error {
	resp, err := h.interviews.Get(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview", nil)
}

func (h *CompanyHandler) progress(c *fiber.Ctx) error {
	resp, err := h.interviews.Progress(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview status", nil)
}

func (h *CompanyHandler) cancel(c *fiber.Ctx) error {
	var req dto.InterviewCancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request payload")
		}
	}

	resp, err := h.interviews.Cancel(requestContext(c), middleware.UserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview cancelled", nil)
}

func (h *CompanyHandler) retry(c *fiber.Ctx) error {
	resp, err := h.interviews.RetryProvisioning(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "questions generated", nil)
}

func (h *CompanyHandler) questions(c *fiber.Ctx) error {
	items, err := h.interviews.Questions(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, items, "questions", fiber.Map{"count": len(items)})
}

func (h *CompanyHandler) questionStats(c *fiber.Ctx) error {
	resp, err := h.interviews.QuestionStats(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "question statistics", nil)
}

func (h *CompanyHandler) preview(c *fiber.Ctx) error {
	var req dto.QuestionPreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	items, err := h.interviews.PreviewQuestions(requestContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, items, "question preview", fiber.Map{"count": len(items)})
}

func (h *CompanyHandler) candidate(c *fiber.Ctx) error {
	resp, err := h.candidates.Details(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "candidate details", nil)
}
