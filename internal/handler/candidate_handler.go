package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/middleware"
	"github.com/noah-isme/interview-agent-api/internal/service"
	"github.com/noah-isme/interview-agent-api/internal/utils"
)

// CandidateHandler serves the candidate side: profile and the interview session.
type CandidateHandler struct {
	candidates service.CandidateService
	interviews service.InterviewService
	logger     zerolog.Logger
}

// NewCandidateHandler constructs a candidate handler.
func NewCandidateHandler(candidates service.CandidateService, interviews service.InterviewService, logger zerolog.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		interviews: interviews,
		logger:     logger.With().Str("component", "candidate_handler").Logger(),
	}
}

// Register wires candidate routes. The router is expected to enforce the candidate role.
func (h *CandidateHandler) Register(router fiber.Router) {
	router.Get("/me", h.profile)
	router.Put("/me", h.updateProfile)

	router.Get("/interviews", h.listInterviews)
	router.Get("/interviews/:id", h.getInterview)
	router.Get("/interviews/:id/status", h.progress)
	router.Post("/interviews/:id/start", h.start)
	router.Get("/interviews/:id/current-question", h.currentQuestion)
	router.Get("/interviews/:id/questions/stats", h.questionStats)
	router.Post("/interviews/:id/answers", h.submitAnswer)
	router.Post("/interviews/:id/video", h.uploadVideo)
	router.Get("/questions/:id", h.question)
}

func (h *CandidateHandler) profile(c *fiber.Ctx) error {
	resp, err := h.candidates.Profile(requestContext(c), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "candidate profile", nil)
}

func (h *CandidateHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.CandidateUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.candidates.UpdateProfile(requestContext(c), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "profile updated", nil)
}

func (h *CandidateHandler) listInterviews(c *fiber.Ctx) error {
	items, err := h.interviews.ListForCandidate(requestContext(c), middleware.UserID(c), statusQuery(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, items, "interviews", fiber.Map{"count": len(items)})
}

func (h *CandidateHandler) getInterview(c *fiber.Ctx) error {
	resp, err := h.interviews.Get(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview", nil)
}

func (h *CandidateHandler) progress(c *fiber.Ctx) error {
	resp, err := h.interviews.Progress(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview status", nil)
}

func (h *CandidateHandler) start(c *fiber.Ctx) error {
	resp, err := h.interviews.Start(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "interview started", nil)
}

func (h *CandidateHandler) currentQuestion(c *fiber.Ctx) error {
	resp, err := h.interviews.CurrentQuestion(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "current question", nil)
}

func (h *CandidateHandler) questionStats(c *fiber.Ctx) error {
	resp, err := h.interviews.QuestionStats(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "question statistics", nil)
}

func (h *CandidateHandler) submitAnswer(c *fiber.Ctx) error {
	var req dto.AnswerSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.interviews.SubmitAnswer(requestContext(c), middleware.UserID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, resp.Message, nil)
}

func (h *CandidateHandler) uploadVideo(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return badRequest(c, "video file is required")
	}

	resp, err := h.interviews.UploadVideoChunk(requestContext(c), middleware.UserID(c), c.Params("id"), file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.Created(c, resp, "video chunk stored")
}

func (h *CandidateHandler) question(c *fiber.Ctx) error {
	resp, err := h.interviews.Question(requestContext(c), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.OK(c, resp, "question", nil)
}
