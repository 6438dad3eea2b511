package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/handler"
	"github.com/noah-isme/interview-agent-api/internal/service"
)

type mockInterviewService struct {
	service.InterviewService

	err           error
	lastCandidate string
	lastCompany   string
	lastPrincipal service.Principal
	lastAnswer    dto.AnswerSubmitRequest
	lastCreate    dto.InterviewCreateRequest
	answer        dto.AnswerSubmitResponse
}

func (m *mockInterviewService) Start(_ context.Context, candidateID, interviewID string) (dto.QuestionResponse, error) {
	m.lastCandidate = candidateID
	if m.err != nil {
		return dto.QuestionResponse{}, m.err
	}
	return dto.QuestionResponse{ID: "q-0", InterviewID: interviewID, QuestionNumber: 1, TotalQuestions: 13}, nil
}

func (m *mockInterviewService) SubmitAnswer(_ context.Context, candidateID, _ string, req dto.AnswerSubmitRequest) (dto.AnswerSubmitResponse, error) {
	m.lastCandidate = candidateID
	m.lastAnswer = req
	if m.err != nil {
		return dto.AnswerSubmitResponse{}, m.err
	}
	return m.answer, nil
}

func (m *mockInterviewService) Get(_ context.Context, principal service.Principal, interviewID string) (dto.InterviewResponse, error) {
	m.lastPrincipal = principal
	if m.err != nil {
		return dto.InterviewResponse{}, m.err
	}
	return dto.InterviewResponse{ID: interviewID, Status: "pending"}, nil
}

func (m *mockInterviewService) ListForCandidate(_ context.Context, candidateID, _ string) ([]dto.InterviewResponse, error) {
	m.lastCandidate = candidateID
	return []dto.InterviewResponse{{ID: "iv-1"}, {ID: "iv-2"}}, m.err
}

func (m *mockInterviewService) Create(_ context.Context, companyID string, req dto.InterviewCreateRequest) (dto.InterviewResponse, error) {
	m.lastCompany = companyID
	m.lastCreate = req
	if m.err != nil {
		return dto.InterviewResponse{}, m.err
	}
	return dto.InterviewResponse{ID: "iv-new", CandidateID: req.CandidateID, CompanyID: companyID, Status: "pending"}, nil
}

func (m *mockInterviewService) Cancel(_ context.Context, companyID, interviewID string, req dto.InterviewCancelRequest) (dto.InterviewResponse, error) {
	m.lastCompany = companyID
	if m.err != nil {
		return dto.InterviewResponse{}, m.err
	}
	return dto.InterviewResponse{ID: interviewID, Status: "cancelled", CancelReason: req.Reason}, nil
}

type mockCandidateService struct {
	service.CandidateService

	lastID string
	err    error
}

func (m *mockCandidateService) Profile(_ context.Context, candidateID string) (dto.CandidateResponse, error) {
	m.lastID = candidateID
	if m.err != nil {
		return dto.CandidateResponse{}, m.err
	}
	return dto.CandidateResponse{ID: candidateID, FullName: "Jane"}, nil
}

func (m *mockCandidateService) Details(ctx context.Context, candidateID string) (dto.CandidateResponse, error) {
	return m.Profile(ctx, candidateID)
}

func newCandidateApp(interviews service.InterviewService, candidates service.CandidateService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/candidate", authenticated("cand-1", service.RoleCandidate))
	handler.NewCandidateHandler(candidates, interviews, zerolog.Nop()).Register(group)
	return app
}

func TestCandidateProfileUsesAuthenticatedID(t *testing.T) {
	candidates := &mockCandidateService{}
	app := newCandidateApp(&mockInterviewService{}, candidates)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/candidate/me", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "cand-1", candidates.lastID)

	payload := decodeEnvelope(t, resp)
	var profile dto.CandidateResponse
	decodeData(t, payload, &profile)
	require.Equal(t, "Jane", profile.FullName)
}

func TestStartInterview(t *testing.T) {
	interviews := &mockInterviewService{}
	app := newCandidateApp(interviews, &mockCandidateService{})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/candidate/interviews/iv-1/start", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "cand-1", interviews.lastCandidate)

	payload := decodeEnvelope(t, resp)
	var question dto.QuestionResponse
	decodeData(t, payload, &question)
	require.Equal(t, 1, question.QuestionNumber)
	require.Equal(t, "iv-1", question.InterviewID)
}

func TestSubmitAnswerReturnsClosingMessage(t *testing.T) {
	interviews := &mockInterviewService{answer: dto.AnswerSubmitResponse{Completed: true, Message: service.ClosingMessage}}
	app := newCandidateApp(interviews, &mockCandidateService{})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/candidate/interviews/iv-1/answers", map[string]any{
		"question_id": "q-12",
		"audio_data":  "UklGRiQAAABXQVZF",
		"answer_text": "final answer",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "q-12", interviews.lastAnswer.QuestionID)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, service.ClosingMessage, payload.Message)
}

func TestSubmitAnswerRejectsMalformedBody(t *testing.T) {
	app := newCandidateApp(&mockInterviewService{}, &mockCandidateService{})

	req := doRaw(t, app, http.MethodPost, "/api/v1/candidate/interviews/iv-1/answers", "{not json")
	require.Equal(t, fiber.StatusBadRequest, req.StatusCode)
}

func TestCandidateGetPassesPrincipal(t *testing.T) {
	interviews := &mockInterviewService{}
	app := newCandidateApp(interviews, &mockCandidateService{})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/candidate/interviews/iv-9", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, service.Principal{ID: "cand-1", Role: service.RoleCandidate}, interviews.lastPrincipal)
}

func TestCandidateListIncludesCount(t *testing.T) {
	app := newCandidateApp(&mockInterviewService{}, &mockCandidateService{})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/candidate/interviews?status=pending", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, float64(2), payload.Meta["count"])
}

func TestServiceErrorMapping(t *testing.T) {
	type sample struct {
		Field string `validate:"required"`
	}
	validationErr := validator.New().Struct(sample{})

	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "not_found", err: service.ErrInterviewNotFound, status: fiber.StatusNotFound, kind: "not_found"},
		{name: "forbidden", err: service.ErrInterviewForbidden, status: fiber.StatusForbidden, kind: "forbidden"},
		{name: "invalid_state", err: service.ErrInterviewNotActive, status: fiber.StatusConflict, kind: "invalid_state"},
		{name: "oracle", err: fmt.Errorf("wrapped: %w", service.ErrQuestionGeneration), status: fiber.StatusBadGateway, kind: "oracle_failure"},
		{name: "store", err: service.ErrStore, status: fiber.StatusServiceUnavailable, kind: "store_failure"},
		{name: "conflict", err: service.ErrEvaluationInProgress, status: fiber.StatusConflict, kind: "conflict"},
		{name: "unauthorized", err: service.ErrInvalidCredentials, status: fiber.StatusUnauthorized, kind: "unauthorized"},
		{name: "too_large", err: service.ErrMediaTooLarge, status: fiber.StatusRequestEntityTooLarge, kind: "validation"},
		{name: "validation", err: &service.Error{Kind: service.KindValidation, Message: "invalid request payload", Err: validationErr}, status: fiber.StatusBadRequest, kind: "validation"},
		{name: "internal", err: errors.New("database exploded"), status: fiber.StatusInternalServerError, kind: "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newCandidateApp(&mockInterviewService{err: tc.err}, &mockCandidateService{})

			resp := doJSON(t, app, http.MethodPost, "/api/v1/candidate/interviews/iv-1/start", nil)
			require.Equal(t, tc.status, resp.StatusCode)

			payload := decodeEnvelope(t, resp)
			require.False(t, payload.Success)
			require.NotNil(t, payload.Error)
			require.Equal(t, tc.kind, payload.Error.Kind)
			require.NotContains(t, payload.Message, "exploded")
			if tc.name == "validation" {
				require.Equal(t, "required", payload.Details["field"])
			}
		})
	}
}

func TestOutOfTurnDetailsAreReturned(t *testing.T) {
	err := service.ErrQuestionOutOfTurn.WithDetails(map[string]string{"expected_question_id": "q-3"})
	app := newCandidateApp(&mockInterviewService{err: err}, &mockCandidateService{})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/candidate/interviews/iv-1/answers", map[string]any{
		"question_id": "q-4",
		"audio_data":  "UklGRiQAAABXQVZF",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	require.Equal(t, "q-3", payload.Details["expected_question_id"])
}
