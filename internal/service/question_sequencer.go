package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/repository"
	"github.com/noah-isme/interview-agent-api/internal/scoring"
	"github.com/noah-isme/interview-agent-api/pkg/ai"
)

// SoftSkills condition HR question generation.
var SoftSkills = []string{"communication", "teamwork", "problem-solving"}

// QuestionSequencer produces the ordered question set of an interview and resolves
// the question at a given position.
type QuestionSequencer interface {
	Generate(ctx context.Context, jobRole string, skills []string, technical, hr int) ([]models.Question, error)
	Next(ctx context.Context, interviewID string, index int) (*models.Question, error)
	All(ctx context.Context, interviewID string) ([]models.Question, error)
	Preview(ctx context.Context, req dto.QuestionPreviewRequest) ([]dto.QuestionResponse, error)
	Stats(interview models.Interview, questions []models.Question) dto.QuestionStatsResponse
}

type questionSequencer struct {
	repo   repository.QuestionRepository
	oracle ai.Oracle
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewQuestionSequencer constructs a question sequencer.
func NewQuestionSequencer(repo repository.QuestionRepository, oracle ai.Oracle, logger zerolog.Logger) QuestionSequencer {
	return &questionSequencer{
		repo:   repo,
		oracle: oracle,
		logger: logger.With().Str("component", "question_sequencer").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/interview-agent-api/internal/service/questions"),
	}
}

// Generate returns technical questions at orders 0..technical-1 followed by HR questions
// at technical..technical+hr-1. Both batches are requested concurrently. Nothing is stored.
func (s *questionSequencer) Generate(ctx context.Context, jobRole string, skills []string, technical, hr int) ([]models.Question, error) {
	ctx, span := s.tracer.Start(ctx, "questions.generate", trace.WithAttributes(
		attribute.String("interview.job_role", jobRole),
		attribute.Int("questions.technical", technical),
		attribute.Int("questions.hr", hr),
	))
	defer span.End()

	questions := make([]models.Question, technical+hr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.generateBatch(gctx, ai.QuestionRequest{
			JobRole: jobRole,
			Skills:  skills,
			Round:   ai.RoundTechnical,
			Count:   technical,
		}, questions[:technical], 0)
	})
	g.Go(func() error {
		return s.generateBatch(gctx, ai.QuestionRequest{
			JobRole: jobRole,
			Skills:  SoftSkills,
			Round:   ai.RoundHR,
			Count:   hr,
		}, questions[technical:], technical)
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.Error().Err(err).Str("job_role", jobRole).Msg("question generation failed")
		return nil, wrap(ErrQuestionGeneration, err)
	}

	return questions, nil
}

// generateBatch fills dst with one round's questions, numbering them from offset.
func (s *questionSequencer) generateBatch(ctx context.Context, req ai.QuestionRequest, dst []models.Question, offset int) error {
	if req.Count == 0 {
		return nil
	}

	generated, err := s.oracle.GenerateQuestions(ctx, req)
	if err != nil {
		return fmt.Errorf("%s questions: %w", req.Round, err)
	}
	if len(generated) < req.Count {
		return fmt.Errorf("%s questions: got %d of %d: %w", req.Round, len(generated), req.Count, ai.ErrMalformedResponse)
	}

	for i := range dst {
		dst[i] = toQuestionModel(generated[i], req.Round, offset+i)
	}
	return nil
}

func toQuestionModel(generated ai.GeneratedQuestion, round string, order int) models.Question {
	return models.Question{
		Order:            order,
		RoundType:        round,
		Text:             strings.TrimSpace(generated.Text),
		Difficulty:       strings.ToLower(strings.TrimSpace(generated.Difficulty)),
		ExpectedKeywords: append([]string(nil), generated.ExpectedKeywords...),
	}
}

func (s *questionSequencer) All(ctx context.Context, interviewID string) ([]models.Question, error) {
	questions, err := s.repo.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, storeFailure(err)
	}

	sortQuestions(questions)
	return questions, nil
}

// Next returns the question at position index, or nil once every question was served.
func (s *questionSequencer) Next(ctx context.Context, interviewID string, index int) (*models.Question, error) {
	questions, err := s.All(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(questions) {
		return nil, nil
	}

	question := questions[index]
	return &question, nil
}

func (s *questionSequencer) Preview(ctx context.Context, req dto.QuestionPreviewRequest) ([]dto.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "questions.preview", trace.WithAttributes(
		attribute.String("questions.round", req.RoundType),
		attribute.Int("questions.count", req.Count),
	))
	defer span.End()

	skills := req.Skills
	if req.RoundType == ai.RoundHR && len(skills) == 0 {
		skills = SoftSkills
	}

	generated, err := s.oracle.GenerateQuestions(ctx, ai.QuestionRequest{
		JobRole: req.JobRole,
		Skills:  skills,
		Round:   req.RoundType,
		Count:   req.Count,
	})
	if err == nil && len(generated) < req.Count {
		err = fmt.Errorf("got %d of %d questions: %w", len(generated), req.Count, ai.ErrMalformedResponse)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		return nil, wrap(ErrQuestionGeneration, err)
	}

	responses := make([]dto.QuestionResponse, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		responses = append(responses, dto.NewQuestionDetailResponse(toQuestionModel(generated[i], req.RoundType, i), req.Count))
	}
	return responses, nil
}

func (s *questionSequencer) Stats(interview models.Interview, questions []models.Question) dto.QuestionStatsResponse {
	stats := dto.QuestionStatsResponse{
		InterviewID:    interview.ID,
		TotalQuestions: len(questions),
		ByDifficulty: map[string]int{
			models.DifficultyEasy:   0,
			models.DifficultyMedium: 0,
			models.DifficultyHard:   0,
		},
		AnsweredQuestions: interview.CurrentQuestionIndex,
		CurrentRound:      interview.CurrentRound(),
	}

	for _, question := range questions {
		switch question.RoundType {
		case models.RoundTechnical:
			stats.TechnicalQuestions++
		case models.RoundHR:
			stats.HRQuestions++
		}
		stats.ByDifficulty[question.Difficulty]++
	}

	if stats.TotalQuestions > 0 {
		stats.CompletionPercentage = scoring.Round2(float64(stats.AnsweredQuestions) / float64(stats.TotalQuestions) * 100)
	}

	return stats
}

// sortQuestions orders by position; id breaks ties so the order is total.
func sortQuestions(questions []models.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
}
