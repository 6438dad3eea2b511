package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/observability"
	"github.com/noah-isme/interview-agent-api/internal/repository"
	"github.com/noah-isme/interview-agent-api/internal/scoring"
	"github.com/noah-isme/interview-agent-api/pkg/ai"
)

// EvaluationConfig tunes the evaluation pipeline.
type EvaluationConfig struct {
	Concurrency int
	LeaseTTL    time.Duration
	SummaryTTL  time.Duration
	KeyPrefix   string
}

// EvaluationService scores completed interviews and serves the resulting reports.
type EvaluationService interface {
	Generate(ctx context.Context, interviewID string) (dto.EvaluationResponse, bool, error)
	Trigger(ctx context.Context, companyID, interviewID string) (dto.EvaluationResponse, bool, error)
	Get(ctx context.Context, companyID, interviewID string) (dto.EvaluationResponse, error)
	Status(ctx context.Context, companyID, interviewID string) (dto.EvaluationStatusResponse, error)
	Delete(ctx context.Context, companyID, interviewID string) error
	CompanySummary(ctx context.Context, companyID string) ([]dto.EvaluationSummaryItem, error)
	CandidateSummary(ctx context.Context, companyID, candidateID string) (dto.CandidateEvaluationSummary, error)
}

type evaluationService struct {
	repo        repository.EvaluationRepository
	interviews  repository.InterviewRepository
	questions   repository.QuestionRepository
	answers     repository.AnswerRepository
	candidates  repository.CandidateRepository
	oracle      ai.Oracle
	cache       *redis.Client
	events      EventPublisher
	cfg         EvaluationConfig
	logger      zerolog.Logger
	tracer      trace.Tracer
	leaseHolder string
}

// NewEvaluationService constructs the evaluation service. cache and events may be nil.
func NewEvaluationService(
	repo repository.EvaluationRepository,
	interviews repository.InterviewRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	candidates repository.CandidateRepository,
	oracle ai.Oracle,
	cache *redis.Client,
	events EventPublisher,
	cfg EvaluationConfig,
	logger zerolog.Logger,
) EvaluationService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 10 * time.Minute
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 2 * time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "interview"
	}
	if events == nil {
		events = noopPublisher{}
	}

	return &evaluationService{
		repo:        repo,
		interviews:  interviews,
		questions:   questions,
		answers:     answers,
		candidates:  candidates,
		oracle:      oracle,
		cache:       cache,
		events:      events,
		cfg:         cfg,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/interview-agent-api/internal/service/evaluation"),
		leaseHolder: uuid.NewString(),
	}
}

// Generate evaluates a completed interview once. An existing evaluation is returned
// unchanged with created=false.
func (s *evaluationService) Generate(ctx context.Context, interviewID string) (dto.EvaluationResponse, bool, error) {
	interview, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return dto.EvaluationResponse{}, false, notFoundOr(err, ErrInterviewNotFound)
	}
	return s.generate(ctx, interview)
}

func (s *evaluationService) Trigger(ctx context.Context, companyID, interviewID string) (dto.EvaluationResponse, bool, error) {
	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return dto.EvaluationResponse{}, false, err
	}
	return s.generate(ctx, interview)
}

func (s *evaluationService) generate(ctx context.Context, interview models.Interview) (dto.EvaluationResponse, bool, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.generate", trace.WithAttributes(attribute.String("interview.id", interview.ID)))
	defer span.End()

	if interview.Status != models.InterviewStatusCompleted {
		return dto.EvaluationResponse{}, false, ErrInterviewNotComplete
	}

	existing, err := s.repo.GetByInterview(ctx, interview.ID)
	if err == nil {
		return dto.NewEvaluationResponse(existing), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EvaluationResponse{}, false, storeFailure(err)
	}

	release, err := s.acquireLease(ctx, interview.ID)
	if err != nil {
		return dto.EvaluationResponse{}, false, err
	}
	defer release()

	start := time.Now()
	evaluation, err := s.run(ctx, interview)
	if err != nil {
		observability.Evaluations().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		s.logger.Error().Err(err).Str("interview_id", interview.ID).Msg("evaluation failed")
		return dto.EvaluationResponse{}, false, err
	}

	if err := s.repo.Create(ctx, &evaluation); err != nil {
		if !errors.Is(err, repository.ErrEvaluationExists) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			return dto.EvaluationResponse{}, false, storeFailure(err)
		}
		winner, loadErr := s.repo.GetByInterview(ctx, interview.ID)
		if loadErr != nil {
			return dto.EvaluationResponse{}, false, storeFailure(loadErr)
		}
		observability.Evaluations().WithLabelValues("duplicate").Inc()
		return dto.NewEvaluationResponse(winner), false, nil
	}

	observability.Evaluations().WithLabelValues("created").Inc()
	observability.EvaluationDuration().Observe(time.Since(start).Seconds())
	s.invalidateSummary(ctx, interview.CompanyID)

	event := newInterviewEvent(EventEvaluationReady, interview, evaluation.Recommendation)
	s.events.Publish(ctx, event)

	s.logger.Info().
		Str("interview_id", interview.ID).
		Float64("overall_score", evaluation.OverallScore).
		Str("recommendation", evaluation.Recommendation).
		Msg("evaluation stored")

	return dto.NewEvaluationResponse(evaluation), true, nil
}

// run scores every answer and synthesizes the report. Nothing is persisted here.
func (s *evaluationService) run(ctx context.Context, interview models.Interview) (models.InterviewEvaluation, error) {
	questions, err := s.questions.ListByInterview(ctx, interview.ID)
	if err != nil {
		return models.InterviewEvaluation{}, storeFailure(err)
	}
	answers, err := s.answers.ListByInterview(ctx, interview.ID)
	if err != nil {
		return models.InterviewEvaluation{}, storeFailure(err)
	}

	sortQuestions(questions)
	paired, err := pairAnswers(questions, answers, interview.TotalQuestions())
	if err != nil {
		return models.InterviewEvaluation{}, err
	}

	candidateName := ""
	if candidate, err := s.candidates.GetByID(ctx, interview.CandidateID); err == nil {
		candidateName = candidate.FullName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.InterviewEvaluation{}, storeFailure(err)
	}

	items, err := s.scoreAnswers(ctx, questions, paired)
	if err != nil {
		return models.InterviewEvaluation{}, err
	}

	roundScores := make([]scoring.RoundScore, 0, len(items))
	reportItems := make([]ai.ReportItem, 0, len(items))
	for _, item := range items {
		roundScores = append(roundScores, scoring.RoundScore{Round: item.RoundType, Score: item.OverallScore})
		reportItems = append(reportItems, ai.ReportItem{
			Question: item.QuestionText,
			Score:    item.OverallScore,
			Feedback: item.Feedback,
		})
	}
	summary := scoring.Aggregate(roundScores)

	report, err := s.oracle.SynthesizeReport(ctx, ai.ReportRequest{
		CandidateName: candidateName,
		JobRole:       interview.JobRole,
		Evaluations:   reportItems,
	})
	if err != nil {
		return models.InterviewEvaluation{}, wrap(ErrReportSynthesis, err)
	}

	return models.InterviewEvaluation{
		InterviewID:         interview.ID,
		CandidateID:         interview.CandidateID,
		CompanyID:           interview.CompanyID,
		CandidateName:       candidateName,
		JobRole:             interview.JobRole,
		TechnicalScore:      summary.Technical,
		HRScore:             summary.HR,
		OverallScore:        summary.Overall,
		Summary:             report.Summary,
		Recommendation:      ai.NormalizeRecommendation(report.Recommendation),
		VideoRecordingURL:   latestVideoURL(paired),
		QuestionEvaluations: items,
	}, nil
}

// scoreAnswers calls the oracle for every answer with bounded concurrency. The first
// failure cancels the rest.
func (s *evaluationService) scoreAnswers(ctx context.Context, questions []models.Question, answers []models.Answer) ([]models.QuestionEvaluation, error) {
	items := make([]models.QuestionEvaluation, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i := range questions {
		question := questions[i]
		answer := answers[i]
		g.Go(func() error {
			score, err := s.oracle.ScoreAnswer(gctx, ai.ScoreRequest{
				Question:         question.Text,
				Answer:           answer.AnswerText,
				ExpectedKeywords: question.ExpectedKeywords,
			})
			if err != nil {
				return wrap(ErrAnswerScoring, fmt.Errorf("question %d: %w", question.Order, err))
			}

			weighted, err := scoring.WeightedScore(scoring.Criteria{
				Accuracy:      score.Accuracy,
				Relevance:     score.Relevance,
				Communication: score.Communication,
				Clarity:       score.Clarity,
				Confidence:    score.Confidence,
			})
			if err != nil {
				return wrap(ErrAnswerScoring, fmt.Errorf("question %d: %w", question.Order, err))
			}

			items[i] = models.QuestionEvaluation{
				QuestionID:         question.ID,
				Order:              question.Order,
				RoundType:          question.RoundType,
				QuestionText:       question.Text,
				AnswerText:         answer.AnswerText,
				AccuracyScore:      score.Accuracy,
				RelevanceScore:     score.Relevance,
				CommunicationScore: score.Communication,
				ClarityScore:       score.Clarity,
				ConfidenceScore:    score.Confidence,
				OverallScore:       weighted,
				Feedback:           score.Feedback,
				EvaluatedAt:        time.Now().UTC(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// pairAnswers returns the answers aligned with questions. Every question needs exactly one answer.
func pairAnswers(questions []models.Question, answers []models.Answer, expected int) ([]models.Answer, error) {
	if len(questions) == 0 || len(questions) != expected || len(answers) != len(questions) {
		return nil, ErrIncompleteInterview.WithDetails(map[string]string{
			"questions": fmt.Sprint(len(questions)),
			"answers":   fmt.Sprint(len(answers)),
		})
	}

	byQuestion := make(map[string]models.Answer, len(answers))
	for _, answer := range answers {
		if _, dup := byQuestion[answer.QuestionID]; dup {
			return nil, ErrIncompleteInterview
		}
		byQuestion[answer.QuestionID] = answer
	}

	paired := make([]models.Answer, len(questions))
	for i, question := range questions {
		answer, ok := byQuestion[question.ID]
		if !ok {
			return nil, ErrIncompleteInterview.WithDetails(map[string]string{
				"missing_question_id": question.ID,
			})
		}
		paired[i] = answer
	}
	return paired, nil
}

// latestVideoURL picks the last video chunk reference in question order.
func latestVideoURL(answers []models.Answer) string {
	for i := len(answers) - 1; i >= 0; i-- {
		if answers[i].VideoChunkURL != "" {
			return answers[i].VideoChunkURL
		}
	}
	return ""
}

func (s *evaluationService) Get(ctx context.Context, companyID, interviewID string) (dto.EvaluationResponse, error) {
	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	evaluation, err := s.repo.GetByInterview(ctx, interview.ID)
	if err != nil {
		return dto.EvaluationResponse{}, notFoundOr(err, ErrEvaluationNotFound)
	}
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) Status(ctx context.Context, companyID, interviewID string) (dto.EvaluationStatusResponse, error) {
	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return dto.EvaluationStatusResponse{}, err
	}

	status := dto.EvaluationStatusResponse{
		InterviewID:     interview.ID,
		InterviewStatus: interview.Status,
	}

	evaluation, err := s.repo.GetByInterview(ctx, interview.ID)
	switch {
	case err == nil:
		score := evaluation.OverallScore
		createdAt := evaluation.CreatedAt
		status.Evaluated = true
		status.EvaluationID = evaluation.ID
		status.OverallScore = &score
		status.Recommendation = evaluation.Recommendation
		status.EvaluatedAt = &createdAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		status.InProgress = s.leaseHeld(ctx, interview.ID)
	default:
		return dto.EvaluationStatusResponse{}, storeFailure(err)
	}

	return status, nil
}

// Delete removes the evaluation so the interview can be evaluated again.
func (s *evaluationService) Delete(ctx context.Context, companyID, interviewID string) error {
	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByInterview(ctx, interview.ID); err != nil {
		return notFoundOr(err, ErrEvaluationNotFound)
	}

	s.invalidateSummary(ctx, interview.CompanyID)
	s.logger.Info().Str("interview_id", interview.ID).Msg("evaluation deleted")
	return nil
}

func (s *evaluationService) CompanySummary(ctx context.Context, companyID string) ([]dto.EvaluationSummaryItem, error) {
	key := s.summaryKey(companyID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var items []dto.EvaluationSummaryItem
			if err := json.Unmarshal(cached, &items); err == nil {
				observability.SummaryCacheLookups().WithLabelValues("hit").Inc()
				return items, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Str("company_id", companyID).Msg("summary cache read failed")
		}
		observability.SummaryCacheLookups().WithLabelValues("miss").Inc()
	}

	evaluations, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, storeFailure(err)
	}

	items := make([]dto.EvaluationSummaryItem, 0, len(evaluations))
	for _, evaluation := range evaluations {
		items = append(items, dto.NewEvaluationSummaryItem(evaluation))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cfg.SummaryTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("company_id", companyID).Msg("summary cache write failed")
			}
		}
	}

	return items, nil
}

func (s *evaluationService) CandidateSummary(ctx context.Context, companyID, candidateID string) (dto.CandidateEvaluationSummary, error) {
	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return dto.CandidateEvaluationSummary{}, notFoundOr(err, ErrCandidateNotFound)
	}

	interviews, err := s.interviews.List(ctx, repository.InterviewFilter{
		CandidateID: &candidateID,
		CompanyID:   &companyID,
	})
	if err != nil {
		return dto.CandidateEvaluationSummary{}, storeFailure(err)
	}

	evaluations, err := s.repo.ListByCompanyAndCandidate(ctx, companyID, candidateID)
	if err != nil {
		return dto.CandidateEvaluationSummary{}, storeFailure(err)
	}

	summary := dto.CandidateEvaluationSummary{
		CandidateID:         candidate.ID,
		CandidateName:       candidate.FullName,
		TotalInterviews:     len(interviews),
		EvaluatedInterviews: len(evaluations),
		Evaluations:         make([]dto.EvaluationSummaryItem, 0, len(evaluations)),
	}
	if len(evaluations) == 0 {
		return summary, nil
	}

	var technical, hr, overall float64
	for _, evaluation := range evaluations {
		technical += evaluation.TechnicalScore
		hr += evaluation.HRScore
		overall += evaluation.OverallScore
		summary.Evaluations = append(summary.Evaluations, dto.NewEvaluationSummaryItem(evaluation))
	}

	count := float64(len(evaluations))
	summary.AverageTechnicalScore = scoring.Round2(technical / count)
	summary.AverageHRScore = scoring.Round2(hr / count)
	summary.AverageOverallScore = scoring.Round2(overall / count)

	return summary, nil
}

func (s *evaluationService) loadForCompany(ctx context.Context, companyID, interviewID string) (models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return models.Interview{}, notFoundOr(err, ErrInterviewNotFound)
	}
	if !(Principal{ID: companyID, Role: RoleCompany}).CanAccess(interview) {
		return models.Interview{}, ErrInterviewForbidden
	}
	return interview, nil
}

// releaseLeaseScript deletes the lease only while it still carries this node's holder id.
var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// acquireLease claims the in-flight slot for an interview. Without Redis it is a no-op
// and the unique index on the evaluation table is the only guard.
func (s *evaluationService) acquireLease(ctx context.Context, interviewID string) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}

	key := s.leaseKey(interviewID)
	acquired, err := s.cache.SetNX(ctx, key, s.leaseHolder, s.cfg.LeaseTTL).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("interview_id", interviewID).Msg("evaluation lease unavailable; continuing without it")
		return func() {}, nil
	}
	if !acquired {
		return nil, ErrEvaluationInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseLeaseScript.Run(releaseCtx, s.cache, []string{key}, s.leaseHolder).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("interview_id", interviewID).Msg("failed to release evaluation lease")
		}
	}, nil
}

func (s *evaluationService) leaseHeld(ctx context.Context, interviewID string) bool {
	if s.cache == nil {
		return false
	}
	count, err := s.cache.Exists(ctx, s.leaseKey(interviewID)).Result()
	return err == nil && count > 0
}

func (s *evaluationService) invalidateSummary(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.summaryKey(companyID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("company_id", companyID).Msg("failed to invalidate summary cache")
	}
}

func (s *evaluationService) leaseKey(interviewID string) string {
	return s.cfg.KeyPrefix + ":evaluation:lease:" + interviewID
}

func (s *evaluationService) summaryKey(companyID string) string {
	return s.cfg.KeyPrefix + ":evaluation:summary:" + companyID
}
