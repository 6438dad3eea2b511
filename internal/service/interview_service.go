package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/observability"
	"github.com/noah-isme/interview-agent-api/internal/repository"
)

// ClosingMessage is returned to the candidate once the last answer is stored.
const ClosingMessage = "Thank you for attending the interview. Your responses have been recorded and will be reviewed by our team. We will get back to you soon."

const answerRecordedMessage = "Answer recorded"

// EvaluationQueue accepts completed interviews for asynchronous evaluation.
type EvaluationQueue interface {
	Enqueue(interviewID string) bool
}

// InterviewConfig holds the question counts frozen into new interviews.
type InterviewConfig struct {
	TechnicalQuestions int
	HRQuestions        int
}

// InterviewService drives the interview lifecycle.
type InterviewService interface {
	Create(ctx context.Context, companyID string, req dto.InterviewCreateRequest) (dto.InterviewResponse, error)
	RetryProvisioning(ctx context.Context, companyID, interviewID string) (dto.InterviewResponse, error)
	Start(ctx context.Context, candidateID, interviewID string) (dto.QuestionResponse, error)
	SubmitAnswer(ctx context.Context, candidateID, interviewID string, req dto.AnswerSubmitRequest) (dto.AnswerSubmitResponse, error)
	UploadVideoChunk(ctx context.Context, candidateID, interviewID string, file *multipart.FileHeader) (dto.MediaUploadResponse, error)
	Cancel(ctx context.Context, companyID, interviewID string, req dto.InterviewCancelRequest) (dto.InterviewResponse, error)

	Get(ctx context.Context, principal Principal, interviewID string) (dto.InterviewResponse, error)
	Progress(ctx context.Context, principal Principal, interviewID string) (dto.InterviewProgressResponse, error)
	CurrentQuestion(ctx context.Context, candidateID, interviewID string) (dto.QuestionResponse, error)
	Question(ctx context.Context, candidateID, questionID string) (dto.QuestionResponse, error)
	ListForCandidate(ctx context.Context, candidateID, status string) ([]dto.InterviewResponse, error)
	ListForCompany(ctx context.Context, companyID, status string) ([]dto.CompanyInterviewResponse, error)
	Questions(ctx context.Context, companyID, interviewID string) ([]dto.QuestionResponse, error)
	QuestionStats(ctx context.Context, principal Principal, interviewID string) (dto.QuestionStatsResponse, error)
	PreviewQuestions(ctx context.Context, req dto.QuestionPreviewRequest) ([]dto.QuestionResponse, error)
}

type interviewService struct {
	repo       repository.InterviewRepository
	candidates repository.CandidateRepository
	companies  repository.CompanyRepository
	questions  repository.QuestionRepository
	sequencer  QuestionSequencer
	media      MediaService
	events     EventPublisher
	queue      EvaluationQueue
	cfg        InterviewConfig
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewInterviewService constructs the interview service. events and queue may be nil.
func NewInterviewService(
	repo repository.InterviewRepository,
	candidates repository.CandidateRepository,
	companies repository.CompanyRepository,
	questions repository.QuestionRepository,
	sequencer QuestionSequencer,
	media MediaService,
	events EventPublisher,
	queue EvaluationQueue,
	cfg InterviewConfig,
	validate *validator.Validate,
	logger zerolog.Logger,
) InterviewService {
	if events == nil {
		events = noopPublisher{}
	}
	if cfg.TechnicalQuestions <= 0 {
		cfg.TechnicalQuestions = 8
	}
	if cfg.HRQuestions <= 0 {
		cfg.HRQuestions = 5
	}

	return &interviewService{
		repo:       repo,
		candidates: candidates,
		companies:  companies,
		questions:  questions,
		sequencer:  sequencer,
		media:      media,
		events:     events,
		queue:      queue,
		cfg:        cfg,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "interview_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/interview-agent-api/internal/service/interview"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create generates the question set before anything is written. When generation fails
// the interview is still stored, marked as failed provisioning, so it can be retried.
func (s *interviewService) Create(ctx context.Context, companyID string, req dto.InterviewCreateRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.InterviewResponse{}, validationFailure(err)
	}

	ctx, span := s.tracer.Start(ctx, "interview.create", trace.WithAttributes(
		attribute.String("company.id", companyID),
		attribute.String("candidate.id", req.CandidateID),
	))
	defer span.End()

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return dto.InterviewResponse{}, notFoundOr(err, ErrCompanyNotFound)
	}

	candidate, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return dto.InterviewResponse{}, notFoundOr(err, ErrCandidateNotFound)
	}

	jobRole := cleanText(s.sanitizer, req.JobRole)
	if jobRole == "" {
		return dto.InterviewResponse{}, &Error{Kind: KindValidation, Message: "job role is required"}
	}

	interview := models.Interview{
		CandidateID:    candidate.ID,
		CompanyID:      companyID,
		JobRole:        jobRole,
		Status:         models.InterviewStatusPending,
		TechnicalCount: s.cfg.TechnicalQuestions,
		HRCount:        s.cfg.HRQuestions,
		Provisioning:   models.ProvisioningReady,
		Notes:          cleanText(s.sanitizer, req.Notes),
		ScheduledAt:    req.ScheduledAt,
	}

	questions, genErr := s.sequencer.Generate(ctx, jobRole, candidate.Skills, interview.TechnicalCount, interview.HRCount)
	if genErr != nil {
		span.RecordError(genErr)
		span.SetStatus(codes.Error, "question generation failed")

		interview.Provisioning = models.ProvisioningFailed
		interview.ProvisioningError = ErrQuestionGeneration.Message
		if err := s.repo.Create(ctx, &interview, nil); err != nil {
			return dto.InterviewResponse{}, storeFailure(err)
		}

		s.logger.Warn().Err(genErr).Str("interview_id", interview.ID).Msg("interview stored without questions")
		return dto.InterviewResponse{}, wrap(ErrQuestionGeneration, genErr).WithDetails(map[string]string{
			"interview_id": interview.ID,
		})
	}

	if err := s.repo.Create(ctx, &interview, questions); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.InterviewResponse{}, storeFailure(err)
	}

	observability.InterviewTransitions().WithLabelValues(models.InterviewStatusPending).Inc()
	s.logger.Info().Str("interview_id", interview.ID).Str("candidate_id", candidate.ID).Int("questions", len(questions)).Msg("interview created")

	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) RetryProvisioning(ctx context.Context, companyID, interviewID string) (dto.InterviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.retry_provisioning", trace.WithAttributes(attribute.String("interview.id", interviewID)))
	defer span.End()

	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	if err := provisioningRetryable(interview); err != nil {
		return dto.InterviewResponse{}, err
	}

	candidate, err := s.candidates.GetByID(ctx, interview.CandidateID)
	if err != nil {
		return dto.InterviewResponse{}, notFoundOr(err, ErrCandidateNotFound)
	}

	questions, genErr := s.sequencer.Generate(ctx, interview.JobRole, candidate.Skills, interview.TechnicalCount, interview.HRCount)
	if genErr != nil {
		span.RecordError(genErr)
		span.SetStatus(codes.Error, "question generation failed")
		if err := s.repo.RecordProvisioningError(ctx, interview.ID, ErrQuestionGeneration.Message); err != nil {
			s.logger.Warn().Err(err).Str("interview_id", interview.ID).Msg("failed to record provisioning error")
		}
		return dto.InterviewResponse{}, wrap(ErrQuestionGeneration, genErr).WithDetails(map[string]string{
			"interview_id": interview.ID,
		})
	}

	if err := s.repo.AttachQuestions(ctx, interview.ID, questions); err != nil {
		if !errors.Is(err, repository.ErrStaleState) {
			return dto.InterviewResponse{}, storeFailure(err)
		}
		current, loadErr := s.repo.GetByID(ctx, interview.ID)
		if loadErr != nil {
			return dto.InterviewResponse{}, storeFailure(loadErr)
		}
		if retryErr := provisioningRetryable(current); retryErr != nil {
			return dto.InterviewResponse{}, retryErr
		}
		return dto.InterviewResponse{}, ErrInterviewNotPending
	}

	interview.Provisioning = models.ProvisioningReady
	interview.ProvisioningError = ""
	s.logger.Info().Str("interview_id", interview.ID).Msg("interview questions provisioned on retry")

	return dto.NewInterviewResponse(interview), nil
}

func provisioningRetryable(interview models.Interview) error {
	if interview.Status != models.InterviewStatusPending {
		return ErrInterviewNotPending
	}
	if interview.Provisioning == models.ProvisioningReady {
		return ErrProvisioningComplete
	}
	return nil
}

func (s *interviewService) Start(ctx context.Context, candidateID, interviewID string) (dto.QuestionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.start", trace.WithAttributes(attribute.String("interview.id", interviewID)))
	defer span.End()

	interview, err := s.loadForCandidate(ctx, candidateID, interviewID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if interview.Status != models.InterviewStatusPending {
		return dto.QuestionResponse{}, ErrInterviewNotPending
	}
	if interview.Provisioning != models.ProvisioningReady {
		return dto.QuestionResponse{}, ErrInterviewNotReady
	}

	startedAt := s.now()
	if err := s.repo.Start(ctx, interview.ID, startedAt); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.QuestionResponse{}, ErrInterviewNotPending
		}
		span.RecordError(err)
		return dto.QuestionResponse{}, storeFailure(err)
	}

	interview.Status = models.InterviewStatusInProgress
	interview.StartedAt = &startedAt
	observability.InterviewTransitions().WithLabelValues(models.InterviewStatusInProgress).Inc()
	s.publish(ctx, EventInterviewStarted, interview, "")

	question, err := s.sequencer.Next(ctx, interview.ID, 0)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if question == nil {
		return dto.QuestionResponse{}, ErrNoCurrentQuestion
	}

	return dto.NewQuestionResponse(*question, interview.TotalQuestions()), nil
}

// SubmitAnswer stores the audio first, then records the answer and advances the
// interview in one compare-and-swap transaction keyed on the current index.
func (s *interviewService) SubmitAnswer(ctx context.Context, candidateID, interviewID string, req dto.AnswerSubmitRequest) (dto.AnswerSubmitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AnswerSubmitResponse{}, validationFailure(err)
	}

	ctx, span := s.tracer.Start(ctx, "interview.submit_answer", trace.WithAttributes(
		attribute.String("interview.id", interviewID),
		attribute.String("question.id", req.QuestionID),
	))
	defer span.End()

	interview, err := s.loadForCandidate(ctx, candidateID, interviewID)
	if err != nil {
		return dto.AnswerSubmitResponse{}, err
	}
	if interview.Status != models.InterviewStatusInProgress {
		return dto.AnswerSubmitResponse{}, ErrInterviewNotActive
	}

	index := interview.CurrentQuestionIndex
	current, err := s.sequencer.Next(ctx, interview.ID, index)
	if err != nil {
		return dto.AnswerSubmitResponse{}, err
	}
	if current == nil {
		return dto.AnswerSubmitResponse{}, ErrNoCurrentQuestion
	}
	if current.ID != req.QuestionID {
		return dto.AnswerSubmitResponse{}, ErrQuestionOutOfTurn.WithDetails(map[string]string{
			"expected_question_id": current.ID,
		})
	}

	media, err := s.media.UploadAudio(ctx, interview.ID, current.ID, req.AudioData)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audio rejected")
		return dto.AnswerSubmitResponse{}, err
	}

	submittedAt := s.now()
	nextIndex := index + 1
	complete := nextIndex >= interview.TotalQuestions()

	answer := models.Answer{
		InterviewID:     interview.ID,
		QuestionID:      current.ID,
		AnswerText:      cleanText(s.sanitizer, req.AnswerText),
		AudioURL:        media.URL,
		VideoChunkURL:   strings.TrimSpace(req.VideoChunkURL),
		DurationSeconds: req.DurationSeconds,
		SubmittedAt:     submittedAt,
	}

	err = s.repo.RecordAnswer(ctx, &answer, repository.AnswerAdvance{
		ExpectedIndex: index,
		Complete:      complete,
		At:            submittedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.AnswerSubmitResponse{}, ErrAnswerAlreadyStored
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.AnswerSubmitResponse{}, storeFailure(err)
	}

	observability.AnswersSubmitted().WithLabelValues(current.RoundType).Inc()
	interview.CurrentQuestionIndex = nextIndex
	s.publish(ctx, EventAnswerSubmitted, interview, "")

	if complete {
		interview.Status = models.InterviewStatusCompleted
		interview.CompletedAt = &submittedAt
		observability.InterviewTransitions().WithLabelValues(models.InterviewStatusCompleted).Inc()
		s.publish(ctx, EventInterviewComplete, interview, "")
		s.enqueueEvaluation(interview.ID)

		return dto.AnswerSubmitResponse{
			Completed: true,
			Message:   ClosingMessage,
			Progress:  dto.NewInterviewProgressResponse(interview),
		}, nil
	}

	next, err := s.sequencer.Next(ctx, interview.ID, nextIndex)
	if err != nil {
		return dto.AnswerSubmitResponse{}, err
	}

	response := dto.AnswerSubmitResponse{
		Message:  answerRecordedMessage,
		Progress: dto.NewInterviewProgressResponse(interview),
	}
	if next != nil {
		view := dto.NewQuestionResponse(*next, interview.TotalQuestions())
		response.NextQuestion = &view
	}
	return response, nil
}

func (s *interviewService) enqueueEvaluation(interviewID string) {
	if s.queue == nil {
		s.logger.Warn().Str("interview_id", interviewID).Msg("no evaluation queue configured; evaluation must be triggered manually")
		return
	}
	if !s.queue.Enqueue(interviewID) {
		s.logger.Warn().Str("interview_id", interviewID).Msg("evaluation queue rejected interview; evaluation must be triggered manually")
	}
}

func (s *interviewService) UploadVideoChunk(ctx context.Context, candidateID, interviewID string, file *multipart.FileHeader) (dto.MediaUploadResponse, error) {
	interview, err := s.loadForCandidate(ctx, candidateID, interviewID)
	if err != nil {
		return dto.MediaUploadResponse{}, err
	}
	if interview.Status != models.InterviewStatusInProgress {
		return dto.MediaUploadResponse{}, ErrInterviewNotActive
	}

	return s.media.UploadVideo(ctx, interview.ID, file)
}

func (s *interviewService) Cancel(ctx context.Context, companyID, interviewID string, req dto.InterviewCancelRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.InterviewResponse{}, validationFailure(err)
	}

	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	if interview.Terminal() {
		return dto.InterviewResponse{}, ErrInterviewFinished
	}

	reason := cleanText(s.sanitizer, req.Reason)
	if err := s.repo.Cancel(ctx, interview.ID, reason); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return dto.InterviewResponse{}, ErrInterviewFinished
		}
		return dto.InterviewResponse{}, storeFailure(err)
	}

	interview.Status = models.InterviewStatusCancelled
	interview.CancelReason = reason
	observability.InterviewTransitions().WithLabelValues(models.InterviewStatusCancelled).Inc()
	s.publish(ctx, EventInterviewCanceled, interview, reason)
	s.logger.Info().Str("interview_id", interview.ID).Msg("interview cancelled")

	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) Get(ctx context.Context, principal Principal, interviewID string) (dto.InterviewResponse, error) {
	interview, err := s.loadFor(ctx, principal, interviewID)
	if err != nil {
		return dto.InterviewResponse{}, err
	}
	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) Progress(ctx context.Context, principal Principal, interviewID string) (dto.InterviewProgressResponse, error) {
	interview, err := s.loadFor(ctx, principal, interviewID)
	if err != nil {
		return dto.InterviewProgressResponse{}, err
	}
	return dto.NewInterviewProgressResponse(interview), nil
}

func (s *interviewService) CurrentQuestion(ctx context.Context, candidateID, interviewID string) (dto.QuestionResponse, error) {
	interview, err := s.loadForCandidate(ctx, candidateID, interviewID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if interview.Status != models.InterviewStatusInProgress {
		return dto.QuestionResponse{}, ErrInterviewNotActive
	}

	question, err := s.sequencer.Next(ctx, interview.ID, interview.CurrentQuestionIndex)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if question == nil {
		return dto.QuestionResponse{}, ErrNoCurrentQuestion
	}
	return dto.NewQuestionResponse(*question, interview.TotalQuestions()), nil
}

// Question returns one question of the candidate's own interview. Unreached questions stay hidden.
func (s *interviewService) Question(ctx context.Context, candidateID, questionID string) (dto.QuestionResponse, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return dto.QuestionResponse{}, notFoundOr(err, ErrQuestionNotFound)
	}

	interview, err := s.loadForCandidate(ctx, candidateID, question.InterviewID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if interview.Status == models.InterviewStatusPending || question.Order > interview.CurrentQuestionIndex {
		return dto.QuestionResponse{}, ErrQuestionOutOfTurn
	}

	return dto.NewQuestionResponse(question, interview.TotalQuestions()), nil
}

func (s *interviewService) ListForCandidate(ctx context.Context, candidateID, status string) ([]dto.InterviewResponse, error) {
	filter := repository.InterviewFilter{CandidateID: &candidateID}
	if status = strings.TrimSpace(status); status != "" {
		filter.Status = &status
	}

	interviews, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(err)
	}

	responses := make([]dto.InterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		responses = append(responses, dto.NewInterviewResponse(interview))
	}
	return responses, nil
}

func (s *interviewService) ListForCompany(ctx context.Context, companyID, status string) ([]dto.CompanyInterviewResponse, error) {
	filter := repository.InterviewFilter{CompanyID: &companyID}
	if status = strings.TrimSpace(status); status != "" {
		filter.Status = &status
	}

	interviews, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(err)
	}

	ids := make([]string, 0, len(interviews))
	for _, interview := range interviews {
		ids = append(ids, interview.CandidateID)
	}
	candidates, err := s.candidates.ListByIDs(ctx, ids)
	if err != nil {
		return nil, storeFailure(err)
	}

	responses := make([]dto.CompanyInterviewResponse, 0, len(interviews))
	for _, interview := range interviews {
		item := dto.CompanyInterviewResponse{InterviewResponse: dto.NewInterviewResponse(interview)}
		if candidate, ok := candidates[interview.CandidateID]; ok {
			item.CandidateName = candidate.FullName
			item.CandidateEmail = candidate.Email
		}
		responses = append(responses, item)
	}
	return responses, nil
}

func (s *interviewService) Questions(ctx context.Context, companyID, interviewID string) ([]dto.QuestionResponse, error) {
	interview, err := s.loadForCompany(ctx, companyID, interviewID)
	if err != nil {
		return nil, err
	}

	questions, err := s.sequencer.All(ctx, interview.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionDetailResponse(question, interview.TotalQuestions()))
	}
	return responses, nil
}

func (s *interviewService) QuestionStats(ctx context.Context, principal Principal, interviewID string) (dto.QuestionStatsResponse, error) {
	interview, err := s.loadFor(ctx, principal, interviewID)
	if err != nil {
		return dto.QuestionStatsResponse{}, err
	}

	questions, err := s.sequencer.All(ctx, interview.ID)
	if err != nil {
		return dto.QuestionStatsResponse{}, err
	}
	return s.sequencer.Stats(interview, questions), nil
}

func (s *interviewService) PreviewQuestions(ctx context.Context, req dto.QuestionPreviewRequest) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	req.JobRole = cleanText(s.sanitizer, req.JobRole)
	req.Skills = cleanList(s.sanitizer, req.Skills)
	if req.JobRole == "" {
		return nil, &Error{Kind: KindValidation, Message: "job role is required"}
	}

	return s.sequencer.Preview(ctx, req)
}

func (s *interviewService) load(ctx context.Context, interviewID string) (models.Interview, error) {
	interview, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return models.Interview{}, notFoundOr(err, ErrInterviewNotFound)
	}
	return interview, nil
}

func (s *interviewService) loadForCandidate(ctx context.Context, candidateID, interviewID string) (models.Interview, error) {
	return s.loadFor(ctx, Principal{ID: candidateID, Role: RoleCandidate}, interviewID)
}

func (s *interviewService) loadForCompany(ctx context.Context, companyID, interviewID string) (models.Interview, error) {
	return s.loadFor(ctx, Principal{ID: companyID, Role: RoleCompany}, interviewID)
}

func (s *interviewService) loadFor(ctx context.Context, principal Principal, interviewID string) (models.Interview, error) {
	interview, err := s.load(ctx, interviewID)
	if err != nil {
		return models.Interview{}, err
	}
	if !principal.CanAccess(interview) {
		return models.Interview{}, ErrInterviewForbidden
	}
	return interview, nil
}

func (s *interviewService) publish(ctx context.Context, eventType string, interview models.Interview, message string) {
	s.events.Publish(ctx, newInterviewEvent(eventType, interview, message))
}

func newInterviewEvent(eventType string, interview models.Interview, message string) InterviewEvent {
	return InterviewEvent{
		Type:           eventType,
		InterviewID:    interview.ID,
		CompanyID:      interview.CompanyID,
		CandidateID:    interview.CandidateID,
		Status:         interview.Status,
		QuestionIndex:  interview.CurrentQuestionIndex,
		TotalQuestions: interview.TotalQuestions(),
		Round:          interview.CurrentRound(),
		Message:        message,
		OccurredAt:     time.Now().UTC(),
	}
}

// notFoundOr maps a missing row to sentinel and anything else to a store failure.
func notFoundOr(err error, sentinel *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return storeFailure(err)
}
