package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

func newPendingInterview() *models.Interview {
	return &models.Interview{
		CandidateID:    "candidate-1",
		CompanyID:      "company-1",
		JobRole:        "Backend Engineer",
		Status:         models.InterviewStatusPending,
		TechnicalCount: 2,
		HRCount:        1,
		Provisioning:   models.ProvisioningReady,
	}
}

func TestInterviewRepositoryCreateWithQuestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	questions := NewQuestionRepository(db)
	ctx := context.Background()

	interview := newPendingInterview()
	require.NoError(t, repo.Create(ctx, interview, seedQuestions(2, 1)))
	require.NotEmpty(t, interview.ID)

	stored, err := questions.ListByInterview(ctx, interview.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, question := range stored {
		require.Equal(t, i, question.Order)
		require.Equal(t, interview.ID, question.InterviewID)
	}
	require.Equal(t, models.RoundHR, stored[2].RoundType)
	require.Equal(t, []string{"keyword"}, []string(stored[0].ExpectedKeywords))
}

func TestInterviewRepositoryCreateRollsBackOnDuplicateOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	questions := seedQuestions(2, 0)
	questions[1].Order = 0

	interview := newPendingInterview()
	require.Error(t, repo.Create(ctx, interview, questions))

	var count int64
	require.NoError(t, db.Model(&models.Interview{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestInterviewRepositoryStartIsConditional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	interview := newPendingInterview()
	require.NoError(t, repo.Create(ctx, interview, seedQuestions(2, 1)))

	now := time.Now().UTC()
	require.NoError(t, repo.Start(ctx, interview.ID, now))
	require.ErrorIs(t, repo.Start(ctx, interview.ID, now), ErrStaleState)

	stored, err := repo.GetByID(ctx, interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusInProgress, stored.Status)
	require.NotNil(t, stored.StartedAt)
}

func TestInterviewRepositoryStartRequiresProvisioning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	interview := newPendingInterview()
	interview.Provisioning = models.ProvisioningFailed
	require.NoError(t, repo.Create(ctx, interview, nil))

	require.ErrorIs(t, repo.Start(ctx, interview.ID, time.Now()), ErrStaleState)

	require.NoError(t, repo.AttachQuestions(ctx, interview.ID, seedQuestions(2, 1)))
	require.ErrorIs(t, repo.AttachQuestions(ctx, interview.ID, seedQuestions(2, 1)), ErrStaleState)
	require.NoError(t, repo.Start(ctx, interview.ID, time.Now()))
}

func TestInterviewRepositoryRecordAnswerCompareAndSwap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	answers := NewAnswerRepository(db)
	questionRepo := NewQuestionRepository(db)
	ctx := context.Background()

	interview := newPendingInterview()
	require.NoError(t, repo.Create(ctx, interview, seedQuestions(2, 1)))
	require.NoError(t, repo.Start(ctx, interview.ID, time.Now()))

	questions, err := questionRepo.ListByInterview(ctx, interview.ID)
	require.NoError(t, err)

	first := &models.Answer{InterviewID: interview.ID, QuestionID: questions[0].ID, AnswerText: "a", SubmittedAt: time.Now()}
	require.NoError(t, repo.RecordAnswer(ctx, first, AnswerAdvance{ExpectedIndex: 0, At: time.Now()}))

	duplicate := &models.Answer{InterviewID: interview.ID, QuestionID: questions[0].ID, AnswerText: "again", SubmittedAt: time.Now()}
	require.ErrorIs(t, repo.RecordAnswer(ctx, duplicate, AnswerAdvance{ExpectedIndex: 0, At: time.Now()}), ErrStaleState)

	stored, err := answers.ListByInterview(ctx, interview.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	second := &models.Answer{InterviewID: interview.ID, QuestionID: questions[1].ID, SubmittedAt: time.Now()}
	require.NoError(t, repo.RecordAnswer(ctx, second, AnswerAdvance{ExpectedIndex: 1, At: time.Now()}))

	last := &models.Answer{InterviewID: interview.ID, QuestionID: questions[2].ID, SubmittedAt: time.Now()}
	require.NoError(t, repo.RecordAnswer(ctx, last, AnswerAdvance{ExpectedIndex: 2, Complete: true, At: time.Now()}))

	completed, err := repo.GetByID(ctx, interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStatusCompleted, completed.Status)
	require.Equal(t, 3, completed.CurrentQuestionIndex)
	require.NotNil(t, completed.CompletedAt)

	late := &models.Answer{InterviewID: interview.ID, QuestionID: questions[2].ID, SubmittedAt: time.Now()}
	require.ErrorIs(t, repo.RecordAnswer(ctx, late, AnswerAdvance{ExpectedIndex: 3, At: time.Now()}), ErrStaleState)
}

func TestInterviewRepositoryRecordAnswerRejectsPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	interview := newPendingInterview()
	require.NoError(t, repo.Create(ctx, interview, seedQuestions(2, 1)))

	answer := &models.Answer{InterviewID: interview.ID, QuestionID: "q", SubmittedAt: time.Now()}
	require.ErrorIs(t, repo.RecordAnswer(ctx, answer, AnswerAdvance{ExpectedIndex: 0, At: time.Now()}), ErrStaleState)

	var count int64
	require.NoError(t, db.Model(&models.Answer{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestInterviewRepositoryCancelAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	first := newPendingInterview()
	require.NoError(t, repo.Create(ctx, first, nil))
	second := newPendingInterview()
	second.CandidateID = "candidate-2"
	require.NoError(t, repo.Create(ctx, second, nil))

	require.NoError(t, repo.Cancel(ctx, first.ID, "position filled"))
	require.ErrorIs(t, repo.Cancel(ctx, first.ID, "again"), ErrStaleState)

	companyID := "company-1"
	all, err := repo.List(ctx, InterviewFilter{CompanyID: &companyID})
	require.NoError(t, err)
	require.Len(t, all, 2)

	status := models.InterviewStatusCancelled
	cancelled, err := repo.List(ctx, InterviewFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.Equal(t, "position filled", cancelled[0].CancelReason)

	candidateID := "candidate-2"
	mine, err := repo.List(ctx, InterviewFilter{CandidateID: &candidateID})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
