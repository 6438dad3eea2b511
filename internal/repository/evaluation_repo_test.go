package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

func sampleEvaluation(interviewID string) *models.InterviewEvaluation {
	now := time.Now().UTC()
	return &models.InterviewEvaluation{
		InterviewID:    interviewID,
		CandidateID:    "candidate-1",
		CompanyID:      "company-1",
		CandidateName:  "Ada Lovelace",
		JobRole:        "Engineer",
		TechnicalScore: 7.5,
		HRScore:        8,
		OverallScore:   7.75,
		Summary:        "Solid",
		Recommendation: "Recommend",
		QuestionEvaluations: []models.QuestionEvaluation{
			{QuestionID: "q2", Order: 1, RoundType: models.RoundHR, OverallScore: 8, EvaluatedAt: now},
			{QuestionID: "q1", Order: 0, RoundType: models.RoundTechnical, OverallScore: 7.5, EvaluatedAt: now},
		},
	}
}

func TestEvaluationRepositoryCreateAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	evaluation := sampleEvaluation("interview-1")
	require.NoError(t, repo.Create(ctx, evaluation))

	stored, err := repo.GetByInterview(ctx, "interview-1")
	require.NoError(t, err)
	require.Equal(t, evaluation.ID, stored.ID)
	require.Len(t, stored.QuestionEvaluations, 2)
	require.Equal(t, "q1", stored.QuestionEvaluations[0].QuestionID, "expected question order")
	require.Equal(t, stored.ID, stored.QuestionEvaluations[0].EvaluationID)
}

func TestEvaluationRepositoryUniquePerInterview(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleEvaluation("interview-1")))
	require.ErrorIs(t, repo.Create(ctx, sampleEvaluation("interview-1")), ErrEvaluationExists)

	var children int64
	require.NoError(t, db.Model(&models.QuestionEvaluation{}).Count(&children).Error)
	require.Equal(t, int64(2), children, "losing insert must not leave question evaluations behind")
}

func TestEvaluationRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleEvaluation("interview-1")))
	require.NoError(t, repo.DeleteByInterview(ctx, "interview-1"))

	_, err := repo.GetByInterview(ctx, "interview-1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var children int64
	require.NoError(t, db.Model(&models.QuestionEvaluation{}).Count(&children).Error)
	require.Zero(t, children)

	require.ErrorIs(t, repo.DeleteByInterview(ctx, "interview-1"), gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(ctx, sampleEvaluation("interview-1")), "regeneration allowed after delete")
}

func TestEvaluationRepositoryListings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleEvaluation("interview-1")))
	other := sampleEvaluation("interview-2")
	other.CandidateID = "candidate-2"
	require.NoError(t, repo.Create(ctx, other))
	foreign := sampleEvaluation("interview-3")
	foreign.CompanyID = "company-2"
	require.NoError(t, repo.Create(ctx, foreign))

	byCompany, err := repo.ListByCompany(ctx, "company-1")
	require.NoError(t, err)
	require.Len(t, byCompany, 2)

	byCandidate, err := repo.ListByCompanyAndCandidate(ctx, "company-1", "candidate-2")
	require.NoError(t, err)
	require.Len(t, byCandidate, 1)
	require.Equal(t, "interview-2", byCandidate[0].InterviewID)
}
