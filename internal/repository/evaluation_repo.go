package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// ErrEvaluationExists is returned when an evaluation for the interview was already stored.
var ErrEvaluationExists = errors.New("evaluation already exists for interview")

// EvaluationRepository defines data operations for interview evaluations.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.InterviewEvaluation) error
	GetByInterview(ctx context.Context, interviewID string) (models.InterviewEvaluation, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.InterviewEvaluation, error)
	ListByCompanyAndCandidate(ctx context.Context, companyID, candidateID string) ([]models.InterviewEvaluation, error)
	DeleteByInterview(ctx context.Context, interviewID string) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Create stores the evaluation and its question evaluations in one transaction.
func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.InterviewEvaluation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(evaluation).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEvaluationExists
	}
	return err
}

func (r *evaluationRepository) GetByInterview(ctx context.Context, interviewID string) (models.InterviewEvaluation, error) {
	var evaluation models.InterviewEvaluation
	if err := r.db.WithContext(ctx).
		Preload("QuestionEvaluations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&evaluation, "interview_id = ?", interviewID).Error; err != nil {
		return models.InterviewEvaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) ListByCompany(ctx context.Context, companyID string) ([]models.InterviewEvaluation, error) {
	var evaluations []models.InterviewEvaluation
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *evaluationRepository) ListByCompanyAndCandidate(ctx context.Context, companyID, candidateID string) ([]models.InterviewEvaluation, error) {
	var evaluations []models.InterviewEvaluation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND candidate_id = ?", companyID, candidateID).
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

// DeleteByInterview removes the evaluation and its question evaluations.
func (r *evaluationRepository) DeleteByInterview(ctx context.Context, interviewID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var evaluation models.InterviewEvaluation
		if err := tx.Select("id").First(&evaluation, "interview_id = ?", interviewID).Error; err != nil {
			return err
		}
		if err := tx.Where("evaluation_id = ?", evaluation.ID).Delete(&models.QuestionEvaluation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.InterviewEvaluation{}, "id = ?", evaluation.ID).Error
	})
}
