package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// QuestionRepository reads the immutable question set of an interview.
type QuestionRepository interface {
	ListByInterview(ctx context.Context, interviewID string) ([]models.Question, error)
	GetByID(ctx context.Context, id string) (models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListByInterview(ctx context.Context, interviewID string) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("sequence ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}
