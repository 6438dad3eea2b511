package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// AnswerRepository reads stored answers. Answers are written through InterviewRepository.RecordAnswer.
type AnswerRepository interface {
	ListByInterview(ctx context.Context, interviewID string) ([]models.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository instantiates the repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) ListByInterview(ctx context.Context, interviewID string) ([]models.Answer, error) {
	var answers []models.Answer
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("submitted_at ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
