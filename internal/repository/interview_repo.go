package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// ErrStaleState is returned when a conditional update matched no row because the
// interview moved on since it was read.
var ErrStaleState = errors.New("interview state changed concurrently")

// InterviewFilter allows narrowing interview queries.
type InterviewFilter struct {
	CandidateID *string
	CompanyID   *string
	Status      *string
}

// AnswerAdvance describes the progress move stored together with an answer.
type AnswerAdvance struct {
	ExpectedIndex int
	Complete      bool
	At            time.Time
}

// InterviewRepository defines data operations for interviews. State transitions are
// compare-and-swap updates and return ErrStaleState when the precondition no longer holds.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview, questions []models.Question) error
	GetByID(ctx context.Context, id string) (models.Interview, error)
	List(ctx context.Context, filter InterviewFilter) ([]models.Interview, error)
	AttachQuestions(ctx context.Context, id string, questions []models.Question) error
	RecordProvisioningError(ctx context.Context, id, message string) error
	Start(ctx context.Context, id string, at time.Time) error
	RecordAnswer(ctx context.Context, answer *models.Answer, advance AnswerAdvance) error
	Cancel(ctx context.Context, id, reason string) error
}

type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository instantiates the repository.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interview).Error; err != nil {
			return err
		}
		return insertQuestions(tx, interview.ID, questions)
	})
}

func (r *interviewRepository) GetByID(ctx context.Context, id string) (models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).First(&interview, "id = ?", id).Error; err != nil {
		return models.Interview{}, err
	}
	return interview, nil
}

func (r *interviewRepository) List(ctx context.Context, filter InterviewFilter) ([]models.Interview, error) {
	query := r.db.WithContext(ctx).Model(&models.Interview{})

	if filter.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filter.CandidateID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var interviews []models.Interview
	if err := query.Order("created_at DESC").Find(&interviews).Error; err != nil {
		return nil, err
	}
	return interviews, nil
}

func (r *interviewRepository) AttachQuestions(ctx context.Context, id string, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Interview{}).
			Where("id = ? AND status = ? AND provisioning = ?", id, models.InterviewStatusPending, models.ProvisioningFailed).
			Updates(map[string]interface{}{
				"provisioning":       models.ProvisioningReady,
				"provisioning_error": "",
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}
		return insertQuestions(tx, id, questions)
	})
}

func (r *interviewRepository) RecordProvisioningError(ctx context.Context, id, message string) error {
	return r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ? AND provisioning = ?", id, models.ProvisioningFailed).
		Update("provisioning_error", message).Error
}

func (r *interviewRepository) Start(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ? AND status = ? AND provisioning = ?", id, models.InterviewStatusPending, models.ProvisioningReady).
		Updates(map[string]interface{}{
			"status":     models.InterviewStatusInProgress,
			"started_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *interviewRepository) RecordAnswer(ctx context.Context, answer *models.Answer, advance AnswerAdvance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"current_question_index": advance.ExpectedIndex + 1,
		}
		if advance.Complete {
			updates["status"] = models.InterviewStatusCompleted
			updates["completed_at"] = advance.At
		}

		result := tx.Model(&models.Interview{}).
			Where("id = ? AND status = ? AND current_question_index = ?", answer.InterviewID, models.InterviewStatusInProgress, advance.ExpectedIndex).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleState
		}

		if err := tx.Create(answer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStaleState
			}
			return err
		}
		return nil
	})
}

func (r *interviewRepository) Cancel(ctx context.Context, id, reason string) error {
	result := r.db.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ? AND status IN ?", id, []string{models.InterviewStatusPending, models.InterviewStatusInProgress}).
		Updates(map[string]interface{}{
			"status":        models.InterviewStatusCancelled,
			"cancel_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func insertQuestions(tx *gorm.DB, interviewID string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].InterviewID = interviewID
	}
	return tx.Create(&questions).Error
}
