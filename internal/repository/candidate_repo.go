package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// ErrDuplicateEmail is returned when an account with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// CandidateRepository defines data operations for candidates.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id string) (models.Candidate, error)
	GetByEmail(ctx context.Context, email string) (models.Candidate, error)
	ListByIDs(ctx context.Context, ids []string) (map[string]models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository instantiates the repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id string) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return models.Candidate{}, err
	}
	return candidate, nil
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "email = ?", email).Error; err != nil {
		return models.Candidate{}, err
	}
	return candidate, nil
}

func (r *candidateRepository) ListByIDs(ctx context.Context, ids []string) (map[string]models.Candidate, error) {
	result := make(map[string]models.Candidate, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&candidates).Error; err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		result[candidate.ID] = candidate
	}
	return result, nil
}

func (r *candidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Save(candidate).Error
}
