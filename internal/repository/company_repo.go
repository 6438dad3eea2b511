package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// CompanyRepository defines data operations for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (models.Company, error)
	GetByEmail(ctx context.Context, email string) (models.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (r *companyRepository) GetByEmail(ctx context.Context, email string) (models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "email = ?", email).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}
