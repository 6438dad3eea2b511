package dto

import (
	"time"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// CandidateRegisterRequest creates a candidate account with an optional resume.
type CandidateRegisterRequest struct {
	Email           string   `json:"email" validate:"required,email,max=255"`
	Password        string   `json:"password" validate:"required,min=8,max=72"`
	FullName        string   `json:"full_name" validate:"required,max=255"`
	Phone           string   `json:"phone" validate:"omitempty,max=64"`
	JobRole         string   `json:"job_role" validate:"omitempty,max=255"`
	Skills          []string `json:"skills" validate:"omitempty,max=50,dive,required,max=64"`
	ExperienceYears int      `json:"experience_years" validate:"gte=0,lte=80"`
	Education       string   `json:"education" validate:"omitempty,max=255"`
	PreviousRoles   []string `json:"previous_roles" validate:"omitempty,max=50,dive,required,max=255"`
	Certifications  []string `json:"certifications" validate:"omitempty,max=50,dive,required,max=255"`
}

// CompanyRegisterRequest creates a company account.
type CompanyRegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	CompanyName string `json:"company_name" validate:"required,max=255"`
}

// LoginRequest authenticates either account type.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountResponse identifies the authenticated principal.
type AccountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AuthResponse is returned by register and login endpoints.
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Account     AccountResponse `json:"account"`
}

// CompanyResponse is the public view of a company.
type CompanyResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCompanyResponse maps a model to its response.
func NewCompanyResponse(company models.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID,
		Email:       company.Email,
		CompanyName: company.CompanyName,
		CreatedAt:   company.CreatedAt,
	}
}
