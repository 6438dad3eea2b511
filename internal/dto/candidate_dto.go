package dto

import (
	"time"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// CandidateUpdateRequest patches a candidate profile. Nil fields are left unchanged.
type CandidateUpdateRequest struct {
	FullName        *string  `json:"full_name" validate:"omitempty,min=1,max=255"`
	Phone           *string  `json:"phone" validate:"omitempty,max=64"`
	JobRole         *string  `json:"job_role" validate:"omitempty,max=255"`
	Skills          []string `json:"skills" validate:"omitempty,max=50,dive,required,max=64"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,gte=0,lte=80"`
	Education       *string  `json:"education" validate:"omitempty,max=255"`
	PreviousRoles   []string `json:"previous_roles" validate:"omitempty,max=50,dive,required,max=255"`
	Certifications  []string `json:"certifications" validate:"omitempty,max=50,dive,required,max=255"`
}

// CandidateResponse is the profile view of a candidate.
type CandidateResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone,omitempty"`
	JobRole         string    `json:"job_role,omitempty"`
	Skills          []string  `json:"skills"`
	ExperienceYears int       `json:"experience_years"`
	Education       string    `json:"education,omitempty"`
	PreviousRoles   []string  `json:"previous_roles"`
	Certifications  []string  `json:"certifications"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCandidateResponse maps a model to its response.
func NewCandidateResponse(candidate models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:              candidate.ID,
		Email:           candidate.Email,
		FullName:        candidate.FullName,
		Phone:           candidate.Phone,
		JobRole:         candidate.JobRole,
		Skills:          nonNil(candidate.Skills),
		ExperienceYears: candidate.ExperienceYears,
		Education:       candidate.Education,
		PreviousRoles:   nonNil(candidate.PreviousRoles),
		Certifications:  nonNil(candidate.Certifications),
		CreatedAt:       candidate.CreatedAt,
		UpdatedAt:       candidate.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
