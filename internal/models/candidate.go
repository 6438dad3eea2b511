package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Candidate is a person taking interviews. Resume fields feed question generation.
type Candidate struct {
	ID              string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email           string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash    string                      `gorm:"size:255;not null" json:"-"`
	FullName        string                      `gorm:"size:255;not null" json:"full_name"`
	Phone           string                      `gorm:"size:64" json:"phone"`
	JobRole         string                      `gorm:"size:255" json:"job_role"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	ExperienceYears int                         `gorm:"not null;default:0" json:"experience_years"`
	Education       string                      `gorm:"size:255" json:"education"`
	PreviousRoles   datatypes.JSONSlice[string] `json:"previous_roles"`
	Certifications  datatypes.JSONSlice[string] `json:"certifications"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (c *Candidate) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
