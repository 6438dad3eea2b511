package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company owns interviews and reviews their evaluations.
type Company struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CompanyName  string    `gorm:"size:255;not null" json:"company_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
