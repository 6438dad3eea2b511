package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Difficulty levels accepted for generated questions.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question belongs to exactly one interview. Order is zero-based and unique per interview.
type Question struct {
	ID               string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	InterviewID      string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_questions_interview_sequence,priority:1" json:"interview_id"`
	Order            int                         `gorm:"column:sequence;not null;uniqueIndex:idx_questions_interview_sequence,priority:2" json:"order"`
	RoundType        string                      `gorm:"size:16;not null" json:"round_type"`
	Text             string                      `gorm:"type:text;not null" json:"question_text"`
	Difficulty       string                      `gorm:"size:16;not null" json:"difficulty"`
	ExpectedKeywords datatypes.JSONSlice[string] `json:"expected_keywords"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
