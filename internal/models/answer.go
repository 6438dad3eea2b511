package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is the candidate's reply to one question. At most one exists per question.
type Answer struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	InterviewID     string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_answers_interview_question,priority:1" json:"interview_id"`
	QuestionID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_interview_question,priority:2" json:"question_id"`
	AnswerText      string    `gorm:"type:text;not null" json:"answer_text"`
	AudioURL        string    `gorm:"type:text" json:"audio_url,omitempty"`
	VideoChunkURL   string    `gorm:"type:text" json:"video_chunk_url,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	SubmittedAt     time.Time `gorm:"not null" json:"submitted_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (a *Answer) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
