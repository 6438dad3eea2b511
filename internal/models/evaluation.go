package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterviewEvaluation is the final scored report. At most one exists per interview.
type InterviewEvaluation struct {
	ID                  string               `gorm:"type:varchar(36);primaryKey" json:"id"`
	InterviewID         string               `gorm:"type:varchar(36);not null;uniqueIndex" json:"interview_id"`
	CandidateID         string               `gorm:"type:varchar(36);not null;index" json:"candidate_id"`
	CompanyID           string               `gorm:"type:varchar(36);not null;index" json:"company_id"`
	CandidateName       string               `gorm:"size:255" json:"candidate_name"`
	JobRole             string               `gorm:"size:255" json:"job_role"`
	TechnicalScore      float64              `gorm:"not null" json:"technical_score"`
	HRScore             float64              `gorm:"not null" json:"hr_score"`
	OverallScore        float64              `gorm:"not null" json:"overall_score"`
	Summary             string               `gorm:"type:text" json:"summary"`
	Recommendation      string               `gorm:"size:64;not null" json:"recommendation"`
	VideoRecordingURL   string               `gorm:"type:text" json:"video_recording_url,omitempty"`
	QuestionEvaluations []QuestionEvaluation `gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE" json:"question_evaluations"`
	CreatedAt           time.Time            `json:"created_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (e *InterviewEvaluation) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// QuestionEvaluation holds the per-criterion scores for a single answer.
type QuestionEvaluation struct {
	ID                 string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EvaluationID       string    `gorm:"type:varchar(36);not null;index" json:"evaluation_id"`
	QuestionID         string    `gorm:"type:varchar(36);not null" json:"question_id"`
	Order              int       `gorm:"column:sequence;not null" json:"order"`
	RoundType          string    `gorm:"size:16;not null" json:"round_type"`
	QuestionText       string    `gorm:"type:text" json:"question_text"`
	AnswerText         string    `gorm:"type:text" json:"answer_text"`
	AccuracyScore      float64   `json:"accuracy_score"`
	RelevanceScore     float64   `json:"relevance_score"`
	CommunicationScore float64   `json:"communication_score"`
	ClarityScore       float64   `json:"clarity_score"`
	ConfidenceScore    float64   `json:"confidence_score"`
	OverallScore       float64   `json:"overall_score"`
	Feedback           string    `gorm:"type:text" json:"feedback"`
	EvaluatedAt        time.Time `json:"evaluated_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (q *QuestionEvaluation) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
