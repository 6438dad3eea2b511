package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interview statuses.
const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusCancelled  = "cancelled"
)

// Provisioning states describe whether the question set was generated.
const (
	ProvisioningReady  = "ready"
	ProvisioningFailed = "failed"
)

// Round types.
const (
	RoundTechnical = "technical"
	RoundHR        = "hr"
)

// Interview is one candidate's session for a job role. The question counts are
// frozen at creation so later configuration changes never alter a running session.
type Interview struct {
	ID                   string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CandidateID          string     `gorm:"type:varchar(36);not null;index" json:"candidate_id"`
	CompanyID            string     `gorm:"type:varchar(36);not null;index" json:"company_id"`
	JobRole              string     `gorm:"size:255;not null" json:"job_role"`
	Status               string     `gorm:"size:32;not null;index" json:"status"`
	TechnicalCount       int        `gorm:"not null" json:"technical_count"`
	HRCount              int        `gorm:"not null" json:"hr_count"`
	CurrentQuestionIndex int        `gorm:"not null;default:0" json:"current_question_index"`
	Provisioning         string     `gorm:"size:16;not null" json:"provisioning"`
	ProvisioningError    string     `gorm:"type:text" json:"provisioning_error,omitempty"`
	CancelReason         string     `gorm:"type:text" json:"cancel_reason,omitempty"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (i *Interview) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TotalQuestions is the number of questions in the session.
func (i Interview) TotalQuestions() int {
	return i.TechnicalCount + i.HRCount
}

// CurrentRound derives the round from the question index.
func (i Interview) CurrentRound() string {
	if i.CurrentQuestionIndex < i.TechnicalCount {
		return RoundTechnical
	}
	return RoundHR
}

// Terminal reports whether no further transitions are possible.
func (i Interview) Terminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusCancelled
}

// CompletionPercentage reports answered questions as a percentage of the total.
func (i Interview) CompletionPercentage() float64 {
	total := i.TotalQuestions()
	if total == 0 {
		return 0
	}
	return float64(i.CurrentQuestionIndex) / float64(total) * 100
}
