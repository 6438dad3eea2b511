package dto

import (
	"time"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// InterviewCreateRequest schedules an interview for a candidate.
type InterviewCreateRequest struct {
	CandidateID string     `json:"candidate_id" validate:"required,max=36"`
	JobRole     string     `json:"job_role" validate:"required,max=255"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       string     `json:"notes" validate:"omitempty,max=2000"`
}

// InterviewCancelRequest carries an optional reason.
type InterviewCancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// AnswerSubmitRequest is the candidate's answer to the current question.
type AnswerSubmitRequest struct {
	QuestionID      string `json:"question_id" validate:"required,max=36"`
	AudioData       string `json:"audio_data" validate:"required,min=10"`
	AnswerText      string `json:"answer_text" validate:"omitempty,max=20000"`
	VideoChunkURL   string `json:"video_chunk_url" validate:"omitempty,url"`
	DurationSeconds *int   `json:"duration_seconds" validate:"omitempty,gte=0"`
}

// InterviewResponse is the read model of an interview.
type InterviewResponse struct {
	ID                   string     `json:"id"`
	CandidateID          string     `json:"candidate_id"`
	CompanyID            string     `json:"company_id"`
	JobRole              string     `json:"job_role"`
	Status               string     `json:"status"`
	CurrentRound         string     `json:"current_round"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	TotalQuestions       int        `json:"total_questions"`
	TechnicalQuestions   int        `json:"technical_questions"`
	HRQuestions          int        `json:"hr_questions"`
	Provisioning         string     `json:"provisioning"`
	ProvisioningError    string     `json:"provisioning_error,omitempty"`
	CancelReason         string     `json:"cancel_reason,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// NewInterviewResponse maps a model to its response.
func NewInterviewResponse(interview models.Interview) InterviewResponse {
	return InterviewResponse{
		ID:                   interview.ID,
		CandidateID:          interview.CandidateID,
		CompanyID:            interview.CompanyID,
		JobRole:              interview.JobRole,
		Status:               interview.Status,
		CurrentRound:         interview.CurrentRound(),
		CurrentQuestionIndex: interview.CurrentQuestionIndex,
		TotalQuestions:       interview.TotalQuestions(),
		TechnicalQuestions:   interview.TechnicalCount,
		HRQuestions:          interview.HRCount,
		Provisioning:         interview.Provisioning,
		ProvisioningError:    interview.ProvisioningError,
		CancelReason:         interview.CancelReason,
		Notes:                interview.Notes,
		ScheduledAt:          interview.ScheduledAt,
		StartedAt:            interview.StartedAt,
		CompletedAt:          interview.CompletedAt,
		CreatedAt:            interview.CreatedAt,
	}
}

// CompanyInterviewResponse adds candidate contact details for company listings.
type CompanyInterviewResponse struct {
	InterviewResponse
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
}

// InterviewProgressResponse reports how far the candidate has come.
type InterviewProgressResponse struct {
	InterviewID          string  `json:"interview_id"`
	Status               string  `json:"status"`
	CurrentRound         string  `json:"current_round"`
	CurrentQuestionIndex int     `json:"current_question_index"`
	TotalQuestions       int     `json:"total_questions"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// NewInterviewProgressResponse derives progress from the interview.
func NewInterviewProgressResponse(interview models.Interview) InterviewProgressResponse {
	return InterviewProgressResponse{
		InterviewID:          interview.ID,
		Status:               interview.Status,
		CurrentRound:         interview.CurrentRound(),
		CurrentQuestionIndex: interview.CurrentQuestionIndex,
		TotalQuestions:       interview.TotalQuestions(),
		CompletionPercentage: roundPercentage(interview.CompletionPercentage()),
	}
}

// AnswerSubmitResponse tells the candidate what comes next.
type AnswerSubmitResponse struct {
	Completed    bool                      `json:"completed"`
	Message      string                    `json:"message"`
	NextQuestion *QuestionResponse         `json:"next_question"`
	Progress     InterviewProgressResponse `json:"progress"`
}

// MediaUploadResponse describes a stored media object.
type MediaUploadResponse struct {
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
