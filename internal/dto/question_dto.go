package dto

import (
	"math"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// QuestionPreviewRequest generates questions without storing them.
type QuestionPreviewRequest struct {
	JobRole   string   `json:"job_role" validate:"required,max=255"`
	Skills    []string `json:"skills" validate:"omitempty,max=50,dive,required,max=64"`
	RoundType string   `json:"round_type" validate:"required,oneof=technical hr"`
	Count     int      `json:"count" validate:"required,min=1,max=20"`
}

// QuestionResponse is the view of a question. Expected keywords are only shown to companies.
type QuestionResponse struct {
	ID               string   `json:"id,omitempty"`
	InterviewID      string   `json:"interview_id,omitempty"`
	QuestionText     string   `json:"question_text"`
	RoundType        string   `json:"round_type"`
	Difficulty       string   `json:"difficulty"`
	Order            int      `json:"order"`
	QuestionNumber   int      `json:"question_number"`
	TotalQuestions   int      `json:"total_questions,omitempty"`
	ExpectedKeywords []string `json:"expected_keywords,omitempty"`
}

// NewQuestionResponse maps a question for the candidate, hiding expected keywords.
func NewQuestionResponse(question models.Question, total int) QuestionResponse {
	return QuestionResponse{
		ID:             question.ID,
		InterviewID:    question.InterviewID,
		QuestionText:   question.Text,
		RoundType:      question.RoundType,
		Difficulty:     question.Difficulty,
		Order:          question.Order,
		QuestionNumber: question.Order + 1,
		TotalQuestions: total,
	}
}

// NewQuestionDetailResponse maps a question for the owning company.
func NewQuestionDetailResponse(question models.Question, total int) QuestionResponse {
	response := NewQuestionResponse(question, total)
	response.ExpectedKeywords = append([]string(nil), question.ExpectedKeywords...)
	return response
}

// QuestionStatsResponse summarises the question set of an interview.
type QuestionStatsResponse struct {
	InterviewID          string         `json:"interview_id"`
	TotalQuestions       int            `json:"total_questions"`
	TechnicalQuestions   int            `json:"technical_questions"`
	HRQuestions          int            `json:"hr_questions"`
	ByDifficulty         map[string]int `json:"by_difficulty"`
	AnsweredQuestions    int            `json:"answered_questions"`
	CurrentRound         string         `json:"current_round"`
	CompletionPercentage float64        `json:"completion_percentage"`
}

func roundPercentage(v float64) float64 {
	return math.Round(v*100) / 100
}
