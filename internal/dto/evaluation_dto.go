package dto

import (
	"time"

	"github.com/noah-isme/interview-agent-api/internal/models"
)

// QuestionEvaluationResponse is the per-question breakdown of an evaluation.
type QuestionEvaluationResponse struct {
	QuestionID         string    `json:"question_id"`
	QuestionText       string    `json:"question_text"`
	AnswerText         string    `json:"answer_text"`
	RoundType          string    `json:"round_type"`
	Order              int       `json:"order"`
	AccuracyScore      float64   `json:"accuracy_score"`
	RelevanceScore     float64   `json:"relevance_score"`
	CommunicationScore float64   `json:"communication_score"`
	ClarityScore       float64   `json:"clarity_score"`
	ConfidenceScore    float64   `json:"confidence_score"`
	OverallScore       float64   `json:"overall_score"`
	Feedback           string    `json:"feedback"`
	EvaluatedAt        time.Time `json:"evaluated_at"`
}

// EvaluationResponse is the produced evaluation document.
type EvaluationResponse struct {
	ID                  string                       `json:"id"`
	InterviewID         string                       `json:"interview_id"`
	CandidateID         string                       `json:"candidate_id"`
	CandidateName       string                       `json:"candidate_name"`
	JobRole             string                       `json:"job_role"`
	TechnicalScore      float64                      `json:"technical_score"`
	HRScore             float64                      `json:"hr_score"`
	OverallScore        float64                      `json:"overall_score"`
	Summary             string                       `json:"summary"`
	Recommendation      string                       `json:"recommendation"`
	VideoRecordingURL   string                       `json:"video_recording_url,omitempty"`
	QuestionEvaluations []QuestionEvaluationResponse `json:"question_evaluations"`
	CreatedAt           time.Time                    `json:"created_at"`
}

// NewEvaluationResponse maps a model to its response.
func NewEvaluationResponse(evaluation models.InterviewEvaluation) EvaluationResponse {
	items := make([]QuestionEvaluationResponse, 0, len(evaluation.QuestionEvaluations))
	for _, item := range evaluation.QuestionEvaluations {
		items = append(items, QuestionEvaluationResponse{
			QuestionID:         item.QuestionID,
			QuestionText:       item.QuestionText,
			AnswerText:         item.AnswerText,
			RoundType:          item.RoundType,
			Order:              item.Order,
			AccuracyScore:      item.AccuracyScore,
			RelevanceScore:     item.RelevanceScore,
			CommunicationScore: item.CommunicationScore,
			ClarityScore:       item.ClarityScore,
			ConfidenceScore:    item.ConfidenceScore,
			OverallScore:       item.OverallScore,
			Feedback:           item.Feedback,
			EvaluatedAt:        item.EvaluatedAt,
		})
	}

	return EvaluationResponse{
		ID:                  evaluation.ID,
		InterviewID:         evaluation.InterviewID,
		CandidateID:         evaluation.CandidateID,
		CandidateName:       evaluation.CandidateName,
		JobRole:             evaluation.JobRole,
		TechnicalScore:      evaluation.TechnicalScore,
		HRScore:             evaluation.HRScore,
		OverallScore:        evaluation.OverallScore,
		Summary:             evaluation.Summary,
		Recommendation:      evaluation.Recommendation,
		VideoRecordingURL:   evaluation.VideoRecordingURL,
		QuestionEvaluations: items,
		CreatedAt:           evaluation.CreatedAt,
	}
}

// EvaluationStatusResponse tells a company whether an evaluation exists yet.
type EvaluationStatusResponse struct {
	InterviewID     string     `json:"interview_id"`
	InterviewStatus string     `json:"interview_status"`
	Evaluated       bool       `json:"evaluated"`
	InProgress      bool       `json:"in_progress"`
	EvaluationID    string     `json:"evaluation_id,omitempty"`
	OverallScore    *float64   `json:"overall_score,omitempty"`
	Recommendation  string     `json:"recommendation,omitempty"`
	EvaluatedAt     *time.Time `json:"evaluated_at,omitempty"`
}

// EvaluationSummaryItem is one row of a company's evaluation list.
type EvaluationSummaryItem struct {
	EvaluationID   string    `json:"evaluation_id"`
	InterviewID    string    `json:"interview_id"`
	CandidateID    string    `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	JobRole        string    `json:"job_role"`
	TechnicalScore float64   `json:"technical_score"`
	HRScore        float64   `json:"hr_score"`
	OverallScore   float64   `json:"overall_score"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewEvaluationSummaryItem maps a model to a list row.
func NewEvaluationSummaryItem(evaluation models.InterviewEvaluation) EvaluationSummaryItem {
	return EvaluationSummaryItem{
		EvaluationID:   evaluation.ID,
		InterviewID:    evaluation.InterviewID,
		CandidateID:    evaluation.CandidateID,
		CandidateName:  evaluation.CandidateName,
		JobRole:        evaluation.JobRole,
		TechnicalScore: evaluation.TechnicalScore,
		HRScore:        evaluation.HRScore,
		OverallScore:   evaluation.OverallScore,
		Recommendation: evaluation.Recommendation,
		CreatedAt:      evaluation.CreatedAt,
	}
}

// CandidateEvaluationSummary averages a candidate's evaluations with one company.
type CandidateEvaluationSummary struct {
	CandidateID           string                  `json:"candidate_id"`
	CandidateName         string                  `json:"candidate_name"`
	TotalInterviews       int                     `json:"total_interviews"`
	EvaluatedInterviews   int                     `json:"evaluated_interviews"`
	AverageTechnicalScore float64                 `json:"average_technical_score"`
	AverageHRScore        float64                 `json:"average_hr_score"`
	AverageOverallScore   float64                 `json:"average_overall_score"`
	Evaluations           []EvaluationSummaryItem `json:"evaluations"`
}
