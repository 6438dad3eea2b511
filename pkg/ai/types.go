package ai

import (
	"context"
	"errors"
)

// Round identifiers passed to question generation.
const (
	RoundTechnical = "technical"
	RoundHR        = "hr"
)

// Recommendation labels accepted from report synthesis.
const (
	RecommendationStrong       = "Strongly Recommend"
	RecommendationRecommend    = "Recommend"
	RecommendationMaybe        = "Maybe"
	RecommendationNotRecommend = "Not Recommend"
	RecommendationManualReview = "Manual Review Required"
)

// FallbackSummary is used when the report response cannot be parsed.
const FallbackSummary = "Unable to generate summary"

// ErrMalformedResponse reports a response that could not be decoded into the expected shape.
var ErrMalformedResponse = errors.New("malformed oracle response")

// QuestionRequest asks for Count questions of one round.
type QuestionRequest struct {
	JobRole string
	Skills  []string
	Round   string
	Count   int
}

// GeneratedQuestion is a single question returned by the oracle.
type GeneratedQuestion struct {
	Text             string   `json:"question"`
	Difficulty       string   `json:"difficulty"`
	ExpectedKeywords []string `json:"expected_keywords"`
}

// ScoreRequest carries one answered question.
type ScoreRequest struct {
	Question         string
	Answer           string
	ExpectedKeywords []string
}

// AnswerScore holds the five criteria scores on a 0-10 scale plus feedback.
type AnswerScore struct {
	Accuracy      float64 `json:"accuracy"`
	Relevance     float64 `json:"relevance"`
	Communication float64 `json:"communication"`
	Clarity       float64 `json:"clarity"`
	Confidence    float64 `json:"confidence"`
	Feedback      string  `json:"feedback"`
}

// ReportItem summarises one scored question for report synthesis.
type ReportItem struct {
	Question string  `json:"question"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ReportRequest asks for the final narrative.
type ReportRequest struct {
	CandidateName string
	JobRole       string
	Evaluations   []ReportItem
}

// Report is the synthesized summary. Fallback is set when the response could not be parsed.
type Report struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
	Fallback       bool   `json:"-"`
}

// Oracle is the language model used to write questions, score answers and summarise interviews.
type Oracle interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	ScoreAnswer(ctx context.Context, req ScoreRequest) (AnswerScore, error)
	SynthesizeReport(ctx context.Context, req ReportRequest) (Report, error)
}
