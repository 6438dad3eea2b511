package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

var recommendationLabels = map[string]string{
	"strongly recommend": RecommendationStrong,
	"recommend":          RecommendationRecommend,
	"maybe":              RecommendationMaybe,
	"not recommend":      RecommendationNotRecommend,
}

// stripCodeFences removes a surrounding markdown code block, with or without a json tag.
func stripCodeFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func parseQuestions(content string, count int) ([]GeneratedQuestion, error) {
	cleaned := []byte(stripCodeFences(content))

	var items []GeneratedQuestion
	switch {
	case bytes.HasPrefix(cleaned, []byte("[")):
		if err := json.Unmarshal(cleaned, &items); err != nil {
			return nil, fmt.Errorf("%w: decode questions: %v", ErrMalformedResponse, err)
		}
	case bytes.HasPrefix(cleaned, []byte("{")):
		var wrapper struct {
			Questions []GeneratedQuestion `json:"questions"`
		}
		if err := json.Unmarshal(cleaned, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: decode questions: %v", ErrMalformedResponse, err)
		}
		items = wrapper.Questions
	default:
		return nil, fmt.Errorf("%w: questions response is not json", ErrMalformedResponse)
	}

	if len(items) < count {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", ErrMalformedResponse, count, len(items))
	}
	items = items[:count]

	for i := range items {
		items[i].Text = strings.TrimSpace(items[i].Text)
		if items[i].Text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrMalformedResponse, i)
		}

		difficulty := strings.ToLower(strings.TrimSpace(items[i].Difficulty))
		switch difficulty {
		case "easy", "medium", "hard":
			items[i].Difficulty = difficulty
		default:
			return nil, fmt.Errorf("%w: question %d has difficulty %q", ErrMalformedResponse, i, items[i].Difficulty)
		}

		keywords := make([]string, 0, len(items[i].ExpectedKeywords))
		for _, keyword := range items[i].ExpectedKeywords {
			if trimmed := strings.TrimSpace(keyword); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: question %d has no expected keywords", ErrMalformedResponse, i)
		}
		items[i].ExpectedKeywords = keywords
	}

	return items, nil
}

func parseScore(content string) (AnswerScore, error) {
	var payload struct {
		Accuracy      *float64 `json:"accuracy"`
		Relevance     *float64 `json:"relevance"`
		Communication *float64 `json:"communication"`
		Clarity       *float64 `json:"clarity"`
		Confidence    *float64 `json:"confidence"`
		Feedback      string   `json:"feedback"`
	}

	if err := json.Unmarshal([]byte(stripCodeFences(content)), &payload); err != nil {
		return AnswerScore{}, fmt.Errorf("%w: decode score: %v", ErrMalformedResponse, err)
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"accuracy", payload.Accuracy},
		{"relevance", payload.Relevance},
		{"communication", payload.Communication},
		{"clarity", payload.Clarity},
		{"confidence", payload.Confidence},
	}
	for _, field := range fields {
		if field.value == nil {
			return AnswerScore{}, fmt.Errorf("%w: missing %s score", ErrMalformedResponse, field.name)
		}
		if math.IsNaN(*field.value) || *field.value < 0 || *field.value > 10 {
			return AnswerScore{}, fmt.Errorf("%w: %s score %v out of range", ErrMalformedResponse, field.name, *field.value)
		}
	}

	return AnswerScore{
		Accuracy:      *payload.Accuracy,
		Relevance:     *payload.Relevance,
		Communication: *payload.Communication,
		Clarity:       *payload.Clarity,
		Confidence:    *payload.Confidence,
		Feedback:      strings.TrimSpace(payload.Feedback),
	}, nil
}

// parseReport never fails. Undecodable content yields the manual review fallback.
func parseReport(content string) Report {
	var payload struct {
		Summary        string `json:"summary"`
		Recommendation string `json:"recommendation"`
	}

	if err := json.Unmarshal([]byte(stripCodeFences(content)), &payload); err != nil {
		return fallbackReport()
	}

	summary := strings.TrimSpace(payload.Summary)
	if summary == "" {
		return fallbackReport()
	}

	return Report{
		Summary:        summary,
		Recommendation: NormalizeRecommendation(payload.Recommendation),
	}
}

func fallbackReport() Report {
	return Report{
		Summary:        FallbackSummary,
		Recommendation: RecommendationManualReview,
		Fallback:       true,
	}
}

// NormalizeRecommendation maps free-form labels onto the known set.
// Anything unrecognised becomes "Manual Review Required".
func NormalizeRecommendation(label string) string {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(label, "-", " ")), " "))
	if normalized, ok := recommendationLabels[key]; ok {
		return normalized
	}
	return RecommendationManualReview
}
