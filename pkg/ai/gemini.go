package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiConfig defines configuration options for the Gemini completer.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiCompleter implements Completer against the Google Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiCompleter dials the Gemini API.
func NewGeminiCompleter(ctx context.Context, cfg GeminiConfig) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	return &GeminiCompleter{client: client, cfg: cfg}, nil
}

// Provider identifies the backend in metrics and logs.
func (c *GeminiCompleter) Provider() string {
	return "gemini"
}

// Complete sends the prompt and concatenates the text parts of the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	// GenerativeModel carries per-request settings, so each call gets its own.
	model := c.client.GenerativeModel(c.cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(c.cfg.Temperature)
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from gemini")
	}

	builder := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// Close releases the underlying client connection.
func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}
