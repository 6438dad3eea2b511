package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig defines configuration options for the OpenAI completer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// OpenAICompleter implements Completer against the OpenAI chat completion API.
type OpenAICompleter struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAICompleter builds a completer using the provided configuration.
func NewOpenAICompleter(cfg OpenAIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
	}, nil
}

// Provider identifies the backend in metrics and logs.
func (c *OpenAICompleter) Provider() string {
	return "openai"
}

// Complete requests a JSON object completion.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.User,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
