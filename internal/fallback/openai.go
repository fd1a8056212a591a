package fallback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"partyplnr/internal/common/config"
	apperrors "partyplnr/internal/common/errors"
	apphttp "partyplnr/internal/common/http"
)

const systemPrompt = `You are PartyPlnr, a friendly party planning assistant for the Houston area.
Only respond using these real vendors from our catalog. Never make up vendors, phone numbers or links.
If none of the vendors fit, say so briefly and ask the user to describe the service and city they need.`

// OpenAICompleter calls the chat completions API.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAICompleter(cfg config.AIConfig) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewAuthenticationError("AI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if timeout := config.GetDuration(cfg.Timeout); timeout > 0 {
		clientCfg.HTTPClient = apphttp.NewClient(timeout, "partyplnr")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden) {
			return "", apperrors.NewAuthenticationError(apiErr.Message)
		}
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai completion returned empty content")
	}
	return text, nil
}

func userPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Vendors:\n")
	if strings.TrimSpace(req.CandidateBlocks) == "" {
		b.WriteString("(no catalog vendors matched)\n")
	} else {
		b.WriteString(req.CandidateBlocks)
		b.WriteString("\n")
	}
	b.WriteString("\nRequest: ")
	b.WriteString(req.UserMessage)
	return b.String()
}
