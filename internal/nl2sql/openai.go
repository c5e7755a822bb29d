package nl2sql

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/talkdb/talkdb/internal/blog"
)

const providerName = "openai-compatible"

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OpenAITranslator talks to any OpenAI-compatible chat completions endpoint.
// The default deployment points it at Gemini's compatibility layer.
type OpenAITranslator struct {
	client      *openai.Client
	apiKey      string
	model       string
	temperature float32
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = httpClient

	return &OpenAITranslator{
		client:      openai.NewClientWithConfig(clientConfig),
		apiKey:      apiKey,
		model:       model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Translate sends one prompt and returns the sanitized SQL. A missing API key
// fails here rather than at construction so the server can still start.
func (t *OpenAITranslator) Translate(ctx context.Context, req Request) (Result, error) {
	if t.apiKey == "" {
		return Result{}, ErrMissingAPIKey
	}
	schema := req.Schema
	if strings.TrimSpace(schema) == "" {
		schema = blog.SchemaContext
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: t.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(schema, req.NaturalLanguage)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("request chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("empty chat completion choices")
	}

	sql := SanitizeSQL(resp.Choices[0].Message.Content)
	if sql == "" {
		return Result{}, ErrEmptySQL
	}
	return Result{
		SQL:      sql,
		Provider: providerName,
		Model:    t.model,
	}, nil
}
