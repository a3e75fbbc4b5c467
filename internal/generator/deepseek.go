package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultDeepSeekURL   = "https://api.deepseek.com"
	defaultDeepSeekModel = "deepseek-chat"
	chatCompletionsPath  = "/v1/chat/completions"
)

// DeepSeekClient calls an OpenAI-style chat completions endpoint.
type DeepSeekClient struct {
	client *resty.Client
	model  string
}

// DeepSeekConfig holds configuration for the DeepSeek client.
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewDeepSeekClient creates a new chat completions client.
func NewDeepSeekClient(cfg DeepSeekConfig) *DeepSeekClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultDeepSeekModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &DeepSeekClient{client: client, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one non-streaming completion request.
func (c *DeepSeekClient) Generate(ctx context.Context, system, user string, opts ...Option) (string, error) {
	o := buildOptions(opts)

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}

	var out chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(chatCompletionsPath)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
