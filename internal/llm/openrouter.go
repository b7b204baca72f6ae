package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenRouterConfig configures the OpenAI-compatible OpenRouter endpoint.
type OpenRouterConfig struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

// OpenRouter calls /chat/completions on an OpenAI-compatible API.
type OpenRouter struct {
	client *resty.Client
}

func NewOpenRouter(cfg OpenRouterConfig) *OpenRouter {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	if cfg.Referer != "" {
		c.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		c.SetHeader("X-Title", cfg.Title)
	}
	return &OpenRouter{client: c}
}

func (o *OpenRouter) Name() string { return "openrouter" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string      `json:"message"`
	Code    interface{} `json:"code,omitempty"`
}

func (o *OpenRouter) Complete(ctx context.Context, req Request) (string, error) {
	var out chatResponse
	var failure chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&chatRequest{
			Model:       req.Model,
			Messages:    req.Messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}).
		SetResult(&out).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		return "", upstream(o.Name(), err)
	}
	if resp.IsError() {
		msg := resp.String()
		if failure.Error != nil && failure.Error.Message != "" {
			msg = failure.Error.Message
		}
		return "", upstream(o.Name(), fmt.Errorf("status %d: %s", resp.StatusCode(), msg))
	}
	// OpenRouter reports some provider failures inside a 200 body.
	if out.Error != nil {
		return "", upstream(o.Name(), fmt.Errorf("%s", out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return "", emptyReply(o.Name())
	}
	text := trimReply(out.Choices[0].Message.Content)
	if text == "" {
		return "", emptyReply(o.Name())
	}
	return text, nil
}
