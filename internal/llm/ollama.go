package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Ollama calls a local Ollama server's /api/chat.
type Ollama struct {
	client *resty.Client
}

func NewOllama(baseURL string, timeout time.Duration) *Ollama {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Ollama{client: c}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	opts := map[string]interface{}{}
	if req.Temperature != nil {
		opts["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	if len(opts) == 0 {
		opts = nil
	}

	var out ollamaChatResponse
	var failure ollamaChatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&ollamaChatRequest{Model: req.Model, Messages: req.Messages, Options: opts}).
		SetResult(&out).
		SetError(&failure).
		Post("/api/chat")
	if err != nil {
		return "", upstream(o.Name(), err)
	}
	if resp.IsError() {
		msg := failure.Error
		if msg == "" {
			msg = resp.String()
		}
		return "", upstream(o.Name(), fmt.Errorf("status %d: %s", resp.StatusCode(), msg))
	}
	text := trimReply(out.Message.Content)
	if text == "" {
		return "", emptyReply(o.Name())
	}
	return text, nil
}
