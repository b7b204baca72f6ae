// Package llm adapts hosted chat-completion APIs to a single Complete call.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/Vijaykv5/Intereractive-GD/internal/metrics"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request. Zero MaxTokens and a nil
// Temperature leave the provider defaults in place.
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// Client completes chat requests against one provider.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// UserPrompt builds a single-message request.
func UserPrompt(modelName, prompt string) Request {
	return Request{Model: modelName, Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// instrumented records latency and outcome for every call.
type instrumented struct{ Client }

// Instrument wraps c with upstream metrics.
func Instrument(c Client) Client { return instrumented{c} }

func (i instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := i.Client.Complete(ctx, req)
	metrics.ObserveUpstream("llm_"+i.Name(), start, err)
	return out, err
}

func upstream(service string, err error) error {
	return model.NewUpstreamError(service, service+" request failed", err)
}

func emptyReply(service string) error {
	return model.NewUpstreamError(service, service+" returned an empty completion", nil)
}

func trimReply(s string) string { return strings.TrimSpace(s) }
