package turn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Registry forwards in process to registered coordinators.
type Registry struct {
	mu           sync.RWMutex
	coordinators map[Participant]*Coordinator
}

func NewRegistry() *Registry {
	return &Registry{coordinators: make(map[Participant]*Coordinator)}
}

func (r *Registry) Register(c *Coordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coordinators[c.Participant()] = c
}

// Coordinator returns the coordinator registered for p.
func (r *Registry) Coordinator(p Participant) (*Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coordinators[p]
	return c, ok
}

func (r *Registry) Forward(ctx context.Context, to Participant, in Incoming) (Reply, error) {
	c, ok := r.Coordinator(to)
	if !ok {
		return Reply{}, fmt.Errorf("no coordinator registered for %s", to)
	}
	return c.Handle(ctx, in)
}

// HTTPForwarder posts to a peer service's /api/{participant}/llm endpoint.
type HTTPForwarder struct {
	client *resty.Client
}

func NewHTTPForwarder(baseURL string, timeout time.Duration) *HTTPForwarder {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &HTTPForwarder{client: c}
}

type peerResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	ModelUsed string `json:"model_used"`
	Error     string `json:"error"`
}

func (h *HTTPForwarder) Forward(ctx context.Context, to Participant, in Incoming) (Reply, error) {
	var out peerResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(&in).
		SetResult(&out).
		SetError(&out).
		SetPathParam("participant", string(to)).
		Post("/api/{participant}/llm")
	if err != nil {
		return Reply{}, err
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.String()
		}
		return Reply{}, errors.New(msg)
	}
	return Reply{Response: out.Response, ModelUsed: out.ModelUsed, Participant: to}, nil
}
