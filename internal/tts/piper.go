package tts

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Piper calls a Piper HTTP server, which answers with WAV audio.
type Piper struct {
	client *resty.Client
	url    string
}

func NewPiper(url string, timeout time.Duration) *Piper {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Piper{client: c, url: url}
}

func (p *Piper) Name() string     { return "piper" }
func (p *Piper) MIMEType() string { return "audio/wav" }

type piperRequest struct {
	Text        string  `json:"text"`
	Voice       string  `json:"voice,omitempty"`
	LengthScale float64 `json:"length_scale,omitempty"`
}

func (p *Piper) Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error) {
	text, err := prepare(text, voice)
	if err != nil {
		return nil, err
	}
	req := piperRequest{Text: text, Voice: voice.Name}
	if voice.Speed > 0 {
		// piper stretches duration; a faster voice needs a shorter length
		req.LengthScale = 1 / voice.Speed
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post(p.url)
	if err != nil {
		return nil, NewSynthesisError(p.Name(), "", "request failed", err, true)
	}
	if resp.IsError() {
		return nil, NewSynthesisError(p.Name(), strconv.Itoa(resp.StatusCode()), resp.String(), nil, retryableStatus(resp.StatusCode()))
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}
