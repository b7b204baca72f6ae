package tts

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const openAIDefaultModel = "tts-1"

// OpenAI synthesizes MP3 with the OpenAI speech endpoint.
type OpenAI struct {
	client *resty.Client
	model  string
}

func NewOpenAI(baseURL, apiKey string, timeout time.Duration) *OpenAI {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &OpenAI{client: c, model: openAIDefaultModel}
}

func (o *OpenAI) Name() string     { return "openai" }
func (o *OpenAI) MIMEType() string { return "audio/mp3" }

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (o *OpenAI) Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error) {
	text, err := prepare(text, voice)
	if err != nil {
		return nil, err
	}
	name := voice.Name
	if name == "" {
		name = "alloy"
	}

	var failure openAIErrorBody
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&speechRequest{Model: o.model, Input: text, Voice: name, ResponseFormat: "mp3", Speed: voice.Speed}).
		SetError(&failure).
		Post("/audio/speech")
	if err != nil {
		return nil, NewSynthesisError(o.Name(), "", "request failed", err, true)
	}
	if resp.IsError() {
		msg := failure.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		code := failure.Error.Code
		if code == "" {
			code = strconv.Itoa(resp.StatusCode())
		}
		return nil, NewSynthesisError(o.Name(), code, msg, nil, retryableStatus(resp.StatusCode()))
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}
