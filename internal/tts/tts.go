// Package tts converts participant replies to audio.
package tts

import (
	"context"
	"io"
	"strings"
)

// Voice selects how a backend should speak.
type Voice struct {
	// Name is the backend voice id, e.g. "onyx" or "en_US-amy-medium".
	Name string
	// Language and TLD select the Google Translate accent.
	Language string
	TLD      string
	// Speed is a rate multiplier; zero means the backend default.
	Speed float64
	// Expressive applies the punctuation transform before synthesis.
	Expressive bool
}

// Service converts text to speech audio. The caller closes the reader.
type Service interface {
	Name() string
	MIMEType() string
	Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error)
}

// Expressive inserts a space after each '!' and '?' to encourage livelier prosody.
func Expressive(text string) string {
	if !strings.ContainsAny(text, "!?") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		b.WriteRune(r)
		if r == '!' || r == '?' {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// prepare validates text and applies the voice's transform.
func prepare(text string, voice Voice) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if voice.Expressive {
		text = Expressive(text)
	}
	return text, nil
}
