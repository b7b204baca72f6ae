package tts

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type retrying struct {
	Service
	attempts int
	base     time.Duration
}

// WithRetry retries retryable SynthesisErrors up to attempts times in total,
// with exponential backoff starting at base.
func WithRetry(s Service, attempts int, base time.Duration) Service {
	if attempts <= 1 {
		return s
	}
	return retrying{Service: s, attempts: attempts, base: base}
}

func (r retrying) Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.base
	exp.Multiplier = 2
	exp.MaxInterval = 8 * r.base
	exp.Reset()

	for attempt := 1; ; attempt++ {
		rc, err := r.Service.Synthesize(ctx, text, voice)
		if err == nil {
			return rc, nil
		}
		var se *SynthesisError
		if !errors.As(err, &se) || !se.Retryable || attempt >= r.attempts {
			return nil, err
		}
		select {
		case <-time.After(exp.NextBackOff()):
		case <-ctx.Done():
			return nil, err
		}
	}
}
