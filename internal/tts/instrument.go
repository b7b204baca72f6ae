package tts

import (
	"context"
	"io"
	"time"

	"github.com/Vijaykv5/Intereractive-GD/internal/metrics"
)

type instrumented struct{ Service }

// Instrumented wraps a Service with upstream metrics.
func Instrumented(s Service) Service { return instrumented{s} }

func (i instrumented) Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := i.Service.Synthesize(ctx, text, voice)
	metrics.ObserveUpstream("tts_"+i.Name(), start, err)
	return rc, err
}
