package tts

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flaky struct {
	failures  int
	retryable bool
	calls     int
}

func (f *flaky) Name() string     { return "flaky" }
func (f *flaky) MIMEType() string { return "audio/mp3" }

func (f *flaky) Synthesize(context.Context, string, Voice) (io.ReadCloser, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, NewSynthesisError("flaky", "503", "busy", nil, f.retryable)
	}
	return io.NopCloser(strings.NewReader("ok")), nil
}

func TestWithRetry_RecoversFromRetryable(t *testing.T) {
	f := &flaky{failures: 2, retryable: true}
	s := WithRetry(f, 3, time.Millisecond)

	rc, err := s.Synthesize(context.Background(), "hi", Voice{})
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, "flaky", s.Name())
}

func TestWithRetry_GivesUp(t *testing.T) {
	f := &flaky{failures: 5, retryable: true}
	_, err := WithRetry(f, 3, time.Millisecond).Synthesize(context.Background(), "hi", Voice{})
	require.Error(t, err)
	assert.Equal(t, 3, f.calls)
}

func TestWithRetry_NonRetryableFailsFast(t *testing.T) {
	f := &flaky{failures: 1, retryable: false}
	_, err := WithRetry(f, 3, time.Millisecond).Synthesize(context.Background(), "hi", Voice{})
	require.Error(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestWithRetry_SingleAttemptIsPassThrough(t *testing.T) {
	f := &flaky{}
	assert.Equal(t, Service(f), WithRetry(f, 1, time.Millisecond))
}
