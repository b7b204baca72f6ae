package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestExpressive(t *testing.T) {
	assert.Equal(t, "Really? Yes! ", Expressive("Really?Yes!"))
	assert.Equal(t, "plain text.", Expressive("plain text."))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"short"}, Chunk("  short ", 100))

	text := strings.Repeat("word ", 30) + "end. " + strings.Repeat("more ", 30)
	chunks := Chunk(text, 100)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
		assert.Equal(t, strings.TrimSpace(c), c)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))

	long := strings.Repeat("x", 250)
	assert.Equal(t, []string{strings.Repeat("x", 100), strings.Repeat("x", 100), strings.Repeat("x", 50)}, Chunk(long, 100))
}

func TestEmptyTextRejected(t *testing.T) {
	for _, s := range []Service{
		NewGoogleTranslate("http://unused", time.Second),
		NewOpenAI("http://unused", "k", time.Second),
		NewPiper("http://unused", time.Second),
	} {
		_, err := s.Synthesize(context.Background(), "   ", Voice{})
		assert.ErrorIs(t, err, ErrEmptyText, s.Name())
	}
}

func TestGoogleTranslateChunksAndConcatenates(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3[" + r.URL.Query().Get("idx") + "]"))
	}))
	defer srv.Close()

	g := NewGoogleTranslate(srv.URL, 5*time.Second)
	text := strings.Repeat("Group discussions reward clarity. ", 5)
	rc, err := g.Synthesize(context.Background(), text, VoiceFor("llm1", "gtts", "en", "com.au"))
	require.NoError(t, err)

	n := int(calls.Load())
	require.Equal(t, len(Chunk(text, maxChunkChars)), n)
	out := readAll(t, rc)
	assert.True(t, strings.HasPrefix(out, "ID3[0]"))
	assert.Contains(t, out, "ID3[1]")
	assert.Equal(t, "audio/mp3", g.MIMEType())
}

func TestGoogleTranslateHostFromTLD(t *testing.T) {
	g := NewGoogleTranslate("", time.Second)
	assert.Equal(t, "https://translate.google.com.au", g.host(Voice{TLD: "com.au"}))
	assert.Equal(t, "https://translate.google.com", g.host(Voice{}))
}

func TestGoogleTranslateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGoogleTranslate(srv.URL, time.Second).Synthesize(context.Background(), "hello", Voice{})
	var se *SynthesisError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "gtts", se.Provider)
	assert.Equal(t, "429", se.Code)
	assert.True(t, se.Retryable)
}

func TestOpenAISynthesize(t *testing.T) {
	var got speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	rc, err := NewOpenAI(srv.URL, "sk-test", 5*time.Second).Synthesize(context.Background(), "Wow!Great", VoiceFor("llm2", "openai", "en", "com"))
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", readAll(t, rc))
	assert.Equal(t, "onyx", got.Voice)
	assert.Equal(t, "mp3", got.ResponseFormat)
	assert.Equal(t, "Wow! Great", got.Input)
	assert.Equal(t, openAIDefaultModel, got.Model)
}

func TestOpenAIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL, "bad", time.Second).Synthesize(context.Background(), "hello", Voice{})
	var se *SynthesisError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "invalid_api_key", se.Code)
	assert.False(t, se.Retryable)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestPiperSynthesize(t *testing.T) {
	var got piperRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	p := Instrumented(NewPiper(srv.URL+"/tts", time.Second))
	rc, err := p.Synthesize(context.Background(), "Hello there?", VoiceFor("alt", "piper", "en", "com"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", readAll(t, rc))
	assert.Equal(t, "en_US-amy-medium", got.Voice)
	assert.Equal(t, "Hello there? ", got.Text)
	assert.Equal(t, 1.0, got.LengthScale)
	assert.Equal(t, "audio/wav", p.MIMEType())
}
