package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSpeechCommand(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/speech", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"message":"Speech stored successfully"}`))
	}))
	defer srv.Close()

	out, err := run(t, "--api", srv.URL, "speech", "hello world", "--user", "u1", "--topic", "AI")
	require.NoError(t, err)
	assert.Contains(t, out, "Speech stored successfully")
	assert.Equal(t, map[string]string{"user_id": "u1", "text": "hello world", "topic": "AI"}, got)
}

func TestUserCommand_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/ghost/data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"User not found"}`))
	}))
	defer srv.Close()

	_, err := run(t, "--api", srv.URL, "user", "ghost")
	require.Error(t, err)
	assert.Equal(t, "http 404: User not found", err.Error())
}

func TestTTSCommand_WritesAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tts/alt", r.URL.Path)
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF...."))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "out.wav")
	_, err := run(t, "--api", srv.URL, "tts", "hi", "--voice", "alt", "--out", dst)
	require.NoError(t, err)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "RIFF....", string(b))
}

func TestSayCommand_RejectsUnknownParticipant(t *testing.T) {
	_, err := run(t, "--api", "http://127.0.0.1:1", "say", "hi", "--to", "llm3")
	assert.Error(t, err)
}
