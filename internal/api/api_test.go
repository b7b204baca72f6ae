package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vijaykv5/Intereractive-GD/internal/evaluation"
	"github.com/Vijaykv5/Intereractive-GD/internal/identity"
	"github.com/Vijaykv5/Intereractive-GD/internal/llm"
	"github.com/Vijaykv5/Intereractive-GD/internal/participant"
	"github.com/Vijaykv5/Intereractive-GD/internal/services"
	"github.com/Vijaykv5/Intereractive-GD/internal/store/sqlite"
	"github.com/Vijaykv5/Intereractive-GD/internal/tts"
	"github.com/Vijaykv5/Intereractive-GD/internal/turn"
)

const evaluationJSON = `{
  "topic_coverage": {"score": 0.8, "analysis": "a", "key_points_covered": ["x"], "missing_points": []},
  "depth_of_analysis": {"score": 0.6, "analysis": "b"},
  "relevance": {"score": 0.9, "analysis": "c"},
  "structure": {"score": 0.7, "analysis": "d"},
  "overall_score": 0.75,
  "summary": "good",
  "suggestions": ["more examples"]
}`

type fakeLLM struct {
	mu         sync.Mutex
	evaluation string
	fail       bool
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("upstream down")
	}
	if req.Model == "test/evaluator" {
		return f.evaluation, nil
	}
	return "reply from " + req.Model, nil
}

type fakeTTS struct {
	name, mime string
	err        error
	got        tts.Voice
}

func (f *fakeTTS) Name() string     { return f.name }
func (f *fakeTTS) MIMEType() string { return f.mime }

func (f *fakeTTS) Synthesize(_ context.Context, text string, voice tts.Voice) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = voice
	return io.NopCloser(strings.NewReader("AUDIO:" + text)), nil
}

type fakeHealth struct{ ok bool }

func (f fakeHealth) IsHealthy() bool             { return f.ok }
func (f fakeHealth) Components() map[string]bool { return map[string]bool{"store": f.ok} }

type harness struct {
	handler http.Handler
	client  *fakeLLM
	primary *fakeTTS
	alt     *fakeTTS
	turns   turn.Store
}

func newHarness(t *testing.T, maxBytes int) *harness {
	t.Helper()
	log := zerolog.Nop()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "gd.db"), maxBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	records := services.NewRecordsService(st, log)

	client := &fakeLLM{evaluation: evaluationJSON}
	turns := turn.NewMemoryStore(turn.LLM1)
	reg := turn.NewRegistry()
	reg.Register(turn.NewCoordinator(turn.LLM1, turns, participant.NewResponder(participant.Participant1("test/participant-1"), client, log), reg, log))
	reg.Register(turn.NewCoordinator(turn.LLM2, turns, participant.NewResponder(participant.Participant2("test/participant-2"), client, log), reg, log))

	resolver, err := identity.New(identity.ModeDecode, "", log)
	require.NoError(t, err)
	evalSvc, err := evaluation.NewService(records, client, "test/evaluator", log)
	require.NoError(t, err)

	primary := &fakeTTS{name: "gtts", mime: "audio/mp3"}
	alt := &fakeTTS{name: "piper", mime: "audio/wav"}
	speech := NewTTSHandler(
		TTSVoices{Service: primary, Voice: tts.VoiceFor("llm1", "gtts", "en", "com.au")},
		TTSVoices{Service: alt, Voice: tts.VoiceFor("llm2", "piper", "en", "com.au")},
		TTSVoices{Service: alt, Voice: tts.VoiceFor("alt", "piper", "en", "com.au")},
	)

	h := NewRouter(log, "*",
		NewHealthHandler(fakeHealth{ok: true}),
		NewAuthHandler(resolver, records),
		NewUserHandler(records),
		NewDiscussionHandler(reg, turns),
		speech,
		NewEvaluationHandler(evalSvc),
	)
	return &harness{handler: h, client: client, primary: primary, alt: alt, turns: turns}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestSpeechAndData(t *testing.T) {
	h := newHarness(t, 16*1024*1024)

	rr := h.do(t, http.MethodPost, "/api/user/speech", map[string]string{"user_id": "u1", "text": "hello", "topic": "AI"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Speech stored successfully", decode(t, rr)["message"])

	rr = h.do(t, http.MethodPost, "/api/user/screenshot", map[string]string{"user_id": "u1", "image_data": "data:image/png;base64,AAAA", "topic": "AI"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = h.do(t, http.MethodGet, "/api/user/u1/data", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, "AI", data["topic"])
	shots := data["screenshots"].([]interface{})
	require.Len(t, shots, 1)
	assert.Equal(t, "[Binary data, length: 26]", shots[0].(map[string]interface{})["image_data"])

	rr = h.do(t, http.MethodGet, "/api/user/u1/screenshots", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	full := decode(t, rr)["screenshots"].([]interface{})
	assert.Equal(t, "data:image/png;base64,AAAA", full[0].(map[string]interface{})["image_data"])
}

func TestSpeech_MissingData(t *testing.T) {
	h := newHarness(t, 1024)
	rr := h.do(t, http.MethodPost, "/api/user/speech", map[string]string{"user_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing required data", decode(t, rr)["error"])
}

func TestRecordWrites_InvalidUserID(t *testing.T) {
	h := newHarness(t, 1024)
	rr := h.do(t, http.MethodPost, "/api/user/speech", map[string]string{"user_id": "a b", "text": "hello", "topic": "AI"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid user_id", decode(t, rr)["error"])
}

func TestData_UnknownUser(t *testing.T) {
	h := newHarness(t, 1024)
	rr := h.do(t, http.MethodGet, "/api/user/ghost/data", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not found", body["error"])
}

func TestScreenshot_TooLarge(t *testing.T) {
	h := newHarness(t, 4096)
	rr := h.do(t, http.MethodPost, "/api/user/screenshot", map[string]string{
		"user_id": "u1", "image_data": strings.Repeat("A", 8000), "topic": "t",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "Screenshot too large for database storage", decode(t, rr)["error"])
}

func TestSelfTestEndpoints(t *testing.T) {
	h := newHarness(t, 16*1024*1024)

	rr := h.do(t, http.MethodGet, "/api/user/test", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "User data API is working correctly", decode(t, rr)["message"])

	rr = h.do(t, http.MethodGet, "/api/user/test-speech", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Test user created successfully", decode(t, rr)["message"])

	rr = h.do(t, http.MethodGet, "/api/user/test-speech", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Test user updated successfully", body["message"])
	entries := body["user_data"].(map[string]interface{})["speech_entries"].([]interface{})
	assert.Len(t, entries, 2)
}

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified"))
	require.NoError(t, err)
	return tok
}

func TestGoogleLogin(t *testing.T) {
	h := newHarness(t, 16*1024*1024)

	tok := unsignedToken(t, jwt.MapClaims{"sub": "1234567890", "email": "a@example.com", "name": "Ada", "picture": "http://p"})
	rr := h.do(t, http.MethodPost, "/api/auth/google", map[string]string{"token": tok})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	user := decode(t, rr)["user"].(map[string]interface{})
	assert.Equal(t, "1234567890", user["user_id"])
	assert.Equal(t, "a@example.com", user["email"])

	rr = h.do(t, http.MethodGet, "/api/user/1234567890/data", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ada", decode(t, rr)["data"].(map[string]interface{})["name"])
}

func TestGoogleLogin_BadTokens(t *testing.T) {
	h := newHarness(t, 1024)

	rr := h.do(t, http.MethodPost, "/api/auth/google", map[string]string{"token": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No token provided", decode(t, rr)["error"])

	rr = h.do(t, http.MethodPost, "/api/auth/google", map[string]string{"token": "not-a-jwt"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodPost, "/api/auth/google", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No data provided", decode(t, rr)["error"])
}

func TestDiscussionTurns(t *testing.T) {
	h := newHarness(t, 1024)

	rr := h.do(t, http.MethodPost, "/api/llm1/llm", map[string]interface{}{
		"text": "start", "topic": "AI", "is_initial_message": true, "user_id": "u1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "reply from test/participant-1", body["response"])
	assert.Equal(t, "test/participant-1", body["model_used"])

	// llm1 again without a user message is refused
	rr = h.do(t, http.MethodPost, "/api/llm1/llm", map[string]interface{}{
		"text": "more", "topic": "AI", "is_user_message": false, "user_id": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Not LLM1's turn", decode(t, rr)["error"])

	rr = h.do(t, http.MethodGet, "/api/discussions/u1/turn", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "llm2", decode(t, rr)["turn"])

	// a user message sent to llm1 out of turn is answered by llm2
	rr = h.do(t, http.MethodPost, "/api/llm1/llm", map[string]interface{}{
		"text": "what do you think?", "topic": "AI", "is_user_message": true, "user_id": "u1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "reply from test/participant-2", decode(t, rr)["response"])

	cur, err := h.turns.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, turn.LLM1, cur)

	// other discussions are independent
	cur, err = h.turns.Current(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, turn.LLM1, cur)
}

func TestDiscussion_OmittedUserFlagIsUserMessage(t *testing.T) {
	h := newHarness(t, 1024)

	// the raise-hand call carries no is_user_message
	rr := h.do(t, http.MethodPost, "/api/llm2/llm", map[string]interface{}{
		"text": "User raised hand", "topic": "AI", "user_interrupted": true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "reply from test/participant-1", decode(t, rr)["response"])

	cur, err := h.turns.Current(context.Background(), turn.DefaultDiscussionID)
	require.NoError(t, err)
	assert.Equal(t, turn.LLM2, cur)
}

func TestDiscussion_Errors(t *testing.T) {
	h := newHarness(t, 1024)

	rr := h.do(t, http.MethodPost, "/api/llm2/llm", map[string]interface{}{"topic": "AI"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No text provided", decode(t, rr)["error"])

	rr = h.do(t, http.MethodPost, "/api/llm3/llm", map[string]interface{}{"text": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	h.client.fail = true
	rr = h.do(t, http.MethodPost, "/api/llm1/llm", map[string]interface{}{"text": "x", "topic": "AI", "discussion_id": "d9"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "Failed to get response from LLM")

	cur, err := h.turns.Current(context.Background(), "d9")
	require.NoError(t, err)
	assert.Equal(t, turn.LLM1, cur, "failed generation keeps the turn")
}

func TestTTS(t *testing.T) {
	h := newHarness(t, 1024)

	rr := h.do(t, http.MethodPost, "/api/llm1/tts", map[string]string{"text": "Hello there"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mp3", rr.Header().Get("Content-Type"))
	assert.Equal(t, "AUDIO:Hello there", rr.Body.String())
	assert.Equal(t, "com.au", h.primary.got.TLD)

	rr = h.do(t, http.MethodPost, "/api/llm2/tts", map[string]string{"text": "Really?"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/wav", rr.Header().Get("Content-Type"))
	assert.True(t, h.alt.got.Expressive)

	rr = h.do(t, http.MethodPost, "/api/tts/alt", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No text provided", decode(t, rr)["error"])
}

func TestTTS_BackendFailure(t *testing.T) {
	h := newHarness(t, 1024)
	h.alt.err = tts.NewSynthesisError("piper", "503", "unavailable", nil, true)

	rr := h.do(t, http.MethodPost, "/api/tts/alt", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.True(t, strings.HasPrefix(decode(t, rr)["error"].(string), "Alternative TTS failed: piper"))
}

func TestEvaluationEndpoint(t *testing.T) {
	h := newHarness(t, 16*1024*1024)
	h.do(t, http.MethodPost, "/api/user/speech", map[string]string{"user_id": "u1", "text": "AI helps doctors.", "topic": "AI"})

	rr := h.do(t, http.MethodGet, "/api/user/u1/gd-evaluation", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	ev := decode(t, rr)["evaluation"].(map[string]interface{})
	assert.Equal(t, 0.75, ev["overall_score"])

	rr = h.do(t, http.MethodGet, "/api/user/u1/data", nil)
	stored := decode(t, rr)["data"].(map[string]interface{})["gd_evaluation"].(map[string]interface{})
	assert.Equal(t, "good", stored["evaluation"].(map[string]interface{})["summary"])

	rr = h.do(t, http.MethodPost, "/api/user/ghost/gd-evaluation", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvaluationEndpoint_Malformed(t *testing.T) {
	h := newHarness(t, 16*1024*1024)
	h.do(t, http.MethodPost, "/api/user/speech", map[string]string{"user_id": "u1", "text": "hi", "topic": "AI"})
	h.client.evaluation = `{"summary": "only this"}`

	rr := h.do(t, http.MethodPost, "/api/user/u1/gd-evaluation", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode(t, rr)
	assert.Contains(t, body["error"], "invalid response structure")
	assert.NotEmpty(t, body["violations"])
}

func TestHealthMetricsAndCORS(t *testing.T) {
	h := newHarness(t, 1024)

	rr := h.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode(t, rr)["status"])

	rr = h.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/llm1/llm", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
