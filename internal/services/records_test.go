package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/store/sqlite"
)

func newRecordsService(t *testing.T, maxBytes int) *RecordsService {
	t.Helper()
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "gd.db"), maxBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	svc := NewRecordsService(s, zerolog.Nop())
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestAddSpeech_TopicAndOrder(t *testing.T) {
	svc := newRecordsService(t, 16*1024*1024)
	ctx := context.Background()

	require.NoError(t, svc.AddSpeech(ctx, "u1", "t1", "hello"))
	require.NoError(t, svc.AddSpeech(ctx, "u1", "t2", "world"))

	rec, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t2", rec.Topic)
	assert.Equal(t, "hello world", rec.Transcript())
}

func TestAddSpeech_MissingData(t *testing.T) {
	svc := newRecordsService(t, 1024)
	err := svc.AddSpeech(context.Background(), "u1", "t", "")
	require.Error(t, err)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Missing required data", ve.Message)
}

func TestRecordWrites_RejectUnreadableUserID(t *testing.T) {
	svc := newRecordsService(t, 1024)
	ctx := context.Background()

	err := svc.AddSpeech(ctx, "a b", "t", "hello")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid user_id", ve.Message)

	err = svc.AddScreenshot(ctx, "../u1", "t", "data:image/png;base64,AAAA")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Get(ctx, "a b")
	assert.True(t, model.IsNotFoundError(err), "nothing was written")
}

func TestTrimScreenshot(t *testing.T) {
	small := strings.Repeat("a", ScreenshotTrimThreshold)
	assert.Equal(t, small, TrimScreenshot(small))

	big := strings.Repeat("b", ScreenshotTrimThreshold+1)
	got := TrimScreenshot(big)
	assert.Len(t, got, ScreenshotKeepBytes)
	assert.True(t, strings.HasPrefix(big, got))
}

func TestAddScreenshot_TrimsAndRoundTrips(t *testing.T) {
	svc := newRecordsService(t, 16*1024*1024)
	ctx := context.Background()
	big := strings.Repeat("Zm9v", ScreenshotTrimThreshold/4+1)

	require.NoError(t, svc.AddScreenshot(ctx, "u2", "ai", big))
	rec, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, rec.Screenshots, 1)
	assert.Equal(t, big[:ScreenshotKeepBytes], rec.Screenshots[0].ImageData)
}

func TestAddScreenshot_Capacity(t *testing.T) {
	svc := newRecordsService(t, 4096)
	err := svc.AddScreenshot(context.Background(), "u3", "ai", strings.Repeat("x", 5000))
	require.Error(t, err)
	assert.True(t, model.IsCapacityError(err))
	assert.Equal(t, "Screenshot too large for database storage", err.Error())
}

func TestSelfTest_CreatedThenUpdated(t *testing.T) {
	svc := newRecordsService(t, 16*1024*1024)
	ctx := context.Background()

	created, rec, err := svc.SelfTest(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, rec.SpeechEntries, 1)

	created, rec, err = svc.SelfTest(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, rec.SpeechEntries, 2)
	assert.Equal(t, TestUserID, rec.UserID)
}

func TestRedact(t *testing.T) {
	rec := &model.UserRecord{UserID: "u", Screenshots: []model.Screenshot{{ImageData: "abcd"}}}
	out := Redact(rec)
	assert.Equal(t, "[Binary data, length: 4]", out.Screenshots[0].ImageData)
	assert.Equal(t, "abcd", rec.Screenshots[0].ImageData)
}

func TestSaveEvaluation_UnknownUser(t *testing.T) {
	svc := newRecordsService(t, 1024)
	_, err := svc.SaveEvaluation(context.Background(), "ghost", model.Evaluation{})
	assert.True(t, model.IsNotFoundError(err))
}
