package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
)

// CapacityLimit is the ceiling makeStore must configure for the suite.
const CapacityLimit = 8 * 1024

// Run exercises the compliance suite against a store.Store implementation.
// makeStore must return a clean store whose document ceiling is CapacityLimit.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	recs := s.Records()

	require.NoError(t, s.Ping(ctx))

	t.Run("unknown user", func(t *testing.T) {
		_, err := recs.Get(ctx, "u-"+uuid.NewString())
		assert.True(t, model.IsNotFoundError(err), "got %v", err)

		err = recs.SetEvaluation(ctx, "u-"+uuid.NewString(), model.StoredEvaluation{Timestamp: time.Now()})
		assert.True(t, model.IsNotFoundError(err), "got %v", err)
	})

	t.Run("speech appends and topic last write wins", func(t *testing.T) {
		userID := "u-" + uuid.NewString()
		t1 := time.Now().UTC().Truncate(time.Millisecond)
		t2 := t1.Add(time.Second)
		require.NoError(t, recs.AppendSpeech(ctx, userID, "t1", model.SpeechEntry{Timestamp: t1, Text: "hello"}))
		require.NoError(t, recs.AppendSpeech(ctx, userID, "t2", model.SpeechEntry{Timestamp: t2, Text: "world"}))

		got, err := recs.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, "t2", got.Topic)
		require.Len(t, got.SpeechEntries, 2)
		assert.Equal(t, "hello", got.SpeechEntries[0].Text)
		assert.Equal(t, "world", got.SpeechEntries[1].Text)
		assert.WithinDuration(t, t1, got.SpeechEntries[0].Timestamp, time.Millisecond)
		assert.Empty(t, got.Screenshots)
		assert.Nil(t, got.GDEvaluation)
	})

	t.Run("profile upsert keeps history", func(t *testing.T) {
		userID := "u-" + uuid.NewString()
		require.NoError(t, recs.UpsertProfile(ctx, model.Identity{UserID: userID, Email: "a@example.test", Name: "Ada"}))
		require.NoError(t, recs.AppendSpeech(ctx, userID, "climate", model.SpeechEntry{Timestamp: time.Now(), Text: "first"}))
		require.NoError(t, recs.UpsertProfile(ctx, model.Identity{UserID: userID, Email: "a@example.test", Name: "Ada L", Picture: "https://p"}))

		got, err := recs.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Ada L", got.Name)
		assert.Equal(t, "https://p", got.Picture)
		assert.Equal(t, "climate", got.Topic)
		require.Len(t, got.SpeechEntries, 1)
	})

	t.Run("screenshot round trip", func(t *testing.T) {
		userID := "u-" + uuid.NewString()
		payload := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo=", 100)
		require.NoError(t, recs.AppendScreenshot(ctx, userID, "ai", model.Screenshot{Timestamp: time.Now(), ImageData: payload}))

		got, err := recs.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, got.Screenshots, 1)
		assert.Equal(t, payload, got.Screenshots[0].ImageData)
		assert.Equal(t, "ai", got.Topic)
	})

	t.Run("capacity ceiling", func(t *testing.T) {
		userID := "u-" + uuid.NewString()
		require.NoError(t, recs.AppendSpeech(ctx, userID, "before", model.SpeechEntry{Timestamp: time.Now(), Text: "kept"}))

		err := recs.AppendScreenshot(ctx, userID, "after", model.Screenshot{Timestamp: time.Now(), ImageData: strings.Repeat("A", CapacityLimit)})
		require.Error(t, err)
		assert.True(t, model.IsCapacityError(err), "got %v", err)

		got, err := recs.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "before", got.Topic)
		assert.Empty(t, got.Screenshots)
		assert.Len(t, got.SpeechEntries, 1)
	})

	t.Run("evaluation overwrite", func(t *testing.T) {
		userID := "u-" + uuid.NewString()
		require.NoError(t, recs.AppendSpeech(ctx, userID, "remote work", model.SpeechEntry{Timestamp: time.Now(), Text: "x"}))

		first := model.StoredEvaluation{Timestamp: time.Now().UTC(), Evaluation: model.Evaluation{OverallScore: 0.4, Summary: "ok", Suggestions: []string{"more data"}}}
		require.NoError(t, recs.SetEvaluation(ctx, userID, first))
		second := model.StoredEvaluation{Timestamp: time.Now().UTC(), Evaluation: model.Evaluation{
			TopicCoverage: model.TopicCoverage{Score: 0.9, Analysis: "broad", KeyPointsCovered: []string{"cost"}, MissingPoints: []string{}},
			OverallScore:  0.8,
			Summary:       "good",
			Suggestions:   []string{"cite sources"},
		}}
		require.NoError(t, recs.SetEvaluation(ctx, userID, second))

		got, err := recs.Get(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, got.GDEvaluation)
		assert.Equal(t, 0.8, got.GDEvaluation.Evaluation.OverallScore)
		assert.Equal(t, "good", got.GDEvaluation.Evaluation.Summary)
		assert.Equal(t, []string{"cost"}, got.GDEvaluation.Evaluation.TopicCoverage.KeyPointsCovered)
	})
}
