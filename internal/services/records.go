package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/metrics"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
)

// Screenshot payloads above the threshold are cut to their first ScreenshotKeepBytes.
const (
	ScreenshotTrimThreshold = 5 * 1024 * 1024
	ScreenshotKeepBytes     = 2 * 1024 * 1024
)

// Self-test fixture.
const (
	TestUserID    = "test_user_123"
	testUserTopic = "Test Topic"
	testUserText  = "This is a test speech entry"
)

// RecordsService owns writes to user records.
type RecordsService struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewRecordsService(s store.Store, log zerolog.Logger) *RecordsService {
	return &RecordsService{store: s, log: log, now: time.Now}
}

// SaveProfile records the identity on the user's record without touching history.
func (s *RecordsService) SaveProfile(ctx context.Context, id model.Identity) error {
	err := s.store.Records().UpsertProfile(ctx, id)
	metrics.RecordWrite("upsert_profile", err)
	return err
}

func (s *RecordsService) AddSpeech(ctx context.Context, userID, topic, text string) error {
	if userID == "" || text == "" {
		return model.NewValidationError("user_id", "Missing required data")
	}
	if err := validate.Identifier("user_id", userID); err != nil {
		return err
	}
	err := s.store.Records().AppendSpeech(ctx, userID, topic, model.SpeechEntry{Timestamp: s.now().UTC(), Text: text})
	metrics.RecordWrite("append_speech", err)
	if err != nil {
		return err
	}
	s.log.Debug().Str("user_id", userID).Str("topic", topic).Int("chars", len(text)).Msg("speech stored")
	return nil
}

// AddScreenshot stores imageData after applying the trim policy.
func (s *RecordsService) AddScreenshot(ctx context.Context, userID, topic, imageData string) error {
	if userID == "" || imageData == "" {
		return model.NewValidationError("user_id", "Missing required data")
	}
	if err := validate.Identifier("user_id", userID); err != nil {
		return err
	}
	stored := TrimScreenshot(imageData)
	if len(stored) != len(imageData) {
		s.log.Warn().
			Str("user_id", userID).
			Int("original_bytes", len(imageData)).
			Int("stored_bytes", len(stored)).
			Msg("screenshot trimmed")
	}
	err := s.store.Records().AppendScreenshot(ctx, userID, topic, model.Screenshot{Timestamp: s.now().UTC(), ImageData: stored})
	metrics.RecordWrite("append_screenshot", err)
	var ce *model.CapacityError
	if errors.As(err, &ce) {
		ce.Message = "Screenshot too large for database storage"
	}
	return err
}

// TrimScreenshot applies the deterministic size policy.
func TrimScreenshot(imageData string) string {
	if len(imageData) > ScreenshotTrimThreshold {
		return imageData[:ScreenshotKeepBytes]
	}
	return imageData
}

func (s *RecordsService) Get(ctx context.Context, userID string) (*model.UserRecord, error) {
	if userID == "" {
		return nil, model.NewValidationError("user_id", "user_id is required")
	}
	return s.store.Records().Get(ctx, userID)
}

// SaveEvaluation overwrites the stored evaluation.
func (s *RecordsService) SaveEvaluation(ctx context.Context, userID string, ev model.Evaluation) (*model.StoredEvaluation, error) {
	stored := model.StoredEvaluation{Timestamp: s.now().UTC(), Evaluation: ev}
	err := s.store.Records().SetEvaluation(ctx, userID, stored)
	metrics.RecordWrite("set_evaluation", err)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// SelfTest appends a fixed entry to the test user and reports whether the record was new.
func (s *RecordsService) SelfTest(ctx context.Context) (bool, *model.UserRecord, error) {
	_, err := s.store.Records().Get(ctx, TestUserID)
	created := model.IsNotFoundError(err)
	if err != nil && !created {
		return false, nil, err
	}
	if err := s.AddSpeech(ctx, TestUserID, testUserTopic, testUserText); err != nil {
		return false, nil, err
	}
	rec, err := s.store.Records().Get(ctx, TestUserID)
	if err != nil {
		return false, nil, err
	}
	return created, rec, nil
}

// Redact replaces screenshot payloads with a length marker.
func Redact(rec *model.UserRecord) *model.UserRecord {
	out := *rec
	out.Screenshots = make([]model.Screenshot, len(rec.Screenshots))
	for i, sh := range rec.Screenshots {
		out.Screenshots[i] = model.Screenshot{
			Timestamp: sh.Timestamp,
			ImageData: fmt.Sprintf("[Binary data, length: %d]", len(sh.ImageData)),
		}
	}
	return &out
}
