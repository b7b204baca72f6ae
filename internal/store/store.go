package store

import (
	"context"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (mongo, postgres, sqlite).
type Store interface {
	Records() Records
	Ping(ctx context.Context) error
	Close() error
}

// Records persists per-user speech, screenshots and evaluations.
// Appends upsert the record and overwrite its topic. Get and SetEvaluation
// return a *model.NotFoundError for unknown users; an append that would push
// the record past the document ceiling returns a *model.CapacityError.
type Records interface {
	UpsertProfile(ctx context.Context, id model.Identity) error
	AppendSpeech(ctx context.Context, userID, topic string, e model.SpeechEntry) error
	AppendScreenshot(ctx context.Context, userID, topic string, s model.Screenshot) error
	Get(ctx context.Context, userID string) (*model.UserRecord, error)
	SetEvaluation(ctx context.Context, userID string, ev model.StoredEvaluation) error
}

// Size accounting shared by drivers that enforce the ceiling themselves.
const (
	RecordOverhead = 256
	ItemOverhead   = 64
)

// ProfileSize is the accounted size of a fresh record carrying id.
func ProfileSize(id model.Identity) int {
	return RecordOverhead + len(id.Email) + len(id.Name) + len(id.Picture)
}

// ItemSize is the accounted size of one appended entry or screenshot.
func ItemSize(payload string) int {
	return ItemOverhead + len(payload)
}

// ErrUserNotFound is the canonical lookup miss.
func ErrUserNotFound() error {
	return model.NewNotFoundError("user_id", "User not found")
}
