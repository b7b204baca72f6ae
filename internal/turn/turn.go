// Package turn coordinates which of the two simulated participants may speak
// next in a discussion.
package turn

import (
	"context"
	"fmt"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

// Participant identifies one of the two simulated speakers.
type Participant string

const (
	LLM1 Participant = "llm1"
	LLM2 Participant = "llm2"
)

// Peer returns the other participant.
func (p Participant) Peer() Participant {
	if p == LLM1 {
		return LLM2
	}
	return LLM1
}

func (p Participant) Valid() bool { return p == LLM1 || p == LLM2 }

// Label is the display form used in user-facing errors, e.g. "LLM2".
func (p Participant) Label() string {
	switch p {
	case LLM1:
		return "LLM1"
	case LLM2:
		return "LLM2"
	}
	return string(p)
}

// Parse validates a participant name.
func Parse(s string) (Participant, error) {
	p := Participant(s)
	if !p.Valid() {
		return "", model.NewValidationError("participant", fmt.Sprintf("unknown participant %q", s))
	}
	return p, nil
}

// Store holds the participant currently eligible to speak, per discussion.
// Discussions with no recorded state report the store's initial participant.
type Store interface {
	Current(ctx context.Context, discussionID string) (Participant, error)
	// CompareAndSwap moves the turn from -> to only if from is current.
	CompareAndSwap(ctx context.Context, discussionID string, from, to Participant) (bool, error)
	Ping(ctx context.Context) error
}

// DefaultDiscussionID is used when a request names neither a discussion nor a user.
const DefaultDiscussionID = "default"

// DiscussionID picks the discussion key for a request.
func DiscussionID(discussionID, userID string) string {
	switch {
	case discussionID != "":
		return discussionID
	case userID != "":
		return userID
	default:
		return DefaultDiscussionID
	}
}
