package turn

import (
	"context"
	"sync"
)

// MemoryStore keeps turn state in process.
type MemoryStore struct {
	mu      sync.Mutex
	turns   map[string]Participant
	initial Participant
}

func NewMemoryStore(initial Participant) *MemoryStore {
	return &MemoryStore{turns: make(map[string]Participant), initial: initial}
}

func (m *MemoryStore) Current(_ context.Context, discussionID string) (Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked(discussionID), nil
}

func (m *MemoryStore) currentLocked(discussionID string) Participant {
	if p, ok := m.turns[discussionID]; ok {
		return p
	}
	return m.initial
}

func (m *MemoryStore) CompareAndSwap(_ context.Context, discussionID string, from, to Participant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentLocked(discussionID) != from {
		return false, nil
	}
	m.turns[discussionID] = to
	return true, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
