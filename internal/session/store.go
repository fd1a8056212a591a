// Package session remembers the last location each conversation stated.
package session

import (
	"context"
	"sync"
	"time"

	"partyplnr/internal/models"
)

// Store keeps one remembered location per session id. Sessions are
// independent: writes to one id are never visible under another.
type Store interface {
	Get(ctx context.Context, id string) (string, bool, error)
	Set(ctx context.Context, id, location string) error
}

// MemoryStore is a process-local Store. Entries never expire.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SessionState
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.SessionState),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	if !ok || state.RememberedLocation == "" {
		return "", false, nil
	}
	return state.RememberedLocation, true, nil
}

func (s *MemoryStore) Set(_ context.Context, id, location string) error {
	if id == "" || location == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = models.SessionState{
		ID:                 id,
		RememberedLocation: location,
		UpdatedAt:          s.now().UTC(),
	}
	return nil
}

// Len returns the number of sessions with a remembered location.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
