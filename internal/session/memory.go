package session

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/readmegen/internal/model"
)

// compile-time check that *MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in a map guarded by an RWMutex. It is the
// default backend: zero setup, fine for a single process, everything is
// lost on restart (users just log in again).
//
// EXPIRY IS PASSIVE:
// There is no janitor goroutine. A session past its ExpiresAt is treated as
// absent the next time Get sees it, and deleted then. Sessions nobody asks
// for again linger until process exit, which is acceptable at this scale.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*model.Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		// Lazy expiry: drop the stale record and report a miss.
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	// Return a copy so callers can mutate freely and commit via Set.
	copied := *s
	return &copied, nil
}

func (m *MemoryStore) Set(_ context.Context, s *model.Session) error {
	copied := *s
	m.mu.Lock()
	m.sessions[s.ID] = &copied
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
