package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Single-instance deployments only.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Save stores a copy of s and sweeps entries that have already expired.
func (st *MemoryStore) Save(_ context.Context, s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	for token, existing := range st.sessions {
		if existing.ExpiredAt(now) {
			delete(st.sessions, token)
		}
	}
	st.sessions[s.Token] = *s
	return nil
}

func (st *MemoryStore) Load(_ context.Context, token string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (st *MemoryStore) Delete(_ context.Context, token string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, token)
	return nil
}

func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
