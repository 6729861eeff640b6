package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (st *MemoryStore) Save(_ context.Context, s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return nil
}

func (st *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok || s.IsExpired(st.now()) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (st *MemoryStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.ExpiresAt = expiresAt
	st.sessions[id] = s
	return nil
}

func (st *MemoryStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	return nil
}

func (st *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var n int
	for id, s := range st.sessions {
		if s.IsExpired(now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n, nil
}

func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
