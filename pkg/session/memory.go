package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
// Suitable for a single instance and for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s.Clone()
	return nil
}

// Get implements Store. Expired sessions are evicted on access.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if m.now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrExpired
	}

	c := s.Clone()
	c.ClearDirty()
	c.ClearNew()
	return c, nil
}

// Update implements Store.
func (m *MemoryStore) Update(ctx context.Context, s *Session) error {
	return m.Create(ctx, s)
}

// Delete implements Store. Deleting an unknown token is not an error.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
