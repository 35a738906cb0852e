package session

import (
	"errors"
	"maps"
	"time"
)

// Session is a server-side session addressed by its cookie token.
type Session struct {
	ID        string         `json:"id"`
	Token     string         `json:"token"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	dirty bool
	isNew bool
}

// New creates a session with the given ID and token.
// The session starts new and dirty.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]any),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		isNew:     true,
		dirty:     true,
	}
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value from the session.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value. The session only becomes dirty if the key existed.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports whether the session has unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// MarkDirty flags the session for saving.
func (s *Session) MarkDirty() { s.dirty = true }

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() { s.dirty = false }

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool { return s.isNew }

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() { s.isNew = false }

// IsExpired reports whether the session is past its expiry time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Clone returns a copy of s with its own Values map.
// Values themselves are copied shallowly.
func (s *Session) Clone() *Session {
	c := *s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = make(map[string]any)
	}
	return &c
}

// Value retrieves a typed session value.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}
	return typed, nil
}

// ValueOr is like Value but returns defaultVal on any failure.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
