package session

import "context"

// Store persists sessions keyed by their token.
// Implementations must be safe for concurrent use; concurrent writes to
// the same session resolve as last writer wins.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by token.
	// Returns ErrNotFound if it doesn't exist and ErrExpired if it has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves an existing session.
	Update(ctx context.Context, s *Session) error

	// Delete removes the session with the given token.
	Delete(ctx context.Context, token string) error
}
