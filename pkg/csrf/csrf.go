package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
)

const (
	// HeaderName carries the token on AJAX API requests.
	HeaderName = "X-CSRF-TOKEN"

	// FormField carries the token in HTML form posts.
	FormField = "_csrf"

	// SessionKey is the session value holding the token.
	SessionKey = "csrf_token"

	// TokenBytes is the amount of randomness in a token.
	TokenBytes = 32
)

var (
	// ErrMissing is returned when a request carries no token.
	ErrMissing = errors.New("csrf: token missing")

	// ErrMismatch is returned when the request token differs from the session token.
	ErrMismatch = errors.New("csrf: token mismatch")
)

// Generate returns a fresh token: TokenBytes random bytes, hex encoded.
func Generate() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf: read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Valid compares a submitted token with the expected one in constant time.
// An empty expected token never validates.
func Valid(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// Check validates the HeaderName header of r against expected.
func Check(r *http.Request, expected string) error {
	got := r.Header.Get(HeaderName)
	if got == "" {
		return ErrMissing
	}
	if !Valid(expected, got) {
		return ErrMismatch
	}
	return nil
}
