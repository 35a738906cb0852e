package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/markc/pablo/pkg/cookie"
	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "pablo_sid"
	defaultSessionMaxAge     = 86400 // 1 day
)

// SessionManager loads, creates and persists sessions and owns the session
// cookie. The cookie is HttpOnly and SameSite=Strict; Secure and signing are
// opt-in.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	maxAge     int
	cookieOpts []cookie.Option
	cookies    *cookie.Manager
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager on store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}
	for _, opt := range opts {
		opt(sm)
	}
	sm.cookies = cookie.New(append([]cookie.Option{cookie.WithSameSite(http.SameSiteStrictMode)}, sm.cookieOpts...)...)
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

// WithSessionDomain sets the cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, cookie.WithDomain(domain))
	}
}

// WithSessionPath sets the cookie path.
func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, cookie.WithPath(path))
	}
}

// WithSessionSecure sets the cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, cookie.WithSecure(secure))
	}
}

// WithSessionSecret signs the session cookie with HMAC-SHA256.
// Secrets shorter than cookie.MinSecretLen leave the cookie unsigned.
func WithSessionSecret(secret string) SessionOption {
	return func(sm *SessionManager) {
		sm.cookieOpts = append(sm.cookieOpts, cookie.WithSecret(secret))
	}
}

// SetLogger sets the logger for session events. Called by App.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// LoadSession returns the session named by the request cookie.
// It returns nil, nil when there is no usable cookie, and session.ErrNotFound
// or session.ErrExpired from the store.
func (sm *SessionManager) LoadSession(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.cookies.Read(r, sm.cookieName)
	if err != nil {
		if !errors.Is(err, cookie.ErrNotFound) {
			sm.logger.WarnContext(ctx, "ignoring session cookie", slog.Any("error", err))
		}
		return nil, nil
	}
	if token == "" {
		return nil, nil
	}
	return sm.store.Get(ctx, token)
}

// CreateSession creates and stores a new session.
func (sm *SessionManager) CreateSession(ctx context.Context) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := session.New(uuid.NewString(), token, time.Now().Add(time.Duration(sm.maxAge)*time.Second))
	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// LoadOrCreate returns the request's session, starting a new one when the
// cookie is missing, unknown or expired. created reports the latter.
func (sm *SessionManager) LoadOrCreate(ctx context.Context, r *http.Request) (sess *session.Session, created bool, err error) {
	sess, err = sm.LoadSession(ctx, r)
	switch {
	case err == nil && sess != nil:
		return sess, false, nil
	case err != nil && !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired):
		return nil, false, err
	}

	sess, err = sm.CreateSession(ctx)
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// SaveSession writes the session cookie.
func (sm *SessionManager) SaveSession(w http.ResponseWriter, sess *session.Session) {
	sm.cookies.Write(w, sm.cookieName, sess.Token, sm.maxAge)
}

// Persist stores sess if it has unsaved changes.
func (sm *SessionManager) Persist(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// RotateToken moves sess to a fresh token. The caller must write the cookie
// again with SaveSession.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	sess.Token = newToken
	if err := sm.store.Create(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	sess.ClearDirty()

	if err := sm.store.Delete(ctx, oldToken); err != nil {
		sm.logger.WarnContext(ctx, "failed to delete rotated session", slog.Any("error", err))
	}
	return nil
}

// DeleteSession removes sess from the store and expires the cookie.
func (sm *SessionManager) DeleteSession(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	sm.cookies.Delete(w, sm.cookieName)
	if sess == nil {
		return nil
	}
	return sm.store.Delete(ctx, sess.Token)
}

// generateToken returns 32 random bytes, base64url encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
