package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Errors.
var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
)

// MinSecretLen is the shortest accepted signing secret.
const MinSecretLen = 32

// Manager reads and writes cookies with shared attributes.
// Signing is enabled once a secret is configured.
type Manager struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Cookies default to Path=/, HttpOnly and SameSite=Strict.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteStrictMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables HMAC signing. Secrets shorter than MinSecretLen are ignored;
// use ValidateSecret to reject them up front.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLen {
			m.secret = []byte(secret)
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

// ValidateSecret reports whether secret is usable for signing.
// An empty secret is valid and means signing is off.
func ValidateSecret(secret string) error {
	if secret != "" && len(secret) < MinSecretLen {
		return ErrBadSecret
	}
	return nil
}

// Signed reports whether the manager signs cookie values.
func (m *Manager) Signed() bool {
	return m.secret != nil
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// Read returns the cookie value, verifying the signature when signing is on.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	if m.Signed() {
		return m.GetSigned(r, name)
	}
	return m.Get(r, name)
}

// Write stores the cookie value, signing it when signing is on.
func (m *Manager) Write(w http.ResponseWriter, name, value string, maxAge int) {
	if m.Signed() {
		_ = m.SetSigned(w, name, value, maxAge)
		return
	}
	m.Set(w, name, value, maxAge)
}

// GetSigned returns a signed cookie value.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// base64(value).base64(signature)
	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}

	if !hmac.Equal(sig, m.sign(value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetSigned writes a signed cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.secret == nil {
		return ErrNoSecret
	}

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(m.sign([]byte(value)))
	http.SetCookie(w, m.cookie(name, encoded, maxAge))
	return nil
}

func (m *Manager) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	return mac.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
