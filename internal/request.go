package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/markc/pablo/pkg/csrf"
	"github.com/markc/pablo/pkg/htmx"
	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/session"
)

// Flash kinds understood by the default theme.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const flashSessionKey = "_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type pluginKey struct{}

// RequestContext is the per-request handle passed to handlers, plugins and
// themes. It implements context.Context by delegating to the request context,
// so it can be passed wherever a ctx is expected.
type RequestContext struct {
	request     *http.Request
	response    *ResponseWriter
	logger      *slog.Logger
	sessions    *SessionManager
	session     *session.Session
	config      *Config
	debug       bool
	sessionHook bool
}

func newRequestContext(w http.ResponseWriter, r *http.Request, app *App) *RequestContext {
	return &RequestContext{
		request:  r,
		response: NewResponseWriter(w),
		logger:   app.logger,
		sessions: app.sessions,
		debug:    app.debug,
	}
}

// NewRequestContext builds a RequestContext outside the App, for plugin tests.
// The session manager may be nil; Session then fails with session.ErrNotFound.
func NewRequestContext(w http.ResponseWriter, r *http.Request, cfg *Config, sessions *SessionManager, log *slog.Logger) *RequestContext {
	if log == nil {
		log = logger.NewNope()
	}
	if cfg == nil {
		cfg = NewConfig(nil, nil)
	}
	return &RequestContext{
		request:  r,
		response: NewResponseWriter(w),
		logger:   log,
		sessions: sessions,
		config:   cfg,
	}
}

func (rc *RequestContext) Deadline() (time.Time, bool) { return rc.request.Context().Deadline() }
func (rc *RequestContext) Done() <-chan struct{}       { return rc.request.Context().Done() }
func (rc *RequestContext) Err() error                  { return rc.request.Context().Err() }
func (rc *RequestContext) Value(key any) any           { return rc.request.Context().Value(key) }

// Request returns the underlying request.
func (rc *RequestContext) Request() *http.Request { return rc.request }

// Response returns the response writer.
func (rc *RequestContext) Response() http.ResponseWriter { return rc.response }

// ResponseWriter returns the wrapped writer with status tracking.
func (rc *RequestContext) ResponseWriter() *ResponseWriter { return rc.response }

// Context returns the request's context.Context.
func (rc *RequestContext) Context() context.Context { return rc.request.Context() }

// Written reports whether the response has started.
func (rc *RequestContext) Written() bool { return rc.response.Written() }

// Header returns a request header.
func (rc *RequestContext) Header(name string) string { return rc.request.Header.Get(name) }

// SetHeader sets a response header.
func (rc *RequestContext) SetHeader(name, value string) { rc.response.Header().Set(name, value) }

// IsAJAX reports whether the request asks for a fragment.
func (rc *RequestContext) IsAJAX() bool { return htmx.IsAJAX(rc.request) }

// Debug reports whether the App runs in debug mode.
func (rc *RequestContext) Debug() bool { return rc.debug }

// Set stores a request-scoped value, visible through Get and Value.
func (rc *RequestContext) Set(key, value any) {
	rc.request = rc.request.WithContext(context.WithValue(rc.request.Context(), key, value))
}

// Get returns a value stored with Set or by upstream middleware.
func (rc *RequestContext) Get(key any) any {
	return rc.request.Context().Value(key)
}

// Logger returns the App logger.
func (rc *RequestContext) Logger() *slog.Logger { return rc.logger }

func (rc *RequestContext) LogDebug(msg string, attrs ...any) {
	rc.logger.DebugContext(rc, msg, attrs...)
}

func (rc *RequestContext) LogInfo(msg string, attrs ...any) {
	rc.logger.InfoContext(rc, msg, attrs...)
}

func (rc *RequestContext) LogWarn(msg string, attrs ...any) {
	rc.logger.WarnContext(rc, msg, attrs...)
}

func (rc *RequestContext) LogError(msg string, attrs ...any) {
	rc.logger.ErrorContext(rc, msg, attrs...)
}

// Config returns the request Config. It is nil until the dispatcher's
// config stage ran.
func (rc *RequestContext) Config() *Config { return rc.config }

// Input returns the sanitized request input.
func (rc *RequestContext) Input() Input {
	if rc.config == nil {
		return Input{}
	}
	return rc.config.In
}

// RawInput returns the request input before HTML escaping. See Config.Raw.
func (rc *RequestContext) RawInput() Input {
	if rc.config == nil {
		return Input{}
	}
	return rc.config.Raw()
}

// SetOut stores an output section for the theme.
func (rc *RequestContext) SetOut(key, value string) {
	if rc.config != nil {
		rc.config.Out[key] = value
	}
}

// Plugin returns the id of the dispatched plugin, once resolved.
func (rc *RequestContext) Plugin() string {
	return ContextValue[string](rc, pluginKey{})
}

// Session returns the request session, loading it or starting a new one on
// first use. New sessions get their cookie immediately; changes are
// persisted right before the response is written.
func (rc *RequestContext) Session() (*session.Session, error) {
	if rc.session != nil {
		return rc.session, nil
	}
	if rc.sessions == nil {
		return nil, session.ErrNotFound
	}

	sess, created, err := rc.sessions.LoadOrCreate(rc, rc.request)
	if err != nil {
		return nil, err
	}
	if created {
		rc.sessions.SaveSession(rc.response, sess)
	}
	rc.session = sess
	rc.registerSessionHook()
	return sess, nil
}

func (rc *RequestContext) registerSessionHook() {
	if rc.sessionHook {
		return
	}
	rc.sessionHook = true
	rc.response.OnBeforeWrite(func() {
		if err := rc.sessions.Persist(rc, rc.session); err != nil {
			rc.LogError("failed to save session", "error", err)
		}
	})
}

// CSRFToken returns the session's CSRF token, creating it on first use.
// The token stays stable for the lifetime of the session.
func (rc *RequestContext) CSRFToken() (string, error) {
	sess, err := rc.Session()
	if err != nil {
		return "", err
	}
	if tok := session.ValueOr(sess, csrf.SessionKey, ""); tok != "" {
		return tok, nil
	}

	tok, err := csrf.Generate()
	if err != nil {
		return "", err
	}
	sess.SetValue(csrf.SessionKey, tok)
	return tok, nil
}

// AddFlash queues a message for the next rendered page.
func (rc *RequestContext) AddFlash(kind, text string) error {
	sess, err := rc.Session()
	if err != nil {
		return err
	}
	flashes := decodeFlashes(session.ValueOr(sess, flashSessionKey, ""))
	data, err := json.Marshal(append(flashes, Flash{Kind: kind, Text: text}))
	if err != nil {
		return err
	}
	sess.SetValue(flashSessionKey, string(data))
	return nil
}

// Flashes returns and clears the queued messages.
func (rc *RequestContext) Flashes() []Flash {
	sess, err := rc.Session()
	if err != nil {
		return nil
	}
	flashes := decodeFlashes(session.ValueOr(sess, flashSessionKey, ""))
	sess.DeleteValue(flashSessionKey)
	return flashes
}

// Flashes are kept as a JSON string so they survive any session store codec.
func decodeFlashes(raw string) []Flash {
	if raw == "" {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// PluginExtractor returns a logger.ContextExtractor adding the dispatched
// plugin id to log records written with a RequestContext.
func PluginExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(pluginKey{}).(string); ok && v != "" {
			return slog.String("plugin", v), true
		}
		return slog.Attr{}, false
	}
}
