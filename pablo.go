package pablo

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/markc/pablo/internal"
	"github.com/markc/pablo/pkg/health"
	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/session"
)

// Type aliases - public API
type (
	// App wires plugins, themes, sessions and the HTTP router.
	App = internal.App

	// RequestContext is the per-request handle given to plugins, themes,
	// handlers and middleware. It implements context.Context.
	RequestContext = internal.RequestContext

	// Init is the dispatch pipeline state of one request.
	Init = internal.Init

	// Config holds the Cfg, In and Out maps of one request.
	Config = internal.Config

	// Input holds the merged query and form values of a request.
	Input = internal.Input

	// Plugin handles one dispatched request.
	Plugin = internal.Plugin

	// PluginFunc adapts a function to Plugin.
	PluginFunc = internal.PluginFunc

	// PluginFactory builds a plugin for one request.
	PluginFactory = internal.PluginFactory

	// Theme renders the response document.
	Theme = internal.Theme

	// ThemeFactory builds a theme for one request.
	ThemeFactory = internal.ThemeFactory

	// SecondaryOutputs is implemented by themes that render extra Out sections.
	SecondaryOutputs = internal.SecondaryOutputs

	// SectionFunc renders one Out section.
	SectionFunc = internal.SectionFunc

	// JSONResult is a plugin result answered as application/json.
	JSONResult = internal.JSONResult

	// Redirect is a plugin result that redirects the client.
	Redirect = internal.Redirect

	// Flash is a one-shot message for the next rendered page.
	Flash = internal.Flash

	// Response is a rendered dispatch result.
	Response = internal.Response

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Handler declares routes outside the front controller.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// HTTPError is an error with a status code and a user-facing message.
	HTTPError = internal.HTTPError

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// SessionManager owns the session cookie and store.
	SessionManager = internal.SessionManager

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ResponseWriter wraps http.ResponseWriter with status tracking and
	// before-write hooks.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Dispatch errors.
var (
	ErrEnvironment          = internal.ErrEnvironment
	ErrThemeNotFound        = internal.ErrThemeNotFound
	ErrPluginNotFound       = internal.ErrPluginNotFound
	ErrInvalidPlugin        = internal.ErrInvalidPlugin
	ErrCSRF                 = internal.ErrCSRF
	ErrInvalidFormatRequest = internal.ErrInvalidFormatRequest
	ErrInvalidInput         = internal.ErrInvalidInput
)

// Flash kinds.
const (
	FlashSuccess = internal.FlashSuccess
	FlashInfo    = internal.FlashInfo
	FlashWarning = internal.FlashWarning
	FlashDanger  = internal.FlashDanger
)

// Well-known Cfg and Out keys, input defaults and formats.
const (
	CfgAppName    = internal.CfgAppName
	CfgHost       = internal.CfgHost
	CfgBasePath   = internal.CfgBasePath
	CfgBaseURL    = internal.CfgBaseURL
	OutMain       = internal.OutMain
	DefaultTheme  = internal.DefaultTheme
	DefaultPlugin = internal.DefaultPlugin
	FormatHTML    = internal.FormatHTML
	FormatText    = internal.FormatText
	FormatJSON    = internal.FormatJSON
	FormatPartial = internal.FormatPartial

	GenericErrorMessage = internal.GenericErrorMessage
	DefaultMinRuntime   = internal.DefaultMinRuntime
)

// New creates a new application with the given options.
//
// Example:
//
//	app := pablo.New(
//	    pablo.WithTheme(pablo.DefaultTheme, defaulttheme.New),
//	    pablo.WithPlugin("Home", home.New),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewInit runs the dispatch pipeline for rc.
func NewInit(app *App, rc *RequestContext) (*Init, error) {
	return internal.NewInit(app, rc)
}

// NewRequestContext builds a RequestContext outside an App, for plugin and
// theme tests. cfg, sessions and log may be nil.
func NewRequestContext(w http.ResponseWriter, r *http.Request, cfg *Config, sessions *SessionManager, log *slog.Logger) *RequestContext {
	return internal.NewRequestContext(w, r, cfg, sessions, log)
}

// ParseInput merges the query string and form values of r.
func ParseInput(r *http.Request) (Input, error) {
	return internal.ParseInput(r)
}

// NewConfig creates a Config with a private copy of cfg.
func NewConfig(cfg map[string]string, in Input) *Config {
	return internal.NewConfig(cfg, in)
}

// NewSessionManager creates a SessionManager on store.
func NewSessionManager(store SessionStore, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManager(store, opts...)
}

// RenderHTML implements the shared Theme.HTML behavior.
func RenderHTML(ctx context.Context, init *Init, render func(ctx context.Context) (string, error)) (string, error) {
	return internal.RenderHTML(ctx, init, render)
}

// Stringify converts a plugin result to text.
func Stringify(ctx context.Context, v any) (string, error) {
	return internal.Stringify(ctx, v)
}

// JSON wraps v in a JSONResult.
func JSON(v any) JSONResult {
	return internal.JSON(v)
}

// RedirectTo returns a Redirect result.
func RedirectTo(url string) *Redirect {
	return internal.RedirectTo(url)
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, cause error) *HTTPError {
	return internal.NewHTTPError(code, message, cause)
}

// ErrBadRequest returns a 400 HTTPError with message.
func ErrBadRequest(message string) *HTTPError {
	return internal.ErrBadRequest(message)
}

// ErrForbidden returns a 403 HTTPError with message.
func ErrForbidden(message string) *HTTPError {
	return internal.ErrForbidden(message)
}

// ErrNotFound returns a 404 HTTPError with message.
func ErrNotFound(message string) *HTTPError {
	return internal.ErrNotFound(message)
}

// AsHTTPError extracts an HTTPError from err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// ContextValue returns the value stored on rc under key, or T's zero value.
//
//	host := pablo.ContextValue[string](rc, hostKey{})
func ContextValue[T any](rc *RequestContext, key any) T {
	return internal.ContextValue[T](rc, key)
}

// InputDefault returns the input value of name converted to T, or def when
// it is missing, empty or malformed.
//
//	page := pablo.InputDefault(rc.RawInput(), "page", 1)
func InputDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](in Input, name string, def T) T {
	return internal.InputDefault(in, name, def)
}

// DefaultErrorHandler returns the built-in plain text error handler.
func DefaultErrorHandler(debug bool) ErrorHandler {
	return internal.DefaultErrorHandler(debug)
}

// PluginExtractor adds the dispatched plugin id to log records.
func PluginExtractor() ContextExtractor {
	return internal.PluginExtractor()
}

// App options

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithPlugin registers a plugin factory under id.
func WithPlugin(id string, f PluginFactory) Option {
	return internal.WithPlugin(id, f)
}

// WithTheme registers a theme factory under id.
func WithTheme(id string, f ThemeFactory) Option {
	return internal.WithTheme(id, f)
}

// WithSession sets the session store and cookie options.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithPluginsDir sets the directory scanned for plugin navigation.
func WithPluginsDir(dir string) Option {
	return internal.WithPluginsDir(dir)
}

// WithRemotes replaces the static "Remotes" navigation section.
func WithRemotes(s nav.Section) Option {
	return internal.WithRemotes(s)
}

// WithDebug enables verbose errors and request logging.
func WithDebug(debug bool) Option {
	return internal.WithDebug(debug)
}

// WithRoot sets the application root.
func WithRoot(root string) Option {
	return internal.WithRoot(root)
}

// WithMinRuntime sets the oldest accepted Go runtime.
func WithMinRuntime(v string) Option {
	return internal.WithMinRuntime(v)
}

// WithSettings adds static Cfg values.
func WithSettings(cfg map[string]string) Option {
	return internal.WithSettings(cfg)
}

// WithOutputSections declares Out keys filled by the theme.
func WithOutputSections(names ...string) Option {
	return internal.WithOutputSections(names...)
}

// WithHealthChecks adds readiness checks.
func WithHealthChecks(checks health.Checks) Option {
	return internal.WithHealthChecks(checks)
}

// WithMiddleware adds global middleware to the application.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare extra routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file system at pattern.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// Session options

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionDomain sets the cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionPath sets the cookie path.
func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

// WithSessionSecure sets the cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionSecret signs the session cookie.
func WithSessionSecret(secret string) SessionOption {
	return internal.WithSessionSecret(secret)
}

// Run options

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ReadTimeout overrides the server read timeout.
func ReadTimeout(d time.Duration) RunOption {
	return internal.ReadTimeout(d)
}

// WriteTimeout overrides the server write timeout.
func WriteTimeout(d time.Duration) RunOption {
	return internal.WriteTimeout(d)
}

// ShutdownTimeout sets the graceful shutdown timeout.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before serving.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}
