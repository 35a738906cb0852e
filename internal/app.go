package internal

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markc/pablo/pkg/health"
	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/scanner"
	"github.com/markc/pablo/pkg/session"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// DefaultMinRuntime is the oldest Go runtime the dispatcher accepts.
const DefaultMinRuntime = "go1.23"

// Health endpoint paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// App wires the plugin and theme registries, the session manager and the
// router. It is immutable after New.
type App struct {
	router       chi.Router
	logger       *slog.Logger
	errorHandler ErrorHandler
	notFound     HandlerFunc

	sessions       *SessionManager
	plugins        *Registry[PluginFactory]
	themes         *Registry[ThemeFactory]
	scanner        *scanner.Scanner
	pluginsDir     string
	remotes        nav.Section
	settings       map[string]string
	outputSections []string

	debug      bool
	root       string
	minRuntime string

	healthChecks health.Checks
	middlewares  []Middleware
	handlers     []Handler
	staticRoutes []staticRoute
	setupErrs    []error
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an App with the given options.
//
// Example:
//
//	app := pablo.New(
//	    pablo.WithTheme("Default", defaulttheme.New),
//	    pablo.WithPlugin("Home", home.New),
//	    pablo.WithMiddleware(middlewares.Recover(), middlewares.AccessLog()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:     chi.NewRouter(),
		logger:     logger.NewNope(),
		plugins:    NewRegistry[PluginFactory](),
		themes:     NewRegistry[ThemeFactory](),
		pluginsDir: scanner.DefaultDir,
		remotes:    nav.Remotes(nav.DefaultRemotes()...),
		settings:   make(map[string]string),
		minRuntime: DefaultMinRuntime,
	}
	if wd, err := os.Getwd(); err == nil {
		a.root = wd
	} else {
		a.root = "."
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.sessions == nil {
		a.sessions = NewSessionManager(session.NewMemoryStore())
	}
	a.sessions.SetLogger(a.logger)
	if a.errorHandler == nil {
		a.errorHandler = DefaultErrorHandler(a.debug)
	}
	a.scanner = scanner.New(a.pluginsDir, scanner.WithLogger(a.logger))

	for _, err := range a.setupErrs {
		a.logger.Error("invalid app option", "error", err)
	}
	a.Reconcile()
	a.setupRoutes()
	return a
}

// Reconcile compares the scanned plugin directories with the plugin
// registry and logs every directory that has no registered factory.
// It returns the ids of those directories.
func (a *App) Reconcile() []string {
	scanned, err := a.scanner.Plugins()
	if err != nil {
		a.logger.Warn("plugin scan failed", "dir", a.scanner.Dir(), "error", err)
		return nil
	}

	var missing []string
	for _, p := range scanned {
		id := normalizePluginName(p.Dir)
		if _, ok := a.plugins.Lookup(id); !ok {
			missing = append(missing, id)
			a.logger.Warn("plugin directory has no registered factory", "plugin", id, "dir", p.Dir)
		}
	}
	return missing
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Plugins returns the registered plugin ids, sorted.
func (a *App) Plugins() []string {
	return a.plugins.IDs()
}

// Themes returns the registered theme ids, sorted.
func (a *App) Themes() []string {
	return a.themes.IDs()
}

// Scanner returns the plugin directory scanner.
func (a *App) Scanner() *scanner.Scanner {
	return a.scanner
}

// Sessions returns the session manager.
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr and blocks until shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if addr != "" {
		cfg.address = addr
	}
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         cfg.address,
		logger:          cfg.logger,
		readTimeout:     cfg.readTimeout,
		writeTimeout:    cfg.writeTimeout,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// Dispatch is the front controller: it runs the pipeline for the request
// and writes the rendered response.
func (a *App) Dispatch(rc *RequestContext) error {
	init, err := NewInit(a, rc)
	if err != nil {
		return err
	}
	resp, err := init.Render()
	if err != nil {
		return err
	}
	return resp.Write(rc)
}

func (a *App) setupRoutes() {
	if a.notFound != nil {
		a.router.NotFound(a.wrapHandler(a.notFound))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	a.router.Get(LivenessPath, health.LivenessHandler())
	a.router.Get(ReadinessPath, health.ReadinessHandler(a.healthChecks, health.WithLogger(a.logger)))

	dispatch := a.wrapHandler(a.Dispatch)
	for _, path := range []string{"/", "/index.php"} {
		a.router.Get(path, dispatch)
		a.router.Post(path, dispatch)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := newRequestContext(w, r, a)
		if err := h(rc); err != nil {
			a.handleError(rc, err)
		}
	}
}

// adaptMiddleware converts a Middleware to chi middleware.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(rc *RequestContext) error {
				next.ServeHTTP(rc.Response(), rc.Request())
				return nil
			}
			rc := newRequestContext(w, r, a)
			if err := mw(nextFunc)(rc); err != nil {
				a.handleError(rc, err)
			}
		})
	}
}

func (a *App) handleError(rc *RequestContext, err error) {
	if rc.Written() {
		a.logger.ErrorContext(rc, "error after response started", "error", err)
		return
	}
	if herr := a.errorHandler(rc, err); herr != nil {
		a.logger.ErrorContext(rc, "error handler failed", "error", herr)
	}
}
