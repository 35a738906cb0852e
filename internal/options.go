package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markc/pablo/pkg/health"
	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithLogger sets the application logger.
// Build one with logger.New or logger.NewWithSentry.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPlugin registers a plugin factory under id. The id is what the
// normalized "plugin" input resolves to, e.g. "Docs" for ?plugin=docs.
// Registering an id twice is logged and the first factory is kept.
func WithPlugin(id string, f PluginFactory) Option {
	return func(a *App) {
		if err := a.plugins.Register(id, f); err != nil {
			a.setupErrs = append(a.setupErrs, err)
		}
	}
}

// WithTheme registers a theme factory under id, matched exactly against
// the "theme" input.
func WithTheme(id string, f ThemeFactory) Option {
	return func(a *App) {
		if err := a.themes.Register(id, f); err != nil {
			a.setupErrs = append(a.setupErrs, err)
		}
	}
}

// WithSession sets the session store and cookie options.
// Without it sessions live in a process-local session.MemoryStore.
//
// Example:
//
//	pablo.New(
//	    pablo.WithSession(session.NewRedisStore(client),
//	        pablo.WithSessionCookieName("pablo_sid"),
//	        pablo.WithSessionSecure(true),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessions = NewSessionManager(store, opts...)
	}
}

// WithPluginsDir sets the directory scanned for plugin navigation.
// Defaults to "plugins".
func WithPluginsDir(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.pluginsDir = dir
		}
	}
}

// WithRemotes replaces the static "Remotes" navigation section.
func WithRemotes(s nav.Section) Option {
	return func(a *App) {
		a.remotes = s
	}
}

// WithDebug switches the default error handler to verbose responses and
// enables request logging in the dispatcher.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.debug = debug
	}
}

// WithRoot sets the application root used as the default base_path.
// Defaults to the working directory.
func WithRoot(root string) Option {
	return func(a *App) {
		if root != "" {
			a.root = root
		}
	}
}

// WithMinRuntime sets the oldest accepted Go runtime, e.g. "go1.23".
// An empty version disables the check.
func WithMinRuntime(v string) Option {
	return func(a *App) {
		a.minRuntime = v
	}
}

// WithSettings adds static Cfg values available to themes and plugins.
func WithSettings(cfg map[string]string) Option {
	return func(a *App) {
		for k, v := range cfg {
			a.settings[k] = v
		}
	}
}

// WithOutputSections declares Out keys seeded with "" before the plugin
// runs, so the theme can fill them in post-processing.
func WithOutputSections(names ...string) Option {
	return func(a *App) {
		a.outputSections = append(a.outputSections, names...)
	}
}

// WithHealthChecks adds named readiness checks served on /health/ready.
//
// Example:
//
//	pablo.WithHealthChecks(health.Checks{
//	    "db":    db.Healthcheck(pool),
//	    "redis": redis.Healthcheck(client),
//	})
func WithHealthChecks(checks health.Checks) Option {
	return func(a *App) {
		if a.healthChecks == nil {
			a.healthChecks = make(health.Checks)
		}
		for name, fn := range checks {
			a.healthChecks[name] = fn
		}
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes next to the front
// controller, such as asset endpoints of a plugin.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts fsys (or its subDir) at pattern.
// Directory listings are disabled.
//
// Example:
//
//	pablo.WithStaticFiles("/assets/", defaulttheme.Assets, "assets")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		if subDir != "" && subDir != "." {
			sub, err := fs.Sub(fsys, subDir)
			if err != nil {
				a.setupErrs = append(a.setupErrs, err)
				return
			}
			fsys = sub
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(fsys))
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFound = h
	}
}
