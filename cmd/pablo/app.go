package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/markc/pablo"
	"github.com/markc/pablo/middlewares"
	"github.com/markc/pablo/migrations"
	"github.com/markc/pablo/pkg/cache"
	"github.com/markc/pablo/pkg/command"
	"github.com/markc/pablo/pkg/db"
	"github.com/markc/pablo/pkg/health"
	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/redis"
	"github.com/markc/pablo/pkg/session"
	"github.com/markc/pablo/pkg/settings"
	"github.com/markc/pablo/plugins/blog"
	"github.com/markc/pablo/plugins/docs"
	"github.com/markc/pablo/plugins/example"
	"github.com/markc/pablo/plugins/home"
	"github.com/markc/pablo/plugins/sshm"
	"github.com/markc/pablo/plugins/vhosts"
	"github.com/markc/pablo/themes/defaulttheme"
)

const (
	sessionPrefix = "pablo:session:"
	docsPrefix    = "pablo:docs"
	docsCacheSize = 256
	docsCacheTTL  = time.Hour
)

func newLogger(s *settings.Settings, w io.Writer) *slog.Logger {
	cfg := logger.Config{Level: s.Log.Level, Format: s.Log.Format, Output: w}
	if s.App.Debug {
		cfg.Level = "debug"
	}
	extractors := []logger.ContextExtractor{
		middlewares.RequestIDExtractor(),
		pablo.PluginExtractor(),
	}
	if s.Log.SentryDSN == "" {
		return logger.New(cfg, extractors...)
	}
	return logger.NewWithSentry(cfg, logger.SentryConfig{
		DSN:         s.Log.SentryDSN,
		Environment: s.Log.Environment,
		MinLevel:    slog.LevelWarn,
	}, extractors...)
}

// resources are the optional backing services. Either may be nil.
type resources struct {
	pool  *pgxpool.Pool
	redis goredis.UniversalClient
}

// openResources connects to the configured services and migrates the
// database.
func openResources(ctx context.Context, s *settings.Settings, log *slog.Logger) (*resources, error) {
	res := &resources{}

	if s.Database.URL != "" {
		pool, err := db.Connect(ctx, s.Database)
		if err != nil {
			return nil, err
		}
		res.pool = pool
		if err := db.Migrate(ctx, pool, migrations.FS, s.Database.MigrationsTable, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	if s.Redis.URL != "" {
		client, err := redis.Open(ctx, s.Redis)
		if err != nil {
			_ = res.Close(ctx)
			return nil, err
		}
		res.redis = client
	}
	return res, nil
}

// Close releases every open resource.
func (r *resources) Close(ctx context.Context) error {
	var errs []error
	if r.redis != nil {
		errs = append(errs, redis.Shutdown(r.redis)(ctx))
	}
	if r.pool != nil {
		errs = append(errs, db.Shutdown(r.pool)(ctx))
	}
	return errors.Join(errs...)
}

func (r *resources) checks() health.Checks {
	checks := health.Checks{}
	if r.pool != nil {
		checks["database"] = db.Healthcheck(r.pool)
	}
	if r.redis != nil {
		checks["redis"] = redis.Healthcheck(r.redis)
	}
	return checks
}

// buildApp registers the theme, the plugins and the middleware stack.
func buildApp(s *settings.Settings, log *slog.Logger, res *resources) (*pablo.App, error) {
	store, err := sessionStore(s, res)
	if err != nil {
		return nil, err
	}

	var docsCache cache.Cache[string] = cache.NewMemory[string](docsCacheSize)
	if res.redis != nil {
		docsCache = cache.NewRedis[string](res.redis, docsPrefix)
	}
	library := docs.NewLibrary(s.Docs.Dir, docs.WithCache(docsCache, docsCacheTTL))

	opts := append(defaulttheme.Options(),
		pablo.WithLogger(log),
		pablo.WithDebug(s.App.Debug),
		pablo.WithRoot(s.App.Root),
		pablo.WithMinRuntime(s.App.MinRuntime),
		pablo.WithPluginsDir(s.Plugins.Dir),
		pablo.WithRemotes(s.Remotes()),
		pablo.WithSettings(map[string]string{pablo.CfgAppName: s.App.Name}),
		pablo.WithOutputSections(extraSections(s.Output.Sections)...),
		pablo.WithSession(store,
			pablo.WithSessionCookieName(s.Session.CookieName),
			pablo.WithSessionMaxAge(s.Session.MaxAge),
			pablo.WithSessionSecure(s.Session.Secure),
			pablo.WithSessionSecret(s.Session.Secret),
		),
		pablo.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Recover(),
		),
		pablo.WithHealthChecks(res.checks()),
		pablo.WithHandlers(library),
		pablo.WithPlugin(home.ID, home.New),
		pablo.WithPlugin(example.ID, example.New),
		pablo.WithPlugin(docs.ID, library.Factory()),
	)

	if res.pool != nil {
		var runnerOpts []command.Option
		if s.Vhosts.Sudo {
			runnerOpts = append(runnerOpts, command.WithPrefix("sudo"))
		}
		vh := vhosts.New(vhosts.NewPgStore(res.pool), command.New(log, runnerOpts...),
			vhosts.WithHomeDir(s.Vhosts.HomeDir),
			vhosts.WithCommands(s.Vhosts.AddCommand, s.Vhosts.DelCommand),
		)

		sshDir, err := s.Sshm.SSHDir()
		if err != nil {
			return nil, err
		}
		sm := sshm.New(sshm.NewPgStore(res.pool), command.New(log), sshm.NewLayout(sshDir),
			sshm.WithDefaultComment(s.Sshm.Comment),
		)

		opts = append(opts,
			pablo.WithPlugin(blog.ID, blog.New(blog.NewPgStore(res.pool))),
			pablo.WithPlugin(vhosts.ID, vh.Factory()),
			pablo.WithPlugin(sshm.ID, sm.Factory()),
		)
	} else {
		opts = append(opts,
			pablo.WithPlugin(blog.ID, unavailable("The blog needs database.url to be configured.")),
			pablo.WithPlugin(vhosts.ID, unavailable("Vhosts management needs database.url to be configured.")),
			pablo.WithPlugin(sshm.ID, unavailable("The SSH manager needs database.url to be configured.")),
		)
	}

	return pablo.New(opts...), nil
}

// extraSections drops the sections the default theme already declares.
func extraSections(names []string) []string {
	return slices.DeleteFunc(slices.Clone(names), func(n string) bool {
		return n == defaulttheme.SectionLHSNav || n == defaulttheme.SectionRHSNav
	})
}

func sessionStore(s *settings.Settings, res *resources) (pablo.SessionStore, error) {
	if s.Session.Store != settings.StoreRedis {
		return session.NewMemoryStore(), nil
	}
	if res.redis == nil {
		return nil, errors.New("pablo: session.store=redis but redis is not connected")
	}
	return session.NewRedisStore(res.redis, session.WithRedisPrefix(sessionPrefix)), nil
}

// unavailable serves a plugin whose backing service is not configured.
func unavailable(msg string) pablo.PluginFactory {
	return func(*pablo.RequestContext, pablo.Theme) (pablo.Plugin, error) {
		return pablo.PluginFunc(func(context.Context) (any, error) {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				_, err := io.WriteString(w, `<div class="alert alert-warning">`+templ.EscapeString(msg)+`</div>`)
				return err
			}), nil
		}), nil
	}
}
