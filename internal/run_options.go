package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	address         string
	logger          *slog.Logger
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		address:         ":8080",
		readTimeout:     defaultReadTimeout,
		writeTimeout:    defaultWriteTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the server logger. Defaults to the App logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ReadTimeout overrides the server read timeout (15s).
func ReadTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// WriteTimeout overrides the server write timeout (30s).
func WriteTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// ShutdownTimeout sets the timeout for graceful shutdown, shared by the
// HTTP server and the shutdown hooks. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook registers a function run before the server accepts
// connections, such as database migrations. Hooks run concurrently; the
// first failure aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function run after the HTTP server
// stopped, in registration order.
//
// Example:
//
//	pablo.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context for signal handling.
// Defaults to context.Background().
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
