package health

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc matches the Healthcheck closures of pkg/db and pkg/redis.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its function.
type Checks map[string]CheckFunc

// Names returns the check names in lexical order.
func (c Checks) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// Response is the aggregated result of a readiness probe.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the outcome of one named check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout bounds the total time spent running checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failing checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently and aggregates the result.
// A check still running when the timeout expires sees a cancelled context.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	// Checks never fail the group; each result is recorded on its own.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}

// Err returns ErrCheckFailed when any check failed.
func (r *Response) Err() error {
	if r.Status == StatusUnhealthy {
		return ErrCheckFailed
	}
	return nil
}
