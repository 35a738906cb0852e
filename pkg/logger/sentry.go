package logger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration settings.
type SentryConfig struct {
	DSN         string
	Environment string
	// MinLevel is the lowest level stored as a Sentry log; errors always become events.
	MinLevel slog.Level
}

// NewWithSentry creates a logger writing to the cfg handler and to Sentry.
// Without a DSN, or when the SDK fails to start, it behaves like New.
func NewWithSentry(cfg Config, sc SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	base := newHandler(cfg)
	if sc.DSN == "" {
		return slog.New(NewLogHandlerDecorator(base, extractors...))
	}

	env := sc.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         sc.DSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(base, extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if sc.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(fanout{base, sentryHandler}, extractors...))
}

// fanout sends each record to every handler that accepts its level.
// The first handler error stops the fan-out.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
