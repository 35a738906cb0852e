// Package logger builds slog loggers with context extraction and optional
// Sentry fan-out.
//
// New picks a JSON or text handler at the configured level and wraps it in a
// LogHandlerDecorator, which appends attributes pulled from the context on
// every call:
//
//	log := logger.New(logger.Config{Level: "debug", Format: "text"},
//		middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "dispatch", slog.String("plugin", "Home"))
//
// NewWithSentry additionally forwards warnings and errors to Sentry when a DSN
// is set; errors become Sentry issues. Without a DSN it is equivalent to New.
//
// NewNope returns a logger that discards everything, the default for
// components that were not given one.
package logger
