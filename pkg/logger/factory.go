package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the handler built by New.
type Config struct {
	Level  string    // debug, info, warn, error; default info
	Format string    // json or text; default json
	Output io.Writer // default os.Stdout
}

// New creates a logger from cfg with optional context extractors.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(cfg), extractors...))
}

// ParseLevel maps a level name to slog.Level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}
