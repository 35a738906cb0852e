package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/markc/pablo/internal"
	"github.com/markc/pablo/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked, in order, for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets the ID generator. Defaults to uuid.NewString.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// RequestID returns middleware that tags each request with an ID, reusing
// an upstream one when present, and echoes it in X-Request-ID.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(rc *internal.RequestContext) error {
			var reqID string
			for _, header := range cfg.Headers {
				if v := rc.Header(header); v != "" {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			rc.Set(requestIDKey{}, reqID)
			rc.SetHeader(cfg.ResponseHeader, reqID)
			return next(rc)
		}
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records written with a
// request context. Pass it to logger.New.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
