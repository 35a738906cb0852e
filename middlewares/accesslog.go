package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/markc/pablo/internal"
)

// AccessLog returns middleware that logs "request completed" after every
// request with its method, path, status and duration. Successful requests
// are logged at debug level, so they only show with debug logging on.
// Server errors are logged at error level, client errors at warn.
func AccessLog() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(rc *internal.RequestContext) error {
			start := time.Now()
			err := next(rc)

			status := rc.ResponseWriter().Status()
			if err != nil && !rc.Written() {
				status = http.StatusInternalServerError
				if he := internal.AsHTTPError(err); he != nil {
					status = he.Code
				}
			}

			level := slog.LevelDebug
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			rc.Logger().Log(rc, level, "request completed",
				slog.String("method", rc.Request().Method),
				slog.String("path", rc.Request().URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
