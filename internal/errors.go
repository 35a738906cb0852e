package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Dispatch errors. Each is fatal for the request and reaches the ErrorHandler
// wrapped with context.
var (
	// ErrEnvironment is returned when the running Go version is below the configured minimum.
	ErrEnvironment = errors.New("pablo: unsupported runtime")

	// ErrThemeNotFound is returned when the requested theme has no registered factory.
	ErrThemeNotFound = errors.New("pablo: theme not found")

	// ErrPluginNotFound is returned when the requested plugin has no registered factory.
	ErrPluginNotFound = errors.New("pablo: plugin not found")

	// ErrInvalidPlugin is returned when a plugin factory yields no plugin.
	ErrInvalidPlugin = errors.New("pablo: invalid plugin")

	// ErrCSRF is returned when an API request carries a missing or wrong X-CSRF-TOKEN.
	ErrCSRF = errors.New("pablo: CSRF token validation failed")

	// ErrInvalidFormatRequest is returned for format=partial without a known section.
	ErrInvalidFormatRequest = errors.New("pablo: invalid format request")

	// ErrInvalidInput is returned when the request body cannot be parsed.
	ErrInvalidInput = errors.New("pablo: invalid request input")

	// ErrStartup is returned by Run when a startup hook fails.
	ErrStartup = errors.New("pablo: startup hook failed")

	// ErrDuplicateID is returned when a registry id is registered twice.
	ErrDuplicateID = errors.New("pablo: duplicate registry id")

	// ErrEmptyID is returned when registering under an empty id.
	ErrEmptyID = errors.New("pablo: empty registry id")
)

// GenericErrorMessage is the only error text shown outside debug mode.
const GenericErrorMessage = "An error occurred. Please try again later."

// HTTPError is an error carrying the status code and user-facing message a
// plugin wants rendered.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusText returns the standard text for the status code.
func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// NewHTTPError creates an HTTPError with an optional underlying cause.
func NewHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: cause}
}

// Wrap sets the underlying cause of e and returns e.
func (e *HTTPError) Wrap(cause error) *HTTPError {
	e.Err = cause
	return e
}

// ErrBadRequest returns a 400 HTTPError.
func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, nil)
}

// ErrForbidden returns a 403 HTTPError.
func ErrForbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, nil)
}

// ErrNotFound returns a 404 HTTPError.
func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, nil)
}

// AsHTTPError extracts an HTTPError from err's chain, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// stackTracer is implemented by recovered panics (middlewares.PanicError).
type stackTracer interface {
	StackTrace() []byte
}

// DefaultErrorHandler renders handler errors as plain text.
//
// In debug mode the response is a 500 with the error text, followed by the
// panic stack when the error is a recovered panic. Otherwise the body is
// GenericErrorMessage. An HTTPError keeps its own status and message in
// both modes.
func DefaultErrorHandler(debug bool) ErrorHandler {
	return func(rc *RequestContext, err error) error {
		code := http.StatusInternalServerError
		body := GenericErrorMessage

		if he := AsHTTPError(err); he != nil {
			code = he.Code
			body = he.Message
		}

		if debug {
			body = err.Error()
			var st stackTracer
			if errors.As(err, &st) && len(st.StackTrace()) > 0 {
				body += "\n\n" + string(st.StackTrace())
			}
		}

		if code >= http.StatusInternalServerError {
			rc.LogError("request failed", "error", err, "status", code)
		} else {
			rc.LogWarn("request rejected", "error", err, "status", code)
		}

		w := rc.Response()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(code)
		_, werr := w.Write([]byte(body))
		return werr
	}
}
