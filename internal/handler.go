package internal

// HandlerFunc is the signature for request handlers.
// Returning a non-nil error hands the request to the App's ErrorHandler.
type HandlerFunc func(rc *RequestContext) error

// Middleware wraps a HandlerFunc with cross-cutting behavior such as panic
// recovery, request ids or access logging.
//
//	func Timing(next pablo.HandlerFunc) pablo.HandlerFunc {
//	    return func(rc *pablo.RequestContext) error {
//	        start := time.Now()
//	        err := next(rc)
//	        rc.LogDebug("handled", "took", time.Since(start))
//	        return err
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders an error returned by a handler.
type ErrorHandler func(rc *RequestContext, err error) error

// Handler declares routes outside the front controller.
type Handler interface {
	Routes(r Router)
}
