package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to record the status and size of
// the response and to run hooks right before the headers go out. The session
// is persisted from such a hook.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	written     bool
	beforeWrite []func()
	mu          sync.Mutex
}

// NewResponseWriter wraps w. An existing *ResponseWriter is returned as is so
// nested middleware share one set of hooks.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run once, before the first WriteHeader or Write.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// begin marks the response written and returns the pending hooks.
// It reports false if the response was already started.
func (w *ResponseWriter) begin(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

// WriteHeader sends the status code. Only the first call has an effect.
func (w *ResponseWriter) WriteHeader(code int) {
	hooks, ok := w.begin(code)
	if !ok {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write writes the body, sending an implicit 200 first if needed.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, ok := w.begin(http.StatusOK); ok {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the response status code.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the response has started.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements http.Flusher.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
