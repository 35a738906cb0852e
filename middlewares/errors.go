package middlewares

import (
	"errors"
	"fmt"
)

// PanicError is a recovered panic handed to the App's ErrorHandler.
// In debug mode the default error handler prints Stack after the message.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StackTrace returns the captured stack.
func (e *PanicError) StackTrace() []byte {
	return e.Stack
}

// IsPanicError reports whether err is or wraps a *PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AsPanicError extracts the *PanicError from err.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}
