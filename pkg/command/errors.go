package command

import "errors"

var (
	// ErrStart is returned when a command cannot be launched.
	ErrStart = errors.New("command: failed to start")

	// ErrFailed is returned by Run when a command exits unsuccessfully.
	ErrFailed = errors.New("command: failed")
)
