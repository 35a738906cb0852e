package scanner

import "errors"

var (
	// ErrReadDir is returned when the plugins directory exists but cannot be listed.
	ErrReadDir = errors.New("scanner: failed to read plugins directory")

	// ErrBadMetadata is returned when a plugin.yaml cannot be parsed.
	ErrBadMetadata = errors.New("scanner: malformed plugin metadata")
)
