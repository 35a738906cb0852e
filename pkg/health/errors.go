package health

import "errors"

// ErrCheckFailed is returned by Response.Err when one or more checks failed.
var ErrCheckFailed = errors.New("health: check failed")
