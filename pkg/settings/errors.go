package settings

import "errors"

var (
	ErrReadConfig   = errors.New("settings: failed to read config file")
	ErrDecodeConfig = errors.New("settings: failed to decode config")
	ErrInvalid      = errors.New("settings: invalid value")
)
