package config

import "errors"

// ErrInvalidConfig marks values that parse but cannot be used; the commands
// report it as a usage error. ErrLoadConfig marks an unreadable source.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrLoadConfig    = errors.New("cannot load configuration")
)
