package config

import "errors"

// Sentinel error kinds for this package. Callers classify with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
