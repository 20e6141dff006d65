package config

import "errors"

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config: target must be a non-nil pointer")
	// ErrParsingConfig wraps failures from parsing environment variables.
	ErrParsingConfig = errors.New("config: failed to parse environment")
	// ErrLoadingEnvFile wraps failures from reading an explicit .env file.
	ErrLoadingEnvFile = errors.New("config: failed to load env file")
)
