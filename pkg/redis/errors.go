package redis

import "errors"

var (
	// ErrInvalidConnectionURL is returned when the connection string cannot be parsed.
	ErrInvalidConnectionURL = errors.New("redis: invalid connection URL")
	// ErrNotReady is returned when all connection attempts fail.
	ErrNotReady = errors.New("redis: server not ready")
	// ErrHealthcheckFailed is returned when the server stops answering pings.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)
