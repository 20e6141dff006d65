package mongodb

import "errors"

var (
	// ErrFailedToConnect is returned when all connection attempts fail.
	ErrFailedToConnect = errors.New("mongodb: failed to connect")
	// ErrHealthcheckFailed is returned when the store stops answering pings.
	ErrHealthcheckFailed = errors.New("mongodb: healthcheck failed")
)
