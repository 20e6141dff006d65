package pushtoken

import "errors"

var (
	// ErrCacheMiss is returned by caches when a key has no value.
	ErrCacheMiss = errors.New("pushtoken: cache miss")
	// ErrLocalWriteFailed is returned when the local cache write fails;
	// persistence is local-first, so this is the only fatal Persist failure.
	ErrLocalWriteFailed = errors.New("pushtoken: local cache write failed")
	// ErrInvalidToken is returned when a token has no value or no user.
	ErrInvalidToken = errors.New("pushtoken: invalid token")
)
