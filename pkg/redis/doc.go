// Package redis provides helpers for connecting to the Redis instance used
// as the local key-value cache (push tokens, device identifiers).
//
// Connect retries until the server answers a ping or the attempts are
// exhausted; Config fields can be populated from environment variables via
// pkg/config.
package redis
