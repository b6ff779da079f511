package cache

import "errors"

var (
	ErrNotFound       = errors.New("cache: entry not found")
	ErrClosed         = errors.New("cache: closed")
	ErrMarshal        = errors.New("cache: failed to marshal value")
	ErrUnmarshal      = errors.New("cache: failed to unmarshal value")
	ErrUnknownBackend = errors.New("cache: unknown backend")
	ErrNoRedisClient  = errors.New("cache: redis backend needs a client")
)
