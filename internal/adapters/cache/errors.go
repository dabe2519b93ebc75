package cache

import "errors"

var (
	ErrEmptyKey     = errors.New("cache key must not be empty")
	ErrClosed       = errors.New("cache store closed")
	ErrRedisPing    = errors.New("redis ping failed")
	ErrDecodeEntry  = errors.New("decode cache entry")
	ErrEncodeEntry  = errors.New("encode cache entry")
	ErrMissingRedis = errors.New("redis address or client required")
)
