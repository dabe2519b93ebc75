package cache

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxEntries bounds the store. Values <= 0 leave it unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryStore) {
		m.maxEntries = n
	}
}

// WithTTL sets how long entries live. Values <= 0 are ignored.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryStore) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTTL sets the key expiry. Values <= 0 are ignored.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStore) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces every key written by the store.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		r.prefix = prefix
	}
}

// WithClient uses an existing client instead of dialing addr.
func WithClient(c *goredis.Client) RedisOption {
	return func(r *RedisStore) {
		if c != nil {
			r.rdb = c
		}
	}
}
