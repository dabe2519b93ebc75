package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix  = "rhythm:sync:"
	redisDialTimeout  = 5 * time.Second
	redisPingDeadline = 5 * time.Second
)

// RedisStore keeps entries as JSON strings with a native key expiry.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to addr (unless WithClient is given) and pings it.
func NewRedisStore(ctx context.Context, addr string, opts ...RedisOption) (*RedisStore, error) {
	r := &RedisStore{
		prefix: DefaultKeyPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rdb == nil {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return nil, ErrMissingRedis
		}
		r.rdb = goredis.NewClient(&goredis.Options{
			Addr:        addr,
			DialTimeout: redisDialTimeout,
		})
	}

	pctx, cancel := context.WithTimeout(ctx, redisPingDeadline)
	defer cancel()
	if err := r.rdb.Ping(pctx).Err(); err != nil {
		_ = r.rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisPing, err)
	}
	return r, nil
}

func (r *RedisStore) key(k string) string { return r.prefix + k }

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrDecodeEntry, err)
	}
	return e, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	if key == "" {
		return ErrEmptyKey
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeEntry, err)
	}
	if err := r.rdb.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
