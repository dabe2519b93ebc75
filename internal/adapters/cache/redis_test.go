package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/rhythm/internal/adapters/cache"
	goredis "github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewRedisStore(t *testing.T) {
	Convey("Given the redis store constructor", t, func() {
		Convey("an empty address without a client is rejected", func() {
			_, err := cache.NewRedisStore(context.Background(), "  ")
			So(errors.Is(err, cache.ErrMissingRedis), ShouldBeTrue)
		})

		Convey("an unreachable server fails the ping", func() {
			client := goredis.NewClient(&goredis.Options{
				Addr:        "127.0.0.1:1",
				DialTimeout: 200 * time.Millisecond,
				MaxRetries:  -1,
			})
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			_, err := cache.NewRedisStore(ctx, "", cache.WithClient(client))
			So(errors.Is(err, cache.ErrRedisPing), ShouldBeTrue)
		})
	})
}
