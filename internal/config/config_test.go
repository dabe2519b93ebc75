package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/rhythm/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendMemory)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.WindowDays, convey.ShouldEqual, 30)
			convey.So(cfg.ReliabilityMax, convey.ShouldEqual, 0.8)
			convey.So(cfg.ShrinkageN0, convey.ShouldEqual, 20)
			convey.So(cfg.RidgeLambda, convey.ShouldEqual, 0.5)
			convey.So(cfg.JetlagK, convey.ShouldEqual, 0.03)
			convey.So(cfg.BumpWeight, convey.ShouldEqual, 0.2)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func(c *config.Config)
			want   string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr must not be empty"},
			{"unknown backend", func(c *config.Config) { c.CacheBackend = "memcached" }, "cache_backend"},
			{"redis without addr", func(c *config.Config) { c.CacheBackend = "redis"; c.RedisAddr = "" }, "redis_addr"},
			{"zero ttl", func(c *config.Config) { c.CacheTTLSeconds = 0 }, "cache_ttl_seconds"},
			{"zero window", func(c *config.Config) { c.WindowDays = 0 }, "window_days"},
			{"reliability above one", func(c *config.Config) { c.ReliabilityMax = 1.5 }, "reliability_max"},
			{"negative lambda", func(c *config.Config) { c.RidgeLambda = -1 }, "ridge_lambda"},
			{"bump weight above one", func(c *config.Config) { c.BumpWeight = 2 }, "bump_weight"},
			{"bad timezone", func(c *config.Config) { c.DefaultTimezone = "Mars/Olympus" }, "default_timezone"},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
			})
		}
	})
}
