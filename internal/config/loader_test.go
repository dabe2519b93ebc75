package config_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/rhythm/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

// layering describes one Load call: an optional YAML file plus env overrides.
type layering struct {
	name    string
	yaml    string
	env     map[string]string
	wantErr error
	errText string
	check   func(cfg *config.Config)
}

func TestLoadLayering(t *testing.T) {
	convey.Convey("Given defaults, an optional YAML file and RHYTHM_ env vars", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		cases := []layering{
			{
				name: "defaults only",
				check: func(cfg *config.Config) {
					convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
					convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendMemory)
					convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 1800)
					convey.So(cfg.WindowDays, convey.ShouldEqual, 30)
					convey.So(cfg.DefaultTimezone, convey.ShouldEqual, "UTC")
				},
			},
			{
				name: "env overrides engine tunables",
				env: map[string]string{
					"RHYTHM_CACHE_TTL_SECONDS": "600",
					"RHYTHM_WINDOW_DAYS":       "14",
					"RHYTHM_RIDGE_LAMBDA":      "1.25",
					"RHYTHM_LOG_FORMAT":        "json",
					"RHYTHM_DEFAULT_TIMEZONE":  "Europe/Berlin",
				},
				check: func(cfg *config.Config) {
					convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 600)
					convey.So(cfg.WindowDays, convey.ShouldEqual, 14)
					convey.So(cfg.RidgeLambda, convey.ShouldEqual, 1.25)
					convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
					convey.So(cfg.DefaultTimezone, convey.ShouldEqual, "Europe/Berlin")
				},
			},
			{
				name: "file selects the redis backend",
				yaml: "# cache\ncache_backend: redis\nredis_addr: \"redis:6379\"  # compose service\ncache_max_entries: 1000\njetlag_k: 0.05\n",
				check: func(cfg *config.Config) {
					convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheBackendRedis)
					convey.So(cfg.RedisAddr, convey.ShouldEqual, "redis:6379")
					convey.So(cfg.CacheMaxEntries, convey.ShouldEqual, 1000)
					convey.So(cfg.JetlagK, convey.ShouldEqual, 0.05)
					convey.So(cfg.BumpWeight, convey.ShouldEqual, 0.2)
				},
			},
			{
				name: "env wins over the file",
				yaml: "addr: \":9090\"\nwindow_days: 21\n",
				env:  map[string]string{"RHYTHM_ADDR": ":8080"},
				check: func(cfg *config.Config) {
					convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
					convey.So(cfg.WindowDays, convey.ShouldEqual, 21)
				},
			},
			{
				name:    "malformed YAML",
				yaml:    "invalid: yaml: content: [",
				wantErr: config.ErrLoadConfig,
			},
			{
				name:    "missing file",
				env:     map[string]string{"RHYTHM_CONFIG": filepath.Join(dir, "absent.yaml")},
				wantErr: config.ErrLoadConfig,
			},
			{
				name:    "empty addr fails validation",
				env:     map[string]string{"RHYTHM_ADDR": ""},
				wantErr: config.ErrInvalidConfig,
				errText: "addr must not be empty",
			},
			{
				name:    "unknown time zone fails validation",
				env:     map[string]string{"RHYTHM_DEFAULT_TIMEZONE": "Mars/Olympus"},
				wantErr: config.ErrInvalidConfig,
				errText: "default_timezone",
			},
			{
				name: "non-numeric window days",
				env:  map[string]string{"RHYTHM_WINDOW_DAYS": "not_a_number"},
			},
		}

		for i, tc := range cases {
			convey.Convey(tc.name, func() {
				env := map[string]string{}
				if tc.yaml != "" {
					path := filepath.Join(dir, fmt.Sprintf("case-%d.yaml", i))
					convey.So(os.WriteFile(path, []byte(tc.yaml), 0o600), convey.ShouldBeNil)
					env["RHYTHM_CONFIG"] = path
				}
				for k, v := range tc.env {
					env[k] = v
				}
				restore := setEnv(env)
				defer restore()

				cfg, err := config.Load(ctx)
				if tc.check == nil {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(cfg, convey.ShouldBeNil)
					if tc.wantErr != nil {
						convey.So(errors.Is(err, tc.wantErr), convey.ShouldBeTrue)
					}
					if tc.errText != "" {
						convey.So(err.Error(), convey.ShouldContainSubstring, tc.errText)
					}
					return
				}
				convey.So(err, convey.ShouldBeNil)
				tc.check(cfg)
			})
		}
	})
}

// setEnv applies env and returns a func that unsets every key again.
func setEnv(env map[string]string) func() {
	for k, v := range env {
		_ = os.Setenv(k, v)
	}
	return func() {
		for k := range env {
			_ = os.Unsetenv(k)
		}
	}
}
