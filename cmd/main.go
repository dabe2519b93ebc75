package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/rhythm/internal/adapters/cache"
	"github.com/okian/rhythm/internal/adapters/http/api"
	"github.com/okian/rhythm/internal/adapters/http/swagger"
	app "github.com/okian/rhythm/internal/app"
	"github.com/okian/rhythm/internal/config"
	"github.com/okian/rhythm/internal/domain/syncscore"
	"github.com/okian/rhythm/pkg/logger"
	"github.com/okian/rhythm/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 15 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatal(ctx, "failed to build result store", logger.String("backend", cfg.CacheBackend), logger.Error(err))
	}

	engineOpts, err := engineOptions(cfg)
	if err != nil {
		log.Fatal(ctx, "invalid engine configuration", logger.Error(err))
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithAnalyzer(syncscore.NewEngine(engineOpts...)),
		app.WithStore(store),
		app.WithBackendName(cfg.CacheBackend),
		app.WithCacheTTL(cfg.CacheTTL()),
		app.WithCacheMaxEntries(cfg.CacheMaxEntries),
	)
	if err := svc.Start(ctx); err != nil {
		log.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, metrics.Default().RefreshInterval())

	router, err := buildRouter(svc, log.Named("http"))
	if err != nil {
		log.Fatal(ctx, "failed to build router", logger.Error(err))
	}
	srv := newHTTPServer(cfg.Addr, router)

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// buildStore returns the result store selected by cache_backend.
func buildStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		return cache.NewRedisStore(ctx, cfg.RedisAddr,
			cache.WithKeyPrefix(cfg.RedisKeyPrefix),
			cache.WithRedisTTL(cfg.CacheTTL()),
		)
	case config.CacheBackendMemory, "":
		return cache.NewMemoryStore(
			cache.WithTTL(cfg.CacheTTL()),
			cache.WithMaxEntries(cfg.CacheMaxEntries),
		), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalidConfig, cfg.CacheBackend)
	}
}

// engineOptions maps the engine tunables onto engine options.
func engineOptions(cfg *config.Config) ([]syncscore.Option, error) {
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: default_timezone: %v", config.ErrInvalidConfig, err)
	}
	return []syncscore.Option{
		syncscore.WithWindowDays(cfg.WindowDays),
		syncscore.WithLocation(loc),
		syncscore.WithReliability(cfg.ReliabilityMax, cfg.ShrinkageN0),
		syncscore.WithRidgeLambda(cfg.RidgeLambda),
		syncscore.WithJetlagK(cfg.JetlagK),
		syncscore.WithBumpWeight(cfg.BumpWeight),
	}, nil
}

// buildRouter mounts the API and its docs on one chi router.
func buildRouter(svc *app.Service, log logger.Logger) (http.Handler, error) {
	r := api.NewServer(svc, svc, log).Router()
	if err := swagger.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater refreshes the system gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
