// Package service orchestrates analyses: it validates input, runs the engine
// and keeps the latest result per user in a result store.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/rhythm/internal/adapters/cache"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/recommend"
	"github.com/okian/rhythm/internal/domain/ridge"
	"github.com/okian/rhythm/internal/domain/syncscore"
	"github.com/okian/rhythm/pkg/logger"
	"github.com/okian/rhythm/pkg/metrics"
)

// Result is what a caller gets back from Analyze.
type Result struct {
	AnalysisID string
	Cached     bool
	Sync       syncscore.SyncResult
}

// Service implements the API dependencies for the sync analysis service.
type Service struct {
	mu sync.RWMutex

	engine syncscore.Analyzer
	store  cache.Store
	group  singleflight.Group

	cacheTTL        time.Duration
	cacheMaxEntries int
	backend         string

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheTTL:        cache.DefaultTTL,
		cacheMaxEntries: cache.DefaultMaxEntries,
		backend:         "memory",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = syncscore.NewEngine()
	}
	return s
}

// Start fills in the components that were not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = cache.NewMemoryStore(
			cache.WithTTL(s.cacheTTL),
			cache.WithMaxEntries(s.cacheMaxEntries),
		)
	}

	s.started = true
	s.logger.Info(ctx, "sync service started",
		logger.String("cacheBackend", s.backend),
		logger.Duration("cacheTTL", s.cacheTTL),
	)
	return nil
}

// Stop closes the result store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing result store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "sync service stopped")
}

func (s *Service) components() (cache.Store, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.logger, nil
}

// Analyze returns the sync result for userID. A stored result is reused when
// it was computed from an identical input; concurrent calls with the same
// input share one computation.
func (s *Service) Analyze(ctx context.Context, userID string, in model.Input) (Result, error) {
	store, log, err := s.components()
	if err != nil {
		return Result{}, err
	}
	if userID == "" {
		return Result{}, ErrMissingUserID
	}
	in.UserID = userID

	if err := in.Validate(); err != nil {
		metrics.RecordValidationFailure(validationReason(err))
		metrics.RecordAnalysis(metrics.OutcomeInvalid)
		return Result{}, err
	}

	fp := Fingerprint(in)

	entry, ok, err := store.Get(ctx, userID)
	if err != nil {
		metrics.RecordCacheError("get")
		metrics.RecordErrorByComponent("cache", "get")
		log.Warn(ctx, "result store read failed, recomputing",
			logger.String("userID", userID),
			logger.Error(err),
		)
	}
	if ok && entry.Fingerprint == fp {
		metrics.RecordCacheHit()
		metrics.RecordAnalysis(metrics.OutcomeCached)
		log.Debug(ctx, "serving cached analysis",
			logger.String("userID", userID),
			logger.String("analysisID", entry.AnalysisID),
		)
		return Result{AnalysisID: entry.AnalysisID, Cached: true, Sync: entry.Result}, nil
	}
	metrics.RecordCacheMiss()

	ch := s.group.DoChan(userID+"|"+fp, func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), store, log, userID, fp, in)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (s *Service) compute(ctx context.Context, store cache.Store, log logger.Logger, userID, fp string, in model.Input) (Result, error) {
	start := time.Now()
	res, err := s.engine.Analyze(in)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordAnalysis(metrics.OutcomeFailed)
		metrics.RecordErrorByComponent("engine", "analyze")
		metrics.RecordErrorLatency("engine", "analyze", latencyMs)
		return Result{}, err
	}
	metrics.RecordAnalysisLatency(latencyMs)
	metrics.RecordAnalysis(metrics.OutcomeComputed)
	metrics.RecordSyncScore(res.SyncScore, res.AdaptiveComponents.AdaptationLevel)

	id := uuid.NewString()
	entry := cache.Entry{
		Fingerprint: fp,
		AnalysisID:  id,
		Result:      res,
		StoredAt:    time.Now().UTC(),
	}
	if err := store.Set(ctx, userID, entry); err != nil {
		metrics.RecordCacheError("set")
		metrics.RecordErrorByComponent("cache", "set")
		log.Warn(ctx, "result store write failed",
			logger.String("userID", userID),
			logger.Error(err),
		)
	}
	if sz, ok := store.(cache.Sizer); ok {
		metrics.UpdateCacheEntries(sz.Size())
	}

	log.Info(ctx, "analysis computed",
		logger.String("userID", userID),
		logger.String("analysisID", id),
		logger.Int("sessions", len(in.Sessions)),
		logger.Int("factors", len(in.Factors)),
		logger.Int("syncScore", res.SyncScore),
		logger.Float64("adaptationLevel", res.AdaptiveComponents.AdaptationLevel),
		logger.Float64("latencyMs", latencyMs),
	)
	return Result{AnalysisID: id, Sync: res}, nil
}

// Invalidate drops the stored result for userID.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	store, log, err := s.components()
	if err != nil {
		return err
	}
	if userID == "" {
		return ErrMissingUserID
	}
	if err := store.Delete(ctx, userID); err != nil {
		metrics.RecordCacheError("delete")
		metrics.RecordErrorByComponent("cache", "delete")
		return fmt.Errorf("%w: %w", ErrInvalidate, err)
	}
	if sz, ok := store.(cache.Sizer); ok {
		metrics.UpdateCacheEntries(sz.Size())
	}
	log.Debug(ctx, "cached analysis invalidated", logger.String("userID", userID))
	return nil
}

// Rank reorders recommendations by the given category weights.
func (s *Service) Rank(_ context.Context, weights ridge.CategoryWeights, recs []recommend.Recommendation) []recommend.Recommendation {
	return recommend.Reorder(recs, weights)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"cacheBackend":    s.backend,
		"cacheTTLSeconds": int(s.cacheTTL / time.Second),
	}
	if s.started {
		if sz, ok := s.store.(cache.Sizer); ok {
			n := sz.Size()
			stats["cacheEntries"] = n
			metrics.UpdateCacheEntries(n)
		}
	}
	if snap, err := metrics.TakeSnapshot(); err == nil {
		stats["metrics"] = snap
	}
	return stats
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, model.ErrNegativeTimestamp):
		return "negative_timestamp"
	case errors.Is(err, model.ErrUnknownDomain):
		return "unknown_domain"
	case errors.Is(err, model.ErrUnknownFactorKind):
		return "unknown_factor_kind"
	case errors.Is(err, model.ErrMissingPayload):
		return "missing_payload"
	case errors.Is(err, model.ErrUnknownTimeZone):
		return "unknown_time_zone"
	case errors.Is(err, model.ErrNotFinite):
		return "not_finite"
	default:
		return "invalid_input"
	}
}
