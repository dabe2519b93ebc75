package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/pkg/logger"
)

const (
	outputFilePermission = 0o600
	percentageMultiplier = 100
)

type user struct {
	id      string
	profile Profile
	input   model.Input
}

// Runner executes a simulation against one service.
type Runner struct {
	cfg    Config
	client *HTTPClient
	log    logger.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. A nil log falls back to the global logger.
func NewRunner(cfg Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Get()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{
		cfg:    cfg,
		client: NewHTTPClient(cfg.BaseURL, cfg.Timeout),
		log:    log,
		now:    time.Now,
	}
}

// Run generates users, submits them twice (the second pass must be served
// from cache) and verifies every result.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: r.now()}
	if r.cfg.Users <= 0 {
		return stats, ErrNoUsers
	}

	r.log.Info(ctx, "starting sync simulation",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("users", r.cfg.Users),
		logger.Int("days", r.cfg.Days),
		logger.Int("workers", r.cfg.Workers),
	)

	if err := r.client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	users := r.generate()
	stats.UsersGenerated = len(users)

	first, err := r.submit(ctx, users, stats)
	if err != nil {
		return stats, err
	}
	second, err := r.submit(ctx, users, stats)
	if err != nil {
		return stats, err
	}

	for i, out := range second {
		if out.Cache == "hit" {
			stats.CacheHits++
		}
		if out.AnalysisID != first[i].AnalysisID {
			stats.Violations++
			r.log.Warn(ctx, "repeat submission produced a new analysis",
				logger.String("userID", out.UserID),
			)
		}
	}
	for _, out := range first {
		issues := Verify(out.Profile, out.Result)
		stats.Violations += len(issues)
		for _, issue := range issues {
			r.log.Warn(ctx, "result violates profile expectation",
				logger.String("userID", out.UserID),
				logger.String("profile", string(out.Profile)),
				logger.String("issue", issue),
			)
		}
		if r.cfg.Verbose {
			r.log.Info(ctx, "user result",
				logger.String("userID", out.UserID),
				logger.String("profile", string(out.Profile)),
				logger.Int("syncScore", out.Result.SyncScore),
				logger.Float64("learningPhase", out.Result.LearningPhase),
				logger.String("chronotype", string(out.Result.Chronotype.Chronotype)),
			)
		}
	}

	if r.cfg.OutputFile != "" {
		if err := saveInputs(r.cfg.OutputFile, users); err != nil {
			r.log.Warn(ctx, "failed to save generated inputs", logger.Error(err))
		}
	}

	stats.EndTime = r.now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.report(ctx, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d violations", ErrVerification, stats.Violations)
	}
	return stats, nil
}

func (r *Runner) generate() []user {
	gen := NewGenerator(r.cfg.Seed)
	end := r.now().UTC()
	profiles := Profiles()
	users := make([]user, r.cfg.Users)
	for i := range users {
		p := profiles[i%len(profiles)]
		users[i] = user{
			id:      uuid.NewString(),
			profile: p,
			input:   gen.Input(p, r.cfg.Days, end),
		}
	}
	return users
}

func (r *Runner) submit(ctx context.Context, users []user, stats *Stats) ([]Outcome, error) {
	out := make([]Outcome, len(users))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, u := range users {
		g.Go(func() error {
			res, err := r.client.Sync(gctx, u.id, u.input)
			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			if err != nil {
				stats.Failed++
				return err
			}
			stats.Successful++
			res.Profile = u.profile
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submission failed: %w", err)
	}
	return out, nil
}

func (r *Runner) report(ctx context.Context, s *Stats) {
	var hitRate float64
	if s.UsersGenerated > 0 {
		hitRate = float64(s.CacheHits) / float64(s.UsersGenerated) * percentageMultiplier
	}
	r.log.Info(ctx, "simulation finished",
		logger.Int("users", s.UsersGenerated),
		logger.Int("submitted", s.Submitted),
		logger.Int("successful", s.Successful),
		logger.Int("failed", s.Failed),
		logger.Float64("cacheHitPercent", hitRate),
		logger.Int("violations", s.Violations),
		logger.Duration("duration", s.Duration),
	)
}

func saveInputs(path string, users []user) error {
	dump := make(map[string]model.Input, len(users))
	for _, u := range users {
		dump[u.id] = u.input
	}
	raw, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	return os.WriteFile(path, raw, outputFilePermission)
}
