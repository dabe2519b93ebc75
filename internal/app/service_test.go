package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/rhythm/internal/adapters/cache"
	service "github.com/okian/rhythm/internal/app"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/recommend"
	"github.com/okian/rhythm/internal/domain/ridge"
	"github.com/okian/rhythm/internal/domain/syncscore"
	"github.com/okian/rhythm/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type countingAnalyzer struct {
	inner syncscore.Analyzer
	calls atomic.Int32
	gate  chan struct{}
}

func (c *countingAnalyzer) Analyze(in model.Input) (syncscore.SyncResult, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.inner.Analyze(in)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (cache.Entry, bool, error) {
	return cache.Entry{}, false, errors.New("backend down")
}
func (brokenStore) Set(context.Context, string, cache.Entry) error { return errors.New("backend down") }
func (brokenStore) Delete(context.Context, string) error           { return errors.New("backend down") }
func (brokenStore) Close() error                                   { return nil }

var base = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func sampleInput() model.Input {
	in := model.Input{Quiz: model.QuizResponses{
		NaturalWake: "8-10 AM", FocusTime: "Afternoon", HomeworkTime: "Early evening",
	}}
	domains := model.AllDomains()
	for d := 0; d < 10; d++ {
		for h := 9; h <= 21; h += 3 {
			in.Sessions = append(in.Sessions, model.CognitiveSession{
				ID:              "s",
				Timestamp:       base.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour).UnixMilli(),
				Domain:          domains[(d+h)%len(domains)],
				NormalizedScore: 0.4 + 0.03*float64(h-9),
				HourOfDay:       float64(h),
			})
		}
	}
	return in
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("It refuses work before Start", func() {
			_, err := svc.Analyze(context.Background(), "u1", sampleInput())
			So(err, ShouldEqual, service.ErrNotStarted)
			So(svc.Invalidate(context.Background(), "u1"), ShouldEqual, service.ErrNotStarted)
		})

		Convey("Start is idempotent and reports stats", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()

			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["cacheBackend"], ShouldEqual, "memory")
			So(stats["cacheTTLSeconds"], ShouldEqual, 1800)
			So(stats["cacheEntries"], ShouldEqual, int64(0))
			So(stats, ShouldContainKey, "metrics")
		})

		Convey("Stop without Start is a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a started service with a counting engine", t, func() {
		ctx := context.Background()
		counter := &countingAnalyzer{inner: syncscore.NewEngine()}
		svc := startService(service.WithAnalyzer(counter), service.WithCacheTTL(time.Minute))
		defer svc.Stop()

		Convey("the first call computes and the second is served from cache", func() {
			first, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			So(first.Cached, ShouldBeFalse)
			So(first.AnalysisID, ShouldNotBeEmpty)

			second, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			So(second.Cached, ShouldBeTrue)
			So(second.AnalysisID, ShouldEqual, first.AnalysisID)
			So(second.Sync, ShouldResemble, first.Sync)
			So(counter.calls.Load(), ShouldEqual, 1)
		})

		Convey("non-finite samples are absorbed and the result is cached", func() {
			in := sampleInput()
			in.Sessions[0].NormalizedScore = math.NaN()
			in.Sessions[1].HourOfDay = math.Inf(1)
			in.Factors = []model.LifestyleFactor{{
				Kind:      model.FactorSleep,
				Timestamp: base.UnixMilli(),
				Sleep:     &model.SleepValue{Quality: math.NaN(), DurationMinutes: math.Inf(-1)},
			}}

			first, err := svc.Analyze(ctx, "u1", in)
			So(err, ShouldBeNil)
			So(first.Cached, ShouldBeFalse)
			So(first.Sync.SyncScore, ShouldBeBetweenOrEqual, 0, 100)

			second, err := svc.Analyze(ctx, "u1", in)
			So(err, ShouldBeNil)
			So(second.Cached, ShouldBeTrue)
			So(counter.calls.Load(), ShouldEqual, 1)
		})

		Convey("reordered samples still hit the cache", func() {
			in := sampleInput()
			_, err := svc.Analyze(ctx, "u1", in)
			So(err, ShouldBeNil)

			rev := sampleInput()
			for i, j := 0, len(rev.Sessions)-1; i < j; i, j = i+1, j-1 {
				rev.Sessions[i], rev.Sessions[j] = rev.Sessions[j], rev.Sessions[i]
			}
			res, err := svc.Analyze(ctx, "u1", rev)
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeTrue)
		})

		Convey("a changed input is a miss", func() {
			_, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)

			changed := sampleInput()
			changed.Quiz.FocusTime = "Evening"
			res, err := svc.Analyze(ctx, "u1", changed)
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeFalse)
			So(counter.calls.Load(), ShouldEqual, 2)
		})

		Convey("results are kept per user", func() {
			a, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			b, err := svc.Analyze(ctx, "u2", sampleInput())
			So(err, ShouldBeNil)
			So(b.Cached, ShouldBeFalse)
			So(b.AnalysisID, ShouldNotEqual, a.AnalysisID)
		})

		Convey("invalidation forces a recomputation", func() {
			_, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			So(svc.Invalidate(ctx, "u1"), ShouldBeNil)

			res, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			So(res.Cached, ShouldBeFalse)
			So(counter.calls.Load(), ShouldEqual, 2)
		})

		Convey("invalid input is rejected before the engine runs", func() {
			in := sampleInput()
			in.Sessions[0].Domain = "juggling"
			_, err := svc.Analyze(ctx, "u1", in)
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(err, model.ErrUnknownDomain), ShouldBeTrue)
			So(counter.calls.Load(), ShouldEqual, 0)
		})

		Convey("a missing user id is rejected", func() {
			_, err := svc.Analyze(ctx, "", sampleInput())
			So(err, ShouldEqual, service.ErrMissingUserID)
			So(svc.Invalidate(ctx, ""), ShouldEqual, service.ErrMissingUserID)
		})
	})
}

func TestService_CacheExpiry(t *testing.T) {
	Convey("Given a service whose store expires entries quickly", t, func() {
		ctx := context.Background()
		now := base
		var mu sync.Mutex
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		store := cache.NewMemoryStore(cache.WithTTL(time.Minute), cache.WithClock(clock))
		counter := &countingAnalyzer{inner: syncscore.NewEngine()}
		svc := startService(service.WithAnalyzer(counter), service.WithStore(store))
		defer svc.Stop()

		_, err := svc.Analyze(ctx, "u1", sampleInput())
		So(err, ShouldBeNil)

		mu.Lock()
		now = now.Add(2 * time.Minute)
		mu.Unlock()

		res, err := svc.Analyze(ctx, "u1", sampleInput())
		So(err, ShouldBeNil)
		So(res.Cached, ShouldBeFalse)
		So(counter.calls.Load(), ShouldEqual, 2)
	})
}

func TestService_Singleflight(t *testing.T) {
	Convey("Concurrent identical requests share one computation", t, func() {
		ctx := context.Background()
		counter := &countingAnalyzer{inner: syncscore.NewEngine(), gate: make(chan struct{})}
		svc := startService(service.WithAnalyzer(counter))
		defer svc.Stop()

		const callers = 6
		results := make([]service.Result, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.Analyze(ctx, "u1", sampleInput())
			}(i)
		}

		for counter.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
		close(counter.gate)
		wg.Wait()

		So(counter.calls.Load(), ShouldEqual, 1)
		for i := 0; i < callers; i++ {
			So(errs[i], ShouldBeNil)
			So(results[i].AnalysisID, ShouldEqual, results[0].AnalysisID)
		}
	})
}

func TestService_CanceledCaller(t *testing.T) {
	Convey("A caller that gives up gets its context error", t, func() {
		counter := &countingAnalyzer{inner: syncscore.NewEngine(), gate: make(chan struct{})}
		svc := startService(service.WithAnalyzer(counter))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := svc.Analyze(ctx, "u1", sampleInput())
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		close(counter.gate)
	})
}

func TestService_BrokenStore(t *testing.T) {
	Convey("Given a store that always fails", t, func() {
		ctx := context.Background()
		counter := &countingAnalyzer{inner: syncscore.NewEngine()}
		svc := startService(
			service.WithAnalyzer(counter),
			service.WithStore(brokenStore{}),
			service.WithBackendName("redis"),
		)
		defer svc.Stop()

		Convey("analyses still succeed without caching", func() {
			first, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			second, err := svc.Analyze(ctx, "u1", sampleInput())
			So(err, ShouldBeNil)
			So(second.Cached, ShouldBeFalse)
			So(second.Sync, ShouldResemble, first.Sync)
			So(counter.calls.Load(), ShouldEqual, 2)
		})

		Convey("invalidation reports the failure", func() {
			err := svc.Invalidate(ctx, "u1")
			So(errors.Is(err, service.ErrInvalidate), ShouldBeTrue)
		})

		Convey("stats omit the entry count", func() {
			stats := svc.GetStats()
			So(stats["cacheBackend"], ShouldEqual, "redis")
			So(stats, ShouldNotContainKey, "cacheEntries")
		})
	})
}

func TestService_Rank(t *testing.T) {
	Convey("Rank orders recommendations by category weight", t, func() {
		svc := service.New()
		recs := []recommend.Recommendation{
			{ID: "a", Category: ridge.CategorySleep, Priority: 1},
			{ID: "b", Category: ridge.CategoryActivity, Priority: 1},
		}
		out := svc.Rank(context.Background(), ridge.CategoryWeights{
			ridge.CategorySleep: 0.2, ridge.CategoryActivity: 0.6,
		}, recs)
		So(out[0].ID, ShouldEqual, "b")
		So(recs[0].ID, ShouldEqual, "a")
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Fingerprint ignores sample order but not content", t, func() {
		a := sampleInput()
		b := sampleInput()
		b.Sessions[0], b.Sessions[1] = b.Sessions[1], b.Sessions[0]

		fa := service.Fingerprint(a)
		So(service.Fingerprint(b), ShouldEqual, fa)
		So(len(fa), ShouldEqual, 64)

		b.Sessions[0].NormalizedScore += 0.01
		So(service.Fingerprint(b), ShouldNotEqual, fa)
	})

	Convey("Non-finite values hash distinctly from finite ones", t, func() {
		withScore := func(v float64) string {
			in := sampleInput()
			in.Sessions[0].NormalizedScore = v
			return service.Fingerprint(in)
		}
		nan, posInf, negInf, zero := withScore(math.NaN()), withScore(math.Inf(1)), withScore(math.Inf(-1)), withScore(0)
		So(nan, ShouldEqual, withScore(math.NaN()))
		So(nan, ShouldNotEqual, zero)
		So(nan, ShouldNotEqual, posInf)
		So(posInf, ShouldNotEqual, negInf)
	})

	Convey("Optional fields distinguish absent from zero", t, func() {
		a := sampleInput()
		b := sampleInput()
		zero := 0.0
		a.Factors = []model.LifestyleFactor{{Kind: model.FactorSleep, Timestamp: base.UnixMilli(), Sleep: &model.SleepValue{Quality: 70}}}
		b.Factors = []model.LifestyleFactor{{Kind: model.FactorSleep, Timestamp: base.UnixMilli(), Sleep: &model.SleepValue{Quality: 70, BedHour: &zero}}}
		So(service.Fingerprint(a), ShouldNotEqual, service.Fingerprint(b))
	})
}
