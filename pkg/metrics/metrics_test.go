package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.namespace, ShouldEqual, "rhythm")
				So(manager.subsystem, ShouldEqual, "sync")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithMetricPrefix("x_"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithScoreBuckets([]float64{50, 100}),
				WithRefreshInterval(5*time.Second),
				WithConstLabels(map[string]string{"env": "test", "": "x", "zone": ""}),
				WithPrometheusRegistry(registry),
			)
			manager.cacheHits.Inc()

			Convey("Then names and labels follow the options", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_ns_test_sub_x_cache_hits_total" {
						found = true
						So(f.GetMetric()[0].GetLabel(), ShouldHaveLength, 1)
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When invalid option values are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithLatencyBuckets(nil),
				WithScoreBuckets(nil),
				WithRefreshInterval(-time.Second),
				WithConstLabels(nil),
				WithPrometheusRegistry(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults survive", func() {
				So(manager.namespace, ShouldEqual, "rhythm")
				So(manager.subsystem, ShouldEqual, "sync")
				So(manager.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
				So(manager.scoreBuckets, ShouldHaveLength, 11)
				So(manager.constLabels, ShouldBeEmpty)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))
			manager.cacheHits.Inc()

			Convey("Then nothing reaches the registry", func() {
				So(manager.Enabled(), ShouldBeFalse)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		m := Default()
		So(m, ShouldNotBeNil)

		Convey("analysis outcomes are counted per label", func() {
			before := value(m.analyses.WithLabelValues(OutcomeComputed))
			RecordAnalysis(OutcomeComputed)
			RecordAnalysis(OutcomeComputed)
			So(value(m.analyses.WithLabelValues(OutcomeComputed)), ShouldEqual, before+2)
		})

		Convey("cache counters move independently", func() {
			hits := value(m.cacheHits)
			misses := value(m.cacheMisses)
			RecordCacheHit()
			RecordCacheMiss()
			RecordCacheMiss()
			So(value(m.cacheHits), ShouldEqual, hits+1)
			So(value(m.cacheMisses), ShouldEqual, misses+2)

			UpdateCacheEntries(42)
			So(value(m.cacheEntries), ShouldEqual, 42)
		})

		Convey("histograms and labelled counters accept observations", func() {
			So(func() {
				RecordAnalysisLatency(3.5)
				RecordSyncScore(71, 0.4)
				RecordValidationFailure("invalid_input")
				RecordCacheError("get")
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/healthz", "GET", "200", 1.2)
				RecordErrorByComponent("cache", "timeout")
				RecordErrorByType("client_error", "low")
				RecordErrorByEndpoint("/v1/users/{userID}/sync", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 2)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(value(m.systemGoroutineCount), ShouldEqual, 12)
		})

		Convey("the exposition contains the service metrics", func() {
			RecordCacheHit()
			UpdateCacheEntries(7)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool)
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["rhythm_sync_cache_hits_total"], ShouldBeTrue)
			So(names["rhythm_sync_cache_entries"], ShouldBeTrue)
			So(value(m.cacheEntries), ShouldEqual, 7)
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		m.analyses.WithLabelValues(OutcomeComputed).Add(3)
		m.analyses.WithLabelValues(OutcomeCached).Inc()
		m.cacheHits.Inc()
		m.cacheMisses.Add(3)
		m.cacheErrors.WithLabelValues("get").Inc()
		m.cacheErrors.WithLabelValues("set").Inc()
		m.cacheEntries.Set(5)
		m.validationFailures.WithLabelValues("invalid_input").Inc()
		m.httpRequests.WithLabelValues("/healthz", "GET", "200").Add(2)

		Convey("the snapshot sums every counter", func() {
			s, err := m.SnapshotFrom(registry)
			So(err, ShouldBeNil)
			So(s.Analyses[OutcomeComputed], ShouldEqual, 3)
			So(s.Analyses[OutcomeCached], ShouldEqual, 1)
			So(s.CacheHits, ShouldEqual, 1)
			So(s.CacheMisses, ShouldEqual, 3)
			So(s.CacheErrors, ShouldEqual, 2)
			So(s.CacheEntries, ShouldEqual, 5)
			So(s.ValidationFailures, ShouldEqual, 1)
			So(s.HTTPRequests, ShouldEqual, 2)
		})

		Convey("the global snapshot is available", func() {
			s, err := TakeSnapshot()
			So(err, ShouldBeNil)
			So(s.Analyses, ShouldNotBeNil)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric recording", t, func() {
		before := value(Default().cacheMisses)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordCacheMiss()
					RecordAnalysis(OutcomeComputed)
					RecordHTTPRequest("/stats", "GET", "200")
				}
			}()
		}
		wg.Wait()

		So(value(Default().cacheMisses), ShouldEqual, before+1000)
	})
}

func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	switch {
	case m.Counter != nil:
		return m.GetCounter().GetValue()
	case m.Gauge != nil:
		return m.GetGauge().GetValue()
	}
	return 0
}
