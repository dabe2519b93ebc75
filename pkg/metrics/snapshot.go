package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Snapshot is a JSON friendly summary of the service counters.
type Snapshot struct {
	Analyses           map[string]float64 `json:"analyses"`
	CacheHits          float64            `json:"cacheHits"`
	CacheMisses        float64            `json:"cacheMisses"`
	CacheErrors        float64            `json:"cacheErrors"`
	CacheEntries       float64            `json:"cacheEntries"`
	ValidationFailures float64            `json:"validationFailures"`
	HTTPRequests       float64            `json:"httpRequests"`
}

// TakeSnapshot summarises the global registry.
func TakeSnapshot() (Snapshot, error) {
	return globalManager.SnapshotFrom(customRegistry)
}

// SnapshotFrom summarises the manager's metrics as gathered by g.
func (m *Manager) SnapshotFrom(g prometheus.Gatherer) (Snapshot, error) {
	s := Snapshot{Analyses: make(map[string]float64)}
	families, err := g.Gather()
	if err != nil {
		return s, fmt.Errorf("%w: %v", ErrGatherFailed, err)
	}

	fq := func(n string) string {
		return prometheus.BuildFQName(m.namespace, m.subsystem, m.name(n))
	}
	for _, f := range families {
		switch f.GetName() {
		case fq("analyses_total"):
			for _, mt := range f.GetMetric() {
				for _, l := range mt.GetLabel() {
					if l.GetName() == "outcome" {
						s.Analyses[l.GetValue()] += mt.GetCounter().GetValue()
					}
				}
			}
		case fq("cache_hits_total"):
			s.CacheHits = sumCounters(f.GetMetric())
		case fq("cache_misses_total"):
			s.CacheMisses = sumCounters(f.GetMetric())
		case fq("cache_errors_total"):
			s.CacheErrors = sumCounters(f.GetMetric())
		case fq("validation_failures_total"):
			s.ValidationFailures = sumCounters(f.GetMetric())
		case fq("http_requests_total"):
			s.HTTPRequests = sumCounters(f.GetMetric())
		case fq("cache_entries"):
			for _, mt := range f.GetMetric() {
				s.CacheEntries += mt.GetGauge().GetValue()
			}
		}
	}
	return s, nil
}

func sumCounters(ms []*dto.Metric) float64 {
	var total float64
	for _, mt := range ms {
		total += mt.GetCounter().GetValue()
	}
	return total
}
