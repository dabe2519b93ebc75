package lifestyle

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/model"
)

// consistencySpreadHours is the mean bed/wake spread at which consistency
// reaches zero.
const consistencySpreadHours = 2.0

// SleepMetrics summarises the reported sleep in the window.
type SleepMetrics struct {
	AverageQuality float64 `json:"averageQuality"` // 0-100
	Consistency    float64 `json:"consistency"`    // 0-100, 0 when unknown
	Duration       float64 `json:"duration"`       // hours
	Entries        int     `json:"-"`
	Timings        int     `json:"-"` // entries with bed and wake hours
}

// HasData reports whether any sleep entry was seen.
func (m SleepMetrics) HasData() bool { return m.Entries > 0 }

// ConsistencyKnown reports whether enough entries exist to judge regularity.
func (m SleepMetrics) ConsistencyKnown() bool { return m.Timings >= 2 }

// ConsistencyRatio returns Consistency in [0,1].
func (m SleepMetrics) ConsistencyRatio() float64 { return m.Consistency / 100 }

// Sleep computes SleepMetrics from the sleep factors.
func Sleep(factors []model.LifestyleFactor) SleepMetrics {
	var quality, duration, bed, wake []float64
	for _, f := range factors {
		if f.Kind != model.FactorSleep || f.Sleep == nil {
			continue
		}
		s := f.Sleep
		if finite(s.Quality) {
			quality = append(quality, clamp(s.Quality, 0, 100))
		}
		if finite(s.DurationMinutes) && s.DurationMinutes > 0 {
			duration = append(duration, s.DurationMinutes/60)
		}
		if s.BedHour != nil && s.WakeHour != nil && finite(*s.BedHour) && finite(*s.WakeHour) {
			bed = append(bed, circadian.Wrap24(*s.BedHour))
			wake = append(wake, circadian.Wrap24(*s.WakeHour))
		}
	}

	m := SleepMetrics{Entries: len(quality)}
	if len(quality) == 0 {
		return m
	}
	m.Timings = len(bed)
	m.AverageQuality, _ = stats.Mean(quality)
	if len(duration) > 0 {
		m.Duration, _ = stats.Mean(duration)
	}

	if m.ConsistencyKnown() {
		spread := (circadian.CircularSD(bed) + circadian.CircularSD(wake)) / 2
		m.Consistency = 100 * clamp(1-spread/consistencySpreadHours, 0, 1)
	}

	m.AverageQuality = round1(m.AverageQuality)
	m.Duration = round1(m.Duration)
	m.Consistency = math.Round(m.Consistency)
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
