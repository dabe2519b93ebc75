package syncscore

import (
	"math"

	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/cosinor"
	"github.com/okian/rhythm/internal/domain/model"
)

const (
	// TimelineSamples covers one day in 15-minute steps.
	TimelineSamples = 96
	timelineStep    = circadian.DayHours / TimelineSamples

	// minTimelineReliability is the adaptation level below which the
	// timeline is theory only.
	minTimelineReliability = 0.1
)

// Timeline samples readiness over the day. When reliability reaches 0.1 the
// theoretical curve is blended with the reliability-weighted empirical
// rhythms of the domains.
func Timeline(r *circadian.Readiness, fits map[model.Domain]cosinor.Result, reliability float64) []float64 {
	out := make([]float64, TimelineSamples)
	empirical, ok := newEmpirical(fits)
	useData := ok && reliability >= minTimelineReliability
	for i := range out {
		t := float64(i) * timelineStep
		v := r.At(t)
		if useData && !r.Groggy(t) {
			v = circadian.Blend(v, empirical.at(t), reliability)
		}
		out[i] = round(clamp01(v), 4)
	}
	return out
}

type empiricalCurve struct {
	fits   []cosinor.Result
	maxAmp float64
	weight float64
}

func newEmpirical(fits map[model.Domain]cosinor.Result) (empiricalCurve, bool) {
	var c empiricalCurve
	for _, d := range model.AllDomains() {
		f, ok := fits[d]
		if !ok || f.Reliability <= 0 {
			continue
		}
		c.fits = append(c.fits, f)
		c.weight += f.Reliability
		c.maxAmp = math.Max(c.maxAmp, f.Amplitude)
	}
	return c, c.weight > 0 && c.maxAmp > 0
}

// at is the weighted mean of each domain's rhythm rescaled to [0,1], with
// the strongest rhythm spanning the full range.
func (c empiricalCurve) at(t float64) float64 {
	var sum float64
	for _, f := range c.fits {
		shape := 0.5 * (1 + (f.Amplitude/c.maxAmp)*math.Cos(circadian.Omega*(t-f.Acrophase)))
		sum += f.Reliability * shape
	}
	return sum / c.weight
}
