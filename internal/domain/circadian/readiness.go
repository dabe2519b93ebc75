package circadian

import "math"

const (
	defaultBumpPeak   = 17.0
	defaultBumpSigma  = 2.0
	defaultBumpWeight = 0.2
	grogginessHours   = 1.0
	windowSamples     = 60
)

// ReadinessOption configures a Readiness curve.
type ReadinessOption func(*Readiness)

// WithWake zeroes readiness during the hour after wake.
func WithWake(hour float64) ReadinessOption {
	return func(r *Readiness) {
		r.wake = Wrap24(hour)
		r.hasWake = true
	}
}

// WithBumpWeight sets the weight of the afternoon bump. Values outside [0,1]
// are ignored.
func WithBumpWeight(beta float64) ReadinessOption {
	return func(r *Readiness) {
		if beta >= 0 && beta <= 1 {
			r.beta = beta
		}
	}
}

// WithBump moves the afternoon bump. Non-positive sigma is ignored.
func WithBump(peak, sigma float64) ReadinessOption {
	return func(r *Readiness) {
		if sigma > 0 {
			r.peak = Wrap24(peak)
			r.sigma = sigma
		}
	}
}

// Readiness is the modelled learning readiness L(t) for a given phase:
//
//	L(t) = I(t) * [(1-beta)*Lc(t) + beta*B(t)]
//
// where Lc is a raised cosine peaking at the phase, B is a Gaussian bump in
// the afternoon and I is zero during the hour after waking.
type Readiness struct {
	phase   float64
	beta    float64
	peak    float64
	sigma   float64
	wake    float64
	hasWake bool
}

// NewReadiness builds the readiness curve for phase.
func NewReadiness(phase float64, opts ...ReadinessOption) *Readiness {
	r := &Readiness{
		phase: Wrap24(phase),
		beta:  defaultBumpWeight,
		peak:  defaultBumpPeak,
		sigma: defaultBumpSigma,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Phase returns the hour of the circadian peak.
func (r *Readiness) Phase() float64 { return r.phase }

// Groggy reports whether t falls in the post-wake window.
func (r *Readiness) Groggy(t float64) bool {
	if !r.hasWake {
		return false
	}
	return Wrap24(t-r.wake) < grogginessHours
}

// At evaluates L(t) in [0,1].
func (r *Readiness) At(t float64) float64 {
	if r.Groggy(t) {
		return 0
	}
	lc := 0.5 * (1 + math.Cos(Omega*(t-r.phase)))
	d := Distance(t, r.peak)
	b := math.Exp(-(d * d) / (2 * r.sigma * r.sigma))
	return clamp01((1-r.beta)*lc + r.beta*b)
}

// WindowMean averages L over [start, start+duration) using 60 evenly spaced
// samples.
func (r *Readiness) WindowMean(start, duration float64) float64 {
	if duration <= 0 {
		return r.At(start)
	}
	step := duration / windowSamples
	var sum float64
	for i := 0; i < windowSamples; i++ {
		sum += r.At(start + float64(i)*step)
	}
	return sum / windowSamples
}
