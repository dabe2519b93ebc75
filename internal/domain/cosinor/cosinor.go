// Package cosinor fits a single 24h harmonic to time-of-day samples.
//
// The fit is y ≈ M + a·cos(ωt) + b·sin(ωt), solved in closed form from
// sufficient statistics, so the result does not depend on sample order.
package cosinor

import (
	"math"
	"time"

	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/model"
)

const (
	DefaultMaxReliability = 0.8
	DefaultShrinkage      = 20.0
	DefaultMinSamples     = 5

	minDeterminant = 1e-10
	neutralPhase   = 12.0
)

// Point is one (hour-of-day, value) sample.
type Point struct {
	Hour  float64
	Value float64
}

// Result describes the fitted rhythm.
type Result struct {
	Amplitude   float64 `json:"amplitude"`
	Acrophase   float64 `json:"acrophase"`
	Reliability float64 `json:"reliability"`
	RSquared    float64 `json:"rSquared"`
	Mesor       float64 `json:"mesor"`
	N           int     `json:"n"`
}

// Neutral is the result reported when a fit is not possible.
func Neutral(n int) Result {
	return Result{Acrophase: neutralPhase, N: n}
}

// Option configures a Fitter.
type Option func(*Fitter)

// WithMaxReliability caps the reported reliability. Values outside (0,1] are ignored.
func WithMaxReliability(v float64) Option {
	return func(f *Fitter) {
		if v > 0 && v <= 1 {
			f.maxReliability = v
		}
	}
}

// WithShrinkage sets N0 in n/(n+N0). Negative values are ignored.
func WithShrinkage(n0 float64) Option {
	return func(f *Fitter) {
		if n0 >= 0 {
			f.shrinkage = n0
		}
	}
}

// WithMinSamples sets the minimum sample count. Values below 3 are ignored
// since three parameters are estimated.
func WithMinSamples(n int) Option {
	return func(f *Fitter) {
		if n >= 3 {
			f.minSamples = n
		}
	}
}

// Fitter fits cosinor models with fixed reliability parameters.
type Fitter struct {
	maxReliability float64
	shrinkage      float64
	minSamples     int
}

// NewFitter creates a Fitter with the default parameters.
func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		maxReliability: DefaultMaxReliability,
		shrinkage:      DefaultShrinkage,
		minSamples:     DefaultMinSamples,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// sums are the sufficient statistics of the fit.
type sums struct {
	n                               float64
	y, c, s, yy, cc, ss, cs, yc, ys float64
}

func (a *sums) add(hour, y float64) {
	c := math.Cos(circadian.Omega * hour)
	s := math.Sin(circadian.Omega * hour)
	a.n++
	a.y += y
	a.c += c
	a.s += s
	a.yy += y * y
	a.cc += c * c
	a.ss += s * s
	a.cs += c * s
	a.yc += y * c
	a.ys += y * s
}

// Fit fits points. Non-finite points are skipped.
func (f *Fitter) Fit(points []Point) Result {
	var acc sums
	for _, p := range points {
		if !finite(p.Hour) || !finite(p.Value) {
			continue
		}
		acc.add(p.Hour, p.Value)
	}
	n := int(acc.n)
	if n < f.minSamples {
		return Neutral(n)
	}

	// Centred normal equations for (a, b).
	syy := acc.yy - acc.y*acc.y/acc.n
	scc := acc.cc - acc.c*acc.c/acc.n
	sss := acc.ss - acc.s*acc.s/acc.n
	scs := acc.cs - acc.c*acc.s/acc.n
	syc := acc.yc - acc.y*acc.c/acc.n
	sys := acc.ys - acc.y*acc.s/acc.n

	det := scc*sss - scs*scs
	if math.Abs(det) < minDeterminant || syy <= minDeterminant {
		return Neutral(n)
	}
	a := (syc*sss - sys*scs) / det
	b := (sys*scc - syc*scs) / det

	r2 := (a*syc + b*sys) / syy
	r2 = math.Max(0, math.Min(1, r2))

	res := Result{
		Amplitude:   math.Hypot(a, b),
		Acrophase:   circadian.Wrap24(math.Atan2(b, a) / circadian.Omega),
		RSquared:    r2,
		Mesor:       (acc.y - a*acc.c - b*acc.s) / acc.n,
		N:           n,
		Reliability: math.Min(f.maxReliability, acc.n/(acc.n+f.shrinkage)*r2),
	}
	if !finite(res.Amplitude) || !finite(res.Mesor) {
		return Neutral(n)
	}
	return res
}

// FitDomains fits every domain in model.AllDomains order. Domains without
// sessions get a neutral result.
func (f *Fitter) FitDomains(sessions []model.CognitiveSession, loc *time.Location) map[model.Domain]Result {
	points := make(map[model.Domain][]Point, len(model.AllDomains()))
	for _, s := range sessions {
		v, ok := s.Score()
		if !ok {
			continue
		}
		points[s.Domain] = append(points[s.Domain], Point{Hour: s.Hour(loc), Value: v})
	}
	out := make(map[model.Domain]Result, len(model.AllDomains()))
	for _, d := range model.AllDomains() {
		out[d] = f.Fit(points[d])
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
