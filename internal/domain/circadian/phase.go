// Package circadian holds the 24-hour phase arithmetic shared by the engine:
// wrapping, circular distance and means, the generic theory/data blend, the
// readiness curve and the social jetlag penalty.
package circadian

import "math"

const (
	// DayHours is the period of the modelled rhythm.
	DayHours = 24.0
	// Omega is the angular frequency of a 24h rhythm in radians per hour.
	Omega = 2 * math.Pi / DayHours
)

// Wrap24 maps any hour value into [0,24).
func Wrap24(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, DayHours)
	if h < 0 {
		h += DayHours
	}
	if h >= DayHours {
		h = 0
	}
	return h
}

// Distance returns the shorter circular distance between two hours, in [0,12].
func Distance(a, b float64) float64 {
	d := math.Abs(Wrap24(a) - Wrap24(b))
	return math.Min(d, DayHours-d)
}

// signedDelta returns the shortest signed offset from a to b in (-12,12].
func signedDelta(a, b float64) float64 {
	d := Wrap24(b) - Wrap24(a)
	switch {
	case d > DayHours/2:
		d -= DayHours
	case d <= -DayHours/2:
		d += DayHours
	}
	return d
}

// Blend mixes a theoretical and an empirical value by weight in [0,1]:
// (1-w)*theoretical + w*empirical. It is the one mixing rule used for phase,
// window alignment and timeline samples.
func Blend(theoretical, empirical, weight float64) float64 {
	w := clamp01(weight)
	return (1-w)*theoretical + w*empirical
}

// BlendPhase is Blend along the shorter arc of the 24h circle.
func BlendPhase(theoretical, empirical, weight float64) float64 {
	return Wrap24(theoretical + clamp01(weight)*signedDelta(theoretical, empirical))
}

// CircularMean returns the weighted circular mean of hours. ok is false when
// the weights are all zero or the vectors cancel out.
func CircularMean(hours, weights []float64) (mean float64, ok bool) {
	var sx, sy, sw float64
	for i, h := range hours {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w <= 0 || math.IsNaN(w) {
			continue
		}
		sx += w * math.Cos(Omega*h)
		sy += w * math.Sin(Omega*h)
		sw += w
	}
	if sw == 0 || math.Hypot(sx, sy)/sw < 1e-9 {
		return 0, false
	}
	return Wrap24(math.Atan2(sy, sx) / Omega), true
}

// CircularSD returns the circular standard deviation of hours, in hours.
func CircularSD(hours []float64) float64 {
	if len(hours) < 2 {
		return 0
	}
	var sx, sy float64
	for _, h := range hours {
		sx += math.Cos(Omega * h)
		sy += math.Sin(Omega * h)
	}
	r := math.Hypot(sx, sy) / float64(len(hours))
	if r >= 1 {
		return 0
	}
	if r <= 0 {
		return DayHours / 2
	}
	return math.Sqrt(-2*math.Log(r)) / Omega
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
