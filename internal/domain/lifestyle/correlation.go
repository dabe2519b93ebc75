package lifestyle

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinCorrelationSamples is the smallest paired sample a correlation is
// reported for.
const MinCorrelationSamples = 7

// Correlation is a Pearson coefficient with its two-sided p-value.
type Correlation struct {
	R      float64
	PValue float64
	N      int
}

// Valid reports whether the coefficient was computed from enough samples.
func (c Correlation) Valid() bool { return c.N >= MinCorrelationSamples }

// Correlate returns the Pearson correlation of x and y clamped to [-1,1].
// Fewer than MinCorrelationSamples pairs, mismatched lengths or zero variance
// give R = 0 and PValue = 1.
func Correlate(x, y []float64) Correlation {
	n := len(x)
	if n != len(y) || n < MinCorrelationSamples {
		return Correlation{PValue: 1, N: min(n, len(y))}
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return Correlation{PValue: 1, N: n}
	}
	r := stat.Correlation(x, y, nil)
	if !finite(r) {
		return Correlation{PValue: 1, N: n}
	}
	r = clamp(r, -1, 1)
	return Correlation{R: r, PValue: pValue(r, n), N: n}
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clamp(2*(1-dist.CDF(math.Abs(t))), 0, 1)
}

// Series returns the paired (x, day mean score) series for days where pick
// yields a value and the day has at least one scored session.
func Series(days []*Day, pick func(*Day) (float64, bool)) (x, y []float64) {
	for _, d := range days {
		v, ok := pick(d)
		if !ok {
			continue
		}
		score, ok := d.MeanScore()
		if !ok {
			continue
		}
		x = append(x, v)
		y = append(y, score)
	}
	return x, y
}

// MealTiming picks the earliest meal hour of a day.
func MealTiming(d *Day) (float64, bool) { return d.MealHour, d.HasMealHour }

// ActivityMinutes picks activity minutes on days carrying any lifestyle log.
// A logged day without activity counts as zero minutes.
func ActivityMinutes(d *Day) (float64, bool) { return d.ActivityMinutes, d.HasLifestyle() }
