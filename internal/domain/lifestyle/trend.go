package lifestyle

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Trend labels.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

const (
	minTrendDays   = 7
	trendThreshold = 0.03 // normalized score per week
	hoursPerDay    = 24.0
)

// WeeklyTrend fits a least-squares line through the daily mean scores and
// returns its label and slope per week.
func WeeklyTrend(days []*Day) (label string, slopePerWeek float64) {
	var x, y []float64
	if len(days) == 0 {
		return TrendInsufficient, 0
	}
	origin := days[0].Date
	for _, d := range days {
		m, ok := d.MeanScore()
		if !ok {
			continue
		}
		x = append(x, d.Date.Sub(origin).Hours()/hoursPerDay)
		y = append(y, m)
	}
	if len(y) < minTrendDays {
		return TrendInsufficient, 0
	}
	if v, _ := stats.Variance(x); v == 0 {
		return TrendInsufficient, 0
	}

	_, beta := stat.LinearRegression(x, y, nil, false)
	if !finite(beta) {
		return TrendStable, 0
	}
	slopePerWeek = beta * 7
	switch {
	case slopePerWeek > trendThreshold:
		label = TrendImproving
	case slopePerWeek < -trendThreshold:
		label = TrendDeclining
	default:
		label = TrendStable
	}
	return label, math.Round(slopePerWeek*1e4) / 1e4
}
