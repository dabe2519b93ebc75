// Package lifestyle turns raw lifestyle factors and sessions into per-day
// series and derives sleep metrics, correlations, score bonuses and trends
// from them.
package lifestyle

import (
	"math"
	"sort"
	"time"

	"github.com/okian/rhythm/internal/domain/model"
)

const dayKeyLayout = "2006-01-02"

// Day aggregates one calendar day of data in the request time zone.
type Day struct {
	Key  string
	Date time.Time

	SleepQuality float64 // mean of the day's sleep entries
	HasSleep     bool

	CaffeineMG   float64
	MealCount    float64
	HasNutrition bool
	// MealHour is the earliest reported meal hour of the day.
	MealHour    float64
	HasMealHour bool

	ActivityMinutes float64
	HasActivity     bool

	ChallengesDone  int
	ChallengesTotal int

	scores map[model.Domain][]float64
	sleeps []float64
}

// HasLifestyle reports whether the day carries any sleep, nutrition or
// activity factor.
func (d *Day) HasLifestyle() bool {
	return d.HasSleep || d.HasNutrition || d.HasActivity
}

// DomainMean returns the mean normalized score for domain on this day.
func (d *Day) DomainMean(domain model.Domain) (float64, bool) {
	return mean(d.scores[domain])
}

// MeanScore returns the mean normalized score across all domains.
func (d *Day) MeanScore() (float64, bool) {
	var all []float64
	for _, dom := range model.AllDomains() {
		all = append(all, d.scores[dom]...)
	}
	return mean(all)
}

// Days buckets sessions and factors by calendar day in loc and returns the
// days in chronological order.
func Days(sessions []model.CognitiveSession, factors []model.LifestyleFactor, loc *time.Location) []*Day {
	if loc == nil {
		loc = time.UTC
	}
	byKey := make(map[string]*Day)
	get := func(ts int64) *Day {
		t := time.UnixMilli(ts).In(loc)
		key := t.Format(dayKeyLayout)
		d, ok := byKey[key]
		if !ok {
			y, m, dd := t.Date()
			d = &Day{Key: key, Date: time.Date(y, m, dd, 0, 0, 0, 0, loc), scores: make(map[model.Domain][]float64)}
			byKey[key] = d
		}
		return d
	}

	for _, s := range sessions {
		v, ok := s.Score()
		if !ok {
			continue
		}
		d := get(s.Timestamp)
		d.scores[s.Domain] = append(d.scores[s.Domain], v)
	}

	for _, f := range factors {
		d := get(f.Timestamp)
		switch f.Kind {
		case model.FactorSleep:
			if f.Sleep != nil && finite(f.Sleep.Quality) {
				d.sleeps = append(d.sleeps, clamp(f.Sleep.Quality, 0, 100))
				d.HasSleep = true
			}
		case model.FactorNutrition:
			if f.Nutrition == nil {
				continue
			}
			d.HasNutrition = true
			d.CaffeineMG += nonNegative(f.Nutrition.CaffeineMG)
			d.MealCount += nonNegative(f.Nutrition.MealCount)
			hour := model.HourOf(time.UnixMilli(f.Timestamp).In(loc))
			if f.Nutrition.FirstMealHour != nil && finite(*f.Nutrition.FirstMealHour) {
				hour = math.Mod(math.Abs(*f.Nutrition.FirstMealHour), 24)
			}
			if !d.HasMealHour || hour < d.MealHour {
				d.MealHour = hour
				d.HasMealHour = true
			}
		case model.FactorActivity:
			if f.Activity == nil {
				continue
			}
			d.HasActivity = true
			d.ActivityMinutes += nonNegative(f.Activity.DurationMinutes)
		case model.FactorChallenge:
			if f.Challenge == nil {
				continue
			}
			d.ChallengesTotal++
			if f.Challenge.Completed {
				d.ChallengesDone++
			}
		}
	}

	days := make([]*Day, 0, len(byKey))
	for _, d := range byKey {
		if m, ok := mean(d.sleeps); ok {
			d.SleepQuality = m
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Key < days[j].Key })
	return days
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs)), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
