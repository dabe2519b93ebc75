package lifestyle

import (
	"math"

	"github.com/okian/rhythm/internal/domain/model"
)

const (
	sleepQualityPivot   = 70.0
	sleepQualitySlope   = 0.2
	sleepQualityBound   = 6.0
	nutritionScale      = 4.0
	exerciseScale       = 5.0
	challengeScale      = 5.0
	consistencyScale    = 6.0
	consistencyBound    = 3.0
	consistencyMidpoint = 0.5
)

// Adjustments are the additive, individually bounded score bonuses.
type Adjustments struct {
	SleepQuality      int `json:"sleepQuality"`      // [-6,6]
	NutritionTiming   int `json:"nutritionTiming"`   // [0,4]
	Exercise          int `json:"exercise"`          // [-5,5]
	ChallengeProgress int `json:"challengeProgress"` // [0,5]
	SleepConsistency  int `json:"sleepConsistency"`  // [-3,3]
}

// Total returns the sum of all bonuses.
func (a Adjustments) Total() int {
	return a.SleepQuality + a.NutritionTiming + a.Exercise + a.ChallengeProgress + a.SleepConsistency
}

// Signals are the inputs the bonuses are derived from.
type Signals struct {
	Sleep         SleepMetrics
	NutritionCorr Correlation
	ExerciseCorr  Correlation
	ChallengeRate float64
	HasChallenges bool
}

// Collect derives the bonus signals from the day series and challenge data.
// Challenge factors are used when no ChallengeData is supplied.
func Collect(days []*Day, factors []model.LifestyleFactor, challenges *model.ChallengeData) Signals {
	s := Signals{Sleep: Sleep(factors)}
	s.NutritionCorr = Correlate(Series(days, MealTiming))
	s.ExerciseCorr = Correlate(Series(days, ActivityMinutes))

	if rate, ok := challenges.CompletionRate(); ok {
		s.ChallengeRate, s.HasChallenges = rate, true
		return s
	}
	var done, total int
	for _, d := range days {
		done += d.ChallengesDone
		total += d.ChallengesTotal
	}
	if total > 0 {
		s.ChallengeRate, s.HasChallenges = float64(done)/float64(total), true
	}
	return s
}

// Adjust turns signals into bonuses. Missing evidence contributes zero.
func Adjust(s Signals) Adjustments {
	var a Adjustments
	if s.Sleep.HasData() {
		a.SleepQuality = bounded((s.Sleep.AverageQuality-sleepQualityPivot)*sleepQualitySlope, sleepQualityBound)
	}
	if s.NutritionCorr.Valid() {
		a.NutritionTiming = int(math.Round(clamp(nutritionScale*math.Abs(s.NutritionCorr.R), 0, nutritionScale)))
	}
	if s.ExerciseCorr.Valid() {
		a.Exercise = bounded(exerciseScale*s.ExerciseCorr.R, exerciseScale)
	}
	if s.HasChallenges {
		a.ChallengeProgress = int(math.Round(clamp(challengeScale*s.ChallengeRate, 0, challengeScale)))
	}
	if s.Sleep.ConsistencyKnown() {
		a.SleepConsistency = bounded((s.Sleep.ConsistencyRatio()-consistencyMidpoint)*consistencyScale, consistencyBound)
	}
	return a
}

func bounded(v, bound float64) int {
	if !finite(v) {
		return 0
	}
	return int(math.Round(clamp(v, -bound, bound)))
}
