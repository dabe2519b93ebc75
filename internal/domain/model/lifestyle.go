package model

// FactorKind tags a LifestyleFactor.
type FactorKind string

const (
	FactorSleep     FactorKind = "sleep"
	FactorNutrition FactorKind = "nutrition"
	FactorActivity  FactorKind = "activity"
	FactorChallenge FactorKind = "challenge"
)

// LifestyleFactor is a self-reported event. Exactly one payload matching
// Kind must be set.
type LifestyleFactor struct {
	Kind      FactorKind      `json:"kind"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
	Sleep     *SleepValue     `json:"sleep,omitempty"`
	Nutrition *NutritionValue `json:"nutrition,omitempty"`
	Activity  *ActivityValue  `json:"activity,omitempty"`
	Challenge *ChallengeValue `json:"challenge,omitempty"`
}

// SleepValue describes one night. Hours are hours-of-day in [0,24) and are
// optional; only nights reporting both count toward sleep consistency.
type SleepValue struct {
	Quality         float64  `json:"quality"` // 0-100
	DurationMinutes float64  `json:"durationMinutes"`
	BedHour         *float64 `json:"bedHour,omitempty"`
	WakeHour        *float64 `json:"wakeHour,omitempty"`
	WakingEvents    int      `json:"wakingEvents"`
}

// NutritionValue describes the intake reported at one point in time.
type NutritionValue struct {
	CaffeineMG    float64  `json:"caffeineMg"`
	MealCount     float64  `json:"mealCount"`
	FluidsML      float64  `json:"fluidsMl"`
	FirstMealHour *float64 `json:"firstMealHour,omitempty"`
}

// Intensity of a physical activity.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// ActivityValue describes one exercise block.
type ActivityValue struct {
	DurationMinutes float64   `json:"durationMinutes"`
	Intensity       Intensity `json:"intensity,omitempty"`
}

// ChallengeValue records a daily challenge outcome.
type ChallengeValue struct {
	ChallengeID string `json:"challengeId"`
	Completed   bool   `json:"completed"`
}

// ChallengeData carries per-challenge daily completion flags.
type ChallengeData struct {
	Days map[string][]bool `json:"days"`
}

// CompletionRate returns completed/total over all challenge days, and false
// when there is nothing to rate.
func (c *ChallengeData) CompletionRate() (float64, bool) {
	if c == nil {
		return 0, false
	}
	var done, total int
	for _, days := range c.Days {
		for _, ok := range days {
			total++
			if ok {
				done++
			}
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(done) / float64(total), true
}
