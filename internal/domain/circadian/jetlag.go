package circadian

import "math"

const (
	// DefaultJetlagK is the curvature of the jetlag penalty.
	DefaultJetlagK   = 0.03
	sleepNeedHours   = 8.0
	minConsistency   = 0.8
	consistencyRange = 1 - minConsistency
)

// Midsleep returns the midpoint of an 8h sleep ending at wake.
func Midsleep(wake float64) float64 {
	return Wrap24(wake - sleepNeedHours)
}

// SocialJetlag returns the circular offset in hours between the natural and
// the school-enforced midsleep.
func SocialJetlag(naturalWake, schoolWake float64) float64 {
	return Distance(Midsleep(naturalWake), Midsleep(schoolWake))
}

// JetlagPenalty returns exp(-k*delta^2) in (0,1]. A negative k is treated as 0.
func JetlagPenalty(delta, k float64) float64 {
	if k < 0 || math.IsNaN(k) {
		k = 0
	}
	return math.Exp(-k * delta * delta)
}

// ConsistencyFactor maps a sleep consistency in [0,1] to a multiplier in
// [0.8,1]. Without enough sleep entries, callers pass ok=false and get 1.
func ConsistencyFactor(consistency float64, ok bool) float64 {
	if !ok {
		return 1
	}
	return minConsistency + consistencyRange*clamp01(consistency)
}
