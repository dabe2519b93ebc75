// Package chronotype buckets a circadian phase into one of four archetypes.
package chronotype

import (
	"math"

	"github.com/okian/rhythm/internal/domain/circadian"
)

// Type is a chronotype archetype.
type Type string

const (
	Lion    Type = "Lion"
	Bear    Type = "Bear"
	Wolf    Type = "Wolf"
	Dolphin Type = "Dolphin"
)

// archetype holds the canonical peak and the severity scale per hour of
// drift away from it.
type archetype struct {
	upper  float64 // exclusive upper phase bound
	center float64
	scale  float64
}

var archetypes = []struct {
	t Type
	a archetype
}{
	{Lion, archetype{upper: 10, center: 7, scale: 15}},
	{Bear, archetype{upper: 14, center: 12, scale: 20}},
	{Wolf, archetype{upper: 18, center: 16, scale: 18}},
	{Dolphin, archetype{upper: 24, center: 21, scale: 12}},
}

// Result is the classification of a phase.
type Result struct {
	Chronotype Type `json:"chronotype"`
	OutOfSync  int  `json:"outOfSync"` // 0-100
}

// Classify returns the archetype for phase and how far the phase sits from
// the archetype's canonical center.
func Classify(phase float64) Result {
	phase = circadian.Wrap24(phase)
	for _, at := range archetypes {
		if phase < at.a.upper {
			return Result{Chronotype: at.t, OutOfSync: severity(phase, at.a)}
		}
	}
	last := archetypes[len(archetypes)-1]
	return Result{Chronotype: last.t, OutOfSync: severity(phase, last.a)}
}

func severity(phase float64, a archetype) int {
	v := circadian.Distance(phase, a.center) * a.scale
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
