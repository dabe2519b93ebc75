// Package quiz maps questionnaire answers to a theoretical circadian phase
// and to the school and study windows the alignment scores are computed on.
package quiz

import (
	"math"

	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/model"
)

const (
	focusWeight = 0.6
	testWeight  = 0.4

	insightThreshold = 0.4
	insightWeight    = 0.3
)

// Window is a span of the day in hours.
type Window struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Windows are the daily windows derived from the answers.
type Windows struct {
	School Window `json:"school"`
	Study  Window `json:"study"`
	// SchoolWake is the wake time enforced by school start.
	SchoolWake float64 `json:"schoolWake"`
	// NaturalWake is the self-reported natural wake time.
	NaturalWake float64 `json:"naturalWake"`
}

// Phase maps answers to a phase in [0,24). It never fails: unknown answers
// use default anchors.
func Phase(q model.QuizResponses, insight *model.TimingInsight) float64 {
	w := lookupOr(wakeAnchors, q.NaturalWake, defaultWake)
	df := lookupOr(timeOfDayOffsets, q.FocusTime, defaultOffset)

	dt, ok := lookup(timeOfDayOffsets, q.TestTime)
	if !ok {
		dt = lookupOr(homeworkOffsets, q.HomeworkTime, defaultOffset)
	}

	phi := w + focusWeight*df + testWeight*dt
	phi += lookupOr(grogginessNudges, q.MorningGrogginess, 0)
	phi += lookupOr(weekendNudges, q.WeekendBedtime, 0)
	phi = circadian.Wrap24(phi)

	if insight != nil && math.Abs(insight.Correlation) > insightThreshold {
		phi = circadian.BlendPhase(phi, insight.OptimalHour, insightWeight)
	}
	return phi
}

// DailyWindows returns the school and study windows for the answers.
func DailyWindows(q model.QuizResponses) Windows {
	start := lookupOr(schoolStarts, q.SchoolStart, defaultSchoolStart)
	return Windows{
		School:      Window{Start: start, Duration: schoolWindowHours},
		Study:       Window{Start: lookupOr(homeworkStarts, q.HomeworkTime, defaultHomeworkStart), Duration: studyWindowHours},
		SchoolWake:  circadian.Wrap24(start - schoolPrepHours),
		NaturalWake: lookupOr(wakeAnchors, q.NaturalWake, defaultWake),
	}
}

// Contains reports whether hour falls inside the window, with wraparound.
func (w Window) Contains(hour float64) bool {
	return circadian.Wrap24(hour-w.Start) < w.Duration
}
