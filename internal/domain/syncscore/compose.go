package syncscore

import (
	"math"
	"time"

	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/lifestyle"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/quiz"
)

const (
	schoolShare = 0.7
	studyShare  = 0.3

	// logisticGain scales how strongly an in-window score advantage over the
	// user's own mean moves the observed alignment.
	logisticGain = 8.0

	maxScore = 100
)

// Components are everything the final score is composed from.
type Components struct {
	Predicted     Alignment
	Observed      Alignment
	Reliability   float64 // adaptation level in [0,1]
	JetlagPenalty float64 // multiplier in (0,1]
	Adjustments   lifestyle.Adjustments
}

// Composed is the outcome of Compose.
type Composed struct {
	Score  int
	School float64
	Study  float64
}

// Compose blends predicted and observed alignment by reliability, applies
// the jetlag multiplier and the bounded bonuses, and clamps to [0,100].
func Compose(c Components) Composed {
	school := clamp01(circadian.Blend(c.Predicted.School, c.Observed.School, c.Reliability))
	study := clamp01(circadian.Blend(c.Predicted.Study, c.Observed.Study, c.Reliability))

	raw := maxScore * clamp01(c.JetlagPenalty) * (schoolShare*school + studyShare*study)
	score := math.Round(raw + float64(c.Adjustments.Total()))
	if math.IsNaN(score) {
		score = 0
	}
	return Composed{
		Score:  int(math.Max(0, math.Min(maxScore, score))),
		School: school,
		Study:  study,
	}
}

// Observe scores each window from the sessions that fall inside it, relative
// to the user's overall mean. A window without sessions reports the
// predicted value.
func Observe(points []scoredHour, w quiz.Windows, predicted Alignment) Alignment {
	var all []float64
	var school, study []float64
	for _, p := range points {
		all = append(all, p.score)
		if w.School.Contains(p.hour) {
			school = append(school, p.score)
		}
		if w.Study.Contains(p.hour) {
			study = append(study, p.score)
		}
	}
	overall, ok := mean(all)
	if !ok {
		return predicted
	}
	out := predicted
	if m, ok := mean(school); ok {
		out.School = logistic(logisticGain * (m - overall))
	}
	if m, ok := mean(study); ok {
		out.Study = logistic(logisticGain * (m - overall))
	}
	return out
}

// scoredHour is a session reduced to its hour and clamped score.
type scoredHour struct {
	hour  float64
	score float64
}

func scoredHours(sessions []model.CognitiveSession, loc *time.Location) []scoredHour {
	out := make([]scoredHour, 0, len(sessions))
	for _, s := range sessions {
		v, ok := s.Score()
		if !ok {
			continue
		}
		out = append(out, scoredHour{hour: s.Hour(loc), score: v})
	}
	return out
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
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

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
