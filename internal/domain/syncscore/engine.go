// Package syncscore composes the circadian, questionnaire and lifestyle
// estimates into a single sync result for one user snapshot.
package syncscore

import (
	"cmp"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/rhythm/internal/domain/chronotype"
	"github.com/okian/rhythm/internal/domain/circadian"
	"github.com/okian/rhythm/internal/domain/cosinor"
	"github.com/okian/rhythm/internal/domain/lifestyle"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/quiz"
	"github.com/okian/rhythm/internal/domain/ridge"
)

const (
	keyFactorMinWeight   = 0.3
	jetlagFactorBelow    = 0.8
	consistencyLowBelow  = 50.0
	KeyFactorJetlag      = "social_jetlag"
	KeyFactorConsistency = "sleep_consistency"
)

// Analyzer computes a SyncResult from an input snapshot.
type Analyzer interface {
	Analyze(in model.Input) (SyncResult, error)
}

// Engine is the stateless analysis engine. It is safe for concurrent use.
type Engine struct {
	windowDays     int
	loc            *time.Location
	maxReliability float64
	shrinkage      float64
	ridgeLambda    float64
	jetlagK        float64
	bumpWeight     float64

	fitter *cosinor.Fitter
	ridge  *ridge.Engine
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		windowDays:     DefaultWindowDays,
		loc:            time.UTC,
		maxReliability: cosinor.DefaultMaxReliability,
		shrinkage:      cosinor.DefaultShrinkage,
		ridgeLambda:    ridge.DefaultLambda,
		jetlagK:        circadian.DefaultJetlagK,
		bumpWeight:     DefaultBumpWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fitter = cosinor.NewFitter(cosinor.WithMaxReliability(e.maxReliability), cosinor.WithShrinkage(e.shrinkage))
	e.ridge = ridge.NewEngine(ridge.WithLambda(e.ridgeLambda))
	return e
}

// Analyze validates the input and runs the full analysis over the trailing
// window. Only malformed input returns an error; sparse data degrades to a
// questionnaire-only estimate.
func (e *Engine) Analyze(in model.Input) (SyncResult, error) {
	if err := in.Validate(); err != nil {
		return SyncResult{}, err
	}
	loc, err := in.Location(e.loc)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	w := Canonical(in.Window(e.windowDays))

	theory := quiz.Phase(in.Quiz, in.Feedback)
	windows := quiz.DailyWindows(in.Quiz)

	fits := e.fitter.FitDomains(w.Sessions, loc)
	reliability, domainReliability := adaptation(fits)
	phase := learningPhase(theory, fits, reliability)

	readiness := circadian.NewReadiness(theory,
		circadian.WithBumpWeight(e.bumpWeight),
		circadian.WithWake(windows.SchoolWake),
	)
	predicted := Alignment{
		School: readiness.WindowMean(windows.School.Start, windows.School.Duration),
		Study:  readiness.WindowMean(windows.Study.Start, windows.Study.Duration),
	}
	observed := Observe(scoredHours(w.Sessions, loc), windows, predicted)

	days := lifestyle.Days(w.Sessions, w.Factors, loc)
	signals := lifestyle.Collect(days, w.Factors, in.Challenges)
	adjustments := lifestyle.Adjust(signals)

	jetlag := circadian.JetlagPenalty(circadian.SocialJetlag(windows.NaturalWake, windows.SchoolWake), e.jetlagK)
	penalty := jetlag * circadian.ConsistencyFactor(signals.Sleep.ConsistencyRatio(), signals.Sleep.ConsistencyKnown())

	composed := Compose(Components{
		Predicted:     predicted,
		Observed:      observed,
		Reliability:   reliability,
		JetlagPenalty: penalty,
		Adjustments:   adjustments,
	})

	importance := e.ridge.Estimate(days)
	label, slope := lifestyle.WeeklyTrend(days)

	return SyncResult{
		SyncScore:           composed.Score,
		SchoolAlignment:     percent(composed.School),
		StudyAlignment:      percent(composed.Study),
		LearningPhase:       phase,
		SocialJetlagPenalty: percent(penalty),
		AdaptiveComponents: AdaptiveComponents{
			ObservedAlignment:  Alignment{School: round(observed.School, 3), Study: round(observed.Study, 3)},
			PredictedAlignment: Alignment{School: round(predicted.School, 3), Study: round(predicted.Study, 3)},
			AdaptationLevel:    round(reliability, 3),
			DomainReliability:  domainReliability,
		},
		SleepMetrics:       signals.Sleep,
		LearningTimeline:   Timeline(readiness, fits, reliability),
		Chronotype:         chronotype.Classify(phase),
		DynamicAdjustments: adjustments,
		TrendAnalysis: TrendAnalysis{
			WeeklyTrend:    label,
			KeyFactors:     keyFactors(importance, jetlag, signals.Sleep),
			ProjectedScore: projected(composed.Score, label, slope),
		},
		CategoryWeights: importance.Categories,
	}, nil
}

// adaptation returns the mean reliability over all domains and the
// per-domain reliabilities.
func adaptation(fits map[model.Domain]cosinor.Result) (float64, map[model.Domain]float64) {
	domains := model.AllDomains()
	per := make(map[model.Domain]float64, len(domains))
	var sum float64
	for _, d := range domains {
		r := fits[d].Reliability
		per[d] = round(r, 3)
		sum += r
	}
	return sum / float64(len(domains)), per
}

// learningPhase blends the questionnaire phase toward the
// reliability-weighted circular mean of the fitted acrophases.
func learningPhase(theory float64, fits map[model.Domain]cosinor.Result, reliability float64) float64 {
	var hours, weights []float64
	for _, d := range model.AllDomains() {
		f := fits[d]
		if f.Reliability > 0 {
			hours = append(hours, f.Acrophase)
			weights = append(weights, f.Reliability)
		}
	}
	phase := theory
	if empirical, ok := circadian.CircularMean(hours, weights); ok {
		phase = circadian.BlendPhase(theory, empirical, reliability)
	}
	return circadian.Wrap24(round(phase, 1))
}

func keyFactors(importance ridge.Result, jetlag float64, sleep lifestyle.SleepMetrics) []string {
	factors := []string{}
	if len(importance.Domains) > 0 {
		cats := ridge.Categories()
		sort.SliceStable(cats, func(i, j int) bool {
			return importance.Categories[cats[i]] > importance.Categories[cats[j]]
		})
		for _, c := range cats {
			if importance.Categories[c] >= keyFactorMinWeight {
				factors = append(factors, c)
			}
		}
	}
	if jetlag < jetlagFactorBelow {
		factors = append(factors, KeyFactorJetlag)
	}
	if sleep.ConsistencyKnown() && sleep.Consistency < consistencyLowBelow {
		factors = append(factors, KeyFactorConsistency)
	}
	return factors
}

func projected(score int, label string, slopePerWeek float64) int {
	if label == lifestyle.TrendInsufficient {
		return score
	}
	p := float64(score) + math.Round(maxScore*slopePerWeek)
	return int(math.Max(0, math.Min(maxScore, p)))
}

func percent(v float64) int {
	return int(math.Round(maxScore * clamp01(v)))
}

// Canonical sorts samples so floating point sums do not depend on the order
// the caller supplied them in.
func Canonical(in model.Input) model.Input {
	sessions := append([]model.CognitiveSession(nil), in.Sessions...)
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c < 0
		}
		if c := cmp.Compare(a.Domain, b.Domain); c != 0 {
			return c < 0
		}
		if c := cmp.Compare(a.NormalizedScore, b.NormalizedScore); c != 0 {
			return c < 0
		}
		if c := cmp.Compare(a.HourOfDay, b.HourOfDay); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	factors := append([]model.LifestyleFactor(nil), in.Factors...)
	sort.SliceStable(factors, func(i, j int) bool {
		a, b := factors[i], factors[j]
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c < 0
		}
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c < 0
		}
		return cmp.Less(factorValue(a), factorValue(b))
	})
	in.Sessions = sessions
	in.Factors = factors
	return in
}

// factorValue is a tiebreak key for factors sharing timestamp and kind.
func factorValue(f model.LifestyleFactor) float64 {
	switch {
	case f.Sleep != nil:
		return f.Sleep.Quality*1e6 + f.Sleep.DurationMinutes
	case f.Nutrition != nil:
		return f.Nutrition.CaffeineMG*1e3 + f.Nutrition.MealCount
	case f.Activity != nil:
		return f.Activity.DurationMinutes
	case f.Challenge != nil && f.Challenge.Completed:
		return 1
	}
	return 0
}
