package ridge

import (
	"math"

	"github.com/okian/rhythm/internal/domain/lifestyle"
	"github.com/okian/rhythm/internal/domain/model"
)

// Feature indexes of the design matrix.
const (
	FeatureSleep = iota
	FeatureCaffeine
	FeatureActivity
	FeatureMeals
	numFeatures
)

// Categories of recommendation weights.
const (
	CategorySleep     = "sleep"
	CategoryNutrition = "nutrition"
	CategoryActivity  = "activity"
	CategoryTiming    = "timing"
)

// Feature scaling caps.
const (
	caffeineCapMG   = 300.0
	activityCapMin  = 60.0
	mealsCap        = 4.0
	sleepQualityMax = 100.0

	DefaultLambda = 0.5
)

// CategoryWeights are non-negative weights over recommendation categories
// summing to one.
type CategoryWeights map[string]float64

// Categories returns the category names in a fixed order.
func Categories() []string {
	return []string{CategorySleep, CategoryNutrition, CategoryActivity, CategoryTiming}
}

// Uniform returns equal weights over all categories.
func Uniform() CategoryWeights {
	cs := Categories()
	w := make(CategoryWeights, len(cs))
	for _, c := range cs {
		w[c] = 1 / float64(len(cs))
	}
	return w
}

// Result is the outcome of an importance estimation.
type Result struct {
	// Features are the per-domain normalized weights averaged and then
	// rescaled, so Σ|w| = 1, or all zero when nothing contributed or the
	// domains cancel out.
	Features [numFeatures]float64
	// Domains lists the domains that contributed.
	Domains    []model.Domain
	Categories CategoryWeights
}

// Option configures an Engine.
type Option func(*Engine)

// WithLambda sets the ridge penalty. Negative values are ignored.
func WithLambda(lambda float64) Option {
	return func(e *Engine) {
		if lambda >= 0 && !math.IsNaN(lambda) {
			e.lambda = lambda
		}
	}
}

// Engine estimates feature importance from per-day data.
type Engine struct {
	lambda float64
}

// NewEngine creates an Engine with the default penalty.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{lambda: DefaultLambda}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate runs one ridge regression per domain over days carrying lifestyle
// data, averages the normalized weight vectors and rescales the average.
func (e *Engine) Estimate(days []*lifestyle.Day) Result {
	rows, keep := features(days)

	res := Result{Categories: Uniform()}
	var sum [numFeatures]float64
	for _, d := range model.AllDomains() {
		var xs [][numFeatures]float64
		var ys []float64
		for i, day := range keep {
			y, ok := day.DomainMean(d)
			if !ok {
				continue
			}
			xs = append(xs, rows[i])
			ys = append(ys, y)
		}
		if len(ys) == 0 {
			continue
		}
		w, ok := normalize(e.fit(xs, ys))
		if !ok {
			continue
		}
		for i := range sum {
			sum[i] += w[i]
		}
		res.Domains = append(res.Domains, d)
	}

	if len(res.Domains) == 0 {
		return res
	}
	var avg [numFeatures]float64
	for i := range sum {
		avg[i] = sum[i] / float64(len(res.Domains))
	}
	// Domains pulling in opposite directions shrink the average; rescale it.
	// A full cancellation leaves every feature at zero.
	if w, ok := normalize(avg[:]); ok {
		res.Features = w
	}
	res.Categories = categorize(res.Features)
	return res
}

func (e *Engine) fit(xs [][numFeatures]float64, ys []float64) []float64 {
	a := make([][]float64, numFeatures)
	b := make([]float64, numFeatures)
	for i := range a {
		a[i] = make([]float64, numFeatures)
		a[i][i] = e.lambda
	}
	for k, x := range xs {
		for i := 0; i < numFeatures; i++ {
			b[i] += x[i] * ys[k]
			for j := 0; j < numFeatures; j++ {
				a[i][j] += x[i] * x[j]
			}
		}
	}
	return Solve(a, b)
}

// features builds the scaled design rows for days with lifestyle data.
// A feature missing on a day takes its mean over the days that report it.
func features(days []*lifestyle.Day) ([][numFeatures]float64, []*lifestyle.Day) {
	var rows [][numFeatures]float64
	var present [][numFeatures]bool
	var keep []*lifestyle.Day
	var sums [numFeatures]float64
	var counts [numFeatures]int

	for _, d := range days {
		if !d.HasLifestyle() {
			continue
		}
		var row [numFeatures]float64
		var has [numFeatures]bool
		if d.HasSleep {
			row[FeatureSleep], has[FeatureSleep] = clamp01(d.SleepQuality/sleepQualityMax), true
		}
		if d.HasNutrition {
			row[FeatureCaffeine], has[FeatureCaffeine] = math.Min(d.CaffeineMG, caffeineCapMG)/caffeineCapMG, true
			row[FeatureMeals], has[FeatureMeals] = math.Min(d.MealCount, mealsCap)/mealsCap, true
		}
		if d.HasActivity {
			row[FeatureActivity], has[FeatureActivity] = math.Min(d.ActivityMinutes, activityCapMin)/activityCapMin, true
		}
		for i := range row {
			if has[i] {
				sums[i] += row[i]
				counts[i]++
			}
		}
		rows = append(rows, row)
		present = append(present, has)
		keep = append(keep, d)
	}

	for r := range rows {
		for i := 0; i < numFeatures; i++ {
			if !present[r][i] && counts[i] > 0 {
				rows[r][i] = sums[i] / float64(counts[i])
			}
		}
	}
	return rows, keep
}

// normalize scales w so that Σ|w| = 1.
func normalize(w []float64) ([numFeatures]float64, bool) {
	var out [numFeatures]float64
	var total float64
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return out, false
		}
		total += math.Abs(v)
	}
	if total < PivotEpsilon {
		return out, false
	}
	for i, v := range w {
		out[i] = v / total
	}
	return out, true
}

// categorize maps feature weights to categories. Timing has no direct
// feature yet, so it is proxied by the mean of sleep and nutrition.
func categorize(f [numFeatures]float64) CategoryWeights {
	sleep := f[FeatureSleep]
	nutrition := f[FeatureCaffeine] + f[FeatureMeals]
	raw := map[string]float64{
		CategorySleep:     sleep,
		CategoryNutrition: nutrition,
		CategoryActivity:  f[FeatureActivity],
		CategoryTiming:    (sleep + nutrition) / 2,
	}
	var total float64
	for _, c := range Categories() {
		total += math.Abs(raw[c])
	}
	if total < PivotEpsilon {
		return Uniform()
	}
	w := make(CategoryWeights, len(raw))
	for _, c := range Categories() {
		w[c] = math.Abs(raw[c]) / total
	}
	return w
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
