package simulate

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rhythm/internal/domain/model"
)

// Profile is the kind of day a synthetic user has.
type Profile string

const (
	ProfileLark   Profile = "lark"
	ProfileOwl    Profile = "owl"
	ProfileSteady Profile = "steady"
)

// Profiles lists every profile in rotation order.
func Profiles() []Profile {
	return []Profile{ProfileLark, ProfileOwl, ProfileSteady}
}

type profileShape struct {
	quiz      model.QuizResponses
	peak      float64 // hour of best performance
	firstPlay float64
	lastPlay  float64
	bedHour   float64
	wakeHour  float64
}

var shapes = map[Profile]profileShape{
	ProfileLark: {
		quiz: model.QuizResponses{
			NaturalWake: "Before 8 AM", FocusTime: "Morning", TestTime: "Morning",
			SchoolStart: "8:00-8:30 AM", HomeworkTime: "Right after school",
			MorningGrogginess: "Alert quickly", WeekendBedtime: "Same time",
		},
		peak: 9, firstPlay: 6, lastPlay: 20, bedHour: 21.5, wakeHour: 6,
	},
	ProfileOwl: {
		quiz: model.QuizResponses{
			NaturalWake: "8-10 AM", FocusTime: "Evening", TestTime: "Late at night",
			SchoolStart: "Before 7:30 AM", HomeworkTime: "Late at night",
			WeekendBedtime: "Much later",
		},
		peak: 20, firstPlay: 7, lastPlay: 23.5, bedHour: 0.5, wakeHour: 6.5,
	},
	ProfileSteady: {
		quiz: model.QuizResponses{
			NaturalWake: "8-10 AM", FocusTime: "Afternoon", HomeworkTime: "Early evening",
		},
		peak: 14, firstPlay: 8, lastPlay: 22, bedHour: 23, wakeHour: 7,
	},
}

const (
	sessionsPerDay = 6
	baselineScore  = 0.35
	peakGain       = 0.55
	peakWidthHours = 2.5
	scoreNoise     = 0.05
)

// Generator builds synthetic inputs. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded with seed, so runs are repeatable.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Input builds days of history ending at end for a user of profile p.
func (g *Generator) Input(p Profile, days int, end time.Time) model.Input {
	shape, ok := shapes[p]
	if !ok {
		shape = shapes[ProfileSteady]
	}
	end = end.UTC()
	first := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days+1)
	domains := model.AllDomains()

	in := model.Input{
		Quiz:     shape.quiz,
		TimeZone: "UTC",
		Now:      end.UnixMilli(),
	}
	challenges := &model.ChallengeData{Days: map[string][]bool{"focus-sprint": nil}}

	for d := 0; d < days; d++ {
		day := first.AddDate(0, 0, d)
		for i := 0; i < sessionsPerDay; i++ {
			hour := shape.firstPlay + g.rng.Float64()*(shape.lastPlay-shape.firstPlay)
			at := day.Add(time.Duration(hour * float64(time.Hour)))
			if at.After(end) {
				continue
			}
			in.Sessions = append(in.Sessions, model.CognitiveSession{
				ID:              uuid.NewString(),
				Timestamp:       at.UnixMilli(),
				Domain:          domains[g.rng.Intn(len(domains))],
				NormalizedScore: g.score(hour, shape.peak),
				HourOfDay:       hour,
			})
		}

		wake := shape.wakeHour + g.rng.NormFloat64()*0.3
		bed := math.Mod(shape.bedHour+g.rng.NormFloat64()*0.3+24, 24)
		meal := wake + 0.5 + g.rng.Float64()
		in.Factors = append(in.Factors,
			model.LifestyleFactor{
				Kind:      model.FactorSleep,
				Timestamp: day.Add(time.Duration(wake * float64(time.Hour))).UnixMilli(),
				Sleep: &model.SleepValue{
					Quality:         55 + g.rng.Float64()*40,
					DurationMinutes: 360 + g.rng.Float64()*150,
					BedHour:         &bed,
					WakeHour:        &wake,
					WakingEvents:    g.rng.Intn(3),
				},
			},
			model.LifestyleFactor{
				Kind:      model.FactorNutrition,
				Timestamp: day.Add(time.Duration(meal * float64(time.Hour))).UnixMilli(),
				Nutrition: &model.NutritionValue{
					CaffeineMG:    g.rng.Float64() * 120,
					MealCount:     float64(2 + g.rng.Intn(3)),
					FluidsML:      800 + g.rng.Float64()*1200,
					FirstMealHour: &meal,
				},
			},
			model.LifestyleFactor{
				Kind:      model.FactorActivity,
				Timestamp: day.Add(17 * time.Hour).UnixMilli(),
				Activity: &model.ActivityValue{
					DurationMinutes: g.rng.Float64() * 90,
					Intensity:       []model.Intensity{model.IntensityLow, model.IntensityModerate, model.IntensityHigh}[g.rng.Intn(3)],
				},
			},
		)
		challenges.Days["focus-sprint"] = append(challenges.Days["focus-sprint"], g.rng.Float64() < 0.6)
	}
	in.Challenges = challenges
	in.Factors = keepBefore(in.Factors, end.UnixMilli())
	return in
}

func (g *Generator) score(hour, peak float64) float64 {
	d := hour - peak
	s := baselineScore + peakGain*math.Exp(-d*d/(2*peakWidthHours*peakWidthHours)) + g.rng.NormFloat64()*scoreNoise
	return math.Max(0, math.Min(1, s))
}

func keepBefore(fs []model.LifestyleFactor, end int64) []model.LifestyleFactor {
	out := fs[:0]
	for _, f := range fs {
		if f.Timestamp <= end {
			out = append(out, f)
		}
	}
	return out
}
