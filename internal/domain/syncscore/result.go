package syncscore

import (
	"github.com/okian/rhythm/internal/domain/chronotype"
	"github.com/okian/rhythm/internal/domain/lifestyle"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/ridge"
)

// SyncResult is the full analysis returned for one user snapshot.
type SyncResult struct {
	SyncScore           int                    `json:"syncScore"`
	SchoolAlignment     int                    `json:"schoolAlignment"`
	StudyAlignment      int                    `json:"studyAlignment"`
	LearningPhase       float64                `json:"learningPhase"`
	SocialJetlagPenalty int                    `json:"socialJetlagPenalty"`
	AdaptiveComponents  AdaptiveComponents     `json:"adaptiveComponents"`
	SleepMetrics        lifestyle.SleepMetrics `json:"sleepMetrics"`
	LearningTimeline    []float64              `json:"learningTimeline"`
	Chronotype          chronotype.Result      `json:"chronotype"`
	DynamicAdjustments  lifestyle.Adjustments  `json:"dynamicAdjustments"`
	TrendAnalysis       TrendAnalysis          `json:"trendAnalysis"`
	CategoryWeights     ridge.CategoryWeights  `json:"categoryWeights,omitempty"`
}

// Alignment pairs the school and study window alignments in [0,1].
type Alignment struct {
	School float64 `json:"school"`
	Study  float64 `json:"study"`
}

// AdaptiveComponents expose how much of the score came from data.
type AdaptiveComponents struct {
	ObservedAlignment  Alignment                `json:"observedAlignment"`
	PredictedAlignment Alignment                `json:"predictedAlignment"`
	AdaptationLevel    float64                  `json:"adaptationLevel"`
	DomainReliability  map[model.Domain]float64 `json:"domainReliability"`
}

// TrendAnalysis summarises the recent direction of the scores.
type TrendAnalysis struct {
	WeeklyTrend    string   `json:"weeklyTrend"`
	KeyFactors     []string `json:"keyFactors"`
	ProjectedScore int      `json:"projectedScore"`
}
