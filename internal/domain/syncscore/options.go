package syncscore

import (
	"math"
	"time"
)

const (
	DefaultWindowDays = 30
	DefaultBumpWeight = 0.2
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWindowDays sets the look-back window. Non-positive values are ignored.
func WithWindowDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.windowDays = days
		}
	}
}

// WithLocation sets the time zone used when an input carries none.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithReliability sets the reliability cap and the shrinkage N0 of the
// cosinor fits. Invalid values are ignored individually.
func WithReliability(maxReliability, shrinkage float64) Option {
	return func(e *Engine) {
		if maxReliability > 0 && maxReliability <= 1 {
			e.maxReliability = maxReliability
		}
		if shrinkage >= 0 && !math.IsNaN(shrinkage) {
			e.shrinkage = shrinkage
		}
	}
}

// WithRidgeLambda sets the ridge penalty. Negative values are ignored.
func WithRidgeLambda(lambda float64) Option {
	return func(e *Engine) {
		if lambda >= 0 && !math.IsNaN(lambda) {
			e.ridgeLambda = lambda
		}
	}
}

// WithJetlagK sets the jetlag penalty curvature. Negative values are ignored.
func WithJetlagK(k float64) Option {
	return func(e *Engine) {
		if k >= 0 && !math.IsNaN(k) {
			e.jetlagK = k
		}
	}
}

// WithBumpWeight sets the afternoon bump weight. Values outside [0,1] are ignored.
func WithBumpWeight(beta float64) Option {
	return func(e *Engine) {
		if beta >= 0 && beta <= 1 {
			e.bumpWeight = beta
		}
	}
}
