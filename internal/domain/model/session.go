// Package model contains the input data model shared by the analysis engine,
// the orchestrator and the HTTP layer.
package model

import (
	"math"
	"time"
)

// Domain is a cognitive domain measured by a game.
type Domain string

const (
	DomainMemory         Domain = "memory"
	DomainAttention      Domain = "attention"
	DomainRecall         Domain = "recall"
	DomainProblemSolving Domain = "problemSolving"
	DomainCreativity     Domain = "creativity"
)

var allDomains = [...]Domain{
	DomainMemory,
	DomainAttention,
	DomainRecall,
	DomainProblemSolving,
	DomainCreativity,
}

// AllDomains returns every domain in a fixed order.
func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains[:])
	return out
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	for _, known := range allDomains {
		if d == known {
			return true
		}
	}
	return false
}

// CognitiveSession is one scored game play.
type CognitiveSession struct {
	ID              string  `json:"id"`
	Timestamp       int64   `json:"timestamp"` // epoch milliseconds
	Domain          Domain  `json:"domain"`
	NormalizedScore float64 `json:"normalizedScore"` // [0,1]
	RawScore        float64 `json:"rawScore"`
	HourOfDay       float64 `json:"hourOfDay"` // [0,24)
}

// Time returns the session timestamp in loc.
func (s CognitiveSession) Time(loc *time.Location) time.Time {
	return time.UnixMilli(s.Timestamp).In(loc)
}

// Hour returns the hour-of-day in [0,24). A non-finite HourOfDay is derived
// from the timestamp instead.
func (s CognitiveSession) Hour(loc *time.Location) float64 {
	h := s.HourOfDay
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return HourOf(s.Time(loc))
	}
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// Score returns the normalized score clamped to [0,1]. ok is false for NaN.
func (s CognitiveSession) Score() (v float64, ok bool) {
	if math.IsNaN(s.NormalizedScore) {
		return 0, false
	}
	return math.Max(0, math.Min(1, s.NormalizedScore)), true
}

// HourOf returns the fractional hour-of-day of t.
func HourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}
