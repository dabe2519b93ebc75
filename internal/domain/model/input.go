package model

import (
	"fmt"
	"math"
	"time"
)

// Input is the snapshot of one user's recent data handed to the engine.
type Input struct {
	UserID     string             `json:"userId,omitempty"`
	Quiz       QuizResponses      `json:"quiz"`
	Sessions   []CognitiveSession `json:"sessions,omitempty"`
	Factors    []LifestyleFactor  `json:"factors,omitempty"`
	Challenges *ChallengeData     `json:"challenges,omitempty"`
	Feedback   *TimingInsight     `json:"feedback,omitempty"`
	// TimeZone is an IANA name used for calendar-day bucketing.
	TimeZone string `json:"timeZone,omitempty"`
	// Now is the end of the look-back window in epoch ms. Zero means the
	// latest timestamp found in the data.
	Now int64 `json:"now,omitempty"`
}

// Validate reports inputs that cannot be analysed at all. Everything else is
// absorbed by the engine.
func (in *Input) Validate() error {
	if in.Now < 0 {
		return fmt.Errorf("%w: now: %w", ErrInvalidInput, ErrNegativeTimestamp)
	}
	for i, s := range in.Sessions {
		if s.Timestamp < 0 {
			return fmt.Errorf("%w: sessions[%d]: %w", ErrInvalidInput, i, ErrNegativeTimestamp)
		}
		if !s.Domain.Valid() {
			return fmt.Errorf("%w: sessions[%d]: %w %q", ErrInvalidInput, i, ErrUnknownDomain, s.Domain)
		}
	}
	for i, f := range in.Factors {
		if f.Timestamp < 0 {
			return fmt.Errorf("%w: factors[%d]: %w", ErrInvalidInput, i, ErrNegativeTimestamp)
		}
		if err := f.validate(); err != nil {
			return fmt.Errorf("%w: factors[%d]: %w", ErrInvalidInput, i, err)
		}
	}
	if in.Feedback != nil && (isNotFinite(in.Feedback.Correlation) || isNotFinite(in.Feedback.OptimalHour)) {
		return fmt.Errorf("%w: feedback: %w", ErrInvalidInput, ErrNotFinite)
	}
	if _, err := in.Location(nil); err != nil {
		return fmt.Errorf("%w: timeZone: %w", ErrInvalidInput, err)
	}
	return nil
}

func (f LifestyleFactor) validate() error {
	var ok bool
	switch f.Kind {
	case FactorSleep:
		ok = f.Sleep != nil
	case FactorNutrition:
		ok = f.Nutrition != nil
	case FactorActivity:
		ok = f.Activity != nil
	case FactorChallenge:
		ok = f.Challenge != nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownFactorKind, f.Kind)
	}
	if !ok {
		return fmt.Errorf("%w for kind %q", ErrMissingPayload, f.Kind)
	}
	return nil
}

// Location resolves TimeZone, falling back to def (or UTC when def is nil).
func (in *Input) Location(def *time.Location) (*time.Location, error) {
	if in.TimeZone == "" {
		if def == nil {
			return time.UTC, nil
		}
		return def, nil
	}
	loc, err := time.LoadLocation(in.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownTimeZone, in.TimeZone)
	}
	return loc, nil
}

// End returns the window end: Now, or the latest timestamp in the data.
func (in *Input) End() int64 {
	if in.Now > 0 {
		return in.Now
	}
	var latest int64
	for _, s := range in.Sessions {
		latest = max(latest, s.Timestamp)
	}
	for _, f := range in.Factors {
		latest = max(latest, f.Timestamp)
	}
	return latest
}

// Window returns a copy of in keeping only samples within days before End.
func (in *Input) Window(days int) Input {
	out := *in
	if days <= 0 {
		return out
	}
	end := in.End()
	start := end - int64(days)*24*int64(time.Hour/time.Millisecond)

	out.Sessions = make([]CognitiveSession, 0, len(in.Sessions))
	for _, s := range in.Sessions {
		if s.Timestamp >= start && s.Timestamp <= end {
			out.Sessions = append(out.Sessions, s)
		}
	}
	out.Factors = make([]LifestyleFactor, 0, len(in.Factors))
	for _, f := range in.Factors {
		if f.Timestamp >= start && f.Timestamp <= end {
			out.Factors = append(out.Factors, f)
		}
	}
	return out
}

func isNotFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
