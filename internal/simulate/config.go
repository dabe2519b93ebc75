// Package simulate drives a running sync service with synthetic user
// histories and checks that the results look plausible for each profile.
package simulate

import (
	"time"

	"github.com/okian/rhythm/internal/domain/syncscore"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Users      int           // Number of synthetic users
	Days       int           // Days of history per user
	Workers    int           // Concurrent submissions
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // Seed for the history generator
	OutputFile string        // Optional JSON dump of the generated inputs
	Verbose    bool          // Log every result
}

// Outcome is the service answer for one synthetic user.
type Outcome struct {
	UserID     string
	Profile    Profile
	AnalysisID string
	Cache      string
	Result     syncscore.SyncResult
}

// Stats holds run statistics.
type Stats struct {
	UsersGenerated int
	Submitted      int
	Successful     int
	Failed         int
	CacheHits      int
	Violations     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
