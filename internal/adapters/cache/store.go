// Package cache stores analysis results per user.
package cache

import (
	"context"
	"time"

	"github.com/okian/rhythm/internal/domain/syncscore"
)

// Entry is one cached analysis. Fingerprint identifies the input the result
// was computed from.
type Entry struct {
	Fingerprint string               `json:"fingerprint"`
	AnalysisID  string               `json:"analysisId"`
	Result      syncscore.SyncResult `json:"result"`
	StoredAt    time.Time            `json:"storedAt"`
}

// Store keeps at most one Entry per key.
type Store interface {
	// Get returns the entry for key. ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set replaces the entry for key.
	Set(ctx context.Context, key string, e Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Sizer is implemented by stores that can report their entry count cheaply.
type Sizer interface {
	Size() int64
}
