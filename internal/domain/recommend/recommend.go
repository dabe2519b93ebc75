// Package recommend orders externally authored recommendations by the
// category weights learned for a user.
package recommend

import (
	"sort"

	"github.com/okian/rhythm/internal/domain/ridge"
)

// Recommendation is an item authored outside the engine.
type Recommendation struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title,omitempty"`
	// Priority is the author's own ordering hint; lower comes first.
	Priority int `json:"priority,omitempty"`
}

// Reorder returns a copy of recs sorted by category weight (descending),
// then by Priority, then by original position. Unknown categories sort last.
func Reorder(recs []Recommendation, weights ridge.CategoryWeights) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	weight := func(r Recommendation) float64 {
		if w, ok := weights[r.Category]; ok {
			return w
		}
		return -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := weight(out[i]), weight(out[j])
		if wi != wj {
			return wi > wj
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}
