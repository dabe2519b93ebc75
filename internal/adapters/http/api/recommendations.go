package api

import (
	"context"
	"net/http"

	"github.com/okian/rhythm/internal/domain/recommend"
	"github.com/okian/rhythm/internal/domain/ridge"
)

// RankDependencies defines the interface for recommendation ranking.
type RankDependencies interface {
	Rank(ctx context.Context, weights ridge.CategoryWeights, recs []recommend.Recommendation) []recommend.Recommendation
}

type rankRequest struct {
	CategoryWeights ridge.CategoryWeights      `json:"categoryWeights"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

type rankResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// RankHandler handles recommendation ranking requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleRank handles POST /v1/recommendations/rank. Missing weights rank
// every category equally.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations.rank"
	var req rankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	weights := req.CategoryWeights
	if len(weights) == 0 {
		weights = ridge.Uniform()
	}
	writeJSON(w, http.StatusOK, rankResponse{
		Recommendations: h.deps.Rank(r.Context(), weights, req.Recommendations),
	})
}
