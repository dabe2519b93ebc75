// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/rhythm/internal/app"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/internal/domain/recommend"
	"github.com/okian/rhythm/internal/domain/ridge"
	"github.com/okian/rhythm/pkg/logger"
)

// maxBodyBytes bounds request bodies. A 30 day history is well below it.
const maxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Analyze(ctx context.Context, userID string, in model.Input) (service.Result, error)
	Invalidate(ctx context.Context, userID string) error
	Rank(ctx context.Context, weights ridge.CategoryWeights, recs []recommend.Recommendation) []recommend.Recommendation
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	syncHandler    *SyncHandler
	rankHandler    *RankHandler
	metricsHandler http.Handler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		syncHandler:    NewSyncHandler(deps, log),
		rankHandler:    NewRankHandler(deps),
		metricsHandler: MetricsHandler(),
		logger:         log,
	}
}

// Router builds the chi router with every route and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Method(http.MethodGet, "/metrics", s.metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/users/{userID}/sync", s.syncHandler.HandlePostSync)
		r.Delete("/users/{userID}/sync", s.syncHandler.HandleDeleteSync)
		r.Post("/recommendations/rank", s.rankHandler.HandleRank)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
