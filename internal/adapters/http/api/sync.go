package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/rhythm/internal/app"
	"github.com/okian/rhythm/internal/domain/model"
	"github.com/okian/rhythm/pkg/logger"
)

const (
	HeaderAnalysisID = "X-Analysis-ID"
	HeaderCache      = "X-Cache"
)

// SyncDependencies defines the operations behind the sync endpoints.
type SyncDependencies interface {
	Analyze(ctx context.Context, userID string, in model.Input) (service.Result, error)
	Invalidate(ctx context.Context, userID string) error
}

// SyncHandler serves per-user analyses.
type SyncHandler struct {
	deps   SyncDependencies
	logger logger.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies, log logger.Logger) *SyncHandler {
	return &SyncHandler{deps: deps, logger: log}
}

// HandlePostSync handles POST /v1/users/{userID}/sync.
func (h *SyncHandler) HandlePostSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync.post"
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	var in model.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Analyze(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	w.Header().Set(HeaderAnalysisID, res.AnalysisID)
	if res.Cached {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	writeJSON(w, http.StatusOK, res.Sync)
}

// HandleDeleteSync handles DELETE /v1/users/{userID}/sync.
func (h *SyncHandler) HandleDeleteSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync.delete"
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if err := h.deps.Invalidate(r.Context(), userID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SyncHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrMissingUserID):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		// The cause is logged; clients only see the operation and kind.
		if h.logger != nil {
			h.logger.Error(r.Context(), "sync request failed",
				logger.String("requestID", middleware.GetReqID(r.Context())),
				logger.Error(Wrap(op, err)),
			)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
