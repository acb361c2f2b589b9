// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/recall/internal/domain/model"
)

// StatsHandler handles aggregate statistics requests.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleGetStats handles GET /api/study/stats requests.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	snapshot, err := h.deps.Stats(r.Context(), UserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleGetDailyStats handles GET /api/study/stats/daily requests.
// Buckets are returned oldest first; that ordering is part of the
// contract, so clients render without reversing.
func (h *StatsHandler) HandleGetDailyStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_daily_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		days = parsed
	}

	daily, err := h.deps.DailyStats(r.Context(), UserID(r), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	if daily == nil {
		daily = []model.DailyStat{}
	}
	writeJSON(w, http.StatusOK, daily)
}
