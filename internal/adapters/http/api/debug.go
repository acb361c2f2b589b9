// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// DebugHandler exposes service internals for monitoring.
type DebugHandler struct {
	statsProvider StatsProvider
}

// NewDebugHandler creates a new debug handler.
func NewDebugHandler(statsProvider StatsProvider) *DebugHandler {
	return &DebugHandler{statsProvider: statsProvider}
}

// HandleServiceStats handles GET /debug/service requests.
func (h *DebugHandler) HandleServiceStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(h.statsProvider.GetStats())
}
