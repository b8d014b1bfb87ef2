package handler

import (
	"net/http"

	"github.com/vanity-address-api/internal/application/stats"
	"github.com/vanity-address-api/internal/transport/http/middleware"
)

// StatsHandler exposes the per-origin transaction counters.
type StatsHandler struct {
	recorder *stats.Recorder
}

func NewStatsHandler(recorder *stats.Recorder) *StatsHandler {
	return &StatsHandler{recorder: recorder}
}

func (h *StatsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	origin := r.URL.Query().Get("origin")
	if origin == "" {
		writeError(w, http.StatusBadRequest, "origin required")
		return
	}
	totals, err := h.recorder.Totals(r.Context(), origin, claims.ApplicationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]int64{"totals": totals})
}
