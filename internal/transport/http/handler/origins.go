package handler

import (
	"net/http"

	"github.com/vanity-address-api/internal/application/origincache"
	"github.com/vanity-address-api/internal/domain"
)

// OriginHandler exposes the per-application origin configuration.
type OriginHandler struct {
	cache *origincache.Cache
}

func NewOriginHandler(cache *origincache.Cache) *OriginHandler {
	return &OriginHandler{cache: cache}
}

// OriginsEnvelope wraps the full configuration listing.
type OriginsEnvelope struct {
	Origins []domain.OriginConfig `json:"origins"`
}

func (h *OriginHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OriginsEnvelope{Origins: h.cache.AllOrigins(r.Context())})
}

// Reset drops the cached snapshot so the next read scans the store again.
func (h *OriginHandler) Reset(w http.ResponseWriter, _ *http.Request) {
	h.cache.Reset()
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "origin cache reset"})
}

// Resolve maps a browser origin onto the owning application id.
func (h *OriginHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	if origin == "" {
		writeError(w, http.StatusBadRequest, "origin required")
		return
	}
	appID := h.cache.ApplicationIDForOrigin(r.Context(), origin)
	if appID == "" {
		writeError(w, http.StatusNotFound, "origin not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"application_id": appID})
}

// ReturnURL resolves the redirect target for a referer within an application.
func (h *OriginHandler) ReturnURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := q.Get("origin")
	appID := q.Get("application_id")
	referer := q.Get("referer")
	if origin == "" || appID == "" || referer == "" {
		writeError(w, http.StatusBadRequest, "origin, application_id and referer required")
		return
	}
	isWeb := q.Get("channel") != "app"
	url := h.cache.ReturnURL(r.Context(), origin, appID, referer, isWeb)
	if url == "" {
		writeError(w, http.StatusNotFound, "no return url configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"return_url": url})
}
