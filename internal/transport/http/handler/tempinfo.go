package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vanity-address-api/internal/infrastructure/dynamo"
)

// TempInfoHandler exposes the staging store for short-lived flow documents
// (pending purchases, half-finished wallet flows). Payloads are opaque JSON
// objects; the store returns the generated id and the consumer deletes the
// record once used.
type TempInfoHandler struct {
	repo *dynamo.TempInfoRepo[map[string]interface{}]
}

func NewTempInfoHandler(repo *dynamo.TempInfoRepo[map[string]interface{}]) *TempInfoHandler {
	return &TempInfoHandler{repo: repo}
}

func (h *TempInfoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "non-empty json object required")
		return
	}
	tempID, err := h.repo.Save(r.Context(), payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"temp_id": tempID})
}

func (h *TempInfoHandler) Get(w http.ResponseWriter, r *http.Request) {
	payload, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Find returns the first record matching the query parameters exactly.
func (h *TempInfoHandler) Find(w http.ResponseWriter, r *http.Request) {
	filter := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			filter[k] = vs[0]
		}
	}
	payload, err := h.repo.FindFirst(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *TempInfoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "temp info deleted"})
}
