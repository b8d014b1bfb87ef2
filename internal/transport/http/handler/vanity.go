package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vanity-address-api/internal/application/transfer"
	"github.com/vanity-address-api/internal/application/vanity"
	"github.com/vanity-address-api/internal/domain"
	"github.com/vanity-address-api/internal/pkg/validate"
	"github.com/vanity-address-api/internal/transport/http/middleware"
)

// VanityHandler handles vanity-address search, pricing and purchase handover.
type VanityHandler struct {
	svc      *vanity.Service
	transfer *transfer.Service
	issuer   string
	currency string
}

func NewVanityHandler(svc *vanity.Service, tr *transfer.Service, issuer, currency string) *VanityHandler {
	return &VanityHandler{svc: svc, transfer: tr, issuer: issuer, currency: currency}
}

// CandidatesEnvelope wraps a vanity search result.
type CandidatesEnvelope struct {
	Candidates []domain.VanityCandidate `json:"candidates"`
}

func (h *VanityHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	term := chi.URLParam(r, "term")
	candidates, err := h.svc.Search(r.Context(), claims.ApplicationID, term)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CandidatesEnvelope{Candidates: candidates})
}

// Price converts an amount of the configured currency to native drops using
// the issuer's current trustline rate.
func (h *VanityHandler) Price(w http.ResponseWriter, r *http.Request) {
	amountStr := r.URL.Query().Get("amount")
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 {
		writeError(w, http.StatusBadRequest, "positive numeric amount required")
		return
	}
	drops, err := h.transfer.NativeAmount(r.Context(), h.issuer, h.currency, amount)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currency": h.currency,
		"amount":   amount,
		"drops":    drops,
	})
}

type handoverRequest struct {
	Origin          string `json:"origin" validate:"required"`
	BuyerAccount    string `json:"buyer_account" validate:"required"`
	BuyerRegularKey string `json:"buyer_regular_key" validate:"required"`
	VanityAddress   string `json:"vanity_address" validate:"required"`
	VanitySecret    string `json:"vanity_secret" validate:"required"`
}

// Handover completes a purchase. The response is always a structured transfer
// result; ledger failures surface as success=false, not as HTTP errors.
func (h *VanityHandler) Handover(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req handoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := h.svc.Handover(r.Context(), vanity.HandoverRequest{
		Origin:          req.Origin,
		ApplicationID:   claims.ApplicationID,
		BuyerAccount:    req.BuyerAccount,
		BuyerRegularKey: req.BuyerRegularKey,
		VanityAddress:   req.VanityAddress,
		VanitySecret:    req.VanitySecret,
	})
	writeJSON(w, http.StatusOK, res)
}

// Purchased lists every vanity address a buyer account owns.
func (h *VanityHandler) Purchased(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	addresses := h.svc.Purchased(r.Context(), account)
	writeJSON(w, http.StatusOK, map[string][]string{"vanity_addresses": addresses})
}
