package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vanity-address-api/internal/application/linkage"
	"github.com/vanity-address-api/internal/domain"
	"github.com/vanity-address-api/internal/pkg/validate"
	"github.com/vanity-address-api/internal/transport/http/middleware"
)

// LinkageHandler handles identity-linkage endpoints. The application id is
// always taken from the verified token claims, never from the request body.
type LinkageHandler struct {
	svc *linkage.Service
}

func NewLinkageHandler(svc *linkage.Service) *LinkageHandler {
	return &LinkageHandler{svc: svc}
}

type registerUserRequest struct {
	Origin         string `json:"origin" validate:"required"`
	FrontendUserID string `json:"frontend_user_id" validate:"required"`
	WalletUserID   string `json:"wallet_user_id" validate:"required"`
}

func (h *LinkageHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RegisterUser(r.Context(), req.Origin, claims.ApplicationID, req.FrontendUserID, req.WalletUserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "user registered"})
}

type addPayloadRequest struct {
	Origin       string `json:"origin" validate:"required"`
	Referer      string `json:"referer" validate:"required"`
	WalletUserID string `json:"wallet_user_id,omitempty"`
	Category     string `json:"category" validate:"required"`
	PayloadID    string `json:"payload_id" validate:"required"`
}

// AddWalletUserPayload unions a payload id into the wallet user's record.
// The wallet-app user id is the {subject} route param.
func (h *LinkageHandler) AddWalletUserPayload(w http.ResponseWriter, r *http.Request) {
	key, req, ok := h.decodePayloadRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.AddWalletUserPayload(r.Context(), key, req.Category, req.PayloadID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "payload stored"})
}

// AddAccountPayload unions a payload id into the ledger account's record.
func (h *LinkageHandler) AddAccountPayload(w http.ResponseWriter, r *http.Request) {
	key, req, ok := h.decodePayloadRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.AddAccountPayload(r.Context(), key, req.WalletUserID, req.Category, req.PayloadID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "payload stored"})
}

// WalletUserPayloads returns payload ids for a wallet user: the exact
// origin/referer scope by default, all referers with ?all=true.
func (h *LinkageHandler) WalletUserPayloads(w http.ResponseWriter, r *http.Request) {
	h.listPayloads(w, r, h.svc.WalletUserPayloads, h.svc.WalletUserPayloadsAcrossReferers)
}

// AccountPayloads returns payload ids for a ledger account.
func (h *LinkageHandler) AccountPayloads(w http.ResponseWriter, r *http.Request) {
	h.listPayloads(w, r, h.svc.AccountPayloads, h.svc.AccountPayloadsAcrossReferers)
}

// SigninPayloads returns every sign-in payload id for the account, oldest
// first.
func (h *LinkageHandler) SigninPayloads(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account := chi.URLParam(r, "subject")
	payloads := h.svc.SigninPayloadsOrderedByTime(r.Context(), claims.ApplicationID, account)
	writeJSON(w, http.StatusOK, PayloadsEnvelope{Payloads: payloads})
}

// WalletUserForAccount returns the most recently seen wallet-app user id for
// a ledger account.
func (h *LinkageHandler) WalletUserForAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account := chi.URLParam(r, "subject")
	id := h.svc.MostRecentWalletUserForAccount(r.Context(), claims.ApplicationID, account)
	if id == "" {
		writeError(w, http.StatusNotFound, "no wallet user on record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"wallet_user_id": id})
}

type searchTermRequest struct {
	WalletUserID string `json:"wallet_user_id" validate:"required"`
	SearchTerm   string `json:"search_term" validate:"required"`
}

func (h *LinkageHandler) SaveSearchTerm(w http.ResponseWriter, r *http.Request) {
	claims, req, ok := h.decodeSearchTermRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.SaveSearchTerm(r.Context(), claims.ApplicationID, req.WalletUserID, req.SearchTerm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "search term saved"})
}

func (h *LinkageHandler) DeleteSearchTerm(w http.ResponseWriter, r *http.Request) {
	claims, req, ok := h.decodeSearchTermRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSearchTerm(r.Context(), claims.ApplicationID, req.WalletUserID, req.SearchTerm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "search term deleted"})
}

func (h *LinkageHandler) decodePayloadRequest(w http.ResponseWriter, r *http.Request) (domain.ScopeKey, addPayloadRequest, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return domain.ScopeKey{}, addPayloadRequest{}, false
	}
	var req addPayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return domain.ScopeKey{}, addPayloadRequest{}, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.ScopeKey{}, addPayloadRequest{}, false
	}
	key := domain.ScopeKey{
		Origin:        req.Origin,
		Referer:       req.Referer,
		ApplicationID: claims.ApplicationID,
		Subject:       chi.URLParam(r, "subject"),
	}
	return key, req, true
}

func (h *LinkageHandler) listPayloads(
	w http.ResponseWriter,
	r *http.Request,
	exact func(ctx context.Context, key domain.ScopeKey, category string) []string,
	across func(ctx context.Context, applicationID, subject, category string) []string,
) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	subject := chi.URLParam(r, "subject")
	category := q.Get("category")

	var payloads []string
	if q.Get("all") == "true" {
		payloads = across(r.Context(), claims.ApplicationID, subject, category)
	} else {
		key := domain.ScopeKey{
			Origin:        q.Get("origin"),
			Referer:       q.Get("referer"),
			ApplicationID: claims.ApplicationID,
			Subject:       subject,
		}
		payloads = exact(r.Context(), key, category)
	}
	writeJSON(w, http.StatusOK, PayloadsEnvelope{Payloads: payloads})
}

func (h *LinkageHandler) decodeSearchTermRequest(w http.ResponseWriter, r *http.Request) (*middleware.AppClaims, searchTermRequest, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, searchTermRequest{}, false
	}
	var req searchTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, searchTermRequest{}, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, searchTermRequest{}, false
	}
	return claims, req, true
}
