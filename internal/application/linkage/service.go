// Package linkage records which external payload flow belongs to which
// identity: a front-end user, a wallet-app user, or a ledger account.
package linkage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vanity-address-api/internal/domain"
)

// PayloadStore is the persistence needed for one linkage collection. The
// implementation must make AddPayload a single atomic upsert (set union plus
// updated stamp), never an application-level read-modify-write.
type PayloadStore interface {
	AddPayload(ctx context.Context, key domain.ScopeKey, walletUserID string, cat domain.PayloadCategory, payloadID string) error
	Get(ctx context.Context, key domain.ScopeKey) (*domain.LinkageRecord, error)
	ListBySubject(ctx context.Context, applicationID, subject string) ([]domain.LinkageRecord, error)
}

// RegistrationStore persists the immutable frontend-to-wallet registrations.
type RegistrationStore interface {
	Save(ctx context.Context, reg *domain.UserRegistration) error
}

// SearchTermStore persists in-flight vanity search terms per wallet user.
type SearchTermStore interface {
	Save(ctx context.Context, rec *domain.SearchTermRecord) error
	Delete(ctx context.Context, applicationID, walletUserID, term string) error
}

// ServiceDeps wires the three stores. WalletUsers and Accounts are the two
// linkage collections, keyed by wallet-app user id and ledger account.
type ServiceDeps struct {
	WalletUsers   PayloadStore
	Accounts      PayloadStore
	Registrations RegistrationStore
	SearchTerms   SearchTermStore
}

type Service struct {
	walletUsers   PayloadStore
	accounts      PayloadStore
	registrations RegistrationStore
	searchTerms   SearchTermStore
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		walletUsers:   deps.WalletUsers,
		accounts:      deps.Accounts,
		registrations: deps.Registrations,
		searchTerms:   deps.SearchTerms,
	}
}

// RegisterUser records the frontend-to-wallet user link once. Re-registering
// the identical tuple is a no-op success.
func (s *Service) RegisterUser(ctx context.Context, origin, applicationID, frontendUserID, walletUserID string) error {
	err := s.registrations.Save(ctx, &domain.UserRegistration{
		Origin:         origin,
		ApplicationID:  applicationID,
		FrontendUserID: frontendUserID,
		WalletUserID:   walletUserID,
	})
	if err != nil {
		return fmt.Errorf("register user: %w", domain.ErrUnavailable)
	}
	return nil
}

// AddWalletUserPayload unions a payload id into the wallet-user record for
// the scope key. The raw category tag is normalised here at the boundary.
func (s *Service) AddWalletUserPayload(ctx context.Context, key domain.ScopeKey, category, payloadID string) error {
	cat := domain.NormalizeCategory(category)
	if err := s.walletUsers.AddPayload(ctx, key, "", cat, payloadID); err != nil {
		slog.Error("store wallet-user payload", "application_id", key.ApplicationID, "subject", key.Subject, "err", err)
		return fmt.Errorf("add wallet-user payload: %w", domain.ErrUnavailable)
	}
	return nil
}

// AddAccountPayload unions a payload id into the ledger-account record for
// the scope key and stamps the last known wallet-app user id. When the caller
// does not know the wallet user, the most recent one on file is backfilled.
func (s *Service) AddAccountPayload(ctx context.Context, key domain.ScopeKey, walletUserID, category, payloadID string) error {
	if walletUserID == "" {
		walletUserID = s.MostRecentWalletUserForAccount(ctx, key.ApplicationID, key.Subject)
	}
	cat := domain.NormalizeCategory(category)
	if err := s.accounts.AddPayload(ctx, key, walletUserID, cat, payloadID); err != nil {
		slog.Error("store account payload", "application_id", key.ApplicationID, "subject", key.Subject, "err", err)
		return fmt.Errorf("add account payload: %w", domain.ErrUnavailable)
	}
	return nil
}

// WalletUserPayloads returns the payload set for one exact scope key.
func (s *Service) WalletUserPayloads(ctx context.Context, key domain.ScopeKey, category string) []string {
	return s.payloadsExact(ctx, s.walletUsers, key, category)
}

// WalletUserPayloadsAcrossReferers unions the payload sets for one wallet
// user over all referers of the application.
func (s *Service) WalletUserPayloadsAcrossReferers(ctx context.Context, applicationID, walletUserID, category string) []string {
	return s.payloadsAcross(ctx, s.walletUsers, applicationID, walletUserID, category)
}

// AccountPayloads returns the payload set for one exact ledger-account scope key.
func (s *Service) AccountPayloads(ctx context.Context, key domain.ScopeKey, category string) []string {
	return s.payloadsExact(ctx, s.accounts, key, category)
}

// AccountPayloadsAcrossReferers unions the payload sets for one ledger
// account over all referers of the application.
func (s *Service) AccountPayloadsAcrossReferers(ctx context.Context, applicationID, account, category string) []string {
	return s.payloadsAcross(ctx, s.accounts, applicationID, account, category)
}

// MostRecentWalletUserForAccount returns the wallet-app user id from the most
// recently updated linkage record for the account, or "" when none carries one.
func (s *Service) MostRecentWalletUserForAccount(ctx context.Context, applicationID, account string) string {
	recs, err := s.accounts.ListBySubject(ctx, applicationID, account)
	if err != nil {
		slog.Error("list account linkage", "application_id", applicationID, "account", account, "err", err)
		return ""
	}
	best := ""
	var bestUpdated int64 = -1
	for _, r := range recs {
		if r.WalletUserID == "" {
			continue
		}
		if r.Updated > bestUpdated {
			best = r.WalletUserID
			bestUpdated = r.Updated
		}
	}
	return best
}

// SigninPayloadsOrderedByTime returns every sign-in payload id for the
// account across referers, ordered oldest to newest by record update time.
func (s *Service) SigninPayloadsOrderedByTime(ctx context.Context, applicationID, account string) []string {
	recs, err := s.accounts.ListBySubject(ctx, applicationID, account)
	if err != nil {
		slog.Error("list account linkage", "application_id", applicationID, "account", account, "err", err)
		return nil
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Updated < recs[j].Updated })
	var out []string
	for _, r := range recs {
		out = append(out, r.PayloadSet(domain.CategorySignIn)...)
	}
	return out
}

// SaveSearchTerm remembers a wallet user's vanity search. Idempotent.
func (s *Service) SaveSearchTerm(ctx context.Context, applicationID, walletUserID, term string) error {
	err := s.searchTerms.Save(ctx, &domain.SearchTermRecord{
		ApplicationID: applicationID,
		WalletUserID:  walletUserID,
		SearchTerm:    term,
	})
	if err != nil {
		return fmt.Errorf("save search term: %w", domain.ErrUnavailable)
	}
	return nil
}

// DeleteSearchTerm removes a consumed search-term record.
func (s *Service) DeleteSearchTerm(ctx context.Context, applicationID, walletUserID, term string) error {
	if err := s.searchTerms.Delete(ctx, applicationID, walletUserID, term); err != nil {
		return fmt.Errorf("delete search term: %w", domain.ErrUnavailable)
	}
	return nil
}

func (s *Service) payloadsExact(ctx context.Context, store PayloadStore, key domain.ScopeKey, category string) []string {
	rec, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("get linkage record", "application_id", key.ApplicationID, "subject", key.Subject, "err", err)
		}
		return nil
	}
	return rec.PayloadSet(domain.NormalizeCategory(category))
}

func (s *Service) payloadsAcross(ctx context.Context, store PayloadStore, applicationID, subject, category string) []string {
	recs, err := store.ListBySubject(ctx, applicationID, subject)
	if err != nil {
		slog.Error("list linkage records", "application_id", applicationID, "subject", subject, "err", err)
		return nil
	}
	cat := domain.NormalizeCategory(category)
	var out []string
	for _, r := range recs {
		out = append(out, r.PayloadSet(cat)...)
	}
	return out
}
