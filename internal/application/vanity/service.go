// Package vanity orchestrates the vanity-address purchase flow: search the
// inventory, hand a sold address over to its buyer, and record the purchase.
package vanity

import (
	"context"
	"log/slog"

	"github.com/vanity-address-api/internal/application/transfer"
	"github.com/vanity-address-api/internal/domain"
)

// txTypeVanity is the statistics counter bumped per completed handover.
const txTypeVanity = "vanity"

// Inventory is the external vanity-address stock.
type Inventory interface {
	Search(ctx context.Context, term string) ([]domain.VanityCandidate, error)
	Purge(ctx context.Context, account string) error
}

// Transferrer performs the on-ledger ownership handover.
type Transferrer interface {
	Transfer(ctx context.Context, vanityAddress, vanitySecret, buyerRegularKey string) transfer.Result
	DisableMasterKey(ctx context.Context, vanityAddress, vanitySecret string) transfer.Result
}

// PurchaseStore persists which addresses have been sold to whom.
type PurchaseStore interface {
	AddPurchase(ctx context.Context, origin, applicationID, buyerAccount, vanityAddress string) error
	ByApplication(ctx context.Context, applicationID string) ([]domain.PurchaseRecord, error)
	ByAccount(ctx context.Context, account string) ([]domain.PurchaseRecord, error)
}

// Recorder counts completed transactions.
type Recorder interface {
	Record(ctx context.Context, origin, applicationID, txType string)
}

// HandoverRequest names everything one purchase handover needs.
type HandoverRequest struct {
	Origin          string
	ApplicationID   string
	BuyerAccount    string
	BuyerRegularKey string
	VanityAddress   string
	VanitySecret    string
}

type ServiceDeps struct {
	Inventory Inventory
	Transfer  Transferrer
	Purchases PurchaseStore
	Stats     Recorder
}

type Service struct {
	inventory Inventory
	transfer  Transferrer
	purchases PurchaseStore
	stats     Recorder
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		inventory: deps.Inventory,
		transfer:  deps.Transfer,
		purchases: deps.Purchases,
		stats:     deps.Stats,
	}
}

// Search returns available candidates matching term, with addresses already
// sold under the application filtered out. A purchase-store failure only
// disables the filter; the inventory result still goes through.
func (s *Service) Search(ctx context.Context, applicationID, term string) ([]domain.VanityCandidate, error) {
	candidates, err := s.inventory.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	sold := s.soldAddresses(ctx, applicationID)
	if len(sold) == 0 {
		return candidates, nil
	}
	out := candidates[:0]
	for _, c := range candidates {
		if !sold[c.Address] {
			out = append(out, c)
		}
	}
	return out, nil
}

// AlreadyBought reports whether address was already sold under the application.
func (s *Service) AlreadyBought(ctx context.Context, applicationID, address string) bool {
	return s.soldAddresses(ctx, applicationID)[address]
}

// Purchased returns every vanity address the account has bought.
func (s *Service) Purchased(ctx context.Context, account string) []string {
	recs, err := s.purchases.ByAccount(ctx, account)
	if err != nil {
		slog.Error("list purchases", "account", account, "err", err)
		return nil
	}
	var out []string
	for _, r := range recs {
		out = append(out, r.VanityAddresses...)
	}
	return out
}

// Handover completes a purchase: rekey the vanity address to the buyer,
// disable its master key, purge it from the inventory and record the sale.
// Any ledger failure stops the sequence before the sale is recorded, so a
// failed handover can be retried with the same request.
func (s *Service) Handover(ctx context.Context, req HandoverRequest) transfer.Result {
	if s.AlreadyBought(ctx, req.ApplicationID, req.VanityAddress) {
		return transfer.Result{
			Success: false,
			Account: req.VanityAddress,
			Code:    "alreadyPurchased",
			Reason:  "address was already sold under this application",
		}
	}
	res := s.transfer.Transfer(ctx, req.VanityAddress, req.VanitySecret, req.BuyerRegularKey)
	if !res.Success {
		return res
	}
	if disabled := s.transfer.DisableMasterKey(ctx, req.VanityAddress, req.VanitySecret); !disabled.Success {
		return disabled
	}
	// the ledger handover is done; bookkeeping failures are logged, not fatal
	if err := s.inventory.Purge(ctx, req.VanityAddress); err != nil {
		slog.Error("purge sold address from inventory", "address", req.VanityAddress, "err", err)
	}
	if err := s.purchases.AddPurchase(ctx, req.Origin, req.ApplicationID, req.BuyerAccount, req.VanityAddress); err != nil {
		slog.Error("store purchase", "account", req.BuyerAccount, "address", req.VanityAddress, "err", err)
	}
	s.stats.Record(ctx, req.Origin, req.ApplicationID, txTypeVanity)
	return res
}

func (s *Service) soldAddresses(ctx context.Context, applicationID string) map[string]bool {
	recs, err := s.purchases.ByApplication(ctx, applicationID)
	if err != nil {
		slog.Error("list application purchases", "application_id", applicationID, "err", err)
		return nil
	}
	sold := make(map[string]bool)
	for _, r := range recs {
		for _, a := range r.VanityAddresses {
			sold[a] = true
		}
	}
	return sold
}
