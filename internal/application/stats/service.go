// Package stats counts completed ledger transactions per origin and
// application. Counting is best effort: a failed bump is logged and
// swallowed so it can never fail the transaction it is counting.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanity-address-api/internal/domain"
)

// Store is the counter persistence. Increment must be a single atomic
// server-side add, never a read-modify-write.
type Store interface {
	Increment(ctx context.Context, origin, applicationID, txType string) error
	Totals(ctx context.Context, origin, applicationID string) (map[string]int64, error)
}

type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record bumps the counter for one completed transaction of txType.
func (r *Recorder) Record(ctx context.Context, origin, applicationID, txType string) {
	if err := r.store.Increment(ctx, origin, applicationID, txType); err != nil {
		slog.Error("record transaction statistic",
			"origin", origin, "application_id", applicationID, "type", txType, "err", err)
	}
}

// Totals returns the counter per transaction type for one origin/application.
func (r *Recorder) Totals(ctx context.Context, origin, applicationID string) (map[string]int64, error) {
	totals, err := r.store.Totals(ctx, origin, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", domain.ErrUnavailable)
	}
	return totals, nil
}
