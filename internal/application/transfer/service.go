// Package transfer drives the two-step handover of a purchased vanity
// address: rekey the account to the buyer's regular key, then disable the
// issuer's master key. The second step is irreversible, so it is gated on the
// first having succeeded.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/vanity-address-api/internal/infrastructure/ledger"
	"github.com/vanity-address-api/internal/pkg/retry"
)

// resultCodeSuccess is the engine code for an applied transaction.
const resultCodeSuccess = "tesSUCCESS"

// dropsPerUnit scales a native-unit amount to the ledger's smallest unit.
const dropsPerUnit = 1_000_000

// maxSubmitAttempts bounds the prepare→sign→submit sequence: one retry masks
// a single transient failure, nothing more.
const maxSubmitAttempts = 2

// Result is the structured outcome of a transfer step. Errors never escape
// the public operations; a failed step reports Code and Reason instead.
type Result struct {
	Success bool   `json:"success"`
	TxID    string `json:"txid,omitempty"`
	Account string `json:"account,omitempty"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

var errSubmitRejected = errors.New("submission rejected")

type Service struct {
	ledger ledger.Client

	mu      sync.Mutex
	rekeyed map[string]bool
}

func NewService(client ledger.Client) *Service {
	return &Service{ledger: client, rekeyed: make(map[string]bool)}
}

// Transfer points vanityAddress at the buyer's regular key. The whole
// prepare→sign→submit sequence is retried at most once; a regular-key set is
// idempotent at the ledger level, so the retry cannot double-apply.
func (s *Service) Transfer(ctx context.Context, vanityAddress, vanitySecret, buyerRegularKey string) Result {
	res := s.submitSettings(ctx, vanityAddress, vanitySecret, ledger.Settings{RegularKey: buyerRegularKey})
	if res.Success {
		res.Account = buyerRegularKey
		s.markRekeyed(vanityAddress)
		slog.Info("vanity address rekeyed", "address", vanityAddress, "txid", res.TxID)
	} else {
		slog.Warn("vanity rekey failed", "address", vanityAddress, "code", res.Code, "reason", res.Reason)
	}
	return res
}

// DisableMasterKey disables the vanity address's master key. It refuses to
// run unless Transfer succeeded for the address first: once the master key is
// gone the original secret can no longer fix a failed rekey.
func (s *Service) DisableMasterKey(ctx context.Context, vanityAddress, vanitySecret string) Result {
	if !s.isRekeyed(vanityAddress) {
		return Result{
			Success: false,
			Account: vanityAddress,
			Code:    "rekeyNotConfirmed",
			Reason:  "regular key transfer has not succeeded for this address",
		}
	}
	res := s.submitSettings(ctx, vanityAddress, vanitySecret, ledger.Settings{DisableMaster: true})
	if res.Success {
		// handover complete; drop the confirmation so the set stays bounded
		s.clearRekeyed(vanityAddress)
		slog.Info("master key disabled", "address", vanityAddress, "txid", res.TxID)
	} else {
		slog.Warn("master key disable failed", "address", vanityAddress, "code", res.Code, "reason", res.Reason)
	}
	return res
}

// NativeAmount converts a currency amount to the ledger's smallest native
// unit using the issuer's trustline limit as the quoted rate. The rate is
// rounded to two decimals before scaling. A missing or non-numeric rate is an
// error, never a silent zero.
func (s *Service) NativeAmount(ctx context.Context, issuer, currency string, amount float64) (int64, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return 0, err
	}
	lines, err := s.ledger.Trustlines(ctx, issuer, currency)
	if err != nil {
		return 0, fmt.Errorf("query trustlines: %w", err)
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("no %s trustline on issuer %s", currency, issuer)
	}
	rate, err := strconv.ParseFloat(lines[0].Limit, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric trustline limit %q: %w", lines[0].Limit, err)
	}
	rate = math.Round(rate*100) / 100
	return int64(math.Round(amount * rate * dropsPerUnit)), nil
}

// submitSettings runs one bounded-retry prepare→sign→submit sequence and
// folds every failure mode into a Result.
func (s *Service) submitSettings(ctx context.Context, account, secret string, settings ledger.Settings) Result {
	var last Result
	_ = retry.Attempt(maxSubmitAttempts, func() error {
		res, err := s.attemptOnce(ctx, account, secret, settings)
		if err != nil {
			last = Result{Success: false, Account: account, Code: "submitError", Reason: err.Error()}
			return err
		}
		last = res
		if !res.Success {
			return errSubmitRejected
		}
		return nil
	})
	return last
}

func (s *Service) attemptOnce(ctx context.Context, account, secret string, settings ledger.Settings) (Result, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return Result{}, err
	}
	txJSON, err := s.ledger.PrepareSettings(ctx, account, settings)
	if err != nil {
		return Result{}, fmt.Errorf("prepare: %w", err)
	}
	signed, err := s.ledger.Sign(ctx, txJSON, secret)
	if err != nil {
		return Result{}, fmt.Errorf("sign: %w", err)
	}
	sub, err := s.ledger.Submit(ctx, signed.Blob)
	if err != nil {
		return Result{}, fmt.Errorf("submit: %w", err)
	}
	return Result{
		Success: sub.ResultCode == resultCodeSuccess,
		TxID:    sub.TxID,
		Account: account,
		Code:    sub.ResultCode,
	}, nil
}

func (s *Service) ensureConnected(ctx context.Context) error {
	if s.ledger.IsConnected() {
		return nil
	}
	if err := s.ledger.Connect(ctx); err != nil {
		return fmt.Errorf("connect ledger: %w", err)
	}
	return nil
}

func (s *Service) markRekeyed(address string) {
	s.mu.Lock()
	s.rekeyed[address] = true
	s.mu.Unlock()
}

func (s *Service) clearRekeyed(address string) {
	s.mu.Lock()
	delete(s.rekeyed, address)
	s.mu.Unlock()
}

func (s *Service) isRekeyed(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rekeyed[address]
}
