// Package ledger wraps the ledger network node behind a typed client.
// Prepare/sign/submit are consumed as black-box primitives; the node's own
// timeouts bound a hung submission.
package ledger

import "context"

// Settings is the account-settings delta a transfer applies: point the
// account at a new regular key, or disable its master key.
type Settings struct {
	RegularKey    string
	DisableMaster bool
}

// SignedTx is the result of signing a prepared transaction.
type SignedTx struct {
	Blob string
	Hash string
}

// SubmitResult carries the node's engine result for a submitted blob.
type SubmitResult struct {
	ResultCode string
	TxID       string
}

// Trustline is one line from the issuer's trustline listing. Limit doubles as
// the quoted exchange rate for currency conversion.
type Trustline struct {
	Account  string `json:"account"`
	Currency string `json:"currency"`
	Limit    string `json:"limit"`
	Balance  string `json:"balance"`
}

// Client is the ledger node connection used by the ownership-transfer flow.
type Client interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	// PrepareSettings builds the unsigned settings transaction for account.
	PrepareSettings(ctx context.Context, account string, settings Settings) (string, error)
	// Sign signs the prepared transaction JSON with the account secret.
	Sign(ctx context.Context, txJSON, secret string) (SignedTx, error)
	// Submit sends a signed blob and returns the engine result.
	Submit(ctx context.Context, blob string) (SubmitResult, error)
	// Trustlines lists account's trustlines, optionally filtered by currency.
	Trustlines(ctx context.Context, account, currency string) ([]Trustline, error)
}
