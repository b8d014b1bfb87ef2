package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nhooyr.io/websocket"
)

// asfDisableMaster is the account-set flag that disables the master key.
const asfDisableMaster = 4

// WSClient talks to a ledger node over its websocket command interface.
// One command is in flight at a time; the mutex serialises the
// write-request/read-response round trip on the shared connection.
type WSClient struct {
	url string

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int
}

func NewWSClient(url string) *WSClient {
	return &WSClient{url: url}
}

func (c *WSClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial ledger node: %w", err)
	}
	conn.SetReadLimit(1 << 20)
	c.conn = conn
	return nil
}

func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears down the websocket connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close(websocket.StatusNormalClosure, "shutdown")
	c.conn = nil
	return err
}

// PrepareSettings builds the unsigned settings transaction locally; the node
// fills in sequence and fee during signing.
func (c *WSClient) PrepareSettings(_ context.Context, account string, settings Settings) (string, error) {
	tx := map[string]interface{}{
		"Account": account,
	}
	switch {
	case settings.DisableMaster:
		tx["TransactionType"] = "AccountSet"
		tx["SetFlag"] = asfDisableMaster
	case settings.RegularKey != "":
		tx["TransactionType"] = "SetRegularKey"
		tx["RegularKey"] = settings.RegularKey
	default:
		return "", fmt.Errorf("empty settings delta for account %s", account)
	}
	b, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *WSClient) Sign(ctx context.Context, txJSON, secret string) (SignedTx, error) {
	var tx json.RawMessage = []byte(txJSON)
	result, err := c.command(ctx, map[string]interface{}{
		"command": "sign",
		"tx_json": tx,
		"secret":  secret,
	})
	if err != nil {
		return SignedTx{}, err
	}
	var parsed struct {
		TxBlob string `json:"tx_blob"`
		TxJSON struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return SignedTx{}, fmt.Errorf("decode sign result: %w", err)
	}
	return SignedTx{Blob: parsed.TxBlob, Hash: parsed.TxJSON.Hash}, nil
}

func (c *WSClient) Submit(ctx context.Context, blob string) (SubmitResult, error) {
	result, err := c.command(ctx, map[string]interface{}{
		"command": "submit",
		"tx_blob": blob,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	var parsed struct {
		EngineResult string `json:"engine_result"`
		TxJSON       struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return SubmitResult{}, fmt.Errorf("decode submit result: %w", err)
	}
	return SubmitResult{ResultCode: parsed.EngineResult, TxID: parsed.TxJSON.Hash}, nil
}

func (c *WSClient) Trustlines(ctx context.Context, account, currency string) ([]Trustline, error) {
	result, err := c.command(ctx, map[string]interface{}{
		"command": "account_lines",
		"account": account,
	})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Lines []Trustline `json:"lines"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("decode account_lines result: %w", err)
	}
	if currency == "" {
		return parsed.Lines, nil
	}
	var filtered []Trustline
	for _, l := range parsed.Lines {
		if l.Currency == currency {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}

type commandResponse struct {
	ID           int             `json:"id"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorMessage string          `json:"error_message"`
	Error        string          `json:"error"`
}

// command runs one request/response round trip. Responses are correlated by
// id; unsolicited stream messages with other ids are skipped.
func (c *WSClient) command(ctx context.Context, req map[string]interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, fmt.Errorf("ledger node not connected")
	}

	c.nextID++
	req["id"] = c.nextID
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := c.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		c.dropConnLocked()
		return nil, fmt.Errorf("write %v command: %w", req["command"], err)
	}

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.dropConnLocked()
			return nil, fmt.Errorf("read %v response: %w", req["command"], err)
		}
		var res commandResponse
		if err := json.Unmarshal(data, &res); err != nil {
			continue
		}
		if res.ID != c.nextID {
			continue
		}
		if res.Status != "success" {
			msg := res.ErrorMessage
			if msg == "" {
				msg = res.Error
			}
			return nil, fmt.Errorf("%v command rejected: %s", req["command"], msg)
		}
		return res.Result, nil
	}
}

// dropConnLocked discards a broken connection so the next Connect redials.
// Caller must hold c.mu.
func (c *WSClient) dropConnLocked() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusInternalError, "io failure")
		c.conn = nil
	}
}
