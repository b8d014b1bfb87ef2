// Package inventory talks to the external vanity-address inventory service.
// Every request carries an x-hash header so the service can verify the caller
// knows the shared secret; the hashed verb tag differs per operation, so a
// captured search hash cannot be replayed as a purge.
package inventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vanity-address-api/internal/domain"
)

const hashHeader = "x-hash"

// ServiceError is returned for any non-2xx inventory response.
// There is no local fallback, so callers see it as-is.
type ServiceError struct {
	Op         string
	StatusCode int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("inventory %s failed with status %d", e.Op, e.StatusCode)
}

// Client is the authenticated HTTP client for the inventory service.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Search returns the available vanity candidates matching term.
func (c *Client) Search(ctx context.Context, term string) ([]domain.VanityCandidate, error) {
	res, err := c.do(ctx, http.MethodGet, "search", term)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	var candidates []domain.VanityCandidate
	if err := json.NewDecoder(res.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return candidates, nil
}

// Purge removes a sold address from the inventory so it can never be offered again.
func (c *Client) Purge(ctx context.Context, account string) error {
	res, err := c.do(ctx, http.MethodDelete, "purge", account)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// do issues one authenticated request. Single attempt; retry policy is the
// caller's concern.
func (c *Client) do(ctx context.Context, method, verb, subject string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/%s/%s", c.baseURL, verb, subject), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(hashHeader, c.hash(verb, subject))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", verb, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, &ServiceError{Op: verb, StatusCode: res.StatusCode}
	}
	return res, nil
}

func (c *Client) hash(verb, subject string) string {
	sum := sha256.Sum256([]byte(verb + subject + c.secret))
	return hex.EncodeToString(sum[:])
}
