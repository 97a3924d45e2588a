// Package launch proxies transaction building to the trade API. The
// upstream returns a raw serialized transaction; callers get it back
// base64-encoded for client-side signing. No signing or submission
// happens here.
package launch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default client configuration.
const (
	DefaultTradeURL = "https://pumpportal.fun/api/trade-local"
	DefaultTimeout  = 15 * time.Second

	maxResponseBytes = 1 << 20 // raw transactions are tiny, cap reads anyway
)

// UpstreamError is a non-200 reply from the trade API. Status and body
// are preserved so handlers can relay them to the caller, keeping a 400
// for bad trade parameters distinguishable from a gateway failure.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("trade api returned status %d: %s", e.Status, e.Body)
}

// Client builds trade transactions through the upstream API.
type Client struct {
	tradeURL   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTradeURL overrides the upstream trade endpoint.
func WithTradeURL(u string) Option {
	return func(c *Client) {
		c.tradeURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a trade proxy client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		tradeURL:   DefaultTradeURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildTransaction forwards the trade request body verbatim and returns
// the serialized transaction base64-encoded. The request body is passed
// through untouched so upstream request schema changes never require a
// release here.
func (c *Client) BuildTransaction(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tradeURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create trade request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute trade request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read trade response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode, Body: truncate(raw, 200)}
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("trade api returned empty transaction")
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
