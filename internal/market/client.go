// Package market fetches token market data from a DexScreener-style
// pair API and reduces it to per-mint snapshots.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.dexscreener.com"
	DefaultChain   = "solana"
	DefaultTimeout = 8 * time.Second

	// BatchSize is the upstream limit on addresses per request.
	BatchSize = 30
)

// Client queries the market-data API. Batch failures are logged and
// skipped, never propagated: a failing batch leaves its addresses absent
// from the result map and the remaining batches still run.
type Client struct {
	baseURL string
	chain   string
	client  *http.Client
	logger  *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithChain sets the chain path segment.
func WithChain(chain string) ClientOption {
	return func(c *Client) {
		c.chain = chain
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a market-data client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		chain:   DefaultChain,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pair is one trading-pair record as returned by the upstream API.
type Pair struct {
	ChainID       string     `json:"chainId"`
	DexID         string     `json:"dexId"`
	PairAddress   string     `json:"pairAddress"`
	BaseToken     PairToken  `json:"baseToken"`
	QuoteToken    PairToken  `json:"quoteToken"`
	PriceNative   string     `json:"priceNative"`
	PriceUsd      string     `json:"priceUsd"`
	Liquidity     *Liquidity `json:"liquidity"`
	Fdv           *float64   `json:"fdv"`
	MarketCap     *float64   `json:"marketCap"`
	PairCreatedAt *int64     `json:"pairCreatedAt"`
}

// PairToken identifies one side of a trading pair.
type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Liquidity holds pool liquidity figures.
type Liquidity struct {
	Usd   *float64 `json:"usd"`
	Base  float64  `json:"base"`
	Quote float64  `json:"quote"`
}

// fetchPairs issues one batch request and decodes the pair list.
// The response body must be a JSON array; anything else fails the batch.
func (c *Client) fetchPairs(ctx context.Context, batch []string) ([]Pair, error) {
	url := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, c.chain, strings.Join(batch, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var pairs []Pair
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("decode pairs: %w", err)
	}
	return pairs, nil
}
