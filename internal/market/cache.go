package market

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"declaw-backend/internal/domain"
)

// DefaultCacheTTL bounds how long a snapshot set is served without a
// fresh upstream fetch.
const DefaultCacheTTL = 60 * time.Second

// CachedClient wraps Client with a short TTL cache keyed by the address
// set, so repeated requests for the same set inside the TTL do not hit
// the upstream again.
type CachedClient struct {
	client   *Client
	ttl      time.Duration
	now      func() time.Time
	observer func(hit bool)

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snapshots map[string]domain.TokenMarketSnapshot
	fetchedAt time.Time
}

// CacheOption configures a CachedClient.
type CacheOption func(*CachedClient)

// WithCacheObserver registers a callback invoked once per lookup with
// whether it was served from cache. Used for instrumentation.
func WithCacheObserver(fn func(hit bool)) CacheOption {
	return func(c *CachedClient) {
		c.observer = fn
	}
}

// NewCachedClient creates a caching wrapper around a market client.
// A non-positive ttl falls back to DefaultCacheTTL.
func NewCachedClient(client *Client, ttl time.Duration, opts ...CacheOption) *CachedClient {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &CachedClient{
		client:  client,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSnapshots returns cached snapshots for the address set when fresh,
// otherwise fetches and caches a new set. An upstream pass that yields an
// empty map is not cached, so the next call retries.
func (c *CachedClient) FetchSnapshots(ctx context.Context, mintAddresses []string) map[string]domain.TokenMarketSnapshot {
	key := cacheKey(mintAddresses)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	hit := ok && c.now().Sub(entry.fetchedAt) < c.ttl
	if c.observer != nil {
		c.observer(hit)
	}
	if hit {
		return entry.snapshots
	}

	snapshots := c.client.FetchSnapshots(ctx, mintAddresses)
	if len(snapshots) > 0 {
		c.mu.Lock()
		c.entries[key] = cacheEntry{snapshots: snapshots, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return snapshots
}

// cacheKey builds an order-insensitive key for an address set.
func cacheKey(addrs []string) string {
	unique := dedupe(addrs)
	sort.Strings(unique)
	return strings.Join(unique, ",")
}
