package market

import (
	"context"
	"strings"

	"declaw-backend/internal/domain"
)

// FetchSnapshots fetches market snapshots for a set of mint addresses.
// Addresses are deduplicated, partitioned into batches of at most
// BatchSize and queried batch by batch. An address with no matching pair
// is absent from the result map; callers must treat a missing key as
// "unknown", never as zero.
func (c *Client) FetchSnapshots(ctx context.Context, mintAddresses []string) map[string]domain.TokenMarketSnapshot {
	result := make(map[string]domain.TokenMarketSnapshot)

	unique := dedupe(mintAddresses)
	if len(unique) == 0 {
		return result
	}

	for start := 0; start < len(unique); start += BatchSize {
		end := start + BatchSize
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]

		pairs, err := c.fetchPairs(ctx, batch)
		if err != nil {
			c.logger.Printf("market batch of %d failed: %v", len(batch), err)
			continue
		}

		for _, mint := range batch {
			pair, ok := bestPair(pairs, mint)
			if !ok {
				continue
			}
			result[mint] = snapshotFromPair(mint, pair)
		}
	}

	return result
}

// dedupe removes empty and repeated addresses, preserving first-seen order.
func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	var unique []string
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		unique = append(unique, a)
	}
	return unique
}

// bestPair selects the canonical pair for a mint: among pairs naming the
// mint as base or quote (case-insensitive), the one with the highest USD
// liquidity wins. Missing liquidity counts as zero; exact liquidity ties
// break by pair address so selection stays deterministic.
func bestPair(pairs []Pair, mint string) (Pair, bool) {
	normalized := strings.ToLower(strings.TrimSpace(mint))

	var best Pair
	found := false
	for _, p := range pairs {
		if !strings.EqualFold(p.BaseToken.Address, normalized) && !strings.EqualFold(p.QuoteToken.Address, normalized) {
			continue
		}
		if !found || betterPair(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func betterPair(a, b Pair) bool {
	la, lb := liquidityUsd(a), liquidityUsd(b)
	if la != lb {
		return la > lb
	}
	return a.PairAddress > b.PairAddress
}

func liquidityUsd(p Pair) float64 {
	if p.Liquidity == nil || p.Liquidity.Usd == nil {
		return 0
	}
	return *p.Liquidity.Usd
}

// snapshotFromPair reduces the chosen pair to a snapshot. Market cap
// falls back to fully-diluted valuation; both absent leaves it nil.
func snapshotFromPair(mint string, p Pair) domain.TokenMarketSnapshot {
	snap := domain.TokenMarketSnapshot{
		MintAddress:   mint,
		PriceUsd:      p.PriceUsd,
		PairCreatedAt: p.PairCreatedAt,
	}

	switch {
	case p.MarketCap != nil:
		snap.MarketCapUsd = p.MarketCap
	case p.Fdv != nil:
		snap.MarketCapUsd = p.Fdv
	}

	if p.Liquidity != nil && p.Liquidity.Usd != nil {
		snap.LiquidityUsd = p.Liquidity.Usd
	}
	return snap
}
