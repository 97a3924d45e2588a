// Package tokens builds the displayed token list by merging recorded
// deploys with live market snapshots.
package tokens

import (
	"math"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/format"
)

// DefaultGraduationThreshold is the market cap in USD at which a token
// counts as graduated. Deployments may override it.
const DefaultGraduationThreshold = 69_000

// DeriveProgress converts a market cap into a 0-100 graduation
// percentage. Unknown or non-positive caps yield 0. Values below the
// threshold are clamped to 99 so that 100 is reserved for tokens that
// actually reached it.
func DeriveProgress(marketCapUsd *float64, graduationThreshold float64) int {
	if marketCapUsd == nil || *marketCapUsd <= 0 || graduationThreshold <= 0 {
		return 0
	}
	if *marketCapUsd >= graduationThreshold {
		return 100
	}
	pct := int(math.Round(*marketCapUsd / graduationThreshold * 100))
	if pct > 99 {
		pct = 99
	}
	return pct
}

// BuildRows merges deploy records and static fallback entries with market
// snapshots. Local entries come first in their given order, then
// fallbacks. A row whose mint has no snapshot keeps placeholder display
// fields and zero progress; rows are never dropped for lacking market
// data.
func BuildRows(
	local []domain.DeployedToken,
	fallback []domain.DeployedToken,
	snapshots map[string]domain.TokenMarketSnapshot,
	graduationThreshold float64,
) []domain.DisplayedTokenRow {
	rows := make([]domain.DisplayedTokenRow, 0, len(local)+len(fallback))
	for _, entry := range local {
		rows = append(rows, buildRow(entry, snapshots, graduationThreshold, false))
	}
	for _, entry := range fallback {
		rows = append(rows, buildRow(entry, snapshots, graduationThreshold, true))
	}
	return rows
}

func buildRow(
	entry domain.DeployedToken,
	snapshots map[string]domain.TokenMarketSnapshot,
	graduationThreshold float64,
	isFallback bool,
) domain.DisplayedTokenRow {
	row := domain.DisplayedTokenRow{
		Name:             entry.Name,
		Ticker:           entry.Ticker,
		MintAddress:      entry.MintAddress,
		DetailURL:        entry.PumpURL,
		PriceDisplay:     format.Placeholder,
		MarketCapDisplay: format.Placeholder,
		AgeDisplay:       format.Placeholder,
		Fallback:         isFallback,
	}
	if entry.LogoURL != nil {
		row.LogoURL = *entry.LogoURL
	}

	snap, ok := snapshots[entry.MintAddress]
	if !ok {
		return row
	}

	row.HasMarketData = true
	row.PriceDisplay = format.Price(snap.PriceUsd)
	if snap.MarketCapUsd != nil {
		row.MarketCapDisplay = format.MarketCap(*snap.MarketCapUsd)
	}
	row.AgeDisplay = format.Age(snap.PairCreatedAt)
	row.ProgressPercent = DeriveProgress(snap.MarketCapUsd, graduationThreshold)
	return row
}
