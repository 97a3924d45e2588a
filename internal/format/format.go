// Package format renders market numbers for display: price precision
// tiers, K/M/B market caps and relative pair ages.
package format

import (
	"fmt"
	"strconv"
	"time"
)

// Placeholder is rendered when a value is unknown.
const Placeholder = "—"

// Price renders a decimal price string with magnitude-dependent precision.
// Unknown or unparseable input renders the placeholder.
func Price(priceUsd string) string {
	if priceUsd == "" {
		return Placeholder
	}
	n, err := strconv.ParseFloat(priceUsd, 64)
	if err != nil {
		return Placeholder
	}
	switch {
	case n >= 1:
		return fmt.Sprintf("$%.2f", n)
	case n >= 0.01:
		return fmt.Sprintf("$%.4f", n)
	case n >= 0.0001:
		return fmt.Sprintf("$%.6f", n)
	default:
		return fmt.Sprintf("$%.2e", n)
	}
}

// MarketCap renders a USD market cap with K/M/B suffixes at 2 decimals.
func MarketCap(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("$%.2fK", n/1e3)
	default:
		return fmt.Sprintf("$%.2f", n)
	}
}

// Age renders the elapsed time since an epoch-millisecond timestamp.
// Nil renders the placeholder.
func Age(ts *int64) string {
	return ageAt(ts, time.Now())
}

func ageAt(ts *int64, now time.Time) string {
	if ts == nil {
		return Placeholder
	}
	created := time.UnixMilli(*ts)
	mins := int(now.Sub(created).Minutes())
	hours := mins / 60
	days := hours / 24
	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 30:
		return fmt.Sprintf("%dd ago", days)
	default:
		return created.Format("1/2/2006")
	}
}

// ClockTime renders a timestamp as a short locale clock time, the
// presentation form used next to feed items.
func ClockTime(t time.Time) string {
	return t.Format("03:04 PM")
}
