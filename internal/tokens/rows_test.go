package tokens

import (
	"testing"

	"declaw-backend/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestDeriveProgress(t *testing.T) {
	tests := []struct {
		name      string
		marketCap *float64
		threshold float64
		want      int
	}{
		{"nil cap", nil, 50_000, 0},
		{"zero cap", f(0), 50_000, 0},
		{"negative cap", f(-5), 50_000, 0},
		{"at threshold", f(50_000), 50_000, 100},
		{"above threshold", f(100_000), 50_000, 100},
		{"halfway", f(25_000), 50_000, 50},
		{"just below threshold clamps to 99", f(49_999), 50_000, 99},
		{"tiny cap rounds", f(100), 50_000, 0},
		{"zero threshold", f(1000), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveProgress(tt.marketCap, tt.threshold); got != tt.want {
				t.Errorf("DeriveProgress = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildRows_MergesSnapshots(t *testing.T) {
	createdAt := int64(1718000000000)
	local := []domain.DeployedToken{
		{ID: "1", Name: "ALPHA", Ticker: "ALPHA", MintAddress: "mintA", PumpURL: "https://pump.fun/mintA"},
		{ID: "2", Name: "BETA", Ticker: "BETA", MintAddress: "mintB", PumpURL: "https://pump.fun/mintB"},
	}
	snaps := map[string]domain.TokenMarketSnapshot{
		"mintA": {
			MintAddress:   "mintA",
			PriceUsd:      "0.000542",
			MarketCapUsd:  f(34_500),
			PairCreatedAt: &createdAt,
		},
	}

	rows := BuildRows(local, FallbackEntries(), snaps, DefaultGraduationThreshold)

	if len(rows) != 5 {
		t.Fatalf("expected 2 local + 3 fallback rows, got %d", len(rows))
	}

	withData := rows[0]
	if !withData.HasMarketData {
		t.Error("mintA row should carry market data")
	}
	if withData.PriceDisplay != "$0.000542" {
		t.Errorf("unexpected price display: %q", withData.PriceDisplay)
	}
	if withData.MarketCapDisplay != "$34.50K" {
		t.Errorf("unexpected market cap display: %q", withData.MarketCapDisplay)
	}
	if withData.ProgressPercent != 50 {
		t.Errorf("unexpected progress: %d", withData.ProgressPercent)
	}

	withoutData := rows[1]
	if withoutData.HasMarketData {
		t.Error("mintB row should not claim market data")
	}
	if withoutData.PriceDisplay != "—" || withoutData.MarketCapDisplay != "—" || withoutData.AgeDisplay != "—" {
		t.Errorf("missing snapshot should degrade to placeholders: %+v", withoutData)
	}
	if withoutData.ProgressPercent != 0 {
		t.Errorf("missing snapshot should yield zero progress, got %d", withoutData.ProgressPercent)
	}
}

func TestBuildRows_OrderAndFallbackFlag(t *testing.T) {
	local := []domain.DeployedToken{
		{ID: "1", Name: "FIRST", Ticker: "ONE", MintAddress: "mint1"},
		{ID: "2", Name: "SECOND", Ticker: "TWO", MintAddress: "mint2"},
	}

	rows := BuildRows(local, FallbackEntries(), nil, DefaultGraduationThreshold)

	if rows[0].Name != "FIRST" || rows[1].Name != "SECOND" {
		t.Error("local entries should lead in their given order")
	}
	for i, row := range rows {
		wantFallback := i >= len(local)
		if row.Fallback != wantFallback {
			t.Errorf("row %d fallback flag = %v, want %v", i, row.Fallback, wantFallback)
		}
	}
}

func TestBuildRows_EmptyInputs(t *testing.T) {
	if rows := BuildRows(nil, nil, nil, DefaultGraduationThreshold); len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
