package format

import (
	"testing"
	"time"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "—"},
		{"not-a-number", "—"},
		{"1234.5", "$1234.50"},
		{"1", "$1.00"},
		{"0.5", "$0.5000"},
		{"0.01", "$0.0100"},
		{"0.000542", "$0.000542"},
		{"0.0001", "$0.000100"},
		{"0.000000042", "$4.20e-08"},
	}

	for _, tt := range tests {
		if got := Price(tt.in); got != tt.want {
			t.Errorf("Price(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarketCap(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_500_000_000, "$2.50B"},
		{42_500_000, "$42.50M"},
		{89_200, "$89.20K"},
		{1000, "$1.00K"},
		{999, "$999.00"},
		{0, "$0.00"},
	}

	for _, tt := range tests {
		if got := MarketCap(tt.in); got != tt.want {
			t.Errorf("MarketCap(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	ms := func(t time.Time) *int64 {
		v := t.UnixMilli()
		return &v
	}

	tests := []struct {
		name string
		ts   *int64
		want string
	}{
		{"nil", nil, "—"},
		{"seconds ago", ms(now.Add(-30 * time.Second)), "just now"},
		{"minutes ago", ms(now.Add(-5 * time.Minute)), "5m ago"},
		{"hours ago", ms(now.Add(-5 * time.Hour)), "5h ago"},
		{"days ago", ms(now.Add(-72 * time.Hour)), "3d ago"},
		{"beyond a month", ms(now.Add(-90 * 24 * time.Hour)), "3/17/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ageAt(tt.ts, now); got != tt.want {
				t.Errorf("ageAt = %q, want %q", got, tt.want)
			}
		})
	}
}
