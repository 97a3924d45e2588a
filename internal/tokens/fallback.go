package tokens

import "declaw-backend/internal/domain"

// FallbackEntries returns the static showcase tokens appended after real
// deploy records so the token explorer never renders empty. Their mint
// addresses are not real, so they never match a market snapshot.
func FallbackEntries() []domain.DeployedToken {
	return []domain.DeployedToken{
		{
			ID:          "fallback-pumpster",
			Name:        "PUMPSTER",
			Ticker:      "PUMP",
			MintAddress: "demo-pumpster",
			PumpURL:     "https://pump.fun",
		},
		{
			ID:          "fallback-degen-cat",
			Name:        "DEGEN CAT",
			Ticker:      "DCAT",
			MintAddress: "demo-degen-cat",
			PumpURL:     "https://pump.fun",
		},
		{
			ID:          "fallback-moon-frog",
			Name:        "MOON FROG",
			Ticker:      "MFROG",
			MintAddress: "demo-moon-frog",
			PumpURL:     "https://pump.fun",
		},
	}
}
