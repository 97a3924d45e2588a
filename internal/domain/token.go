package domain

// DeployedToken is one locally recorded token launch.
// Corresponds to deployed_tokens table in PostgreSQL.
type DeployedToken struct {
	ID                   string  // PRIMARY KEY, uuid
	Name                 string
	Ticker               string
	Description          *string // nullable
	LogoURL              *string // nullable
	MintAddress          string  // on-chain mint, join key for market data
	PumpURL              string  // external detail page
	CreatorWallet        string
	DevBuyAmountSol      *float64 // nullable
	TransactionSignature *string  // nullable
	AgentID              *string  // nullable, owning assistant persona
	CreatedAt            int64    // Unix timestamp in milliseconds
}

// TokenMarketSnapshot is the market view of one mint at one fetch.
// Snapshots are ephemeral: recomputed every batch fetch, never persisted
// except as history rows in ClickHouse.
type TokenMarketSnapshot struct {
	MintAddress   string   `json:"mintAddress"`
	PriceUsd      string   `json:"priceUsd"`                // decimal string, empty when unknown
	MarketCapUsd  *float64 `json:"marketCapUsd"`            // nil when both marketCap and fdv absent
	PairCreatedAt *int64   `json:"pairCreatedAt"`           // epoch ms, nil when unknown
	LiquidityUsd  *float64 `json:"liquidityUsd,omitempty"`  // tie-break key only, never displayed
}

// SnapshotObservation is one historical market snapshot row.
// Corresponds to market_snapshots table in ClickHouse.
type SnapshotObservation struct {
	MintAddress   string
	ObservedAtMs  int64 // when the snapshot was fetched
	PriceUsd      string
	MarketCapUsd  *float64
	LiquidityUsd  *float64
	PairCreatedAt *int64
}

// DisplayedTokenRow is the merge of a deploy record with its market snapshot.
// Rows without a snapshot keep placeholder display fields; a row is never
// dropped for lacking market data.
type DisplayedTokenRow struct {
	Name             string `json:"name"`
	Ticker           string `json:"ticker"`
	MintAddress      string `json:"mintAddress"`
	LogoURL          string `json:"logoUrl,omitempty"`
	DetailURL        string `json:"detailUrl,omitempty"`
	PriceDisplay     string `json:"price"`
	MarketCapDisplay string `json:"marketCap"`
	AgeDisplay       string `json:"age"`
	ProgressPercent  int    `json:"progressPercent"` // 0-100, 100 reserved for graduated
	HasMarketData    bool   `json:"hasMarketData"`
	Fallback         bool   `json:"fallback"` // true for static showcase entries
}
