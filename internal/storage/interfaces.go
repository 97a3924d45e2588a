package storage

import (
	"context"

	"declaw-backend/internal/domain"
)

// DeployedTokenStore provides access to deployed_tokens storage.
type DeployedTokenStore interface {
	// Insert records a launched token. Returns ErrDuplicateKey if the
	// mint address is already recorded, ErrInvalidInput if required
	// fields are missing or the mint/creator addresses do not validate.
	Insert(ctx context.Context, t *domain.DeployedToken) error

	// GetByMint retrieves a token by mint address. Returns ErrNotFound
	// if not recorded.
	GetByMint(ctx context.Context, mint string) (*domain.DeployedToken, error)

	// GetAll retrieves every recorded token, newest first.
	GetAll(ctx context.Context) ([]*domain.DeployedToken, error)

	// GetByAgentID retrieves tokens launched by one agent, newest first.
	GetByAgentID(ctx context.Context, agentID string) ([]*domain.DeployedToken, error)

	// GetByCreator retrieves tokens launched from one wallet, newest first.
	GetByCreator(ctx context.Context, wallet string) ([]*domain.DeployedToken, error)
}

// ValidateDeployedToken enforces the insert invariants shared by all
// DeployedTokenStore implementations: required fields present and
// addresses well-formed.
func ValidateDeployedToken(t *domain.DeployedToken) error {
	if t == nil || t.ID == "" || t.Name == "" || t.Ticker == "" {
		return ErrInvalidInput
	}
	if !domain.ValidMintAddress(t.MintAddress) {
		return ErrInvalidInput
	}
	if !domain.ValidWalletAddress(t.CreatorWallet) {
		return ErrInvalidInput
	}
	return nil
}

// SnapshotHistoryStore provides append-only access to market snapshot
// history. Rows are observations, not current state; duplicates across
// observation times are expected.
type SnapshotHistoryStore interface {
	// InsertBulk appends one observation per snapshot at observedAtMs.
	InsertBulk(ctx context.Context, observedAtMs int64, snapshots []domain.TokenMarketSnapshot) error

	// GetByMint retrieves all observations for a mint, ordered by
	// observation time ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.SnapshotObservation, error)

	// GetByTimeRange retrieves observations for a mint within
	// [start, end] (inclusive, milliseconds).
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.SnapshotObservation, error)
}
