package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/storage"
)

// SnapshotHistoryStore implements storage.SnapshotHistoryStore using
// ClickHouse. Each batch fetch appends one observation per mint; the
// table is never updated in place.
type SnapshotHistoryStore struct {
	conn *Conn
}

// NewSnapshotHistoryStore creates a new SnapshotHistoryStore.
func NewSnapshotHistoryStore(conn *Conn) *SnapshotHistoryStore {
	return &SnapshotHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotHistoryStore = (*SnapshotHistoryStore)(nil)

// InsertBulk appends one observation per snapshot at observedAtMs.
func (s *SnapshotHistoryStore) InsertBulk(ctx context.Context, observedAtMs int64, snapshots []domain.TokenMarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if observedAtMs <= 0 {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_snapshots (
			mint_address, observed_at_ms, price_usd, market_cap_usd,
			liquidity_usd, pair_created_at_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		if snap.MintAddress == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			snap.MintAddress, uint64(observedAtMs), snap.PriceUsd,
			snap.MarketCapUsd, snap.LiquidityUsd, snap.PairCreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves all observations for a mint, ordered by
// observation time ASC.
func (s *SnapshotHistoryStore) GetByMint(ctx context.Context, mint string) ([]*domain.SnapshotObservation, error) {
	query := `
		SELECT mint_address, observed_at_ms, price_usd, market_cap_usd,
		       liquidity_usd, pair_created_at_ms
		FROM market_snapshots
		WHERE mint_address = ?
		ORDER BY observed_at_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by mint: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByTimeRange retrieves observations for a mint within [start, end]
// (inclusive, milliseconds).
func (s *SnapshotHistoryStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.SnapshotObservation, error) {
	query := `
		SELECT mint_address, observed_at_ms, price_usd, market_cap_usd,
		       liquidity_usd, pair_created_at_ms
		FROM market_snapshots
		WHERE mint_address = ? AND observed_at_ms >= ? AND observed_at_ms <= ?
		ORDER BY observed_at_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query snapshots by time range: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

func scanObservations(rows driver.Rows) ([]*domain.SnapshotObservation, error) {
	var result []*domain.SnapshotObservation
	for rows.Next() {
		var (
			obs        domain.SnapshotObservation
			observedAt uint64
		)
		err := rows.Scan(
			&obs.MintAddress, &observedAt, &obs.PriceUsd,
			&obs.MarketCapUsd, &obs.LiquidityUsd, &obs.PairCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot observation: %w", err)
		}
		obs.ObservedAtMs = int64(observedAt)
		result = append(result, &obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot observations: %w", err)
	}
	return result, nil
}
