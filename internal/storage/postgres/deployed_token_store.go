package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/storage"
)

// unique_violation, raised on a duplicate mint_address.
const pgErrUniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// DeployedTokenStore implements storage.DeployedTokenStore using PostgreSQL.
type DeployedTokenStore struct {
	pool *Pool
}

// NewDeployedTokenStore creates a new DeployedTokenStore.
func NewDeployedTokenStore(pool *Pool) *DeployedTokenStore {
	return &DeployedTokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DeployedTokenStore = (*DeployedTokenStore)(nil)

// Insert records a launched token. Returns ErrDuplicateKey if the mint
// address is already recorded.
func (s *DeployedTokenStore) Insert(ctx context.Context, t *domain.DeployedToken) error {
	if err := storage.ValidateDeployedToken(t); err != nil {
		return err
	}

	query := `
		INSERT INTO deployed_tokens (
			id, name, ticker, description, logo_url, mint_address,
			pump_url, creator_wallet, dev_buy_amount_sol,
			transaction_signature, agent_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		t.Name,
		t.Ticker,
		t.Description,
		t.LogoURL,
		t.MintAddress,
		t.PumpURL,
		t.CreatorWallet,
		t.DevBuyAmountSol,
		t.TransactionSignature,
		t.AgentID,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert deployed token: %w", err)
	}
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if
// not recorded.
func (s *DeployedTokenStore) GetByMint(ctx context.Context, mint string) (*domain.DeployedToken, error) {
	query := selectColumns + `
		WHERE mint_address = $1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanDeployedToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get deployed token by mint: %w", err)
	}
	return t, nil
}

// GetAll retrieves every recorded token, newest first.
func (s *DeployedTokenStore) GetAll(ctx context.Context) ([]*domain.DeployedToken, error) {
	query := selectColumns + `
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all deployed tokens: %w", err)
	}
	defer rows.Close()

	return collectDeployedTokens(rows)
}

// GetByAgentID retrieves tokens launched by one agent, newest first.
func (s *DeployedTokenStore) GetByAgentID(ctx context.Context, agentID string) ([]*domain.DeployedToken, error) {
	query := selectColumns + `
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("get deployed tokens by agent: %w", err)
	}
	defer rows.Close()

	return collectDeployedTokens(rows)
}

// GetByCreator retrieves tokens launched from one wallet, newest first.
func (s *DeployedTokenStore) GetByCreator(ctx context.Context, wallet string) ([]*domain.DeployedToken, error) {
	query := selectColumns + `
		WHERE creator_wallet = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get deployed tokens by creator: %w", err)
	}
	defer rows.Close()

	return collectDeployedTokens(rows)
}

const selectColumns = `
	SELECT id, name, ticker, description, logo_url, mint_address,
	       pump_url, creator_wallet, dev_buy_amount_sol,
	       transaction_signature, agent_id, created_at
	FROM deployed_tokens
`

// scanDeployedToken scans a single row into DeployedToken.
func scanDeployedToken(row pgx.Row) (*domain.DeployedToken, error) {
	var t domain.DeployedToken

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Ticker,
		&t.Description,
		&t.LogoURL,
		&t.MintAddress,
		&t.PumpURL,
		&t.CreatorWallet,
		&t.DevBuyAmountSol,
		&t.TransactionSignature,
		&t.AgentID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func collectDeployedTokens(rows pgx.Rows) ([]*domain.DeployedToken, error) {
	var result []*domain.DeployedToken
	for rows.Next() {
		t, err := scanDeployedToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployed token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployed tokens: %w", err)
	}
	return result, nil
}
