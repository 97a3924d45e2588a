package memory

import (
	"context"
	"sort"
	"sync"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/storage"
)

// DeployedTokenStore is an in-memory implementation of
// storage.DeployedTokenStore. It backs deployments when no Postgres DSN
// is configured; records do not survive a restart.
type DeployedTokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DeployedToken // keyed by mint address
}

// NewDeployedTokenStore creates a new in-memory deployed token store.
func NewDeployedTokenStore() *DeployedTokenStore {
	return &DeployedTokenStore{
		data: make(map[string]*domain.DeployedToken),
	}
}

// Compile-time interface check.
var _ storage.DeployedTokenStore = (*DeployedTokenStore)(nil)

// Insert records a launched token. Returns ErrDuplicateKey if the mint
// address is already recorded.
func (s *DeployedTokenStore) Insert(_ context.Context, t *domain.DeployedToken) error {
	if err := storage.ValidateDeployedToken(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.MintAddress]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.MintAddress] = &tokenCopy
	return nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if
// not recorded.
func (s *DeployedTokenStore) GetByMint(_ context.Context, mint string) (*domain.DeployedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// GetAll retrieves every recorded token, newest first.
func (s *DeployedTokenStore) GetAll(_ context.Context) ([]*domain.DeployedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DeployedToken, 0, len(s.data))
	for _, t := range s.data {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}
	sortNewestFirst(result)
	return result, nil
}

// GetByAgentID retrieves tokens launched by one agent, newest first.
func (s *DeployedTokenStore) GetByAgentID(_ context.Context, agentID string) ([]*domain.DeployedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DeployedToken
	for _, t := range s.data {
		if t.AgentID != nil && *t.AgentID == agentID {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// GetByCreator retrieves tokens launched from one wallet, newest first.
func (s *DeployedTokenStore) GetByCreator(_ context.Context, wallet string) ([]*domain.DeployedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DeployedToken
	for _, t := range s.data {
		if t.CreatorWallet == wallet {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(tokens []*domain.DeployedToken) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt > tokens[j].CreatedAt
	})
}
