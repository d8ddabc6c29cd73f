package memory

import (
	"context"
	"sort"
	"sync"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AccountRecord // keyed by address
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[string]*domain.AccountRecord),
	}
}

var _ storage.AccountStore = (*AccountStore)(nil)

// Upsert inserts or refreshes an account record. The pool flag is sticky:
// once set it survives later upserts that carry false.
func (s *AccountStore) Upsert(_ context.Context, a *domain.AccountRecord) error {
	if a == nil || a.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *a
	if existing, ok := s.data[a.Address]; ok {
		copy.IsPool = copy.IsPool || existing.IsPool
		if copy.MintAddress == "" {
			copy.MintAddress = existing.MintAddress
		}
		if copy.Owner == "" {
			copy.Owner = existing.Owner
		}
	}
	s.data[a.Address] = &copy
	return nil
}

// GetByAddress retrieves an account by address. Returns ErrNotFound if not
// exists.
func (s *AccountStore) GetByAddress(_ context.Context, address string) (*domain.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

// GetPools retrieves all accounts flagged as pools, ordered by address.
func (s *AccountStore) GetPools(_ context.Context) ([]*domain.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AccountRecord
	for _, a := range s.data {
		if a.IsPool {
			copy := *a
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}
