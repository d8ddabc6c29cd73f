package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// ResolvedSwapStore is an in-memory implementation of storage.ResolvedSwapStore.
type ResolvedSwapStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ResolvedSwapRecord // keyed by composite key
}

// NewResolvedSwapStore creates a new in-memory resolved swap store.
func NewResolvedSwapStore() *ResolvedSwapStore {
	return &ResolvedSwapStore{
		data: make(map[string]*domain.ResolvedSwapRecord),
	}
}

var _ storage.ResolvedSwapStore = (*ResolvedSwapStore)(nil)

// resolvedSwapKey generates a unique key for a resolved swap.
func resolvedSwapKey(txSignature string, swapID int64) string {
	return fmt.Sprintf("%s|%d", txSignature, swapID)
}

// Insert adds a new resolved swap. Returns ErrDuplicateKey if exists.
func (s *ResolvedSwapStore) Insert(_ context.Context, r *domain.ResolvedSwapRecord) error {
	if r == nil || r.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	key := resolvedSwapKey(r.TxSignature, r.SwapID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = time.Now()
	}
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple resolved swaps atomically. Fails entire batch
// on any duplicate.
func (s *ResolvedSwapStore) InsertBulk(_ context.Context, records []*domain.ResolvedSwapRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(records))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range records {
		if r == nil || r.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		key := resolvedSwapKey(r.TxSignature, r.SwapID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		key := resolvedSwapKey(r.TxSignature, r.SwapID)
		copy := *r
		if copy.CreatedAt.IsZero() {
			copy.CreatedAt = time.Now()
		}
		s.data[key] = &copy
	}

	return nil
}

// GetBySignature retrieves all resolved swaps of a transaction, ordered by
// swap_id ASC.
func (s *ResolvedSwapStore) GetBySignature(_ context.Context, txSignature string) ([]*domain.ResolvedSwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResolvedSwapRecord
	for _, r := range s.data {
		if r.TxSignature == txSignature {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SwapID < result[j].SwapID
	})

	return result, nil
}

// GetBySlotRange retrieves resolved swaps within [start, end] (inclusive).
func (s *ResolvedSwapStore) GetBySlotRange(_ context.Context, start, end int64) ([]*domain.ResolvedSwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResolvedSwapRecord
	for _, r := range s.data {
		if r.Slot >= start && r.Slot <= end {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Slot != result[j].Slot {
			return result[i].Slot < result[j].Slot
		}
		return result[i].SwapID < result[j].SwapID
	})

	return result, nil
}

// GetRouterLegs retrieves the nested swaps of a router swap, ordered by
// swap_id ASC.
func (s *ResolvedSwapStore) GetRouterLegs(_ context.Context, txSignature string, routerSwapID int64) ([]*domain.ResolvedSwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ResolvedSwapRecord
	for _, r := range s.data {
		if r.TxSignature != txSignature || r.ParentRouterSwapID == nil {
			continue
		}
		if *r.ParentRouterSwapID == routerSwapID {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SwapID < result[j].SwapID
	})

	return result, nil
}
