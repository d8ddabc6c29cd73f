package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// TransferEdgeStore is an in-memory implementation of storage.TransferEdgeStore.
type TransferEdgeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TransferEdgeRecord // keyed by composite key
}

// NewTransferEdgeStore creates a new in-memory transfer edge store.
func NewTransferEdgeStore() *TransferEdgeStore {
	return &TransferEdgeStore{
		data: make(map[string]*domain.TransferEdgeRecord),
	}
}

var _ storage.TransferEdgeStore = (*TransferEdgeStore)(nil)

// transferEdgeKey generates a unique key for an edge.
func transferEdgeKey(txSignature string, edgeKey int64) string {
	return fmt.Sprintf("%s|%d", txSignature, edgeKey)
}

// InsertBulk adds the edges of one transaction. Fails entire batch on any
// duplicate.
func (s *TransferEdgeStore) InsertBulk(_ context.Context, records []*domain.TransferEdgeRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))

	for _, r := range records {
		if r == nil || r.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		key := transferEdgeKey(r.TxSignature, r.EdgeKey)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		key := transferEdgeKey(r.TxSignature, r.EdgeKey)
		copy := *r
		s.data[key] = &copy
	}

	return nil
}

// GetBySignature retrieves all edges of a transaction, ordered by edge_key ASC.
func (s *TransferEdgeStore) GetBySignature(_ context.Context, txSignature string) ([]*domain.TransferEdgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferEdgeRecord
	for _, r := range s.data {
		if r.TxSignature == txSignature {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EdgeKey < result[j].EdgeKey
	})

	return result, nil
}

// GetBySwap retrieves the edges tagged to one swap of a transaction,
// ordered by edge_key ASC.
func (s *TransferEdgeStore) GetBySwap(_ context.Context, txSignature string, swapID int64) ([]*domain.TransferEdgeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferEdgeRecord
	for _, r := range s.data {
		if r.TxSignature != txSignature {
			continue
		}
		if (r.SwapParentID != nil && *r.SwapParentID == swapID) ||
			(r.ParentRouterSwapID != nil && *r.ParentRouterSwapID == swapID) {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EdgeKey < result[j].EdgeKey
	})

	return result, nil
}
