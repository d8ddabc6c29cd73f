package memory

import (
	"context"
	"errors"
	"testing"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

func edgeRecord(sig string, key int64) *domain.TransferEdgeRecord {
	return &domain.TransferEdgeRecord{
		TxSignature:        sig,
		EdgeKey:            key,
		SourceAddress:      "src",
		DestinationAddress: "dst",
		TransferType:       "TRANSFER",
		AmountSource:       10,
		AmountDestination:  10,
	}
}

func TestTransferEdgeStore_InsertBulkAndGet(t *testing.T) {
	store := NewTransferEdgeStore()
	ctx := context.Background()

	records := []*domain.TransferEdgeRecord{
		edgeRecord("s1", 20),
		edgeRecord("s1", 10),
		edgeRecord("s2", 10),
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetBySignature(ctx, "s1")
	if err != nil {
		t.Fatalf("GetBySignature failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(result))
	}
	if result[0].EdgeKey != 10 || result[1].EdgeKey != 20 {
		t.Errorf("Edges not ordered by key: got %d, %d", result[0].EdgeKey, result[1].EdgeKey)
	}
}

func TestTransferEdgeStore_DuplicateKey(t *testing.T) {
	store := NewTransferEdgeStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.TransferEdgeRecord{edgeRecord("s1", 10)}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.TransferEdgeRecord{edgeRecord("s1", 10)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTransferEdgeStore_IntraBatchDuplicate(t *testing.T) {
	store := NewTransferEdgeStore()
	ctx := context.Background()

	records := []*domain.TransferEdgeRecord{
		edgeRecord("s1", 10),
		edgeRecord("s1", 10),
	}

	err := store.InsertBulk(ctx, records)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	result, err := store.GetBySignature(ctx, "s1")
	if err != nil {
		t.Fatalf("GetBySignature failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Failed batch should not add edges, got %d", len(result))
	}
}

func TestTransferEdgeStore_GetBySwap(t *testing.T) {
	store := NewTransferEdgeStore()
	ctx := context.Background()

	swapID := int64(1)
	routerID := int64(2)

	tagged := edgeRecord("s1", 10)
	tagged.SwapParentID = &swapID

	routerTagged := edgeRecord("s1", 20)
	routerTagged.ParentRouterSwapID = &routerID

	untagged := edgeRecord("s1", 30)

	if err := store.InsertBulk(ctx, []*domain.TransferEdgeRecord{tagged, routerTagged, untagged}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetBySwap(ctx, "s1", swapID)
	if err != nil {
		t.Fatalf("GetBySwap failed: %v", err)
	}
	if len(result) != 1 || result[0].EdgeKey != 10 {
		t.Errorf("Expected edge 10 for swap %d, got %v", swapID, result)
	}

	result, err = store.GetBySwap(ctx, "s1", routerID)
	if err != nil {
		t.Fatalf("GetBySwap failed: %v", err)
	}
	if len(result) != 1 || result[0].EdgeKey != 20 {
		t.Errorf("Expected edge 20 for router %d, got %v", routerID, result)
	}
}

func TestTransferEdgeStore_EmptyBatch(t *testing.T) {
	store := NewTransferEdgeStore()
	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("Empty batch should succeed, got %v", err)
	}
}
