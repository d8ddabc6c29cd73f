package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

func testEdge(sig string, key int64) *domain.TransferEdgeRecord {
	return &domain.TransferEdgeRecord{
		TxSignature:        sig,
		Slot:               100,
		EdgeKey:            key,
		SourceAddress:      "src",
		SourceVersion:      0,
		DestinationAddress: "dst",
		DestinationVersion: 1,
		TransferType:       "TRANSFER",
		ProgramAddress:     "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		AmountSource:       10,
		AmountDestination:  10,
	}
}

func TestTransferEdgeStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferEdgeStore(conn)
	ctx := context.Background()

	tagged := testEdge("s1", 20)
	tagged.SwapParentID = ptr(int64(1))
	tagged.SwapID = ptr(int64(1))

	records := []*domain.TransferEdgeRecord{
		tagged,
		testEdge("s1", 10),
	}

	require.NoError(t, store.InsertBulk(ctx, records))

	result, err := store.GetBySignature(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, int64(10), result[0].EdgeKey)
	require.Equal(t, int64(20), result[1].EdgeKey)
	require.Nil(t, result[0].SwapParentID)
	require.NotNil(t, result[1].SwapParentID)
	require.Equal(t, int64(1), *result[1].SwapParentID)
}

func TestTransferEdgeStore_DuplicateSignature(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferEdgeStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.TransferEdgeRecord{testEdge("s1", 10)}))

	err := store.InsertBulk(ctx, []*domain.TransferEdgeRecord{testEdge("s1", 20)})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTransferEdgeStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferEdgeStore(conn)
	ctx := context.Background()

	records := []*domain.TransferEdgeRecord{
		testEdge("s1", 10),
		testEdge("s1", 10),
	}

	require.ErrorIs(t, store.InsertBulk(ctx, records), storage.ErrDuplicateKey)
}

func TestTransferEdgeStore_GetBySwap(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferEdgeStore(conn)
	ctx := context.Background()

	direct := testEdge("s1", 10)
	direct.SwapParentID = ptr(int64(1))

	routerLeg := testEdge("s1", 20)
	routerLeg.ParentRouterSwapID = ptr(int64(1))

	untagged := testEdge("s1", 30)

	require.NoError(t, store.InsertBulk(ctx, []*domain.TransferEdgeRecord{direct, routerLeg, untagged}))

	result, err := store.GetBySwap(ctx, "s1", 1)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, int64(10), result[0].EdgeKey)
	require.Equal(t, int64(20), result[1].EdgeKey)
}

func TestTransferEdgeStore_EmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransferEdgeStore(conn)
	require.NoError(t, store.InsertBulk(context.Background(), nil))
}
