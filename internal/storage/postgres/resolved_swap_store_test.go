package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
	"solana-graph-lab/internal/storage/postgres"
)

func TestResolvedSwapStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResolvedSwapStore(pool)
	ctx := context.Background()

	record := &domain.ResolvedSwapRecord{
		TxSignature:     "sig1",
		SwapID:          1,
		Slot:            100,
		BlockTime:       1704067200,
		ProgramAddress:  "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
		ProgramName:     "Raydium AMM v4",
		InstructionName: "swapBaseIn",
		UserSource:      "userA",
		UserDestination: "userB",
		PoolSource:      "poolA",
		PoolDestination: "poolB",
		AmountIn:        100,
		AmountOut:       95,
		Fee:             2,
	}

	require.NoError(t, store.Insert(ctx, record))

	result, err := store.GetBySignature(ctx, "sig1")
	require.NoError(t, err)
	require.Len(t, result, 1)

	got := result[0]
	require.Equal(t, int64(100), got.AmountIn)
	require.Equal(t, int64(95), got.AmountOut)
	require.Equal(t, int64(2), got.Fee)
	require.Equal(t, "poolA", got.PoolSource)
	require.Nil(t, got.ParentRouterSwapID)
	require.False(t, got.CreatedAt.IsZero())
}

func TestResolvedSwapStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResolvedSwapStore(pool)
	ctx := context.Background()

	record := &domain.ResolvedSwapRecord{TxSignature: "sig1", SwapID: 1, Slot: 100, ProgramAddress: "prog"}

	require.NoError(t, store.Insert(ctx, record))
	require.ErrorIs(t, store.Insert(ctx, record), storage.ErrDuplicateKey)
}

func TestResolvedSwapStore_InsertBulkAtomicOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResolvedSwapStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.ResolvedSwapRecord{
		TxSignature: "sig1", SwapID: 1, Slot: 100, ProgramAddress: "prog",
	}))

	records := []*domain.ResolvedSwapRecord{
		{TxSignature: "sig1", SwapID: 2, Slot: 100, ProgramAddress: "prog"},
		{TxSignature: "sig1", SwapID: 1, Slot: 100, ProgramAddress: "prog"}, // duplicate
	}

	require.ErrorIs(t, store.InsertBulk(ctx, records), storage.ErrDuplicateKey)

	result, err := store.GetBySignature(ctx, "sig1")
	require.NoError(t, err)
	require.Len(t, result, 1, "failed bulk insert must not leave partial rows")
}

func TestResolvedSwapStore_GetBySlotRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResolvedSwapStore(pool)
	ctx := context.Background()

	records := []*domain.ResolvedSwapRecord{
		{TxSignature: "s1", SwapID: 1, Slot: 100, ProgramAddress: "prog"},
		{TxSignature: "s2", SwapID: 1, Slot: 200, ProgramAddress: "prog"},
		{TxSignature: "s3", SwapID: 1, Slot: 300, ProgramAddress: "prog"},
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	result, err := store.GetBySlotRange(ctx, 150, 300)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, int64(200), result[0].Slot)
	require.Equal(t, int64(300), result[1].Slot)
}

func TestResolvedSwapStore_GetRouterLegs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResolvedSwapStore(pool)
	ctx := context.Background()

	records := []*domain.ResolvedSwapRecord{
		{TxSignature: "s1", SwapID: 1, Slot: 100, Router: true, ProgramAddress: "router"},
		{TxSignature: "s1", SwapID: 3, Slot: 100, ProgramAddress: "dex", ParentRouterSwapID: ptr(int64(1))},
		{TxSignature: "s1", SwapID: 2, Slot: 100, ProgramAddress: "dex", ParentRouterSwapID: ptr(int64(1))},
		{TxSignature: "s2", SwapID: 2, Slot: 101, ProgramAddress: "dex", ParentRouterSwapID: ptr(int64(1))},
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	legs, err := store.GetRouterLegs(ctx, "s1", 1)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	require.Equal(t, int64(2), legs[0].SwapID)
	require.Equal(t, int64(3), legs[1].SwapID)
	require.Equal(t, int64(1), *legs[0].ParentRouterSwapID)
}
