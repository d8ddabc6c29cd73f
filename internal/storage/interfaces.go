package storage

import (
	"context"

	"solana-graph-lab/internal/domain"
)

// ResolvedSwapStore provides access to resolved_swaps storage.
type ResolvedSwapStore interface {
	// Insert adds a new resolved swap. Returns ErrDuplicateKey if
	// (tx_signature, swap_id) exists.
	Insert(ctx context.Context, r *domain.ResolvedSwapRecord) error

	// InsertBulk adds multiple resolved swaps atomically. Fails entire
	// batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.ResolvedSwapRecord) error

	// GetBySignature retrieves all resolved swaps of a transaction,
	// ordered by swap_id ASC.
	GetBySignature(ctx context.Context, txSignature string) ([]*domain.ResolvedSwapRecord, error)

	// GetBySlotRange retrieves resolved swaps within [start, end]
	// (inclusive), ordered by slot ASC then swap_id ASC.
	GetBySlotRange(ctx context.Context, start, end int64) ([]*domain.ResolvedSwapRecord, error)

	// GetRouterLegs retrieves the nested swaps of a router swap, ordered
	// by swap_id ASC.
	GetRouterLegs(ctx context.Context, txSignature string, routerSwapID int64) ([]*domain.ResolvedSwapRecord, error)
}

// TransferEdgeStore provides access to transfer_edges storage.
type TransferEdgeStore interface {
	// InsertBulk adds the edges of one transaction. Fails entire batch on
	// duplicate (tx_signature, edge_key).
	InsertBulk(ctx context.Context, records []*domain.TransferEdgeRecord) error

	// GetBySignature retrieves all edges of a transaction, ordered by
	// edge_key ASC.
	GetBySignature(ctx context.Context, txSignature string) ([]*domain.TransferEdgeRecord, error)

	// GetBySwap retrieves the edges tagged to one swap of a transaction,
	// ordered by edge_key ASC.
	GetBySwap(ctx context.Context, txSignature string, swapID int64) ([]*domain.TransferEdgeRecord, error)
}

// AccountStore provides access to accounts storage.
type AccountStore interface {
	// Upsert inserts or refreshes an account record. The pool flag only
	// ever flips to true; an upsert with IsPool=false never clears it.
	Upsert(ctx context.Context, a *domain.AccountRecord) error

	// GetByAddress retrieves an account by address. Returns ErrNotFound if
	// not exists.
	GetByAddress(ctx context.Context, address string) (*domain.AccountRecord, error)

	// GetPools retrieves all accounts flagged as pools.
	GetPools(ctx context.Context) ([]*domain.AccountRecord, error)
}
