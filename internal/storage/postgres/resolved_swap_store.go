package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// ResolvedSwapStore implements storage.ResolvedSwapStore using PostgreSQL.
type ResolvedSwapStore struct {
	pool *Pool
}

// NewResolvedSwapStore creates a new ResolvedSwapStore.
func NewResolvedSwapStore(pool *Pool) *ResolvedSwapStore {
	return &ResolvedSwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResolvedSwapStore = (*ResolvedSwapStore)(nil)

const insertResolvedSwapQuery = `
	INSERT INTO resolved_swaps (
		tx_signature, swap_id, slot, block_time, router,
		program_address, program_name, instruction_name,
		user_source, user_destination, pool_source, pool_destination,
		amount_in, amount_out, fee, parent_router_swap_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

const selectResolvedSwapColumns = `
	tx_signature, swap_id, slot, block_time, router,
	program_address, program_name, instruction_name,
	user_source, user_destination, pool_source, pool_destination,
	amount_in, amount_out, fee, parent_router_swap_id, created_at
`

// Insert adds a new resolved swap. Returns ErrDuplicateKey if
// (tx_signature, swap_id) exists.
func (s *ResolvedSwapStore) Insert(ctx context.Context, r *domain.ResolvedSwapRecord) error {
	if r == nil || r.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertResolvedSwapQuery, resolvedSwapArgs(r)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert resolved swap: %w", err)
	}
	return nil
}

// InsertBulk adds multiple resolved swaps atomically. Fails entire batch
// on any duplicate.
func (s *ResolvedSwapStore) InsertBulk(ctx context.Context, records []*domain.ResolvedSwapRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertResolvedSwapQuery, resolvedSwapArgs(r)...)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert resolved swap in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySignature retrieves all resolved swaps of a transaction, ordered by
// swap_id ASC.
func (s *ResolvedSwapStore) GetBySignature(ctx context.Context, txSignature string) ([]*domain.ResolvedSwapRecord, error) {
	query := `
		SELECT ` + selectResolvedSwapColumns + `
		FROM resolved_swaps
		WHERE tx_signature = $1
		ORDER BY swap_id ASC
	`

	rows, err := s.pool.Query(ctx, query, txSignature)
	if err != nil {
		return nil, fmt.Errorf("get resolved swaps by signature: %w", err)
	}
	defer rows.Close()

	return scanResolvedSwaps(rows)
}

// GetBySlotRange retrieves resolved swaps within [start, end] (inclusive).
func (s *ResolvedSwapStore) GetBySlotRange(ctx context.Context, start, end int64) ([]*domain.ResolvedSwapRecord, error) {
	query := `
		SELECT ` + selectResolvedSwapColumns + `
		FROM resolved_swaps
		WHERE slot >= $1 AND slot <= $2
		ORDER BY slot ASC, swap_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get resolved swaps by slot range: %w", err)
	}
	defer rows.Close()

	return scanResolvedSwaps(rows)
}

// GetRouterLegs retrieves the nested swaps of a router swap, ordered by
// swap_id ASC.
func (s *ResolvedSwapStore) GetRouterLegs(ctx context.Context, txSignature string, routerSwapID int64) ([]*domain.ResolvedSwapRecord, error) {
	query := `
		SELECT ` + selectResolvedSwapColumns + `
		FROM resolved_swaps
		WHERE tx_signature = $1 AND parent_router_swap_id = $2
		ORDER BY swap_id ASC
	`

	rows, err := s.pool.Query(ctx, query, txSignature, routerSwapID)
	if err != nil {
		return nil, fmt.Errorf("get router legs: %w", err)
	}
	defer rows.Close()

	return scanResolvedSwaps(rows)
}

// resolvedSwapArgs builds the insert argument list.
func resolvedSwapArgs(r *domain.ResolvedSwapRecord) []any {
	return []any{
		r.TxSignature, r.SwapID, r.Slot, r.BlockTime, r.Router,
		r.ProgramAddress, r.ProgramName, r.InstructionName,
		r.UserSource, r.UserDestination, r.PoolSource, r.PoolDestination,
		r.AmountIn, r.AmountOut, r.Fee, r.ParentRouterSwapID,
	}
}

// scanResolvedSwaps scans multiple rows into a slice of ResolvedSwapRecord.
func scanResolvedSwaps(rows pgx.Rows) ([]*domain.ResolvedSwapRecord, error) {
	var records []*domain.ResolvedSwapRecord

	for rows.Next() {
		var r domain.ResolvedSwapRecord

		err := rows.Scan(
			&r.TxSignature, &r.SwapID, &r.Slot, &r.BlockTime, &r.Router,
			&r.ProgramAddress, &r.ProgramName, &r.InstructionName,
			&r.UserSource, &r.UserDestination, &r.PoolSource, &r.PoolDestination,
			&r.AmountIn, &r.AmountOut, &r.Fee, &r.ParentRouterSwapID, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resolved swap row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved swap rows: %w", err)
	}

	return records, nil
}
