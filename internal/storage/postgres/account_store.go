package postgres

import (
	"context"
	"fmt"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

// Upsert inserts or refreshes an account record. is_pool only ever flips
// to true; mint and owner keep their previous value when the new record
// carries an empty one.
func (s *AccountStore) Upsert(ctx context.Context, a *domain.AccountRecord) error {
	if a == nil || a.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO accounts (address, mint_address, account_type, owner, is_pool)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			mint_address = CASE WHEN EXCLUDED.mint_address = '' THEN accounts.mint_address ELSE EXCLUDED.mint_address END,
			account_type = EXCLUDED.account_type,
			owner        = CASE WHEN EXCLUDED.owner = '' THEN accounts.owner ELSE EXCLUDED.owner END,
			is_pool      = accounts.is_pool OR EXCLUDED.is_pool,
			updated_at   = now()
	`

	_, err := s.pool.Exec(ctx, query, a.Address, a.MintAddress, a.Type, a.Owner, a.IsPool)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// GetByAddress retrieves an account by address. Returns ErrNotFound if not
// exists.
func (s *AccountStore) GetByAddress(ctx context.Context, address string) (*domain.AccountRecord, error) {
	query := `
		SELECT address, mint_address, account_type, owner, is_pool
		FROM accounts
		WHERE address = $1
	`

	var a domain.AccountRecord
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&a.Address, &a.MintAddress, &a.Type, &a.Owner, &a.IsPool,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account by address: %w", err)
	}

	return &a, nil
}

// GetPools retrieves all accounts flagged as pools, ordered by address.
func (s *AccountStore) GetPools(ctx context.Context) ([]*domain.AccountRecord, error) {
	query := `
		SELECT address, mint_address, account_type, owner, is_pool
		FROM accounts
		WHERE is_pool
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get pools: %w", err)
	}
	defer rows.Close()

	var records []*domain.AccountRecord
	for rows.Next() {
		var a domain.AccountRecord
		if err := rows.Scan(&a.Address, &a.MintAddress, &a.Type, &a.Owner, &a.IsPool); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		records = append(records, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return records, nil
}
