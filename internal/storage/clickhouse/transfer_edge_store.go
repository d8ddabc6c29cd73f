package clickhouse

import (
	"context"
	"fmt"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/storage"
)

// TransferEdgeStore implements storage.TransferEdgeStore using ClickHouse.
// Edges are write-once per transaction and queried by signature, which
// fits a MergeTree ordered by (tx_signature, edge_key).
type TransferEdgeStore struct {
	conn *Conn
}

// NewTransferEdgeStore creates a new TransferEdgeStore.
func NewTransferEdgeStore(conn *Conn) *TransferEdgeStore {
	return &TransferEdgeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransferEdgeStore = (*TransferEdgeStore)(nil)

const selectTransferEdgeColumns = `
	tx_signature, slot, edge_key,
	source_address, source_version, destination_address, destination_version,
	transfer_type, program_address, amount_source, amount_destination,
	swap_id, swap_parent_id, parent_router_swap_id
`

// InsertBulk adds the edges of one transaction. MergeTree does not enforce
// uniqueness, so duplicates are detected with an explicit existence check
// on each distinct signature in the batch.
func (s *TransferEdgeStore) InsertBulk(ctx context.Context, records []*domain.TransferEdgeRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		txSignature string
		edgeKey     int64
	}
	seen := make(map[key]struct{})
	signatures := make(map[string]struct{})
	for _, r := range records {
		if r == nil || r.TxSignature == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.TxSignature, r.EdgeKey}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		signatures[r.TxSignature] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for sig := range signatures {
		exists, err := s.exists(ctx, sig)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transfer_edges (
			tx_signature, slot, edge_key,
			source_address, source_version, destination_address, destination_version,
			transfer_type, program_address, amount_source, amount_destination,
			swap_id, swap_parent_id, parent_router_swap_id
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.TxSignature, uint64(r.Slot), r.EdgeKey,
			r.SourceAddress, int32(r.SourceVersion), r.DestinationAddress, int32(r.DestinationVersion),
			r.TransferType, r.ProgramAddress, r.AmountSource, r.AmountDestination,
			r.SwapID, r.SwapParentID, r.ParentRouterSwapID,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySignature retrieves all edges of a transaction, ordered by edge_key ASC.
func (s *TransferEdgeStore) GetBySignature(ctx context.Context, txSignature string) ([]*domain.TransferEdgeRecord, error) {
	query := `
		SELECT ` + selectTransferEdgeColumns + `
		FROM transfer_edges
		WHERE tx_signature = ?
		ORDER BY edge_key ASC
	`

	rows, err := s.conn.Query(ctx, query, txSignature)
	if err != nil {
		return nil, fmt.Errorf("query by signature: %w", err)
	}
	defer rows.Close()

	return scanTransferEdges(rows)
}

// GetBySwap retrieves the edges tagged to one swap of a transaction,
// ordered by edge_key ASC.
func (s *TransferEdgeStore) GetBySwap(ctx context.Context, txSignature string, swapID int64) ([]*domain.TransferEdgeRecord, error) {
	query := `
		SELECT ` + selectTransferEdgeColumns + `
		FROM transfer_edges
		WHERE tx_signature = ? AND (swap_parent_id = ? OR parent_router_swap_id = ?)
		ORDER BY edge_key ASC
	`

	rows, err := s.conn.Query(ctx, query, txSignature, swapID, swapID)
	if err != nil {
		return nil, fmt.Errorf("query by swap: %w", err)
	}
	defer rows.Close()

	return scanTransferEdges(rows)
}

// exists checks if any edge of the transaction is already stored.
func (s *TransferEdgeStore) exists(ctx context.Context, txSignature string) (bool, error) {
	query := `
		SELECT count(*) FROM transfer_edges
		WHERE tx_signature = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, txSignature).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanTransferEdges scans multiple rows.
func scanTransferEdges(rows chRows) ([]*domain.TransferEdgeRecord, error) {
	var records []*domain.TransferEdgeRecord

	for rows.Next() {
		var r domain.TransferEdgeRecord
		var slot uint64
		var sourceVersion, destinationVersion int32

		err := rows.Scan(
			&r.TxSignature, &slot, &r.EdgeKey,
			&r.SourceAddress, &sourceVersion, &r.DestinationAddress, &destinationVersion,
			&r.TransferType, &r.ProgramAddress, &r.AmountSource, &r.AmountDestination,
			&r.SwapID, &r.SwapParentID, &r.ParentRouterSwapID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer edge row: %w", err)
		}

		r.Slot = int64(slot)
		r.SourceVersion = int(sourceVersion)
		r.DestinationVersion = int(destinationVersion)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer edge rows: %w", err)
	}

	return records, nil
}
