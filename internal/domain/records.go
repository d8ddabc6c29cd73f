package domain

import (
	"time"

	"solana-graph-lab/internal/graph"
)

// ResolvedSwapRecord is the flat persisted form of a resolved swap.
// Amounts come from the synthetic edges the resolver committed.
type ResolvedSwapRecord struct {
	TxSignature     string
	SwapID          int64
	Slot            int64
	BlockTime       int64
	Router          bool
	ProgramAddress  string
	ProgramName     string
	InstructionName string

	UserSource      string
	UserDestination string
	// Pool endpoints of the SWAP edge. Empty for router swaps, which have
	// no pools of their own.
	PoolSource      string
	PoolDestination string

	AmountIn  int64
	AmountOut int64
	Fee       int64

	ParentRouterSwapID *int64
	CreatedAt          time.Time
}

// TransferEdgeRecord is the flat persisted form of one graph edge.
type TransferEdgeRecord struct {
	TxSignature        string
	Slot               int64
	EdgeKey            int64
	SourceAddress      string
	SourceVersion      int
	DestinationAddress string
	DestinationVersion int
	TransferType       string
	ProgramAddress     string
	AmountSource       int64
	AmountDestination  int64
	SwapID             *int64
	SwapParentID       *int64
	ParentRouterSwapID *int64
}

// AccountRecord is the persisted form of a discovered account.
type AccountRecord struct {
	Address     string
	MintAddress string
	Type        string
	Owner       string
	IsPool      bool
}

// ResolvedSwapRecords flattens the context's resolved swaps for storage.
// Swaps whose synthetic edges are absent from the graph are skipped; after
// resolution that only happens if the caller never ran the resolver.
func (c *TransactionContext) ResolvedSwapRecords() []*ResolvedSwapRecord {
	type amounts struct {
		in, out    int64
		poolSource string
		poolDest   string
		found      bool
	}
	bySwap := make(map[int64]*amounts)
	get := func(id int64) *amounts {
		a, ok := bySwap[id]
		if !ok {
			a = &amounts{}
			bySwap[id] = a
		}
		return a
	}

	for _, e := range c.Graph.Edges() {
		if e.Props.SwapID == nil {
			continue
		}
		a := get(*e.Props.SwapID)
		switch e.Props.Type {
		case graph.TypeSwap:
			a.in = e.Props.AmountSource
			a.out = e.Props.AmountDestination
			a.poolDest = e.Source.Address
			a.poolSource = e.Target.Address
			a.found = true
		case graph.TypeRouterIncoming:
			a.in = e.Props.AmountSource
			a.found = true
		case graph.TypeRouterOutgoing:
			a.out = e.Props.AmountDestination
		}
	}

	var records []*ResolvedSwapRecord
	for _, swap := range c.Swaps {
		a, ok := bySwap[swap.ID]
		if !ok || !a.found {
			continue
		}
		records = append(records, &ResolvedSwapRecord{
			TxSignature:        c.Signature,
			SwapID:             swap.ID,
			Slot:               c.Slot,
			BlockTime:          c.BlockTime,
			Router:             swap.Router,
			ProgramAddress:     swap.ProgramAddress,
			ProgramName:        swap.ProgramName,
			InstructionName:    swap.InstructionName,
			UserSource:         swap.UserAddresses.Source,
			UserDestination:    swap.UserAddresses.Destination,
			PoolSource:         a.poolSource,
			PoolDestination:    a.poolDest,
			AmountIn:           a.in,
			AmountOut:          a.out,
			Fee:                swap.Fee,
			ParentRouterSwapID: swap.ParentRouterSwapID,
		})
	}
	return records
}

// TransferEdgeRecords flattens every graph edge for storage, ordered by
// edge key.
func (c *TransactionContext) TransferEdgeRecords() []*TransferEdgeRecord {
	edges := c.Graph.Edges()
	records := make([]*TransferEdgeRecord, 0, len(edges))
	for _, e := range edges {
		records = append(records, &TransferEdgeRecord{
			TxSignature:        c.Signature,
			Slot:               c.Slot,
			EdgeKey:            e.Key,
			SourceAddress:      e.Source.Address,
			SourceVersion:      e.Source.Version,
			DestinationAddress: e.Target.Address,
			DestinationVersion: e.Target.Version,
			TransferType:       string(e.Props.Type),
			ProgramAddress:     e.Props.ProgramAddress,
			AmountSource:       e.Props.AmountSource,
			AmountDestination:  e.Props.AmountDestination,
			SwapID:             e.Props.SwapID,
			SwapParentID:       e.Props.SwapParentID,
			ParentRouterSwapID: e.Props.ParentRouterSwapID,
		})
	}
	return records
}
