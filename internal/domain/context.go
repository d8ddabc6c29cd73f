package domain

import "solana-graph-lab/internal/graph"

// TransactionContext aggregates everything parsed from one transaction:
// the transfer graph and the ordered list of detected swaps. The resolver
// mutates both in place; the swap list may shrink when resolution fails.
type TransactionContext struct {
	Slot                 int64
	Signature            string
	BlockTime            int64
	Fee                  int64
	FeePayer             string
	ComputeUnitsConsumed int64
	PriorityFee          int64
	Err                  string

	Graph *graph.TransactionGraph
	Swaps []*Swap

	swapIDCounter int64
}

// NewTransactionContext creates a context with an empty graph.
func NewTransactionContext(signature string, slot int64) *TransactionContext {
	return &TransactionContext{
		Signature: signature,
		Slot:      slot,
		Graph:     graph.NewTransactionGraph(),
	}
}

// AddSwap creates a swap with the next per-transaction id and appends it
// to the swap list.
func (c *TransactionContext) AddSwap(router bool, programAddress, programName, instructionName string,
	userAddresses AccountPair, poolAddresses PoolAddresses, parentRouterSwapID *int64) *Swap {

	c.swapIDCounter++
	swap := &Swap{
		ID:                 c.swapIDCounter,
		Router:             router,
		ProgramAddress:     programAddress,
		ProgramName:        programName,
		InstructionName:    instructionName,
		UserAddresses:      userAddresses,
		PoolAddresses:      poolAddresses,
		ParentRouterSwapID: parentRouterSwapID,
	}
	c.Swaps = append(c.Swaps, swap)
	return swap
}

// GetSwap returns the swap with the given id, or nil.
func (c *TransactionContext) GetSwap(id int64) *Swap {
	for _, s := range c.Swaps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ComputePriorityFee derives the priority fee from the compute-unit price.
// Formula: microLamports * computeUnitsConsumed / 1_000_000, capped at one
// SOL to guard against corrupt inputs.
func (c *TransactionContext) ComputePriorityFee(microLamports int64) {
	const maxReasonablePriorityFee = 1_000_000_000 // 1 SOL in lamports

	if microLamports == 0 || c.ComputeUnitsConsumed == 0 {
		c.PriorityFee = 0
		return
	}
	c.PriorityFee = microLamports * c.ComputeUnitsConsumed / 1_000_000
	if c.PriorityFee > maxReasonablePriorityFee {
		c.PriorityFee = maxReasonablePriorityFee
	}
}
