package domain

import "solana-graph-lab/internal/graph"

// AccountPair is a (source, destination) pair of token account addresses.
type AccountPair struct {
	Source      string
	Destination string
}

// PoolAddresses describes the liquidity accounts of a swap. Instruction
// decoding produces one of two shapes: an explicit source/destination pair
// when the DEX layout names them, or an unordered candidate set when it
// does not. The resolver disambiguates on the variant, not on reflection.
type PoolAddresses interface {
	// Addresses returns every pool address named by this descriptor.
	Addresses() []string
}

// PairedPools names the pool token accounts by role.
type PairedPools struct {
	Source      string
	Destination string
}

// Addresses returns the destination first, matching the order the
// resolver scans paired descriptors in.
func (p PairedPools) Addresses() []string {
	return []string{p.Destination, p.Source}
}

// CandidatePools is an unordered set of possible pool addresses.
type CandidatePools []string

// Addresses returns the candidate set.
func (p CandidatePools) Addresses() []string {
	return []string(p)
}

// Contains reports whether the address is one of the candidates.
func (p CandidatePools) Contains(address string) bool {
	for _, a := range p {
		if a == address {
			return true
		}
	}
	return false
}

// Swap is one detected exchange within a transaction. A router swap
// aggregates one or more nested plain swaps behind a single user-facing
// program; its nested swaps reference it through ParentRouterSwapID.
type Swap struct {
	ID              int64
	Router          bool
	ProgramAddress  string
	ProgramName     string
	InstructionName string
	UserAddresses   AccountPair
	PoolAddresses   PoolAddresses // nil for router swaps

	ParentRouterSwapID *int64

	// Set by the resolver on success.
	Fee                  int64
	ProgramAccountVertex *graph.AccountVertex
}

// IsChildSwap reports whether this swap is nested under a router swap.
func (s *Swap) IsChildSwap() bool {
	return s.ParentRouterSwapID != nil
}

// PoolAddressList returns all pool addresses involved in this swap.
func (s *Swap) PoolAddressList() []string {
	if s.PoolAddresses == nil {
		return nil
	}
	return s.PoolAddresses.Addresses()
}
