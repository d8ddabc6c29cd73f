package resolver

import (
	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/graph"
)

// Balance-based estimators, usable as a cross-check or an alternative
// resolution strategy when path search over the subgraph is unreliable.
// They are standalone queries; plain and router resolution do not call
// them. Each returns 0 when fewer than two snapshots of the relevant
// account exist in the graph, since a single snapshot carries no evidence
// of a balance change.

// AmountInFromBalanceChanges estimates a swap's amount in by summing the
// source-side amounts of edges that leave the user's source account for a
// different address within the swap's span.
func AmountInFromBalanceChanges(g *graph.TransactionGraph, swap *domain.Swap) int64 {
	source := swap.UserAddresses.Source
	if len(g.NodesByAddress(source)) < 2 {
		return 0
	}

	var amountIn int64
	for _, e := range g.Edges() {
		if e.Source.Address != source || e.Target.Address == source {
			continue
		}
		if e.Props.SwapParentID != nil && *e.Props.SwapParentID == swap.ID {
			amountIn += e.Props.AmountSource
		}
	}
	return amountIn
}

// AmountOutFromBalanceChanges estimates a swap's amount out by summing the
// destination-side amounts of edges that arrive at the user's destination
// account from a different address within the swap's span.
func AmountOutFromBalanceChanges(g *graph.TransactionGraph, swap *domain.Swap) int64 {
	dest := swap.UserAddresses.Destination
	if len(g.NodesByAddress(dest)) < 2 {
		return 0
	}

	var amountOut int64
	for _, e := range g.Edges() {
		if e.Target.Address != dest || e.Source.Address == dest {
			continue
		}
		if e.Props.SwapParentID != nil && *e.Props.SwapParentID == swap.ID {
			amountOut += e.Props.AmountDestination
		}
	}
	return amountOut
}
