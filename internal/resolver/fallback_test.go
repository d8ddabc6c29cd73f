package resolver

import (
	"testing"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/graph"
)

func balanceFixture(t *testing.T) (*graph.TransactionGraph, *domain.Swap) {
	t.Helper()
	tctx := domain.NewTransactionContext("sig", 1)
	swap := tctx.AddSwap(false, "Prog", "Test DEX", "swap",
		domain.AccountPair{Source: "userSrc", Destination: "userDst"}, nil, nil)

	g := tctx.Graph
	// Two outgoing legs from the user source, one incoming to the user
	// destination, plus an untagged transfer that must be ignored.
	g.AddEdge(vtx("userSrc", 0), vtx("poolDst", 0), tagged(swap.ID, 60), -1)
	g.AddEdge(vtx("userSrc", 1), vtx("poolDst", 0), tagged(swap.ID, 40), -1)
	g.AddEdge(vtx("poolSrc", 0), vtx("userDst", 0), tagged(swap.ID, 95), -1)
	g.AddEdge(vtx("userDst", 0), vtx("userDst", 1), graph.TransferProperties{
		Type:              graph.TypeTransfer,
		AmountSource:      5,
		AmountDestination: 5,
	}, -1)

	return g, swap
}

func TestAmountInFromBalanceChanges(t *testing.T) {
	g, swap := balanceFixture(t)

	if got := AmountInFromBalanceChanges(g, swap); got != 100 {
		t.Errorf("amount in = %d, want 100", got)
	}
}

func TestAmountOutFromBalanceChanges(t *testing.T) {
	g, swap := balanceFixture(t)

	// The self-edge userDst.0 -> userDst.1 does not count as an arrival.
	if got := AmountOutFromBalanceChanges(g, swap); got != 95 {
		t.Errorf("amount out = %d, want 95", got)
	}
}

func TestBalanceChanges_SingleSnapshot(t *testing.T) {
	tctx := domain.NewTransactionContext("sig", 1)
	swap := tctx.AddSwap(false, "Prog", "Test DEX", "swap",
		domain.AccountPair{Source: "userSrc", Destination: "userDst"}, nil, nil)

	// One snapshot per endpoint carries no evidence of a balance change.
	g := tctx.Graph
	g.AddEdge(vtx("userSrc", 0), vtx("userDst", 0), tagged(swap.ID, 100), -1)

	if got := AmountInFromBalanceChanges(g, swap); got != 0 {
		t.Errorf("amount in = %d, want 0", got)
	}
	if got := AmountOutFromBalanceChanges(g, swap); got != 0 {
		t.Errorf("amount out = %d, want 0", got)
	}
}

func TestBalanceChanges_OtherSwapExcluded(t *testing.T) {
	g, swap := balanceFixture(t)
	g.AddEdge(vtx("userSrc", 2), vtx("elsewhere", 0), tagged(swap.ID+1, 500), -1)

	if got := AmountInFromBalanceChanges(g, swap); got != 100 {
		t.Errorf("amount in = %d, want 100 with foreign swap excluded", got)
	}
}
