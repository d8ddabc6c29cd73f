package domain

import "testing"

func TestAddSwap_SequentialIDs(t *testing.T) {
	tctx := NewTransactionContext("sig", 1)

	s1 := tctx.AddSwap(false, "p1", "DEX One", "swap", AccountPair{}, nil, nil)
	s2 := tctx.AddSwap(true, "p2", "Router", "route", AccountPair{}, nil, nil)
	s3 := tctx.AddSwap(false, "p1", "DEX One", "swap", AccountPair{}, nil, &s2.ID)

	if s1.ID != 1 || s2.ID != 2 || s3.ID != 3 {
		t.Fatalf("swap IDs = %d, %d, %d, want 1, 2, 3", s1.ID, s2.ID, s3.ID)
	}
	if len(tctx.Swaps) != 3 {
		t.Fatalf("len(Swaps) = %d, want 3", len(tctx.Swaps))
	}

	if !s3.IsChildSwap() || *s3.ParentRouterSwapID != s2.ID {
		t.Errorf("s3 should be a child of s2")
	}
	if s1.IsChildSwap() {
		t.Errorf("s1 should not be a child swap")
	}

	if got := tctx.GetSwap(2); got != s2 {
		t.Errorf("GetSwap(2) = %v, want s2", got)
	}
	if tctx.GetSwap(99) != nil {
		t.Error("GetSwap for unknown id must return nil")
	}
}

func TestComputePriorityFee(t *testing.T) {
	tctx := NewTransactionContext("sig", 1)
	tctx.ComputeUnitsConsumed = 200_000

	tctx.ComputePriorityFee(50_000)
	if tctx.PriorityFee != 10_000 {
		t.Errorf("priority fee = %d, want 10000", tctx.PriorityFee)
	}

	tctx.ComputePriorityFee(0)
	if tctx.PriorityFee != 0 {
		t.Errorf("priority fee with zero price = %d, want 0", tctx.PriorityFee)
	}

	tctx.ComputeUnitsConsumed = 0
	tctx.ComputePriorityFee(50_000)
	if tctx.PriorityFee != 0 {
		t.Errorf("priority fee with zero units = %d, want 0", tctx.PriorityFee)
	}

	// Corrupt compute-unit prices are capped at one SOL.
	tctx.ComputeUnitsConsumed = 1_400_000
	tctx.ComputePriorityFee(1_000_000_000_000)
	if tctx.PriorityFee != 1_000_000_000 {
		t.Errorf("priority fee = %d, want capped at 1 SOL", tctx.PriorityFee)
	}
}

func TestPoolAddresses_Shapes(t *testing.T) {
	paired := PairedPools{Source: "src", Destination: "dst"}
	addrs := paired.Addresses()
	if len(addrs) != 2 || addrs[0] != "dst" || addrs[1] != "src" {
		t.Errorf("paired addresses = %v, want destination first", addrs)
	}

	candidates := CandidatePools{"a", "b"}
	if !candidates.Contains("a") || candidates.Contains("c") {
		t.Error("candidate membership wrong")
	}

	swap := &Swap{PoolAddresses: candidates}
	if got := swap.PoolAddressList(); len(got) != 2 {
		t.Errorf("PoolAddressList = %v, want 2 entries", got)
	}

	router := &Swap{Router: true}
	if router.PoolAddressList() != nil {
		t.Error("router swap must have no pool addresses")
	}
}
