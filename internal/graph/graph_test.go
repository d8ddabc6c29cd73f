package graph

import "testing"

func v(address string, version int) AccountVertex {
	return AccountVertex{Address: address, Version: version}
}

func ref(n int64) *int64 { return &n }

func TestAddEdge_AutoKeys(t *testing.T) {
	g := NewTransactionGraph()

	k1 := g.AddEdge(v("a", 0), v("b", 0), TransferProperties{Type: TypeTransfer}, -1)
	k2 := g.AddEdge(v("b", 0), v("c", 0), TransferProperties{Type: TypeTransfer}, -1)
	k3 := g.AddEdge(v("a", 0), v("b", 0), TransferProperties{Type: TypeTransfer}, -1)

	if k1 != 10 || k2 != 20 || k3 != 30 {
		t.Fatalf("auto keys = %d, %d, %d, want 10, 20, 30", k1, k2, k3)
	}
	if g.EdgeCount() != 3 {
		t.Fatalf("EdgeCount = %d, want 3", g.EdgeCount())
	}
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount = %d, want 3", g.NodeCount())
	}
}

func TestAddEdge_ExplicitKeySplices(t *testing.T) {
	g := NewTransactionGraph()

	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{Type: TypeTransfer}, -1)
	k := g.AddEdge(v("a", 0), v("b", 0), TransferProperties{Type: TypeSwap}, 15)
	if k != 15 {
		t.Fatalf("explicit key = %d, want 15", k)
	}

	parallel := g.EdgeData(v("a", 0), v("b", 0))
	if len(parallel) != 2 {
		t.Fatalf("parallel edges = %d, want 2", len(parallel))
	}
	if parallel[15].Type != TypeSwap {
		t.Fatalf("edge 15 type = %s, want %s", parallel[15].Type, TypeSwap)
	}
}

func TestEdges_OrderedByKey(t *testing.T) {
	g := NewTransactionGraph()

	g.AddEdge(v("c", 0), v("d", 0), TransferProperties{}, 30)
	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{}, 10)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{}, 20)

	edges := g.Edges()
	if len(edges) != 3 {
		t.Fatalf("len(edges) = %d, want 3", len(edges))
	}
	for i, want := range []int64{10, 20, 30} {
		if edges[i].Key != want {
			t.Errorf("edges[%d].Key = %d, want %d", i, edges[i].Key, want)
		}
	}
}

func TestKeyBounds(t *testing.T) {
	g := NewTransactionGraph()

	if _, _, ok := g.KeyBounds(); ok {
		t.Fatal("KeyBounds on empty graph should report no edges")
	}

	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{}, 10)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{}, 40)
	g.AddEdge(v("a", 0), v("c", 0), TransferProperties{}, 25)

	min, max, ok := g.KeyBounds()
	if !ok {
		t.Fatal("KeyBounds should find edges")
	}
	if min != 10 || max != 40 {
		t.Fatalf("KeyBounds = (%d, %d), want (10, 40)", min, max)
	}
}

func TestNodesByAddress(t *testing.T) {
	g := NewTransactionGraph()

	g.AddNode(v("a", 2))
	g.AddNode(v("a", 0))
	g.AddNode(v("a", 1))
	g.AddNode(v("b", 0))

	nodes := g.NodesByAddress("a")
	if len(nodes) != 3 {
		t.Fatalf("len(nodes) = %d, want 3", len(nodes))
	}
	for i, n := range nodes {
		if n.Version != i {
			t.Errorf("nodes[%d].Version = %d, want %d", i, n.Version, i)
		}
	}
}

func TestShortestPath(t *testing.T) {
	g := NewTransactionGraph()

	// Two routes a -> d: a long chain and a direct shortcut.
	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{}, -1)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{}, -1)
	g.AddEdge(v("c", 0), v("d", 0), TransferProperties{}, -1)
	g.AddEdge(v("a", 0), v("d", 0), TransferProperties{}, -1)

	path, ok := g.ShortestPath(v("a", 0), v("d", 0))
	if !ok {
		t.Fatal("expected a path")
	}
	if len(path) != 2 {
		t.Fatalf("len(path) = %d, want 2 (direct hop)", len(path))
	}

	if _, ok := g.ShortestPath(v("d", 0), v("a", 0)); ok {
		t.Fatal("edges are directed, reverse path must not exist")
	}
}

func TestShortestPath_SelfAndMissing(t *testing.T) {
	g := NewTransactionGraph()
	g.AddNode(v("a", 0))

	path, ok := g.ShortestPath(v("a", 0), v("a", 0))
	if !ok || len(path) != 1 {
		t.Fatalf("self path = %v, %v, want single-node path", path, ok)
	}

	if _, ok := g.ShortestPath(v("a", 0), v("missing", 0)); ok {
		t.Fatal("path to missing vertex must not exist")
	}
}

func TestFirstAndLastTransfer(t *testing.T) {
	g := NewTransactionGraph()

	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{AmountSource: 1}, 10)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{AmountSource: 2}, 20)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{AmountSource: 3}, 30)

	path, ok := g.ShortestPath(v("a", 0), v("c", 0))
	if !ok {
		t.Fatal("expected a path")
	}

	_, _, first := g.FirstTransfer(path)
	if len(first) != 1 || first[10].AmountSource != 1 {
		t.Fatalf("first hop = %v, want single edge with amount 1", first)
	}

	_, _, last := g.LastTransfer(path)
	if len(last) != 2 {
		t.Fatalf("last hop has %d parallel edges, want 2", len(last))
	}
}

func TestSubgraphForSwap(t *testing.T) {
	g := NewTransactionGraph()

	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{SwapParentID: ref(1)}, 10)
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{ParentRouterSwapID: ref(1)}, 20)
	g.AddEdge(v("c", 0), v("d", 0), TransferProperties{SwapParentID: ref(2)}, 30)
	g.AddEdge(v("d", 0), v("e", 0), TransferProperties{}, 40)

	sub := g.SubgraphForSwap(1)
	if sub == nil {
		t.Fatal("expected a subgraph")
	}
	if sub.EdgeCount() != 2 {
		t.Fatalf("subgraph EdgeCount = %d, want 2", sub.EdgeCount())
	}
	// Keys carry over unchanged.
	min, max, _ := sub.KeyBounds()
	if min != 10 || max != 20 {
		t.Fatalf("subgraph KeyBounds = (%d, %d), want (10, 20)", min, max)
	}

	if g.SubgraphForSwap(99) != nil {
		t.Fatal("subgraph for unknown swap should be nil")
	}
}

func TestSubgraphForSwap_Snapshot(t *testing.T) {
	g := NewTransactionGraph()
	g.AddEdge(v("a", 0), v("b", 0), TransferProperties{SwapParentID: ref(1)}, 10)

	sub := g.SubgraphForSwap(1)

	// Edges added to the parent afterwards are invisible to the snapshot.
	g.AddEdge(v("b", 0), v("c", 0), TransferProperties{SwapParentID: ref(1)}, 20)
	if sub.EdgeCount() != 1 {
		t.Fatalf("snapshot EdgeCount = %d, want 1", sub.EdgeCount())
	}
}

func TestMinMaxVersion(t *testing.T) {
	candidates := []AccountVertex{v("a", 2), v("a", 0), v("a", 1)}

	min, ok := MinVersion(candidates)
	if !ok || min.Version != 0 {
		t.Fatalf("MinVersion = %v, %v, want version 0", min, ok)
	}
	max, ok := MaxVersion(candidates)
	if !ok || max.Version != 2 {
		t.Fatalf("MaxVersion = %v, %v, want version 2", max, ok)
	}

	if _, ok := MinVersion(nil); ok {
		t.Fatal("MinVersion of empty set should report not found")
	}
}
