package graph

import "sort"

// Auto-assigned edge keys start at 10 and advance in steps of 10, leaving
// room between real transfers for the resolver's synthetic edges.
const (
	firstAutoKey = 10
	autoKeyStep  = 10
)

// TransactionGraph is a directed multigraph of token transfers inside one
// transaction. Nodes are account snapshots; parallel edges between the same
// vertex pair are distinguished by an integer key that also fixes their
// order. The resolver only ever appends edges; existing edges are never
// rewritten or removed.
type TransactionGraph struct {
	nodes map[AccountVertex]struct{}
	out   map[AccountVertex]map[AccountVertex]map[int64]TransferProperties

	edgeCount int
	nextKey   int64
}

// NewTransactionGraph creates an empty transaction graph.
func NewTransactionGraph() *TransactionGraph {
	return &TransactionGraph{
		nodes:   make(map[AccountVertex]struct{}),
		out:     make(map[AccountVertex]map[AccountVertex]map[int64]TransferProperties),
		nextKey: firstAutoKey,
	}
}

// AddNode adds a vertex if it is not already present.
func (g *TransactionGraph) AddNode(v AccountVertex) {
	g.nodes[v] = struct{}{}
}

// HasNode reports whether the vertex exists in the graph.
func (g *TransactionGraph) HasNode(v AccountVertex) bool {
	_, ok := g.nodes[v]
	return ok
}

// NodeCount returns the number of vertices.
func (g *TransactionGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *TransactionGraph) EdgeCount() int {
	return g.edgeCount
}

// Nodes returns all vertices sorted by (address, version).
func (g *TransactionGraph) Nodes() []AccountVertex {
	out := make([]AccountVertex, 0, len(g.nodes))
	for v := range g.nodes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// NodesByAddress returns every snapshot of the given account, ordered by
// version.
func (g *TransactionGraph) NodesByAddress(address string) []AccountVertex {
	var out []AccountVertex
	for v := range g.nodes {
		if v.Address == address {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// AddEdge adds a keyed edge between two vertices, registering both
// endpoints as nodes. A negative key requests auto assignment. An explicit
// key that already exists within the same (source, target) parallel set
// replaces that edge's payload, mirroring keyed-multigraph semantics;
// callers picking explicit keys are expected to splice between existing
// keys, not onto them. Returns the key used.
func (g *TransactionGraph) AddEdge(source, target AccountVertex, props TransferProperties, key int64) int64 {
	if key < 0 {
		key = g.nextKey
		g.nextKey += autoKeyStep
	}

	g.AddNode(source)
	g.AddNode(target)

	targets, ok := g.out[source]
	if !ok {
		targets = make(map[AccountVertex]map[int64]TransferProperties)
		g.out[source] = targets
	}
	parallel, ok := targets[target]
	if !ok {
		parallel = make(map[int64]TransferProperties)
		targets[target] = parallel
	}
	if _, exists := parallel[key]; !exists {
		g.edgeCount++
	}
	parallel[key] = props

	return key
}

// EdgeData returns the parallel-edge set between source and target, keyed
// by edge key. The map must not be mutated by the caller.
func (g *TransactionGraph) EdgeData(source, target AccountVertex) map[int64]TransferProperties {
	return g.out[source][target]
}

// Edges returns every edge, ordered by (key, source, target) so that
// enumeration is deterministic.
func (g *TransactionGraph) Edges() []Edge {
	out := make([]Edge, 0, g.edgeCount)
	for source, targets := range g.out {
		for target, parallel := range targets {
			for key, props := range parallel {
				out = append(out, Edge{Source: source, Target: target, Key: key, Props: props})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Source != b.Source {
			if a.Source.Address != b.Source.Address {
				return a.Source.Address < b.Source.Address
			}
			return a.Source.Version < b.Source.Version
		}
		if a.Target.Address != b.Target.Address {
			return a.Target.Address < b.Target.Address
		}
		return a.Target.Version < b.Target.Version
	})
	return out
}

// KeyBounds returns the minimum and maximum edge key. ok is false when the
// graph has no edges.
func (g *TransactionGraph) KeyBounds() (min, max int64, ok bool) {
	for _, targets := range g.out {
		for _, parallel := range targets {
			for key := range parallel {
				if !ok {
					min, max, ok = key, key, true
					continue
				}
				if key < min {
					min = key
				}
				if key > max {
					max = key
				}
			}
		}
	}
	return min, max, ok
}

// neighbors returns the successors of v sorted by (address, version) so
// that traversal order, and therefore shortest-path tie-breaking, is
// deterministic.
func (g *TransactionGraph) neighbors(v AccountVertex) []AccountVertex {
	targets := g.out[v]
	if len(targets) == 0 {
		return nil
	}
	out := make([]AccountVertex, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// HasPath reports whether target is reachable from source.
func (g *TransactionGraph) HasPath(source, target AccountVertex) bool {
	_, ok := g.ShortestPath(source, target)
	return ok
}

// ShortestPath returns a hop-count minimal path from source to target,
// found by breadth-first search. A path from a vertex to itself is the
// single-node path. ok is false when no path exists or either endpoint is
// missing.
func (g *TransactionGraph) ShortestPath(source, target AccountVertex) ([]AccountVertex, bool) {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil, false
	}
	if source == target {
		return []AccountVertex{source}, true
	}

	prev := map[AccountVertex]AccountVertex{source: source}
	queue := []AccountVertex{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, next := range g.neighbors(v) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = v
			if next == target {
				return buildPath(prev, source, target), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func buildPath(prev map[AccountVertex]AccountVertex, source, target AccountVertex) []AccountVertex {
	var rev []AccountVertex
	for v := target; ; v = prev[v] {
		rev = append(rev, v)
		if v == source {
			break
		}
	}
	path := make([]AccountVertex, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// FirstTransfer returns the first hop of a path together with the
// parallel-edge set on that hop. Multiple parallel edges may share the hop.
func (g *TransactionGraph) FirstTransfer(path []AccountVertex) (AccountVertex, AccountVertex, map[int64]TransferProperties) {
	source, target := path[0], path[1]
	return source, target, g.EdgeData(source, target)
}

// LastTransfer returns the final hop of a path together with the
// parallel-edge set on that hop.
func (g *TransactionGraph) LastTransfer(path []AccountVertex) (AccountVertex, AccountVertex, map[int64]TransferProperties) {
	source, target := path[len(path)-2], path[len(path)-1]
	return source, target, g.EdgeData(source, target)
}

// SubgraphForSwap returns a fresh edge-induced subgraph of the edges lying
// in the instruction span of the given swap, including synthetic edges of
// nested swaps when the id belongs to a router. Returns nil when no edge
// matches. The result is a snapshot: edges added to the parent graph after
// extraction are not visible through it.
func (g *TransactionGraph) SubgraphForSwap(swapID int64) *TransactionGraph {
	var sub *TransactionGraph
	for source, targets := range g.out {
		for target, parallel := range targets {
			for key, props := range parallel {
				if !props.BelongsToSwap(swapID) {
					continue
				}
				if sub == nil {
					sub = NewTransactionGraph()
				}
				sub.AddEdge(source, target, props, key)
			}
		}
	}
	return sub
}
