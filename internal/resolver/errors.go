package resolver

import "errors"

// Resolution errors. All of them are expected, data-dependent outcomes:
// fatal to the individual swap, never to the transaction. The orchestrator
// logs them and drops the swap.
var (
	// ErrEmptySubgraph means subgraph extraction found no edges for the swap.
	ErrEmptySubgraph = errors.New("no subgraph found for swap")

	// ErrMissingVertex means no snapshot of the user source or destination
	// account exists in the subgraph.
	ErrMissingVertex = errors.New("user vertex not found in subgraph")

	// ErrMissingPoolVertex means no pool candidate is reachable in the
	// required direction.
	ErrMissingPoolVertex = errors.New("pool vertex not found in subgraph")

	// ErrNoPath means the shortest-path query found no route, or a
	// degenerate single-node route.
	ErrNoPath = errors.New("no path between swap vertices")

	// ErrMissingTypedEdge means router resolution could not find a nested
	// SWAP_INCOMING or SWAP_OUTGOING edge.
	ErrMissingTypedEdge = errors.New("required typed edge not found in router subgraph")
)
