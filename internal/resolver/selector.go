package resolver

import "solana-graph-lab/internal/graph"

// VertexSelector picks one vertex out of several snapshots of the same
// account. Selection under ambiguity is a policy, not a derived invariant,
// so it is injectable; the default favors the earliest snapshot on the
// sending side and the latest on the receiving side.
type VertexSelector interface {
	// SourceVertex picks the snapshot representing the account before it
	// paid into the swap.
	SourceVertex(candidates []graph.AccountVertex) (graph.AccountVertex, bool)

	// DestinationVertex picks the snapshot representing the account after
	// it was paid out of the swap.
	DestinationVertex(candidates []graph.AccountVertex) (graph.AccountVertex, bool)
}

// SnapshotOrderSelector selects the minimum-version snapshot for sources
// (pre-swap balance) and the maximum-version snapshot for destinations
// (post-swap balance).
type SnapshotOrderSelector struct{}

var _ VertexSelector = SnapshotOrderSelector{}

// SourceVertex returns the earliest snapshot.
func (SnapshotOrderSelector) SourceVertex(candidates []graph.AccountVertex) (graph.AccountVertex, bool) {
	return graph.MinVersion(candidates)
}

// DestinationVertex returns the latest snapshot.
func (SnapshotOrderSelector) DestinationVertex(candidates []graph.AccountVertex) (graph.AccountVertex, bool) {
	return graph.MaxVersion(candidates)
}
