package graph

import "fmt"

// AccountVertex identifies one snapshot of an account within a transaction.
// Version is a monotonically increasing snapshot index per address, assigned
// whenever the account's balance changes. Vertices are immutable values;
// multiple vertices may share an address.
type AccountVertex struct {
	Address string
	Version int
}

// ID returns a stable node identifier used in serialized output.
func (v AccountVertex) ID() string {
	return fmt.Sprintf("%s_v%d", v.Address, v.Version)
}

func (v AccountVertex) String() string {
	return v.ID()
}

// byVersion orders vertices by snapshot version, then address for stability.
func byVersion(a, b AccountVertex) int {
	switch {
	case a.Version != b.Version:
		return a.Version - b.Version
	case a.Address < b.Address:
		return -1
	case a.Address > b.Address:
		return 1
	default:
		return 0
	}
}

// MinVersion returns the earliest snapshot among candidates.
func MinVersion(candidates []AccountVertex) (AccountVertex, bool) {
	if len(candidates) == 0 {
		return AccountVertex{}, false
	}
	best := candidates[0]
	for _, v := range candidates[1:] {
		if byVersion(v, best) < 0 {
			best = v
		}
	}
	return best, true
}

// MaxVersion returns the latest snapshot among candidates.
func MaxVersion(candidates []AccountVertex) (AccountVertex, bool) {
	if len(candidates) == 0 {
		return AccountVertex{}, false
	}
	best := candidates[0]
	for _, v := range candidates[1:] {
		if byVersion(v, best) > 0 {
			best = v
		}
	}
	return best, true
}
