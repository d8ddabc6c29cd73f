package registry

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-graph-lab/internal/graph"
)

// ProgramAccount is the virtual account standing in for a swap program in
// the transaction graph. It exists so a swap can be drawn as a single
// source -> program -> destination flow; no on-chain transfer ever touches
// this vertex.
type ProgramAccount struct {
	Address string
	vertex  graph.AccountVertex
}

// Vertex returns the graph node of the program account.
func (p *ProgramAccount) Vertex() graph.AccountVertex {
	return p.vertex
}

// PrepareSwapProgramAccount returns the virtual vertex for a swap program,
// creating and registering it on first use. Repeat calls with the same
// address within a transaction return the same vertex.
func (r *Registry) PrepareSwapProgramAccount(g *graph.TransactionGraph, programAddress string) (*ProgramAccount, error) {
	if programAddress == "" {
		return nil, fmt.Errorf("empty program address")
	}

	r.mu.Lock()
	if existing, ok := r.programAccounts[programAddress]; ok {
		r.mu.Unlock()
		return existing, nil
	}

	account, ok := r.accounts[programAddress]
	if !ok {
		account = &Account{Address: programAddress, Type: AccountProgram}
		r.accounts[programAddress] = account
	}
	account.Type = AccountProgram

	// The virtual vertex takes the snapshot index after any real snapshot
	// of the same address already present in the transaction.
	version := len(r.versions[programAddress])
	av := &AccountVersion{Version: version, Account: account}
	r.versions[programAddress] = append(r.versions[programAddress], av)

	pa := &ProgramAccount{Address: programAddress, vertex: av.Vertex()}
	r.programAccounts[programAddress] = pa
	r.mu.Unlock()

	g.AddNode(pa.vertex)
	return pa, nil
}

// IsOnCurve reports whether a base58 address decodes to a point on the
// ed25519 curve. Program-derived addresses are constructed to be off the
// curve, so a false result for a valid 32-byte address indicates a PDA.
func IsOnCurve(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
