// Package resolver reconstructs the semantic shape of swap operations from
// the raw transfer graph of a transaction. For each detected swap it
// derives amount in, amount out and fee, then augments the graph with
// synthetic edges so the swap reads as a single
// source -> program -> destination flow instead of a tangle of pool
// transfers. Swaps that cannot be resolved are dropped from the
// transaction; the graph is never rolled back.
package resolver

import (
	"fmt"
	"log"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/graph"
)

// Synthetic edge keys are spliced between real keys by fixed offsets: the
// pool-to-pool SWAP edge lands swapEdgeKeyOffset after the transfer that
// fed the pool, and the user-facing edges land spliceKeyOffset inside the
// subgraph's key range. Real keys advance in steps of 10, so the offsets
// cannot collide with real transfers; they can collide with synthetic keys
// of another swap sharing the exact same terminal edge, which does not
// occur for well-formed swap spans.
const (
	swapEdgeKeyOffset = 5
	spliceKeyOffset   = 1
)

// PoolMarker is the one write capability the resolver needs on shared
// account state. Marking is an idempotent set-to-true.
type PoolMarker interface {
	MarkPool(address string)
}

// AccountHandle exposes the graph vertex of a virtual program account.
type AccountHandle interface {
	Vertex() graph.AccountVertex
}

// ProgramAccountFactory returns a stable virtual vertex for a program
// address, creating it on first use within a transaction.
type ProgramAccountFactory interface {
	PrepareSwapProgramAccount(g *graph.TransactionGraph, programAddress string) (AccountHandle, error)
}

// Resolver resolves swap paths in transaction graphs.
type Resolver struct {
	pools    PoolMarker
	programs ProgramAccountFactory
	selector VertexSelector
	logger   *log.Logger
}

// Options configures a Resolver.
type Options struct {
	Pools    PoolMarker
	Programs ProgramAccountFactory
	Selector VertexSelector // defaults to SnapshotOrderSelector
	Logger   *log.Logger    // defaults to log.Default()
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	selector := opts.Selector
	if selector == nil {
		selector = SnapshotOrderSelector{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		pools:    opts.Pools,
		programs: opts.Programs,
		selector: selector,
		logger:   logger,
	}
}

// ResolveSwapPaths resolves every swap in the transaction context, plain
// swaps first and router swaps second: router resolution reads the
// SWAP_INCOMING/SWAP_OUTGOING edges the first phase inserted for its
// nested swaps. Swaps that fail to resolve are removed from the context;
// edges already committed for other swaps stay in the graph.
func (r *Resolver) ResolveSwapPaths(tctx *domain.TransactionContext) {
	failed := make(map[int64]struct{})

	for _, swap := range tctx.Swaps {
		if swap.Router {
			continue
		}
		if err := r.resolveSwap(tctx, swap); err != nil {
			r.logger.Printf("swap %d failed to resolve, tx %s: %v", swap.ID, tctx.Signature, err)
			failed[swap.ID] = struct{}{}
		}
	}

	for _, swap := range tctx.Swaps {
		if !swap.Router {
			continue
		}
		if err := r.resolveRouterSwap(tctx, swap); err != nil {
			r.logger.Printf("router swap %d failed to resolve, tx %s: %v", swap.ID, tctx.Signature, err)
			failed[swap.ID] = struct{}{}
		}
	}

	if len(failed) == 0 {
		return
	}
	kept := tctx.Swaps[:0]
	for _, swap := range tctx.Swaps {
		if _, ok := failed[swap.ID]; !ok {
			kept = append(kept, swap)
		}
	}
	tctx.Swaps = kept
}

// pendingEdge is a synthetic edge computed but not yet committed. All
// graph mutation for one swap happens in a single batch after every
// computation step succeeded, so a failed swap leaves the graph untouched.
type pendingEdge struct {
	source graph.AccountVertex
	target graph.AccountVertex
	key    int64
	props  graph.TransferProperties
}

// resolveSwap resolves one plain swap: it identifies the user and pool
// vertices, derives amount in and amount out from shortest paths through
// the swap's subgraph, computes the fee from the net balance flow at the
// user destination, and commits three synthetic edges (pool SWAP,
// user SWAP_INCOMING, user SWAP_OUTGOING).
func (r *Resolver) resolveSwap(tctx *domain.TransactionContext, swap *domain.Swap) error {
	sub := tctx.Graph.SubgraphForSwap(swap.ID)
	if sub == nil || sub.EdgeCount() == 0 {
		return ErrEmptySubgraph
	}

	userSource, ok := r.selector.SourceVertex(sub.NodesByAddress(swap.UserAddresses.Source))
	if !ok {
		return fmt.Errorf("%w: source %s", ErrMissingVertex, swap.UserAddresses.Source)
	}
	userDest, ok := r.selector.DestinationVertex(sub.NodesByAddress(swap.UserAddresses.Destination))
	if !ok {
		return fmt.Errorf("%w: destination %s", ErrMissingVertex, swap.UserAddresses.Destination)
	}

	// Collect candidate pool snapshots and partition them by direction:
	// a pool that the user's deposit can reach received the input side, a
	// pool that reaches the user's destination paid the output side.
	var poolCandidates []graph.AccountVertex
	switch pools := swap.PoolAddresses.(type) {
	case domain.PairedPools:
		poolCandidates = append(poolCandidates, sub.NodesByAddress(pools.Destination)...)
		poolCandidates = append(poolCandidates, sub.NodesByAddress(pools.Source)...)
	case domain.CandidatePools:
		for _, v := range sub.Nodes() {
			if pools.Contains(v.Address) {
				poolCandidates = append(poolCandidates, v)
			}
		}
	}

	var poolDestCandidates, poolSourceCandidates []graph.AccountVertex
	for _, pool := range poolCandidates {
		r.pools.MarkPool(pool.Address)
		if sub.HasPath(userSource, pool) {
			poolDestCandidates = append(poolDestCandidates, pool)
		}
		if sub.HasPath(pool, userDest) {
			poolSourceCandidates = append(poolSourceCandidates, pool)
		}
	}

	// The pool snapshot closest in time after the deposit received it;
	// the one closest in time before the payout made it.
	poolDest, okDest := graph.MaxVersion(poolDestCandidates)
	poolSource, okSource := graph.MinVersion(poolSourceCandidates)
	if !okDest || !okSource {
		return fmt.Errorf("%w: swap %d", ErrMissingPoolVertex, swap.ID)
	}

	// Amount in: what actually arrived at the destination pool along the
	// deposit path, summed over the parallel edges of the terminal hop.
	pathIn, ok := sub.ShortestPath(userSource, poolDest)
	if !ok || len(pathIn) < 2 {
		return fmt.Errorf("%w: %s -> %s", ErrNoPath, userSource, poolDest)
	}
	_, _, lastHop := sub.LastTransfer(pathIn)
	var amountIn int64
	terminalKey := int64(-1)
	for key, props := range lastHop {
		amountIn += props.AmountDestination
		if terminalKey < 0 || key < terminalKey {
			terminalKey = key
		}
	}
	swapEdgeKey := terminalKey + swapEdgeKeyOffset

	// Amount out, two ways: what the source pool actually paid on the
	// payout path, and the net balance flow into the user destination
	// across the whole subgraph. The difference is the fee retained
	// between pool and user; it can go negative when the naive balance
	// accounting undercounts.
	pathOut, ok := sub.ShortestPath(poolSource, userDest)
	if !ok || len(pathOut) < 2 {
		return fmt.Errorf("%w: %s -> %s", ErrNoPath, poolSource, userDest)
	}
	_, _, firstHop := sub.FirstTransfer(pathOut)
	var realSwapAmountOut int64
	for _, props := range firstHop {
		realSwapAmountOut += props.AmountSource
	}

	var amountOut int64
	destAddress := swap.UserAddresses.Destination
	for _, e := range sub.Edges() {
		if e.Source.Address == destAddress && e.Target.Address != destAddress {
			amountOut -= e.Props.AmountSource
		}
		if e.Target.Address == destAddress && e.Source.Address != destAddress {
			amountOut += e.Props.AmountSource
		}
	}

	fee := realSwapAmountOut - amountOut

	programAccount, err := r.programs.PrepareSwapProgramAccount(tctx.Graph, swap.ProgramAddress)
	if err != nil {
		return fmt.Errorf("prepare program account for swap %d: %w", swap.ID, err)
	}
	programVertex := programAccount.Vertex()

	subMinKey, subMaxKey, _ := sub.KeyBounds()

	pending := []pendingEdge{
		{
			// Pool-to-pool edge representing the exchange itself.
			source: poolDest,
			target: poolSource,
			key:    swapEdgeKey,
			props: graph.TransferProperties{
				Type:               graph.TypeSwap,
				ProgramAddress:     swap.ProgramAddress,
				AmountSource:       amountIn,
				AmountDestination:  amountOut,
				SwapID:             ref(swap.ID),
				SwapParentID:       ref(swap.ID),
				ParentRouterSwapID: swap.ParentRouterSwapID,
			},
		},
		{
			source: userSource,
			target: programVertex,
			key:    subMinKey + spliceKeyOffset,
			props: graph.TransferProperties{
				Type:               graph.TypeSwapIncoming,
				ProgramAddress:     swap.ProgramAddress,
				AmountSource:       amountIn,
				AmountDestination:  amountIn,
				SwapID:             ref(swap.ID),
				SwapParentID:       ref(swap.ID),
				ParentRouterSwapID: swap.ParentRouterSwapID,
			},
		},
		{
			source: programVertex,
			target: userDest,
			key:    subMaxKey - spliceKeyOffset,
			props: graph.TransferProperties{
				Type:               graph.TypeSwapOutgoing,
				ProgramAddress:     swap.ProgramAddress,
				AmountSource:       amountOut,
				AmountDestination:  amountOut,
				SwapID:             ref(swap.ID),
				SwapParentID:       ref(swap.ID),
				ParentRouterSwapID: swap.ParentRouterSwapID,
			},
		},
	}
	for _, e := range pending {
		tctx.Graph.AddEdge(e.source, e.target, e.props, e.key)
	}

	swap.Fee = fee
	swap.ProgramAccountVertex = &programVertex

	r.logger.Printf("resolved swap %d amount_in=%d amount_out=%d fee=%d, tx %s",
		swap.ID, amountIn, amountOut, fee, tctx.Signature)
	return nil
}

// resolveRouterSwap resolves a router swap from the synthetic edges of its
// already-resolved nested swaps: the minimum-key SWAP_INCOMING edge is the
// first leg of the first nested swap, the maximum-key SWAP_OUTGOING edge
// the last leg of the last one. Two edges through the router's program
// account make the aggregate exchange user-visible.
func (r *Resolver) resolveRouterSwap(tctx *domain.TransactionContext, routerSwap *domain.Swap) error {
	sub := tctx.Graph.SubgraphForSwap(routerSwap.ID)
	if sub == nil || sub.EdgeCount() == 0 {
		return ErrEmptySubgraph
	}

	var incoming, outgoing *graph.Edge
	for _, e := range sub.Edges() {
		e := e
		switch e.Props.Type {
		case graph.TypeSwapIncoming:
			if incoming == nil || e.Key < incoming.Key {
				incoming = &e
			}
		case graph.TypeSwapOutgoing:
			if outgoing == nil || e.Key > outgoing.Key {
				outgoing = &e
			}
		}
	}
	if incoming == nil {
		return fmt.Errorf("%w: no SWAP_INCOMING for router swap %d", ErrMissingTypedEdge, routerSwap.ID)
	}
	if outgoing == nil {
		return fmt.Errorf("%w: no SWAP_OUTGOING for router swap %d", ErrMissingTypedEdge, routerSwap.ID)
	}

	amountIn := incoming.Props.AmountSource
	amountOut := outgoing.Props.AmountDestination

	programAccount, err := r.programs.PrepareSwapProgramAccount(tctx.Graph, routerSwap.ProgramAddress)
	if err != nil {
		return fmt.Errorf("prepare program account for router swap %d: %w", routerSwap.ID, err)
	}
	programVertex := programAccount.Vertex()

	pending := []pendingEdge{
		{
			source: incoming.Source,
			target: programVertex,
			key:    incoming.Key + spliceKeyOffset,
			props: graph.TransferProperties{
				Type:               graph.TypeRouterIncoming,
				ProgramAddress:     routerSwap.ProgramAddress,
				AmountSource:       amountIn,
				AmountDestination:  amountIn,
				SwapID:             ref(routerSwap.ID),
				SwapParentID:       ref(routerSwap.ID),
				ParentRouterSwapID: ref(routerSwap.ID),
			},
		},
		{
			source: programVertex,
			target: outgoing.Target,
			key:    outgoing.Key - spliceKeyOffset,
			props: graph.TransferProperties{
				Type:               graph.TypeRouterOutgoing,
				ProgramAddress:     routerSwap.ProgramAddress,
				AmountSource:       amountOut,
				AmountDestination:  amountOut,
				SwapID:             ref(routerSwap.ID),
				SwapParentID:       ref(routerSwap.ID),
				ParentRouterSwapID: ref(routerSwap.ID),
			},
		},
	}
	for _, e := range pending {
		tctx.Graph.AddEdge(e.source, e.target, e.props, e.key)
	}

	routerSwap.ProgramAccountVertex = &programVertex

	r.logger.Printf("resolved router swap %d amount_in=%d amount_out=%d, tx %s",
		routerSwap.ID, amountIn, amountOut, tctx.Signature)
	return nil
}

func ref(v int64) *int64 {
	return &v
}
