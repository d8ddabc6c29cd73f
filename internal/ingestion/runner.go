// Package ingestion drives the fetch-build-resolve-persist loop: it takes
// transaction signatures from a live subscription or a backfill scan,
// fetches each transaction, builds its transfer graph, resolves swap
// paths and writes the results to storage. Transactions are independent;
// one failing never stops the loop.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/graph"
	"solana-graph-lab/internal/graphbuilder"
	"solana-graph-lab/internal/observability"
	"solana-graph-lab/internal/registry"
	"solana-graph-lab/internal/resolver"
	"solana-graph-lab/internal/solana"
	"solana-graph-lab/internal/storage"
)

// ProgramFactory adapts the registry to the resolver's factory interface.
type ProgramFactory struct {
	Registry *registry.Registry
}

// PrepareSwapProgramAccount returns the virtual program vertex for the
// address, creating it on first use.
func (f ProgramFactory) PrepareSwapProgramAccount(g *graph.TransactionGraph, programAddress string) (resolver.AccountHandle, error) {
	account, err := f.Registry.PrepareSwapProgramAccount(g, programAddress)
	if err != nil {
		return nil, err
	}
	return account, nil
}

var _ resolver.ProgramAccountFactory = ProgramFactory{}

// Runner processes transactions end to end.
type Runner struct {
	rpc      solana.RPCClient
	ws       solana.WSClient
	swaps    storage.ResolvedSwapStore
	edges    storage.TransferEdgeStore
	accounts storage.AccountStore
	programs []string
	logger   *log.Logger
}

// Options configures a Runner.
type Options struct {
	// RPC fetches transactions. Required.
	RPC solana.RPCClient

	// WS feeds live signatures. Only needed for RunLive.
	WS solana.WSClient

	// SwapStore receives resolved swaps. Required.
	SwapStore storage.ResolvedSwapStore

	// EdgeStore receives transfer edges. Required.
	EdgeStore storage.TransferEdgeStore

	// AccountStore receives discovered accounts. Optional.
	AccountStore storage.AccountStore

	// Programs is the mentions filter for the live subscription.
	Programs []string

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		rpc:      opts.RPC,
		ws:       opts.WS,
		swaps:    opts.SwapStore,
		edges:    opts.EdgeStore,
		accounts: opts.AccountStore,
		programs: opts.Programs,
		logger:   logger,
	}
}

// ProcessSignature fetches, resolves and persists one transaction.
// A transaction already in storage is treated as processed, not as an
// error, so live and backfill feeds can overlap.
func (r *Runner) ProcessSignature(ctx context.Context, signature string) error {
	tx, err := r.rpc.GetParsedTransaction(ctx, signature)
	if err != nil {
		return fmt.Errorf("fetch transaction %s: %w", signature, err)
	}
	if tx == nil {
		observability.DefaultMetrics.TransactionsSkipped.WithLabelValues("not_found").Inc()
		r.logger.Printf("transaction %s not found, skipping", signature)
		return nil
	}
	if tx.Meta != nil && tx.Meta.Err != nil {
		observability.DefaultMetrics.TransactionsSkipped.WithLabelValues("failed_tx").Inc()
		return nil
	}

	tctx, reg := r.Resolve(tx)

	if err := r.persist(ctx, tctx, reg); err != nil {
		return err
	}

	observability.DefaultMetrics.TransactionsProcessed.Inc()
	observability.UpdateHighestSlot(tx.Slot)
	observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
	return nil
}

// Resolve builds the transfer graph for a fetched transaction and
// resolves its swap paths. The returned registry holds every account
// discovered along the way.
func (r *Runner) Resolve(tx *solana.ParsedTransaction) (*domain.TransactionContext, *registry.Registry) {
	reg := registry.New()
	builder := graphbuilder.NewBuilder(graphbuilder.Options{
		Registry: reg,
		Logger:   r.logger,
	})

	start := time.Now()
	tctx := builder.BuildTransaction(tx)

	for _, swap := range tctx.Swaps {
		observability.RecordSwapDetected(swap.ProgramName)
	}

	res := resolver.New(resolver.Options{
		Pools:    reg,
		Programs: ProgramFactory{Registry: reg},
		Logger:   r.logger,
	})

	detected := len(tctx.Swaps)
	res.ResolveSwapPaths(tctx)

	for _, swap := range tctx.Swaps {
		observability.RecordSwapResolved(swap.Router)
	}
	for i := 0; i < detected-len(tctx.Swaps); i++ {
		observability.RecordSwapFailed("unresolvable")
	}

	observability.DefaultMetrics.ResolutionLatency.Observe(time.Since(start).Seconds())
	observability.RecordGraphSize(tctx.Graph.NodeCount(), tctx.Graph.EdgeCount())

	return tctx, reg
}

// persist writes the resolved context to storage.
func (r *Runner) persist(ctx context.Context, tctx *domain.TransactionContext, reg *registry.Registry) error {
	swapRecords := tctx.ResolvedSwapRecords()
	if err := r.swaps.InsertBulk(ctx, swapRecords); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			observability.DefaultMetrics.TransactionsSkipped.WithLabelValues("already_stored").Inc()
			return nil
		}
		return fmt.Errorf("store resolved swaps for %s: %w", tctx.Signature, err)
	}

	if err := r.edges.InsertBulk(ctx, tctx.TransferEdgeRecords()); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("store transfer edges for %s: %w", tctx.Signature, err)
	}

	if r.accounts != nil {
		for _, a := range reg.AllAccounts() {
			record := &domain.AccountRecord{
				Address:     a.Address,
				MintAddress: a.MintAddress,
				Type:        string(a.Type),
				Owner:       a.Owner,
				IsPool:      a.IsPool,
			}
			if err := r.accounts.Upsert(ctx, record); err != nil {
				return fmt.Errorf("store account %s: %w", a.Address, err)
			}
		}
	}

	return nil
}

// RunLive subscribes to logs mentioning the configured programs and
// processes every notified signature until the context is cancelled.
func (r *Runner) RunLive(ctx context.Context) error {
	if r.ws == nil {
		return fmt.Errorf("no websocket client configured")
	}

	notifications, err := r.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: r.programs})
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}

	r.logger.Printf("live ingestion started, %d program filters", len(r.programs))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-notifications:
			if !ok {
				return fmt.Errorf("notification channel closed")
			}
			if notif.Err != nil {
				observability.DefaultMetrics.TransactionsSkipped.WithLabelValues("failed_tx").Inc()
				continue
			}
			if err := r.ProcessSignature(ctx, notif.Signature); err != nil {
				r.logger.Printf("process %s: %v", notif.Signature, err)
			}
		}
	}
}

// Backfill walks the signature history of an address backwards and
// processes up to limit transactions. A zero limit processes everything
// the RPC node returns.
func (r *Runner) Backfill(ctx context.Context, address string, limit int) (int, error) {
	const pageSize = 1000

	processed := 0
	before := ""

	for {
		opts := &solana.SignaturesOpts{Before: before, Limit: pageSize}
		if limit > 0 && limit-processed < pageSize {
			opts.Limit = limit - processed
		}

		sigs, err := r.rpc.GetSignaturesForAddress(ctx, address, opts)
		if err != nil {
			return processed, fmt.Errorf("get signatures for %s: %w", address, err)
		}
		if len(sigs) == 0 {
			return processed, nil
		}

		for _, sig := range sigs {
			if sig.Err != nil {
				observability.DefaultMetrics.TransactionsSkipped.WithLabelValues("failed_tx").Inc()
				continue
			}
			if err := r.ProcessSignature(ctx, sig.Signature); err != nil {
				r.logger.Printf("backfill %s: %v", sig.Signature, err)
			}
			processed++
			if limit > 0 && processed >= limit {
				return processed, nil
			}
		}

		before = sigs[len(sigs)-1].Signature
	}
}
