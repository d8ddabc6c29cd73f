// Package graphbuilder turns decoded transactions into transfer graphs.
// It walks the instruction tree, registers swap descriptors for known DEX
// programs, and adds one edge per observed transfer between versioned
// account snapshots.
package graphbuilder

import (
	"fmt"
	"log"
	"strconv"

	"solana-graph-lab/internal/discovery"
	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/graph"
	"solana-graph-lab/internal/registry"
	"solana-graph-lab/internal/solana"
)

// Transfer is one decoded value movement between two accounts.
type Transfer struct {
	Type               graph.TransferType
	ProgramAddress     string
	SourceAddress      string
	DestinationAddress string
	MintAddress        string
	Amount             int64
	SwapParentID       *int64
	ParentRouterSwapID *int64
}

// Builder accumulates transfers into a transaction graph, maintaining
// account versions in the registry as balances change.
type Builder struct {
	reg      *registry.Registry
	detector *discovery.Detector
	logger   *log.Logger
}

// Options configures a Builder.
type Options struct {
	// Registry receives the accounts and versions discovered while
	// building. Required.
	Registry *registry.Registry

	// Detector identifies swap instructions. Defaults to a detector over
	// the built-in program table.
	Detector *discovery.Detector

	// Logger for skipped instructions. Defaults to log.Default().
	Logger *log.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	detector := opts.Detector
	if detector == nil {
		detector = discovery.NewDetector(discovery.DetectorOptions{Logger: opts.Logger})
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{reg: opts.Registry, detector: detector, logger: logger}
}

// AddTransfer adds one transfer edge to the context's graph.
//
// The edge leaves the source account's latest snapshot and arrives at the
// destination's latest snapshot. When the graph already has a path from
// the destination snapshot back to the source snapshot, the destination
// is bumped to a fresh snapshot first so the edge cannot close a cycle.
// After the edge is placed the source gets a fresh snapshot carrying the
// debited balance, so later outgoing transfers leave from post-transfer
// state.
func (b *Builder) AddTransfer(tctx *domain.TransactionContext, t Transfer) graph.AccountVertex {
	b.ensureAccount(t.SourceAddress, t.MintAddress)
	b.ensureAccount(t.DestinationAddress, t.MintAddress)

	g := tctx.Graph

	srcVer := b.reg.LatestVersion(t.SourceAddress)
	dstVer := b.reg.LatestVersion(t.DestinationAddress)

	srcVertex := srcVer.Vertex()
	dstVertex := dstVer.Vertex()
	g.AddNode(srcVertex)
	if g.HasPath(dstVertex, srcVertex) {
		dstVer = b.reg.NewVersion(t.DestinationAddress)
		dstVertex = dstVer.Vertex()
	}
	g.AddNode(dstVertex)

	props := graph.TransferProperties{
		Type:               t.Type,
		ProgramAddress:     t.ProgramAddress,
		AmountSource:       t.Amount,
		AmountDestination:  t.Amount,
		SwapParentID:       t.SwapParentID,
		ParentRouterSwapID: t.ParentRouterSwapID,
	}
	g.AddEdge(srcVertex, dstVertex, props, -1)

	dstVer.ApplyTokenCredit(t.Amount)
	next := b.reg.NewVersion(t.SourceAddress)
	next.ApplyTokenDebit(t.Amount)

	return dstVertex
}

// ensureAccount registers an address on first sight.
func (b *Builder) ensureAccount(address, mint string) {
	if b.reg.GetAccount(address) != nil {
		return
	}
	accountType := registry.AccountUnknown
	if mint != "" {
		accountType = registry.AccountTokenAccount
	}
	b.reg.CreateAccount(address, mint, accountType, "", 0, 0)
}

// BuildTransaction decodes a jsonParsed transaction into a transaction
// context: swap descriptors from known DEX instructions, transfer edges
// from token and system instructions.
func (b *Builder) BuildTransaction(tx *solana.ParsedTransaction) *domain.TransactionContext {
	tctx := domain.NewTransactionContext(tx.Signature, tx.Slot)
	tctx.BlockTime = tx.BlockTime

	if tx.Meta != nil {
		tctx.Fee = int64(tx.Meta.Fee)
		tctx.ComputeUnitsConsumed = int64(tx.Meta.ComputeUnitsConsumed)
		if tx.Meta.Err != nil {
			tctx.Err = fmt.Sprintf("%v", tx.Meta.Err)
		}
	}
	if tx.Message != nil {
		tctx.FeePayer = tx.Message.FeePayer()
	}

	inner := make(map[int][]solana.ParsedInstruction)
	if tx.Meta != nil {
		for _, set := range tx.Meta.InnerInstructions {
			inner[set.Index] = set.Instructions
		}
	}

	if tx.Message != nil {
		for i, instr := range tx.Message.Instructions {
			b.processTopLevel(tctx, instr, inner[i])
		}
	}

	return tctx
}

// processTopLevel handles one top-level instruction and its CPI children.
func (b *Builder) processTopLevel(tctx *domain.TransactionContext, instr solana.ParsedInstruction, children []solana.ParsedInstruction) {
	prog, known := b.detector.Lookup(instr.ProgramID)
	if !known {
		b.maybeAddTransfer(tctx, instr, nil)
		for _, child := range children {
			b.maybeAddTransfer(tctx, child, nil)
		}
		return
	}

	user, pools, ok := b.detector.DescribeSwap(prog, instr.Accounts)
	if !ok {
		for _, child := range children {
			b.maybeAddTransfer(tctx, child, nil)
		}
		return
	}

	swap := tctx.AddSwap(prog.Router, prog.Address, prog.Name, prog.Layout.InstructionName, user, pools, nil)

	if !prog.Router {
		for _, child := range children {
			b.maybeAddTransfer(tctx, child, &swap.ID)
		}
		return
	}

	b.processRouterChildren(tctx, swap, children)
}

// processRouterChildren attributes a router's CPI children. A nested
// known DEX instruction opens a child swap; transfers that follow belong
// to that child until the next DEX instruction. Transfers seen before any
// child swap belong to the router itself.
func (b *Builder) processRouterChildren(tctx *domain.TransactionContext, router *domain.Swap, children []solana.ParsedInstruction) {
	current := &router.ID

	for _, child := range children {
		prog, known := b.detector.Lookup(child.ProgramID)
		if known && !prog.Router {
			user, pools, ok := b.detector.DescribeSwap(prog, child.Accounts)
			if !ok {
				continue
			}
			nested := tctx.AddSwap(false, prog.Address, prog.Name, prog.Layout.InstructionName, user, pools, &router.ID)
			current = &nested.ID
			continue
		}
		b.maybeAddTransfer(tctx, child, current)
	}
}

// maybeAddTransfer converts a parsed instruction into a transfer edge if
// it is one of the value-moving instruction types.
func (b *Builder) maybeAddTransfer(tctx *domain.TransactionContext, instr solana.ParsedInstruction, swapID *int64) {
	payload, ok := instr.Payload()
	if !ok {
		return
	}

	t := Transfer{ProgramAddress: instr.ProgramID, SwapParentID: swapID}

	switch payload.Type {
	case "transfer":
		if instr.Program == "system" {
			t.Type = graph.TypeNativeSOL
			t.SourceAddress = payload.Info.Source
			t.DestinationAddress = payload.Info.Destination
			t.Amount = int64(payload.Info.Lamports)
		} else {
			t.Type = graph.TypeTransfer
			t.SourceAddress = payload.Info.Source
			t.DestinationAddress = payload.Info.Destination
			t.Amount = b.parseAmount(payload.Info.Amount)
		}
	case "transferChecked":
		t.Type = graph.TypeTransferChecked
		t.SourceAddress = payload.Info.Source
		t.DestinationAddress = payload.Info.Destination
		t.MintAddress = payload.Info.Mint
		if payload.Info.TokenAmount != nil {
			t.Amount = b.parseAmount(payload.Info.TokenAmount.Amount)
		}
	case "mintTo":
		t.Type = graph.TypeMintTo
		t.SourceAddress = payload.Info.Mint
		t.DestinationAddress = payload.Info.Account
		t.MintAddress = payload.Info.Mint
		t.Amount = b.parseAmount(payload.Info.Amount)
	case "burn":
		t.Type = graph.TypeBurn
		t.SourceAddress = payload.Info.Account
		t.DestinationAddress = payload.Info.Mint
		t.MintAddress = payload.Info.Mint
		t.Amount = b.parseAmount(payload.Info.Amount)
	case "closeAccount":
		t.Type = graph.TypeCloseAccount
		t.SourceAddress = payload.Info.Account
		t.DestinationAddress = payload.Info.Destination
	case "createAccount":
		t.Type = graph.TypeCreateAccount
		t.SourceAddress = payload.Info.Source
		t.DestinationAddress = payload.Info.NewAccount
		t.Amount = int64(payload.Info.Lamports)
	default:
		return
	}

	if t.SourceAddress == "" || t.DestinationAddress == "" {
		b.logger.Printf("graphbuilder: %s instruction missing endpoint, skipping", payload.Type)
		return
	}

	b.AddTransfer(tctx, t)
}

// parseAmount converts a stringified token amount. Unparseable amounts
// become zero-valued edges rather than dropped ones, so the topology
// survives even when the amount does not.
func (b *Builder) parseAmount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		b.logger.Printf("graphbuilder: unparseable amount %q", s)
		return 0
	}
	return n
}
