// Package main resolves a single transaction and prints the result.
// Nothing is persisted; the tool exists for inspecting how one
// transaction's transfer graph and swap paths come out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/ingestion"
	"solana-graph-lab/internal/solana"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	signature := flag.String("signature", "", "Transaction signature to resolve")
	asJSON := flag.Bool("json", false, "Print the full result as JSON")
	timeout := flag.Duration("timeout", 30*time.Second, "RPC timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[resolve] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *signature == "" {
		logger.Fatal("--signature is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rpc := solana.NewHTTPClient(*rpcEndpoint)

	tx, err := rpc.GetParsedTransaction(ctx, *signature)
	if err != nil {
		logger.Fatalf("Fetch transaction: %v", err)
	}
	if tx == nil {
		logger.Fatalf("Transaction %s not found", *signature)
	}

	runner := ingestion.NewRunner(ingestion.Options{RPC: rpc, Logger: logger})
	tctx, _ := runner.Resolve(tx)

	if *asJSON {
		printJSON(tctx)
		return
	}
	printSummary(tctx)
}

// resolveResult is the JSON output shape.
type resolveResult struct {
	Signature string                       `json:"signature"`
	Slot      int64                        `json:"slot"`
	BlockTime int64                        `json:"block_time"`
	Err       string                       `json:"err,omitempty"`
	Swaps     []*domain.ResolvedSwapRecord `json:"swaps"`
	Edges     []*domain.TransferEdgeRecord `json:"edges"`
}

func printJSON(tctx *domain.TransactionContext) {
	result := resolveResult{
		Signature: tctx.Signature,
		Slot:      tctx.Slot,
		BlockTime: tctx.BlockTime,
		Err:       tctx.Err,
		Swaps:     tctx.ResolvedSwapRecords(),
		Edges:     tctx.TransferEdgeRecords(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}

func printSummary(tctx *domain.TransactionContext) {
	fmt.Printf("Transaction %s (slot %d)\n", tctx.Signature, tctx.Slot)
	if tctx.Err != "" {
		fmt.Printf("  transaction failed on chain: %s\n", tctx.Err)
	}

	swaps := tctx.ResolvedSwapRecords()
	fmt.Printf("\nResolved swaps: %d\n", len(swaps))
	for _, s := range swaps {
		kind := "swap"
		if s.Router {
			kind = "router"
		}
		fmt.Printf("  [%d] %s %s %s\n", s.SwapID, kind, s.ProgramName, s.InstructionName)
		fmt.Printf("      in=%d out=%d fee=%d\n", s.AmountIn, s.AmountOut, s.Fee)
		fmt.Printf("      user %s -> %s\n", s.UserSource, s.UserDestination)
		if s.PoolSource != "" {
			fmt.Printf("      pool %s -> %s\n", s.PoolDestination, s.PoolSource)
		}
		if s.ParentRouterSwapID != nil {
			fmt.Printf("      leg of router swap %d\n", *s.ParentRouterSwapID)
		}
	}

	edges := tctx.TransferEdgeRecords()
	fmt.Printf("\nTransfer graph: %d edges\n", len(edges))
	for _, e := range edges {
		tag := ""
		if e.SwapID != nil {
			tag = fmt.Sprintf(" swap=%d", *e.SwapID)
		} else if e.SwapParentID != nil {
			tag = fmt.Sprintf(" parent=%d", *e.SwapParentID)
		}
		fmt.Printf("  %6d %-16s %s.%d -> %s.%d amount=%d/%d%s\n",
			e.EdgeKey, e.TransferType,
			e.SourceAddress, e.SourceVersion,
			e.DestinationAddress, e.DestinationVersion,
			e.AmountSource, e.AmountDestination, tag)
	}
}
