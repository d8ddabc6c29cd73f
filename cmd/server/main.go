// Package main provides the unified service: live ingestion from a
// WebSocket log subscription plus an HTTP API over the stored results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-graph-lab/internal/discovery"
	"solana-graph-lab/internal/domain"
	"solana-graph-lab/internal/ingestion"
	"solana-graph-lab/internal/observability"
	"solana-graph-lab/internal/solana"
	"solana-graph-lab/internal/storage"
	chstore "solana-graph-lab/internal/storage/clickhouse"
	"solana-graph-lab/internal/storage/memory"
	"solana-graph-lab/internal/storage/migrations"
	pgstore "solana-graph-lab/internal/storage/postgres"
)

// DEX program aliases mapped to program IDs.
var dexAliases = map[string]string{
	"raydium": discovery.RaydiumAMMV4,
	"pumpfun": discovery.PumpFun,
	"orca":    discovery.OrcaWhirlpool,
	"meteora": discovery.MeteoraDLMM,
	"jupiter": discovery.JupiterV6,
	"okx":     discovery.OKXDexRouter,
}

// Server holds the ingestion runner and the stores the HTTP API reads.
type Server struct {
	swaps    storage.ResolvedSwapStore
	edges    storage.TransferEdgeStore
	accounts storage.AccountStore
	logger   *log.Logger

	mu               sync.Mutex
	ingestionStarted time.Time
}

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to monitor")
	dex := flag.String("dex", "raydium,pumpfun,orca,meteora,jupiter,okx", "Comma-separated DEX aliases")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	httpAddr := flag.String("http-addr", ":8080", "HTTP API address")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	programList := resolvePrograms(*programs, *dex)
	if len(programList) == 0 {
		logger.Fatal("No DEX programs specified. Use --programs or --dex")
	}
	logger.Printf("Monitoring DEX programs: %v", programList)

	ctx, cancel := context.WithCancel(context.Background())

	swaps, edges, accounts, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		swaps:    swaps,
		edges:    edges,
		accounts: accounts,
		logger:   logger,
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	go server.startHTTPServer(*httpAddr)

	err = server.runIngestion(ctx, *rpcEndpoint, *wsEndpoint, programList)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// resolvePrograms resolves program IDs from flags.
func resolvePrograms(programs, dex string) []string {
	result := make(map[string]bool)

	if programs != "" {
		for _, p := range strings.Split(programs, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				result[p] = true
			}
		}
	}

	if dex != "" {
		for _, alias := range strings.Split(dex, ",") {
			alias = strings.TrimSpace(strings.ToLower(alias))
			if programID, ok := dexAliases[alias]; ok {
				result[programID] = true
			}
		}
	}

	list := make([]string, 0, len(result))
	for p := range result {
		list = append(list, p)
	}
	return list
}

// createStores creates the three stores and runs migrations when backed
// by real databases.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.ResolvedSwapStore, storage.TransferEdgeStore, storage.AccountStore, func(), error) {
	if useMemory {
		return memory.NewResolvedSwapStore(), memory.NewTransferEdgeStore(), memory.NewAccountStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewResolvedSwapStore(pool),
		chstore.NewTransferEdgeStore(chConn),
		pgstore.NewAccountStore(pool),
		cleanup, nil
}

// runIngestion runs continuous live ingestion until ctx is cancelled.
func (s *Server) runIngestion(ctx context.Context, rpcEndpoint, wsEndpoint string, programs []string) error {
	rpc := solana.NewHTTPClient(rpcEndpoint)

	ws, err := solana.NewWSClient(ctx, wsEndpoint, &solana.WSClientConfig{Logger: s.logger})
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	runner := ingestion.NewRunner(ingestion.Options{
		RPC:          rpc,
		WS:           ws,
		SwapStore:    s.swaps,
		EdgeStore:    s.edges,
		AccountStore: s.accounts,
		Programs:     programs,
		Logger:       log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
	})

	s.mu.Lock()
	s.ingestionStarted = time.Now()
	s.mu.Unlock()

	s.logger.Println("Starting live ingestion...")
	return runner.RunLive(ctx)
}

// startHTTPServer starts the HTTP server for the API, health and metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/tx/", s.handleTransaction)
	mux.HandleFunc("/pools", s.handlePools)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	IngestionStarted time.Time `json:"ingestion_started"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.ingestionStarted).String(),
		IngestionStarted: s.ingestionStarted,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleTransaction routes /tx/{signature}/swaps and /tx/{signature}/graph.
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tx/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	signature := parts[0]

	switch parts[1] {
	case "swaps":
		s.handleSwaps(w, r, signature)
	case "graph":
		s.handleGraph(w, r, signature)
	default:
		http.NotFound(w, r)
	}
}

// handleSwaps returns the resolved swaps of one transaction.
func (s *Server) handleSwaps(w http.ResponseWriter, r *http.Request, signature string) {
	records, err := s.swaps.GetBySignature(r.Context(), signature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		http.Error(w, "no swaps for signature", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"signature": signature,
		"swaps":     swapsJSON(records),
	})
}

// GraphNode is one vertex of the serialized transfer graph.
type GraphNode struct {
	Address string `json:"address"`
	Version int    `json:"version"`
}

// GraphLink is one edge of the serialized transfer graph. Links are
// ordered by edge key, which is the transfer order inside the
// transaction.
type GraphLink struct {
	Key                int64  `json:"key"`
	Source             string `json:"source"`
	SourceVersion      int    `json:"source_version"`
	Target             string `json:"target"`
	TargetVersion      int    `json:"target_version"`
	Type               string `json:"type"`
	ProgramAddress     string `json:"program_address,omitempty"`
	AmountSource       int64  `json:"amount_source"`
	AmountDestination  int64  `json:"amount_destination"`
	SwapID             *int64 `json:"swap_id,omitempty"`
	SwapParentID       *int64 `json:"swap_parent_id,omitempty"`
	ParentRouterSwapID *int64 `json:"parent_router_swap_id,omitempty"`
}

// GraphResponse is the JSON response for /tx/{signature}/graph.
type GraphResponse struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	Nodes     []GraphNode `json:"nodes"`
	Links     []GraphLink `json:"links"`
}

// handleGraph returns the stored transfer graph of one transaction.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request, signature string) {
	edges, err := s.edges.GetBySignature(r.Context(), signature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(edges) == 0 {
		http.Error(w, "no edges for signature", http.StatusNotFound)
		return
	}

	resp := GraphResponse{
		Signature: signature,
		Slot:      edges[0].Slot,
		Nodes:     []GraphNode{},
		Links:     make([]GraphLink, 0, len(edges)),
	}

	seen := make(map[GraphNode]bool)
	addNode := func(n GraphNode) {
		if !seen[n] {
			seen[n] = true
			resp.Nodes = append(resp.Nodes, n)
		}
	}

	// Edges arrive ordered by key, so nodes come out in first-use order.
	for _, e := range edges {
		source := GraphNode{Address: e.SourceAddress, Version: e.SourceVersion}
		target := GraphNode{Address: e.DestinationAddress, Version: e.DestinationVersion}
		addNode(source)
		addNode(target)
		resp.Links = append(resp.Links, GraphLink{
			Key:                e.EdgeKey,
			Source:             e.SourceAddress,
			SourceVersion:      e.SourceVersion,
			Target:             e.DestinationAddress,
			TargetVersion:      e.DestinationVersion,
			Type:               e.TransferType,
			ProgramAddress:     e.ProgramAddress,
			AmountSource:       e.AmountSource,
			AmountDestination:  e.AmountDestination,
			SwapID:             e.SwapID,
			SwapParentID:       e.SwapParentID,
			ParentRouterSwapID: e.ParentRouterSwapID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handlePools lists every account flagged as a liquidity pool.
func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	pools, err := s.accounts.GetPools(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(pools),
		"pools": pools,
	})
}

// swapsJSON converts swap records to their JSON form.
func swapsJSON(records []*domain.ResolvedSwapRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		m := map[string]interface{}{
			"swap_id":          rec.SwapID,
			"slot":             rec.Slot,
			"block_time":       rec.BlockTime,
			"router":           rec.Router,
			"program_address":  rec.ProgramAddress,
			"program_name":     rec.ProgramName,
			"instruction_name": rec.InstructionName,
			"user_source":      rec.UserSource,
			"user_destination": rec.UserDestination,
			"amount_in":        rec.AmountIn,
			"amount_out":       rec.AmountOut,
			"fee":              rec.Fee,
		}
		if rec.PoolSource != "" {
			m["pool_source"] = rec.PoolSource
			m["pool_destination"] = rec.PoolDestination
		}
		if rec.ParentRouterSwapID != nil {
			m["parent_router_swap_id"] = *rec.ParentRouterSwapID
		}
		out = append(out, m)
	}
	return out
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
