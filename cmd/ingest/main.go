// Package main provides headless ingestion without the HTTP API:
// live mode follows the WebSocket log subscription, backfill mode walks
// an address's signature history backwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-graph-lab/internal/discovery"
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

func main() {
	mode := flag.String("mode", "live", "Ingestion mode: live or backfill")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to monitor")
	dex := flag.String("dex", "raydium,pumpfun,orca,meteora,jupiter,okx", "Comma-separated DEX aliases")
	address := flag.String("address", "", "Address whose history to backfill")
	limit := flag.Int("limit", 0, "Maximum transactions to backfill (0 = all)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	programList := resolvePrograms(*programs, *dex)
	if len(programList) == 0 {
		logger.Fatal("No DEX programs specified. Use --programs or --dex")
	}
	logger.Printf("Monitoring DEX programs: %v", programList)

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

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

	var err error
	switch *mode {
	case "live":
		err = runLive(ctx, logger, *rpcEndpoint, *wsEndpoint, *postgresDSN, *clickhouseDSN, programList, *useMemory)
	case "backfill":
		err = runBackfill(ctx, logger, *rpcEndpoint, *postgresDSN, *clickhouseDSN, *address, *limit, *useMemory)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
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

	if postgresDSN == "" || clickhouseDSN == "" {
		return nil, nil, nil, nil, fmt.Errorf("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
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

// runLive runs continuous live ingestion.
func runLive(ctx context.Context, logger *log.Logger, rpcEndpoint, wsEndpoint, postgresDSN, clickhouseDSN string, programs []string, useMemory bool) error {
	if rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required for live mode")
	}
	if wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required for live mode")
	}

	rpc := solana.NewHTTPClient(rpcEndpoint)

	ws, err := solana.NewWSClient(ctx, wsEndpoint, &solana.WSClientConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	swaps, edges, accounts, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := ingestion.NewRunner(ingestion.Options{
		RPC:          rpc,
		WS:           ws,
		SwapStore:    swaps,
		EdgeStore:    edges,
		AccountStore: accounts,
		Programs:     programs,
		Logger:       logger,
	})

	logger.Println("Starting live ingestion...")
	return runner.RunLive(ctx)
}

// runBackfill walks an address's signature history.
func runBackfill(ctx context.Context, logger *log.Logger, rpcEndpoint, postgresDSN, clickhouseDSN, address string, limit int, useMemory bool) error {
	if rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required for backfill mode")
	}
	if address == "" {
		return fmt.Errorf("--address is required for backfill mode")
	}

	rpc := solana.NewHTTPClient(rpcEndpoint)

	swaps, edges, accounts, cleanup, err := createStores(ctx, postgresDSN, clickhouseDSN, useMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := ingestion.NewRunner(ingestion.Options{
		RPC:          rpc,
		SwapStore:    swaps,
		EdgeStore:    edges,
		AccountStore: accounts,
		Logger:       logger,
	})

	logger.Printf("Backfilling %s (limit %d)...", address, limit)
	start := time.Now()

	processed, err := runner.Backfill(ctx, address, limit)
	if err != nil {
		return err
	}

	logger.Printf("Backfill complete: %d transactions in %v", processed, time.Since(start))
	return nil
}
