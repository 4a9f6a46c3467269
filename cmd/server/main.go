// Package main runs the launch pool service: the accounting engine behind
// an HTTP API, with Prometheus metrics, a websocket event feed, and
// PostgreSQL persistence plus an optional ClickHouse event journal.
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

	"launchpool/internal/api"
	"launchpool/internal/domain"
	"launchpool/internal/ledger"
	"launchpool/internal/notify"
	"launchpool/internal/observability"
	"launchpool/internal/pool"
	"launchpool/internal/storage"
	chstore "launchpool/internal/storage/clickhouse"
	"launchpool/internal/storage/memory"
	"launchpool/internal/storage/migrations"
	pgstore "launchpool/internal/storage/postgres"
)

// poolStores holds the storage implementations the engine is wired with.
type poolStores struct {
	states  storage.PoolStateStore
	stakes  storage.StakeStore
	journal storage.EventStore
}

func main() {
	loadEnvFile()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("LEDGER_RPC_ENDPOINT"), "Token ledger JSON-RPC endpoint (empty: in-memory ledger)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for the event journal (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")

	custody := flag.String("custody", os.Getenv("POOL_CUSTODY"), "Pool custody account address")
	deployer := flag.String("deployer", os.Getenv("POOL_DEPLOYER"), "Deployer address, seeded as admin and pauser")
	baseAsset := flag.String("base-asset", os.Getenv("POOL_BASE_ASSET"), "Base currency asset mint")
	rewardAsset := flag.String("reward-asset", os.Getenv("POOL_REWARD_ASSET"), "Reward token asset mint")
	feeRecipient := flag.String("fee-recipient", os.Getenv("POOL_FEE_RECIPIENT"), "Claim fee recipient address")

	listenAddr := flag.String("listen-addr", ":8080", "API HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	cfg := domain.DefaultPoolConfig()
	var err error
	if cfg.BaseAsset, err = parseAsset(*baseAsset); err != nil {
		logger.Fatalf("--base-asset: %v", err)
	}
	if cfg.RewardAsset, err = parseAsset(*rewardAsset); err != nil {
		logger.Fatalf("--reward-asset: %v", err)
	}
	if cfg.FeeRecipient, err = domain.ParseAddress(*feeRecipient); err != nil {
		logger.Fatalf("--fee-recipient: %v", err)
	}
	custodyAddr, err := domain.ParseAddress(*custody)
	if err != nil {
		logger.Fatalf("--custody: %v", err)
	}
	deployerAddr, err := domain.ParseAddress(*deployer)
	if err != nil {
		logger.Fatalf("--deployer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	var tokens ledger.TokenLedger
	if *rpcEndpoint != "" {
		tokens = ledger.NewRPCClient(*rpcEndpoint, custodyAddr)
	} else {
		logger.Println("No --rpc-endpoint: using in-memory token ledger (funding reward custody)")
		mem := ledger.NewMemoryLedger(custodyAddr)
		mem.Mint(cfg.RewardAsset, custodyAddr, cfg.RewardTotal)
		tokens = mem
	}

	metrics := observability.NewMetrics("launchpool")
	hub := notify.NewHub(nil, log.New(os.Stdout, "[ws] ", log.LstdFlags))
	defer hub.Close()

	notifiers := notify.Multi{hub}
	if stores.journal != nil {
		notifiers = append(notifiers, notify.NewJournal(stores.journal, logger))
	}

	engine, err := pool.New(ctx, pool.Options{
		Config:   cfg,
		Account:  custodyAddr,
		Deployer: deployerAddr,
		Ledger:   tokens,
		States:   stores.states,
		Stakes:   stores.stakes,
		Notifier: notifiers,
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	apiServer := api.NewServer(engine, stores.journal, metrics, log.New(os.Stdout, "[api] ", log.LstdFlags))

	mux := http.NewServeMux()
	apiServer.Routes(mux)
	mux.Handle("/ws", hub)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", observability.Handler())

	apiSrv := &http.Server{Addr: *listenAddr, Handler: mux}
	metricsSrv := &http.Server{Addr: *metricsAddr, Handler: metricsMux}

	errCh := make(chan error, 2)
	go func() {
		logger.Printf("API listening on %s", *listenAddr)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Printf("Metrics listening on %s", *metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		logger.Printf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("API shutdown: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Metrics shutdown: %v", err)
	}
	logger.Println("Shutdown complete")
}

func parseAsset(s string) (domain.Asset, error) {
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return "", err
	}
	return domain.Asset(addr), nil
}

// createStores wires persistence: PostgreSQL for state and stakes with the
// event journal in ClickHouse when configured, falling back to PostgreSQL
// for events, or fully in-memory.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*poolStores, func(), error) {
	if useMemory {
		stores := &poolStores{
			states:  memory.NewPoolStateStore(),
			stakes:  memory.NewStakeStore(),
			journal: memory.NewEventStore(),
		}
		return stores, func() {}, nil
	}

	pgPool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pgPool); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &poolStores{
		states:  pgstore.NewPoolStateStore(pgPool),
		stakes:  pgstore.NewStakeStore(pgPool),
		journal: pgstore.NewEventStore(pgPool),
	}
	cleanup := func() { pgPool.Close() }

	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pgPool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.journal = chstore.NewEventStore(chConn)
		cleanup = func() {
			chConn.Close()
			pgPool.Close()
		}
	}

	return stores, cleanup, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
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
