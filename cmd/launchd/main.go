// cmd/launchd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/noottools/launch-engine/internal/aggregator"
	"github.com/noottools/launch-engine/internal/burn"
	"github.com/noottools/launch-engine/internal/chain"
	"github.com/noottools/launch-engine/internal/config"
	"github.com/noottools/launch-engine/internal/directory"
	"github.com/noottools/launch-engine/internal/engine"
	"github.com/noottools/launch-engine/internal/escrow"
	"github.com/noottools/launch-engine/internal/logger"
	"github.com/noottools/launch-engine/internal/minter"
	"github.com/noottools/launch-engine/internal/oracle"
	"github.com/noottools/launch-engine/internal/pool"
	"github.com/noottools/launch-engine/internal/schedule"
	"github.com/noottools/launch-engine/internal/stats"
	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/memory"
	"github.com/noottools/launch-engine/internal/storage/postgres"
	"github.com/noottools/launch-engine/internal/wallet"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "launchd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		Development: cfg.DebugLogging,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer log.Sync()
	daemonLog := log.WithComponent("launchd")

	privateKey := os.Getenv("LAUNCH_ENGINE_PRIVATE_KEY")
	if privateKey == "" {
		return fmt.Errorf("LAUNCH_ENGINE_PRIVATE_KEY is not set")
	}
	signer, err := wallet.NewWallet(privateKey)
	if err != nil {
		return fmt.Errorf("wallet init: %w", err)
	}
	daemonLog.Info("wallet loaded", zap.String("public_key", signer.PublicKey().String()))

	hookProgram, err := solana.PublicKeyFromBase58(cfg.HookProgram)
	if err != nil {
		return fmt.Errorf("hook_program: %w", err)
	}
	escrowProgram, err := solana.PublicKeyFromBase58(cfg.EscrowProgram)
	if err != nil {
		return fmt.Errorf("escrow_program: %w", err)
	}
	dir := directory.New(hookProgram, escrowProgram)

	store, err := openStore(cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	if err := store.RunMigrations(); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	endpoints := make([]chain.Client, 0, len(cfg.RPCList))
	for _, rpcURL := range cfg.RPCList {
		endpoints = append(endpoints, chain.NewRPCClient(rpcURL,
			time.Duration(cfg.ConfirmTimeoutSec)*time.Second, cfg.Retries, log.Logger))
	}
	chainClient := chain.NewFailover(endpoints, log.Logger)

	agg := aggregator.NewJupiterClient(cfg.AggregatorURL, log.Logger)

	sources := make([]oracle.Oracle, 0, len(cfg.OracleURLs))
	for _, oracleURL := range cfg.OracleURLs {
		sources = append(sources, oracle.NewHTTPOracle(oracleURL, log.Logger))
	}
	marketOracle := oracle.NewMultiOracle(sources, log.Logger)

	burnRouter := burn.NewRouter(store, agg, chainClient, signer, dir, log.Logger)
	ledger := escrow.NewLedger(store, log.Logger)
	tokenMinter := minter.New(chainClient, signer, store, dir, log.Logger)
	poolBuilder := pool.NewBuilder(
		[]pool.Venue{
			pool.NewRaydiumVenue(chainClient, signer, dir, log.Logger),
			pool.NewOrcaVenue(chainClient, signer, dir, log.Logger),
		},
		store, burnRouter, dir, log.Logger)
	statsAgg := stats.NewAggregator(store, log.Logger)

	eng := engine.New(tokenMinter, poolBuilder, ledger, burnRouter, statsAgg,
		marketOracle, store, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := schedule.New(eng, schedule.Options{
		ObserveInterval:    time.Duration(cfg.ObserveIntervalSec) * time.Second,
		BurnSweepInterval:  time.Duration(cfg.BurnSweepIntervalSec) * time.Second,
		BurnSweepThreshold: cfg.BurnSweepThreshold,
		BurnTokenID:        cfg.BurnTokenID,
	}, log.Logger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}
	defer scheduler.Stop()

	daemonLog.Info("launch engine running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	daemonLog.Info("shutting down", zap.String("signal", sig.String()))
	return nil
}

// openStore picks postgres when configured, otherwise the in-memory store
// for local runs.
func openStore(cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	if cfg.PostgresURL != "" {
		return postgres.NewStore(cfg.PostgresURL, log)
	}
	log.Warn("postgres_url not set, using in-memory storage")
	return memory.NewStore(), nil
}
