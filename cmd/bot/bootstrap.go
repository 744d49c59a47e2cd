package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oadtz/eth-pepe-bot/internal/chain"
	"github.com/oadtz/eth-pepe-bot/internal/chain/chainobs"
	"github.com/oadtz/eth-pepe-bot/internal/engine"
	"github.com/oadtz/eth-pepe-bot/internal/engine/engineobs"
	"github.com/oadtz/eth-pepe-bot/internal/executor"
	"github.com/oadtz/eth-pepe-bot/internal/history"
	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/metrics"
	"github.com/oadtz/eth-pepe-bot/internal/store"
	"github.com/oadtz/eth-pepe-bot/internal/trace"
	"github.com/oadtz/eth-pepe-bot/internal/tradelog"
)

// initializeSystem loads the environment and brings up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeChain builds the endpoint pool. DRY_RUN mode runs against a
// synthetic node so no network access is needed.
func initializeChain(ctx context.Context, cfg *store.Config, rec *metrics.Recorder) interfaces.Chain {
	var nodes []chain.Node
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - synthetic chain data, simulated orders")
		nodes = []chain.Node{chain.NewSim(0)}
	} else {
		timeout := time.Duration(cfg.RPC.TimeoutSeconds) * time.Second
		for _, url := range cfg.RPC.Providers {
			nodes = append(nodes, chain.NewRPCNode(url, timeout))
		}
		logger.Info(ctx, "RPC endpoint pool configured", "providers", len(nodes))
	}

	pool := chain.NewPool(nodes, cfg.RPC.MaxRetries, time.Duration(cfg.RPC.RetryDelaySeconds)*time.Second)
	pool.OnQuarantine = rec.RecordQuarantine

	return chainobs.Wrap(chain.NewClient(pool, cfg.Pair.PoolAddress))
}

func initializeExecutor(ctx context.Context, cfg *store.Config, ch interfaces.Chain) interfaces.Executor {
	if cfg.Mode == "DRY_RUN" {
		return executor.NewSimulated(cfg.Trading.InitialBalance)
	}
	logger.Info(ctx, "Live mode: balances from chain, execution delegated to signing collaborator")
	return executor.NewReadOnly(ch, cfg.Pair.TokenAddress, cfg.WalletAddress)
}

func initializeEngine(cfg *store.Config, ch interfaces.Chain, exec interfaces.Executor, rec *metrics.Recorder) interfaces.Engine {
	hist := history.New(ch, history.Config{
		Hours:          cfg.History.Hours,
		BlocksPerHour:  cfg.History.BlocksPerHour,
		MinRealSamples: cfg.History.MinRealSamples,
		BaselineVolume: cfg.History.BaselineVolume,
	})
	risk := engine.NewRiskManager(cfg, ch, exec)
	estop := engine.NewEmergencyStop(cfg)

	return engineobs.Wrap(engine.New(cfg, ch, exec, hist, risk, estop, rec))
}
