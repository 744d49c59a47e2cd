package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/metrics"
	"github.com/oadtz/eth-pepe-bot/internal/trace"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}
	compressOldLogs(ctx)

	recorder := metrics.NewRecorder()
	if cfg.Metrics.Addr != "" {
		go recorder.Serve(ctx, cfg.Metrics.Addr)
	}

	ch := initializeChain(ctx, cfg, recorder)
	exec := initializeExecutor(ctx, cfg, ch)
	eng := initializeEngine(cfg, ch, exec, recorder)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	resetTick := time.NewTicker(time.Duration(cfg.RPC.ResetMinutes) * time.Minute)
	defer resetTick.Stop()

	// A cycle that overruns its budget is abandoned and counted as HOLD;
	// the next tick starts clean.
	cycleTimeout := 10 * time.Duration(cfg.PollSeconds) * time.Second
	if cycleTimeout < 30*time.Second {
		cycleTimeout = 30 * time.Second
	}

	logger.Info(ctx, "Bot started", "pair", cfg.Pair.Name, "mode", cfg.Mode, "poll_seconds", cfg.PollSeconds)
	for {
		select {
		case <-tick.C:
			cycleCtx, cycleCancel := context.WithTimeout(ctx, cycleTimeout)
			result, err := eng.Cycle(cycleCtx)
			cycleCancel()
			if err != nil {
				logger.ErrorWithErr(ctx, "Cycle aborted, treating as HOLD", err)
				continue
			}
			recorder.RecordCycle()
			if b, err := json.Marshal(result); err == nil {
				fmt.Println(string(b))
			}
		case <-resetTick.C:
			ch.ResetFailed()
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			return
		case <-ctx.Done():
			return
		}
	}
}
