package chainobs

import (
	"context"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/trace"
)

// observableChain wraps a Chain with logging and tracing.
type observableChain struct {
	chain interfaces.Chain
}

var _ interfaces.Chain = (*observableChain)(nil)

// Wrap wraps a chain with observability middleware.
func Wrap(chain interfaces.Chain) interfaces.Chain {
	return &observableChain{chain: chain}
}

func (oc *observableChain) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.BlockNumber")
	defer span.End()

	block, err := oc.chain.BlockNumber(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch block number", err)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Block number fetched", "block", block)
	return block, nil
}

func (oc *observableChain) PoolPrice(ctx context.Context, block uint64) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.PoolPrice")
	defer span.End()

	price, err := oc.chain.PoolPrice(ctx, block)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch pool price", err, "block", block)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Pool price fetched", "block", block, "price", price)
	return price, nil
}

func (oc *observableChain) BlockTime(ctx context.Context, block uint64) (int64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.BlockTime")
	defer span.End()

	ts, err := oc.chain.BlockTime(ctx, block)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch block time", err, "block", block)
		return 0, err
	}
	return ts, nil
}

func (oc *observableChain) GasPriceGwei(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.GasPriceGwei")
	defer span.End()

	gwei, err := oc.chain.GasPriceGwei(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch gas price", err)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Gas price fetched", "gwei", gwei)
	return gwei, nil
}

func (oc *observableChain) BaseBalance(ctx context.Context, owner string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.BaseBalance")
	defer span.End()

	bal, err := oc.chain.BaseBalance(ctx, owner)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch base balance", err, "owner", owner)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Base balance fetched", "owner", owner, "balance", bal)
	return bal, nil
}

func (oc *observableChain) TokenBalance(ctx context.Context, token, owner string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "chain.TokenBalance")
	defer span.End()

	bal, err := oc.chain.TokenBalance(ctx, token, owner)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch token balance", err, "token", token, "owner", owner)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Token balance fetched", "token", token, "balance", bal)
	return bal, nil
}

func (oc *observableChain) ResetFailed() {
	oc.chain.ResetFailed()
}
