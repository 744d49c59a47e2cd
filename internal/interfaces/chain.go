package interfaces

import "context"

// Chain is the resilient read-only view of the blockchain. Implementations
// rotate across multiple endpoints and absorb transient failures; callers
// only see the final result or an exhaustion error.
type Chain interface {
	BlockNumber(ctx context.Context) (uint64, error)
	// PoolPrice returns the pair price at the given block, or at the latest
	// block when block is 0.
	PoolPrice(ctx context.Context, block uint64) (float64, error)
	// BlockTime returns the unix timestamp of the given block.
	BlockTime(ctx context.Context, block uint64) (int64, error)
	GasPriceGwei(ctx context.Context) (float64, error)
	// BaseBalance returns the native (ETH) balance of owner in whole units.
	BaseBalance(ctx context.Context, owner string) (float64, error)
	// TokenBalance returns the ERC-20 balance of owner in whole units.
	TokenBalance(ctx context.Context, token, owner string) (float64, error)
	// ResetFailed clears the quarantined-endpoint set. Callers invoke this
	// on a schedule; quarantine never expires on its own.
	ResetFailed()
}
