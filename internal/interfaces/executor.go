package interfaces

import (
	"context"

	"github.com/oadtz/eth-pepe-bot/internal/types"
)

// Executor places swaps for the pair. The core only inspects the returned
// TradeResult; signing and broadcast belong to the implementation.
type Executor interface {
	// ExecuteBuy swaps amountBase of the base asset into the token at the
	// given price.
	ExecuteBuy(ctx context.Context, amountBase, price float64) (types.TradeResult, error)
	// ExecuteSell swaps amountToken of the token back into the base asset.
	ExecuteSell(ctx context.Context, amountToken, price float64) (types.TradeResult, error)
	// Balances returns the current base and token holdings.
	Balances(ctx context.Context) (base, token float64, err error)
}
