package executor

import (
	"context"
	"fmt"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/types"
)

// Simulated executes paper trades against an in-memory portfolio. Used in
// DRY_RUN mode; the balances start with the configured base holding and no
// tokens.
type Simulated struct {
	base  float64
	token float64
}

var _ interfaces.Executor = (*Simulated)(nil)

func NewSimulated(initialBase float64) *Simulated {
	return &Simulated{base: initialBase}
}

func (s *Simulated) ExecuteBuy(ctx context.Context, amountBase, price float64) (types.TradeResult, error) {
	if price <= 0 {
		return types.TradeResult{Message: "price is zero, cannot execute simulated buy"}, nil
	}
	if amountBase <= 0 || amountBase > s.base {
		return types.TradeResult{Message: fmt.Sprintf("invalid buy amount %.6f (base balance %.6f)", amountBase, s.base)}, nil
	}

	received := amountBase / price
	s.base -= amountBase
	s.token += received

	msg := fmt.Sprintf("simulated buy: spent %.6f base for %.6f tokens", amountBase, received)
	logger.Info(ctx, "Simulated BUY executed", "spent", amountBase, "received", received)
	return types.TradeResult{Success: true, Message: msg}, nil
}

func (s *Simulated) ExecuteSell(ctx context.Context, amountToken, price float64) (types.TradeResult, error) {
	if price <= 0 {
		return types.TradeResult{Message: "price is zero, cannot execute simulated sell"}, nil
	}
	if amountToken <= 0 || amountToken > s.token {
		return types.TradeResult{Message: fmt.Sprintf("invalid sell amount %.6f (token balance %.6f)", amountToken, s.token)}, nil
	}

	received := amountToken * price
	s.token -= amountToken
	s.base += received

	msg := fmt.Sprintf("simulated sell: sold %.6f tokens for %.6f base", amountToken, received)
	logger.Info(ctx, "Simulated SELL executed", "sold", amountToken, "received", received)
	return types.TradeResult{Success: true, Message: msg}, nil
}

func (s *Simulated) Balances(ctx context.Context) (float64, float64, error) {
	return s.base, s.token, nil
}

// ReadOnly reads real balances from the chain but refuses to trade: the
// signing/broadcast collaborator is outside this module. LIVE mode uses it
// until an actual executor is wired in.
type ReadOnly struct {
	chain  interfaces.Chain
	token  string
	wallet string
}

var _ interfaces.Executor = (*ReadOnly)(nil)

func NewReadOnly(chain interfaces.Chain, tokenAddress, walletAddress string) *ReadOnly {
	return &ReadOnly{chain: chain, token: tokenAddress, wallet: walletAddress}
}

func (r *ReadOnly) ExecuteBuy(ctx context.Context, amountBase, price float64) (types.TradeResult, error) {
	return types.TradeResult{Message: "no signing collaborator configured - live trading disabled"}, nil
}

func (r *ReadOnly) ExecuteSell(ctx context.Context, amountToken, price float64) (types.TradeResult, error) {
	return types.TradeResult{Message: "no signing collaborator configured - live trading disabled"}, nil
}

func (r *ReadOnly) Balances(ctx context.Context) (float64, float64, error) {
	base, err := r.chain.BaseBalance(ctx, r.wallet)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching base balance: %w", err)
	}
	token, err := r.chain.TokenBalance(ctx, r.token, r.wallet)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching token balance: %w", err)
	}
	return base, token, nil
}
