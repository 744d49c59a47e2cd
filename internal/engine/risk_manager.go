package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/store"
	"github.com/oadtz/eth-pepe-bot/internal/types"
)

// RiskManager enforces the trade limits from config. Daily counters reset
// when the calendar date advances; money math runs on decimals so repeated
// small trades cannot drift the daily volume.
type RiskManager struct {
	cfg   *store.Config
	chain interfaces.Chain
	exec  interfaces.Executor

	dailyTradeCount int
	dailyVolume     decimal.Decimal
	lastTradeTime   time.Time
	lastResetDate   time.Time

	now func() time.Time
}

func NewRiskManager(cfg *store.Config, chain interfaces.Chain, exec interfaces.Executor) *RiskManager {
	rm := &RiskManager{
		cfg:         cfg,
		chain:       chain,
		exec:        exec,
		dailyVolume: decimal.Zero,
		now:         time.Now,
	}
	rm.lastResetDate = dateOf(rm.now())
	return rm
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// maybeResetCounters zeroes the daily counters once per calendar-day
// boundary crossing, never mid-day.
func (rm *RiskManager) maybeResetCounters(ctx context.Context) {
	today := dateOf(rm.now())
	if today.After(rm.lastResetDate) {
		rm.dailyTradeCount = 0
		rm.dailyVolume = decimal.Zero
		rm.lastResetDate = today
		logger.Info(ctx, "Daily trading counters reset", "date", today.Format("2006-01-02"))
	}
}

// Validate runs the ordered risk checks, short-circuiting on the first
// failure. amountBase is the trade size expressed in the base asset.
// Collaborator failures (balance or gas lookups) surface as rejection
// reasons, never as faults.
func (rm *RiskManager) Validate(ctx context.Context, signal types.Signal, amountBase, price float64) (bool, string) {
	if !signal.Actionable() {
		return false, fmt.Sprintf("invalid signal: %s", signal)
	}

	if !rm.cfg.Trading.Enabled {
		return false, "trading is disabled"
	}

	if amountBase <= 0 {
		return false, "trade amount must be positive"
	}
	amount := decimal.NewFromFloat(amountBase)
	maxSize := decimal.NewFromFloat(rm.cfg.Risk.MaxTradeSize)
	if amount.GreaterThan(maxSize) {
		return false, fmt.Sprintf("trade amount %s exceeds maximum %s", amount, maxSize)
	}

	base, token, err := rm.exec.Balances(ctx)
	if err != nil {
		return false, fmt.Sprintf("failed to check balances: %v", err)
	}
	switch signal {
	case types.SignalBuy:
		if amountBase > base {
			return false, fmt.Sprintf("insufficient base balance: required %.6f, available %.6f", amountBase, base)
		}
	case types.SignalSell:
		if price <= 0 {
			return false, "cannot derive token amount: price is zero"
		}
		tokenAmount := amountBase / price
		if tokenAmount > token {
			return false, fmt.Sprintf("insufficient token balance: required %.6f, available %.6f", tokenAmount, token)
		}
	}

	rm.maybeResetCounters(ctx)
	if rm.dailyTradeCount >= rm.cfg.Risk.MaxDailyTrades {
		return false, "daily trade limit reached"
	}
	maxVolume := decimal.NewFromFloat(rm.cfg.Risk.MaxDailyVolume)
	if rm.dailyVolume.Add(amount).GreaterThan(maxVolume) {
		return false, "daily volume limit would be exceeded"
	}

	gasGwei, err := rm.chain.GasPriceGwei(ctx)
	if err != nil {
		return false, fmt.Sprintf("failed to check gas price: %v", err)
	}
	if gasGwei > rm.cfg.Risk.MaxGasPriceGwei {
		return false, fmt.Sprintf("gas price too high: %.1f gwei (limit %.1f)", gasGwei, rm.cfg.Risk.MaxGasPriceGwei)
	}

	return true, "trade validation passed"
}

// UpdateMetrics records a successfully executed trade against the daily
// counters. Callers invoke it after execution, not before.
func (rm *RiskManager) UpdateMetrics(ctx context.Context, amountBase float64) {
	rm.maybeResetCounters(ctx)
	rm.lastTradeTime = rm.now()
	rm.dailyTradeCount++
	rm.dailyVolume = rm.dailyVolume.Add(decimal.NewFromFloat(amountBase))
	logger.Info(ctx, "Trade metrics updated",
		"daily_count", rm.dailyTradeCount,
		"daily_volume", rm.dailyVolume.String(),
	)
}

// DailyTradeCount returns today's executed-trade count.
func (rm *RiskManager) DailyTradeCount() int { return rm.dailyTradeCount }

// DailyVolume returns today's executed volume in base units.
func (rm *RiskManager) DailyVolume() float64 {
	v, _ := rm.dailyVolume.Float64()
	return v
}
