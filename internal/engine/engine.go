package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/chain"
	"github.com/oadtz/eth-pepe-bot/internal/history"
	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/store"
	"github.com/oadtz/eth-pepe-bot/internal/tradelog"
	"github.com/oadtz/eth-pepe-bot/internal/types"
)

// Engine runs one full evaluation cycle: fresh price, window, indicators,
// vote, risk gates, execution, portfolio accounting. Cycles never overlap;
// all engine state is touched from the single active cycle only.
type Engine struct {
	cfg   *store.Config
	chain interfaces.Chain
	exec  interfaces.Executor
	hist  *history.Cache
	risk  *RiskManager
	estop *EmergencyStop
	sink  interfaces.RiskSink

	initialValue float64
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, ch interfaces.Chain, exec interfaces.Executor, hist *history.Cache,
	risk *RiskManager, estop *EmergencyStop, sink interfaces.RiskSink) *Engine {
	return &Engine{
		cfg:   cfg,
		chain: ch,
		exec:  exec,
		hist:  hist,
		risk:  risk,
		estop: estop,
		sink:  sink,
	}
}

func (e *Engine) signalConfig() SignalConfig {
	return SignalConfig{
		ShortSMA:      e.cfg.Indicators.ShortSMA,
		LongSMA:       e.cfg.Indicators.LongSMA,
		RSIPeriod:     e.cfg.Indicators.RSIPeriod,
		RSIOversold:   e.cfg.Indicators.RSIOversold,
		RSIOverbought: e.cfg.Indicators.RSIOverbought,
		VolumeMA:      e.cfg.Indicators.VolumeMA,
		MinSamples:    e.cfg.MinSamples(),
	}
}

// Cycle runs a single evaluation pass. Transient failures degrade to a HOLD
// result rather than an error; only context cancellation aborts the cycle.
func (e *Engine) Cycle(ctx context.Context) (*types.CycleResult, error) {
	pair := e.cfg.Pair.Name

	// A fresh price is fetched every cycle; the cache never reuses one.
	price, err := e.chain.PoolPrice(ctx, 0)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, chain.ErrAllProvidersExhausted) {
			e.sink.RecordRiskEvent(ctx, "provider_exhaustion", "critical",
				fmt.Sprintf("price fetch failed on every provider: %v", err))
		}
		return e.hold(ctx, 0, fmt.Sprintf("price unavailable: %v", err)), nil
	}
	if price <= 0 {
		return e.hold(ctx, price, "current price is zero"), nil
	}

	samples, err := e.hist.Window(ctx, price)
	if err != nil {
		return e.hold(ctx, price, fmt.Sprintf("price window unavailable: %v", err)), nil
	}

	signal, inds, reason := Decide(e.signalConfig(), samples)
	logger.Decision(ctx, pair, string(signal), price, reason,
		"rsi", inds.RSI,
		"short_sma", inds.ShortSMA,
		"long_sma", inds.LongSMA,
		"macd", inds.MACD,
		"macd_signal", inds.MACDSig,
		"samples", len(samples),
	)
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Pair:   pair,
		Signal: string(signal),
		Price:  price,
		Reason: reason,
		Indicators: map[string]float64{
			"RSI":       inds.RSI,
			"SHORT_SMA": inds.ShortSMA,
			"LONG_SMA":  inds.LongSMA,
			"MACD":      inds.MACD,
			"MACD_SIG":  inds.MACDSig,
			"VOL_MA":    inds.VolumeMA,
		},
	})

	base, token, err := e.exec.Balances(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return e.hold(ctx, price, fmt.Sprintf("balances unavailable: %v", err)), nil
	}
	portfolioValue := base + token*price
	if e.initialValue == 0 {
		e.initialValue = portfolioValue
		logger.Info(ctx, "Initial portfolio value recorded", "value", portfolioValue)
	}

	e.runEmergencyStop(ctx, portfolioValue)

	result := &types.CycleResult{
		Signal:         signal,
		Price:          price,
		Time:           time.Now().Unix(),
		PortfolioValue: portfolioValue,
		ProfitLoss:     portfolioValue - e.initialValue,
		Reason:         reason,
	}

	if signal.Actionable() {
		if e.estop.Triggered() {
			logger.Warn(ctx, "Emergency stop active - skipping signal", "pair", pair, "signal", signal)
			result.Reason += " | blocked: emergency stop active"
		} else {
			result.Trade = e.executeSignal(ctx, signal, base, token, price)
		}
	}

	logger.Info(ctx, "Cycle metrics",
		"pair", pair,
		"signal", signal,
		"price", price,
		"base_balance", base,
		"token_balance", token,
		"portfolio_value", portfolioValue,
		"profit_loss", result.ProfitLoss,
		"emergency_stop", e.estop.Triggered(),
	)
	return result, nil
}

func (e *Engine) hold(ctx context.Context, price float64, reason string) *types.CycleResult {
	logger.Warn(ctx, "Cycle degraded to HOLD", "pair", e.cfg.Pair.Name, "reason", reason)
	return &types.CycleResult{
		Signal: types.SignalHold,
		Price:  price,
		Time:   time.Now().Unix(),
		Reason: reason,
	}
}

func (e *Engine) runEmergencyStop(ctx context.Context, portfolioValue float64) {
	if !e.estop.Triggered() {
		if e.estop.Check(ctx, portfolioValue, e.initialValue) {
			lossPct := (e.initialValue - portfolioValue) / e.initialValue * 100
			e.sink.RecordRiskEvent(ctx, "emergency_stop", "critical",
				fmt.Sprintf("emergency stop loss triggered: %.2f%% loss", lossPct))
		}
		return
	}
	if e.estop.TryRecover(ctx, portfolioValue) {
		e.sink.RecordRiskEvent(ctx, "emergency_stop_recovery", "medium",
			fmt.Sprintf("portfolio recovered, trading resumed at value %.6f", portfolioValue))
	}
}

// executeSignal sizes the order, runs risk validation and hands the trade
// to the execution collaborator. Rejections and failures are absorbed into
// the cycle result.
func (e *Engine) executeSignal(ctx context.Context, signal types.Signal, base, token, price float64) *types.TradeResult {
	pair := e.cfg.Pair.Name
	pct := e.cfg.Trading.TradePercentage

	var amountBase, amountToken float64
	if signal == types.SignalBuy {
		amountBase = base * pct
	} else {
		amountToken = token * pct
		amountBase = amountToken * price
	}

	ok, vreason := e.risk.Validate(ctx, signal, amountBase, price)
	if !ok {
		logger.Risk(ctx, pair, "validation_rejected", "signal", signal, "amount", amountBase, "reason", vreason)
		e.sink.RecordRiskEvent(ctx, "validation_rejected", "medium", vreason)
		return &types.TradeResult{Success: false, Message: vreason}
	}

	var res types.TradeResult
	var err error
	if signal == types.SignalBuy {
		res, err = e.exec.ExecuteBuy(ctx, amountBase, price)
	} else {
		res, err = e.exec.ExecuteSell(ctx, amountToken, price)
	}
	if err != nil {
		res = types.TradeResult{Success: false, Message: err.Error()}
	}

	if !res.Success {
		logger.Error(ctx, "Trade execution failed", "pair", pair, "signal", signal, "message", res.Message)
		e.sink.RecordRiskEvent(ctx, "trade_failure", "high",
			fmt.Sprintf("%s order failed: %s", signal, res.Message))
		e.sink.RecordTrade(string(signal), false)
		return &res
	}

	e.risk.UpdateMetrics(ctx, amountBase)
	e.sink.RecordTrade(string(signal), true)
	logger.Trade(ctx, pair, string(signal), amountBase, price, res.Message)
	_ = tradelog.Append(tradelog.Entry{
		Pair:       pair,
		Side:       string(signal),
		AmountBase: amountBase,
		Price:      price,
		Message:    res.Message,
	})
	return &res
}
