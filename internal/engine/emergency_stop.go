package engine

import (
	"context"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/logger"
	"github.com/oadtz/eth-pepe-bot/internal/store"
)

// EmergencyStop is the portfolio-level halt state machine. ACTIVE permits
// trading; STOPPED blocks BUY/SELL until both the cooldown has elapsed and
// the portfolio has recovered past the threshold.
type EmergencyStop struct {
	stopLoss          float64
	recoveryEnabled   bool
	recoveryThreshold float64
	cooldown          time.Duration

	triggered      bool
	triggeredAt    time.Time
	valueAtTrigger float64

	now func() time.Time
}

func NewEmergencyStop(cfg *store.Config) *EmergencyStop {
	return &EmergencyStop{
		stopLoss:          cfg.EmergencyStop.StopLoss,
		recoveryEnabled:   cfg.EmergencyStop.RecoveryEnabled,
		recoveryThreshold: cfg.EmergencyStop.RecoveryThreshold,
		cooldown:          time.Duration(cfg.EmergencyStop.RecoveryWaitHours * float64(time.Hour)),
		now:               time.Now,
	}
}

// Triggered reports whether trading is currently halted.
func (es *EmergencyStop) Triggered() bool { return es.triggered }

// ValueAtTrigger returns the portfolio value recorded when the stop fired.
func (es *EmergencyStop) ValueAtTrigger() float64 { return es.valueAtTrigger }

// Check evaluates the drawdown against the stop-loss fraction and halts
// trading when it is met. Returns true only on the ACTIVE -> STOPPED
// transition.
func (es *EmergencyStop) Check(ctx context.Context, currentValue, initialValue float64) bool {
	if es.triggered || initialValue <= 0 {
		return false
	}
	loss := (initialValue - currentValue) / initialValue
	if loss < es.stopLoss {
		return false
	}

	es.triggered = true
	es.triggeredAt = es.now()
	es.valueAtTrigger = currentValue
	logger.Error(ctx, "EMERGENCY STOP LOSS TRIGGERED - trading paused",
		"loss_pct", loss*100,
		"stop_loss_pct", es.stopLoss*100,
		"portfolio_value", currentValue,
		"initial_value", initialValue,
	)
	return true
}

// TryRecover evaluates the resume conditions while stopped. Both must hold:
// the cooldown has fully elapsed and the portfolio has recovered past
// valueAtTrigger * (1 + recoveryThreshold). While either is unmet, progress
// is logged for the operator and the stop stays engaged. Returns true only
// on the STOPPED -> ACTIVE transition.
func (es *EmergencyStop) TryRecover(ctx context.Context, currentValue float64) bool {
	if !es.triggered || !es.recoveryEnabled {
		return false
	}

	elapsed := es.now().Sub(es.triggeredAt)
	target := es.valueAtTrigger * (1 + es.recoveryThreshold)

	if elapsed < es.cooldown {
		logger.Info(ctx, "Emergency stop active - cooling down",
			"remaining_hours", (es.cooldown - elapsed).Hours(),
		)
		return false
	}
	if currentValue < target {
		logger.Info(ctx, "Emergency stop active - awaiting recovery",
			"recovery_target", target,
			"portfolio_value", currentValue,
			"recovery_needed", target-currentValue,
		)
		return false
	}

	recoveredPct := (currentValue - es.valueAtTrigger) / es.valueAtTrigger * 100
	es.triggered = false
	es.triggeredAt = time.Time{}
	es.valueAtTrigger = 0
	logger.Info(ctx, "Emergency stop recovery conditions met - trading resumed",
		"recovered_pct", recoveredPct,
		"stopped_hours", elapsed.Hours(),
	)
	return true
}
