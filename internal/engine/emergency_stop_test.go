package engine

import (
	"context"
	"testing"
	"time"

	"github.com/oadtz/eth-pepe-bot/internal/store"
)

func estopConfig() *store.Config {
	cfg := &store.Config{}
	cfg.EmergencyStop.StopLoss = 0.20
	cfg.EmergencyStop.RecoveryEnabled = true
	cfg.EmergencyStop.RecoveryThreshold = 0.05
	cfg.EmergencyStop.RecoveryWaitHours = 2
	return cfg
}

func TestCheckTriggersAtThreshold(t *testing.T) {
	ctx := context.Background()
	es := NewEmergencyStop(estopConfig())

	if es.Check(ctx, 0.81, 1.0) {
		t.Fatal("19% drawdown triggered the stop, threshold is 20%")
	}
	if es.Triggered() {
		t.Fatal("stop engaged without trigger")
	}

	if !es.Check(ctx, 0.79, 1.0) {
		t.Fatal("21% drawdown did not trigger the stop")
	}
	if !es.Triggered() {
		t.Fatal("stop not engaged after trigger")
	}
	if es.ValueAtTrigger() != 0.79 {
		t.Errorf("ValueAtTrigger = %v, want 0.79", es.ValueAtTrigger())
	}

	// Already stopped: a deeper drawdown is not a second transition.
	if es.Check(ctx, 0.50, 1.0) {
		t.Fatal("Check returned true while already stopped")
	}
}

func TestCheckExactBoundaryTriggers(t *testing.T) {
	es := NewEmergencyStop(estopConfig())
	if !es.Check(context.Background(), 80, 100) {
		t.Fatal("exactly 20% drawdown did not trigger the stop")
	}
}

func TestRecoveryNeedsCooldownAndThreshold(t *testing.T) {
	ctx := context.Background()
	es := NewEmergencyStop(estopConfig())

	clock := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	es.now = func() time.Time { return clock }

	if !es.Check(ctx, 0.79, 1.0) {
		t.Fatal("trigger setup failed")
	}
	// Recovery target: 0.79 * 1.05 = 0.8295.

	// Value recovered but cooldown not elapsed.
	clock = clock.Add(1 * time.Hour)
	if es.TryRecover(ctx, 0.90) {
		t.Fatal("recovered before the cooldown elapsed")
	}

	// Cooldown elapsed but value below the recovery target.
	clock = clock.Add(90 * time.Minute)
	if es.TryRecover(ctx, 0.82) {
		t.Fatal("recovered below the recovery target")
	}
	if !es.Triggered() {
		t.Fatal("stop disengaged without recovery")
	}

	// Both conditions hold.
	if !es.TryRecover(ctx, 0.83) {
		t.Fatal("recovery refused with cooldown elapsed and value past target")
	}
	if es.Triggered() {
		t.Fatal("stop still engaged after recovery")
	}

	// Back to ACTIVE: TryRecover is a no-op.
	if es.TryRecover(ctx, 1.0) {
		t.Fatal("TryRecover returned true while active")
	}
}

func TestRecoveryDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := estopConfig()
	cfg.EmergencyStop.RecoveryEnabled = false
	es := NewEmergencyStop(cfg)

	clock := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	es.now = func() time.Time { return clock }

	es.Check(ctx, 0.70, 1.0)
	clock = clock.Add(48 * time.Hour)
	if es.TryRecover(ctx, 2.0) {
		t.Fatal("recovered with recovery disabled")
	}
}

func TestCheckIgnoresUnknownInitialValue(t *testing.T) {
	es := NewEmergencyStop(estopConfig())
	if es.Check(context.Background(), 0.5, 0) {
		t.Fatal("triggered with no initial portfolio value")
	}
}
