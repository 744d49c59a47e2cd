package interfaces

import "context"

// RiskSink records risk events for the operator. Fire-and-forget: failures
// are never surfaced to the trading cycle.
type RiskSink interface {
	RecordRiskEvent(ctx context.Context, kind, severity, description string)
	RecordTrade(side string, success bool)
}
