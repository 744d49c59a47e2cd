package types

// Signal is the per-cycle trading decision.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Valid reports whether s is one of the three known signals.
func (s Signal) Valid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalHold
}

// Actionable reports whether s would result in an order.
func (s Signal) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// PriceSample is one point of the pair price series. Ts is a UTC unix
// timestamp; series are kept in strictly increasing Ts order.
type PriceSample struct {
	Ts    int64
	Close float64
	Vol   float64
}

// Indicators holds the values derived from the price window for one cycle.
// Undefined values are NaN (insufficient history); callers must not decide
// on NaN values.
type Indicators struct {
	ShortSMA float64
	LongSMA  float64
	RSI      float64
	MACD     float64
	MACDSig  float64
	MACDHist float64
	VolumeMA float64
}

// TradeResult is the opaque outcome reported by the execution collaborator.
type TradeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CycleResult summarises one evaluation cycle.
type CycleResult struct {
	Signal         Signal       `json:"signal"`
	Price          float64      `json:"price"`
	Time           int64        `json:"time"`
	Trade          *TradeResult `json:"trade,omitempty"`
	PortfolioValue float64      `json:"portfolio_value"`
	ProfitLoss     float64      `json:"profit_loss"`
	Reason         string       `json:"reason"`
}
