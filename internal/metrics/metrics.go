package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oadtz/eth-pepe-bot/internal/interfaces"
	"github.com/oadtz/eth-pepe-bot/internal/logger"
)

// Recorder is the risk-event sink backed by prometheus counters. Events are
// fire-and-forget: they are counted, logged with a unique ID and never
// surfaced back to the trading cycle.
type Recorder struct {
	registry    *prometheus.Registry
	riskEvents  *prometheus.CounterVec
	trades      *prometheus.CounterVec
	quarantines *prometheus.CounterVec
	cycles      prometheus.Counter
}

var _ interfaces.RiskSink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		riskEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_risk_events_total",
			Help: "Risk events by kind and severity.",
		}, []string{"kind", "severity"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_trades_total",
			Help: "Trade executions by side and outcome.",
		}, []string{"side", "outcome"}),
		quarantines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_rpc_quarantines_total",
			Help: "RPC endpoints quarantined, by reason.",
		}, []string{"reason"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Completed evaluation cycles.",
		}),
	}
	reg.MustRegister(r.riskEvents, r.trades, r.quarantines, r.cycles)
	return r
}

func (r *Recorder) RecordRiskEvent(ctx context.Context, kind, severity, description string) {
	r.riskEvents.WithLabelValues(kind, severity).Inc()
	logger.Risk(ctx, "", kind,
		"event_id", uuid.NewString(),
		"severity", severity,
		"description", description,
	)
}

func (r *Recorder) RecordTrade(side string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.trades.WithLabelValues(side, outcome).Inc()
}

// RecordQuarantine counts an endpoint quarantine; wired into the pool's
// OnQuarantine hook at bootstrap.
func (r *Recorder) RecordQuarantine(url string, rateLimited bool) {
	reason := "error"
	if rateLimited {
		reason = "rate_limit"
	}
	r.quarantines.WithLabelValues(reason).Inc()
}

// RecordCycle counts one completed evaluation cycle.
func (r *Recorder) RecordCycle() {
	r.cycles.Inc()
}

// Handler serves the registry in prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.ErrorWithErr(ctx, "Metrics server stopped", err)
	}
}
