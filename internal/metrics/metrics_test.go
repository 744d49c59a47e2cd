package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading scrape body: %v", err)
	}
	return string(b)
}

func TestRecorderCountsEvents(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.RecordRiskEvent(ctx, "emergency_stop", "critical", "drawdown past stop loss")
	r.RecordRiskEvent(ctx, "validation_rejected", "medium", "gas too high")
	r.RecordTrade("BUY", true)
	r.RecordTrade("SELL", false)
	r.RecordQuarantine("https://a.example", true)
	r.RecordCycle()

	body := scrape(t, r)
	for _, want := range []string{
		`bot_risk_events_total{kind="emergency_stop",severity="critical"} 1`,
		`bot_risk_events_total{kind="validation_rejected",severity="medium"} 1`,
		`bot_trades_total{outcome="success",side="BUY"} 1`,
		`bot_trades_total{outcome="failure",side="SELL"} 1`,
		`bot_rpc_quarantines_total{reason="rate_limit"} 1`,
		`bot_cycles_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
