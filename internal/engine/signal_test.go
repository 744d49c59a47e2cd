package engine

import (
	"strings"
	"testing"

	"github.com/oadtz/eth-pepe-bot/internal/types"
)

func testSignalConfig() SignalConfig {
	return SignalConfig{
		ShortSMA:      3,
		LongSMA:       8,
		RSIPeriod:     5,
		RSIOversold:   35,
		RSIOverbought: 65,
		VolumeMA:      5,
		MinSamples:    26,
	}
}

func makeSamples(closes, vols []float64) []types.PriceSample {
	out := make([]types.PriceSample, len(closes))
	for i := range closes {
		out[i] = types.PriceSample{Ts: int64(i) * 3600, Close: closes[i], Vol: vols[i]}
	}
	return out
}

func flatSeries(n int, price, vol float64) ([]float64, []float64) {
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = price
		vols[i] = vol
	}
	return closes, vols
}

func TestDecideHoldsBelowMinSamples(t *testing.T) {
	closes, vols := flatSeries(25, 100, 1000)
	signal, _, reason := Decide(testSignalConfig(), makeSamples(closes, vols))
	if signal != types.SignalHold {
		t.Fatalf("signal = %s, want HOLD with too few samples", signal)
	}
	if !strings.Contains(reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient-data explanation", reason)
	}
}

func TestDecideHoldsOnFlatMarket(t *testing.T) {
	closes, vols := flatSeries(30, 100, 1000)
	signal, inds, _ := Decide(testSignalConfig(), makeSamples(closes, vols))
	if signal != types.SignalHold {
		t.Fatalf("signal = %s, want HOLD on a flat market", signal)
	}
	if inds.RSI != 50 {
		t.Errorf("RSI = %v, want neutral 50 on a flat market", inds.RSI)
	}
}

func TestDecideBuyOnUpwardBreakout(t *testing.T) {
	// Flat market, then a sharp move up on elevated volume: golden cross,
	// MACD cross up, price above the short SMA and volume confirmation all
	// concur.
	closes, vols := flatSeries(30, 100, 1000)
	closes[29] = 110
	vols[29] = 2000

	signal, _, reason := Decide(testSignalConfig(), makeSamples(closes, vols))
	if signal != types.SignalBuy {
		t.Fatalf("signal = %s (%s), want BUY on upward breakout", signal, reason)
	}
	if !strings.Contains(reason, "golden cross") {
		t.Errorf("reason = %q, want golden cross among the votes", reason)
	}
}

func TestDecideBuyWinsOverSell(t *testing.T) {
	// The breakout also generates sell votes (the spike pins RSI overbought
	// and volume confirmation counts both ways), but BUY meets its threshold
	// and takes priority.
	closes, vols := flatSeries(30, 100, 1000)
	closes[29] = 110
	vols[29] = 2000

	signal, inds, _ := Decide(testSignalConfig(), makeSamples(closes, vols))
	if inds.RSI <= 65 {
		t.Fatalf("RSI = %v, scenario should pin RSI overbought", inds.RSI)
	}
	if signal != types.SignalBuy {
		t.Fatalf("signal = %s, want BUY to win over concurrent sell votes", signal)
	}
}

func TestDecideSellOnBreakdown(t *testing.T) {
	// A single sell vote suffices. The drop produces a death cross, a MACD
	// cross down and price below the short SMA; volume stays unremarkable.
	closes, vols := flatSeries(30, 100, 1000)
	closes[29] = 90

	signal, _, reason := Decide(testSignalConfig(), makeSamples(closes, vols))
	if signal != types.SignalSell {
		t.Fatalf("signal = %s (%s), want SELL on breakdown", signal, reason)
	}
	if !strings.Contains(reason, "death cross") {
		t.Errorf("reason = %q, want death cross among the votes", reason)
	}
}
