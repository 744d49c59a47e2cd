package engine

import (
	"fmt"
	"strings"

	"github.com/oadtz/eth-pepe-bot/internal/ta"
	"github.com/oadtz/eth-pepe-bot/internal/types"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	// Volume confirms a move when it runs 20% above its moving average.
	volumeConfirmRatio = 1.2

	buyVotesRequired  = 2
	sellVotesRequired = 1
)

// SignalConfig holds the indicator windows and thresholds for the vote.
type SignalConfig struct {
	ShortSMA      int
	LongSMA       int
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	VolumeMA      int
	MinSamples    int
}

// Decide runs the weighted vote over the price window. BUY needs two
// concurring votes; SELL needs one (capital preservation bias). When both
// thresholds are met BUY wins. Any missing indicator value degrades to HOLD.
func Decide(cfg SignalConfig, samples []types.PriceSample) (types.Signal, types.Indicators, string) {
	var inds types.Indicators
	if len(samples) < cfg.MinSamples {
		return types.SignalHold, inds, fmt.Sprintf("insufficient data: %d of %d samples", len(samples), cfg.MinSamples)
	}

	closes := make([]float64, len(samples))
	vols := make([]float64, len(samples))
	for i, s := range samples {
		closes[i] = s.Close
		vols[i] = s.Vol
	}

	shortS := ta.SMA(closes, cfg.ShortSMA)
	longS := ta.SMA(closes, cfg.LongSMA)
	rsiS := ta.RSI(closes, cfg.RSIPeriod)
	macdS, sigS, histS := ta.MACD(closes, macdFast, macdSlow, macdSignal)
	volS := ta.SMA(vols, cfg.VolumeMA)

	inds = types.Indicators{
		ShortSMA: ta.Last(shortS),
		LongSMA:  ta.Last(longS),
		RSI:      ta.Last(rsiS),
		MACD:     ta.Last(macdS),
		MACDSig:  ta.Last(sigS),
		MACDHist: ta.Last(histS),
		VolumeMA: ta.Last(volS),
	}

	for _, v := range []float64{inds.ShortSMA, inds.LongSMA, inds.RSI, inds.MACD, inds.MACDSig, inds.VolumeMA} {
		if !ta.Defined(v) {
			return types.SignalHold, inds, "insufficient data: indicator warm-up incomplete"
		}
	}

	price := closes[len(closes)-1]
	volume := vols[len(vols)-1]

	// Crossovers compare against the previous row of the same computed
	// series. With a single valid row the previous value equals the
	// current one, so no crossover can fire.
	prevShort := prevOr(shortS, inds.ShortSMA)
	prevLong := prevOr(longS, inds.LongSMA)
	prevMACD := prevOr(macdS, inds.MACD)
	prevSig := prevOr(sigS, inds.MACDSig)

	goldenCross := prevShort <= prevLong && inds.ShortSMA > inds.LongSMA
	deathCross := prevShort >= prevLong && inds.ShortSMA < inds.LongSMA
	macdCrossUp := prevMACD <= prevSig && inds.MACD > inds.MACDSig
	macdCrossDown := prevMACD >= prevSig && inds.MACD < inds.MACDSig
	volumeConfirm := volume > volumeConfirmRatio*inds.VolumeMA

	var buyVotes, sellVotes int
	var buyReasons, sellReasons []string

	vote := func(cond bool, votes *int, reasons *[]string, label string) {
		if cond {
			*votes++
			*reasons = append(*reasons, label)
		}
	}

	vote(goldenCross, &buyVotes, &buyReasons, "golden cross")
	vote(inds.RSI < cfg.RSIOversold, &buyVotes, &buyReasons, "rsi oversold")
	vote(macdCrossUp, &buyVotes, &buyReasons, "macd cross up")
	vote(price > inds.ShortSMA, &buyVotes, &buyReasons, "price above short sma")
	vote(volumeConfirm, &buyVotes, &buyReasons, "volume confirmation")

	vote(deathCross, &sellVotes, &sellReasons, "death cross")
	vote(inds.RSI > cfg.RSIOverbought, &sellVotes, &sellReasons, "rsi overbought")
	vote(macdCrossDown, &sellVotes, &sellReasons, "macd cross down")
	vote(price < inds.ShortSMA, &sellVotes, &sellReasons, "price below short sma")
	vote(volumeConfirm, &sellVotes, &sellReasons, "volume confirmation")

	// BUY threshold is checked first; SELL is never preferred over BUY.
	if buyVotes >= buyVotesRequired {
		return types.SignalBuy, inds, fmt.Sprintf("%d buy votes: %s", buyVotes, strings.Join(buyReasons, ", "))
	}
	if sellVotes >= sellVotesRequired {
		return types.SignalSell, inds, fmt.Sprintf("%d sell votes: %s", sellVotes, strings.Join(sellReasons, ", "))
	}
	return types.SignalHold, inds, fmt.Sprintf("no threshold met (buy %d/%d, sell %d/%d)",
		buyVotes, buyVotesRequired, sellVotes, sellVotesRequired)
}

// prevOr returns the next-to-last defined value, falling back to cur when
// no usable previous row exists.
func prevOr(series []float64, cur float64) float64 {
	if len(series) < 2 {
		return cur
	}
	v := series[len(series)-2]
	if !ta.Defined(v) {
		return cur
	}
	return v
}
