package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Defined reports whether an indicator value exists. Positions without
// enough history are NaN and must not be decided on.
func Defined(v float64) bool { return !math.IsNaN(v) }

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA returns the trailing arithmetic mean over n samples at each position.
// The first n-1 positions are NaN.
func SMA(series []float64, n int) []float64 {
	out := undefined(len(series))
	if n <= 0 || len(series) < n {
		return out
	}
	for i := n - 1; i < len(series); i++ {
		out[i] = stat.Mean(series[i-n+1:i+1], nil)
	}
	return out
}

// EMA returns the exponential moving average with the given span
// (alpha = 2/(span+1)), seeded at the first sample.
func EMA(series []float64, span int) []float64 {
	if span <= 0 || len(series) == 0 {
		return undefined(len(series))
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI returns the relative strength index with Wilder smoothing
// (center of mass window-1, alpha = 1/window). Positions before the first
// `window` deltas are NaN. When the average loss is zero the index is
// pinned at 100 if there were gains, and at the neutral 50 when the series
// saw neither gains nor losses.
func RSI(series []float64, window int) []float64 {
	out := undefined(len(series))
	if window <= 0 || len(series) < window+1 {
		return out
	}
	alpha := 1.0 / float64(window)

	var avgGain, avgLoss float64
	for i := 1; i < len(series); i++ {
		d := series[i] - series[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i < window {
			continue
		}
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACD returns the MACD line, its signal line and the histogram for the
// standard fast/slow/signal spans. A series shorter than the slow span has
// no value anywhere.
func MACD(series []float64, fast, slow, signal int) (macd, signalLine, hist []float64) {
	n := len(series)
	if n < slow || fast <= 0 || slow <= 0 || signal <= 0 {
		return undefined(n), undefined(n), undefined(n)
	}
	emaFast := EMA(series, fast)
	emaSlow := EMA(series, slow)
	macd = make([]float64, n)
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine = EMA(macd, signal)
	hist = make([]float64, n)
	for i := range hist {
		hist[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, hist
}

// StdDev returns the trailing sample standard deviation over n samples.
func StdDev(series []float64, n int) float64 {
	if n <= 0 || len(series) < n {
		return math.NaN()
	}
	return stat.StdDev(series[len(series)-n:], nil)
}

// Last returns the final value of a series, or NaN when empty.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// Prev returns the next-to-last value, falling back to the last value when
// only one sample exists (so no crossover can be observed).
func Prev(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	if len(series) < 2 {
		return series[len(series)-1]
	}
	return series[len(series)-2]
}
