package signal

import "math"

// epsilon guards every denominator that can degenerate to zero on
// near-constant series.
const epsilon = 1e-10

// tradingDaysPerYear is the annualization base for daily statistics.
const tradingDaysPerYear = 252.0

// dailyReturns converts a close sequence (oldest first) into simple returns.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the sample standard deviation (n-1), 0 when fewer than two
// values exist.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)

	return math.Sqrt(variance)
}

// sma returns the simple moving average of the last window closes, false
// when the series is shorter than the window.
func sma(closes []float64, window int) (float64, bool) {
	if len(closes) < window || window <= 0 {
		return 0, false
	}

	var sum float64
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window), true
}

// trailingReturnPct returns the percent return over lookback trading days,
// false when the series is too short for the horizon.
func trailingReturnPct(closes []float64, lookback int) (float64, bool) {
	if len(closes) < lookback+1 || lookback <= 0 {
		return 0, false
	}

	now := closes[len(closes)-1]
	then := closes[len(closes)-1-lookback]
	return (now/then - 1) * 100, true
}

// annualizedVolPct returns the annualized volatility over the last window
// daily returns, in percent. Degenerate input yields 0.
func annualizedVolPct(closes []float64, window int) float64 {
	returns := dailyReturns(closes)
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	return stddev(returns) * math.Sqrt(tradingDaysPerYear) * 100
}

// rsi computes the relative strength index from average gain/loss over the
// last period deltas. A series too short for the period reads neutral (50).
func rsi(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50.0
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	rs := avgGain / (avgLoss + epsilon)
	return 100 - (100 / (1 + rs))
}

// pearson computes the correlation of two equally long return series.
// Degenerate variance yields 0.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return 0
	}

	meanA := mean(a)
	meanB := mean(b)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom < epsilon {
		return 0
	}
	return cov / denom
}
