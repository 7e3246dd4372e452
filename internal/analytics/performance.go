package analytics

import (
	"math"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
)

const epsilon = 1e-10

// Analyzer computes summary statistics over an equity curve. Annualization
// follows the rebalance frequency the curve was sampled at.
type Analyzer struct {
	periodsPerYear float64
}

// NewAnalyzer creates an analyzer for curves sampled at the given frequency.
func NewAnalyzer(freq strategyconfig.RebalanceFrequency) *Analyzer {
	return &Analyzer{periodsPerYear: freq.PeriodsPerYear()}
}

// Analyze summarizes an equity curve. Curves with fewer than two points
// cannot produce returns and yield ErrInsufficientEquityHistory.
func (a *Analyzer) Analyze(curve []contracts.EquityPoint) (*contracts.PerformanceSummary, error) {
	if len(curve) < 2 {
		return nil, contracts.ErrInsufficientEquityHistory
	}

	first, last := curve[0], curve[len(curve)-1]
	totalReturn := last.Value/first.Value - 1

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, curve[i].Value/curve[i-1].Value-1)
	}

	days := last.Date.Sub(first.Date).Hours() / 24
	cagr := totalReturn
	if days > 0 {
		cagr = math.Pow(1+totalReturn, 365.25/days) - 1
	}

	mu := mean(returns)
	sigma := stddev(returns, mu)
	annVol := sigma * math.Sqrt(a.periodsPerYear)

	sharpe := 0.0
	if sigma > epsilon {
		sharpe = mu / sigma * math.Sqrt(a.periodsPerYear)
	}

	return &contracts.PerformanceSummary{
		StartDate:     first.Date,
		EndDate:       last.Date,
		Periods:       len(curve),
		TotalReturn:   totalReturn,
		CAGR:          cagr,
		AnnualizedVol: annVol,
		Sharpe:        sharpe,
		MaxDrawdown:   maxDrawdown(curve),
	}, nil
}

// maxDrawdown is the worst peak-to-trough decline, as a fraction. Always
// zero or negative.
func maxDrawdown(curve []contracts.EquityPoint) float64 {
	peak := curve[0].Value
	worst := 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		dd := p.Value/peak - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
