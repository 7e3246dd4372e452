package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveReturns(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	returns := CurveReturns(curveFrom(start, 7, 100, 110, 99))
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)

	assert.Nil(t, CurveReturns(nil))
	assert.Nil(t, CurveReturns(curveFrom(start, 7, 100)))
}

func TestHistoricalVaR(t *testing.T) {
	// 20 returns: the 5% quantile falls on the second-worst observation and
	// the tail mean averages the two worst.
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = 0.01
	}
	returns[3] = -0.05
	returns[7] = -0.03

	result := HistoricalVaR(returns, 0.95)
	assert.Equal(t, 0.95, result.Confidence)
	assert.InDelta(t, 0.03, result.VaR, 1e-12)
	assert.InDelta(t, 0.04, result.CVaR, 1e-12)
}

func TestHistoricalVaRNoLosses(t *testing.T) {
	result := HistoricalVaR([]float64{0.01, 0.02, 0.03}, 0.95)
	assert.Zero(t, result.VaR)
}

func TestHistoricalVaREmpty(t *testing.T) {
	result := HistoricalVaR(nil, 0.95)
	assert.Zero(t, result.VaR)
	assert.Zero(t, result.CVaR)
}

func TestMonteCarloVaRReproducible(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.04, 0.01, -0.02, 0.015, 0.0}

	a := MonteCarloVaR(returns, 4, 2000, 0.95, 1)
	b := MonteCarloVaR(returns, 4, 2000, 0.95, 1)
	assert.Equal(t, a, b)

	c := MonteCarloVaR(returns, 4, 2000, 0.95, 2)
	assert.NotEqual(t, a, c)
}

func TestMonteCarloVaRBounds(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.04, 0.01, -0.02}

	result := MonteCarloVaR(returns, 4, 5000, 0.95, 7)
	assert.Equal(t, 5000, result.Simulations)
	assert.Equal(t, 4, result.Horizon)
	assert.GreaterOrEqual(t, result.VaR, 0.0)
	assert.GreaterOrEqual(t, result.CVaR, result.VaR)
	assert.LessOrEqual(t, result.WorstReturn, result.MeanReturn)

	// worst possible 4-period path is four -4% moves
	assert.GreaterOrEqual(t, result.WorstReturn, -(1 - 0.96*0.96*0.96*0.96)-1e-9)
}

func TestMonteCarloVaRDegenerate(t *testing.T) {
	result := MonteCarloVaR(nil, 4, 1000, 0.95, 1)
	assert.Zero(t, result.VaR)

	result = MonteCarloVaR([]float64{0.01}, 0, 1000, 0.95, 1)
	assert.Zero(t, result.VaR)
}
