package signal

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// seriesFromCloses builds a validated series with one bar per weekday,
// ending so the last close falls on a Friday.
func seriesFromCloses(t *testing.T, ticker string, closes []float64) *contracts.PriceSeries {
	t.Helper()

	bars := make([]contracts.Bar, 0, len(closes))
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	for _, c := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		bars = append(bars, contracts.Bar{Date: d, Close: c})
		d = d.AddDate(0, 0, 1)
	}

	s, err := contracts.NewPriceSeries(ticker, bars)
	require.NoError(t, err)
	return s
}

// driftCloses generates n closes compounding at a fixed daily rate.
func driftCloses(n int, daily float64) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1 + daily
		closes[i] = price
	}
	return closes
}

func testSignals() strategyconfig.Signals {
	return strategyconfig.Default().Signals
}

func TestCompute_CompleteVectors(t *testing.T) {
	series := map[string]*contracts.PriceSeries{
		"CCC": seriesFromCloses(t, "CCC", driftCloses(200, 0.001)),
		"AAA": seriesFromCloses(t, "AAA", driftCloses(200, 0.002)),
		"BBB": seriesFromCloses(t, "BBB", driftCloses(200, -0.001)),
	}
	date := series["AAA"].Last().Date

	engine := NewEngine(testSignals(), logger.NewNop())
	vectors, err := engine.Compute(context.Background(), series, date, nil)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Ticker order is restored after the parallel fan-out
	assert.Equal(t, "AAA", vectors[0].Ticker)
	assert.Equal(t, "BBB", vectors[1].Ticker)
	assert.Equal(t, "CCC", vectors[2].Ticker)

	for _, fv := range vectors {
		for name, v := range map[string]float64{
			"momentum":         fv.Momentum,
			"quality":          fv.Quality,
			"volatility_risk":  fv.VolatilityRisk,
			"rsi_confirmation": fv.RSIConfirmation,
			"sharpe":           fv.Sharpe,
			"mean_reversion":   fv.MeanReversion,
			"annualized_vol":   fv.AnnualizedVol,
			"rsi":              fv.RSI,
		} {
			assert.False(t, math.IsNaN(v), "%s/%s is NaN", fv.Ticker, name)
			assert.False(t, math.IsInf(v, 0), "%s/%s is Inf", fv.Ticker, name)
		}

		assert.GreaterOrEqual(t, fv.RSIConfirmation, 0.0)
		assert.LessOrEqual(t, fv.RSIConfirmation, 1.0)
		assert.GreaterOrEqual(t, fv.AnnualizedVol, 0.0)
		assert.LessOrEqual(t, fv.VolatilityRisk, 0.0)
		assert.Equal(t, date, fv.Date)
	}

	// Steady uptrend ranks above the downtrend on momentum
	assert.Greater(t, vectors[0].Momentum, vectors[2].Momentum)
	assert.Greater(t, vectors[2].Momentum, vectors[1].Momentum)
}

func TestCompute_MomentumBlend(t *testing.T) {
	// Constant 0.1% daily growth gives exact trailing returns per horizon.
	closes := driftCloses(200, 0.001)
	series := map[string]*contracts.PriceSeries{
		"AAA": seriesFromCloses(t, "AAA", closes),
	}
	date := series["AAA"].Last().Date

	cfg := testSignals()
	engine := NewEngine(cfg, logger.NewNop()).WithWorkers(1)
	vectors, err := engine.Compute(context.Background(), series, date, nil)
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	want := 0.0
	for i, lb := range cfg.Momentum.LookbacksDays {
		want += cfg.Momentum.Weights[i] * (math.Pow(1.001, float64(lb)) - 1) * 100
	}
	assert.InDelta(t, want, vectors[0].Momentum, 1e-6)

	assert.InDelta(t, (math.Pow(1.001, 21)-1)*100, vectors[0].Return1M, 1e-6)
	assert.InDelta(t, (math.Pow(1.001, 63)-1)*100, vectors[0].Return3M, 1e-6)
	assert.InDelta(t, (math.Pow(1.001, 126)-1)*100, vectors[0].Return6M, 1e-6)
}

func TestCompute_SkipsInsufficientHistory(t *testing.T) {
	series := map[string]*contracts.PriceSeries{
		"LONG":  seriesFromCloses(t, "LONG", driftCloses(200, 0.001)),
		"SHORT": seriesFromCloses(t, "SHORT", driftCloses(30, 0.001)),
	}
	date := series["LONG"].Last().Date

	engine := NewEngine(testSignals(), logger.NewNop())
	vectors, err := engine.Compute(context.Background(), series, date, nil)
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, "LONG", vectors[0].Ticker)
}

func TestCompute_NoUsableTickers(t *testing.T) {
	series := map[string]*contracts.PriceSeries{
		"SHORT": seriesFromCloses(t, "SHORT", driftCloses(30, 0.001)),
	}
	date := series["SHORT"].Last().Date

	engine := NewEngine(testSignals(), logger.NewNop())
	_, err := engine.Compute(context.Background(), series, date, nil)
	assert.ErrorIs(t, err, contracts.ErrNoUsableTickers)
}

func TestCompute_ProgressAndDeterminism(t *testing.T) {
	series := make(map[string]*contracts.PriceSeries)
	for _, ticker := range []string{"A", "B", "C", "D", "E", "F"} {
		series[ticker] = seriesFromCloses(t, ticker, driftCloses(200, 0.001))
	}
	date := series["A"].Last().Date

	var calls int64
	progress := func(done, total int) {
		atomic.AddInt64(&calls, 1)
	}

	parallel := NewEngine(testSignals(), logger.NewNop()).WithWorkers(4)
	got, err := parallel.Compute(context.Background(), series, date, progress)
	require.NoError(t, err)
	assert.EqualValues(t, 6, atomic.LoadInt64(&calls))

	sequential := NewEngine(testSignals(), logger.NewNop()).WithWorkers(1)
	want, err := sequential.Compute(context.Background(), series, date, nil)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestCompute_CorrelationPenalty(t *testing.T) {
	cfg := testSignals()
	cfg.Correlation.Enable = true

	// Two identical paths are perfectly correlated; the third moves opposite.
	series := map[string]*contracts.PriceSeries{
		"X1": seriesFromCloses(t, "X1", driftCloses(200, 0.001)),
		"X2": seriesFromCloses(t, "X2", driftCloses(200, 0.001)),
	}
	date := series["X1"].Last().Date

	engine := NewEngine(cfg, logger.NewNop()).WithWorkers(1)
	vectors, err := engine.Compute(context.Background(), series, date, nil)
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	// avg corr = 1.0 -> penalty = -scale
	for _, fv := range vectors {
		assert.InDelta(t, -cfg.Correlation.Scale, fv.CorrelationPenalty, 1e-9)
	}
}

func TestCompute_CancelledContext(t *testing.T) {
	series := make(map[string]*contracts.PriceSeries)
	for i := 0; i < 40; i++ {
		ticker := fmt.Sprintf("T%02d", i)
		series[ticker] = seriesFromCloses(t, ticker, driftCloses(200, 0.001))
	}
	date := series["T00"].Last().Date

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(testSignals(), logger.NewNop()).WithWorkers(1)
	_, err := engine.Compute(ctx, series, date, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
