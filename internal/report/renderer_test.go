package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

func TestRenderSummary(t *testing.T) {
	r := NewRenderer()
	out := r.RenderSummary(&contracts.PerformanceSummary{
		TotalReturn:   0.2165,
		CAGR:          0.21,
		AnnualizedVol: 0.1432,
		Sharpe:        1.37,
		MaxDrawdown:   -0.0812,
	})

	assert.Contains(t, out, "21.65%")
	assert.Contains(t, out, "21.00%")
	assert.Contains(t, out, "1.37")
	assert.Contains(t, out, "-8.12%")
}

func TestRenderSummaryNil(t *testing.T) {
	out := NewRenderer().RenderSummary(nil)
	assert.Contains(t, out, "No performance summary")
}

func TestRenderHoldings(t *testing.T) {
	state := contracts.NewPortfolioState(500)
	fresh, err := contracts.NewPosition("AAA", 10, 100)
	require.NoError(t, err)
	fresh.LastPrice = 110
	stale, err := contracts.NewPosition("BBB", 5, 80)
	require.NoError(t, err)
	stale.StalePrice = true
	state.Positions["AAA"] = fresh
	state.Positions["BBB"] = stale

	out := NewRenderer().RenderHoldings(state)

	// lexical order, stale rows marked
	aaa := strings.Index(out, "AAA")
	bbb := strings.Index(out, "BBB")
	require.Greater(t, aaa, 0)
	require.Greater(t, bbb, aaa)

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "BBB") {
			assert.True(t, strings.HasSuffix(line, " *"), "stale position should be marked: %q", line)
		}
		if strings.Contains(line, "AAA") && !strings.Contains(line, "TICKER") {
			assert.False(t, strings.HasSuffix(line, " *"))
		}
	}
	assert.Contains(t, out, "Cash 500.00")
	assert.Contains(t, out, "Equity 2000.00")
}

func TestRenderSelection(t *testing.T) {
	selection := []contracts.Candidate{
		{Ticker: "AAA", Composite: 72.5, Features: contracts.FeatureVector{Momentum: 18.2, AnnualizedVol: 22.1}},
		{Ticker: "BBB", Composite: 61.0, Features: contracts.FeatureVector{Momentum: 25.4, AnnualizedVol: 31.8}},
	}

	out := NewRenderer().RenderSelection(selection)
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "72.50")
	assert.Contains(t, out, "Momentum leaders")

	// leaders sort by raw momentum, not composite
	leaders := out[strings.Index(out, "Momentum leaders"):]
	assert.Less(t, strings.Index(leaders, "BBB"), strings.Index(leaders, "AAA"))
}

func TestRenderPlanSellsFirst(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []contracts.Trade{
		{Date: date, Ticker: "AAA", Side: contracts.TradeSideBuy, Shares: 10, Price: 100, Value: 1000, Reason: contracts.ReasonNewSelection},
		{Date: date, Ticker: "ZZZ", Side: contracts.TradeSideSell, Shares: 5, Price: 50, Value: 250, Reason: contracts.ReasonStopLoss},
	}

	out := NewRenderer().RenderPlan(trades, date)
	assert.Contains(t, out, "2024-03-01")
	assert.Less(t, strings.Index(out, "ZZZ"), strings.Index(out, "AAA"))
	assert.Contains(t, out, "stop_loss")
}

func TestRenderPlanEmpty(t *testing.T) {
	out := NewRenderer().RenderPlan(nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "No trades")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 4000))

	text := strings.Repeat("0123456789\n", 3) // 33 bytes
	chunks := splitMessage(text, 22)
	require.Len(t, chunks, 2)
	assert.Equal(t, "0123456789\n0123456789\n", chunks[0])
	assert.Equal(t, "0123456789\n", chunks[1])
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestFileSinkWrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, logger.NewNop())

	path, err := sink.Write("backtest", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "report body\n")
	require.NoError(t, err)
	assert.Contains(t, path, "backtest_20240301.txt")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report body\n", string(data))
}
