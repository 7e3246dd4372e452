package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/api/handlers"
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// stubProvider serves a fixed series map regardless of the request.
type stubProvider struct {
	series map[string]*contracts.PriceSeries
}

func (p *stubProvider) Fetch(ctx context.Context, tickers []string, start, end time.Time) (map[string]*contracts.PriceSeries, error) {
	return p.series, nil
}

func trendingSeries(t *testing.T, ticker string, daily float64) *contracts.PriceSeries {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, 0, 330)
	d := start
	for len(bars) < 330 {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			bars = append(bars, contracts.Bar{Date: d, Close: 100 * math.Pow(daily, float64(len(bars)))})
		}
		d = d.AddDate(0, 0, 1)
	}
	s, err := contracts.NewPriceSeries(ticker, bars)
	require.NoError(t, err)
	return s
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	strategy := strategyconfig.Default()
	strategy.Portfolio.TopN = 2

	provider := &stubProvider{series: map[string]*contracts.PriceSeries{
		"AAA": trendingSeries(t, "AAA", 1.002),
		"BBB": trendingSeries(t, "BBB", 1.0015),
		"CCC": trendingSeries(t, "CCC", 1.001),
	}}

	handler := handlers.NewStrategyHandler(strategy, "deadbeef", provider, 400, logger.NewNop())
	return NewRouter(handler, logger.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}

func TestStrategyEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/api/strategy", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.StrategyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deadbeef", resp.Hash)
	assert.Equal(t, 2, resp.TopN)
	assert.Equal(t, -10.0, resp.StopLossPct)
}

func TestScreenEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/api/screen?date=2024-03-01", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.ScreenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03-01", resp.Date)
	require.NotEmpty(t, resp.Selection)
	assert.Equal(t, 1, resp.Selection[0].Rank)
	assert.Equal(t, "AAA", resp.Selection[0].Ticker)
}

func TestScreenEndpointBadDate(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/api/screen?date=01/03/2024", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBacktestEndpoint(t *testing.T) {
	body := strings.NewReader(`{"from":"2024-01-01","to":"2024-03-29","initial_cash":50000}`)
	req := httptest.NewRequest("POST", "/api/backtest", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.BacktestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Positive(t, resp.Rebalances)
	assert.Positive(t, resp.FinalEquity)
	assert.Positive(t, resp.TotalReturn)
}

func TestBacktestEndpointMissingFrom(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/backtest", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest("GET", "/api/backtest", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
