package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/pkg/config"
	"github.com/quantfolio/quantfolio/pkg/httputil"
	"github.com/quantfolio/quantfolio/pkg/logger"
	"github.com/quantfolio/quantfolio/pkg/redis"
)

// Client fetches daily adjusted closes from the Yahoo Finance chart API.
// Responses are cached in Redis per ticker and range when a cache is wired;
// without one every call goes to the network.
type Client struct {
	baseURL    string
	httpClient *httputil.Client
	cache      *redis.Cache
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// New creates a Yahoo client from provider config.
func New(cfg config.ProviderConfig, log *logger.Logger) *Client {
	httpClient := httputil.New(log, cfg.Timeout).
		WithRateLimit(cfg.RequestsPerSec, cfg.Burst)

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		cacheTTL:   cfg.CacheTTL,
		logger:     log,
	}
}

// WithCache attaches a Redis cache for chart responses.
func (c *Client) WithCache(client *redis.Client) *Client {
	c.cache = redis.NewCache(client, "yahoo:chart")
	return c
}

// chartResponse mirrors the chart API v8 payload, reduced to the fields we
// read. Adjusted closes live under indicators.adjclose.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch implements marketdata.Provider. Tickers that fail to download or
// parse are logged and skipped.
func (c *Client) Fetch(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (map[string]*contracts.PriceSeries, error) {
	series := make(map[string]*contracts.PriceSeries, len(tickers))

	for _, ticker := range tickers {
		s, err := c.fetchOne(ctx, ticker, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Price fetch failed")
			continue
		}
		series[ticker] = s
	}

	return series, nil
}

func (c *Client) fetchOne(ctx context.Context, ticker string, start, end time.Time) (*contracts.PriceSeries, error) {
	cacheKey := fmt.Sprintf("%s:%d:%d", ticker, start.Unix(), end.Unix())

	var payload chartResponse
	if c.cache != nil {
		if hit, err := c.cache.Get(ctx, cacheKey, &payload); err == nil && hit {
			return c.toSeries(ticker, &payload)
		}
	}

	// period2 is exclusive on the Yahoo side, push it one day past end
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		c.baseURL, ticker, start.Unix(), end.AddDate(0, 0, 1).Unix())

	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}
	if err := c.httpClient.GetJSON(ctx, url, headers, &payload); err != nil {
		return nil, fmt.Errorf("chart request for %s: %w", ticker, err)
	}

	s, err := c.toSeries(ticker, &payload)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, &payload, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Chart cache write failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   s.Len(),
	}).Debug("Fetched prices")

	return s, nil
}

// toSeries converts a chart payload into a validated series. Adjusted closes
// are preferred; raw closes fill dates Yahoo left unadjusted. Null entries
// (halted days) are dropped.
func (c *Client) toSeries(ticker string, payload *chartResponse) (*contracts.PriceSeries, error) {
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s (%s)",
			ticker, payload.Chart.Error.Description, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", ticker)
	}

	result := payload.Chart.Result[0]

	var adjusted, raw []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjusted = result.Indicators.AdjClose[0].AdjClose
	}
	if len(result.Indicators.Quote) > 0 {
		raw = result.Indicators.Quote[0].Close
	}

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		var close *float64
		if i < len(adjusted) && adjusted[i] != nil {
			close = adjusted[i]
		} else if i < len(raw) && raw[i] != nil {
			close = raw[i]
		}
		if close == nil || *close <= 0 {
			continue
		}

		day := time.Unix(ts, 0).UTC()
		bars = append(bars, contracts.Bar{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Close: *close,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("chart API returned no usable bars for %s", ticker)
	}

	return contracts.NewPriceSeries(ticker, bars)
}
