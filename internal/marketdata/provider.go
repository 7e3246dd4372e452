package marketdata

import (
	"context"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Provider supplies daily close history for tickers.
type Provider interface {
	// Fetch returns a series per ticker within [start, end]. A ticker that
	// fails is simply absent from the result; Fetch errors only when the
	// whole request is unusable.
	Fetch(ctx context.Context, tickers []string, start, end time.Time) (map[string]*contracts.PriceSeries, error)
}

// FetchUniverse pulls the universe through a provider and enforces that at
// least one ticker came back. Missing tickers are logged, not fatal.
func FetchUniverse(
	ctx context.Context,
	provider Provider,
	tickers []string,
	start, end time.Time,
	log *logger.Logger,
) (map[string]*contracts.PriceSeries, error) {
	series, err := provider.Fetch(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, contracts.ErrDataUnavailable
	}

	for _, t := range tickers {
		if _, ok := series[t]; !ok {
			log.WithField("ticker", t).Warn("No price data for ticker")
		}
	}

	log.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"fetched":   len(series),
	}).Info("Universe price data loaded")

	return series, nil
}
