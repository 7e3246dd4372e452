package marketdata

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantfolio/quantfolio/internal/contracts"
)

// Store persists daily closes in Postgres and serves them back as a
// provider. Fetching refreshes the local table; backtests can then run with
// the store alone.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store on an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Fetch implements Provider from the local table. Tickers with no stored
// rows in range are absent from the result.
func (s *Store) Fetch(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (map[string]*contracts.PriceSeries, error) {
	series := make(map[string]*contracts.PriceSeries, len(tickers))

	for _, ticker := range tickers {
		bars, err := s.barsFor(ctx, ticker, start, end)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			continue
		}
		ps, err := contracts.NewPriceSeries(ticker, bars)
		if err != nil {
			return nil, err
		}
		series[ticker] = ps
	}

	return series, nil
}

func (s *Store) barsFor(ctx context.Context, ticker string, start, end time.Time) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, adj_close
		FROM prices.daily_closes
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Close); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Save upserts one series. Existing rows for the same ticker and date are
// overwritten so adjusted closes can be refreshed after splits.
func (s *Store) Save(ctx context.Context, series *contracts.PriceSeries) error {
	query := `
		INSERT INTO prices.daily_closes (ticker, trade_date, adj_close)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			adj_close = EXCLUDED.adj_close
	`

	for _, b := range series.Bars {
		if _, err := s.pool.Exec(ctx, query, series.Ticker, b.Date, b.Close); err != nil {
			return err
		}
	}
	return nil
}

// LatestDate returns the most recent stored date for a ticker, or a zero
// time when the ticker has no rows.
func (s *Store) LatestDate(ctx context.Context, ticker string) (time.Time, error) {
	query := `
		SELECT COALESCE(MAX(trade_date), 'epoch'::timestamptz)
		FROM prices.daily_closes
		WHERE ticker = $1
	`

	var latest time.Time
	if err := s.pool.QueryRow(ctx, query, ticker).Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if latest.Unix() <= 0 {
		return time.Time{}, nil
	}
	return latest, nil
}
