package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// CSVDir is a file-based provider for offline runs: one <TICKER>.csv per
// ticker with a date,close header. Rows outside the requested range are
// dropped at load time.
type CSVDir struct {
	dir    string
	logger *logger.Logger
}

// NewCSVDir creates a provider reading from dir.
func NewCSVDir(dir string, log *logger.Logger) *CSVDir {
	return &CSVDir{dir: dir, logger: log}
}

// Fetch implements Provider. A missing or malformed file skips the ticker.
func (p *CSVDir) Fetch(
	ctx context.Context,
	tickers []string,
	start, end time.Time,
) (map[string]*contracts.PriceSeries, error) {
	series := make(map[string]*contracts.PriceSeries, len(tickers))

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := p.loadOne(ticker, start, end)
		if err != nil {
			p.logger.WithError(err).WithField("ticker", ticker).Warn("CSV load failed")
			continue
		}
		series[ticker] = s
	}

	return series, nil
}

func (p *CSVDir) loadOne(ticker string, start, end time.Time) (*contracts.PriceSeries, error) {
	path := filepath.Join(p.dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ParseCSV(f, start, end)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: no rows in range", path)
	}

	return contracts.NewPriceSeries(ticker, bars)
}

// ParseCSV reads date,close rows within [start, end]. The first row is
// treated as a header when its close column does not parse as a number.
func ParseCSV(r io.Reader, start, end time.Time) ([]contracts.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var bars []contracts.Bar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want at least 2 columns, got %d", line, len(record))
		}

		close, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("line %d: bad close %q", line, record[1])
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q", line, record[0])
		}

		if date.Before(start) || date.After(end) {
			continue
		}
		bars = append(bars, contracts.Bar{Date: date, Close: close})
	}

	return bars, nil
}
