package signal

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Engine computes per-ticker feature vectors from price windows. Each
// ticker's computation is pure given its window; the engine fans work out
// across a bounded worker pool and restores ticker order before returning.
type Engine struct {
	cfg     strategyconfig.Signals
	workers int
	logger  *logger.Logger
}

// Progress reports scan progress. It may be invoked from worker goroutines.
type Progress func(done, total int)

// NewEngine creates a signal engine.
func NewEngine(cfg strategyconfig.Signals, log *logger.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		workers: runtime.NumCPU(),
		logger:  log,
	}
}

// WithWorkers overrides the worker count. Values below 1 mean sequential.
func (e *Engine) WithWorkers(n int) *Engine {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// Compute produces one FeatureVector per eligible ticker for the window
// ending at date. Tickers without the minimum lookback are skipped with a
// warning, never failing the scan. Results come back sorted by ticker.
func (e *Engine) Compute(ctx context.Context, series map[string]*contracts.PriceSeries, date time.Time, progress Progress) ([]contracts.FeatureVector, error) {
	tickers := make([]string, 0, len(series))
	for t := range series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	// Longest horizon any feature needs; one extra close so the full-window
	// trailing return has its base observation.
	windowLen := e.windowLen()

	jobs := make([]tickerWindow, 0, len(tickers))
	for _, t := range tickers {
		closes := series[t].Window(date, windowLen)
		if len(closes) < e.cfg.MinLookbackDays {
			e.logger.WithFields(map[string]interface{}{
				"ticker": t,
				"date":   date.Format("2006-01-02"),
				"have":   len(closes),
				"need":   e.cfg.MinLookbackDays,
			}).Warn("Skipping ticker: insufficient price history")
			continue
		}
		jobs = append(jobs, tickerWindow{idx: len(jobs), ticker: t, closes: closes})
	}

	if len(jobs) == 0 {
		return nil, contracts.ErrNoUsableTickers
	}

	// Optional diversification penalty needs the cross-section before the
	// per-ticker fan-out.
	var avgCorr map[string]float64
	if e.cfg.Correlation.Enable {
		avgCorr = e.averageCorrelations(jobs)
	}

	results := make([]contracts.FeatureVector, len(jobs))
	jobCh := make(chan tickerWindow)
	var done int64
	var wg sync.WaitGroup

	workers := e.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				fv := e.computeOne(j.ticker, date, j.closes)
				if e.cfg.Correlation.Enable {
					fv.CorrelationPenalty = -e.cfg.Correlation.Scale * avgCorr[j.ticker]
				}
				results[j.idx] = fv

				if progress != nil {
					progress(int(atomic.AddInt64(&done, 1)), len(jobs))
				}
			}
		}()
	}

	for _, j := range jobs {
		select {
		case <-ctx.Done():
			close(jobCh)
			wg.Wait()
			return nil, ctx.Err()
		case jobCh <- j:
		}
	}
	close(jobCh)
	wg.Wait()

	return results, nil
}

// windowLen returns the number of closes a full feature set needs.
func (e *Engine) windowLen() int {
	maxLen := e.cfg.MinLookbackDays
	for _, lb := range e.cfg.Momentum.LookbacksDays {
		if lb > maxLen {
			maxLen = lb
		}
	}
	if e.cfg.Quality.MALong > maxLen {
		maxLen = e.cfg.Quality.MALong
	}
	if e.cfg.Volatility.Window > maxLen {
		maxLen = e.cfg.Volatility.Window
	}
	return maxLen + 1
}

// computeOne builds the complete feature vector for a single ticker. Every
// field is populated; features that cannot be computed resolve to their
// neutral default.
func (e *Engine) computeOne(ticker string, date time.Time, closes []float64) contracts.FeatureVector {
	fv := contracts.FeatureVector{
		Ticker: ticker,
		Date:   date,
	}

	// Momentum: weighted blend of trailing returns. A horizon the window
	// cannot cover contributes 0 instead of failing the vector.
	for i, lb := range e.cfg.Momentum.LookbacksDays {
		if ret, ok := trailingReturnPct(closes, lb); ok {
			fv.Momentum += e.cfg.Momentum.Weights[i] * ret
		}
	}
	fv.Return1M, _ = trailingReturnPct(closes, 21)
	fv.Return3M, _ = trailingReturnPct(closes, 63)
	fv.Return6M, _ = trailingReturnPct(closes, 126)

	// Trend quality: relative MA spread scaled by a stability term that
	// penalizes choppy series.
	fv.Quality = e.quality(closes)

	// Volatility risk: bounded penalty that saturates instead of dominating
	// at extreme volatility.
	fv.AnnualizedVol = annualizedVolPct(closes, e.cfg.Volatility.Window)
	volFrac := fv.AnnualizedVol / 100
	fv.VolatilityRisk = -volFrac / (1 + volFrac) * 100

	// RSI confirmation peaks at RSI=50 and decays toward the extremes.
	fv.RSI = rsi(closes, e.cfg.RSI.Period)
	fv.RSIConfirmation = 1 - math.Abs(fv.RSI-50)/50

	// Annualized daily Sharpe.
	returns := dailyReturns(closes)
	fv.Sharpe = mean(returns) / (stddev(returns) + epsilon) * math.Sqrt(tradingDaysPerYear)

	// Mean reversion: negative 20-day z-score, positive when oversold.
	fv.MeanReversion = e.meanReversion(closes)

	return fv
}

func (e *Engine) quality(closes []float64) float64 {
	smaShort, okS := sma(closes, e.cfg.Quality.MAShort)
	smaLong, okL := sma(closes, e.cfg.Quality.MALong)
	if !okS || !okL || smaLong == 0 {
		return 0
	}

	trendStrength := math.Abs(smaShort-smaLong) / smaLong * 100
	stability := 1 / (1 + e.cfg.Quality.StabilityScale*stddev(dailyReturns(closes)))
	return trendStrength * stability
}

func (e *Engine) meanReversion(closes []float64) float64 {
	window := e.cfg.MeanReversion.Window
	if len(closes) < window {
		return 0
	}

	tail := closes[len(closes)-window:]
	avg := mean(tail)
	std := stddev(tail)
	z := (closes[len(closes)-1] - avg) / (std + epsilon)
	return -z
}

// tickerWindow is one unit of scan work: a ticker and its price window.
type tickerWindow struct {
	idx    int
	ticker string
	closes []float64
}

// averageCorrelations computes, for each eligible ticker, the mean pairwise
// correlation of its daily returns against the rest of the eligible set.
// Return series are aligned positionally on the shortest common length.
func (e *Engine) averageCorrelations(jobs []tickerWindow) map[string]float64 {
	returns := make([][]float64, len(jobs))
	minLen := math.MaxInt
	for i, j := range jobs {
		returns[i] = dailyReturns(j.closes)
		if len(returns[i]) < minLen {
			minLen = len(returns[i])
		}
	}
	for i := range returns {
		returns[i] = returns[i][len(returns[i])-minLen:]
	}

	avg := make(map[string]float64, len(jobs))
	if len(jobs) < 2 {
		for _, j := range jobs {
			avg[j.ticker] = 0
		}
		return avg
	}

	for i := range jobs {
		var sum float64
		for k := range jobs {
			if k == i {
				continue
			}
			sum += pearson(returns[i], returns[k])
		}
		avg[jobs[i].ticker] = sum / float64(len(jobs)-1)
	}
	return avg
}
