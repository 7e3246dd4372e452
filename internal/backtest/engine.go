package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/analytics"
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/portfolio"
	"github.com/quantfolio/quantfolio/internal/selection"
	"github.com/quantfolio/quantfolio/internal/signal"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Engine wires the full pipeline and drives it across a rebalance calendar:
// signals, scoring, screening, ranking, then simulated trading.
type Engine struct {
	strategy  *strategyconfig.Config
	signals   *signal.Engine
	scorer    *selection.Scorer
	screener  *selection.Screener
	ranker    *selection.Ranker
	simulator *portfolio.Simulator
	analyzer  *analytics.Analyzer
	logger    *logger.Logger
}

// Result holds everything a completed run produced.
type Result struct {
	StrategyID string
	StartDate  time.Time
	EndDate    time.Time
	Duration   time.Duration

	RebalanceCount int
	SkippedDates   int

	Trades      []contracts.Trade
	EquityCurve []contracts.EquityPoint
	FinalState  *contracts.PortfolioState

	// LastSelection is the ranked selection of the final processed date.
	LastSelection []contracts.Candidate

	Summary *contracts.PerformanceSummary

	// Tail risk derived from the per-period equity returns.
	HistoricalVaR analytics.VaRResult
	MonteCarlo    analytics.MonteCarloResult
}

// Risk estimation settings. The horizon is in rebalance periods, so four
// weekly periods approximate a one-month holding loss.
const (
	riskConfidence = 0.95
	riskHorizon    = 4
	riskSims       = 2000
	riskSeed       = 1
)

// NewEngine builds an engine and all its stages from one strategy config.
func NewEngine(strategy *strategyconfig.Config, log *logger.Logger) *Engine {
	return &Engine{
		strategy:  strategy,
		signals:   signal.NewEngine(strategy.Signals, log),
		scorer:    selection.NewScorer(strategy.Scoring.Weights),
		screener:  selection.NewScreener(strategy.Screening, log),
		ranker:    selection.NewRanker(strategy.Portfolio.TopN),
		simulator: portfolio.NewSimulator(strategy.Portfolio, strategy.Exit, log),
		analyzer:  analytics.NewAnalyzer(strategy.Backtest.Rebalance),
		logger:    log,
	}
}

// Run executes the simulation across [start, end]. A date where no ticker
// has enough history is marked-to-market and skipped; any other stage error
// aborts the run.
func (e *Engine) Run(
	ctx context.Context,
	series map[string]*contracts.PriceSeries,
	start, end time.Time,
) (*Result, error) {
	dates := rebalanceDates(tradingDates(series, start, end), e.strategy.Backtest.Rebalance)
	if len(dates) == 0 {
		return nil, fmt.Errorf("backtest: no trading dates in %s..%s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), contracts.ErrDataInsufficient)
	}

	e.logger.WithFields(map[string]interface{}{
		"strategy":     e.strategy.Meta.StrategyID,
		"start_date":   dates[0].Format("2006-01-02"),
		"end_date":     dates[len(dates)-1].Format("2006-01-02"),
		"rebalances":   len(dates),
		"initial_cash": e.strategy.Backtest.InitialCash,
	}).Info("Starting backtest")

	startTime := time.Now()
	state := contracts.NewPortfolioState(e.strategy.Backtest.InitialCash)

	result := &Result{
		StrategyID:  e.strategy.Meta.StrategyID,
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		Trades:      make([]contracts.Trade, 0),
		EquityCurve: make([]contracts.EquityPoint, 0, len(dates)),
	}

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		prices := freshPrices(series, date)

		ranked, err := e.SelectAt(ctx, series, date)
		if err != nil {
			if errors.Is(err, contracts.ErrNoUsableTickers) {
				e.logger.WithFields(map[string]interface{}{
					"date": date.Format("2006-01-02"),
				}).Warn("No usable tickers, carrying portfolio")
				result.SkippedDates++
				result.EquityCurve = append(result.EquityCurve, e.simulator.Mark(state, prices, date))
				continue
			}
			return nil, fmt.Errorf("backtest: select at %s: %w", date.Format("2006-01-02"), err)
		}

		trades, point, err := e.simulator.Step(state, prices, ranked, date)
		if err != nil {
			return nil, fmt.Errorf("backtest: step at %s: %w", date.Format("2006-01-02"), err)
		}

		result.Trades = append(result.Trades, trades...)
		result.EquityCurve = append(result.EquityCurve, point)
		result.LastSelection = ranked
		result.RebalanceCount++
	}

	result.FinalState = state
	result.Duration = time.Since(startTime)

	summary, err := e.analyzer.Analyze(result.EquityCurve)
	if err != nil {
		return nil, fmt.Errorf("backtest: performance summary: %w", err)
	}
	result.Summary = summary

	returns := analytics.CurveReturns(result.EquityCurve)
	result.HistoricalVaR = analytics.HistoricalVaR(returns, riskConfidence)
	result.MonteCarlo = analytics.MonteCarloVaR(returns, riskHorizon, riskSims, riskConfidence, riskSeed)

	e.logger.WithFields(map[string]interface{}{
		"duration":     result.Duration.Seconds(),
		"rebalances":   result.RebalanceCount,
		"trades":       len(result.Trades),
		"total_return": fmt.Sprintf("%.2f%%", summary.TotalReturn*100),
		"cagr":         fmt.Sprintf("%.2f%%", summary.CAGR*100),
		"sharpe":       fmt.Sprintf("%.2f", summary.Sharpe),
		"max_drawdown": fmt.Sprintf("%.2f%%", summary.MaxDrawdown*100),
	}).Info("Backtest completed")

	return result, nil
}

// SelectAt runs the selection pipeline for a single date: features, composite
// scores, hard filters, then the ranked top N.
func (e *Engine) SelectAt(
	ctx context.Context,
	series map[string]*contracts.PriceSeries,
	date time.Time,
) ([]contracts.Candidate, error) {
	features, err := e.signals.Compute(ctx, series, date, nil)
	if err != nil {
		return nil, err
	}
	candidates := e.scorer.Score(features)
	screened := e.screener.Screen(candidates)
	return e.ranker.Select(screened), nil
}

// freshPrices collects the closes of bars dated exactly on date. Tickers
// without a bar that day are absent; the simulator carries their last mark.
func freshPrices(series map[string]*contracts.PriceSeries, date time.Time) map[string]float64 {
	prices := make(map[string]float64, len(series))
	for ticker, s := range series {
		if close, ok := s.CloseOn(date); ok {
			prices[ticker] = close
		}
	}
	return prices
}
