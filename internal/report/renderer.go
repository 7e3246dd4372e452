package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quantfolio/quantfolio/internal/analytics"
	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/contracts"
)

// Renderer formats run results as plain text, suitable for the terminal, a
// report file or a Telegram message.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderBacktest formats a full backtest result: summary statistics, final
// holdings and the last selection.
func (r *Renderer) RenderBacktest(result *backtest.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Backtest %s  %s .. %s\n",
		result.StrategyID,
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Rebalances: %d  Trades: %d  Skipped dates: %d\n\n",
		result.RebalanceCount, len(result.Trades), result.SkippedDates)

	b.WriteString(r.RenderSummary(result.Summary))

	if result.MonteCarlo.Simulations > 0 {
		b.WriteString("\n")
		b.WriteString(r.RenderRisk(result.HistoricalVaR, result.MonteCarlo))
	}

	if result.FinalState != nil && len(result.FinalState.Positions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.RenderHoldings(result.FinalState))
	}

	if len(result.LastSelection) > 0 {
		b.WriteString("\n")
		b.WriteString(r.RenderSelection(result.LastSelection))
	}

	return b.String()
}

// RenderSummary formats performance statistics.
func (r *Renderer) RenderSummary(s *contracts.PerformanceSummary) string {
	if s == nil {
		return "No performance summary available\n"
	}

	var b strings.Builder
	b.WriteString("Performance\n")
	fmt.Fprintf(&b, "  Total return    %8.2f%%\n", s.TotalReturn*100)
	fmt.Fprintf(&b, "  CAGR            %8.2f%%\n", s.CAGR*100)
	fmt.Fprintf(&b, "  Annualized vol  %8.2f%%\n", s.AnnualizedVol*100)
	fmt.Fprintf(&b, "  Sharpe          %8.2f\n", s.Sharpe)
	fmt.Fprintf(&b, "  Max drawdown    %8.2f%%\n", s.MaxDrawdown*100)
	return b.String()
}

// RenderRisk formats tail-risk estimates from the equity curve.
func (r *Renderer) RenderRisk(hist analytics.VaRResult, mc analytics.MonteCarloResult) string {
	var b strings.Builder
	b.WriteString("Risk\n")
	conf := hist.Confidence * 100
	fmt.Fprintf(&b, "  VaR %.0f%% (1 period)  %8.2f%%   CVaR %8.2f%%\n", conf, hist.VaR*100, hist.CVaR*100)
	fmt.Fprintf(&b, "  VaR %.0f%% (%d periods) %8.2f%%   CVaR %8.2f%%  (%d sims, worst %+.2f%%)\n",
		conf, mc.Horizon, mc.VaR*100, mc.CVaR*100, mc.Simulations, mc.WorstReturn*100)
	return b.String()
}

// RenderHoldings formats the open positions with their unrealized returns.
func (r *Renderer) RenderHoldings(state *contracts.PortfolioState) string {
	var b strings.Builder
	b.WriteString("Holdings\n")

	total := state.Cash
	for _, t := range state.HeldTickers() {
		pos := state.Positions[t]
		total += float64(pos.Shares) * pos.LastPrice
	}

	fmt.Fprintf(&b, "  %-8s %8s %12s %12s %8s %7s\n", "TICKER", "SHARES", "ENTRY", "LAST", "PNL%", "WEIGHT")
	for _, t := range state.HeldTickers() {
		pos := state.Positions[t]
		value := float64(pos.Shares) * pos.LastPrice
		stale := ""
		if pos.StalePrice {
			stale = " *"
		}
		fmt.Fprintf(&b, "  %-8s %8d %12.2f %12.2f %7.2f%% %6.1f%%%s\n",
			t, pos.Shares, pos.EntryPrice, pos.LastPrice,
			pos.PnLPercent(pos.LastPrice), value/total*100, stale)
	}
	fmt.Fprintf(&b, "  Cash %.2f  Equity %.2f\n", state.Cash, total)
	return b.String()
}

// RenderSelection formats the ranked selection with composite scores and the
// momentum short-list.
func (r *Renderer) RenderSelection(selection []contracts.Candidate) string {
	var b strings.Builder
	b.WriteString("Selection\n")
	fmt.Fprintf(&b, "  %-4s %-8s %10s %10s %8s\n", "#", "TICKER", "SCORE", "MOM", "VOL%")
	for i, c := range selection {
		fmt.Fprintf(&b, "  %-4d %-8s %10.2f %10.2f %8.2f\n",
			i+1, c.Ticker, c.Composite, c.Features.Momentum, c.Features.AnnualizedVol)
	}

	b.WriteString("\nMomentum leaders\n")
	byMomentum := make([]contracts.Candidate, len(selection))
	copy(byMomentum, selection)
	sort.SliceStable(byMomentum, func(i, j int) bool {
		return byMomentum[i].Features.Momentum > byMomentum[j].Features.Momentum
	})
	for i, c := range byMomentum {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "  %-8s %+.2f%% (1m %+.2f%%, 3m %+.2f%%, 6m %+.2f%%)\n",
			c.Ticker, c.Features.Momentum, c.Features.Return1M, c.Features.Return3M, c.Features.Return6M)
	}
	return b.String()
}

// RenderPlan formats a trade list as an actionable order plan, sells first.
func (r *Renderer) RenderPlan(trades []contracts.Trade, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rebalance plan for %s\n", date.Format("2006-01-02"))
	if len(trades) == 0 {
		b.WriteString("  No trades\n")
		return b.String()
	}

	ordered := make([]contracts.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Side != ordered[j].Side {
			return ordered[i].Side == contracts.TradeSideSell
		}
		return ordered[i].Ticker < ordered[j].Ticker
	})

	for _, t := range ordered {
		fmt.Fprintf(&b, "  %-4s %-8s %6d @ %10.2f  %10.2f  (%s)\n",
			t.Side, t.Ticker, t.Shares, t.Price, t.Value, t.Reason)
	}
	return b.String()
}
