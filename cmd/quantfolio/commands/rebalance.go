package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/report"
	"github.com/quantfolio/quantfolio/pkg/httputil"
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Produce the current rebalance plan",
	Long: `Replays the simulation up to the as-of date and reports the trades
the final rebalance generated, together with the resulting holdings. The
report is written to the reports directory and pushed to Telegram when
credentials are configured.

Example:
  go run ./cmd/quantfolio rebalance
  go run ./cmd/quantfolio rebalance --date 2024-06-28 --lookback-months 18`,
	RunE: runRebalance,
}

var (
	rebalanceDate     string
	rebalanceMonths   int
	rebalanceNoAlert  bool
	rebalanceNoReport bool
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)

	rebalanceCmd.Flags().StringVar(&rebalanceDate, "date", "", "as-of date (YYYY-MM-DD, default: today)")
	rebalanceCmd.Flags().IntVar(&rebalanceMonths, "lookback-months", 12, "replay window before the as-of date")
	rebalanceCmd.Flags().BoolVar(&rebalanceNoAlert, "no-alert", false, "skip the Telegram alert")
	rebalanceCmd.Flags().BoolVar(&rebalanceNoReport, "no-report", false, "skip the report file")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	date, err := parseDate(rebalanceDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	start := date.AddDate(0, -rebalanceMonths, 0)

	provider, err := a.provider()
	if err != nil {
		return err
	}

	series, err := marketdata.FetchUniverse(
		cmd.Context(), provider, a.strategy.Universe.Tickers,
		start.AddDate(0, 0, -signalWarmupDays), date, a.log)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	engine := backtest.NewEngine(a.strategy, a.log)
	result, err := engine.Run(cmd.Context(), series, start, date)
	if err != nil {
		return fmt.Errorf("rebalance replay failed: %w", err)
	}

	lastDate := result.EndDate
	lastTrades := tradesOn(result, lastDate)

	renderer := report.NewRenderer()
	var b strings.Builder
	b.WriteString(renderer.RenderPlan(lastTrades, lastDate))
	b.WriteString("\n")
	b.WriteString(renderer.RenderHoldings(result.FinalState))
	if len(result.LastSelection) > 0 {
		b.WriteString("\n")
		b.WriteString(renderer.RenderSelection(result.LastSelection))
	}
	text := b.String()

	fmt.Println(text)

	if !rebalanceNoReport {
		sink := report.NewFileSink(a.cfg.ReportsDir, a.log)
		if _, err := sink.Write("rebalance", lastDate, text); err != nil {
			return err
		}
	}

	if !rebalanceNoAlert {
		httpClient := httputil.New(a.log, 30*time.Second)
		sink := report.NewTelegramSink(a.cfg.Telegram, httpClient, a.log)
		if err := sink.Send(cmd.Context(), text); err != nil {
			a.log.WithError(err).Warn("Telegram alert failed")
		}
	}

	return nil
}

// tradesOn filters a result's trades to one date.
func tradesOn(result *backtest.Result, date time.Time) []contracts.Trade {
	var out []contracts.Trade
	for _, t := range result.Trades {
		if t.Date.Equal(date) {
			out = append(out, t)
		}
	}
	return out
}
