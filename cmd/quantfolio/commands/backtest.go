package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/report"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a historical simulation",
	Long: `Simulates the strategy over a historical period: weekly signal
computation, screening, ranking and portfolio rebalancing with stop-loss
and take-profit rules.

Example:
  go run ./cmd/quantfolio backtest --from 2023-01-01 --to 2024-12-31
  go run ./cmd/quantfolio backtest --from 2023-01-01 --cash 50000 --source csv`,
	RunE: runBacktest,
}

var (
	backtestFrom string
	backtestTo   string
	backtestCash float64
	backtestSave bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD, required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default: today)")
	backtestCmd.Flags().Float64Var(&backtestCash, "cash", 0, "initial cash (default: strategy setting)")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", false, "write the report under the reports directory")

	backtestCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	start, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(backtestTo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if backtestCash > 0 {
		a.strategy.Backtest.InitialCash = backtestCash
	}

	fmt.Printf("=== Quantfolio Backtest ===\n\n")
	fmt.Printf("Strategy: %s (%s)\n", a.strategy.Meta.StrategyID, a.hash[:12])
	fmt.Printf("Period:   %s ~ %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Cash:     %.2f\n\n", a.strategy.Backtest.InitialCash)

	provider, err := a.provider()
	if err != nil {
		return err
	}

	series, err := marketdata.FetchUniverse(
		cmd.Context(), provider, a.strategy.Universe.Tickers,
		start.AddDate(0, 0, -signalWarmupDays), end, a.log)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	engine := backtest.NewEngine(a.strategy, a.log)
	result, err := engine.Run(cmd.Context(), series, start, end)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	renderer := report.NewRenderer()
	text := renderer.RenderBacktest(result)
	fmt.Println(text)

	if backtestSave {
		sink := report.NewFileSink(a.cfg.ReportsDir, a.log)
		path, err := sink.Write("backtest", result.EndDate, text)
		if err != nil {
			return err
		}
		fmt.Printf("Report saved to %s\n", path)
	}

	return nil
}
