package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/report"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Rank the universe as of a date",
	Long: `Computes signals for every ticker in the universe, applies the hard
filters and prints the ranked selection. No portfolio state is touched.

Example:
  go run ./cmd/quantfolio screen
  go run ./cmd/quantfolio screen --date 2024-06-28 --source csv`,
	RunE: runScreen,
}

var screenDate string

func init() {
	rootCmd.AddCommand(screenCmd)
	screenCmd.Flags().StringVar(&screenDate, "date", "", "as-of date (YYYY-MM-DD, default: today)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	date, err := parseDate(screenDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	provider, err := a.provider()
	if err != nil {
		return err
	}

	series, err := marketdata.FetchUniverse(
		cmd.Context(), provider, a.strategy.Universe.Tickers,
		date.AddDate(0, 0, -signalWarmupDays), date, a.log)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	engine := backtest.NewEngine(a.strategy, a.log)
	selection, err := engine.SelectAt(cmd.Context(), series, date)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	fmt.Printf("=== Quantfolio Screen %s ===\n\n", date.Format("2006-01-02"))
	if len(selection) == 0 {
		fmt.Println("No candidates passed the filters")
		return nil
	}

	fmt.Println(report.NewRenderer().RenderSelection(selection))
	return nil
}
