package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/optimize"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search strategy parameters",
	Long: `Backtests every combination of portfolio size, stop-loss and
momentum weighting over the period and ranks the variants by the chosen
objective.

Example:
  go run ./cmd/quantfolio optimize --from 2022-01-01 --to 2024-12-31
  go run ./cmd/quantfolio optimize --from 2022-01-01 --objective sharpe --top 20`,
	RunE: runOptimize,
}

var (
	optimizeFrom      string
	optimizeTo        string
	optimizeObjective string
	optimizeTop       int
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optimizeFrom, "from", "", "start date (YYYY-MM-DD, required)")
	optimizeCmd.Flags().StringVar(&optimizeTo, "to", "", "end date (YYYY-MM-DD, default: today)")
	optimizeCmd.Flags().StringVar(&optimizeObjective, "objective", "cagr", "ranking objective (cagr|sharpe)")
	optimizeCmd.Flags().IntVar(&optimizeTop, "top", 10, "variants to display")

	optimizeCmd.MarkFlagRequired("from")
}

// defaultGrid is the search space around the shipped strategy.
func defaultGrid() optimize.Grid {
	return optimize.Grid{
		TopN:        []int{4, 6, 8},
		StopLossPct: []float64{-6, -8, -10, -12},
		MomentumWeights: [][]float64{
			{0.3, 0.4, 0.3},
			{0.5, 0.3, 0.2},
			{0.2, 0.3, 0.5},
		},
	}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	start, err := time.Parse("2006-01-02", optimizeFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(optimizeTo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	objective := optimize.Objective(optimizeObjective)
	if objective != optimize.ObjectiveCAGR && objective != optimize.ObjectiveSharpe {
		return fmt.Errorf("unknown objective %q (cagr|sharpe)", optimizeObjective)
	}

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

	searcher := optimize.NewSearcher(a.strategy, objective, a.log)
	variants, err := searcher.Search(cmd.Context(), defaultGrid(), series, start, end)
	if err != nil {
		return fmt.Errorf("grid search failed: %w", err)
	}

	fmt.Printf("=== Quantfolio Optimize (%s) ===\n\n", objective)
	fmt.Printf("%-4s %-5s %-9s %-16s %9s %9s %8s %9s\n",
		"#", "TOPN", "STOPLOSS", "MOM WEIGHTS", "CAGR", "SHARPE", "VOL", "MAXDD")

	shown := 0
	for i, v := range variants {
		if shown >= optimizeTop {
			break
		}
		if v.Err != nil {
			continue
		}
		fmt.Printf("%-4d %-5d %8.1f%% %-16v %8.2f%% %9.2f %7.2f%% %8.2f%%\n",
			i+1, v.TopN, v.StopLossPct, v.MomentumWeights,
			v.Summary.CAGR*100, v.Summary.Sharpe,
			v.Summary.AnnualizedVol*100, v.Summary.MaxDrawdown*100)
		shown++
	}
	if shown == 0 {
		fmt.Println("No variant completed successfully")
	}

	return nil
}
