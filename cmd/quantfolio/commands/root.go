package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	dataSource   string
	dataDir      string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantfolio",
	Short: "Multi-signal equity ranking and portfolio simulation",
	Long: `Quantfolio CLI

Ranks an equity universe on blended momentum, trend quality, volatility and
mean-reversion signals, then simulates a concentrated portfolio with
stop-loss and band rebalancing rules.

Usage:
  go run ./cmd/quantfolio [command]

Examples:
  go run ./cmd/quantfolio screen
  go run ./cmd/quantfolio backtest --from 2023-01-01 --to 2024-12-31
  go run ./cmd/quantfolio optimize --from 2023-01-01 --objective sharpe`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: built-in Top6_SL10)")
	rootCmd.PersistentFlags().StringVar(&dataSource, "source", "yahoo", "price source (yahoo|csv|db)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "CSV directory for --source csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
