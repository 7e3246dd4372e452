package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/marketdata/yahoo"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download prices into the local store",
	Long: `Pulls daily closes for the universe from the provider and upserts
them into the Postgres price store, so backtests can run with --source db.

Example:
  go run ./cmd/quantfolio fetch --from 2020-01-01
  go run ./cmd/quantfolio fetch --from 2020-01-01 --to 2024-12-31`,
	RunE: runFetch,
}

var (
	fetchFrom string
	fetchTo   string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "start date (YYYY-MM-DD, required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "end date (YYYY-MM-DD, default: today)")

	fetchCmd.MarkFlagRequired("from")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	start, err := time.Parse("2006-01-02", fetchFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(fetchTo, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	client := yahoo.New(a.cfg.Provider, a.log)
	series, err := marketdata.FetchUniverse(
		cmd.Context(), client, a.strategy.Universe.Tickers, start, end, a.log)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	saved := 0
	for _, ticker := range a.strategy.Universe.Tickers {
		s, ok := series[ticker]
		if !ok {
			continue
		}
		if err := store.Save(cmd.Context(), s); err != nil {
			return fmt.Errorf("save %s: %w", ticker, err)
		}
		saved++
		fmt.Printf("  %-8s %5d bars\n", ticker, s.Len())
	}

	fmt.Printf("\nStored %d/%d tickers\n", saved, len(a.strategy.Universe.Tickers))
	return nil
}
