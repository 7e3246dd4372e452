package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/marketdata/yahoo"
	"github.com/quantfolio/quantfolio/internal/report"
	"github.com/quantfolio/quantfolio/internal/scheduler"
	"github.com/quantfolio/quantfolio/pkg/httputil"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the recurring fetch and rebalance jobs",
	Long: `Starts a long-lived process with two cron jobs: a nightly price
refresh into the store and a weekly rebalance report pushed to Telegram
after the Friday close. Runs until interrupted.

Example:
  go run ./cmd/quantfolio schedule
  go run ./cmd/quantfolio schedule --fetch-cron "0 0 18 * * 1-5"`,
	RunE: runSchedule,
}

var (
	fetchCron     string
	rebalanceCron string
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&fetchCron, "fetch-cron", "0 30 18 * * 1-5", "price refresh schedule (with seconds)")
	scheduleCmd.Flags().StringVar(&rebalanceCron, "rebalance-cron", "0 0 19 * * 5", "rebalance report schedule (with seconds)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.New(a.log)

	store, err := a.store()
	if err != nil {
		return err
	}
	fetchJob := scheduler.NewFuncJob("price-refresh", fetchCron, func(ctx context.Context) error {
		return refreshStore(ctx, a, store)
	})
	if err := sched.AddJob(fetchJob); err != nil {
		return err
	}

	rebalanceJob := scheduler.NewFuncJob("rebalance-report", rebalanceCron, func(ctx context.Context) error {
		return sendRebalanceReport(ctx, a)
	})
	if err := sched.AddJob(rebalanceJob); err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

// refreshStore tops the price store up to today for the whole universe.
func refreshStore(ctx context.Context, a *app, store *marketdata.Store) error {
	end := time.Now().UTC()
	client := yahoo.New(a.cfg.Provider, a.log)

	for _, ticker := range a.strategy.Universe.Tickers {
		latest, err := store.LatestDate(ctx, ticker)
		if err != nil {
			return fmt.Errorf("latest date for %s: %w", ticker, err)
		}
		start := end.AddDate(-2, 0, 0)
		if !latest.IsZero() {
			start = latest.AddDate(0, 0, 1)
		}
		if !start.Before(end) {
			continue
		}

		series, err := client.Fetch(ctx, []string{ticker}, start, end)
		if err != nil {
			return err
		}
		s, ok := series[ticker]
		if !ok {
			a.log.WithField("ticker", ticker).Warn("No new prices")
			continue
		}
		if err := store.Save(ctx, s); err != nil {
			return fmt.Errorf("save %s: %w", ticker, err)
		}
	}
	return nil
}

// sendRebalanceReport replays the last year and pushes the final plan.
func sendRebalanceReport(ctx context.Context, a *app) error {
	date := time.Now().UTC()
	start := date.AddDate(-1, 0, 0)

	provider, err := a.provider()
	if err != nil {
		return err
	}

	series, err := marketdata.FetchUniverse(
		ctx, provider, a.strategy.Universe.Tickers,
		start.AddDate(0, 0, -signalWarmupDays), date, a.log)
	if err != nil {
		return err
	}

	engine := backtest.NewEngine(a.strategy, a.log)
	result, err := engine.Run(ctx, series, start, date)
	if err != nil {
		return err
	}

	renderer := report.NewRenderer()
	text := renderer.RenderPlan(tradesOn(result, result.EndDate), result.EndDate) +
		"\n" + renderer.RenderHoldings(result.FinalState)

	if _, err := report.NewFileSink(a.cfg.ReportsDir, a.log).Write("rebalance", result.EndDate, text); err != nil {
		return err
	}

	httpClient := httputil.New(a.log, 30*time.Second)
	return report.NewTelegramSink(a.cfg.Telegram, httpClient, a.log).Send(ctx, text)
}
