package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfolio/quantfolio/internal/api"
	"github.com/quantfolio/quantfolio/internal/api/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts a REST API exposing the loaded strategy and on-demand runs.

Endpoints:
  GET  /health        - Health check
  GET  /api/strategy  - Active strategy parameters
  GET  /api/screen    - Ranked selection for a date
  POST /api/backtest  - Run a backtest over a window

Example:
  go run ./cmd/quantfolio serve
  go run ./cmd/quantfolio serve --port 8080 --source csv --data-dir ./prices`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default: $PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	provider, err := a.provider()
	if err != nil {
		return err
	}

	handler := handlers.NewStrategyHandler(a.strategy, a.hash, provider, signalWarmupDays, a.log)
	server := api.New(a.cfg, a.log, api.NewRouter(handler, a.log))

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Quantfolio API on http://localhost:%s (strategy %s)\n",
		a.cfg.Port, a.strategy.Meta.StrategyID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
