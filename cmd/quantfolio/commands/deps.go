package commands

import (
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/marketdata/yahoo"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/config"
	"github.com/quantfolio/quantfolio/pkg/database"
	"github.com/quantfolio/quantfolio/pkg/logger"
	"github.com/quantfolio/quantfolio/pkg/redis"
)

// signalWarmupDays is how much extra history is pulled before a run's start
// so the longest lookbacks have full windows on the first rebalance date.
const signalWarmupDays = 400

// app bundles the wiring every command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	hash     string

	closers []func()
}

// initApp loads the environment config, logger and strategy document.
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	strategy := strategyconfig.Default()
	if strategyFile != "" {
		strategy, _, err = strategyconfig.Load(strategyFile)
		if err != nil {
			return nil, fmt.Errorf("load strategy %s: %w", strategyFile, err)
		}
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"strategy": strategy.Meta.StrategyID,
		"hash":     hash[:12],
	}).Debug("Strategy loaded")

	return &app{cfg: cfg, log: log, strategy: strategy, hash: hash}, nil
}

// provider builds the price source selected by the --source flag.
func (a *app) provider() (marketdata.Provider, error) {
	switch dataSource {
	case "csv":
		return marketdata.NewCSVDir(dataDir, a.log), nil

	case "db":
		store, err := a.store()
		if err != nil {
			return nil, err
		}
		return store, nil

	case "yahoo":
		client := yahoo.New(a.cfg.Provider, a.log)
		if a.cfg.Redis.Enabled {
			rc, err := redis.New(a.cfg)
			if err != nil {
				a.log.WithError(err).Warn("Redis unavailable, fetching uncached")
			} else {
				a.closers = append(a.closers, func() { _ = rc.Close() })
				client = client.WithCache(rc)
			}
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown price source %q (yahoo|csv|db)", dataSource)
	}
}

// store opens the Postgres price store.
func (a *app) store() (*marketdata.Store, error) {
	if !a.cfg.Database.Enabled() {
		return nil, fmt.Errorf("DATABASE_URL not configured")
	}
	db, err := database.New(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return marketdata.NewStore(db.Pool), nil
}

// close releases everything the app opened, in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// parseDate parses a YYYY-MM-DD flag value, defaulting empty to fallback.
func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", value)
}
