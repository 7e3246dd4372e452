package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError is a fatal configuration error, surfaced before any
// simulation begins.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints. Any failure aborts the run.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if len(cfg.Universe.Tickers) == 0 {
		return ValidationError{"universe.tickers", "at least one ticker required"}
	}

	// === Signals ===
	if cfg.Signals.MinLookbackDays < 2 {
		return ValidationError{"signals.min_lookback_days", "must be >= 2"}
	}

	m := cfg.Signals.Momentum
	if len(m.LookbacksDays) == 0 {
		return ValidationError{"signals.momentum.lookbacks_days", "required"}
	}
	if len(m.LookbacksDays) != len(m.Weights) {
		return ValidationError{"signals.momentum", "lookbacks_days length must match weights length"}
	}
	if err := validateWeightsSum(m.Weights, 1.0, 1e-6); err != nil {
		return ValidationError{"signals.momentum.weights", err.Error()}
	}
	for i, lb := range m.LookbacksDays {
		if lb <= 0 {
			return ValidationError{Field: fmt.Sprintf("signals.momentum.lookbacks_days[%d]", i), Message: "must be > 0"}
		}
	}

	if cfg.Signals.Quality.MAShort <= 0 || cfg.Signals.Quality.MALong <= 0 {
		return ValidationError{"signals.quality", "ma windows must be > 0"}
	}
	if cfg.Signals.Quality.MAShort >= cfg.Signals.Quality.MALong {
		return ValidationError{"signals.quality", "ma_short must be < ma_long"}
	}
	if cfg.Signals.RSI.Period <= 1 {
		return ValidationError{"signals.rsi.period", "must be > 1"}
	}
	if cfg.Signals.MeanReversion.Window <= 1 {
		return ValidationError{"signals.mean_reversion.window", "must be > 1"}
	}
	if cfg.Signals.Volatility.Window <= 1 {
		return ValidationError{"signals.volatility.window", "must be > 1"}
	}
	if cfg.Signals.Correlation.Enable && cfg.Signals.Correlation.Scale <= 0 {
		return ValidationError{"signals.correlation.scale", "must be > 0 when enabled"}
	}

	// === Scoring ===
	// The raw risk score is already negative; its weight stays non-positive
	// by convention.
	if cfg.Scoring.Weights.VolatilityRisk > 0 {
		return ValidationError{"scoring.weights.volatility_risk", "must be <= 0"}
	}

	// === Screening ===
	if cfg.Screening.VolCapPct <= 0 {
		return ValidationError{"screening.vol_cap_pct", "must be > 0"}
	}
	if cfg.Screening.MomentumFloor < 0 || cfg.Screening.MomentumFloor > 100 {
		return ValidationError{"screening.momentum_floor", "must be in [0, 100]"}
	}

	// === Portfolio ===
	p := cfg.Portfolio
	if p.TopN < 1 {
		return ValidationError{"portfolio.top_n", "must be >= 1"}
	}
	if p.SizingMode != SizingEqual && p.SizingMode != SizingScoreWeighted {
		return ValidationError{"portfolio.sizing_mode", `must be "equal" or "score_weighted"`}
	}
	if err := validatePctRange(p.MaxWeight, "portfolio.max_weight"); err != nil {
		return err
	}
	if p.SizingMode == SizingScoreWeighted && p.KellyDivisor <= 0 {
		return ValidationError{"portfolio.kelly_divisor", "must be > 0 for score_weighted sizing"}
	}
	if p.RebalanceBand < 0 || p.RebalanceBand > 0.5 {
		return ValidationError{"portfolio.rebalance_band", "must be in [0, 0.5]"}
	}
	if p.SoftCapWeight > 0 || p.HardCapWeight > 0 {
		if err := validatePctRange(p.SoftCapWeight, "portfolio.soft_cap_weight"); err != nil {
			return err
		}
		if err := validatePctRange(p.HardCapWeight, "portfolio.hard_cap_weight"); err != nil {
			return err
		}
		if p.HardCapWeight > p.SoftCapWeight {
			return ValidationError{"portfolio", "hard_cap_weight must be <= soft_cap_weight"}
		}
	}

	// === Exit ===
	if cfg.Exit.StopLossPct >= 0 {
		return ValidationError{"exit.stop_loss_pct", "must be negative"}
	}
	if cfg.Exit.TakeProfitPct < 0 {
		return ValidationError{"exit.take_profit_pct", "must be >= 0"}
	}

	// === Backtest ===
	if cfg.Backtest.InitialCash <= 0 {
		return ValidationError{"backtest.initial_cash", "must be > 0"}
	}
	if cfg.Backtest.Rebalance != RebalanceWeekly && cfg.Backtest.Rebalance != RebalanceDaily {
		return ValidationError{"backtest.rebalance", `must be "weekly" or "daily"`}
	}

	return nil
}

func validateWeightsSum(weights []float64, target, tolerance float64) error {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > tolerance {
		return fmt.Errorf("must sum to %.1f, got %.6f", target, sum)
	}
	return nil
}

func validatePctRange(v float64, field string) error {
	if v <= 0 || v > 1 {
		return ValidationError{field, "must be in (0, 1]"}
	}
	return nil
}
