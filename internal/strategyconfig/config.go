package strategyconfig

// Config is the full strategy document: universe, signal parameters, scoring
// weights, hard filters, portfolio construction and exit rules. One immutable
// instance is passed into every component; nothing reads strategy parameters
// from anywhere else.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Signals   Signals   `yaml:"signals" json:"signals"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Screening Screening `yaml:"screening" json:"screening"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Exit      Exit      `yaml:"exit" json:"exit"`
	Backtest  Backtest  `yaml:"backtest" json:"backtest"`
}

// Meta identifies the strategy variant.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe is the investable ticker pool.
type Universe struct {
	Tickers []string `yaml:"tickers" json:"tickers"`
}

// Signals holds per-feature computation parameters.
type Signals struct {
	MinLookbackDays int           `yaml:"min_lookback_days" json:"min_lookback_days"`
	Momentum        Momentum      `yaml:"momentum" json:"momentum"`
	Quality         Quality       `yaml:"quality" json:"quality"`
	RSI             RSI           `yaml:"rsi" json:"rsi"`
	MeanReversion   MeanReversion `yaml:"mean_reversion" json:"mean_reversion"`
	Volatility      Volatility    `yaml:"volatility" json:"volatility"`
	Correlation     Correlation   `yaml:"correlation" json:"correlation"`
}

// Momentum blends trailing returns over several horizons. Weights must sum
// to 1 and match lookbacks in length.
type Momentum struct {
	LookbacksDays []int     `yaml:"lookbacks_days" json:"lookbacks_days"`
	Weights       []float64 `yaml:"weights" json:"weights"`
}

// Quality is the trend-strength x stability feature.
type Quality struct {
	MAShort        int     `yaml:"ma_short" json:"ma_short"`
	MALong         int     `yaml:"ma_long" json:"ma_long"`
	StabilityScale float64 `yaml:"stability_scale" json:"stability_scale"`
}

// RSI parameters.
type RSI struct {
	Period int `yaml:"period" json:"period"`
}

// MeanReversion is the 20-day z-score fade.
type MeanReversion struct {
	Window int `yaml:"window" json:"window"`
}

// Volatility controls the trailing window used for annualized volatility.
type Volatility struct {
	Window int `yaml:"window" json:"window"`
}

// Correlation enables the optional diversification penalty.
type Correlation struct {
	Enable bool    `yaml:"enable" json:"enable"`
	Scale  float64 `yaml:"scale" json:"scale"` // penalty = -scale x avg pairwise correlation
}

// Scoring holds the composite weights. VolatilityRisk is negative by
// convention; Correlation multiplies the raw penalty.
type Scoring struct {
	Weights Weights `yaml:"weights" json:"weights"`
}

// Weights for the composite score.
type Weights struct {
	Momentum       float64 `yaml:"momentum" json:"momentum"`
	Quality        float64 `yaml:"quality" json:"quality"`
	VolatilityRisk float64 `yaml:"volatility_risk" json:"volatility_risk"`
	RSI            float64 `yaml:"rsi" json:"rsi"`
	Sharpe         float64 `yaml:"sharpe" json:"sharpe"`
	MeanReversion  float64 `yaml:"mean_reversion" json:"mean_reversion"`
	Correlation    float64 `yaml:"correlation" json:"correlation"`
}

// Screening holds the hard filters applied before ranking.
type Screening struct {
	VolCapPct      float64 `yaml:"vol_cap_pct" json:"vol_cap_pct"`
	MinReturn3MPct float64 `yaml:"min_return_3m_pct" json:"min_return_3m_pct"`
	MinReturn6MPct float64 `yaml:"min_return_6m_pct" json:"min_return_6m_pct"`
	MinComposite   float64 `yaml:"min_composite" json:"min_composite"`
	MomentumFloor  float64 `yaml:"momentum_floor" json:"momentum_floor"` // on the normalized 0-100 momentum
}

// SizingMode selects how target weights are assigned.
type SizingMode string

const (
	SizingEqual         SizingMode = "equal"
	SizingScoreWeighted SizingMode = "score_weighted"
)

// Portfolio holds construction parameters.
type Portfolio struct {
	TopN           int        `yaml:"top_n" json:"top_n"`
	SizingMode     SizingMode `yaml:"sizing_mode" json:"sizing_mode"`
	MaxWeight      float64    `yaml:"max_weight" json:"max_weight"`           // kelly cap, fraction of equity
	KellyDivisor   float64    `yaml:"kelly_divisor" json:"kelly_divisor"`     // score/vol scaled by 1/divisor
	VolFloorPct    float64    `yaml:"vol_floor_pct" json:"vol_floor_pct"`     // floor on vol used for sizing
	RebalanceBand  float64    `yaml:"rebalance_band" json:"rebalance_band"`   // tolerance before trading the delta
	SoftCapWeight  float64    `yaml:"soft_cap_weight" json:"soft_cap_weight"` // take-profit trims trigger above this
	HardCapWeight  float64    `yaml:"hard_cap_weight" json:"hard_cap_weight"` // trims cut back to this
}

// Exit holds the stop-loss and take-profit thresholds, in percent of entry.
type Exit struct {
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`     // negative, inclusive
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct"` // positive
}

// RebalanceFrequency of the simulation loop.
type RebalanceFrequency string

const (
	RebalanceWeekly RebalanceFrequency = "weekly"
	RebalanceDaily  RebalanceFrequency = "daily"
)

// PeriodsPerYear returns the Sharpe annualization base for the frequency.
func (f RebalanceFrequency) PeriodsPerYear() float64 {
	switch f {
	case RebalanceDaily:
		return 252
	default:
		return 52
	}
}

// Backtest holds simulation parameters.
type Backtest struct {
	InitialCash float64            `yaml:"initial_cash" json:"initial_cash"`
	Rebalance   RebalanceFrequency `yaml:"rebalance" json:"rebalance"`
}
