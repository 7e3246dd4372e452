package contracts

import "time"

// FeatureVector holds the per-ticker signal features computed for one
// rebalance date. Produced fresh each rebalance, never mutated afterwards.
// Every field is always populated; features that cannot be computed resolve
// to their neutral default instead of failing the vector.
type FeatureVector struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	// Signal features
	Momentum           float64 `json:"momentum"`            // weighted 1m/3m/6m return blend, in percent points
	Quality            float64 `json:"quality"`             // trend strength x stability
	VolatilityRisk     float64 `json:"volatility_risk"`     // bounded penalty in [-100, 0]
	RSIConfirmation    float64 `json:"rsi_confirmation"`    // 1 - |RSI-50|/50, in [0, 1]
	Sharpe             float64 `json:"sharpe"`              // annualized daily sharpe
	MeanReversion      float64 `json:"mean_reversion"`      // negative 20-day z-score
	CorrelationPenalty float64 `json:"correlation_penalty"` // -0.1 x avg pairwise correlation, 0 when disabled

	// Raw metrics behind the features, kept for filtering and reporting
	Return1M      float64 `json:"return_1m"` // percent
	Return3M      float64 `json:"return_3m"` // percent
	Return6M      float64 `json:"return_6m"` // percent
	AnnualizedVol float64 `json:"annualized_vol"` // percent
	RSI           float64 `json:"rsi"`
}

// NormalizedFeatures holds the cross-sectional 0-100 rescaling of a
// FeatureVector against the eligible set on one date.
type NormalizedFeatures struct {
	Momentum        float64 `json:"momentum"`
	Quality         float64 `json:"quality"`
	VolatilityRisk  float64 `json:"volatility_risk"` // passed through raw, already bounded
	RSIConfirmation float64 `json:"rsi_confirmation"`
	Sharpe          float64 `json:"sharpe"`
	MeanReversion   float64 `json:"mean_reversion"`
}

// Candidate is a ticker that survived the hard filters, carrying its
// composite score and the metrics that earned it.
type Candidate struct {
	Ticker     string             `json:"ticker"`
	Composite  float64            `json:"composite"`
	Features   FeatureVector      `json:"features"`
	Normalized NormalizedFeatures `json:"normalized"`
}
