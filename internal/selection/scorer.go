package selection

import (
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
)

// normRange guards min-max normalization against zero-range inputs.
const normRange = 1e-10

// midpoint is the fallback for a cross-section too small to normalize.
const midpoint = 50.0

// Scorer turns feature vectors into composite-scored candidates. Scoring is
// deterministic given the vectors and the weight configuration; there is no
// hidden state.
type Scorer struct {
	weights strategyconfig.Weights
}

// NewScorer creates a scorer with fixed weights.
func NewScorer(weights strategyconfig.Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score normalizes each feature across the set to a 0-100 scale and combines
// them into the weighted composite. RSI confirmation is already bounded and
// is rescaled by x100; the volatility penalty and correlation penalty pass
// through raw, already on their conventional scales.
func (s *Scorer) Score(features []contracts.FeatureVector) []contracts.Candidate {
	if len(features) == 0 {
		return nil
	}

	momentum := normalize(features, func(f contracts.FeatureVector) float64 { return f.Momentum })
	quality := normalize(features, func(f contracts.FeatureVector) float64 { return f.Quality })
	sharpe := normalize(features, func(f contracts.FeatureVector) float64 { return f.Sharpe })
	meanRev := normalize(features, func(f contracts.FeatureVector) float64 { return f.MeanReversion })

	candidates := make([]contracts.Candidate, len(features))
	for i, f := range features {
		norm := contracts.NormalizedFeatures{
			Momentum:        momentum[i],
			Quality:         quality[i],
			VolatilityRisk:  f.VolatilityRisk,
			RSIConfirmation: f.RSIConfirmation * 100,
			Sharpe:          sharpe[i],
			MeanReversion:   meanRev[i],
		}

		composite := s.weights.Momentum*norm.Momentum +
			s.weights.Quality*norm.Quality +
			s.weights.VolatilityRisk*norm.VolatilityRisk +
			s.weights.RSI*norm.RSIConfirmation +
			s.weights.Sharpe*norm.Sharpe +
			s.weights.MeanReversion*norm.MeanReversion +
			s.weights.Correlation*f.CorrelationPenalty

		candidates[i] = contracts.Candidate{
			Ticker:     f.Ticker,
			Composite:  composite,
			Features:   f,
			Normalized: norm,
		}
	}

	return candidates
}

// normalize min-max rescales one feature across the set to [0, 100]. A
// single-element set cannot span a range and reads the midpoint.
func normalize(features []contracts.FeatureVector, get func(contracts.FeatureVector) float64) []float64 {
	out := make([]float64, len(features))
	if len(features) < 2 {
		for i := range out {
			out[i] = midpoint
		}
		return out
	}

	lo := get(features[0])
	hi := lo
	for _, f := range features[1:] {
		v := get(f)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	for i, f := range features {
		out[i] = (get(f) - lo) / (hi - lo + normRange) * 100
	}
	return out
}
