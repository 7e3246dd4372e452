package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
)

func testWeights() strategyconfig.Weights {
	return strategyconfig.Default().Scoring.Weights
}

func TestScore_NormalizationBounds(t *testing.T) {
	features := []contracts.FeatureVector{
		{Ticker: "A", Momentum: 30, Quality: 2, Sharpe: 1.5, MeanReversion: 0.5, RSIConfirmation: 0.8},
		{Ticker: "B", Momentum: -10, Quality: 0.5, Sharpe: -0.5, MeanReversion: -1.2, RSIConfirmation: 0.3},
		{Ticker: "C", Momentum: 10, Quality: 1, Sharpe: 0.2, MeanReversion: 0, RSIConfirmation: 1.0},
	}

	scorer := NewScorer(testWeights())
	candidates := scorer.Score(features)
	require.Len(t, candidates, 3)

	for _, c := range candidates {
		for name, v := range map[string]float64{
			"momentum":       c.Normalized.Momentum,
			"quality":        c.Normalized.Quality,
			"sharpe":         c.Normalized.Sharpe,
			"mean_reversion": c.Normalized.MeanReversion,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "%s/%s", c.Ticker, name)
			assert.LessOrEqual(t, v, 100.0, "%s/%s", c.Ticker, name)
		}
		assert.Equal(t, c.Features.RSIConfirmation*100, c.Normalized.RSIConfirmation)
	}

	// Extremes map to the ends of the scale
	assert.InDelta(t, 100.0, candidates[0].Normalized.Momentum, 1e-6)
	assert.InDelta(t, 0.0, candidates[1].Normalized.Momentum, 1e-6)

	// Best-on-everything dominates the composite
	assert.Greater(t, candidates[0].Composite, candidates[1].Composite)
}

func TestScore_SingleVectorMidpoint(t *testing.T) {
	features := []contracts.FeatureVector{
		{Ticker: "ONLY", Momentum: 42, Quality: 3, Sharpe: 2, MeanReversion: 1, RSIConfirmation: 0.5},
	}

	candidates := NewScorer(testWeights()).Score(features)
	require.Len(t, candidates, 1)

	assert.Equal(t, 50.0, candidates[0].Normalized.Momentum)
	assert.Equal(t, 50.0, candidates[0].Normalized.Quality)
	assert.Equal(t, 50.0, candidates[0].Normalized.Sharpe)
	assert.Equal(t, 50.0, candidates[0].Normalized.MeanReversion)
}

func TestScore_Idempotent(t *testing.T) {
	features := []contracts.FeatureVector{
		{Ticker: "A", Momentum: 12, Quality: 1.5, Sharpe: 0.8},
		{Ticker: "B", Momentum: -3, Quality: 0.2, Sharpe: -0.1},
	}

	scorer := NewScorer(testWeights())
	first := scorer.Score(features)
	second := scorer.Score(features)
	assert.Equal(t, first, second)
}

func TestScore_CorrelationPenaltyApplied(t *testing.T) {
	weights := testWeights()
	base := contracts.FeatureVector{Ticker: "A", Momentum: 10}
	penalized := base
	penalized.Ticker = "B"
	penalized.CorrelationPenalty = -0.05

	candidates := NewScorer(weights).Score([]contracts.FeatureVector{base, penalized})
	require.Len(t, candidates, 2)

	// Identical except for the penalty term, scaled by its weight
	diff := candidates[0].Composite - candidates[1].Composite
	assert.InDelta(t, weights.Correlation*0.05, diff, 1e-9)
}

func TestScore_Empty(t *testing.T) {
	assert.Nil(t, NewScorer(testWeights()).Score(nil))
}
