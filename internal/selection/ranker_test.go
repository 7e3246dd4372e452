package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/contracts"
)

func candidate(ticker string, composite, momentum float64) contracts.Candidate {
	return contracts.Candidate{
		Ticker:    ticker,
		Composite: composite,
		Features:  contracts.FeatureVector{Ticker: ticker, Momentum: momentum},
	}
}

func TestRank_CompositeDescending(t *testing.T) {
	ranked := NewRanker(10).Rank([]contracts.Candidate{
		candidate("LOW", 10, 5),
		candidate("HIGH", 80, 5),
		candidate("MID", 40, 5),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "HIGH", ranked[0].Ticker)
	assert.Equal(t, "MID", ranked[1].Ticker)
	assert.Equal(t, "LOW", ranked[2].Ticker)
}

func TestRank_TieBreaks(t *testing.T) {
	// Equal composite falls back to raw momentum, then ticker.
	ranked := NewRanker(10).Rank([]contracts.Candidate{
		candidate("BBB", 50, 10),
		candidate("AAA", 50, 10),
		candidate("CCC", 50, 20),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, "CCC", ranked[0].Ticker)
	assert.Equal(t, "AAA", ranked[1].Ticker)
	assert.Equal(t, "BBB", ranked[2].Ticker)
}

func TestSelect_TopN(t *testing.T) {
	candidates := []contracts.Candidate{
		candidate("A", 90, 0),
		candidate("B", 80, 0),
		candidate("C", 70, 0),
		candidate("D", 60, 0),
	}

	selected := NewRanker(2).Select(candidates)
	require.Len(t, selected, 2)
	assert.Equal(t, "A", selected[0].Ticker)
	assert.Equal(t, "B", selected[1].Ticker)
}

func TestSelect_UnderFull(t *testing.T) {
	selected := NewRanker(6).Select([]contracts.Candidate{candidate("ONLY", 10, 0)})
	assert.Len(t, selected, 1)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []contracts.Candidate{
		candidate("Z", 1, 0),
		candidate("A", 2, 0),
	}
	_ = NewRanker(10).Rank(input)
	assert.Equal(t, "Z", input[0].Ticker)
}
