package portfolio

import (
	"math"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
)

// Sizer converts a ranked selection into target portfolio weights.
type Sizer struct {
	config strategyconfig.Portfolio
}

// NewSizer creates a sizer.
func NewSizer(config strategyconfig.Portfolio) *Sizer {
	return &Sizer{config: config}
}

// TargetWeights returns the target weight per selected ticker. Weights are
// fractions of total equity and after capping may sum to less than one; the
// remainder stays in cash.
func (s *Sizer) TargetWeights(selection []contracts.Candidate) map[string]float64 {
	if len(selection) == 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(selection))

	switch s.config.SizingMode {
	case strategyconfig.SizingScoreWeighted:
		total := 0.0
		for _, c := range selection {
			total += math.Max(c.Composite, 0)
		}
		if total <= 0 {
			// Degenerate scores fall back to equal weighting.
			s.equalWeights(selection, weights)
			break
		}
		for _, c := range selection {
			w := math.Max(c.Composite, 0) / total
			if cap := s.kellyCap(c); w > cap {
				w = cap
			}
			weights[c.Ticker] = w
		}
	default:
		s.equalWeights(selection, weights)
	}

	return weights
}

// equalWeights assigns 1/N, clamped to the maximum position weight.
func (s *Sizer) equalWeights(selection []contracts.Candidate, weights map[string]float64) {
	w := 1.0 / float64(len(selection))
	if w > s.config.MaxWeight {
		w = s.config.MaxWeight
	}
	for _, c := range selection {
		weights[c.Ticker] = w
	}
}

// kellyCap is a simplified Kelly-style ceiling: score over volatility,
// scaled down by the divisor and clamped to the configured maximum weight.
// Volatility is floored so low-vol names cannot blow up the ratio.
func (s *Sizer) kellyCap(c contracts.Candidate) float64 {
	vol := c.Features.AnnualizedVol
	if vol < s.config.VolFloorPct {
		vol = s.config.VolFloorPct
	}
	cap := (c.Composite / vol) / s.config.KellyDivisor
	if cap > s.config.MaxWeight {
		cap = s.config.MaxWeight
	}
	if cap < 0 {
		cap = 0
	}
	return cap
}
