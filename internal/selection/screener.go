package selection

import (
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Screener applies the hard filters that cut candidates before ranking.
type Screener struct {
	config strategyconfig.Screening
	logger *logger.Logger
}

// NewScreener creates a screener.
func NewScreener(config strategyconfig.Screening, log *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: log,
	}
}

// Screen returns the candidates that pass every filter, preserving input
// order. Filter hit counts are logged per filter name.
func (s *Screener) Screen(candidates []contracts.Candidate) []contracts.Candidate {
	passed := make([]contracts.Candidate, 0, len(candidates))
	filtered := make(map[string]int)

	for _, c := range candidates {
		reason := s.checkConditions(c)
		if reason == "" {
			passed = append(passed, c)
		} else {
			filtered[reason]++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  len(candidates),
		"passed":       len(passed),
		"filtered_out": len(candidates) - len(passed),
		"filters":      filtered,
	}).Debug("Screening completed")

	return passed
}

// checkConditions returns the name of the first failing filter, or "" when
// the candidate passes all of them.
func (s *Screener) checkConditions(c contracts.Candidate) string {
	// Volatility ceiling
	if c.Features.AnnualizedVol >= s.config.VolCapPct {
		return "volatility"
	}

	// Trailing returns must clear the configured minimums
	if c.Features.Return3M <= s.config.MinReturn3MPct {
		return "return_3m"
	}
	if c.Features.Return6M <= s.config.MinReturn6MPct {
		return "return_6m"
	}

	// Composite floor
	if c.Composite <= s.config.MinComposite {
		return "composite"
	}

	// Momentum floor on the normalized scale
	if c.Normalized.Momentum <= s.config.MomentumFloor {
		return "momentum"
	}

	return ""
}
