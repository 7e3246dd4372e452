package selection

import (
	"sort"

	"github.com/quantfolio/quantfolio/internal/contracts"
)

// Ranker orders screened candidates and picks the top N.
type Ranker struct {
	topN int
}

// NewRanker creates a ranker that selects at most topN candidates.
func NewRanker(topN int) *Ranker {
	return &Ranker{topN: topN}
}

// Rank sorts candidates by composite score descending, breaking ties by raw
// momentum descending, then ticker ascending. The input slice is not
// modified.
func (r *Ranker) Rank(candidates []contracts.Candidate) []contracts.Candidate {
	ranked := make([]contracts.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		if ranked[i].Features.Momentum != ranked[j].Features.Momentum {
			return ranked[i].Features.Momentum > ranked[j].Features.Momentum
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	return ranked
}

// Select ranks candidates and returns the top N. Fewer than N survivors is
// not an error; the selection is simply smaller.
func (r *Ranker) Select(candidates []contracts.Candidate) []contracts.Candidate {
	ranked := r.Rank(candidates)
	if len(ranked) > r.topN {
		ranked = ranked[:r.topN]
	}
	return ranked
}
