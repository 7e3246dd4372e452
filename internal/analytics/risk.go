package analytics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/quantfolio/quantfolio/internal/contracts"
)

// VaRResult holds a value-at-risk estimate. Losses are expressed as
// positive fractions: VaR 0.05 means a 5% loss at the given confidence.
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// MonteCarloResult summarizes resampled multi-period outcomes.
type MonteCarloResult struct {
	VaRResult
	Horizon     int     `json:"horizon"`
	Simulations int     `json:"simulations"`
	MeanReturn  float64 `json:"mean_return"`
	WorstReturn float64 `json:"worst_return"`
}

// CurveReturns converts an equity curve into per-period returns.
func CurveReturns(curve []contracts.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, curve[i].Value/curve[i-1].Value-1)
	}
	return returns
}

// HistoricalVaR estimates VaR and CVaR from observed per-period returns by
// historical simulation: the (1-confidence) quantile of the sorted returns,
// and the mean of the tail below it.
func HistoricalVaR(returns []float64, confidence float64) VaRResult {
	if len(returns) == 0 {
		return VaRResult{Confidence: confidence}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return VaRResult{
		Confidence: confidence,
		VaR:        lossOf(sorted[idx]),
		CVaR:       tailLoss(sorted, idx),
	}
}

// MonteCarloVaR resamples the observed returns with replacement across a
// holding horizon and reads VaR/CVaR off the simulated outcome distribution.
// A fixed seed makes runs reproducible.
func MonteCarloVaR(returns []float64, horizon, simulations int, confidence float64, seed int64) MonteCarloResult {
	result := MonteCarloResult{
		VaRResult:   VaRResult{Confidence: confidence},
		Horizon:     horizon,
		Simulations: simulations,
	}
	if len(returns) == 0 || horizon < 1 || simulations < 1 {
		return result
	}

	rng := rand.New(rand.NewSource(seed))

	outcomes := make([]float64, simulations)
	sum := 0.0
	worst := math.Inf(1)
	for i := range outcomes {
		compound := 1.0
		for p := 0; p < horizon; p++ {
			compound *= 1 + returns[rng.Intn(len(returns))]
		}
		r := compound - 1
		outcomes[i] = r
		sum += r
		if r < worst {
			worst = r
		}
	}

	sort.Float64s(outcomes)
	idx := int(math.Floor((1 - confidence) * float64(simulations)))
	if idx >= simulations {
		idx = simulations - 1
	}

	result.VaR = lossOf(outcomes[idx])
	result.CVaR = tailLoss(outcomes, idx)
	result.MeanReturn = sum / float64(simulations)
	result.WorstReturn = worst
	return result
}

// lossOf maps a return to a non-negative loss.
func lossOf(r float64) float64 {
	if r < 0 {
		return -r
	}
	return 0
}

// tailLoss is the mean loss of sorted returns up to and including idx.
func tailLoss(sorted []float64, idx int) float64 {
	if len(sorted) == 0 || idx < 0 {
		return 0
	}
	sum := 0.0
	count := 0
	for i := 0; i <= idx && i < len(sorted); i++ {
		sum += sorted[i]
		count++
	}
	if count == 0 {
		return 0
	}
	return lossOf(sum / float64(count))
}
