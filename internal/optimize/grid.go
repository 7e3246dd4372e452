package optimize

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Objective selects the metric a grid search ranks by.
type Objective string

const (
	ObjectiveCAGR   Objective = "cagr"
	ObjectiveSharpe Objective = "sharpe"
)

// Grid enumerates strategy variants. Empty axes keep the base value.
type Grid struct {
	TopN            []int
	StopLossPct     []float64
	MomentumWeights [][]float64 // each entry must match the base lookbacks in length
}

// Variant is one evaluated grid point.
type Variant struct {
	TopN            int
	StopLossPct     float64
	MomentumWeights []float64
	Summary         *contracts.PerformanceSummary
	Err             error
}

// Searcher runs a full backtest per grid point and ranks the outcomes.
type Searcher struct {
	base      *strategyconfig.Config
	objective Objective
	workers   int
	logger    *logger.Logger
}

// NewSearcher creates a searcher over a base config.
func NewSearcher(base *strategyconfig.Config, objective Objective, log *logger.Logger) *Searcher {
	return &Searcher{
		base:      base,
		objective: objective,
		workers:   runtime.NumCPU(),
		logger:    log,
	}
}

// Search evaluates every grid point and returns the variants best first.
// Individual backtest failures are recorded on the variant, not fatal.
func (s *Searcher) Search(
	ctx context.Context,
	grid Grid,
	series map[string]*contracts.PriceSeries,
	start, end time.Time,
) ([]Variant, error) {
	variants := s.enumerate(grid)
	if len(variants) == 0 {
		return nil, fmt.Errorf("optimize: empty grid")
	}

	s.logger.WithFields(map[string]interface{}{
		"variants":  len(variants),
		"objective": string(s.objective),
	}).Info("Starting grid search")

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(variants) {
		workers = len(variants)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				variants[idx] = s.evaluate(ctx, variants[idx], series, start, end)
			}
		}()
	}

	for idx := range variants {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(variants, func(i, j int) bool {
		return s.score(variants[i]) > s.score(variants[j])
	})

	return variants, nil
}

// enumerate expands the grid axes against the base config, defaulting each
// empty axis to the base value.
func (s *Searcher) enumerate(grid Grid) []Variant {
	topNs := grid.TopN
	if len(topNs) == 0 {
		topNs = []int{s.base.Portfolio.TopN}
	}
	stops := grid.StopLossPct
	if len(stops) == 0 {
		stops = []float64{s.base.Exit.StopLossPct}
	}
	momWeights := grid.MomentumWeights
	if len(momWeights) == 0 {
		momWeights = [][]float64{s.base.Signals.Momentum.Weights}
	}

	variants := make([]Variant, 0, len(topNs)*len(stops)*len(momWeights))
	for _, n := range topNs {
		for _, sl := range stops {
			for _, mw := range momWeights {
				variants = append(variants, Variant{
					TopN:            n,
					StopLossPct:     sl,
					MomentumWeights: mw,
				})
			}
		}
	}
	return variants
}

func (s *Searcher) evaluate(
	ctx context.Context,
	v Variant,
	series map[string]*contracts.PriceSeries,
	start, end time.Time,
) Variant {
	cfg := *s.base
	cfg.Portfolio.TopN = v.TopN
	cfg.Exit.StopLossPct = v.StopLossPct
	cfg.Signals.Momentum.Weights = v.MomentumWeights

	if err := strategyconfig.Validate(&cfg); err != nil {
		v.Err = fmt.Errorf("variant config: %w", err)
		return v
	}

	engine := backtest.NewEngine(&cfg, s.logger)
	result, err := engine.Run(ctx, series, start, end)
	if err != nil {
		v.Err = err
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"top_n":     v.TopN,
			"stop_loss": v.StopLossPct,
		}).Warn("Grid variant failed")
		return v
	}

	v.Summary = result.Summary
	return v
}

// score maps a variant to its objective value; failed variants sink to the
// bottom.
func (s *Searcher) score(v Variant) float64 {
	if v.Err != nil || v.Summary == nil {
		return -1e18
	}
	switch s.objective {
	case ObjectiveSharpe:
		return v.Summary.Sharpe
	default:
		return v.Summary.CAGR
	}
}
