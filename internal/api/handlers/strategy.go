package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/quantfolio/quantfolio/internal/backtest"
	"github.com/quantfolio/quantfolio/internal/marketdata"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// StrategyHandler serves the strategy document and on-demand pipeline runs.
// All endpoints are read-only with respect to persisted state: a backtest
// run builds its portfolio from scratch per request.
type StrategyHandler struct {
	strategy   *strategyconfig.Config
	hash       string
	provider   marketdata.Provider
	warmupDays int
	logger     *logger.Logger
}

// NewStrategyHandler creates a handler.
func NewStrategyHandler(
	strategy *strategyconfig.Config,
	hash string,
	provider marketdata.Provider,
	warmupDays int,
	log *logger.Logger,
) *StrategyHandler {
	return &StrategyHandler{
		strategy:   strategy,
		hash:       hash,
		provider:   provider,
		warmupDays: warmupDays,
		logger:     log,
	}
}

// StrategyResponse summarizes the loaded strategy document.
type StrategyResponse struct {
	StrategyID    string  `json:"strategy_id"`
	Version       string  `json:"version"`
	Hash          string  `json:"hash"`
	UniverseSize  int     `json:"universe_size"`
	TopN          int     `json:"top_n"`
	SizingMode    string  `json:"sizing_mode"`
	StopLossPct   float64 `json:"stop_loss_pct"`
	TakeProfitPct float64 `json:"take_profit_pct"`
	Rebalance     string  `json:"rebalance"`
}

// GetStrategy returns the active strategy parameters.
// GET /api/strategy
func (h *StrategyHandler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StrategyResponse{
		StrategyID:    h.strategy.Meta.StrategyID,
		Version:       h.strategy.Meta.Version,
		Hash:          h.hash,
		UniverseSize:  len(h.strategy.Universe.Tickers),
		TopN:          h.strategy.Portfolio.TopN,
		SizingMode:    string(h.strategy.Portfolio.SizingMode),
		StopLossPct:   h.strategy.Exit.StopLossPct,
		TakeProfitPct: h.strategy.Exit.TakeProfitPct,
		Rebalance:     string(h.strategy.Backtest.Rebalance),
	})
}

// SelectionRow is one ranked candidate in a screen response.
type SelectionRow struct {
	Rank          int     `json:"rank"`
	Ticker        string  `json:"ticker"`
	Composite     float64 `json:"composite"`
	Momentum      float64 `json:"momentum"`
	Return3M      float64 `json:"return_3m"`
	AnnualizedVol float64 `json:"annualized_vol"`
}

// ScreenResponse is the ranked selection for one date.
type ScreenResponse struct {
	Date      string         `json:"date"`
	Selection []SelectionRow `json:"selection"`
}

// Screen ranks the universe as of a date.
// GET /api/screen?date=2024-06-28
func (h *StrategyHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		date = parsed
	}

	series, err := marketdata.FetchUniverse(ctx, h.provider, h.strategy.Universe.Tickers,
		date.AddDate(0, 0, -h.warmupDays), date, h.logger)
	if err != nil {
		h.logger.WithError(err).Error("Screen price load failed")
		respondError(w, http.StatusBadGateway, "price data unavailable")
		return
	}

	engine := backtest.NewEngine(h.strategy, h.logger)
	selection, err := engine.SelectAt(ctx, series, date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Screen failed")
		respondError(w, http.StatusUnprocessableEntity, "no usable signals for date")
		return
	}

	rows := make([]SelectionRow, len(selection))
	for i, c := range selection {
		rows[i] = SelectionRow{
			Rank:          i + 1,
			Ticker:        c.Ticker,
			Composite:     c.Composite,
			Momentum:      c.Features.Momentum,
			Return3M:      c.Features.Return3M,
			AnnualizedVol: c.Features.AnnualizedVol,
		}
	}

	respondJSON(w, http.StatusOK, ScreenResponse{
		Date:      date.Format("2006-01-02"),
		Selection: rows,
	})
}

// BacktestRequest is the body of a backtest run request.
type BacktestRequest struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	InitialCash float64 `json:"initial_cash,omitempty"`
}

// BacktestResponse is the condensed outcome of a run.
type BacktestResponse struct {
	StrategyID    string  `json:"strategy_id"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Rebalances    int     `json:"rebalances"`
	Trades        int     `json:"trades"`
	SkippedDates  int     `json:"skipped_dates"`
	TotalReturn   float64 `json:"total_return"`
	CAGR          float64 `json:"cagr"`
	AnnualizedVol float64 `json:"annualized_vol"`
	Sharpe        float64 `json:"sharpe"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	FinalEquity   float64 `json:"final_equity"`
	OpenPositions int     `json:"open_positions"`
}

// RunBacktest executes a backtest over the requested window.
// POST /api/backtest
func (h *StrategyHandler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		respondError(w, http.StatusBadRequest, "from is required, want YYYY-MM-DD")
		return
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	if req.To != "" {
		if to, err = time.Parse("2006-01-02", req.To); err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
	}

	strategy := h.strategy
	if req.InitialCash > 0 {
		clone := *h.strategy
		clone.Backtest.InitialCash = req.InitialCash
		strategy = &clone
	}

	series, err := marketdata.FetchUniverse(ctx, h.provider, strategy.Universe.Tickers,
		from.AddDate(0, 0, -h.warmupDays), to, h.logger)
	if err != nil {
		h.logger.WithError(err).Error("Backtest price load failed")
		respondError(w, http.StatusBadGateway, "price data unavailable")
		return
	}

	result, err := backtest.NewEngine(strategy, h.logger).Run(ctx, series, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Backtest run failed")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, backtestResponse(result))
}

func backtestResponse(result *backtest.Result) BacktestResponse {
	resp := BacktestResponse{
		StrategyID:    result.StrategyID,
		From:          result.StartDate.Format("2006-01-02"),
		To:            result.EndDate.Format("2006-01-02"),
		Rebalances:    result.RebalanceCount,
		Trades:        len(result.Trades),
		SkippedDates:  result.SkippedDates,
		OpenPositions: len(result.FinalState.Positions),
	}
	if s := result.Summary; s != nil {
		resp.TotalReturn = s.TotalReturn
		resp.CAGR = s.CAGR
		resp.AnnualizedVol = s.AnnualizedVol
		resp.Sharpe = s.Sharpe
		resp.MaxDrawdown = s.MaxDrawdown
	}
	if n := len(result.EquityCurve); n > 0 {
		resp.FinalEquity = result.EquityCurve[n-1].Value
	}
	return resp
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
