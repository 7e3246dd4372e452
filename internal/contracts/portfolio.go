package contracts

import (
	"fmt"
	"sort"
	"time"
)

// Position is a single holding. Created on buy, removed on full sell;
// shares change only through rebalance-driven buys, sells and trims.
type Position struct {
	Ticker     string  `json:"ticker"`
	Shares     int64   `json:"shares"`
	EntryPrice float64 `json:"entry_price"`

	// LastPrice is the most recent mark. It equals the fresh close when one
	// was available, otherwise the prior mark carried forward.
	LastPrice float64 `json:"last_price"`

	// StalePrice is set when the last mark-to-market had no fresh price and
	// LastPrice was carried forward.
	StalePrice bool `json:"stale_price,omitempty"`
}

// NewPosition validates and builds a position.
func NewPosition(ticker string, shares int64, entryPrice float64) (*Position, error) {
	if ticker == "" {
		return nil, fmt.Errorf("position: empty ticker")
	}
	if shares <= 0 {
		return nil, fmt.Errorf("position %s: non-positive shares %d", ticker, shares)
	}
	if entryPrice <= 0 {
		return nil, fmt.Errorf("position %s: non-positive entry price %.4f", ticker, entryPrice)
	}
	return &Position{Ticker: ticker, Shares: shares, EntryPrice: entryPrice, LastPrice: entryPrice}, nil
}

// PnLPercent returns the unrealized return versus entry, in percent.
func (p *Position) PnLPercent(price float64) float64 {
	return (price - p.EntryPrice) / p.EntryPrice * 100
}

// PortfolioState is the cash and holdings as of one rebalance date. It is
// mutated once per rebalance by the simulator and only read elsewhere.
type PortfolioState struct {
	Cash      float64              `json:"cash"`
	Positions map[string]*Position `json:"positions"`
	AsOf      time.Time            `json:"as_of"`
}

// NewPortfolioState initializes a state with starting cash and no holdings.
func NewPortfolioState(cash float64) *PortfolioState {
	return &PortfolioState{
		Cash:      cash,
		Positions: make(map[string]*Position),
	}
}

// HeldTickers returns held tickers in lexical order. Trade generation
// iterates holdings through this so runs stay reproducible.
func (s *PortfolioState) HeldTickers() []string {
	tickers := make([]string, 0, len(s.Positions))
	for t := range s.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// TradeSide distinguishes buys from sells.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeReason records why the simulator generated a trade.
type TradeReason string

const (
	ReasonStopLoss     TradeReason = "stop_loss"
	ReasonTakeProfit   TradeReason = "take_profit_trim"
	ReasonNotSelected  TradeReason = "not_selected"
	ReasonRebalance    TradeReason = "rebalance"
	ReasonNewSelection TradeReason = "new_selection"
)

// Trade is one executed simulation trade.
type Trade struct {
	Date   time.Time   `json:"date"`
	Ticker string      `json:"ticker"`
	Side   TradeSide   `json:"side"`
	Shares int64       `json:"shares"`
	Price  float64     `json:"price"`
	Value  float64     `json:"value"`
	Reason TradeReason `json:"reason"`
}

// EquityPoint is one mark of total portfolio value. The equity curve is
// append-only, one point per processed rebalance date.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PerformanceSummary is the read-only output of the performance analyzer.
type PerformanceSummary struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Periods       int       `json:"periods"`
	TotalReturn   float64   `json:"total_return"`   // fraction
	CAGR          float64   `json:"cagr"`           // fraction
	AnnualizedVol float64   `json:"annualized_vol"` // fraction
	Sharpe        float64   `json:"sharpe"`
	MaxDrawdown   float64   `json:"max_drawdown"` // fraction, always <= 0
}
