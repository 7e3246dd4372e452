package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

// Simulator advances a portfolio state through one rebalance date at a time:
// mark-to-market, exit rules, then band rebalancing toward the sizer's
// target weights. All iteration over holdings is in lexical ticker order and
// buys run in selection rank order, so a run is fully reproducible.
type Simulator struct {
	config strategyconfig.Portfolio
	exit   strategyconfig.Exit
	sizer  *Sizer
	logger *logger.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(config strategyconfig.Portfolio, exit strategyconfig.Exit, log *logger.Logger) *Simulator {
	return &Simulator{
		config: config,
		exit:   exit,
		sizer:  NewSizer(config),
		logger: log,
	}
}

// Step processes one rebalance date. prices holds the fresh closes available
// on that date; a held ticker absent from prices is carried at its last mark
// with the stale flag set. The returned equity point reflects the state
// after all trades.
func (s *Simulator) Step(
	state *contracts.PortfolioState,
	prices map[string]float64,
	selection []contracts.Candidate,
	date time.Time,
) ([]contracts.Trade, contracts.EquityPoint, error) {
	if state == nil {
		return nil, contracts.EquityPoint{}, fmt.Errorf("simulator: nil state")
	}

	s.markToMarket(state, prices)

	trades := make([]contracts.Trade, 0)

	selected := make(map[string]contracts.Candidate, len(selection))
	for _, c := range selection {
		selected[c.Ticker] = c
	}

	trades = append(trades, s.applyExits(state, selected, date)...)

	equity := s.totalEquity(state)
	targets := s.sizer.TargetWeights(selection)

	// Sells before buys so freed cash is available for the new names.
	for _, ticker := range state.HeldTickers() {
		pos := state.Positions[ticker]
		if pos.StalePrice {
			continue
		}
		target := targets[ticker]
		current := float64(pos.Shares) * pos.LastPrice / equity
		delta := target - current
		if delta >= -s.config.RebalanceBand {
			continue
		}
		sellShares := int64(math.Floor(-delta * equity / pos.LastPrice))
		if sellShares < 1 {
			continue
		}
		if sellShares > pos.Shares {
			sellShares = pos.Shares
		}
		trades = append(trades, s.sell(state, pos, sellShares, date, contracts.ReasonRebalance))
	}

	for _, c := range selection {
		price, ok := prices[c.Ticker]
		if !ok || price <= 0 {
			continue
		}
		target := targets[c.Ticker]
		pos := state.Positions[c.Ticker]

		current := 0.0
		if pos != nil {
			current = float64(pos.Shares) * price / equity
		}
		delta := target - current
		if delta <= s.config.RebalanceBand {
			continue
		}

		buyShares := int64(math.Floor(delta * equity / price))
		if affordable := int64(math.Floor(state.Cash / price)); buyShares > affordable {
			buyShares = affordable
		}
		if buyShares < 1 {
			continue
		}

		reason := contracts.ReasonRebalance
		if pos == nil {
			reason = contracts.ReasonNewSelection
		}
		trade, err := s.buy(state, c.Ticker, buyShares, price, date, reason)
		if err != nil {
			return nil, contracts.EquityPoint{}, err
		}
		trades = append(trades, trade)
	}

	state.AsOf = date
	point := contracts.EquityPoint{Date: date, Value: s.totalEquity(state)}

	s.logger.WithFields(map[string]interface{}{
		"date":      date.Format("2006-01-02"),
		"trades":    len(trades),
		"positions": len(state.Positions),
		"cash":      state.Cash,
		"equity":    point.Value,
	}).Debug("Rebalance step completed")

	return trades, point, nil
}

// Mark refreshes position marks without trading and returns the resulting
// equity point. Used for dates where no usable selection could be produced.
func (s *Simulator) Mark(
	state *contracts.PortfolioState,
	prices map[string]float64,
	date time.Time,
) contracts.EquityPoint {
	s.markToMarket(state, prices)
	state.AsOf = date
	return contracts.EquityPoint{Date: date, Value: s.totalEquity(state)}
}

// markToMarket refreshes every position's last mark. Positions without a
// fresh close keep the previous mark and are flagged stale.
func (s *Simulator) markToMarket(state *contracts.PortfolioState, prices map[string]float64) {
	for _, ticker := range state.HeldTickers() {
		pos := state.Positions[ticker]
		if price, ok := prices[ticker]; ok && price > 0 {
			pos.LastPrice = price
			pos.StalePrice = false
		} else {
			pos.StalePrice = true
		}
	}
}

// applyExits runs stop-loss, non-selection and take-profit rules, in that
// order. Stop-loss and trims need a fresh price; a stale position can still
// be closed for leaving the selection, at its carried mark.
func (s *Simulator) applyExits(
	state *contracts.PortfolioState,
	selected map[string]contracts.Candidate,
	date time.Time,
) []contracts.Trade {
	trades := make([]contracts.Trade, 0)

	for _, ticker := range state.HeldTickers() {
		pos := state.Positions[ticker]

		if !pos.StalePrice {
			pnl := pos.PnLPercent(pos.LastPrice)
			// Inclusive: a drop exactly at the threshold exits.
			if pnl <= s.exit.StopLossPct {
				trades = append(trades, s.sell(state, pos, pos.Shares, date, contracts.ReasonStopLoss))
				s.logger.WithFields(map[string]interface{}{
					"ticker": ticker,
					"pnl":    pnl,
					"date":   date.Format("2006-01-02"),
				}).Info("Stop-loss triggered")
				continue
			}
		}

		if _, ok := selected[ticker]; !ok {
			trades = append(trades, s.sell(state, pos, pos.Shares, date, contracts.ReasonNotSelected))
			continue
		}

		if pos.StalePrice {
			continue
		}

		pnl := pos.PnLPercent(pos.LastPrice)
		if pnl < s.exit.TakeProfitPct {
			continue
		}
		equity := s.totalEquity(state)
		weight := float64(pos.Shares) * pos.LastPrice / equity
		if weight < s.config.SoftCapWeight-s.config.RebalanceBand {
			continue
		}
		targetValue := s.config.HardCapWeight * equity
		trimShares := int64(math.Floor((float64(pos.Shares)*pos.LastPrice - targetValue) / pos.LastPrice))
		if trimShares < 1 {
			continue
		}
		if trimShares > pos.Shares {
			trimShares = pos.Shares
		}
		trades = append(trades, s.sell(state, pos, trimShares, date, contracts.ReasonTakeProfit))
	}

	return trades
}

// sell executes shares at the position's current mark, removing the position
// when it is fully closed.
func (s *Simulator) sell(
	state *contracts.PortfolioState,
	pos *contracts.Position,
	shares int64,
	date time.Time,
	reason contracts.TradeReason,
) contracts.Trade {
	value := float64(shares) * pos.LastPrice
	state.Cash += value
	pos.Shares -= shares
	if pos.Shares <= 0 {
		delete(state.Positions, pos.Ticker)
	}
	return contracts.Trade{
		Date:   date,
		Ticker: pos.Ticker,
		Side:   contracts.TradeSideSell,
		Shares: shares,
		Price:  pos.LastPrice,
		Value:  value,
		Reason: reason,
	}
}

// buy executes shares at the fresh close. Adding to an existing position
// keeps the original entry price; exits measure drawdown from first entry.
func (s *Simulator) buy(
	state *contracts.PortfolioState,
	ticker string,
	shares int64,
	price float64,
	date time.Time,
	reason contracts.TradeReason,
) (contracts.Trade, error) {
	value := float64(shares) * price
	state.Cash -= value

	if pos, ok := state.Positions[ticker]; ok {
		pos.Shares += shares
		pos.LastPrice = price
		pos.StalePrice = false
	} else {
		pos, err := contracts.NewPosition(ticker, shares, price)
		if err != nil {
			return contracts.Trade{}, fmt.Errorf("simulator: %w", err)
		}
		state.Positions[ticker] = pos
	}

	return contracts.Trade{
		Date:   date,
		Ticker: ticker,
		Side:   contracts.TradeSideBuy,
		Shares: shares,
		Price:  price,
		Value:  value,
		Reason: reason,
	}, nil
}

// totalEquity is cash plus every position at its last mark.
func (s *Simulator) totalEquity(state *contracts.PortfolioState) float64 {
	equity := state.Cash
	for _, pos := range state.Positions {
		equity += float64(pos.Shares) * pos.LastPrice
	}
	return equity
}
