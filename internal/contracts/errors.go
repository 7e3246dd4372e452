package contracts

import "errors"

// Error taxonomy for the run. Per-ticker and per-date failures are isolated
// and logged with the offending key; only configuration errors and total
// data unavailability abort a run.
var (
	// ErrDataInsufficient marks a ticker lacking the minimum lookback window
	// on a given date. Skip the ticker for that date, keep the run.
	ErrDataInsufficient = errors.New("insufficient price history")

	// ErrDataUnavailable marks a ticker the provider returned nothing for.
	// Mark-to-market carries the last known value; the ticker is excluded
	// from new buys.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrNoUsableTickers is fatal: no ticker in the universe had enough
	// history to simulate anything.
	ErrNoUsableTickers = errors.New("no usable tickers in universe")

	// ErrInsufficientEquityHistory is returned by the performance analyzer
	// when fewer than two equity points exist. Callers report "no metrics
	// available" instead of crashing.
	ErrInsufficientEquityHistory = errors.New("insufficient equity history")
)
