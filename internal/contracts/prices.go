package contracts

import (
	"fmt"
	"sort"
	"time"
)

// Bar is a single daily observation: trade date and adjusted close.
type Bar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries holds the adjusted-close history for one ticker, ordered by
// date. Dates are strictly increasing; duplicates are rejected at
// construction.
type PriceSeries struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// NewPriceSeries builds a validated series from bars in any order.
// Bars with non-positive closes are rejected; duplicate dates are an error.
func NewPriceSeries(ticker string, bars []Bar) (*PriceSeries, error) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i, b := range sorted {
		if b.Close <= 0 {
			return nil, fmt.Errorf("ticker %s: non-positive close %.4f at %s", ticker, b.Close, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !sorted[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("ticker %s: duplicate date %s", ticker, b.Date.Format("2006-01-02"))
		}
	}

	return &PriceSeries{Ticker: ticker, Bars: sorted}, nil
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// IndexAt returns the index of the last bar dated at or before d,
// or -1 when the series starts after d.
func (s *PriceSeries) IndexAt(d time.Time) int {
	idx := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Date.After(d)
	})
	return idx - 1
}

// CloseAt returns the close of the last bar dated at or before d.
func (s *PriceSeries) CloseAt(d time.Time) (float64, bool) {
	idx := s.IndexAt(d)
	if idx < 0 {
		return 0, false
	}
	return s.Bars[idx].Close, true
}

// CloseOn returns the close of the bar dated exactly d, if one exists.
// Unlike CloseAt it never carries an older close forward.
func (s *PriceSeries) CloseOn(d time.Time) (float64, bool) {
	idx := s.IndexAt(d)
	if idx < 0 || !s.Bars[idx].Date.Equal(d) {
		return 0, false
	}
	return s.Bars[idx].Close, true
}

// Window returns up to maxLen closes ending at the last bar dated at or
// before end, oldest first. Returns nil when no bar exists at or before end.
func (s *PriceSeries) Window(end time.Time, maxLen int) []float64 {
	idx := s.IndexAt(end)
	if idx < 0 {
		return nil
	}

	start := idx + 1 - maxLen
	if start < 0 {
		start = 0
	}

	closes := make([]float64, 0, idx+1-start)
	for i := start; i <= idx; i++ {
		closes = append(closes, s.Bars[i].Close)
	}
	return closes
}

// First returns the earliest bar.
func (s *PriceSeries) First() Bar {
	return s.Bars[0]
}

// Last returns the latest bar.
func (s *PriceSeries) Last() Bar {
	return s.Bars[len(s.Bars)-1]
}
