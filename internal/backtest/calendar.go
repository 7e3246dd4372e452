package backtest

import (
	"sort"
	"time"

	"github.com/quantfolio/quantfolio/internal/contracts"
	"github.com/quantfolio/quantfolio/internal/strategyconfig"
)

// tradingDates returns the sorted union of all bar dates across the universe
// inside [start, end].
func tradingDates(series map[string]*contracts.PriceSeries, start, end time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for _, b := range s.Bars {
			if b.Date.Before(start) || b.Date.After(end) {
				continue
			}
			seen[b.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// rebalanceDates thins the trading calendar to the configured frequency.
// Weekly keeps the last trading date of each Friday-anchored week, so a
// holiday Friday falls back to Thursday rather than skipping the week.
func rebalanceDates(dates []time.Time, freq strategyconfig.RebalanceFrequency) []time.Time {
	if freq != strategyconfig.RebalanceWeekly {
		return dates
	}

	out := make([]time.Time, 0, len(dates)/5+1)
	for i, d := range dates {
		if i+1 == len(dates) || !sameWeek(d, dates[i+1]) {
			out = append(out, d)
		}
	}
	return out
}

// sameWeek reports whether two dates share a Friday-anchored week: each date
// maps to the Friday on or after it (Saturday and Sunday roll forward to the
// next Friday).
func sameWeek(a, b time.Time) bool {
	return weekAnchor(a).Equal(weekAnchor(b))
}

func weekAnchor(d time.Time) time.Time {
	offset := int(time.Friday - d.Weekday())
	if offset < 0 {
		offset += 7
	}
	anchor := d.AddDate(0, 0, offset)
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
}
