package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func testSeries(t *testing.T) *PriceSeries {
	t.Helper()
	s, err := NewPriceSeries("AAA", []Bar{
		{Date: day(4), Close: 100},
		{Date: day(5), Close: 101},
		{Date: day(7), Close: 103},
	})
	require.NoError(t, err)
	return s
}

func TestNewPriceSeriesSortsBars(t *testing.T) {
	s, err := NewPriceSeries("AAA", []Bar{
		{Date: day(7), Close: 103},
		{Date: day(4), Close: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, day(4), s.First().Date)
	assert.Equal(t, day(7), s.Last().Date)
}

func TestNewPriceSeriesRejectsBadBars(t *testing.T) {
	_, err := NewPriceSeries("AAA", []Bar{{Date: day(4), Close: 0}})
	require.Error(t, err)

	_, err = NewPriceSeries("AAA", []Bar{
		{Date: day(4), Close: 100},
		{Date: day(4), Close: 101},
	})
	require.Error(t, err)
}

func TestCloseAtCarriesForward(t *testing.T) {
	s := testSeries(t)

	// 2024-03-06 has no bar: the 03-05 close carries
	close, ok := s.CloseAt(day(6))
	require.True(t, ok)
	assert.Equal(t, 101.0, close)

	_, ok = s.CloseAt(day(1))
	assert.False(t, ok)
}

func TestCloseOnExactDateOnly(t *testing.T) {
	s := testSeries(t)

	close, ok := s.CloseOn(day(5))
	require.True(t, ok)
	assert.Equal(t, 101.0, close)

	_, ok = s.CloseOn(day(6))
	assert.False(t, ok)
}

func TestWindow(t *testing.T) {
	s := testSeries(t)

	assert.Equal(t, []float64{100, 101, 103}, s.Window(day(7), 10))
	assert.Equal(t, []float64{101, 103}, s.Window(day(7), 2))
	assert.Equal(t, []float64{100, 101}, s.Window(day(6), 10))
	assert.Nil(t, s.Window(day(1), 10))
}

func TestPositionValidation(t *testing.T) {
	pos, err := NewPosition("AAA", 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, pos.LastPrice)
	assert.InDelta(t, -10.0, pos.PnLPercent(90), 1e-12)

	_, err = NewPosition("", 10, 100)
	require.Error(t, err)
	_, err = NewPosition("AAA", 0, 100)
	require.Error(t, err)
	_, err = NewPosition("AAA", 10, 0)
	require.Error(t, err)
}

func TestHeldTickersSorted(t *testing.T) {
	state := NewPortfolioState(1000)
	for _, ticker := range []string{"ZZZ", "AAA", "MMM"} {
		pos, err := NewPosition(ticker, 1, 100)
		require.NoError(t, err)
		state.Positions[ticker] = pos
	}
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, state.HeldTickers())
}
