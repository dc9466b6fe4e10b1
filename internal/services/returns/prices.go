package returns

import (
	"sort"
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// closingPriceAsOf uses binary search on EOD bars (ascending by date) to find
// the last bar at or before the target date. Returns the close price and the
// actual bar date.
func closingPriceAsOf(bars []models.EODBar, asOf time.Time) (closePrice float64, barDate time.Time, found bool) {
	if len(bars) == 0 {
		return 0, time.Time{}, false
	}

	target := asOf.Truncate(24 * time.Hour)

	// First index where bar.Date > target; the bar before it is the answer.
	idx := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.Truncate(24 * time.Hour).After(target)
	})
	if idx == 0 {
		return 0, time.Time{}, false
	}

	bar := bars[idx-1]
	return bar.Close, bar.Date.Truncate(24 * time.Hour), true
}

// closingPriceOnOrAfter finds the first bar at or after the target date.
// Used to resolve the period's start price when the start date falls on a
// non-trading day.
func closingPriceOnOrAfter(bars []models.EODBar, target time.Time) (closePrice float64, barDate time.Time, found bool) {
	if len(bars) == 0 {
		return 0, time.Time{}, false
	}

	day := target.Truncate(24 * time.Hour)

	idx := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Date.Truncate(24 * time.Hour).Before(day)
	})
	if idx >= len(bars) {
		return 0, time.Time{}, false
	}

	bar := bars[idx]
	return bar.Close, bar.Date.Truncate(24 * time.Hour), true
}

// PriceFuncFromBars builds the reinvestment price lookup over a set of EOD
// bars sorted ascending by date.
func PriceFuncFromBars(bars []models.EODBar) PriceFunc {
	return func(date time.Time) (float64, bool) {
		price, _, found := closingPriceAsOf(bars, date)
		if !found || price <= 0 {
			return 0, false
		}
		return price, true
	}
}
