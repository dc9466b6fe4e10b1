package returns

import (
	"math"
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// daysPerYear follows the astronomical year, matching how the presentation
// layer annualises.
const daysPerYear = 365.25

// Attribute decomposes the gain of a finished replay into price appreciation
// and dividend cash, and annualises the total return.
//
// priceGain carries all share-count growth: splits, bonuses, and reinvested
// dividends increase finalShares rather than cash, so their effect lands in
// the price bucket. dividendGain is exactly the accumulated cash balance.
// totalGain is constructed as the sum of the two buckets, so
// totalGain == priceGain + dividendGain holds identically.
func Attribute(initialShares, startPrice float64, final models.Position, endPrice float64, from, to time.Time) (*models.AttributionResult, error) {
	if !to.After(from) {
		return nil, newError(KindInvalidPeriod, "to",
			"period end %s must be after start %s", to.Format(models.DateOnly), from.Format(models.DateOnly))
	}
	if startPrice <= 0 {
		return nil, newError(KindInvalidPrice, "start_price", "start price must be > 0, got %v", startPrice)
	}
	if endPrice <= 0 {
		return nil, newError(KindInvalidPrice, "end_price", "end price must be > 0, got %v", endPrice)
	}

	initialValue := initialShares * startPrice
	finalValue := final.Shares*endPrice + final.Cash

	priceGain := final.Shares*endPrice - initialShares*startPrice
	dividendGain := final.Cash
	totalGain := priceGain + dividendGain

	if initialValue == 0 {
		return nil, newError(KindDivisionByZero, "initial_value", "initial value is zero")
	}
	totalGainPct := totalGain / initialValue * 100

	years := to.Sub(from).Hours() / 24 / daysPerYear
	if years <= 0 {
		return nil, newError(KindDivisionByZero, "years", "period length is zero")
	}

	result := &models.AttributionResult{
		InitialShares: initialShares,
		FinalShares:   final.Shares,
		StartPrice:    startPrice,
		EndPrice:      endPrice,
		InitialValue:  initialValue,
		FinalValue:    finalValue,
		CashBalance:   final.Cash,
		PriceGain:     priceGain,
		DividendGain:  dividendGain,
		TotalGain:     totalGain,
		TotalGainPct:  totalGainPct,
	}

	// CAGR is undefined for a non-positive value ratio; leave it unset rather
	// than emit NaN.
	if ratio := finalValue / initialValue; ratio > 0 {
		cagr := (math.Pow(ratio, 1/years) - 1) * 100
		result.CAGRPct = &cagr
	}

	return result, nil
}
