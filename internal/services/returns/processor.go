// Package returns implements the return attribution engine: a corporate
// action replay over a starting position followed by gain attribution and
// CAGR. The engine is a pure function of its inputs with no I/O or shared
// state, so concurrent calls need no coordination.
package returns

import (
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// PriceFunc looks up the reference closing price for a date. ok is false when
// the price source has no price on or before that date.
type PriceFunc func(date time.Time) (price float64, ok bool)

// Process replays a chronological corporate action stream against an initial
// position of initialShares and zero cash.
//
// The caller supplies actions already sorted ascending by date and already
// validated (see ValidateActions); same-date events are applied in the order
// presented, never reordered. Dividend amounts use the pre-event share count,
// the count that held the right to the dividend. Under ModeReinvest the cash
// is converted to shares at priceAt(event date); under ModeAccumulate it is
// added to the cash balance.
//
// The input slice is never modified. The returned slice holds annotated
// copies of the events with cash amounts and surrounding share counts filled
// in, in replay order.
func Process(initialShares float64, actions []models.CorporateAction, mode models.ReturnMode, priceAt PriceFunc) (models.Position, []models.CorporateAction, error) {
	if initialShares <= 0 {
		return models.Position{}, nil, newError(KindInvalidShareCount, "initial_shares",
			"initial shares must be > 0, got %v", initialShares)
	}

	shares := initialShares
	cash := 0.0
	totalCash := 0.0

	annotated := make([]models.CorporateAction, 0, len(actions))

	for _, a := range actions {
		out := a
		out.SharesBefore = shares

		switch a.Type {
		case models.ActionBonus:
			shares *= a.Factor

		case models.ActionDividendCash:
			var amount float64
			if a.CashReceived != nil {
				amount = *a.CashReceived
				perShare := amount / shares
				out.DividendPerShare = &perShare
			} else {
				amount = *a.DividendPerShare * shares
				out.CashReceived = &amount
			}
			totalCash += amount

			if mode == models.ModeReinvest {
				price, ok := priceAt(a.Date.Time)
				if !ok {
					return models.Position{}, nil, newError(KindMissingReferencePrice, "date",
						"no reference price available on %s to reinvest dividend", a.Date.Format(models.DateOnly))
				}
				shares += amount / price
			} else {
				cash += amount
			}
		}

		out.SharesAfter = shares
		out.TotalCash = totalCash
		annotated = append(annotated, out)
	}

	return models.Position{Shares: shares, Cash: cash}, annotated, nil
}
