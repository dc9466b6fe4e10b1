package returns

import (
	"fmt"

	"github.com/stockreturns/stockreturns/internal/models"
)

// NewBonus builds a split/bonus event. Factor is the share multiplier: 2 for
// a 2-for-1 split or 1:1 bonus, 0.5 for a 1-for-2 consolidation. A factor of
// exactly 1 is accepted as a recorded but economically void action.
func NewBonus(date models.Date, factor float64) (models.CorporateAction, error) {
	if factor <= 0 {
		return models.CorporateAction{}, newError(KindInvalidShareCount, "factor",
			"split/bonus factor must be > 0, got %v", factor)
	}
	return models.CorporateAction{
		Date:   date,
		Type:   models.ActionBonus,
		Factor: factor,
	}, nil
}

// NewCashDividendPerShare builds a cash dividend event declared per share.
func NewCashDividendPerShare(date models.Date, perShare float64) (models.CorporateAction, error) {
	if perShare < 0 {
		return models.CorporateAction{}, newError(KindInvalidDividendAmount, "dividend_per_share",
			"dividend per share must be >= 0, got %v", perShare)
	}
	return models.CorporateAction{
		Date:             date,
		Type:             models.ActionDividendCash,
		DividendPerShare: &perShare,
	}, nil
}

// NewCashDividendAmount builds a cash dividend event with a known total cash
// amount, bypassing the per-share computation.
func NewCashDividendAmount(date models.Date, cash float64) (models.CorporateAction, error) {
	if cash < 0 {
		return models.CorporateAction{}, newError(KindInvalidDividendAmount, "cash_received",
			"dividend cash must be >= 0, got %v", cash)
	}
	return models.CorporateAction{
		Date:         date,
		Type:         models.ActionDividendCash,
		CashReceived: &cash,
	}, nil
}

// ValidateActions checks a caller-built event stream before replay. The
// replay loop itself trusts its input, so every constraint lives here:
// positive factors, non-negative amounts, and exactly one authoritative
// amount field per dividend.
func ValidateActions(actions []models.CorporateAction) error {
	for i, a := range actions {
		switch a.Type {
		case models.ActionBonus:
			if a.Factor <= 0 {
				return newError(KindInvalidShareCount, "factor",
					"action %d: split/bonus factor must be > 0, got %v", i, a.Factor)
			}
		case models.ActionDividendCash:
			if a.DividendPerShare != nil && a.CashReceived != nil {
				return newError(KindInvalidDividendAmount, "dividend_per_share",
					"action %d: both dividend_per_share and cash_received supplied", i)
			}
			if a.DividendPerShare == nil && a.CashReceived == nil {
				return newError(KindInvalidDividendAmount, "dividend_per_share",
					"action %d: neither dividend_per_share nor cash_received supplied", i)
			}
			if a.DividendPerShare != nil && *a.DividendPerShare < 0 {
				return newError(KindInvalidDividendAmount, "dividend_per_share",
					"action %d: dividend per share must be >= 0, got %v", i, *a.DividendPerShare)
			}
			if a.CashReceived != nil && *a.CashReceived < 0 {
				return newError(KindInvalidDividendAmount, "cash_received",
					"action %d: dividend cash must be >= 0, got %v", i, *a.CashReceived)
			}
		default:
			return fmt.Errorf("action %d: unknown corporate action type %q", i, a.Type)
		}
	}
	return nil
}
