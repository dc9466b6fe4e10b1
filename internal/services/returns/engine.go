package returns

import (
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// Request carries the full validated input record for one engine invocation.
// Actions must be sorted ascending by date; the engine preserves the given
// order for same-date events. PriceAt is only consulted under ModeReinvest.
type Request struct {
	Symbol        string
	From          time.Time
	To            time.Time
	InitialShares float64
	StartPrice    float64
	EndPrice      float64
	Actions       []models.CorporateAction
	Mode          models.ReturnMode
	PriceAt       PriceFunc
}

// Calculate runs the whole engine: boundary validation, corporate action
// replay, then gain attribution. It either returns a fully populated result
// or a single structured error, never a partial result.
func Calculate(req Request) (*models.AttributionResult, error) {
	// Period ordering is checked before anything else.
	if !req.To.After(req.From) {
		return nil, newError(KindInvalidPeriod, "to",
			"period end %s must be after start %s",
			req.To.Format(models.DateOnly), req.From.Format(models.DateOnly))
	}
	if req.StartPrice <= 0 {
		return nil, newError(KindInvalidPrice, "start_price", "start price must be > 0, got %v", req.StartPrice)
	}
	if req.EndPrice <= 0 {
		return nil, newError(KindInvalidPrice, "end_price", "end price must be > 0, got %v", req.EndPrice)
	}
	if req.InitialShares <= 0 {
		return nil, newError(KindInvalidShareCount, "initial_shares", "initial shares must be > 0, got %v", req.InitialShares)
	}
	if err := ValidateActions(req.Actions); err != nil {
		return nil, err
	}

	final, annotated, err := Process(req.InitialShares, req.Actions, req.Mode, req.PriceAt)
	if err != nil {
		return nil, err
	}

	result, err := Attribute(req.InitialShares, req.StartPrice, final, req.EndPrice, req.From, req.To)
	if err != nil {
		return nil, err
	}

	result.Symbol = req.Symbol
	result.From = models.DateOf(req.From)
	result.To = models.DateOf(req.To)
	result.CorporateActions = annotated

	return result, nil
}
