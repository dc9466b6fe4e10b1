package interfaces

import (
	"context"
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// ReturnsRequest carries the validated inputs for a returns calculation.
type ReturnsRequest struct {
	Symbol        string
	From          time.Time
	To            time.Time
	InitialShares float64
	Mode          models.ReturnMode
}

// ReturnsService computes return attribution for a holding over a period.
type ReturnsService interface {
	// CalculateReturns resolves market data for the symbol and runs the
	// attribution engine over the period.
	CalculateReturns(ctx context.Context, req ReturnsRequest) (*models.AttributionResult, error)

	// ValueSeries returns the portfolio value timeline for charting:
	// one point at the period start, one per corporate action, one at the end.
	ValueSeries(ctx context.Context, req ReturnsRequest) ([]models.ValuePoint, *models.AttributionResult, error)
}

// CatalogService answers symbol autocomplete queries.
type CatalogService interface {
	// Search returns up to limit symbols whose code or name contains the query
	Search(ctx context.Context, query string, limit int) ([]models.Symbol, error)

	// Refresh reloads the symbol list from the market data source
	Refresh(ctx context.Context) error
}
