// Package interfaces defines service contracts for the stockreturns service
package interfaces

import (
	"context"
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

// MarketDataClient provides access to an external market data source.
// The engine itself never calls this; the orchestration layer does.
type MarketDataClient interface {
	// GetEOD retrieves end-of-day price bars, ascending by date
	GetEOD(ctx context.Context, symbol string, from, to time.Time) ([]models.EODBar, error)

	// GetDividends retrieves cash dividends with ex-dates in [from, to)
	GetDividends(ctx context.Context, symbol string, from, to time.Time) ([]models.DividendPayment, error)

	// GetSplits retrieves splits and bonus issues with dates in [from, to)
	GetSplits(ctx context.Context, symbol string, from, to time.Time) ([]models.StockSplit, error)

	// GetExchangeSymbols retrieves all listed symbols for an exchange
	GetExchangeSymbols(ctx context.Context, exchange string) ([]models.Symbol, error)
}
