package interfaces

import (
	"context"

	"github.com/stockreturns/stockreturns/internal/models"
)

// MarketDataStorage caches per-symbol market data between requests.
type MarketDataStorage interface {
	// GetMarketData retrieves cached market data for a symbol
	GetMarketData(ctx context.Context, symbol string) (*models.MarketData, error)

	// SaveMarketData persists market data for a symbol
	SaveMarketData(ctx context.Context, data *models.MarketData) error

	// GetSymbolIndex retrieves the cached exchange symbol list
	GetSymbolIndex(ctx context.Context, exchange string) (*models.SymbolIndex, error)

	// SaveSymbolIndex persists the exchange symbol list
	SaveSymbolIndex(ctx context.Context, index *models.SymbolIndex) error

	// Close releases storage resources
	Close() error
}
