// Package catalog maintains the exchange symbol list backing the symbol
// autocomplete search.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/interfaces"
	"github.com/stockreturns/stockreturns/internal/models"
)

const (
	// DefaultLimit is the number of matches returned when the caller does
	// not specify one.
	DefaultLimit = 10
	// MaxLimit bounds the result size regardless of what the caller asks for.
	MaxLimit = 25
)

// Service implements CatalogService over an in-memory symbol list with a
// file-cache behind it.
type Service struct {
	storage  interfaces.MarketDataStorage
	client   interfaces.MarketDataClient
	exchange string
	logger   *common.Logger

	mu      sync.RWMutex
	symbols []models.Symbol
}

// NewService creates a new catalog service for the given exchange.
func NewService(storage interfaces.MarketDataStorage, client interfaces.MarketDataClient, exchange string, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		client:   client,
		exchange: exchange,
		logger:   logger,
	}
}

// Refresh loads the symbol list, preferring the cached index when fresh.
func (s *Service) Refresh(ctx context.Context) error {
	if index, err := s.storage.GetSymbolIndex(ctx, s.exchange); err == nil && index != nil {
		if common.IsFresh(index.UpdatedAt, common.FreshnessSymbols) && len(index.Symbols) > 0 {
			s.setSymbols(index.Symbols)
			s.logger.Debug().Int("count", len(index.Symbols)).Str("exchange", s.exchange).Msg("Symbol catalog loaded from cache")
			return nil
		}
	}

	symbols, err := s.client.GetExchangeSymbols(ctx, s.exchange)
	if err != nil {
		return fmt.Errorf("failed to load symbols for %s: %w", s.exchange, err)
	}

	s.setSymbols(symbols)

	index := &models.SymbolIndex{
		Exchange:  s.exchange,
		Symbols:   symbols,
		UpdatedAt: time.Now(),
	}
	if err := s.storage.SaveSymbolIndex(ctx, index); err != nil {
		s.logger.Warn().Err(err).Str("exchange", s.exchange).Msg("Failed to cache symbol index")
	}

	s.logger.Info().Int("count", len(symbols)).Str("exchange", s.exchange).Msg("Symbol catalog refreshed")
	return nil
}

func (s *Service) setSymbols(symbols []models.Symbol) {
	sorted := make([]models.Symbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	s.mu.Lock()
	s.symbols = sorted
	s.mu.Unlock()
}

// Search returns up to limit symbols matching the query. Code prefix matches
// rank ahead of substring matches on code or name.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Symbol, error) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	s.mu.RLock()
	symbols := s.symbols
	s.mu.RUnlock()

	var prefix, substring []models.Symbol
	for _, sym := range symbols {
		code := strings.ToUpper(sym.Code)
		switch {
		case strings.HasPrefix(code, q):
			prefix = append(prefix, sym)
		case strings.Contains(code, q) || strings.Contains(strings.ToUpper(sym.Name), q):
			substring = append(substring, sym)
		}
		if len(prefix) >= limit {
			break
		}
	}

	results := prefix
	for _, sym := range substring {
		if len(results) >= limit {
			break
		}
		results = append(results, sym)
	}

	return results, nil
}
