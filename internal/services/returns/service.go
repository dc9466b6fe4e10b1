package returns

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/interfaces"
	"github.com/stockreturns/stockreturns/internal/models"
)

// ErrNoPriceData is returned when the market data source has no usable price
// bars inside the requested period.
var ErrNoPriceData = errors.New("no price data for period")

// Service implements ReturnsService: it resolves market data for a symbol and
// feeds the attribution engine. The engine stays pure; all I/O lives here.
type Service struct {
	storage interfaces.MarketDataStorage
	client  interfaces.MarketDataClient
	logger  *common.Logger
}

// NewService creates a new returns service
func NewService(storage interfaces.MarketDataStorage, client interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		client:  client,
		logger:  logger,
	}
}

// CalculateReturns resolves prices and corporate actions for the symbol and
// runs the engine over the period.
func (s *Service) CalculateReturns(ctx context.Context, req interfaces.ReturnsRequest) (*models.AttributionResult, error) {
	result, _, err := s.calculate(ctx, req)
	return result, err
}

// ValueSeries returns the portfolio value timeline for charting: the period
// start, one point per corporate action, and the period end.
func (s *Service) ValueSeries(ctx context.Context, req interfaces.ReturnsRequest) ([]models.ValuePoint, *models.AttributionResult, error) {
	result, bars, err := s.calculate(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	priceAt := PriceFuncFromBars(bars)

	points := []models.ValuePoint{
		{Date: result.From.Time, Value: result.InitialValue},
	}
	for _, a := range result.CorporateActions {
		price, ok := priceAt(a.Date.Time)
		if !ok {
			continue
		}
		cash := 0.0
		if req.Mode == models.ModeAccumulate {
			cash = a.TotalCash
		}
		points = append(points, models.ValuePoint{
			Date:  a.Date.Time,
			Value: a.SharesAfter*price + cash,
		})
	}
	points = append(points, models.ValuePoint{Date: result.To.Time, Value: result.FinalValue})

	return points, result, nil
}

func (s *Service) calculate(ctx context.Context, req interfaces.ReturnsRequest) (*models.AttributionResult, []models.EODBar, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	// Reject a reversed or empty period before touching market data.
	if !req.To.After(req.From) {
		return nil, nil, newError(KindInvalidPeriod, "to",
			"period end %s must be after start %s",
			req.To.Format(models.DateOnly), req.From.Format(models.DateOnly))
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Str("from", req.From.Format(models.DateOnly)).
		Str("to", req.To.Format(models.DateOnly)).
		Float64("shares", req.InitialShares).
		Str("mode", string(req.Mode)).
		Msg("Calculating returns")

	md, err := s.loadMarketData(ctx, symbol, req.From, req.To)
	if err != nil {
		return nil, nil, err
	}

	startPrice, startDate, ok := closingPriceOnOrAfter(md.EOD, req.From)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no bars on or after %s", ErrNoPriceData, symbol, req.From.Format(models.DateOnly))
	}
	endPrice, _, ok := closingPriceAsOf(md.EOD, req.To)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no bars on or before %s", ErrNoPriceData, symbol, req.To.Format(models.DateOnly))
	}
	if startDate.After(req.To) {
		return nil, nil, fmt.Errorf("%w: %s has no bars inside the period", ErrNoPriceData, symbol)
	}

	actions, err := buildActions(md, req.From, req.To)
	if err != nil {
		return nil, nil, err
	}

	result, err := Calculate(Request{
		Symbol:        symbol,
		From:          req.From,
		To:            req.To,
		InitialShares: req.InitialShares,
		StartPrice:    startPrice,
		EndPrice:      endPrice,
		Actions:       actions,
		Mode:          req.Mode,
		PriceAt:       PriceFuncFromBars(md.EOD),
	})
	if err != nil {
		return nil, nil, err
	}

	return result, md.EOD, nil
}

// buildActions converts cached splits and dividends inside [from, to) into a
// chronological event stream. Splits are listed ahead of dividends so that a
// same-day ex-dividend applies to the post-split share count; the stable sort
// keeps that order for equal dates.
func buildActions(md *models.MarketData, from, to time.Time) ([]models.CorporateAction, error) {
	var actions []models.CorporateAction

	inWindow := func(d time.Time) bool {
		return !d.Before(from) && d.Before(to)
	}

	for _, sp := range md.Splits {
		if !inWindow(sp.Date) {
			continue
		}
		a, err := NewBonus(models.DateOf(sp.Date), sp.Factor)
		if err != nil {
			return nil, fmt.Errorf("split on %s: %w", sp.Date.Format(models.DateOnly), err)
		}
		actions = append(actions, a)
	}

	for _, d := range md.Dividends {
		if !inWindow(d.Date) {
			continue
		}
		a, err := NewCashDividendPerShare(models.DateOf(d.Date), d.PerShare)
		if err != nil {
			return nil, fmt.Errorf("dividend on %s: %w", d.Date.Format(models.DateOnly), err)
		}
		actions = append(actions, a)
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date.Time)
	})

	return actions, nil
}

// loadMarketData returns cached market data for the symbol, refreshing stale
// or incomplete components from the client.
func (s *Service) loadMarketData(ctx context.Context, symbol string, from, to time.Time) (*models.MarketData, error) {
	md, err := s.storage.GetMarketData(ctx, symbol)
	if err != nil || md == nil {
		md = &models.MarketData{Symbol: symbol}
	}

	dirty := false

	if !common.IsFresh(md.EODUpdatedAt, common.FreshnessEOD) || !coversRange(md.EOD, from, to) {
		bars, err := s.client.GetEOD(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to get EOD data for %s: %w", symbol, err)
		}
		md.EOD = bars
		md.EODUpdatedAt = time.Now()
		dirty = true
	}

	if !common.IsFresh(md.ActionsUpdatedAt, common.FreshnessActions) {
		dividends, err := s.client.GetDividends(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to get dividends for %s: %w", symbol, err)
		}
		splits, err := s.client.GetSplits(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to get splits for %s: %w", symbol, err)
		}
		md.Dividends = dividends
		md.Splits = splits
		md.ActionsUpdatedAt = time.Now()
		dirty = true
	}

	if dirty {
		if err := s.storage.SaveMarketData(ctx, md); err != nil {
			// Cache write failures are not fatal to the calculation.
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache market data")
		}
	}

	return md, nil
}

// coversRange reports whether the cached bars span the requested period.
func coversRange(bars []models.EODBar, from, to time.Time) bool {
	if len(bars) == 0 {
		return false
	}
	first := bars[0].Date.Truncate(24 * time.Hour)
	last := bars[len(bars)-1].Date.Truncate(24 * time.Hour)
	// A week of slack at either end absorbs weekends, holidays, and listing
	// dates inside the period.
	return !first.After(from.AddDate(0, 0, 7)) && !last.Before(to.AddDate(0, 0, -7))
}
