package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/models"
	"github.com/stockreturns/stockreturns/internal/storage/marketfs"
)

type fakeClient struct {
	symbols []models.Symbol
	err     error
	calls   int
}

func (f *fakeClient) GetEOD(ctx context.Context, symbol string, from, to time.Time) ([]models.EODBar, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GetDividends(ctx context.Context, symbol string, from, to time.Time) ([]models.DividendPayment, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GetSplits(ctx context.Context, symbol string, from, to time.Time) ([]models.StockSplit, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GetExchangeSymbols(ctx context.Context, exchange string) ([]models.Symbol, error) {
	f.calls++
	return f.symbols, f.err
}

func nseSymbols() []models.Symbol {
	return []models.Symbol{
		{Code: "RELIANCE", Name: "Reliance Industries Limited", Exchange: "NSE"},
		{Code: "TCS", Name: "Tata Consultancy Services Limited", Exchange: "NSE"},
		{Code: "TATAMOTORS", Name: "Tata Motors Limited", Exchange: "NSE"},
		{Code: "INFY", Name: "Infosys Limited", Exchange: "NSE"},
		{Code: "HDFCBANK", Name: "HDFC Bank Limited", Exchange: "NSE"},
	}
}

func newTestService(t *testing.T, client *fakeClient) (*Service, *marketfs.Store) {
	t.Helper()
	logger := common.NewSilentLogger()
	store, err := marketfs.NewStore(logger, t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return NewService(store, client, "NSE", logger), store
}

func TestRefresh_FetchesAndCaches(t *testing.T) {
	client := &fakeClient{symbols: nseSymbols()}
	svc, store := newTestService(t, client)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("client called %d times, want 1", client.calls)
	}

	index, err := store.GetSymbolIndex(context.Background(), "NSE")
	if err != nil {
		t.Fatalf("GetSymbolIndex error: %v", err)
	}
	if len(index.Symbols) != 5 {
		t.Errorf("cached symbols = %d, want 5", len(index.Symbols))
	}
}

func TestRefresh_UsesFreshCache(t *testing.T) {
	client := &fakeClient{err: errors.New("client must not be called")}
	svc, store := newTestService(t, client)

	index := &models.SymbolIndex{
		Exchange:  "NSE",
		Symbols:   nseSymbols(),
		UpdatedAt: time.Now(),
	}
	if err := store.SaveSymbolIndex(context.Background(), index); err != nil {
		t.Fatalf("SaveSymbolIndex error: %v", err)
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times, want 0 with a fresh index", client.calls)
	}

	results, err := svc.Search(context.Background(), "TCS", 0)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 1 || results[0].Code != "TCS" {
		t.Errorf("Search(TCS) = %+v, want the TCS entry", results)
	}
}

func TestRefresh_IgnoresStaleCache(t *testing.T) {
	client := &fakeClient{symbols: nseSymbols()}
	svc, store := newTestService(t, client)

	index := &models.SymbolIndex{
		Exchange:  "NSE",
		Symbols:   []models.Symbol{{Code: "OLD", Name: "Delisted Co"}},
		UpdatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	if err := store.SaveSymbolIndex(context.Background(), index); err != nil {
		t.Fatalf("SaveSymbolIndex error: %v", err)
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("client called %d times, want 1 for a stale index", client.calls)
	}
}

func TestSearch_PrefixBeforeSubstring(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})
	svc.setSymbols(nseSymbols())

	results, err := svc.Search(context.Background(), "tata", 10)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	// TATAMOTORS is a code prefix match, TCS matches on name only.
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Code != "TATAMOTORS" {
		t.Errorf("first result = %s, want prefix match TATAMOTORS", results[0].Code)
	}
	if results[1].Code != "TCS" {
		t.Errorf("second result = %s, want name match TCS", results[1].Code)
	}
}

func TestSearch_Limits(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	many := make([]models.Symbol, 50)
	for i := range many {
		many[i] = models.Symbol{Code: "SYM" + string(rune('A'+i%26)) + string(rune('A'+i/26))}
	}
	svc.setSymbols(many)

	results, _ := svc.Search(context.Background(), "SYM", 0)
	if len(results) != DefaultLimit {
		t.Errorf("default limit results = %d, want %d", len(results), DefaultLimit)
	}

	results, _ = svc.Search(context.Background(), "SYM", 100)
	if len(results) != MaxLimit {
		t.Errorf("clamped results = %d, want %d", len(results), MaxLimit)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})
	svc.setSymbols(nseSymbols())

	results, err := svc.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if results != nil {
		t.Errorf("blank query returned %d results, want none", len(results))
	}
}
