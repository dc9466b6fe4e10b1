package marketfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return store
}

func TestMarketDataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	md := &models.MarketData{
		Symbol:   "RELIANCE.NSE",
		Exchange: "NSE",
		EOD: []models.EODBar{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 120000},
		},
		Dividends: []models.DividendPayment{
			{Date: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), PerShare: 28, Currency: "INR"},
		},
		Splits: []models.StockSplit{
			{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Factor: 2},
		},
		EODUpdatedAt: time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
	}

	if err := store.SaveMarketData(ctx, md); err != nil {
		t.Fatalf("SaveMarketData error: %v", err)
	}

	got, err := store.GetMarketData(ctx, "RELIANCE.NSE")
	if err != nil {
		t.Fatalf("GetMarketData error: %v", err)
	}
	if got.Symbol != "RELIANCE.NSE" || len(got.EOD) != 1 || len(got.Dividends) != 1 || len(got.Splits) != 1 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Splits[0].Factor != 2 {
		t.Errorf("split factor = %v, want 2", got.Splits[0].Factor)
	}
	if !got.EODUpdatedAt.Equal(md.EODUpdatedAt) {
		t.Errorf("eod_updated_at = %v, want %v", got.EODUpdatedAt, md.EODUpdatedAt)
	}
}

func TestGetMarketData_Missing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetMarketData(context.Background(), "NOPE.NSE"); err == nil {
		t.Error("GetMarketData for a missing symbol succeeded")
	}
}

func TestSaveMarketData_RequiresSymbol(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveMarketData(context.Background(), &models.MarketData{}); err == nil {
		t.Error("SaveMarketData accepted market data without a symbol")
	}
}

func TestSymbolIndexRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	index := &models.SymbolIndex{
		Exchange: "NSE",
		Symbols: []models.Symbol{
			{Code: "RELIANCE", Name: "Reliance Industries Limited"},
			{Code: "TCS", Name: "Tata Consultancy Services Limited"},
		},
		UpdatedAt: time.Now().UTC(),
	}

	if err := store.SaveSymbolIndex(ctx, index); err != nil {
		t.Fatalf("SaveSymbolIndex error: %v", err)
	}

	got, err := store.GetSymbolIndex(ctx, "nse")
	if err != nil {
		t.Fatalf("GetSymbolIndex error: %v", err)
	}
	if got.Exchange != "NSE" || len(got.Symbols) != 2 {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"reliance.nse", "RELIANCE.NSE"},
		{"BRK/A", "BRK_A"},
		{"  tcs.nse ", "TCS.NSE"},
		{"../etc/passwd", "__ETC_PASSWD"},
	}

	for _, tc := range cases {
		if got := sanitizeKey(tc.in); got != tc.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteIsAtomic(t *testing.T) {
	// A save leaves no temp files behind.
	store := newTestStore(t)

	md := &models.MarketData{Symbol: "ATOMIC.NSE"}
	if err := store.SaveMarketData(context.Background(), md); err != nil {
		t.Fatalf("SaveMarketData error: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(store.DataPath(), "market"))
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "ATOMIC.NSE.json" {
			t.Errorf("unexpected file %s in market dir", e.Name())
		}
	}
}
