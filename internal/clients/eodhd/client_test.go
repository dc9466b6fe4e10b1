package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockreturns/stockreturns/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestGetEOD(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eod/RELIANCE.NSE" {
			t.Errorf("path = %s, want /eod/RELIANCE.NSE", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_token") != "test-token" {
			t.Errorf("api_token = %q, want test-token", q.Get("api_token"))
		}
		if q.Get("fmt") != "json" || q.Get("period") != "d" || q.Get("order") != "a" {
			t.Errorf("query = %v, want fmt=json period=d order=a", q)
		}
		if q.Get("from") != "2024-01-01" || q.Get("to") != "2024-12-31" {
			t.Errorf("range = %s..%s", q.Get("from"), q.Get("to"))
		}

		// close as a string exercises the lenient number decoding
		w.Write([]byte(`[
			{"date":"2024-01-01","open":98.5,"high":101,"low":98,"close":100,"adjusted_close":100,"volume":120000},
			{"date":"2024-01-02","open":100,"high":103,"low":99,"close":"102.5","adjusted_close":102.5,"volume":98000},
			{"date":"bad-date","close":50}
		]`))
	})

	bars, err := client.GetEOD(context.Background(), "RELIANCE.NSE",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetEOD error: %v", err)
	}

	// The unparseable date row is skipped.
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}
	if bars[0].Close != 100 || bars[1].Close != 102.5 {
		t.Errorf("closes = %v, %v; want 100, 102.5", bars[0].Close, bars[1].Close)
	}
	if bars[1].Date.Format(models.DateOnly) != "2024-01-02" {
		t.Errorf("second bar date = %s", bars[1].Date.Format(models.DateOnly))
	}
}

func TestGetDividends(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/div/TCS.NSE" {
			t.Errorf("path = %s, want /div/TCS.NSE", r.URL.Path)
		}
		w.Write([]byte(`[
			{"date":"2024-05-15","value":28,"currency":"INR"},
			{"date":"2024-11-10","value":"10.5","currency":"INR"}
		]`))
	})

	dividends, err := client.GetDividends(context.Background(), "TCS.NSE", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetDividends error: %v", err)
	}
	if len(dividends) != 2 {
		t.Fatalf("dividends = %d, want 2", len(dividends))
	}
	if dividends[0].PerShare != 28 || dividends[1].PerShare != 10.5 {
		t.Errorf("per-share = %v, %v; want 28, 10.5", dividends[0].PerShare, dividends[1].PerShare)
	}
	if dividends[0].Currency != "INR" {
		t.Errorf("currency = %q, want INR", dividends[0].Currency)
	}
}

func TestGetSplits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date":"2024-06-01","split":"2.000000/1.000000"},
			{"date":"2024-09-01","split":"not-a-ratio"}
		]`))
	})

	splits, err := client.GetSplits(context.Background(), "RELIANCE.NSE", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetSplits error: %v", err)
	}
	// The unparseable ratio is skipped.
	if len(splits) != 1 {
		t.Fatalf("splits = %d, want 1", len(splits))
	}
	if splits[0].Factor != 2 {
		t.Errorf("factor = %v, want 2", splits[0].Factor)
	}
}

func TestParseSplitRatio(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2.000000/1.000000", 2, false},
		{"1.000000/2.000000", 0.5, false},
		{"5/4", 1.25, false},
		{" 3 / 1 ", 3, false},
		{"2", 0, true},
		{"a/b", 0, true},
		{"0/1", 0, true},
		{"2/-1", 0, true},
	}

	for _, tc := range cases {
		got, err := parseSplitRatio(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseSplitRatio(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSplitRatio(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseSplitRatio(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGetExchangeSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchange-symbol-list/NSE" {
			t.Errorf("path = %s, want /exchange-symbol-list/NSE", r.URL.Path)
		}
		w.Write([]byte(`[
			{"Code":"RELIANCE","Name":"Reliance Industries Limited","Exchange":"NSE","Currency":"INR","Type":"Common Stock"},
			{"Code":"","Name":"Ghost Entry"},
			{"Code":"TCS","Name":"Tata Consultancy Services Limited","Exchange":"NSE","Currency":"INR","Type":"Common Stock"}
		]`))
	})

	symbols, err := client.GetExchangeSymbols(context.Background(), "NSE")
	if err != nil {
		t.Fatalf("GetExchangeSymbols error: %v", err)
	}
	// The codeless row is dropped.
	if len(symbols) != 2 {
		t.Fatalf("symbols = %d, want 2", len(symbols))
	}
	if symbols[0].Code != "RELIANCE" || symbols[1].Code != "TCS" {
		t.Errorf("codes = %s, %s", symbols[0].Code, symbols[1].Code)
	}
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("You have exceeded your daily API limit"))
	})

	_, err := client.GetEOD(context.Background(), "RELIANCE.NSE", time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("GetEOD succeeded, want API error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", apiErr.StatusCode)
	}
	if apiErr.Message != "You have exceeded your daily API limit" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
