// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Add API key
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Trace().Str("path", path).Msg("EODHD request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}

	return nil
}

// eodResponse is a single bar as returned by the /eod endpoint
type eodResponse struct {
	Date     string      `json:"date"`
	Open     flexFloat64 `json:"open"`
	High     flexFloat64 `json:"high"`
	Low      flexFloat64 `json:"low"`
	Close    flexFloat64 `json:"close"`
	AdjClose flexFloat64 `json:"adjusted_close"`
	Volume   int64       `json:"volume"`
}

// GetEOD retrieves end-of-day price bars, ascending by date
func (c *Client) GetEOD(ctx context.Context, symbol string, from, to time.Time) ([]models.EODBar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format(models.DateOnly))
	}
	if !to.IsZero() {
		params.Set("to", to.Format(models.DateOnly))
	}

	var raw []eodResponse
	if err := c.get(ctx, "/eod/"+url.PathEscape(symbol), params, &raw); err != nil {
		return nil, err
	}

	bars := make([]models.EODBar, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(models.DateOnly, r.Date)
		if err != nil {
			c.logger.Warn().Str("symbol", symbol).Str("date", r.Date).Msg("Skipping bar with unparseable date")
			continue
		}
		bars = append(bars, models.EODBar{
			Date:     d,
			Open:     float64(r.Open),
			High:     float64(r.High),
			Low:      float64(r.Low),
			Close:    float64(r.Close),
			AdjClose: float64(r.AdjClose),
			Volume:   r.Volume,
		})
	}

	return bars, nil
}

// dividendResponse is a single payment as returned by the /div endpoint
type dividendResponse struct {
	Date     string      `json:"date"`
	Value    flexFloat64 `json:"value"`
	Currency string      `json:"currency"`
}

// GetDividends retrieves cash dividends with ex-dates in the given range
func (c *Client) GetDividends(ctx context.Context, symbol string, from, to time.Time) ([]models.DividendPayment, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.Format(models.DateOnly))
	}
	if !to.IsZero() {
		params.Set("to", to.Format(models.DateOnly))
	}

	var raw []dividendResponse
	if err := c.get(ctx, "/div/"+url.PathEscape(symbol), params, &raw); err != nil {
		return nil, err
	}

	dividends := make([]models.DividendPayment, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(models.DateOnly, r.Date)
		if err != nil {
			continue
		}
		dividends = append(dividends, models.DividendPayment{
			Date:     d,
			PerShare: float64(r.Value),
			Currency: r.Currency,
		})
	}

	return dividends, nil
}

// splitResponse is a single split as returned by the /splits endpoint.
// Split is a ratio string like "2.000000/1.000000".
type splitResponse struct {
	Date  string `json:"date"`
	Split string `json:"split"`
}

// GetSplits retrieves splits and bonus issues with dates in the given range
func (c *Client) GetSplits(ctx context.Context, symbol string, from, to time.Time) ([]models.StockSplit, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.Format(models.DateOnly))
	}
	if !to.IsZero() {
		params.Set("to", to.Format(models.DateOnly))
	}

	var raw []splitResponse
	if err := c.get(ctx, "/splits/"+url.PathEscape(symbol), params, &raw); err != nil {
		return nil, err
	}

	splits := make([]models.StockSplit, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(models.DateOnly, r.Date)
		if err != nil {
			continue
		}
		factor, err := parseSplitRatio(r.Split)
		if err != nil {
			c.logger.Warn().Str("symbol", symbol).Str("split", r.Split).Msg("Skipping unparseable split ratio")
			continue
		}
		splits = append(splits, models.StockSplit{Date: d, Factor: factor})
	}

	return splits, nil
}

// parseSplitRatio converts "2.000000/1.000000" into the share multiplier 2.
func parseSplitRatio(s string) (float64, error) {
	numStr, denStr, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, fmt.Errorf("split ratio %q is not of the form n/d", s)
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("split ratio %q: %w", s, err)
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(denStr), 64)
	if err != nil {
		return 0, fmt.Errorf("split ratio %q: %w", s, err)
	}
	if num <= 0 || den <= 0 {
		return 0, fmt.Errorf("split ratio %q has non-positive terms", s)
	}
	return num / den, nil
}

// symbolResponse is a single listing as returned by /exchange-symbol-list
type symbolResponse struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"`
}

// GetExchangeSymbols retrieves all listed symbols for an exchange
func (c *Client) GetExchangeSymbols(ctx context.Context, exchange string) ([]models.Symbol, error) {
	var raw []symbolResponse
	if err := c.get(ctx, "/exchange-symbol-list/"+url.PathEscape(exchange), nil, &raw); err != nil {
		return nil, err
	}

	symbols := make([]models.Symbol, 0, len(raw))
	for _, r := range raw {
		if r.Code == "" {
			continue
		}
		symbols = append(symbols, models.Symbol{
			Code:     r.Code,
			Name:     r.Name,
			Exchange: r.Exchange,
			Currency: r.Currency,
		})
	}

	return symbols, nil
}
