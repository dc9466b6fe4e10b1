// Package models defines data structures for the stockreturns service
package models

import (
	"time"
)

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// DividendPayment is a cash dividend declared per share on a given ex-date.
type DividendPayment struct {
	Date     time.Time `json:"date"`
	PerShare float64   `json:"per_share"`
	Currency string    `json:"currency,omitempty"`
}

// StockSplit is a split or bonus issue. Factor is the share multiplier
// (new shares per old share): 2 for a 2-for-1 split, 0.5 for a 1-for-2
// reverse split.
type StockSplit struct {
	Date   time.Time `json:"date"`
	Factor float64   `json:"factor"`
}

// MarketData holds all cached market data for a symbol
type MarketData struct {
	Symbol    string            `json:"symbol"`
	Exchange  string            `json:"exchange"`
	Name      string            `json:"name"`
	EOD       []EODBar          `json:"eod"`
	Dividends []DividendPayment `json:"dividends,omitempty"`
	Splits    []StockSplit      `json:"splits,omitempty"`
	// Per-component freshness timestamps
	EODUpdatedAt     time.Time `json:"eod_updated_at"`
	ActionsUpdatedAt time.Time `json:"actions_updated_at"`
}

// Symbol identifies a listed instrument in the catalog.
type Symbol struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// SymbolIndex is the cached exchange symbol list used by the catalog.
type SymbolIndex struct {
	Exchange  string    `json:"exchange"`
	Symbols   []Symbol  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}
