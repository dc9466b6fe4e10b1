package models

import (
	"fmt"
	"strings"
	"time"
)

// ReturnMode controls what happens to dividend cash during replay.
type ReturnMode string

const (
	// ModeReinvest converts dividend cash into additional shares at the
	// closing price on the event date.
	ModeReinvest ReturnMode = "reinvest"
	// ModeAccumulate keeps dividend cash as a running balance.
	ModeAccumulate ReturnMode = "accumulate"
)

// ParseReturnMode parses the dividend_mode query value.
func ParseReturnMode(s string) (ReturnMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reinvest":
		return ModeReinvest, nil
	case "accumulate":
		return ModeAccumulate, nil
	default:
		return "", fmt.Errorf("unknown dividend mode %q (want reinvest or accumulate)", s)
	}
}

// Corporate action types as they appear on the wire.
const (
	ActionBonus        = "BONUS"
	ActionDividendCash = "DIVIDEND_CASH"
)

// Date is a calendar date marshaling as "2006-01-02" on the wire.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateOnly) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateOnly, s)
	if err != nil {
		return err
	}
	*d = Date{t}
	return nil
}

// CorporateAction is a single split/bonus or cash dividend event.
//
// For DIVIDEND_CASH inputs exactly one of DividendPerShare or CashReceived
// must be set; the replay annotates the other on its output copy along with
// TotalCash and the surrounding share counts.
type CorporateAction struct {
	Date             Date     `json:"date"`
	Type             string   `json:"type"`
	Factor           float64  `json:"factor,omitempty"`
	DividendPerShare *float64 `json:"dividend_per_share,omitempty"`
	CashReceived     *float64 `json:"cash_received,omitempty"`
	TotalCash        float64  `json:"total_cash,omitempty"`
	SharesBefore     float64  `json:"shares_before,omitempty"`
	SharesAfter      float64  `json:"shares_after,omitempty"`
}

// Position is a holding at an instant: a share count and a cash balance.
type Position struct {
	Shares float64 `json:"shares"`
	Cash   float64 `json:"cash"`
}

// AttributionResult is the engine's output, shaped field-for-field like the
// payload the presentation layer consumes.
type AttributionResult struct {
	Symbol string `json:"symbol"`
	From   Date   `json:"from"`
	To     Date   `json:"to"`

	InitialShares float64 `json:"initial_shares"`
	FinalShares   float64 `json:"final_shares"`

	StartPrice float64 `json:"start_price"`
	EndPrice   float64 `json:"end_price"`

	InitialValue float64 `json:"initial_value"`
	FinalValue   float64 `json:"final_value"`
	CashBalance  float64 `json:"cash_balance"`

	PriceGain    float64 `json:"price_gain"`
	DividendGain float64 `json:"dividend_gain"`
	TotalGain    float64 `json:"total_gain"`
	TotalGainPct float64 `json:"total_gain_pct"`

	// CAGRPct is nil when the value ratio is non-positive and an annualised
	// rate is undefined. Display-only; not required to round-trip.
	CAGRPct *float64 `json:"cagr_pct,omitempty"`

	CorporateActions []CorporateAction `json:"corporate_actions"`
}

// ValuePoint is one sample on the portfolio value timeline used for charts.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateOnly is the wire format for calendar dates.
const DateOnly = "2006-01-02"
