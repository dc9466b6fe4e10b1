package returns

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures. Every failure is reported synchronously to
// the caller; nothing is retried or clamped.
type Kind string

const (
	KindInvalidPeriod         Kind = "invalid_period"
	KindInvalidPrice          Kind = "invalid_price"
	KindInvalidShareCount     Kind = "invalid_share_count"
	KindInvalidDividendAmount Kind = "invalid_dividend_amount"
	KindMissingReferencePrice Kind = "missing_reference_price"
	KindDivisionByZero        Kind = "division_by_zero"
)

// Error is a structured engine failure carrying the kind and the offending
// field.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind Kind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of an engine error, or "" for any other error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
