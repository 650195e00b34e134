package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency-agnostic decimal magnitude.
// It is written to JSON as a bare number and to SQL as text.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromFloat converts a float (e.g. from an extractor response) to an Amount.
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// Bounds on the magnitude and precision of an Amount. Exponent notation
// otherwise lets a short input expand into millions of digits.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 18
)

// ParseAmount parses caller input such as "90", "12.50" or " 7 ".
// Anything that is not a finite decimal number within the digit bounds is
// rejected with ErrInvalidAmount. Sign is not checked here; see
// ledger.WithStrictAmounts.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := checkRange(d); err != nil {
		return Amount{}, fmt.Errorf("%w: %q %v", ErrInvalidAmount, s, err)
	}
	return Amount{Decimal: d}, nil
}

// checkRange looks only at the exponent and coefficient length, so it stays
// cheap for inputs like "1e400000000".
func checkRange(d decimal.Decimal) error {
	exp := int64(d.Exponent())
	if exp < -MaxFractionDigits {
		return fmt.Errorf("has more than %d fractional digits", MaxFractionDigits)
	}
	if exp > MaxIntegerDigits || int64(d.NumDigits())+exp > MaxIntegerDigits {
		return fmt.Errorf("has more than %d integer digits", MaxIntegerDigits)
	}
	return nil
}

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted numbers within the digit bounds.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	if err := checkRange(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	a.Decimal = d
	return nil
}
