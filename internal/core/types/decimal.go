// Package types provides the numeric value types of the ledger.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents an unsigned monetary value with full precision.
type Money = decimal.Decimal

// Quantity is a stock quantity. Positive means inward, negative outward.
type Quantity = decimal.Decimal

// Rate is a per-unit price.
type Rate = decimal.Decimal

// Tolerance is the absolute rounding tolerance for balance checks (0.01).
var Tolerance = decimal.New(1, -2)

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// IsNegligible reports whether |d| is below Tolerance.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}
