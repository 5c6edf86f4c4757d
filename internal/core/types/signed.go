package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// SignedMoney is an amount carrying the ledger sign convention:
// positive is debit, negative is credit.
//
// Every ledger opening balance, entry amount and computed balance is a SignedMoney.
// Conversions from external conventions go through FromExternal exactly once.
type SignedMoney struct {
	d decimal.Decimal
}

// Dr returns a debit of the given magnitude.
func Dr(amount Money) SignedMoney {
	return SignedMoney{d: amount.Abs()}
}

// Cr returns a credit of the given magnitude.
func Cr(amount Money) SignedMoney {
	return SignedMoney{d: amount.Abs().Neg()}
}

// Signed wraps a decimal that already follows the Dr-positive convention.
func Signed(d decimal.Decimal) SignedMoney {
	return SignedMoney{d: d}
}

// FromExternal converts an amount written in the opposite polarity
// (debit negative, as in Tally exports) into the internal convention.
func FromExternal(d decimal.Decimal) SignedMoney {
	return SignedMoney{d: d.Neg()}
}

// ParseSigned parses a Dr-positive decimal string.
func ParseSigned(s string) (SignedMoney, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return SignedMoney{}, fmt.Errorf("parse signed amount %q: %w", s, err)
	}
	return SignedMoney{d: d}, nil
}

// MustSigned parses s and panics on error. Use only in tests.
func MustSigned(s string) SignedMoney {
	m, err := ParseSigned(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m SignedMoney) Decimal() decimal.Decimal { return m.d }

func (m SignedMoney) Add(o SignedMoney) SignedMoney { return SignedMoney{d: m.d.Add(o.d)} }

func (m SignedMoney) Sub(o SignedMoney) SignedMoney { return SignedMoney{d: m.d.Sub(o.d)} }

func (m SignedMoney) Neg() SignedMoney { return SignedMoney{d: m.d.Neg()} }

func (m SignedMoney) IsDebit() bool { return m.d.IsPositive() }

func (m SignedMoney) IsCredit() bool { return m.d.IsNegative() }

func (m SignedMoney) IsZero() bool { return m.d.IsZero() }

// IsNegligible reports whether the amount is within Tolerance of zero.
func (m SignedMoney) IsNegligible() bool { return IsNegligible(m.d) }

func (m SignedMoney) Equal(o SignedMoney) bool { return m.d.Equal(o.d) }

// Abs returns the unsigned magnitude.
func (m SignedMoney) Abs() Money { return m.d.Abs() }

// DebitPart returns the magnitude when the amount is a debit, else zero.
func (m SignedMoney) DebitPart() Money {
	if m.d.IsPositive() {
		return m.d
	}
	return decimal.Zero
}

// CreditPart returns the magnitude when the amount is a credit, else zero.
func (m SignedMoney) CreditPart() Money {
	if m.d.IsNegative() {
		return m.d.Neg()
	}
	return decimal.Zero
}

// String renders the amount with a Dr/Cr suffix, e.g. "1500.00 Dr".
func (m SignedMoney) String() string {
	switch {
	case m.d.IsPositive():
		return m.d.StringFixed(2) + " Dr"
	case m.d.IsNegative():
		return m.d.Neg().StringFixed(2) + " Cr"
	default:
		return "0.00"
	}
}

// MarshalJSON encodes the signed decimal as a JSON string.
func (m SignedMoney) MarshalJSON() ([]byte, error) {
	return m.d.MarshalJSON()
}

// UnmarshalJSON accepts a JSON number or string.
func (m *SignedMoney) UnmarshalJSON(data []byte) error {
	return m.d.UnmarshalJSON(data)
}

// Scan implements sql.Scanner so the type maps onto NUMERIC columns.
func (m *SignedMoney) Scan(value any) error {
	return m.d.Scan(value)
}

// Value implements driver.Valuer.
func (m SignedMoney) Value() (driver.Value, error) {
	return m.d.Value()
}
