package tallyxml

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/core/entity"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// ParseNumber reads the numeric part of a value such as "1,250.50",
// "10 Nos" or "6.00/Nos". Thousands separators and trailing unit text are
// ignored. An empty value is zero.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	num := leadingNumber.FindString(s)
	if num == "" {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	return decimal.NewFromString(num)
}

// ParseDate reads an 8-digit YYYYMMDD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return time.Time{}, fmt.Errorf("date %q is not YYYYMMDD", s)
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return t, nil
}

// ParseBool reads Tally's Yes/No flags.
func ParseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// VoucherType maps a declared voucher type name onto the ledger's types.
// Custom names such as "Sales GST" resolve by their base type.
func VoucherType(label string) (entity.VoucherType, error) {
	if t, ok := entity.ParseVoucherType(label); ok {
		return t, nil
	}
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "stock journal"):
		return entity.VoucherStockJournal, nil
	case strings.Contains(l, "sale"):
		return entity.VoucherSales, nil
	case strings.Contains(l, "purchase"):
		return entity.VoucherPurchase, nil
	case strings.Contains(l, "payment"):
		return entity.VoucherPayment, nil
	case strings.Contains(l, "receipt"):
		return entity.VoucherReceipt, nil
	case strings.Contains(l, "contra"):
		return entity.VoucherContra, nil
	case strings.Contains(l, "journal"):
		return entity.VoucherJournal, nil
	}
	return "", fmt.Errorf("unsupported voucher type %q", label)
}

var reservedNatures = map[string]entity.Nature{
	"capital account":          entity.NatureCapital,
	"reserves & surplus":       entity.NatureCapital,
	"loans (liability)":        entity.NatureLiability,
	"current liabilities":      entity.NatureLiability,
	"duties & taxes":           entity.NatureLiability,
	"provisions":               entity.NatureLiability,
	"sundry creditors":         entity.NatureLiability,
	"bank od a/c":              entity.NatureLiability,
	"secured loans":            entity.NatureLiability,
	"unsecured loans":          entity.NatureLiability,
	"suspense a/c":             entity.NatureLiability,
	"suspense account":         entity.NatureLiability,
	"branch / divisions":       entity.NatureLiability,
	"fixed assets":             entity.NatureAsset,
	"investments":              entity.NatureAsset,
	"current assets":           entity.NatureAsset,
	"bank accounts":            entity.NatureAsset,
	"cash-in-hand":             entity.NatureAsset,
	"deposits (asset)":         entity.NatureAsset,
	"loans & advances (asset)": entity.NatureAsset,
	"stock-in-hand":            entity.NatureAsset,
	"sundry debtors":           entity.NatureAsset,
	"misc. expenses (asset)":   entity.NatureAsset,
	"sales accounts":           entity.NatureIncome,
	"direct incomes":           entity.NatureIncome,
	"indirect incomes":         entity.NatureIncome,
	"purchase accounts":        entity.NatureExpense,
	"direct expenses":          entity.NatureExpense,
	"indirect expenses":        entity.NatureExpense,
}

// ReservedNature returns the nature of a predefined group name.
func ReservedNature(name string) (entity.Nature, bool) {
	n, ok := reservedNatures[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// FlagNature derives a nature from a group's revenue and polarity flags.
// It reports false when the flags are absent.
func (g *Group) FlagNature() (entity.Nature, bool) {
	if strings.TrimSpace(g.IsRevenue) == "" || strings.TrimSpace(g.IsDeemedPositive) == "" {
		return "", false
	}
	revenue, debit := ParseBool(g.IsRevenue), ParseBool(g.IsDeemedPositive)
	switch {
	case revenue && debit:
		return entity.NatureExpense, true
	case revenue:
		return entity.NatureIncome, true
	case debit:
		return entity.NatureAsset, true
	default:
		return entity.NatureLiability, true
	}
}
