// Package ledgertest builds in-memory books for service tests.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/voucher"
	"ledgerbook/internal/infrastructure/storage/memory"
	"ledgerbook/pkg/logger"
)

// Fixture is one company on a fresh memory store.
type Fixture struct {
	t testing.TB

	Ctx      context.Context
	Store    *memory.Store
	Masters  *masters.Service
	Vouchers *voucher.Service
	Company  *entity.Company

	// Maker and Checker are ordinary users; Admin is privileged.
	Maker   entity.Actor
	Checker entity.Actor
	Admin   entity.Actor
}

// New creates a company whose books start on booksStart.
func New(t testing.TB, booksStart time.Time) *Fixture {
	t.Helper()
	store := memory.New()
	f := &Fixture{
		t:       t,
		Ctx:     logger.WithLogger(context.Background(), logger.Nop()),
		Store:   store,
		Masters: masters.NewService(store, store),
		Maker:   entity.Actor{UserID: id.New()},
		Checker: entity.Actor{UserID: id.New()},
		Admin:   entity.Actor{UserID: id.New(), Privileged: true},
	}
	f.Vouchers = voucher.NewService(store.Vouchers(), store, store, store.Numerator())
	f.Company = entity.NewCompany("Test Traders", booksStart)
	require.NoError(t, f.Masters.CreateCompany(f.Ctx, f.Company))
	return f
}

// Date is a UTC calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to a date.
func Ptr(t time.Time) *time.Time {
	return &t
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Group creates an account group.
func (f *Fixture) Group(name string, nature entity.Nature) *entity.Group {
	f.t.Helper()
	g := entity.NewGroup(f.Company.ID, name, nature)
	require.NoError(f.t, f.Masters.Groups.Create(f.Ctx, g))
	return g
}

// Ledger creates a ledger with a Dr-positive opening balance.
func (f *Fixture) Ledger(name string, g *entity.Group, opening string) *entity.Ledger {
	f.t.Helper()
	l := entity.NewLedger(f.Company.ID, g.ID, name, types.MustSigned(opening))
	require.NoError(f.t, f.Masters.Ledgers.Create(f.Ctx, l))
	return l
}

// Item creates a stock item with an opening position.
func (f *Fixture) Item(name, openingQty, openingValue string) *entity.StockItem {
	f.t.Helper()
	it := entity.NewStockItem(f.Company.ID, name, Dec(openingQty), Dec(openingValue))
	require.NoError(f.t, f.Masters.StockItems.Create(f.Ctx, it))
	return it
}

// Dr is a debit line.
func Dr(l *entity.Ledger, amount string) voucher.EntryInput {
	return voucher.EntryInput{LedgerID: l.ID, Amount: types.Dr(Dec(amount))}
}

// Cr is a credit line.
func Cr(l *entity.Ledger, amount string) voucher.EntryInput {
	return voucher.EntryInput{LedgerID: l.ID, Amount: types.Cr(Dec(amount))}
}

// Stock is an inventory line; a negative quantity is outward.
func Stock(it *entity.StockItem, qty, rate string) voucher.InventoryInput {
	return voucher.InventoryInput{StockItemID: it.ID, Quantity: Dec(qty), Rate: Dec(rate)}
}

// Input starts a voucher input for the fixture company.
func (f *Fixture) Input(vt entity.VoucherType, date time.Time, lines ...voucher.EntryInput) voucher.Input {
	return voucher.Input{
		CompanyID:     f.Company.ID,
		Type:          vt,
		Date:          date,
		LedgerEntries: lines,
	}
}

// Post creates an approved voucher.
func (f *Fixture) Post(vt entity.VoucherType, date time.Time, lines ...voucher.EntryInput) *entity.Voucher {
	f.t.Helper()
	return f.Create(f.Admin, f.Input(vt, date, lines...))
}

// PostStock creates an approved voucher with inventory lines.
func (f *Fixture) PostStock(vt entity.VoucherType, date time.Time, stock []voucher.InventoryInput, lines ...voucher.EntryInput) *entity.Voucher {
	f.t.Helper()
	in := f.Input(vt, date, lines...)
	in.InventoryEntries = stock
	return f.Create(f.Admin, in)
}

// Create creates a voucher as actor and fails the test on error.
func (f *Fixture) Create(actor entity.Actor, in voucher.Input) *entity.Voucher {
	f.t.Helper()
	v, err := f.Vouchers.Create(f.Ctx, in, actor)
	require.NoError(f.t, err)
	return v
}
