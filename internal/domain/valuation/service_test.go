package valuation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/ledgertest"
	"ledgerbook/internal/domain/valuation"
	"ledgerbook/internal/domain/voucher"
)

func TestService_ValuesFromApprovedMovements(t *testing.T) {
	f := ledgertest.New(t, ledgertest.Date(2024, 4, 1))
	assets := f.Group("Cash-in-Hand", entity.NatureAsset)
	purchases := f.Group("Purchase Accounts", entity.NatureExpense)
	income := f.Group("Sales Accounts", entity.NatureIncome)
	cash := f.Ledger("Cash", assets, "0")
	purchase := f.Ledger("Purchases", purchases, "0")
	sales := f.Ledger("Sales", income, "0")
	widget := f.Item("Widget", "10", "60")
	gadget := f.Item("Gadget", "0", "0")

	f.PostStock(entity.VoucherPurchase, ledgertest.Date(2024, 4, 3),
		[]voucher.InventoryInput{ledgertest.Stock(widget, "10", "6")},
		ledgertest.Dr(purchase, "60"), ledgertest.Cr(cash, "60"))
	f.PostStock(entity.VoucherSales, ledgertest.Date(2024, 4, 8),
		[]voucher.InventoryInput{ledgertest.Stock(widget, "-5", "10")},
		ledgertest.Dr(cash, "50"), ledgertest.Cr(sales, "50"))

	// A pending purchase of gadgets is invisible to valuation.
	pending := f.Input(entity.VoucherPurchase, ledgertest.Date(2024, 4, 9),
		ledgertest.Dr(purchase, "40"), ledgertest.Cr(cash, "40"))
	pending.InventoryEntries = []voucher.InventoryInput{ledgertest.Stock(gadget, "4", "10")}
	f.Create(f.Maker, pending)

	svc := valuation.NewService(f.Store.StockItems(), f.Store.Postings(), f.Store)

	item, err := svc.ValueItem(f.Ctx, widget.ID, domain.Unbounded())
	require.NoError(t, err)
	assert.True(t, item.AvgRate.Equal(ledgertest.Dec("6")))
	assert.True(t, item.ClosingQty.Equal(ledgertest.Dec("15")))
	assert.True(t, item.ClosingValue.Equal(ledgertest.Dec("90")))

	opening, err := svc.OpeningStockValue(f.Ctx, f.Company.ID, nil)
	require.NoError(t, err)
	assert.True(t, opening.Equal(ledgertest.Dec("60")))

	midMonth, err := svc.OpeningStockValue(f.Ctx, f.Company.ID, ledgertest.Ptr(ledgertest.Date(2024, 4, 5)))
	require.NoError(t, err)
	assert.True(t, midMonth.Equal(ledgertest.Dec("120")), "valued through Apr 4: %s", midMonth)

	closing, err := svc.ClosingStockValue(f.Ctx, f.Company.ID, nil)
	require.NoError(t, err)
	assert.True(t, closing.Equal(ledgertest.Dec("90")))

	summary, err := svc.StockSummary(f.Ctx, f.Company.ID, ledgertest.Ptr(ledgertest.Date(2024, 4, 30)))
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, "Gadget", summary.Items[0].Name)
	assert.True(t, summary.Items[0].ClosingValue.IsZero())
	assert.Equal(t, "Widget", summary.Items[1].Name)
	assert.True(t, summary.TotalValue.Equal(ledgertest.Dec("90")))
}
