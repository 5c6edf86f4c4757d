// Package postings defines the read model over approved voucher movements.
// Every query here sees APPROVED vouchers only; pending vouchers contribute nothing.
package postings

import (
	"context"
	"time"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
)

// LedgerPosting is an approved ledger entry joined with its voucher header.
type LedgerPosting struct {
	EntryID     id.ID              `db:"entry_id" json:"entryId"`
	VoucherID   id.ID              `db:"voucher_id" json:"voucherId"`
	VoucherType entity.VoucherType `db:"voucher_type" json:"voucherType"`
	VoucherNo   string             `db:"voucher_no" json:"voucherNo"`
	Date        time.Time          `db:"date" json:"date"`
	Narration   string             `db:"narration" json:"narration,omitempty"`
	LedgerID    id.ID              `db:"ledger_id" json:"ledgerId"`
	Amount      types.SignedMoney  `db:"amount" json:"amount"`
}

// InventoryPosting is an approved inventory entry joined with its voucher header.
type InventoryPosting struct {
	EntryID     id.ID              `db:"entry_id" json:"entryId"`
	VoucherID   id.ID              `db:"voucher_id" json:"voucherId"`
	VoucherType entity.VoucherType `db:"voucher_type" json:"voucherType"`
	VoucherNo   string             `db:"voucher_no" json:"voucherNo"`
	Date        time.Time          `db:"date" json:"date"`
	StockItemID id.ID              `db:"stock_item_id" json:"stockItemId"`
	Quantity    types.Quantity     `db:"quantity" json:"quantity"`
	Rate        types.Rate         `db:"rate" json:"rate"`
	Amount      types.Money        `db:"amount" json:"amount"`
}

// InventoryTotals aggregates inventory movements split by direction.
// Quantities and values are magnitudes.
type InventoryTotals struct {
	InQty    types.Quantity `db:"in_qty" json:"inQty"`
	InValue  types.Money    `db:"in_value" json:"inValue"`
	OutQty   types.Quantity `db:"out_qty" json:"outQty"`
	OutValue types.Money    `db:"out_value" json:"outValue"`
}

// Add accumulates one posting into the totals.
func (t InventoryTotals) Add(qty types.Quantity, amount types.Money) InventoryTotals {
	if qty.IsPositive() {
		t.InQty = t.InQty.Add(qty)
		t.InValue = t.InValue.Add(amount)
	} else {
		t.OutQty = t.OutQty.Add(qty.Neg())
		t.OutValue = t.OutValue.Add(amount)
	}
	return t
}

// Net is InQty - OutQty.
func (t InventoryTotals) Net() types.Quantity {
	return t.InQty.Sub(t.OutQty)
}

// Repository reads approved movements.
// List methods order by voucher date, then voucher insertion, then line number.
type Repository interface {
	SumLedger(ctx context.Context, ledgerID id.ID, period domain.Period) (types.SignedMoney, error)
	LedgerPostings(ctx context.Context, ledgerID id.ID, period domain.Period) ([]LedgerPosting, error)

	SumInventory(ctx context.Context, stockItemID id.ID, period domain.Period) (InventoryTotals, error)
	InventoryPostings(ctx context.Context, stockItemID id.ID, period domain.Period) ([]InventoryPosting, error)

	// Company-wide aggregates keyed by ledger or stock item id.
	// Records without approved movement in the period are absent.
	SumLedgersByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]types.SignedMoney, error)
	SumInventoryByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]InventoryTotals, error)
}
