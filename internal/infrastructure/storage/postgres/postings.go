package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/postings"
)

// Postings reads approved movements by joining entries to voucher headers.
type Postings struct {
	txm *TxManager
}

// approvedEntries joins an entry table to approved vouchers inside period.
func approvedEntries(table string, period domain.Period, columns ...string) squirrel.SelectBuilder {
	q := psql.Select(columns...).
		From(table+" e").
		Join("vouchers v ON v.id = e.voucher_id").
		Where(squirrel.Eq{"v.status": entity.StatusApproved})
	if period.From != nil {
		q = q.Where(squirrel.GtOrEq{"v.date": *period.From})
	}
	if period.To != nil {
		q = q.Where(squirrel.LtOrEq{"v.date": *period.To})
	}
	return q
}

const (
	inQty    = "COALESCE(SUM(CASE WHEN e.quantity > 0 THEN e.quantity END), 0) AS in_qty"
	inValue  = "COALESCE(SUM(CASE WHEN e.quantity > 0 THEN e.amount END), 0) AS in_value"
	outQty   = "COALESCE(SUM(CASE WHEN e.quantity < 0 THEN -e.quantity END), 0) AS out_qty"
	outValue = "COALESCE(SUM(CASE WHEN e.quantity < 0 THEN e.amount END), 0) AS out_value"
)

func ledgerPostingsQuery(ledgerID id.ID, period domain.Period) squirrel.SelectBuilder {
	return approvedEntries("ledger_entries", period,
		"e.id AS entry_id", "v.id AS voucher_id", "v.voucher_type", "v.voucher_no",
		"v.date", "v.narration", "e.ledger_id", "e.amount").
		Where(squirrel.Eq{"e.ledger_id": ledgerID}).
		OrderBy("v.date", "v.seq", "e.line_no")
}

func inventoryPostingsQuery(stockItemID id.ID, period domain.Period) squirrel.SelectBuilder {
	return approvedEntries("inventory_entries", period,
		"e.id AS entry_id", "v.id AS voucher_id", "v.voucher_type", "v.voucher_no",
		"v.date", "e.stock_item_id", "e.quantity", "e.rate", "e.amount").
		Where(squirrel.Eq{"e.stock_item_id": stockItemID}).
		OrderBy("v.date", "v.seq", "e.line_no")
}

func (p *Postings) SumLedger(ctx context.Context, ledgerID id.ID, period domain.Period) (types.SignedMoney, error) {
	var sum types.SignedMoney
	sql, args, err := approvedEntries("ledger_entries", period, "COALESCE(SUM(e.amount), 0)").
		Where(squirrel.Eq{"e.ledger_id": ledgerID}).
		ToSql()
	if err != nil {
		return sum, fmt.Errorf("build query: %w", err)
	}
	if err := p.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return sum, fmt.Errorf("sum ledger: %w", err)
	}
	return sum, nil
}

func (p *Postings) LedgerPostings(ctx context.Context, ledgerID id.ID, period domain.Period) ([]postings.LedgerPosting, error) {
	sql, args, err := ledgerPostingsQuery(ledgerID, period).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []postings.LedgerPosting
	if err := pgxscan.Select(ctx, p.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("ledger postings: %w", err)
	}
	return out, nil
}

func (p *Postings) SumInventory(ctx context.Context, stockItemID id.ID, period domain.Period) (postings.InventoryTotals, error) {
	var totals postings.InventoryTotals
	sql, args, err := approvedEntries("inventory_entries", period, inQty, inValue, outQty, outValue).
		Where(squirrel.Eq{"e.stock_item_id": stockItemID}).
		ToSql()
	if err != nil {
		return totals, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, p.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return totals, fmt.Errorf("sum inventory: %w", err)
	}
	return totals, nil
}

func (p *Postings) InventoryPostings(ctx context.Context, stockItemID id.ID, period domain.Period) ([]postings.InventoryPosting, error) {
	sql, args, err := inventoryPostingsQuery(stockItemID, period).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []postings.InventoryPosting
	if err := pgxscan.Select(ctx, p.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory postings: %w", err)
	}
	return out, nil
}

func (p *Postings) SumLedgersByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]types.SignedMoney, error) {
	sql, args, err := approvedEntries("ledger_entries", period, "e.ledger_id", "SUM(e.amount) AS amount").
		Where(squirrel.Eq{"v.company_id": companyID}).
		GroupBy("e.ledger_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []struct {
		LedgerID id.ID             `db:"ledger_id"`
		Amount   types.SignedMoney `db:"amount"`
	}
	if err := pgxscan.Select(ctx, p.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sum ledgers: %w", err)
	}
	out := make(map[id.ID]types.SignedMoney, len(rows))
	for _, r := range rows {
		out[r.LedgerID] = r.Amount
	}
	return out, nil
}

func (p *Postings) SumInventoryByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]postings.InventoryTotals, error) {
	sql, args, err := approvedEntries("inventory_entries", period, "e.stock_item_id", inQty, inValue, outQty, outValue).
		Where(squirrel.Eq{"v.company_id": companyID}).
		GroupBy("e.stock_item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []struct {
		StockItemID id.ID `db:"stock_item_id"`
		postings.InventoryTotals
	}
	if err := pgxscan.Select(ctx, p.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sum inventory: %w", err)
	}
	out := make(map[id.ID]postings.InventoryTotals, len(rows))
	for _, r := range rows {
		out[r.StockItemID] = r.InventoryTotals
	}
	return out, nil
}
