package memory

import (
	"context"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/postings"
)

// Postings implements postings.Repository over approved vouchers.
type Postings struct {
	store *Store
}

// approved returns approved vouchers inside the period in posting order.
func approved(st *state, period domain.Period, companyID *id.ID) []storedVoucher {
	var rows []storedVoucher
	for _, sv := range st.vouchers {
		if !sv.v.IsApproved() || !period.Contains(sv.v.Date) {
			continue
		}
		if companyID != nil && sv.v.CompanyID != *companyID {
			continue
		}
		rows = append(rows, sv)
	}
	sortByPosting(rows)
	return rows
}

func (p *Postings) LedgerPostings(ctx context.Context, ledgerID id.ID, period domain.Period) ([]postings.LedgerPosting, error) {
	var out []postings.LedgerPosting
	err := p.store.read(ctx, func(st *state) error {
		for _, sv := range approved(st, period, nil) {
			for _, e := range sv.v.LedgerEntries {
				if e.LedgerID != ledgerID {
					continue
				}
				out = append(out, postings.LedgerPosting{
					EntryID:     e.ID,
					VoucherID:   sv.v.ID,
					VoucherType: sv.v.Type,
					VoucherNo:   sv.v.VoucherNo,
					Date:        sv.v.Date,
					Narration:   sv.v.Narration,
					LedgerID:    e.LedgerID,
					Amount:      e.Amount,
				})
			}
		}
		return nil
	})
	return out, err
}

func (p *Postings) SumLedger(ctx context.Context, ledgerID id.ID, period domain.Period) (types.SignedMoney, error) {
	rows, err := p.LedgerPostings(ctx, ledgerID, period)
	if err != nil {
		return types.SignedMoney{}, err
	}
	sum := types.Signed(types.Zero())
	for _, r := range rows {
		sum = sum.Add(r.Amount)
	}
	return sum, nil
}

func (p *Postings) InventoryPostings(ctx context.Context, stockItemID id.ID, period domain.Period) ([]postings.InventoryPosting, error) {
	var out []postings.InventoryPosting
	err := p.store.read(ctx, func(st *state) error {
		for _, sv := range approved(st, period, nil) {
			for _, e := range sv.v.InventoryEntries {
				if e.StockItemID != stockItemID {
					continue
				}
				out = append(out, inventoryPosting(&sv.v, e))
			}
		}
		return nil
	})
	return out, err
}

func inventoryPosting(v *entity.Voucher, e entity.InventoryEntry) postings.InventoryPosting {
	return postings.InventoryPosting{
		EntryID:     e.ID,
		VoucherID:   v.ID,
		VoucherType: v.Type,
		VoucherNo:   v.VoucherNo,
		Date:        v.Date,
		StockItemID: e.StockItemID,
		Quantity:    e.Quantity,
		Rate:        e.Rate,
		Amount:      e.Amount,
	}
}

func (p *Postings) SumInventory(ctx context.Context, stockItemID id.ID, period domain.Period) (postings.InventoryTotals, error) {
	rows, err := p.InventoryPostings(ctx, stockItemID, period)
	if err != nil {
		return postings.InventoryTotals{}, err
	}
	totals := postings.InventoryTotals{}
	for _, r := range rows {
		totals = totals.Add(r.Quantity, r.Amount)
	}
	return totals, nil
}

func (p *Postings) SumLedgersByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]types.SignedMoney, error) {
	out := map[id.ID]types.SignedMoney{}
	err := p.store.read(ctx, func(st *state) error {
		for _, sv := range approved(st, period, &companyID) {
			for _, e := range sv.v.LedgerEntries {
				cur, ok := out[e.LedgerID]
				if !ok {
					cur = types.Signed(types.Zero())
				}
				out[e.LedgerID] = cur.Add(e.Amount)
			}
		}
		return nil
	})
	return out, err
}

func (p *Postings) SumInventoryByCompany(ctx context.Context, companyID id.ID, period domain.Period) (map[id.ID]postings.InventoryTotals, error) {
	out := map[id.ID]postings.InventoryTotals{}
	err := p.store.read(ctx, func(st *state) error {
		for _, sv := range approved(st, period, &companyID) {
			for _, e := range sv.v.InventoryEntries {
				out[e.StockItemID] = out[e.StockItemID].Add(e.Quantity, e.Amount)
			}
		}
		return nil
	})
	return out, err
}
