package importer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/importer/tallyxml"
	"ledgerbook/internal/domain/voucher"
	"ledgerbook/pkg/logger"
)

func (s *Service) importVoucher(ctx context.Context, b *batch, v *tallyxml.Voucher) {
	no := v.VoucherNo()
	f := Failure{Kind: tallyxml.KindVoucher, VoucherNo: no, VoucherType: v.TypeLabel()}

	ctx, span := tracer.Start(ctx, "importer.voucher", trace.WithAttributes(
		attribute.String("voucher.no", no),
		attribute.String("voucher.label", v.TypeLabel()),
	))
	defer span.End()

	vt, err := tallyxml.VoucherType(v.TypeLabel())
	if err != nil {
		b.summary.fail(f, apperror.NewImportParse("VOUCHERTYPENAME", err.Error()))
		return
	}
	if no == "" {
		b.summary.fail(f, apperror.NewImportParse("VOUCHERNUMBER", "voucher has no number"))
		return
	}
	date, err := tallyxml.ParseDate(v.Date)
	if err != nil {
		b.summary.fail(f, apperror.NewImportParse("DATE", err.Error()))
		return
	}

	upsert := b.opts.UpsertSalesPurchase && (vt == entity.VoucherSales || vt == entity.VoucherPurchase)
	if !upsert {
		_, err := s.voucherRepo.GetByNumber(ctx, b.companyID, vt, no)
		switch {
		case err == nil:
			b.summary.Skipped.Vouchers++
			return
		case !apperror.IsNotFound(err):
			b.summary.fail(f, err)
			return
		}
	}

	var (
		created Counts
		updated bool
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		created = Counts{}
		in, err := s.voucherInput(ctx, b.companyID, vt, date, v, &created)
		if err != nil {
			return err
		}

		if !upsert {
			saved, err := s.vouchers.CreateImported(ctx, *in, b.actor)
			if err != nil {
				return err
			}
			return s.adjustOnHand(ctx, nil, saved.InventoryEntries)
		}

		var before []entity.InventoryEntry
		old, err := s.voucherRepo.GetByNumber(ctx, b.companyID, vt, no)
		switch {
		case err == nil:
			before = old.InventoryEntries
		case !apperror.IsNotFound(err):
			return err
		}
		res, err := s.vouchers.UpsertByNumber(ctx, *in, b.actor)
		if err != nil {
			return err
		}
		updated = !res.Created
		return s.adjustOnHand(ctx, before, res.Voucher.InventoryEntries)
	})
	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "voucher import failed", "voucher_no", no, "type", vt, "error", err)
		b.summary.fail(f, err)
		return
	}

	b.summary.Created.add(created)
	if updated {
		b.summary.UpdatedVouchers++
	} else {
		b.summary.Created.Vouchers++
	}
}

// voucherInput converts an export voucher, creating missing ledgers and
// items on the way. Accounting allocations nested in stock lines become
// ordinary ledger entries.
func (s *Service) voucherInput(
	ctx context.Context,
	companyID id.ID,
	vt entity.VoucherType,
	date time.Time,
	v *tallyxml.Voucher,
	created *Counts,
) (*voucher.Input, error) {
	in := &voucher.Input{
		CompanyID: companyID,
		Type:      vt,
		Date:      date,
		VoucherNo: v.VoucherNo(),
		Narration: strings.TrimSpace(v.Narration),
	}

	lines := v.Ledgers()
	stock := v.InventoryLines()
	if vt != entity.VoucherStockJournal {
		for _, it := range stock {
			lines = append(lines, it.Allocations...)
		}
	}

	for _, line := range lines {
		name := strings.TrimSpace(line.LedgerName)
		if name == "" {
			return nil, apperror.NewImportParse("LEDGERNAME", "ledger line has no ledger name")
		}
		amount, err := tallyxml.ParseNumber(line.Amount)
		if err != nil {
			return nil, apperror.NewImportParse("AMOUNT", err.Error())
		}
		ledger, err := s.ensureLedger(ctx, companyID, name, created)
		if err != nil {
			return nil, err
		}
		in.LedgerEntries = append(in.LedgerEntries, voucher.EntryInput{
			LedgerID: ledger.ID,
			Amount:   types.FromExternal(amount),
		})
	}

	for _, line := range stock {
		name := strings.TrimSpace(line.StockItemName)
		if name == "" {
			return nil, apperror.NewImportParse("STOCKITEMNAME", "inventory line has no stock item name")
		}
		qty, err := tallyxml.ParseNumber(line.Qty())
		if err != nil {
			return nil, apperror.NewImportParse("ACTUALQTY", err.Error())
		}
		rate, err := tallyxml.ParseNumber(line.Rate)
		if err != nil {
			return nil, apperror.NewImportParse("RATE", err.Error())
		}
		qty, rate = qty.Abs(), rate.Abs()
		if rate.IsZero() && qty.IsPositive() {
			amount, err := tallyxml.ParseNumber(line.Amount)
			if err != nil {
				return nil, apperror.NewImportParse("AMOUNT", err.Error())
			}
			rate = amount.Abs().Div(qty)
		}
		if outward(vt, line) {
			qty = qty.Neg()
		}

		item, err := s.ensureItem(ctx, companyID, name, created)
		if err != nil {
			return nil, err
		}
		in.InventoryEntries = append(in.InventoryEntries, voucher.InventoryInput{
			StockItemID: item.ID,
			Quantity:    qty,
			Rate:        rate,
		})
	}
	return in, nil
}

// outward reports whether a stock line removes stock. Sales always do; a
// stock journal line does unless it is flagged as a destination.
func outward(vt entity.VoucherType, line tallyxml.InventoryLine) bool {
	switch vt {
	case entity.VoucherSales:
		return true
	case entity.VoucherStockJournal:
		return !tallyxml.ParseBool(line.IsDeemedPositive)
	}
	return false
}

// ensureLedger returns the named ledger, creating it under the suspense
// group when missing.
func (s *Service) ensureLedger(ctx context.Context, companyID id.ID, name string, created *Counts) (*entity.Ledger, error) {
	l, ok, err := lookup(ctx, s.masters.Ledgers.GetByKey, companyID, name)
	if err != nil || ok {
		return l, err
	}
	grp, err := s.ensureGroup(ctx, companyID, entity.SuspenseGroupName, entity.NatureLiability, created)
	if err != nil {
		return nil, err
	}
	l = entity.NewLedger(companyID, grp.ID, name, types.Signed(decimal.Zero))
	if err := s.masters.Ledgers.Create(ctx, l); err != nil {
		return nil, err
	}
	created.Ledgers++
	logger.Debug(ctx, "ledger created for voucher line", "name", name)
	return l, nil
}

// ensureItem returns the named stock item, creating an empty one when missing.
func (s *Service) ensureItem(ctx context.Context, companyID id.ID, name string, created *Counts) (*entity.StockItem, error) {
	it, ok, err := lookup(ctx, s.masters.StockItems.GetByKey, companyID, name)
	if err != nil || ok {
		return it, err
	}
	it = placeholderItem(companyID, name)
	if err := s.masters.StockItems.Create(ctx, it); err != nil {
		return nil, err
	}
	created.StockItems++
	logger.Debug(ctx, "stock item created for voucher line", "name", name)
	return it, nil
}

// adjustOnHand moves each item's QuantityOnHand by after minus before.
func (s *Service) adjustOnHand(ctx context.Context, before, after []entity.InventoryEntry) error {
	delta := make(map[id.ID]decimal.Decimal)
	for _, e := range before {
		delta[e.StockItemID] = delta[e.StockItemID].Sub(e.Quantity)
	}
	for _, e := range after {
		delta[e.StockItemID] = delta[e.StockItemID].Add(e.Quantity)
	}

	ids := make([]id.ID, 0, len(delta))
	for itemID, d := range delta {
		if !d.IsZero() {
			ids = append(ids, itemID)
		}
	}
	// Update in id order.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	items := s.store.StockItems()
	for _, itemID := range ids {
		it, err := items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		it.QuantityOnHand = it.QuantityOnHand.Add(delta[itemID])
		it.Touch()
		if err := items.Update(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
