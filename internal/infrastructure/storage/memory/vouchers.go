package memory

import (
	"context"
	"slices"
	"sort"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/voucher"
)

// Vouchers implements voucher.Repository.
type Vouchers struct {
	store *Store
}

func copyVoucher(v *entity.Voucher) entity.Voucher {
	out := *v
	out.LedgerEntries = slices.Clone(v.LedgerEntries)
	out.InventoryEntries = slices.Clone(v.InventoryEntries)
	if v.VerifiedByID != nil {
		by := *v.VerifiedByID
		out.VerifiedByID = &by
	}
	return out
}

func (r *Vouchers) checkUnique(st *state, v *entity.Voucher) error {
	for otherID, sv := range st.vouchers {
		if otherID == v.ID || sv.v.CompanyID != v.CompanyID {
			continue
		}
		if sv.v.Type == v.Type && sv.v.VoucherNo == v.VoucherNo {
			return apperror.NewDuplicate("voucher", "voucherNo", v.VoucherNo)
		}
		if sv.v.TransactionCode == v.TransactionCode {
			return apperror.NewDuplicate("voucher", "transactionCode", v.TransactionCode)
		}
	}
	return nil
}

func (r *Vouchers) Create(ctx context.Context, v *entity.Voucher) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.vouchers[v.ID]; ok {
			return apperror.NewDuplicate("voucher", "id", v.ID.String())
		}
		if err := r.checkUnique(st, v); err != nil {
			return err
		}
		st.seq++
		st.vouchers[v.ID] = storedVoucher{v: copyVoucher(v), seq: st.seq}
		return nil
	})
}

func (r *Vouchers) GetByID(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	var out *entity.Voucher
	err := r.store.read(ctx, func(st *state) error {
		sv, ok := st.vouchers[voucherID]
		if !ok {
			return apperror.NewNotFound("voucher", voucherID.String())
		}
		v := copyVoucher(&sv.v)
		out = &v
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock: the writer lock already serializes
// transactions.
func (r *Vouchers) GetForUpdate(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	return r.GetByID(ctx, voucherID)
}

func (r *Vouchers) find(ctx context.Context, match func(v *entity.Voucher) bool, key string) (*entity.Voucher, error) {
	var out *entity.Voucher
	err := r.store.read(ctx, func(st *state) error {
		for _, sv := range st.vouchers {
			if match(&sv.v) {
				v := copyVoucher(&sv.v)
				out = &v
				return nil
			}
		}
		return apperror.NewNotFound("voucher", key)
	})
	return out, err
}

func (r *Vouchers) GetByNumber(ctx context.Context, companyID id.ID, vt entity.VoucherType, voucherNo string) (*entity.Voucher, error) {
	return r.find(ctx, func(v *entity.Voucher) bool {
		return v.CompanyID == companyID && v.Type == vt && v.VoucherNo == voucherNo
	}, voucherNo)
}

func (r *Vouchers) GetByCode(ctx context.Context, companyID id.ID, code string) (*entity.Voucher, error) {
	return r.find(ctx, func(v *entity.Voucher) bool {
		return v.CompanyID == companyID && v.TransactionCode == code
	}, code)
}

func (r *Vouchers) CodeExists(ctx context.Context, companyID id.ID, code string) (bool, error) {
	_, err := r.GetByCode(ctx, companyID, code)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *Vouchers) Update(ctx context.Context, v *entity.Voucher) error {
	return r.store.write(ctx, func(st *state) error {
		sv, ok := st.vouchers[v.ID]
		if !ok {
			return apperror.NewNotFound("voucher", v.ID.String())
		}
		if err := r.checkUnique(st, v); err != nil {
			return err
		}
		st.vouchers[v.ID] = storedVoucher{v: copyVoucher(v), seq: sv.seq}
		return nil
	})
}

func (r *Vouchers) UpdateStatus(ctx context.Context, v *entity.Voucher, expected entity.VoucherStatus) (bool, error) {
	changed := false
	err := r.store.write(ctx, func(st *state) error {
		sv, ok := st.vouchers[v.ID]
		if !ok {
			return apperror.NewNotFound("voucher", v.ID.String())
		}
		if sv.v.Status != expected {
			return nil
		}
		stored := copyVoucher(&sv.v)
		stored.Status = v.Status
		stored.VerifiedByID = v.VerifiedByID
		stored.UpdatedAt = v.UpdatedAt
		st.vouchers[v.ID] = storedVoucher{v: stored, seq: sv.seq}
		changed = true
		return nil
	})
	return changed, err
}

func (r *Vouchers) Delete(ctx context.Context, voucherID id.ID) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.vouchers[voucherID]; !ok {
			return apperror.NewNotFound("voucher", voucherID.String())
		}
		delete(st.vouchers, voucherID)
		return nil
	})
}

func (r *Vouchers) DeleteMany(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		for _, voucherID := range ids {
			if _, ok := st.vouchers[voucherID]; ok {
				delete(st.vouchers, voucherID)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *Vouchers) List(ctx context.Context, filter voucher.Filter) (domain.ListResult[*entity.Voucher], error) {
	period := domain.Between(filter.From, filter.To)
	var rows []storedVoucher
	err := r.store.read(ctx, func(st *state) error {
		for _, sv := range st.vouchers {
			v := &sv.v
			if v.CompanyID != filter.CompanyID || !period.Contains(v.Date) {
				continue
			}
			if filter.Type != nil && v.Type != *filter.Type {
				continue
			}
			if filter.Status != nil && v.Status != *filter.Status {
				continue
			}
			rows = append(rows, sv)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*entity.Voucher]{}, err
	}
	sortByPosting(rows)

	items := make([]*entity.Voucher, 0, len(rows))
	for _, sv := range rows {
		header := sv.v
		header.LedgerEntries = nil
		header.InventoryEntries = nil
		items = append(items, &header)
	}
	return paginate(items, filter.Limit, filter.Offset), nil
}

// sortByPosting orders vouchers by date, then insertion.
func sortByPosting(rows []storedVoucher) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].v.Date.Equal(rows[j].v.Date) {
			return rows[i].v.Date.Before(rows[j].v.Date)
		}
		return rows[i].seq < rows[j].seq
	})
}
