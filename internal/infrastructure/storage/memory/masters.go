package memory

import (
	"context"
	"slices"
	"sort"
	"strings"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
)

// masterRepo stores one master table keyed by id with a per-company
// unique key.
type masterRepo[V any, P interface {
	*V
	domain.Master
}] struct {
	store  *Store
	table  func(st *state) map[id.ID]V
	entity string
	field  string
}

func (r *masterRepo[V, P]) checkKey(st *state, m P) error {
	for otherID, v := range r.table(st) {
		other := P(&v)
		if otherID != m.GetID() && other.GetCompanyID() == m.GetCompanyID() && other.UniqueKey() == m.UniqueKey() {
			return apperror.NewDuplicate(r.entity, r.field, m.UniqueKey())
		}
	}
	return nil
}

func (r *masterRepo[V, P]) Create(ctx context.Context, m P) error {
	return r.store.write(ctx, func(st *state) error {
		tbl := r.table(st)
		if _, ok := tbl[m.GetID()]; ok {
			return apperror.NewDuplicate(r.entity, "id", m.GetID().String())
		}
		if err := r.checkKey(st, m); err != nil {
			return err
		}
		tbl[m.GetID()] = *m
		return nil
	})
}

func (r *masterRepo[V, P]) GetByID(ctx context.Context, recordID id.ID) (P, error) {
	var out P
	err := r.store.read(ctx, func(st *state) error {
		v, ok := r.table(st)[recordID]
		if !ok {
			return apperror.NewNotFound(r.entity, recordID.String())
		}
		out = P(&v)
		return nil
	})
	return out, err
}

func (r *masterRepo[V, P]) GetByKey(ctx context.Context, companyID id.ID, key string) (P, error) {
	var out P
	err := r.store.read(ctx, func(st *state) error {
		for _, v := range r.table(st) {
			m := P(&v)
			if m.GetCompanyID() == companyID && m.UniqueKey() == key {
				out = m
				return nil
			}
		}
		return apperror.NewNotFound(r.entity, key)
	})
	return out, err
}

func (r *masterRepo[V, P]) Update(ctx context.Context, m P) error {
	return r.store.write(ctx, func(st *state) error {
		tbl := r.table(st)
		if _, ok := tbl[m.GetID()]; !ok {
			return apperror.NewNotFound(r.entity, m.GetID().String())
		}
		if err := r.checkKey(st, m); err != nil {
			return err
		}
		tbl[m.GetID()] = *m
		return nil
	})
}

func (r *masterRepo[V, P]) Delete(ctx context.Context, recordID id.ID) error {
	return r.store.write(ctx, func(st *state) error {
		tbl := r.table(st)
		if _, ok := tbl[recordID]; !ok {
			return apperror.NewNotFound(r.entity, recordID.String())
		}
		delete(tbl, recordID)
		return nil
	})
}

func (r *masterRepo[V, P]) DeleteMany(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		tbl := r.table(st)
		for _, recordID := range ids {
			if _, ok := tbl[recordID]; ok {
				delete(tbl, recordID)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *masterRepo[V, P]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[P], error) {
	var items []P
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.store.read(ctx, func(st *state) error {
		for _, v := range r.table(st) {
			m := P(&v)
			if m.GetCompanyID() != filter.CompanyID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(m.UniqueKey()), search) {
				continue
			}
			if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, m.GetID()) {
				continue
			}
			items = append(items, m)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[P]{}, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].UniqueKey() != items[j].UniqueKey() {
			return items[i].UniqueKey() < items[j].UniqueKey()
		}
		return id.Less(items[i].GetID(), items[j].GetID())
	})
	return paginate(items, filter.Limit, filter.Offset), nil
}

func paginate[T any](items []T, limit, offset int) domain.ListResult[T] {
	total := int64(len(items))
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}
	return domain.ListResult[T]{Items: items, TotalCount: total, Limit: limit, Offset: offset}
}

type companies struct {
	store *Store
}

func (r *companies) Create(ctx context.Context, c *entity.Company) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.companies[c.ID]; ok {
			return apperror.NewDuplicate("company", "id", c.ID.String())
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *companies) GetByID(ctx context.Context, companyID id.ID) (*entity.Company, error) {
	var out *entity.Company
	err := r.store.read(ctx, func(st *state) error {
		c, ok := st.companies[companyID]
		if !ok {
			return apperror.NewNotFound("company", companyID.String())
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *companies) Update(ctx context.Context, c *entity.Company) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.companies[c.ID]; !ok {
			return apperror.NewNotFound("company", c.ID.String())
		}
		st.companies[c.ID] = *c
		return nil
	})
}

// Delete cascades to every record the company owns.
func (r *companies) Delete(ctx context.Context, companyID id.ID) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.companies[companyID]; !ok {
			return apperror.NewNotFound("company", companyID.String())
		}
		delete(st.companies, companyID)
		deleteOwned(st.groups, companyID, func(v entity.Group) id.ID { return v.CompanyID })
		deleteOwned(st.ledgers, companyID, func(v entity.Ledger) id.ID { return v.CompanyID })
		deleteOwned(st.stockGroups, companyID, func(v entity.StockGroup) id.ID { return v.CompanyID })
		deleteOwned(st.units, companyID, func(v entity.Unit) id.ID { return v.CompanyID })
		deleteOwned(st.stockItems, companyID, func(v entity.StockItem) id.ID { return v.CompanyID })
		deleteOwned(st.vouchers, companyID, func(v storedVoucher) id.ID { return v.v.CompanyID })
		prefix := companyID.String() + ":"
		for k := range st.sequences {
			if strings.HasPrefix(k, prefix) {
				delete(st.sequences, k)
			}
		}
		return nil
	})
}

func deleteOwned[V any](tbl map[id.ID]V, companyID id.ID, owner func(V) id.ID) {
	for k, v := range tbl {
		if owner(v) == companyID {
			delete(tbl, k)
		}
	}
}

func (r *companies) List(ctx context.Context) ([]*entity.Company, error) {
	var out []*entity.Company
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.companies {
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

type usage struct {
	store *Store
}

func (u *usage) anyVoucher(ctx context.Context, match func(v *entity.Voucher) bool) (bool, error) {
	found := false
	err := u.store.read(ctx, func(st *state) error {
		for _, sv := range st.vouchers {
			if match(&sv.v) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (u *usage) LedgerHasEntries(ctx context.Context, ledgerID id.ID) (bool, error) {
	return u.anyVoucher(ctx, func(v *entity.Voucher) bool {
		return slices.ContainsFunc(v.LedgerEntries, func(e entity.LedgerEntry) bool { return e.LedgerID == ledgerID })
	})
}

func (u *usage) StockItemHasEntries(ctx context.Context, stockItemID id.ID) (bool, error) {
	return u.anyVoucher(ctx, func(v *entity.Voucher) bool {
		return slices.ContainsFunc(v.InventoryEntries, func(e entity.InventoryEntry) bool { return e.StockItemID == stockItemID })
	})
}

func (u *usage) GroupInUse(ctx context.Context, groupID id.ID) (bool, error) {
	inUse := false
	err := u.store.read(ctx, func(st *state) error {
		for _, l := range st.ledgers {
			if l.GroupID == groupID {
				inUse = true
				return nil
			}
		}
		for _, g := range st.groups {
			if g.ParentID != nil && *g.ParentID == groupID {
				inUse = true
				return nil
			}
		}
		return nil
	})
	return inUse, err
}

func (u *usage) StockGroupInUse(ctx context.Context, stockGroupID id.ID) (bool, error) {
	inUse := false
	err := u.store.read(ctx, func(st *state) error {
		for _, it := range st.stockItems {
			if it.StockGroupID != nil && *it.StockGroupID == stockGroupID {
				inUse = true
				return nil
			}
		}
		for _, g := range st.stockGroups {
			if g.ParentID != nil && *g.ParentID == stockGroupID {
				inUse = true
				return nil
			}
		}
		return nil
	})
	return inUse, err
}

func (u *usage) UnitInUse(ctx context.Context, unitID id.ID) (bool, error) {
	inUse := false
	err := u.store.read(ctx, func(st *state) error {
		for _, it := range st.stockItems {
			if it.UnitID != nil && *it.UnitID == unitID {
				inUse = true
				return nil
			}
		}
		return nil
	})
	return inUse, err
}
