package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/voucher"
)

var (
	ledgerEntryCols    = ExtractDBColumns[entity.LedgerEntry]()
	inventoryEntryCols = ExtractDBColumns[entity.InventoryEntry]()
)

// Vouchers stores voucher headers with their entries. Entries are written
// with COPY and replaced as a whole on update.
type Vouchers struct {
	txm   *TxManager
	batch *BatchInserter
	cols  []string
}

func (r *Vouchers) Create(ctx context.Context, v *entity.Voucher) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := psql.Insert("vouchers").SetMap(pick(StructToMap(v), r.cols)).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return mapError(err, "insert", "voucher")
		}
		return r.insertEntries(ctx, v)
	})
}

func (r *Vouchers) insertEntries(ctx context.Context, v *entity.Voucher) error {
	ledgerRows := make([][]any, 0, len(v.LedgerEntries))
	for _, e := range v.LedgerEntries {
		ledgerRows = append(ledgerRows, row(StructToMap(e), ledgerEntryCols))
	}
	if _, err := r.batch.CopyFromSlice(ctx, "ledger_entries", ledgerEntryCols, ledgerRows); err != nil {
		return mapError(err, "insert", "ledger entry")
	}

	stockRows := make([][]any, 0, len(v.InventoryEntries))
	for _, e := range v.InventoryEntries {
		stockRows = append(stockRows, row(StructToMap(e), inventoryEntryCols))
	}
	if _, err := r.batch.CopyFromSlice(ctx, "inventory_entries", inventoryEntryCols, stockRows); err != nil {
		return mapError(err, "insert", "inventory entry")
	}
	return nil
}

// row orders a column map for COPY.
func row(data map[string]any, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = data[c]
	}
	return out
}

func (r *Vouchers) headerQuery() squirrel.SelectBuilder {
	return psql.Select(r.cols...).From("vouchers")
}

func (r *Vouchers) load(ctx context.Context, q squirrel.SelectBuilder, key string) (*entity.Voucher, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)

	var v entity.Voucher
	if err := pgxscan.Get(ctx, querier, &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("voucher", key)
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}

	sql, args, err = psql.Select(ledgerEntryCols...).From("ledger_entries").
		Where(squirrel.Eq{"voucher_id": v.ID}).OrderBy("line_no").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &v.LedgerEntries, sql, args...); err != nil {
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}

	sql, args, err = psql.Select(inventoryEntryCols...).From("inventory_entries").
		Where(squirrel.Eq{"voucher_id": v.ID}).OrderBy("line_no").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &v.InventoryEntries, sql, args...); err != nil {
		return nil, fmt.Errorf("load inventory entries: %w", err)
	}
	return &v, nil
}

func (r *Vouchers) GetByID(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	return r.load(ctx, r.headerQuery().Where(squirrel.Eq{"id": voucherID}), voucherID.String())
}

// GetForUpdate locks the header row until the transaction ends.
func (r *Vouchers) GetForUpdate(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	if r.txm.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock voucher %s: no transaction in context", voucherID)
	}
	return r.load(ctx, r.headerQuery().Where(squirrel.Eq{"id": voucherID}).Suffix("FOR UPDATE"), voucherID.String())
}

func (r *Vouchers) GetByNumber(ctx context.Context, companyID id.ID, vt entity.VoucherType, voucherNo string) (*entity.Voucher, error) {
	return r.load(ctx, r.headerQuery().Where(squirrel.Eq{
		"company_id":   companyID,
		"voucher_type": vt,
		"voucher_no":   voucherNo,
	}), voucherNo)
}

func (r *Vouchers) GetByCode(ctx context.Context, companyID id.ID, code string) (*entity.Voucher, error) {
	return r.load(ctx, r.headerQuery().Where(squirrel.Eq{
		"company_id":       companyID,
		"transaction_code": code,
	}), code)
}

func (r *Vouchers) CodeExists(ctx context.Context, companyID id.ID, code string) (bool, error) {
	u := Usage{txm: r.txm}
	return u.exists(ctx, "vouchers", squirrel.Eq{"company_id": companyID, "transaction_code": code})
}

func (r *Vouchers) Update(ctx context.Context, v *entity.Voucher) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)
		sql, args, err := psql.Update("vouchers").
			SetMap(pick(StructToMap(v), r.cols, "id", "company_id", "created_at", "created_by_id", "transaction_code")).
			Where(squirrel.Eq{"id": v.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return mapError(err, "update", "voucher")
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("voucher", v.ID.String())
		}

		for _, table := range []string{"ledger_entries", "inventory_entries"} {
			sql, args, err := psql.Delete(table).Where(squirrel.Eq{"voucher_id": v.ID}).ToSql()
			if err != nil {
				return fmt.Errorf("build delete: %w", err)
			}
			if _, err := querier.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return r.insertEntries(ctx, v)
	})
}

// statusUpdate is the compare-and-set behind UpdateStatus.
func statusUpdate(v *entity.Voucher, expected entity.VoucherStatus) squirrel.UpdateBuilder {
	return psql.Update("vouchers").
		Set("status", v.Status).
		Set("verified_by_id", v.VerifiedByID).
		Set("updated_at", v.UpdatedAt).
		Where(squirrel.Eq{"id": v.ID, "status": expected})
}

func (r *Vouchers) UpdateStatus(ctx context.Context, v *entity.Voucher, expected entity.VoucherStatus) (bool, error) {
	sql, args, err := statusUpdate(v, expected).ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update voucher status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Vouchers) Delete(ctx context.Context, voucherID id.ID) error {
	n, err := r.DeleteMany(ctx, []id.ID{voucherID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound("voucher", voucherID.String())
	}
	return nil
}

// DeleteMany removes vouchers; entries go with them through ON DELETE CASCADE.
func (r *Vouchers) DeleteMany(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sql, args, err := psql.Delete("vouchers").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete vouchers: %w", err)
	}
	return tag.RowsAffected(), nil
}

// listQuery selects the filtered headers without ordering or paging.
func (r *Vouchers) listQuery(filter voucher.Filter) squirrel.SelectBuilder {
	q := r.headerQuery().Where(squirrel.Eq{"company_id": filter.CompanyID})
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"voucher_type": *filter.Type})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": entity.DateOnly(*filter.From)})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": entity.DateOnly(*filter.To)})
	}
	return q
}

func (r *Vouchers) List(ctx context.Context, filter voucher.Filter) (domain.ListResult[*entity.Voucher], error) {
	result := domain.ListResult[*entity.Voucher]{Limit: filter.Limit, Offset: filter.Offset}
	querier := r.txm.GetQuerier(ctx)
	q := r.listQuery(filter)

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count vouchers: %w", err)
	}

	q = q.OrderBy("date", "seq")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list vouchers: %w", err)
	}
	return result, nil
}
