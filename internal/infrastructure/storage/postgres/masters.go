package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
)

// psql builds statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// masterRepo is the table-per-master repository shared by groups, ledgers,
// stock groups, units and stock items.
type masterRepo[T domain.Master] struct {
	txm        *TxManager
	table      string
	entityName string
	keyCol     string
	searchCols []string
	cols       []string
	newFn      func() T
}

func newMasterRepo[T domain.Master](txm *TxManager, table, entityName, keyCol string, newFn func() T, searchCols ...string) *masterRepo[T] {
	if len(searchCols) == 0 {
		searchCols = []string{keyCol}
	}
	return &masterRepo[T]{
		txm:        txm,
		table:      table,
		entityName: entityName,
		keyCol:     keyCol,
		searchCols: searchCols,
		cols:       ExtractDBColumns[T](),
		newFn:      newFn,
	}
}

func (r *masterRepo[T]) Create(ctx context.Context, m T) error {
	sql, args, err := psql.Insert(r.table).SetMap(pick(StructToMap(m), r.cols)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	return mapError(err, "insert", r.entityName)
}

func (r *masterRepo[T]) get(ctx context.Context, where squirrel.Sqlizer, key string) (T, error) {
	m := r.newFn()
	sql, args, err := psql.Select(r.cols...).From(r.table).Where(where).Limit(1).ToSql()
	if err != nil {
		return m, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return m, apperror.NewNotFound(r.entityName, key)
		}
		return m, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return m, nil
}

func (r *masterRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, squirrel.Eq{"id": entityID}, entityID.String())
}

func (r *masterRepo[T]) GetByKey(ctx context.Context, companyID id.ID, key string) (T, error) {
	return r.get(ctx, squirrel.Eq{"company_id": companyID, r.keyCol: key}, key)
}

func (r *masterRepo[T]) Update(ctx context.Context, m T) error {
	data := pick(StructToMap(m), r.cols, "id", "company_id", "created_at")
	sql, args, err := psql.Update(r.table).SetMap(data).Where(squirrel.Eq{"id": m.GetID()}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "update", r.entityName)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, m.GetID().String())
	}
	return nil
}

func (r *masterRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	n, err := r.DeleteMany(ctx, []id.ID{entityID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

func (r *masterRepo[T]) DeleteMany(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sql, args, err := psql.Delete(r.table).Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "delete", r.entityName)
	}
	return tag.RowsAffected(), nil
}

// listQuery selects the filtered rows without ordering or paging.
func (r *masterRepo[T]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := psql.Select(r.cols...).From(r.table).Where(squirrel.Eq{"company_id": filter.CompanyID})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		or := squirrel.Or{}
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	return q
}

func (r *masterRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}
	querier := r.txm.GetQuerier(ctx)
	q := r.listQuery(filter)

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.entityName, err)
	}

	q = q.OrderBy(r.keyCol, "id")
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
		return result, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	return result, nil
}
