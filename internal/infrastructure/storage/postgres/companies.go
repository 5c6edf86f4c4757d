package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
)

// Companies stores companies. Deleting one cascades to everything it owns.
type Companies struct {
	txm  *TxManager
	cols []string
}

func (r *Companies) Create(ctx context.Context, c *entity.Company) error {
	sql, args, err := psql.Insert("companies").SetMap(pick(StructToMap(c), r.cols)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	return mapError(err, "insert", "company")
}

func (r *Companies) GetByID(ctx context.Context, companyID id.ID) (*entity.Company, error) {
	sql, args, err := psql.Select(r.cols...).From("companies").Where(squirrel.Eq{"id": companyID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var c entity.Company
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("company", companyID.String())
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (r *Companies) Update(ctx context.Context, c *entity.Company) error {
	sql, args, err := psql.Update("companies").
		SetMap(pick(StructToMap(c), r.cols, "id", "created_at")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, "update", "company")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("company", c.ID.String())
	}
	return nil
}

// Delete removes the company, its records through ON DELETE CASCADE and
// its numbering sequences.
func (r *Companies) Delete(ctx context.Context, companyID id.ID) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		sql, args, err := psql.Delete("companies").Where(squirrel.Eq{"id": companyID}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return mapError(err, "delete", "company")
		}
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("company", companyID.String())
		}

		sql, args, err = psql.Delete("sys_sequences").
			Where(squirrel.Like{"key": companyID.String() + ":%"}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete company sequences: %w", err)
		}
		return nil
	})
}

func (r *Companies) List(ctx context.Context) ([]*entity.Company, error) {
	sql, args, err := psql.Select(r.cols...).From("companies").OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*entity.Company
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

// Usage answers the reference checks that guard master deletes.
type Usage struct {
	txm *TxManager
}

func (u *Usage) exists(ctx context.Context, table string, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := psql.Select("1").From(table).Where(where).Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var found bool
	if err := u.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("check %s usage: %w", table, err)
	}
	return found, nil
}

func (u *Usage) anyExists(ctx context.Context, checks map[string]squirrel.Sqlizer) (bool, error) {
	for table, where := range checks {
		found, err := u.exists(ctx, table, where)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (u *Usage) LedgerHasEntries(ctx context.Context, ledgerID id.ID) (bool, error) {
	return u.exists(ctx, "ledger_entries", squirrel.Eq{"ledger_id": ledgerID})
}

func (u *Usage) StockItemHasEntries(ctx context.Context, stockItemID id.ID) (bool, error) {
	return u.exists(ctx, "inventory_entries", squirrel.Eq{"stock_item_id": stockItemID})
}

func (u *Usage) GroupInUse(ctx context.Context, groupID id.ID) (bool, error) {
	return u.anyExists(ctx, map[string]squirrel.Sqlizer{
		"ledgers": squirrel.Eq{"group_id": groupID},
		"groups":  squirrel.Eq{"parent_id": groupID},
	})
}

func (u *Usage) StockGroupInUse(ctx context.Context, stockGroupID id.ID) (bool, error) {
	return u.anyExists(ctx, map[string]squirrel.Sqlizer{
		"stock_items":  squirrel.Eq{"stock_group_id": stockGroupID},
		"stock_groups": squirrel.Eq{"parent_id": stockGroupID},
	})
}

func (u *Usage) UnitInUse(ctx context.Context, unitID id.ID) (bool, error) {
	return u.exists(ctx, "stock_items", squirrel.Eq{"unit_id": unitID})
}
