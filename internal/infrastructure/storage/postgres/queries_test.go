package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/voucher"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// squirrel's Eq resolves driver.Valuer arguments, so ids arrive as strings.
func TestLedgerPostingsQuery(t *testing.T) {
	ledgerID := id.New()
	from := day("2024-04-01")
	to := day("2024-04-30")

	sql, args, err := ledgerPostingsQuery(ledgerID, domain.Between(&from, &to)).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT e.id AS entry_id, v.id AS voucher_id, v.voucher_type, v.voucher_no, v.date, v.narration, e.ledger_id, e.amount "+
			"FROM ledger_entries e JOIN vouchers v ON v.id = e.voucher_id "+
			"WHERE v.status = $1 AND v.date >= $2 AND v.date <= $3 AND e.ledger_id = $4 "+
			"ORDER BY v.date, v.seq, e.line_no",
		sql)
	assert.Equal(t, []any{entity.StatusApproved, from, to, ledgerID.String()}, args)
}

func TestInventoryPostingsQuery_Unbounded(t *testing.T) {
	itemID := id.New()

	sql, args, err := inventoryPostingsQuery(itemID, domain.Unbounded()).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM inventory_entries e JOIN vouchers v ON v.id = e.voucher_id")
	assert.Contains(t, sql, "WHERE v.status = $1 AND e.stock_item_id = $2")
	assert.NotContains(t, sql, "v.date >=")
	assert.Equal(t, []any{entity.StatusApproved, itemID.String()}, args)
}

func TestApprovedEntries_ThroughDate(t *testing.T) {
	to := day("2024-03-31")

	sql, args, err := approvedEntries("ledger_entries", domain.Through(to), "COALESCE(SUM(e.amount), 0)").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COALESCE(SUM(e.amount), 0) FROM ledger_entries e JOIN vouchers v ON v.id = e.voucher_id "+
			"WHERE v.status = $1 AND v.date <= $2",
		sql)
	assert.Len(t, args, 2)
}

func TestStatusUpdate_ComparesExpectedStatus(t *testing.T) {
	checker := id.New()
	v := &entity.Voucher{Status: entity.StatusApproved, VerifiedByID: &checker}
	v.ID = id.New()

	sql, args, err := statusUpdate(v, entity.StatusPending).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE vouchers SET status = $1, verified_by_id = $2, updated_at = $3 WHERE id = $4 AND status = $5",
		sql)
	assert.Equal(t, entity.StatusApproved, args[0])
	assert.Equal(t, v.ID.String(), args[3])
	assert.Equal(t, entity.StatusPending, args[4])
}

func TestMasterListQuery(t *testing.T) {
	repo := newMasterRepo(nil, "units", "unit", "symbol",
		func() *entity.Unit { return &entity.Unit{} }, "symbol", "name")
	companyID := id.New()

	sql, args, err := repo.listQuery(domain.ListFilter{CompanyID: companyID, Search: "kg"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, company_id, created_at, updated_at, symbol, name FROM units "+
			"WHERE company_id = $1 AND (symbol ILIKE $2 OR name ILIKE $3)",
		sql)
	assert.Equal(t, []any{companyID.String(), "%kg%", "%kg%"}, args)
}

func TestVoucherListQuery(t *testing.T) {
	repo := &Vouchers{cols: []string{"id", "date"}}
	companyID := id.New()
	pending := entity.StatusPending
	vt := entity.VoucherSales

	sql, args, err := repo.listQuery(voucher.Filter{CompanyID: companyID, Status: &pending, Type: &vt}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, date FROM vouchers WHERE company_id = $1 AND voucher_type = $2 AND status = $3",
		sql)
	assert.Equal(t, []any{companyID.String(), vt, pending}, args)
}
