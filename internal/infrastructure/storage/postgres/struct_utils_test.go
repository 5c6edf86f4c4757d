package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

func TestExtractDBColumns_Ledger(t *testing.T) {
	cols := ExtractDBColumns[entity.Ledger]()

	assert.Equal(t, []string{
		"id", "company_id", "created_at", "updated_at", "group_id", "name", "opening_balance",
	}, cols)
}

func TestExtractDBColumns_VoucherSkipsEntries(t *testing.T) {
	cols := ExtractDBColumns[entity.Voucher]()

	assert.Contains(t, cols, "transaction_code")
	assert.Contains(t, cols, "verified_by_id")
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, 13)
}

func TestStructToMap_Ledger(t *testing.T) {
	companyID, groupID := id.New(), id.New()
	l := entity.NewLedger(companyID, groupID, "Bank", types.MustSigned("150.50"))

	m := StructToMap(l)

	assert.Equal(t, l.ID, m["id"])
	assert.Equal(t, companyID, m["company_id"])
	assert.Equal(t, groupID, m["group_id"])
	assert.Equal(t, "Bank", m["name"])
	assert.Equal(t, l.OpeningBalance, m["opening_balance"])
}

func TestPick(t *testing.T) {
	data := map[string]any{"id": 1, "name": "x", "extra": true}

	got := pick(data, []string{"id", "name", "missing"}, "id")

	assert.Equal(t, map[string]any{"name": "x"}, got)
}
