package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

func newTestVoucher(t *testing.T, actor Actor, amounts ...string) *Voucher {
	t.Helper()
	v := NewVoucher(id.New(), VoucherJournal, time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC), actor)
	for _, a := range amounts {
		v.LedgerEntries = append(v.LedgerEntries, LedgerEntry{LedgerID: id.New(), Amount: types.MustSigned(a)})
	}
	v.BindEntries()
	return v
}

func TestVoucher_Validate_Balance(t *testing.T) {
	maker := Actor{UserID: id.New()}

	t.Run("balanced", func(t *testing.T) {
		v := newTestVoucher(t, maker, "500", "-500")
		require.NoError(t, v.Validate(context.Background()))
	})

	t.Run("within tolerance", func(t *testing.T) {
		v := newTestVoucher(t, maker, "100.005", "-100")
		require.NoError(t, v.Validate(context.Background()))
	})

	t.Run("unbalanced", func(t *testing.T) {
		v := newTestVoucher(t, maker, "500", "-499")
		err := v.Validate(context.Background())
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeUnbalanced))
	})

	t.Run("single line", func(t *testing.T) {
		v := newTestVoucher(t, maker, "0")
		err := v.Validate(context.Background())
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})
}

func TestVoucher_DateIsTruncated(t *testing.T) {
	v := newTestVoucher(t, Actor{UserID: id.New()}, "1", "-1")
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), v.Date)
}

func TestVoucher_RecomputeTotal(t *testing.T) {
	v := newTestVoucher(t, Actor{UserID: id.New()}, "300", "200", "-500")
	v.RecomputeTotal()
	assert.True(t, v.TotalAmount.Equal(types.MustMoney("500")))

	sj := NewVoucher(id.New(), VoucherStockJournal, time.Now(), Actor{UserID: id.New()})
	sj.InventoryEntries = []InventoryEntry{
		{StockItemID: id.New(), Quantity: types.MustMoney("4"), Rate: types.MustMoney("2.5")},
		{StockItemID: id.New(), Quantity: types.MustMoney("-2"), Rate: types.MustMoney("5")},
	}
	sj.BindEntries()
	sj.RecomputeTotal()
	assert.True(t, sj.TotalAmount.Equal(types.MustMoney("10")))
	assert.True(t, sj.InventoryEntries[1].Amount.Equal(types.MustMoney("10")))
}

func TestVoucher_ApprovalStateMachine(t *testing.T) {
	maker := Actor{UserID: id.New()}
	checker := Actor{UserID: id.New()}
	admin := Actor{UserID: id.New(), Privileged: true}

	t.Run("manual create is pending", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		v.ApplyCreateStatus(maker)
		assert.Equal(t, StatusPending, v.Status)
		assert.Nil(t, v.VerifiedByID)
	})

	t.Run("privileged create auto-verifies", func(t *testing.T) {
		v := newTestVoucher(t, admin, "1", "-1")
		v.ApplyCreateStatus(admin)
		assert.Equal(t, StatusApproved, v.Status)
		require.NotNil(t, v.VerifiedByID)
		assert.Equal(t, admin.UserID, *v.VerifiedByID)
	})

	t.Run("self verify forbidden", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		v.ApplyCreateStatus(maker)
		err := v.Verify(maker)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
		assert.Equal(t, StatusPending, v.Status)
	})

	t.Run("privileged self verify still forbidden", func(t *testing.T) {
		v := newTestVoucher(t, admin, "1", "-1")
		v.Status = StatusPending
		err := v.Verify(admin)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("checker verifies once", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		v.ApplyCreateStatus(maker)
		require.NoError(t, v.Verify(checker))
		assert.Equal(t, StatusApproved, v.Status)
		assert.Equal(t, checker.UserID, *v.VerifiedByID)

		err := v.Verify(checker)
		assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
	})

	t.Run("edit resets approval", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		v.ApplyCreateStatus(maker)
		require.NoError(t, v.Verify(checker))

		v.ApplyEditStatus(maker)
		assert.Equal(t, StatusPending, v.Status)
		assert.Nil(t, v.VerifiedByID)
	})

	t.Run("privileged edit re-verifies", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		v.ApplyEditStatus(admin)
		assert.Equal(t, StatusApproved, v.Status)
		assert.Equal(t, admin.UserID, *v.VerifiedByID)
	})

	t.Run("edit ownership", func(t *testing.T) {
		v := newTestVoucher(t, maker, "1", "-1")
		assert.NoError(t, v.CanEdit(maker))
		assert.NoError(t, v.CanEdit(admin))
		assert.True(t, apperror.IsCode(v.CanEdit(checker), apperror.CodeForbidden))
	})
}

func TestParseVoucherType(t *testing.T) {
	vt, ok := ParseVoucherType("Stock Journal")
	assert.True(t, ok)
	assert.Equal(t, VoucherStockJournal, vt)

	vt, ok = ParseVoucherType("sales")
	assert.True(t, ok)
	assert.Equal(t, VoucherSales, vt)

	_, ok = ParseVoucherType("Memorandum")
	assert.False(t, ok)
}
