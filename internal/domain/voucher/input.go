package voucher

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// EntryInput is one ledger line. Amount is Dr-positive.
type EntryInput struct {
	LedgerID id.ID             `json:"ledgerId" validate:"required"`
	Amount   types.SignedMoney `json:"amount"`
}

// InventoryInput is one stock line. Quantity is positive for inward.
type InventoryInput struct {
	StockItemID id.ID          `json:"stockItemId" validate:"required"`
	Quantity    types.Quantity `json:"quantity"`
	Rate        types.Rate     `json:"rate"`
}

// Input carries the writable fields of a voucher.
type Input struct {
	CompanyID        id.ID              `json:"companyId" validate:"required"`
	Type             entity.VoucherType `json:"type" validate:"required,oneof=SALES PURCHASE PAYMENT RECEIPT CONTRA JOURNAL STOCK_JOURNAL"`
	Date             time.Time          `json:"date" validate:"required"`
	VoucherNo        string             `json:"voucherNo" validate:"max=64"`
	Narration        string             `json:"narration" validate:"max=4000"`
	LedgerEntries    []EntryInput       `json:"ledgerEntries" validate:"dive"`
	InventoryEntries []InventoryInput   `json:"inventoryEntries" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field-level constraints.
func (in *Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	first := verrs[0]
	return apperror.NewValidation("invalid "+strings.ToLower(first.Field())).
		WithDetail("fields", fields)
}

// apply copies the input onto v and rebuilds its entries.
func (in *Input) apply(v *entity.Voucher) {
	v.Type = in.Type
	v.Date = entity.DateOnly(in.Date)
	v.VoucherNo = strings.TrimSpace(in.VoucherNo)
	v.Narration = strings.TrimSpace(in.Narration)

	v.LedgerEntries = make([]entity.LedgerEntry, 0, len(in.LedgerEntries))
	for _, e := range in.LedgerEntries {
		v.LedgerEntries = append(v.LedgerEntries, entity.LedgerEntry{LedgerID: e.LedgerID, Amount: e.Amount})
	}
	v.InventoryEntries = make([]entity.InventoryEntry, 0, len(in.InventoryEntries))
	for _, e := range in.InventoryEntries {
		v.InventoryEntries = append(v.InventoryEntries, entity.InventoryEntry{
			StockItemID: e.StockItemID,
			Quantity:    e.Quantity,
			Rate:        e.Rate,
		})
	}
	v.BindEntries()
	v.RecomputeTotal()
}

// structuralChange reports whether the edit touches date, type, amounts,
// ledgers or stock lines. Narration and number edits are not structural.
func structuralChange(old *entity.Voucher, in *Input) bool {
	if old.Type != in.Type || !old.Date.Equal(entity.DateOnly(in.Date)) {
		return true
	}
	if len(old.LedgerEntries) != len(in.LedgerEntries) || len(old.InventoryEntries) != len(in.InventoryEntries) {
		return true
	}
	for i, e := range old.LedgerEntries {
		n := in.LedgerEntries[i]
		if e.LedgerID != n.LedgerID || !e.Amount.Equal(n.Amount) {
			return true
		}
	}
	for i, e := range old.InventoryEntries {
		n := in.InventoryEntries[i]
		if e.StockItemID != n.StockItemID || !e.Quantity.Equal(n.Quantity) || !e.Rate.Equal(n.Rate) {
			return true
		}
	}
	return false
}
