package entity

import (
	"context"
	"strings"
	"time"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// VoucherType is the kind of transaction document.
type VoucherType string

const (
	VoucherSales        VoucherType = "SALES"
	VoucherPurchase     VoucherType = "PURCHASE"
	VoucherPayment      VoucherType = "PAYMENT"
	VoucherReceipt      VoucherType = "RECEIPT"
	VoucherContra       VoucherType = "CONTRA"
	VoucherJournal      VoucherType = "JOURNAL"
	VoucherStockJournal VoucherType = "STOCK_JOURNAL"
)

var voucherPrefixes = map[VoucherType]string{
	VoucherSales:        "SAL",
	VoucherPurchase:     "PUR",
	VoucherPayment:      "PAY",
	VoucherReceipt:      "RCT",
	VoucherContra:       "CTR",
	VoucherJournal:      "JRN",
	VoucherStockJournal: "STJ",
}

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	_, ok := voucherPrefixes[t]
	return ok
}

// NumberPrefix is the prefix used for auto-assigned voucher numbers.
func (t VoucherType) NumberPrefix() string {
	return voucherPrefixes[t]
}

// IsSale reports whether inventory on this voucher moves outward.
func (t VoucherType) IsSale() bool {
	return t == VoucherSales
}

// ParseVoucherType maps free-form names ("Sales", "Stock Journal") to a type.
func ParseVoucherType(s string) (VoucherType, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	t := VoucherType(norm)
	return t, t.Valid()
}

// VoucherStatus is the approval state.
type VoucherStatus string

const (
	StatusPending  VoucherStatus = "PENDING"
	StatusApproved VoucherStatus = "APPROVED"
)

// Voucher is an atomic financial or inventory transaction.
type Voucher struct {
	BaseEntity
	Type            VoucherType   `db:"voucher_type" json:"type"`
	Date            time.Time     `db:"date" json:"date"`
	VoucherNo       string        `db:"voucher_no" json:"voucherNo"`
	TransactionCode string        `db:"transaction_code" json:"transactionCode"`
	Status          VoucherStatus `db:"status" json:"status"`
	Narration       string        `db:"narration" json:"narration,omitempty"`

	// TotalAmount caches the debit-side total. Recomputed on every write.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	CreatedByID  id.ID  `db:"created_by_id" json:"createdById"`
	VerifiedByID *id.ID `db:"verified_by_id" json:"verifiedById,omitempty"`

	LedgerEntries    []LedgerEntry    `db:"-" json:"ledgerEntries"`
	InventoryEntries []InventoryEntry `db:"-" json:"inventoryEntries"`
}

// NewVoucher creates a pending voucher owned by the actor.
func NewVoucher(companyID id.ID, vt VoucherType, date time.Time, actor Actor) *Voucher {
	return &Voucher{
		BaseEntity:  NewBaseEntity(companyID),
		Type:        vt,
		Date:        DateOnly(date),
		Status:      StatusPending,
		CreatedByID: actor.UserID,
	}
}

// Validate checks required fields and the debit = credit invariant.
func (v *Voucher) Validate(_ context.Context) error {
	if !v.Type.Valid() {
		return apperror.NewValidation("invalid voucher type").
			WithDetail("field", "type").
			WithDetail("value", string(v.Type))
	}
	if v.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if v.Type == VoucherStockJournal && len(v.LedgerEntries) > 0 {
		return apperror.NewValidation("stock journal cannot carry ledger entries").
			WithDetail("field", "ledgerEntries")
	}
	if v.Type != VoucherStockJournal && len(v.LedgerEntries) < 2 {
		return apperror.NewValidation("at least two ledger entries are required").
			WithDetail("field", "ledgerEntries")
	}
	if v.Type == VoucherStockJournal && len(v.InventoryEntries) == 0 {
		return apperror.NewValidation("stock journal requires inventory entries").
			WithDetail("field", "inventoryEntries")
	}
	for i, e := range v.InventoryEntries {
		if e.Quantity.IsZero() {
			return apperror.NewValidation("inventory quantity cannot be zero").
				WithDetail("field", "inventoryEntries").
				WithDetail("line", i+1)
		}
		if e.Rate.IsNegative() {
			return apperror.NewValidation("inventory rate cannot be negative").
				WithDetail("field", "inventoryEntries").
				WithDetail("line", i+1)
		}
	}
	if diff := v.EntriesTotal(); !diff.IsNegligible() {
		return apperror.NewUnbalanced(diff.Decimal().String())
	}
	return nil
}

// EntriesTotal is the signed sum of all ledger entries; zero for a balanced voucher.
func (v *Voucher) EntriesTotal() types.SignedMoney {
	total := types.Signed(types.Zero())
	for _, e := range v.LedgerEntries {
		total = total.Add(e.Amount)
	}
	return total
}

// RecomputeTotal refreshes the TotalAmount cache from the debit side.
// Stock journals carry no ledger entries and use the inward inventory value.
func (v *Voucher) RecomputeTotal() {
	total := types.Zero()
	for _, e := range v.LedgerEntries {
		total = total.Add(e.Amount.DebitPart())
	}
	if len(v.LedgerEntries) == 0 {
		for _, e := range v.InventoryEntries {
			if e.Quantity.IsPositive() {
				total = total.Add(e.Amount)
			}
		}
	}
	v.TotalAmount = total
}

// BindEntries stamps voucher ownership onto every entry line.
func (v *Voucher) BindEntries() {
	for i := range v.LedgerEntries {
		e := &v.LedgerEntries[i]
		if id.IsNil(e.ID) {
			e.ID = id.New()
		}
		e.VoucherID = v.ID
		e.VoucherType = v.Type
		e.LineNo = i + 1
	}
	for i := range v.InventoryEntries {
		e := &v.InventoryEntries[i]
		if id.IsNil(e.ID) {
			e.ID = id.New()
		}
		e.VoucherID = v.ID
		e.VoucherType = v.Type
		e.LineNo = i + 1
		e.Amount = e.Quantity.Abs().Mul(e.Rate)
	}
}

// IsApproved reports whether the voucher counts in balances.
func (v *Voucher) IsApproved() bool {
	return v.Status == StatusApproved
}

// --- Approval state machine ---

// ApplyCreateStatus sets the initial status for a manually entered voucher.
// Privileged creators auto-verify their own entry.
func (v *Voucher) ApplyCreateStatus(actor Actor) {
	if actor.Privileged {
		v.approve(actor.UserID)
		return
	}
	v.Status = StatusPending
	v.VerifiedByID = nil
}

// ApproveImported marks a voucher coming from an import as approved.
func (v *Voucher) ApproveImported(actor Actor) {
	v.approve(actor.UserID)
}

// CanVerify checks the maker-checker rules for actor approving v.
func (v *Voucher) CanVerify(actor Actor) error {
	if v.CreatedByID == actor.UserID {
		return apperror.NewForbidden("a voucher cannot be verified by its creator").
			WithDetail("voucher_id", v.ID.String())
	}
	if v.Status != StatusPending {
		return apperror.NewConflict("voucher is not pending verification").
			WithDetail("voucher_id", v.ID.String()).
			WithDetail("status", string(v.Status))
	}
	return nil
}

// Verify moves a pending voucher to approved.
func (v *Voucher) Verify(actor Actor) error {
	if err := v.CanVerify(actor); err != nil {
		return err
	}
	v.approve(actor.UserID)
	return nil
}

// CanEdit checks that actor may change the voucher.
func (v *Voucher) CanEdit(actor Actor) error {
	if actor.Privileged || v.CreatedByID == actor.UserID {
		return nil
	}
	return apperror.NewForbidden("only the creator or a privileged user can change this voucher").
		WithDetail("voucher_id", v.ID.String())
}

// ApplyEditStatus resets approval after a structural edit,
// re-verifying immediately when the editor is privileged.
func (v *Voucher) ApplyEditStatus(actor Actor) {
	if actor.Privileged {
		v.approve(actor.UserID)
		return
	}
	v.Status = StatusPending
	v.VerifiedByID = nil
}

func (v *Voucher) approve(by id.ID) {
	v.Status = StatusApproved
	verifier := by
	v.VerifiedByID = &verifier
}

// LedgerEntry is one Dr/Cr line of a voucher.
type LedgerEntry struct {
	ID          id.ID             `db:"id" json:"id"`
	VoucherID   id.ID             `db:"voucher_id" json:"voucherId"`
	VoucherType VoucherType       `db:"voucher_type" json:"voucherType"`
	LedgerID    id.ID             `db:"ledger_id" json:"ledgerId"`
	Amount      types.SignedMoney `db:"amount" json:"amount"`
	LineNo      int               `db:"line_no" json:"lineNo"`
}

// InventoryEntry is one stock movement line of a voucher.
// Quantity is positive for inward and negative for outward.
type InventoryEntry struct {
	ID          id.ID          `db:"id" json:"id"`
	VoucherID   id.ID          `db:"voucher_id" json:"voucherId"`
	VoucherType VoucherType    `db:"voucher_type" json:"voucherType"`
	StockItemID id.ID          `db:"stock_item_id" json:"stockItemId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Rate        types.Rate     `db:"rate" json:"rate"`
	Amount      types.Money    `db:"amount" json:"amount"`
	LineNo      int            `db:"line_no" json:"lineNo"`
}

// IsInward reports whether the movement adds stock.
func (e InventoryEntry) IsInward() bool {
	return e.Quantity.IsPositive()
}
