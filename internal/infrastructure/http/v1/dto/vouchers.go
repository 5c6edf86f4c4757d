package dto

import (
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain/voucher"
)

// VoucherRequest creates, edits or upserts a voucher.
type VoucherRequest struct {
	Type             entity.VoucherType       `json:"type" binding:"required"`
	Date             string                   `json:"date" binding:"required"`
	VoucherNo        string                   `json:"voucherNo"`
	Narration        string                   `json:"narration"`
	LedgerEntries    []voucher.EntryInput     `json:"ledgerEntries"`
	InventoryEntries []voucher.InventoryInput `json:"inventoryEntries"`
}

// ToInput converts the request for companyID.
func (r *VoucherRequest) ToInput(companyID id.ID) (voucher.Input, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return voucher.Input{}, err
	}
	return voucher.Input{
		CompanyID:        companyID,
		Type:             r.Type,
		Date:             date,
		VoucherNo:        r.VoucherNo,
		Narration:        r.Narration,
		LedgerEntries:    r.LedgerEntries,
		InventoryEntries: r.InventoryEntries,
	}, nil
}

// VoucherListRequest holds list query parameters.
type VoucherListRequest struct {
	Type   string `form:"type"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query for companyID.
func (r *VoucherListRequest) ToFilter(companyID id.ID) (voucher.Filter, error) {
	f := voucher.Filter{CompanyID: companyID, Limit: r.Limit, Offset: r.Offset}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if r.Type != "" {
		vt := entity.VoucherType(r.Type)
		f.Type = &vt
	}
	if r.Status != "" {
		st := entity.VoucherStatus(r.Status)
		f.Status = &st
	}
	var err error
	if f.From, err = ParseOptionalDate("from", r.From); err != nil {
		return f, err
	}
	if f.To, err = ParseOptionalDate("to", r.To); err != nil {
		return f, err
	}
	return f, nil
}

// UpsertResponse reports whether an upsert created the voucher.
type UpsertResponse struct {
	Created bool            `json:"created"`
	Voucher *entity.Voucher `json:"voucher"`
}
