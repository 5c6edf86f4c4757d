package importer

import (
	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/domain/importer/tallyxml"
)

// Counts tallies records per kind.
type Counts struct {
	Groups      int `json:"groups"`
	StockGroups int `json:"stockGroups"`
	Ledgers     int `json:"ledgers"`
	Units       int `json:"units"`
	StockItems  int `json:"stockItems"`
	Vouchers    int `json:"vouchers"`
}

func (c *Counts) add(o Counts) {
	c.Groups += o.Groups
	c.StockGroups += o.StockGroups
	c.Ledgers += o.Ledgers
	c.Units += o.Units
	c.StockItems += o.StockItems
	c.Vouchers += o.Vouchers
}

// Failure is one record the import could not apply.
type Failure struct {
	Kind        tallyxml.Kind `json:"kind"`
	Name        string        `json:"name,omitempty"`
	VoucherNo   string        `json:"voucherNo,omitempty"`
	VoucherType string        `json:"voucherType,omitempty"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
}

// Summary reports what an import batch did.
type Summary struct {
	Created Counts `json:"created"`
	Skipped Counts `json:"skipped"`

	// UpdatedVouchers counts vouchers whose entries an upsert replaced.
	UpdatedVouchers int `json:"updatedVouchers"`

	Failures []Failure `json:"failures"`
}

func (s *Summary) fail(f Failure, err error) {
	f.Code = apperror.CodeInternal
	f.Message = err.Error()
	if appErr, ok := apperror.AsAppError(err); ok {
		f.Code = appErr.Code
		f.Message = appErr.Message
	}
	s.Failures = append(s.Failures, f)
}
