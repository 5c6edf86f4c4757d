package entity

import (
	"context"
	"strings"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// StockItem is an inventory article. Quantity and value on hand are derived
// from approved inventory entries.
type StockItem struct {
	BaseEntity
	Name         string         `db:"name" json:"name"`
	StockGroupID *id.ID         `db:"stock_group_id" json:"stockGroupId,omitempty"`
	UnitID       *id.ID         `db:"unit_id" json:"unitId,omitempty"`
	OpeningQty   types.Quantity `db:"opening_qty" json:"openingQty"`
	OpeningValue types.Money    `db:"opening_value" json:"openingValue"`

	// GSTRate is a pass-through percentage; no tax is computed from it.
	GSTRate types.Rate `db:"gst_rate" json:"gstRate"`

	// QuantityOnHand is maintained by the XML importer for display.
	// Balances and valuation never read it.
	QuantityOnHand types.Quantity `db:"quantity_on_hand" json:"quantityOnHand"`
}

// NewStockItem creates a stock item with the given opening position.
func NewStockItem(companyID id.ID, name string, openingQty types.Quantity, openingValue types.Money) *StockItem {
	return &StockItem{
		BaseEntity:     NewBaseEntity(companyID),
		Name:           strings.TrimSpace(name),
		OpeningQty:     openingQty,
		OpeningValue:   openingValue,
		QuantityOnHand: openingQty,
	}
}

// OpeningRate is OpeningValue / OpeningQty, or zero without opening stock.
func (s *StockItem) OpeningRate() types.Rate {
	if !s.OpeningQty.IsPositive() {
		return types.Zero()
	}
	return s.OpeningValue.Div(s.OpeningQty)
}

// Validate implements Validatable.
func (s *StockItem) Validate(_ context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("stock item name is required").WithDetail("field", "name")
	}
	if s.OpeningValue.IsNegative() {
		return apperror.NewValidation("opening value cannot be negative").WithDetail("field", "openingValue")
	}
	if s.GSTRate.IsNegative() {
		return apperror.NewValidation("gst rate cannot be negative").WithDetail("field", "gstRate")
	}
	return nil
}

// UniqueKey is the name, unique per company.
func (s *StockItem) UniqueKey() string { return s.Name }
