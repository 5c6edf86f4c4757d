// Package valuation values stock on hand at weighted average cost.
package valuation

import (
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/postings"
)

// ItemValuation is the WAC position of one stock item at a cutoff.
type ItemValuation struct {
	StockItemID  id.ID          `json:"stockItemId"`
	Name         string         `json:"name"`
	OpeningQty   types.Quantity `json:"openingQty"`
	OpeningValue types.Money    `json:"openingValue"`
	InwardQty    types.Quantity `json:"inwardQty"`
	InwardValue  types.Money    `json:"inwardValue"`
	OutwardQty   types.Quantity `json:"outwardQty"`
	ClosingQty   types.Quantity `json:"closingQty"`
	AvgRate      types.Rate     `json:"avgRate"`
	ClosingValue types.Money    `json:"closingValue"`
}

// Value applies weighted average costing to an item's opening position plus
// its aggregated movements. Outward quantities never affect the rate, and a
// negative closing quantity is valued at zero.
func Value(item *entity.StockItem, moved postings.InventoryTotals) ItemValuation {
	basisQty := item.OpeningQty.Add(moved.InQty)
	basisValue := item.OpeningValue.Add(moved.InValue)

	avgRate := types.Zero()
	if basisQty.IsPositive() {
		avgRate = basisValue.Div(basisQty)
	}

	closingQty := basisQty.Sub(moved.OutQty)
	onHand := closingQty
	if onHand.IsNegative() {
		onHand = types.Zero()
	}

	return ItemValuation{
		StockItemID:  item.ID,
		Name:         item.Name,
		OpeningQty:   item.OpeningQty,
		OpeningValue: item.OpeningValue,
		InwardQty:    moved.InQty,
		InwardValue:  moved.InValue,
		OutwardQty:   moved.OutQty,
		ClosingQty:   closingQty,
		AvgRate:      avgRate,
		ClosingValue: onHand.Mul(avgRate),
	}
}
