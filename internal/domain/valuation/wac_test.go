package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/postings"
)

func d(s string) types.Money { return types.MustMoney(s) }

func widget() *entity.StockItem {
	return entity.NewStockItem(id.New(), "Widget", d("10"), d("50"))
}

func TestValue(t *testing.T) {
	tests := []struct {
		name         string
		moved        postings.InventoryTotals
		closingQty   string
		avgRate      string
		closingValue string
	}{
		{
			name:         "opening only",
			closingQty:   "10",
			avgRate:      "5",
			closingValue: "50",
		},
		{
			name:         "purchase then sale keeps average",
			moved:        postings.InventoryTotals{InQty: d("10"), InValue: d("70"), OutQty: d("5"), OutValue: d("45")},
			closingQty:   "15",
			avgRate:      "6",
			closingValue: "90",
		},
		{
			name:         "oversold clamps to zero",
			moved:        postings.InventoryTotals{OutQty: d("12"), OutValue: d("60")},
			closingQty:   "-2",
			avgRate:      "5",
			closingValue: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(widget(), tt.moved)
			assert.True(t, v.ClosingQty.Equal(d(tt.closingQty)), "closingQty %s", v.ClosingQty)
			assert.True(t, v.AvgRate.Equal(d(tt.avgRate)), "avgRate %s", v.AvgRate)
			assert.True(t, v.ClosingValue.Equal(d(tt.closingValue)), "closingValue %s", v.ClosingValue)
		})
	}
}

func TestValue_PureInflow(t *testing.T) {
	item := entity.NewStockItem(id.New(), "Bolt", d("3"), d("10"))
	moved := postings.InventoryTotals{}.
		Add(d("7"), d("25")).
		Add(d("5"), d("17.5"))

	v := Value(item, moved)

	basisQty := d("15")
	basisValue := d("52.5")
	assert.True(t, v.AvgRate.Equal(basisValue.Div(basisQty)))
	assert.True(t, v.ClosingValue.Equal(v.ClosingQty.Mul(v.AvgRate)))
	assert.True(t, v.ClosingValue.Equal(basisValue))
}

func TestValue_NoBasis(t *testing.T) {
	item := entity.NewStockItem(id.New(), "Ghost", types.Zero(), types.Zero())
	v := Value(item, postings.InventoryTotals{OutQty: d("4")})

	assert.True(t, v.AvgRate.IsZero())
	assert.True(t, v.ClosingValue.IsZero())
	assert.True(t, v.ClosingQty.Equal(d("-4")))
}
