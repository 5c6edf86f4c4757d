package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/types"
)

func TestClassify(t *testing.T) {
	dr := types.MustSigned("1")
	cr := types.MustSigned("-1")

	tests := []struct {
		nature entity.Nature
		group  string
		bal    types.SignedMoney
		want   Placement
	}{
		{entity.NatureCapital, "Capital Account", cr, PlaceLiabilities},
		{entity.NatureLiability, "Sundry Creditors", cr, PlaceLiabilities},
		{entity.NatureAsset, "Bank Accounts", dr, PlaceAssets},
		// nature wins over a misleading name
		{entity.NatureAsset, "Sales Receivables", dr, PlaceAssets},
		{entity.NatureIncome, "Sales Accounts", cr, PlaceTradingCredit},
		{entity.NatureIncome, "Direct Incomes", cr, PlaceTradingCredit},
		{entity.NatureIncome, "Indirect Incomes", cr, PlacePLCredit},
		{entity.NatureExpense, "Purchase Accounts", dr, PlaceTradingDebit},
		{entity.NatureExpense, "Direct Expenses", dr, PlaceTradingDebit},
		{entity.NatureExpense, "INDIRECT EXPENSES", dr, PlacePLDebit},
		// name heuristic when nature is missing
		{"", "Export SALES", cr, PlaceTradingCredit},
		{"", "purchase returns", dr, PlaceTradingDebit},
		{"", "Misc", cr, PlaceLiabilities},
		{"", "Misc", dr, PlaceAssets},
	}

	for _, tt := range tests {
		t.Run(string(tt.nature)+"/"+tt.group, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.nature, tt.group, tt.bal))
		})
	}
}
