package tallyxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/entity"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"1250.50", "1250.5"},
		{"1,250.50", "1250.5"},
		{"-1,00,000.00", "-100000"},
		{"10 Nos", "10"},
		{" -5.5 Kgs ", "-5.5"},
		{"6.00/Nos", "6"},
		{".75", "0.75"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := ParseNumber("Nos")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("20240401")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", got.Format("2006-01-02"))

	for _, bad := range []string{"", "2024-04-01", "20241301", "1-4-2024"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestVoucherType(t *testing.T) {
	tests := map[string]entity.VoucherType{
		"Sales":         entity.VoucherSales,
		"Sales GST":     entity.VoucherSales,
		"Purchase":      entity.VoucherPurchase,
		"Payment":       entity.VoucherPayment,
		"Receipt":       entity.VoucherReceipt,
		"Contra":        entity.VoucherContra,
		"Journal":       entity.VoucherJournal,
		"Stock Journal": entity.VoucherStockJournal,
	}
	for label, want := range tests {
		got, err := VoucherType(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}

	_, err := VoucherType("Memorandum")
	assert.Error(t, err)
}

func TestNatures(t *testing.T) {
	n, ok := ReservedNature("Sundry Debtors")
	require.True(t, ok)
	assert.Equal(t, entity.NatureAsset, n)

	_, ok = ReservedNature("Regional Debtors")
	assert.False(t, ok)

	g := &Group{IsRevenue: "Yes", IsDeemedPositive: "No"}
	n, ok = g.FlagNature()
	require.True(t, ok)
	assert.Equal(t, entity.NatureIncome, n)

	_, ok = (&Group{}).FlagNature()
	assert.False(t, ok)
}
