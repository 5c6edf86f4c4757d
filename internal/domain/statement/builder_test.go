package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

func fig(name, group string, nature entity.Nature, balance string) LedgerFigure {
	return LedgerFigure{
		LedgerID:   id.New(),
		LedgerName: name,
		GroupName:  group,
		Nature:     nature,
		Balance:    types.MustSigned(balance),
	}
}

func m(s string) types.Money { return types.MustMoney(s) }

func findLine(s Section, label string) (Line, bool) {
	for _, l := range s.Lines {
		if l.Label == label {
			return l, true
		}
	}
	return Line{}, false
}

func TestBuildTradingAndPL(t *testing.T) {
	figures := []LedgerFigure{
		fig("Sales A/c", "Sales Accounts", entity.NatureIncome, "-1000"),
		fig("Purchase A/c", "Purchase Accounts", entity.NatureExpense, "600"),
		fig("Freight Inward", "Direct Expenses", entity.NatureExpense, "50"),
		fig("Rent", "Indirect Expenses", entity.NatureExpense, "120"),
		fig("Interest Received", "Indirect Incomes", entity.NatureIncome, "-30"),
		fig("Bank A/c", "Bank Accounts", entity.NatureAsset, "5000"),
		fig("Rounding", "Indirect Expenses", entity.NatureExpense, "0.004"),
	}

	r := BuildTradingAndPL(figures, m("100"), m("150"))

	// Trading: Dr 600 + 50 + 100 = 750; Cr 1000 + 150 = 1150
	assert.True(t, r.TradingDebit.Total.Equal(m("750")))
	assert.True(t, r.TradingCredit.Total.Equal(m("1150")))
	assert.True(t, r.GrossProfit.Equal(m("400")))

	gp, ok := findLine(r.PLCredit, LabelGrossProfit)
	require.True(t, ok)
	assert.True(t, gp.Amount.Equal(m("400")))

	// P&L: Cr 400 + 30; Dr 120 + 0.004
	assert.True(t, r.NetProfit.Equal(m("309.996")), "net profit %s", r.NetProfit)
	assert.True(t, r.PLDebit.Total.Equal(m("120")))
	_, ok = findLine(r.PLDebit, "Rounding")
	assert.False(t, ok, "negligible balances are hidden but still counted")
	_, ok = findLine(r.TradingDebit, "Bank A/c")
	assert.False(t, ok)

	opening, ok := findLine(r.TradingDebit, LabelOpeningStock)
	require.True(t, ok)
	assert.True(t, opening.Amount.Equal(m("100")))
}

func TestBuildTradingAndPL_GrossLoss(t *testing.T) {
	figures := []LedgerFigure{
		fig("Sales A/c", "Sales Accounts", entity.NatureIncome, "-200"),
		fig("Purchase A/c", "Purchase Accounts", entity.NatureExpense, "500"),
		fig("Commission", "Indirect Incomes", entity.NatureIncome, "-50"),
	}

	r := BuildTradingAndPL(figures, types.Zero(), types.Zero())

	assert.True(t, r.GrossProfit.Equal(m("-300")))
	gl, ok := findLine(r.PLDebit, LabelGrossLoss)
	require.True(t, ok)
	assert.True(t, gl.Amount.Equal(m("300")))
	assert.True(t, r.NetProfit.Equal(m("-250")))
}

func TestBuildBalanceSheet_Tautology(t *testing.T) {
	// Openings: Capital 5000 Cr, Bank 4000 Dr, opening stock 1000.
	// Purchase 600 on credit, cash sale 900, closing stock 1100.
	figures := []LedgerFigure{
		fig("Capital", "Capital Account", entity.NatureCapital, "-5000"),
		fig("Bank A/c", "Bank Accounts", entity.NatureAsset, "4900"),
		fig("Supplier", "Sundry Creditors", entity.NatureLiability, "-600"),
		fig("Purchase A/c", "Purchase Accounts", entity.NatureExpense, "600"),
		fig("Sales A/c", "Sales Accounts", entity.NatureIncome, "-900"),
	}
	pl := BuildTradingAndPL(figures, m("1000"), m("1100"))
	// Trading Cr 900 + 1100 - Dr 600 + 1000 = 400
	require.True(t, pl.NetProfit.Equal(m("400")))

	// Σ openings (-5000 + 4000) + opening stock 1000 = 0
	bs, err := BuildBalanceSheet(figures, pl.NetProfit, m("1100"), types.MustSigned("0"))
	require.NoError(t, err)

	assert.True(t, bs.Liabilities.Total.Equal(bs.Assets.Total))
	assert.True(t, bs.Assets.Total.Equal(m("6000")))
	np, ok := findLine(bs.Liabilities, LabelNetProfit)
	require.True(t, ok)
	assert.True(t, np.Amount.Equal(m("400")))
	_, ok = findLine(bs.Assets, LabelOpeningDifference)
	assert.False(t, ok)
}

func TestBuildBalanceSheet_OnlyBalanceSheetLedgers(t *testing.T) {
	figures := []LedgerFigure{
		fig("Capital", "Capital Account", entity.NatureCapital, "-2500"),
		fig("Loan", "Secured Loans", entity.NatureLiability, "-1500"),
		fig("Cash", "Cash-in-Hand", entity.NatureAsset, "1000"),
		fig("Building", "Fixed Assets", entity.NatureAsset, "3000"),
	}

	bs, err := BuildBalanceSheet(figures, decimal.Zero, types.Zero(), types.MustSigned("0"))
	require.NoError(t, err)
	assert.True(t, bs.Liabilities.Total.Equal(bs.Assets.Total))
	assert.True(t, bs.Assets.Total.Equal(m("4000")))
}

func TestBuildBalanceSheet_NetLoss(t *testing.T) {
	figures := []LedgerFigure{
		fig("Capital", "Capital Account", entity.NatureCapital, "-1000"),
		fig("Cash", "Cash-in-Hand", entity.NatureAsset, "800"),
	}

	bs, err := BuildBalanceSheet(figures, m("-200"), types.Zero(), types.MustSigned("0"))
	require.NoError(t, err)

	nl, ok := findLine(bs.Liabilities, LabelNetLoss)
	require.True(t, ok)
	assert.True(t, nl.Amount.Equal(m("-200")))
	assert.True(t, bs.Liabilities.Total.Equal(m("800")))
}

func TestBuildBalanceSheet_OpeningDifference(t *testing.T) {
	// Cash opened at 1000 Dr with nothing on the credit side.
	figures := []LedgerFigure{
		fig("Cash", "Cash-in-Hand", entity.NatureAsset, "1000"),
	}

	bs, err := BuildBalanceSheet(figures, decimal.Zero, types.Zero(), types.MustSigned("1000"))
	require.NoError(t, err)

	diff, ok := findLine(bs.Liabilities, LabelOpeningDifference)
	require.True(t, ok)
	assert.True(t, diff.Amount.Equal(m("1000")))
}

func TestBuildBalanceSheet_IntegrityFault(t *testing.T) {
	// Balances that cannot come from balanced vouchers.
	figures := []LedgerFigure{
		fig("Capital", "Capital Account", entity.NatureCapital, "-1000"),
		fig("Cash", "Cash-in-Hand", entity.NatureAsset, "1250"),
	}

	_, err := BuildBalanceSheet(figures, decimal.Zero, types.Zero(), types.MustSigned("0"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeIntegrityFault))
}

func TestBuildTrialBalance(t *testing.T) {
	figures := []LedgerFigure{
		fig("Capital", "Capital Account", entity.NatureCapital, "-5000"),
		fig("Bank A/c", "Bank Accounts", entity.NatureAsset, "4900"),
		fig("Sales A/c", "Sales Accounts", entity.NatureIncome, "-900"),
		fig("Purchase A/c", "Purchase Accounts", entity.NatureExpense, "600"),
		fig("Supplier", "Sundry Creditors", entity.NatureLiability, "-600"),
	}

	tb, err := BuildTrialBalance(figures, m("1000"), types.MustSigned("0"))
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(m("6500")))
	assert.True(t, tb.TotalCredit.Equal(m("6500")))

	_, err = BuildTrialBalance(figures, types.Zero(), types.MustSigned("0"))
	assert.True(t, apperror.IsCode(err, apperror.CodeIntegrityFault))

	tb, err = BuildTrialBalance(figures, types.Zero(), types.MustSigned("-1000"))
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
}
