package statement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// Computed line labels.
const (
	LabelOpeningStock      = "Opening Stock"
	LabelClosingStock      = "Closing Stock"
	LabelGrossProfit       = "Gross Profit b/d"
	LabelGrossLoss         = "Gross Loss b/d"
	LabelNetProfit         = "Net Profit"
	LabelNetLoss           = "Net Loss"
	LabelOpeningDifference = "Difference in Opening Balances"
)

// LedgerFigure is one ledger's balance with the data needed to classify it.
type LedgerFigure struct {
	LedgerID   id.ID
	LedgerName string
	GroupName  string
	Nature     entity.Nature
	Balance    types.SignedMoney
}

// Line is a statement row. Amount is shown on its section's side,
// so it is normally positive.
type Line struct {
	Label    string      `json:"label"`
	LedgerID *id.ID      `json:"ledgerId,omitempty"`
	Group    string      `json:"group,omitempty"`
	Amount   types.Money `json:"amount"`
	Computed bool        `json:"computed,omitempty"`
}

// Section is a list of lines with their total.
type Section struct {
	Lines []Line      `json:"lines"`
	Total types.Money `json:"total"`
}

func (s *Section) add(l Line) {
	s.Lines = append(s.Lines, l)
	s.Total = s.Total.Add(l.Amount)
}

func (s *Section) sortLedgers() {
	sort.SliceStable(s.Lines, func(i, j int) bool {
		a, b := s.Lines[i], s.Lines[j]
		if a.Computed != b.Computed {
			return a.Computed
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Label < b.Label
	})
}

func newSection() Section {
	return Section{Lines: []Line{}, Total: types.Zero()}
}

func ledgerLine(f LedgerFigure, amount types.Money) Line {
	ledgerID := f.LedgerID
	return Line{Label: f.LedgerName, LedgerID: &ledgerID, Group: f.GroupName, Amount: amount}
}

// TradingAndPL is the two-stage profit computation.
type TradingAndPL struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	TradingDebit  Section `json:"tradingDebit"`
	TradingCredit Section `json:"tradingCredit"`
	PLDebit       Section `json:"plDebit"`
	PLCredit      Section `json:"plCredit"`

	// GrossProfit is negative for a gross loss.
	GrossProfit decimal.Decimal `json:"grossProfit"`
	// NetProfit is negative for a net loss.
	NetProfit decimal.Decimal `json:"netProfit"`
}

// BuildTradingAndPL places income and expense figures into the Trading and
// P&L accounts and computes the gross and net transfers. Balance Sheet
// figures are ignored. Negligible balances are hidden from the lines but
// still count towards the profit, so the Balance Sheet can agree with it.
func BuildTradingAndPL(figures []LedgerFigure, openingStock, closingStock types.Money) TradingAndPL {
	r := TradingAndPL{
		TradingDebit:  newSection(),
		TradingCredit: newSection(),
		PLDebit:       newSection(),
		PLCredit:      newSection(),
	}

	// Credit-positive results of each stage over every figure.
	trading, pl := decimal.Zero, decimal.Zero
	for _, f := range figures {
		place := Classify(f.Nature, f.GroupName, f.Balance)
		switch place {
		case PlaceTradingDebit, PlaceTradingCredit:
			trading = trading.Sub(f.Balance.Decimal())
		case PlacePLDebit, PlacePLCredit:
			pl = pl.Sub(f.Balance.Decimal())
		}
		if f.Balance.IsNegligible() {
			continue
		}
		switch place {
		case PlaceTradingDebit:
			r.TradingDebit.add(ledgerLine(f, f.Balance.Decimal()))
		case PlaceTradingCredit:
			r.TradingCredit.add(ledgerLine(f, f.Balance.Neg().Decimal()))
		case PlacePLDebit:
			r.PLDebit.add(ledgerLine(f, f.Balance.Decimal()))
		case PlacePLCredit:
			r.PLCredit.add(ledgerLine(f, f.Balance.Neg().Decimal()))
		}
	}
	r.TradingDebit.sortLedgers()
	r.TradingCredit.sortLedgers()
	r.PLDebit.sortLedgers()
	r.PLCredit.sortLedgers()

	if !types.IsNegligible(openingStock) {
		r.TradingDebit.add(Line{Label: LabelOpeningStock, Amount: openingStock, Computed: true})
	}
	if !types.IsNegligible(closingStock) {
		r.TradingCredit.add(Line{Label: LabelClosingStock, Amount: closingStock, Computed: true})
	}

	r.GrossProfit = trading.Add(closingStock).Sub(openingStock)
	if r.GrossProfit.IsNegative() {
		r.PLDebit.add(Line{Label: LabelGrossLoss, Amount: r.GrossProfit.Neg(), Computed: true})
	} else {
		r.PLCredit.add(Line{Label: LabelGrossProfit, Amount: r.GrossProfit, Computed: true})
	}
	r.PLDebit.sortLedgers()
	r.PLCredit.sortLedgers()

	r.NetProfit = pl.Add(r.GrossProfit)
	return r
}

// BalanceSheet lists liabilities (with capital and the net result) against assets.
type BalanceSheet struct {
	AsOf        time.Time       `json:"asOf"`
	Liabilities Section         `json:"liabilities"`
	Assets      Section         `json:"assets"`
	NetProfit   decimal.Decimal `json:"netProfit"`
}

// BuildBalanceSheet places asset, liability and capital figures, folds in
// the net result and closing stock, and shows any difference in opening
// balances explicitly. Totals that still disagree beyond tolerance mean the
// underlying entries are corrupt and yield an IntegrityFault.
func BuildBalanceSheet(
	figures []LedgerFigure,
	netProfit decimal.Decimal,
	closingStock types.Money,
	openingDifference types.SignedMoney,
) (BalanceSheet, error) {
	r := BalanceSheet{
		Liabilities: newSection(),
		Assets:      newSection(),
		NetProfit:   netProfit,
	}

	skipped := 0
	for _, f := range figures {
		place := Classify(f.Nature, f.GroupName, f.Balance)
		if !place.IsBalanceSheet() {
			continue
		}
		if f.Balance.IsNegligible() {
			if !f.Balance.IsZero() {
				skipped++
			}
			continue
		}
		if place == PlaceLiabilities {
			r.Liabilities.add(ledgerLine(f, f.Balance.Neg().Decimal()))
		} else {
			r.Assets.add(ledgerLine(f, f.Balance.Decimal()))
		}
	}
	r.Liabilities.sortLedgers()
	r.Assets.sortLedgers()

	// Net loss reduces the liabilities side.
	if netProfit.IsNegative() {
		r.Liabilities.add(Line{Label: LabelNetLoss, Amount: netProfit, Computed: true})
	} else if !netProfit.IsZero() {
		r.Liabilities.add(Line{Label: LabelNetProfit, Amount: netProfit, Computed: true})
	}

	if !types.IsNegligible(closingStock) {
		r.Assets.add(Line{Label: LabelClosingStock, Amount: closingStock, Computed: true})
	}

	// Excess debit openings are balanced on the liabilities side and vice versa.
	if !openingDifference.IsNegligible() {
		if openingDifference.IsDebit() {
			r.Liabilities.add(Line{Label: LabelOpeningDifference, Amount: openingDifference.Abs(), Computed: true})
		} else {
			r.Assets.add(Line{Label: LabelOpeningDifference, Amount: openingDifference.Abs(), Computed: true})
		}
	}

	if err := checkTotals("balance sheet", r.Liabilities.Total, r.Assets.Total, skipped); err != nil {
		return r, err
	}
	return r, nil
}

// TrialBalanceLine is a ledger's closing balance split into Dr/Cr columns.
type TrialBalanceLine struct {
	Label    string      `json:"label"`
	LedgerID *id.ID      `json:"ledgerId,omitempty"`
	Group    string      `json:"group,omitempty"`
	Debit    types.Money `json:"debit"`
	Credit   types.Money `json:"credit"`
}

// TrialBalance lists every non-trivial ledger balance.
type TrialBalance struct {
	AsOf        time.Time          `json:"asOf"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  types.Money        `json:"totalDebit"`
	TotalCredit types.Money        `json:"totalCredit"`
}

// BuildTrialBalance lists closing balances plus the books-start opening stock
// and any opening difference. The columns must agree.
func BuildTrialBalance(figures []LedgerFigure, openingStock types.Money, openingDifference types.SignedMoney) (TrialBalance, error) {
	r := TrialBalance{Lines: []TrialBalanceLine{}, TotalDebit: types.Zero(), TotalCredit: types.Zero()}

	skipped := 0
	for _, f := range figures {
		if f.Balance.IsNegligible() {
			if !f.Balance.IsZero() {
				skipped++
			}
			continue
		}
		ledgerID := f.LedgerID
		r.Lines = append(r.Lines, TrialBalanceLine{
			Label:    f.LedgerName,
			LedgerID: &ledgerID,
			Group:    f.GroupName,
			Debit:    f.Balance.DebitPart(),
			Credit:   f.Balance.CreditPart(),
		})
	}
	sort.SliceStable(r.Lines, func(i, j int) bool {
		if r.Lines[i].Group != r.Lines[j].Group {
			return r.Lines[i].Group < r.Lines[j].Group
		}
		return r.Lines[i].Label < r.Lines[j].Label
	})

	if !types.IsNegligible(openingStock) {
		r.Lines = append(r.Lines, TrialBalanceLine{Label: LabelOpeningStock, Debit: openingStock, Credit: types.Zero()})
	}
	if !openingDifference.IsNegligible() {
		// The balancing line sits on the opposite side of the excess.
		diff := openingDifference.Neg()
		r.Lines = append(r.Lines, TrialBalanceLine{
			Label:  LabelOpeningDifference,
			Debit:  diff.DebitPart(),
			Credit: diff.CreditPart(),
		})
	}

	for _, l := range r.Lines {
		r.TotalDebit = r.TotalDebit.Add(l.Debit)
		r.TotalCredit = r.TotalCredit.Add(l.Credit)
	}

	if err := checkTotals("trial balance", r.TotalDebit, r.TotalCredit, skipped); err != nil {
		return r, err
	}
	return r, nil
}

// checkTotals allows one tolerance unit per hidden negligible balance.
func checkTotals(report string, left, right types.Money, skipped int) error {
	allowed := types.Tolerance.Mul(decimal.NewFromInt(int64(skipped + 1)))
	diff := left.Sub(right)
	if diff.Abs().GreaterThanOrEqual(allowed) {
		return apperror.NewIntegrityFault(report+" does not balance").
			WithDetail("left", left.StringFixed(2)).
			WithDetail("right", right.StringFixed(2)).
			WithDetail("difference", diff.StringFixed(2))
	}
	return nil
}
