// Package statement builds the Trading and Profit & Loss account, the Balance
// Sheet and the Trial Balance from ledger balances and stock valuation.
package statement

import (
	"strings"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/types"
)

// Placement is the statement section a ledger's balance lands in.
type Placement int

const (
	PlaceLiabilities Placement = iota
	PlaceAssets
	PlaceTradingCredit
	PlaceTradingDebit
	PlacePLCredit
	PlacePLDebit
)

func (p Placement) String() string {
	switch p {
	case PlaceLiabilities:
		return "liabilities"
	case PlaceAssets:
		return "assets"
	case PlaceTradingCredit:
		return "trading-credit"
	case PlaceTradingDebit:
		return "trading-debit"
	case PlacePLCredit:
		return "pl-credit"
	case PlacePLDebit:
		return "pl-debit"
	}
	return "unknown"
}

// IsBalanceSheet reports whether the placement belongs to the Balance Sheet.
func (p Placement) IsBalanceSheet() bool {
	return p == PlaceLiabilities || p == PlaceAssets
}

// Classify routes a ledger by its group's nature, falling back to a
// case-insensitive match on the group name. The balance decides only when
// neither nature nor name is conclusive.
func Classify(nature entity.Nature, groupName string, balance types.SignedMoney) Placement {
	name := strings.ToLower(groupName)
	indirect := strings.Contains(name, "indirect")

	switch {
	case nature == entity.NatureLiability || nature == entity.NatureCapital:
		return PlaceLiabilities
	case nature == entity.NatureAsset:
		return PlaceAssets
	case nature == entity.NatureIncome || strings.Contains(name, "sales") || strings.Contains(name, "direct inc"):
		if indirect {
			return PlacePLCredit
		}
		return PlaceTradingCredit
	case nature == entity.NatureExpense || strings.Contains(name, "purchase") || strings.Contains(name, "direct exp"):
		if indirect {
			return PlacePLDebit
		}
		return PlaceTradingDebit
	}

	if balance.IsCredit() {
		return PlaceLiabilities
	}
	return PlaceAssets
}
