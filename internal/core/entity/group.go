package entity

import (
	"context"
	"strings"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/id"
)

// Nature decides where a group's ledgers land in the financial statements.
type Nature string

const (
	NatureAsset     Nature = "ASSET"
	NatureLiability Nature = "LIABILITY"
	NatureIncome    Nature = "INCOME"
	NatureExpense   Nature = "EXPENSE"
	NatureCapital   Nature = "CAPITAL"
)

// Valid reports whether n is a known nature.
func (n Nature) Valid() bool {
	switch n {
	case NatureAsset, NatureLiability, NatureIncome, NatureExpense, NatureCapital:
		return true
	}
	return false
}

// Reserved group names.
const (
	PrimaryGroupName  = "Primary"
	SuspenseGroupName = "Suspense Account"
	CapitalGroupName  = "Capital Account"
)

// Group classifies ledgers. The parent link is for display only;
// every group carries its own nature.
type Group struct {
	BaseEntity
	Name     string `db:"name" json:"name"`
	Nature   Nature `db:"nature" json:"nature"`
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`
}

// NewGroup creates a group.
func NewGroup(companyID id.ID, name string, nature Nature) *Group {
	return &Group{
		BaseEntity: NewBaseEntity(companyID),
		Name:       strings.TrimSpace(name),
		Nature:     nature,
	}
}

// Validate implements Validatable.
func (g *Group) Validate(_ context.Context) error {
	if g.Name == "" {
		return apperror.NewValidation("group name is required").WithDetail("field", "name")
	}
	if !g.Nature.Valid() {
		return apperror.NewValidation("invalid group nature").
			WithDetail("field", "nature").
			WithDetail("value", string(g.Nature))
	}
	if g.ParentID != nil && *g.ParentID == g.ID {
		return apperror.NewValidation("group cannot be its own parent").WithDetail("field", "parentId")
	}
	return nil
}

// StockGroup classifies stock items.
type StockGroup struct {
	BaseEntity
	Name     string `db:"name" json:"name"`
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`
}

// NewStockGroup creates a stock group.
func NewStockGroup(companyID id.ID, name string) *StockGroup {
	return &StockGroup{
		BaseEntity: NewBaseEntity(companyID),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable.
func (g *StockGroup) Validate(_ context.Context) error {
	if g.Name == "" {
		return apperror.NewValidation("stock group name is required").WithDetail("field", "name")
	}
	return nil
}

// Unit is a unit of measure such as "Nos" or "Kg".
type Unit struct {
	BaseEntity
	Symbol string `db:"symbol" json:"symbol"`
	Name   string `db:"name" json:"name"`
}

// NewUnit creates a unit whose name defaults to its symbol.
func NewUnit(companyID id.ID, symbol, name string) *Unit {
	symbol = strings.TrimSpace(symbol)
	name = strings.TrimSpace(name)
	if name == "" {
		name = symbol
	}
	return &Unit{
		BaseEntity: NewBaseEntity(companyID),
		Symbol:     symbol,
		Name:       name,
	}
}

// Validate implements Validatable.
func (u *Unit) Validate(_ context.Context) error {
	if u.Symbol == "" {
		return apperror.NewValidation("unit symbol is required").WithDetail("field", "symbol")
	}
	return nil
}

// UniqueKey is the name, unique per company.
func (g *Group) UniqueKey() string { return g.Name }

// UniqueKey is the name, unique per company.
func (g *StockGroup) UniqueKey() string { return g.Name }

// UniqueKey is the symbol, unique per company.
func (u *Unit) UniqueKey() string { return u.Symbol }
