package dto

import (
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
)

// CompanyRequest creates or renames a company.
type CompanyRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	FiscalYearStart string `json:"fiscalYearStart" binding:"required"`
	BooksStart      string `json:"booksStart"`
}

// ToEntity converts the request into a new company.
func (r *CompanyRequest) ToEntity() (*entity.Company, error) {
	fy, err := ParseDate("fiscalYearStart", r.FiscalYearStart)
	if err != nil {
		return nil, err
	}
	c := entity.NewCompany(r.Name, fy)
	if err := r.applyBooksStart(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyTo copies the request onto an existing company.
func (r *CompanyRequest) ApplyTo(c *entity.Company) error {
	fy, err := ParseDate("fiscalYearStart", r.FiscalYearStart)
	if err != nil {
		return err
	}
	c.Name = r.Name
	c.FiscalYearStart = entity.DateOnly(fy)
	c.BooksStart = c.FiscalYearStart
	return r.applyBooksStart(c)
}

func (r *CompanyRequest) applyBooksStart(c *entity.Company) error {
	bs, err := ParseOptionalDate("booksStart", r.BooksStart)
	if err != nil || bs == nil {
		return err
	}
	c.BooksStart = entity.DateOnly(*bs)
	return nil
}

// GroupRequest creates or updates an account group.
type GroupRequest struct {
	Name     string        `json:"name" binding:"required,max=200"`
	Nature   entity.Nature `json:"nature" binding:"required,oneof=ASSET LIABILITY INCOME EXPENSE CAPITAL"`
	ParentID *id.ID        `json:"parentId"`
}

func (r GroupRequest) ToEntity(companyID id.ID) *entity.Group {
	g := entity.NewGroup(companyID, r.Name, r.Nature)
	g.ParentID = r.ParentID
	return g
}

func (r GroupRequest) ApplyTo(g *entity.Group) {
	g.Name, g.Nature, g.ParentID = r.Name, r.Nature, r.ParentID
}

// LedgerRequest creates or updates a ledger. OpeningBalance is Dr-positive.
type LedgerRequest struct {
	Name           string            `json:"name" binding:"required,max=200"`
	GroupID        id.ID             `json:"groupId" binding:"required"`
	OpeningBalance types.SignedMoney `json:"openingBalance"`
}

func (r LedgerRequest) ToEntity(companyID id.ID) *entity.Ledger {
	return entity.NewLedger(companyID, r.GroupID, r.Name, r.OpeningBalance)
}

func (r LedgerRequest) ApplyTo(l *entity.Ledger) {
	l.Name, l.GroupID, l.OpeningBalance = r.Name, r.GroupID, r.OpeningBalance
}

// StockGroupRequest creates or updates a stock group.
type StockGroupRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	ParentID *id.ID `json:"parentId"`
}

func (r StockGroupRequest) ToEntity(companyID id.ID) *entity.StockGroup {
	g := entity.NewStockGroup(companyID, r.Name)
	g.ParentID = r.ParentID
	return g
}

func (r StockGroupRequest) ApplyTo(g *entity.StockGroup) {
	g.Name, g.ParentID = r.Name, r.ParentID
}

// UnitRequest creates or updates a unit of measure.
type UnitRequest struct {
	Symbol string `json:"symbol" binding:"required,max=32"`
	Name   string `json:"name" binding:"max=200"`
}

func (r UnitRequest) ToEntity(companyID id.ID) *entity.Unit {
	return entity.NewUnit(companyID, r.Symbol, r.Name)
}

func (r UnitRequest) ApplyTo(u *entity.Unit) {
	u.Symbol = r.Symbol
	u.Name = r.Name
	if u.Name == "" {
		u.Name = r.Symbol
	}
}

// StockItemRequest creates or updates a stock item.
type StockItemRequest struct {
	Name         string         `json:"name" binding:"required,max=200"`
	StockGroupID *id.ID         `json:"stockGroupId"`
	UnitID       *id.ID         `json:"unitId"`
	OpeningQty   types.Quantity `json:"openingQty"`
	OpeningValue types.Money    `json:"openingValue"`
	GSTRate      types.Rate     `json:"gstRate"`
}

func (r StockItemRequest) ToEntity(companyID id.ID) *entity.StockItem {
	it := entity.NewStockItem(companyID, r.Name, r.OpeningQty, r.OpeningValue)
	it.StockGroupID, it.UnitID, it.GSTRate = r.StockGroupID, r.UnitID, r.GSTRate
	return it
}

// ApplyTo keeps QuantityOnHand in step with a changed opening quantity.
func (r StockItemRequest) ApplyTo(it *entity.StockItem) {
	it.QuantityOnHand = it.QuantityOnHand.Add(r.OpeningQty.Sub(it.OpeningQty))
	it.Name = r.Name
	it.StockGroupID, it.UnitID, it.GSTRate = r.StockGroupID, r.UnitID, r.GSTRate
	it.OpeningQty, it.OpeningValue = r.OpeningQty, r.OpeningValue
}
