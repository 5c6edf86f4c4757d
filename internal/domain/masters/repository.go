// Package masters manages the ledger's master data: companies, account groups,
// ledgers, stock groups, units and stock items.
package masters

import (
	"context"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain"
)

// CompanyRepository persists companies.
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	GetByID(ctx context.Context, id id.ID) (*entity.Company, error)
	Update(ctx context.Context, c *entity.Company) error
	// Delete removes the company and everything it owns.
	Delete(ctx context.Context, id id.ID) error
	List(ctx context.Context) ([]*entity.Company, error)
}

// UsageRepository answers referential questions that guard deletes.
type UsageRepository interface {
	LedgerHasEntries(ctx context.Context, ledgerID id.ID) (bool, error)
	StockItemHasEntries(ctx context.Context, stockItemID id.ID) (bool, error)
	GroupInUse(ctx context.Context, groupID id.ID) (bool, error)
	StockGroupInUse(ctx context.Context, stockGroupID id.ID) (bool, error)
	UnitInUse(ctx context.Context, unitID id.ID) (bool, error)
}

// Store bundles the master repositories.
type Store interface {
	Companies() CompanyRepository
	Groups() domain.MasterRepository[*entity.Group]
	Ledgers() domain.MasterRepository[*entity.Ledger]
	StockGroups() domain.MasterRepository[*entity.StockGroup]
	Units() domain.MasterRepository[*entity.Unit]
	StockItems() domain.MasterRepository[*entity.StockItem]
	Usage() UsageRepository
}
