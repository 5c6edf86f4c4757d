package masters

import (
	"context"
	"fmt"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain"
	"ledgerbook/pkg/logger"
)

// Service groups the per-record master services and wires their
// referential rules as hooks.
type Service struct {
	store     Store
	txManager tx.Manager

	Groups      *domain.MasterService[*entity.Group]
	Ledgers     *domain.MasterService[*entity.Ledger]
	StockGroups *domain.MasterService[*entity.StockGroup]
	Units       *domain.MasterService[*entity.Unit]
	StockItems  *domain.MasterService[*entity.StockItem]
}

// NewService creates the masters service.
func NewService(store Store, txManager tx.Manager) *Service {
	s := &Service{
		store:     store,
		txManager: txManager,
		Groups: domain.NewMasterService(domain.MasterServiceConfig[*entity.Group]{
			Repo: store.Groups(), TxManager: txManager, EntityName: "group",
		}),
		Ledgers: domain.NewMasterService(domain.MasterServiceConfig[*entity.Ledger]{
			Repo: store.Ledgers(), TxManager: txManager, EntityName: "ledger",
		}),
		StockGroups: domain.NewMasterService(domain.MasterServiceConfig[*entity.StockGroup]{
			Repo: store.StockGroups(), TxManager: txManager, EntityName: "stock group",
		}),
		Units: domain.NewMasterService(domain.MasterServiceConfig[*entity.Unit]{
			Repo: store.Units(), TxManager: txManager, EntityName: "unit", KeyField: "symbol",
		}),
		StockItems: domain.NewMasterService(domain.MasterServiceConfig[*entity.StockItem]{
			Repo: store.StockItems(), TxManager: txManager, EntityName: "stock item",
		}),
	}
	s.registerHooks()
	return s
}

func (s *Service) registerHooks() {
	usage := s.store.Usage()

	checkGroupParent := func(ctx context.Context, g *entity.Group) error {
		if g.ParentID == nil {
			return nil
		}
		return s.requireOwned(ctx, "parent group", g.CompanyID, *g.ParentID, func(ctx context.Context, pid id.ID) (id.ID, error) {
			p, err := s.store.Groups().GetByID(ctx, pid)
			if err != nil {
				return id.ID{}, err
			}
			return p.CompanyID, nil
		})
	}
	s.Groups.Hooks().On(domain.BeforeCreate, checkGroupParent)
	s.Groups.Hooks().On(domain.BeforeUpdate, checkGroupParent)
	s.Groups.Hooks().On(domain.BeforeDelete, func(ctx context.Context, g *entity.Group) error {
		inUse, err := usage.GroupInUse(ctx, g.ID)
		if err != nil {
			return err
		}
		if inUse {
			return apperror.NewValidation("group has ledgers or sub-groups").
				WithDetail("group_id", g.ID.String())
		}
		return nil
	})

	checkLedgerGroup := func(ctx context.Context, l *entity.Ledger) error {
		return s.requireOwned(ctx, "group", l.CompanyID, l.GroupID, func(ctx context.Context, gid id.ID) (id.ID, error) {
			g, err := s.store.Groups().GetByID(ctx, gid)
			if err != nil {
				return id.ID{}, err
			}
			return g.CompanyID, nil
		})
	}
	s.Ledgers.Hooks().On(domain.BeforeCreate, checkLedgerGroup)
	s.Ledgers.Hooks().On(domain.BeforeUpdate, checkLedgerGroup)
	s.Ledgers.Hooks().On(domain.BeforeDelete, func(ctx context.Context, l *entity.Ledger) error {
		has, err := usage.LedgerHasEntries(ctx, l.ID)
		if err != nil {
			return err
		}
		if has {
			return apperror.NewValidation("ledger has voucher entries and cannot be deleted").
				WithDetail("ledger_id", l.ID.String())
		}
		return nil
	})

	s.StockGroups.Hooks().On(domain.BeforeDelete, func(ctx context.Context, g *entity.StockGroup) error {
		inUse, err := usage.StockGroupInUse(ctx, g.ID)
		if err != nil {
			return err
		}
		if inUse {
			return apperror.NewValidation("stock group has items or sub-groups").
				WithDetail("stock_group_id", g.ID.String())
		}
		return nil
	})

	s.Units.Hooks().On(domain.BeforeDelete, func(ctx context.Context, u *entity.Unit) error {
		inUse, err := usage.UnitInUse(ctx, u.ID)
		if err != nil {
			return err
		}
		if inUse {
			return apperror.NewValidation("unit is used by stock items").
				WithDetail("unit_id", u.ID.String())
		}
		return nil
	})

	checkItemRefs := func(ctx context.Context, it *entity.StockItem) error {
		if it.StockGroupID != nil {
			err := s.requireOwned(ctx, "stock group", it.CompanyID, *it.StockGroupID, func(ctx context.Context, gid id.ID) (id.ID, error) {
				g, err := s.store.StockGroups().GetByID(ctx, gid)
				if err != nil {
					return id.ID{}, err
				}
				return g.CompanyID, nil
			})
			if err != nil {
				return err
			}
		}
		if it.UnitID != nil {
			return s.requireOwned(ctx, "unit", it.CompanyID, *it.UnitID, func(ctx context.Context, uid id.ID) (id.ID, error) {
				u, err := s.store.Units().GetByID(ctx, uid)
				if err != nil {
					return id.ID{}, err
				}
				return u.CompanyID, nil
			})
		}
		return nil
	}
	s.StockItems.Hooks().On(domain.BeforeCreate, checkItemRefs)
	s.StockItems.Hooks().On(domain.BeforeUpdate, checkItemRefs)
	s.StockItems.Hooks().On(domain.BeforeDelete, func(ctx context.Context, it *entity.StockItem) error {
		has, err := usage.StockItemHasEntries(ctx, it.ID)
		if err != nil {
			return err
		}
		if has {
			return apperror.NewValidation("stock item has inventory entries and cannot be deleted").
				WithDetail("stock_item_id", it.ID.String())
		}
		return nil
	})
}

// requireOwned checks that ref exists and belongs to companyID.
func (s *Service) requireOwned(
	ctx context.Context,
	what string,
	companyID, ref id.ID,
	owner func(ctx context.Context, ref id.ID) (id.ID, error),
) error {
	refCompany, err := owner(ctx, ref)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation(what+" does not exist").WithDetail("id", ref.String())
		}
		return err
	}
	if refCompany != companyID {
		return apperror.NewValidation(what+" belongs to another company").WithDetail("id", ref.String())
	}
	return nil
}

// --- Companies ---

// CreateCompany validates and stores a company.
func (s *Service) CreateCompany(ctx context.Context, c *entity.Company) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.store.Companies().Create(ctx, c)
	})
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	logger.Info(ctx, "company created", "company_id", c.ID, "name", c.Name)
	return nil
}

// GetCompany returns a company by id.
func (s *Service) GetCompany(ctx context.Context, companyID id.ID) (*entity.Company, error) {
	c, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", companyID.String())
		}
		return nil, err
	}
	return c, nil
}

// UpdateCompany stores changed company settings.
func (s *Service) UpdateCompany(ctx context.Context, c *entity.Company) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetCompany(ctx, c.ID); err != nil {
			return err
		}
		return s.store.Companies().Update(ctx, c)
	})
}

// DeleteCompany removes a company with all of its books.
func (s *Service) DeleteCompany(ctx context.Context, companyID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetCompany(ctx, companyID); err != nil {
			return err
		}
		return s.store.Companies().Delete(ctx, companyID)
	})
}

// ListCompanies returns all companies.
func (s *Service) ListCompanies(ctx context.Context) ([]*entity.Company, error) {
	return s.store.Companies().List(ctx)
}
