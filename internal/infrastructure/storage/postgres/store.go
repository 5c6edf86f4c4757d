package postgres

import (
	"context"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/numerator"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/postings"
	"ledgerbook/internal/domain/voucher"
	infranumerator "ledgerbook/internal/infrastructure/numerator"
)

var (
	_ tx.Manager              = (*Store)(nil)
	_ masters.Store           = (*Store)(nil)
	_ masters.UsageRepository = (*Usage)(nil)
	_ postings.Repository     = (*Postings)(nil)
	_ voucher.Repository      = (*Vouchers)(nil)
)

// Store bundles the PostgreSQL repositories behind one transaction manager.
type Store struct {
	*TxManager

	companies   *Companies
	groups      *masterRepo[*entity.Group]
	ledgers     *masterRepo[*entity.Ledger]
	stockGroups *masterRepo[*entity.StockGroup]
	units       *masterRepo[*entity.Unit]
	stockItems  *masterRepo[*entity.StockItem]
	usage       *Usage
	vouchers    *Vouchers
	postings    *Postings
	numerator   *infranumerator.Service
}

// NewStore wires the repositories on pool.
func NewStore(pool *Pool) *Store {
	txm := NewTxManager(pool)
	return &Store{
		TxManager: txm,
		companies: &Companies{txm: txm, cols: ExtractDBColumns[entity.Company]()},
		groups: newMasterRepo(txm, "groups", "group", "name",
			func() *entity.Group { return &entity.Group{} }),
		ledgers: newMasterRepo(txm, "ledgers", "ledger", "name",
			func() *entity.Ledger { return &entity.Ledger{} }),
		stockGroups: newMasterRepo(txm, "stock_groups", "stock group", "name",
			func() *entity.StockGroup { return &entity.StockGroup{} }),
		units: newMasterRepo(txm, "units", "unit", "symbol",
			func() *entity.Unit { return &entity.Unit{} }, "symbol", "name"),
		stockItems: newMasterRepo(txm, "stock_items", "stock item", "name",
			func() *entity.StockItem { return &entity.StockItem{} }),
		usage:     &Usage{txm: txm},
		vouchers:  &Vouchers{txm: txm, batch: NewBatchInserter(txm), cols: ExtractDBColumns[entity.Voucher]()},
		postings:  &Postings{txm: txm},
		numerator: infranumerator.New(func(ctx context.Context) infranumerator.Querier { return txm.GetQuerier(ctx) }),
	}
}

func (s *Store) Companies() masters.CompanyRepository { return s.companies }

func (s *Store) Groups() domain.MasterRepository[*entity.Group] { return s.groups }

func (s *Store) Ledgers() domain.MasterRepository[*entity.Ledger] { return s.ledgers }

func (s *Store) StockGroups() domain.MasterRepository[*entity.StockGroup] { return s.stockGroups }

func (s *Store) Units() domain.MasterRepository[*entity.Unit] { return s.units }

func (s *Store) StockItems() domain.MasterRepository[*entity.StockItem] { return s.stockItems }

func (s *Store) Usage() masters.UsageRepository { return s.usage }

func (s *Store) Vouchers() voucher.Repository { return s.vouchers }

func (s *Store) Postings() postings.Repository { return s.postings }

func (s *Store) Numerator() numerator.Generator { return s.numerator }
