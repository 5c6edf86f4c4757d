package statement

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/postings"
	"ledgerbook/internal/domain/valuation"
	"ledgerbook/pkg/logger"
)

const maxLedgers = 100_000

// StockValuer supplies opening and closing stock figures.
type StockValuer interface {
	OpeningStockValue(ctx context.Context, companyID id.ID, from *time.Time) (types.Money, error)
	ClosingStockValue(ctx context.Context, companyID id.ID, to *time.Time) (types.Money, error)
}

var _ StockValuer = (*valuation.Service)(nil)

// Service builds financial statements. Every call recomputes from source rows.
// Ledger figures come from one read-only snapshot; the stock valuations run
// alongside it. Closing stock enters both sides of the Balance Sheet, so the
// valuations need not share that snapshot.
type Service struct {
	store     masters.Store
	postings  postings.Repository
	stock     StockValuer
	txManager tx.Manager
}

// NewService creates the statement classifier service.
func NewService(store masters.Store, repo postings.Repository, stock StockValuer, txManager tx.Manager) *Service {
	return &Service{store: store, postings: repo, stock: stock, txManager: txManager}
}

type ledgerSet struct {
	figures []LedgerFigure

	// openingTotal is the signed sum of all ledger opening balances.
	openingTotal types.SignedMoney
}

// figures loads every ledger of the company with its balance over period,
// adding the opening balance when withOpening is set.
func (s *Service) figures(ctx context.Context, companyID id.ID, period domain.Period, withOpening bool) (*ledgerSet, error) {
	var (
		groups  []*entity.Group
		ledgers []*entity.Ledger
		sums    map[id.ID]types.SignedMoney
	)

	filter := domain.DefaultListFilter(companyID)
	filter.Limit = maxLedgers

	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		gres, err := s.store.Groups().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list groups: %w", err)
		}
		lres, err := s.store.Ledgers().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list ledgers: %w", err)
		}
		groups, ledgers = gres.Items, lres.Items

		sums, err = s.postings.SumLedgersByCompany(ctx, companyID, period)
		if err != nil {
			return fmt.Errorf("sum ledgers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[id.ID]*entity.Group, len(groups))
	for _, grp := range groups {
		byID[grp.ID] = grp
	}

	set := &ledgerSet{
		figures:      make([]LedgerFigure, 0, len(ledgers)),
		openingTotal: types.Signed(types.Zero()),
	}
	for _, l := range ledgers {
		set.openingTotal = set.openingTotal.Add(l.OpeningBalance)

		bal := sums[l.ID]
		if withOpening {
			bal = bal.Add(l.OpeningBalance)
		}
		f := LedgerFigure{LedgerID: l.ID, LedgerName: l.Name, Balance: bal}
		if grp, ok := byID[l.GroupID]; ok {
			f.GroupName = grp.Name
			f.Nature = grp.Nature
		}
		set.figures = append(set.figures, f)
	}
	return set, nil
}

func (s *Service) company(ctx context.Context, companyID id.ID) (*entity.Company, error) {
	c, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", companyID.String())
		}
		return nil, err
	}
	return c, nil
}

// TradingAndPL computes the Trading and Profit & Loss account for [from, to].
// Income and expense ledgers contribute their movement within the period;
// opening balances count only when the period starts at or before the books.
func (s *Service) TradingAndPL(ctx context.Context, companyID id.ID, from, to *time.Time) (*TradingAndPL, error) {
	period := domain.Between(from, to)
	if period.From != nil && period.To != nil && period.From.After(*period.To) {
		return nil, apperror.NewValidation("period start is after period end")
	}

	company, err := s.company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	withOpening := period.From == nil || !period.From.After(company.BooksStart)

	var (
		set          *ledgerSet
		openingStock types.Money
		closingStock types.Money
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		set, err = s.figures(gctx, companyID, period, withOpening)
		return err
	})
	g.Go(func() error {
		var err error
		openingStock, err = s.stock.OpeningStockValue(gctx, companyID, period.From)
		return err
	})
	g.Go(func() error {
		var err error
		closingStock, err = s.stock.ClosingStockValue(gctx, companyID, period.To)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := BuildTradingAndPL(set.figures, openingStock, closingStock)
	r.From, r.To = period.From, period.To
	return &r, nil
}

// position gathers the whole-history figures a Balance Sheet or Trial Balance needs.
func (s *Service) position(ctx context.Context, companyID id.ID, asOf time.Time) (*ledgerSet, types.Money, types.Money, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return nil, types.Zero(), types.Zero(), err
	}

	var (
		set          *ledgerSet
		openingStock types.Money
		closingStock types.Money
	)
	day := entity.DateOnly(asOf)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		set, err = s.figures(gctx, companyID, domain.Through(day), true)
		return err
	})
	g.Go(func() error {
		var err error
		openingStock, err = s.stock.OpeningStockValue(gctx, companyID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		closingStock, err = s.stock.ClosingStockValue(gctx, companyID, &day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, types.Zero(), types.Zero(), err
	}
	return set, openingStock, closingStock, nil
}

// BalanceSheet computes the Balance Sheet as of asOf, folding in the net
// result of the whole history up to that date.
func (s *Service) BalanceSheet(ctx context.Context, companyID id.ID, asOf time.Time) (*BalanceSheet, error) {
	set, openingStock, closingStock, err := s.position(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	pl := BuildTradingAndPL(set.figures, openingStock, closingStock)
	openingDiff := set.openingTotal.Add(types.Signed(openingStock))

	bs, err := BuildBalanceSheet(set.figures, pl.NetProfit, closingStock, openingDiff)
	bs.AsOf = entity.DateOnly(asOf)
	if err != nil {
		logger.Error(ctx, "balance sheet integrity fault",
			"company_id", companyID,
			"as_of", bs.AsOf.Format(time.DateOnly),
			"error", err)
		return nil, err
	}
	return &bs, nil
}

// TrialBalance lists closing balances as of asOf.
func (s *Service) TrialBalance(ctx context.Context, companyID id.ID, asOf time.Time) (*TrialBalance, error) {
	set, openingStock, _, err := s.position(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	openingDiff := set.openingTotal.Add(types.Signed(openingStock))
	tb, err := BuildTrialBalance(set.figures, openingStock, openingDiff)
	tb.AsOf = entity.DateOnly(asOf)
	if err != nil {
		logger.Error(ctx, "trial balance integrity fault",
			"company_id", companyID,
			"as_of", tb.AsOf.Format(time.DateOnly),
			"error", err)
		return nil, err
	}
	return &tb, nil
}
