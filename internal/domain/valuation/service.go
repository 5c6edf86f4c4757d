package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/postings"
)

// maxItems bounds a single stock summary listing.
const maxItems = 100_000

// StockSummary lists every stock item's WAC position at a cutoff.
type StockSummary struct {
	CompanyID  id.ID           `json:"companyId"`
	AsOf       *time.Time      `json:"asOf,omitempty"`
	Items      []ItemValuation `json:"items"`
	TotalValue types.Money     `json:"totalValue"`
}

// Service values stock from source rows on every call.
type Service struct {
	items     domain.MasterRepository[*entity.StockItem]
	postings  postings.Repository
	txManager tx.Manager
}

// NewService creates the valuation engine.
func NewService(items domain.MasterRepository[*entity.StockItem], repo postings.Repository, txManager tx.Manager) *Service {
	return &Service{items: items, postings: repo, txManager: txManager}
}

// ValueItem values one stock item using approved movements within period.
func (s *Service) ValueItem(ctx context.Context, stockItemID id.ID, period domain.Period) (*ItemValuation, error) {
	item, err := s.items.GetByID(ctx, stockItemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("stock item", stockItemID.String())
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	moved, err := s.postings.SumInventory(ctx, stockItemID, period)
	if err != nil {
		return nil, fmt.Errorf("sum inventory: %w", err)
	}
	v := Value(item, moved)
	return &v, nil
}

// ValueCompany values every stock item of a company using approved movements
// within period. Items are returned sorted by name.
func (s *Service) ValueCompany(ctx context.Context, companyID id.ID, period domain.Period) ([]ItemValuation, types.Money, error) {
	filter := domain.DefaultListFilter(companyID)
	filter.Limit = maxItems
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, types.Zero(), fmt.Errorf("list stock items: %w", err)
	}
	moved, err := s.postings.SumInventoryByCompany(ctx, companyID, period)
	if err != nil {
		return nil, types.Zero(), fmt.Errorf("sum inventory: %w", err)
	}
	out, total := valueAll(items.Items, moved)
	return out, total, nil
}

func valueAll(items []*entity.StockItem, moved map[id.ID]postings.InventoryTotals) ([]ItemValuation, types.Money) {
	out := make([]ItemValuation, 0, len(items))
	total := types.Zero()
	for _, item := range items {
		v := Value(item, moved[item.ID])
		total = total.Add(v.ClosingValue)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, total
}

// OpeningStockValue values stock as of the day before from.
// Without from it is the books-start opening value.
func (s *Service) OpeningStockValue(ctx context.Context, companyID id.ID, from *time.Time) (types.Money, error) {
	if from != nil {
		_, total, err := s.ValueCompany(ctx, companyID, domain.Before(*from))
		return total, err
	}

	filter := domain.DefaultListFilter(companyID)
	filter.Limit = maxItems
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return types.Zero(), fmt.Errorf("list stock items: %w", err)
	}
	_, total := valueAll(items.Items, nil)
	return total, nil
}

// ClosingStockValue values stock as of to (whole history when nil).
func (s *Service) ClosingStockValue(ctx context.Context, companyID id.ID, to *time.Time) (types.Money, error) {
	period := domain.Unbounded()
	if to != nil {
		period = domain.Through(*to)
	}
	_, total, err := s.ValueCompany(ctx, companyID, period)
	return total, err
}

// StockSummary values all items of a company as of asOf.
func (s *Service) StockSummary(ctx context.Context, companyID id.ID, asOf *time.Time) (*StockSummary, error) {
	period := domain.Unbounded()
	if asOf != nil {
		period = domain.Through(*asOf)
	}

	summary := &StockSummary{CompanyID: companyID, AsOf: period.To}
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		items, total, err := s.ValueCompany(ctx, companyID, period)
		if err != nil {
			return err
		}
		summary.Items = items
		summary.TotalValue = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
