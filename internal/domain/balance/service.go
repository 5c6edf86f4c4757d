// Package balance computes point-in-time ledger and stock item balances from
// opening figures plus approved movements.
package balance

import (
	"context"
	"fmt"
	"time"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/postings"
)

// MasterReader resolves the records a balance is computed for.
type MasterReader interface {
	Ledgers() domain.MasterRepository[*entity.Ledger]
	StockItems() domain.MasterRepository[*entity.StockItem]
}

// LedgerRow is one period entry with its running balance.
type LedgerRow struct {
	postings.LedgerPosting
	Debit   types.Money       `json:"debit"`
	Credit  types.Money       `json:"credit"`
	Running types.SignedMoney `json:"running"`
}

// LedgerBalance is the result of a ledger balance query.
type LedgerBalance struct {
	LedgerID     id.ID             `json:"ledgerId"`
	LedgerName   string            `json:"ledgerName"`
	From         *time.Time        `json:"from,omitempty"`
	To           *time.Time        `json:"to,omitempty"`
	Opening      types.SignedMoney `json:"opening"`
	PeriodDebit  types.Money       `json:"periodDebit"`
	PeriodCredit types.Money       `json:"periodCredit"`
	Closing      types.SignedMoney `json:"closing"`
	Entries      []LedgerRow       `json:"entries"`
}

// StockRow is one period movement with the running quantity.
type StockRow struct {
	postings.InventoryPosting
	QtyIn      types.Quantity `json:"qtyIn"`
	QtyOut     types.Quantity `json:"qtyOut"`
	RunningQty types.Quantity `json:"runningQty"`
}

// StockItemBalance is the result of a stock item balance query.
type StockItemBalance struct {
	StockItemID   id.ID          `json:"stockItemId"`
	StockItemName string         `json:"stockItemName"`
	From          *time.Time     `json:"from,omitempty"`
	To            *time.Time     `json:"to,omitempty"`
	OpeningQty    types.Quantity `json:"openingQty"`
	QtyIn         types.Quantity `json:"qtyIn"`
	QtyOut        types.Quantity `json:"qtyOut"`
	ClosingQty    types.Quantity `json:"closingQty"`
	Entries       []StockRow     `json:"entries"`
}

// Service is the balance engine. It has no side effects.
type Service struct {
	masters   MasterReader
	postings  postings.Repository
	txManager tx.Manager
}

// NewService creates the balance engine.
func NewService(masters MasterReader, repo postings.Repository, txManager tx.Manager) *Service {
	return &Service{masters: masters, postings: repo, txManager: txManager}
}

func checkWindow(from, to *time.Time) error {
	if from != nil && to != nil && entity.DateOnly(*from).After(entity.DateOnly(*to)) {
		return apperror.NewValidation("period start is after period end").
			WithDetail("from", from.Format(time.DateOnly)).
			WithDetail("to", to.Format(time.DateOnly))
	}
	return nil
}

// LedgerBalance returns opening, period movement, closing and the period
// entries of a ledger. Omitted bounds are unbounded.
func (s *Service) LedgerBalance(ctx context.Context, ledgerID id.ID, from, to *time.Time) (*LedgerBalance, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}

	var result *LedgerBalance
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		ledger, err := s.masters.Ledgers().GetByID(ctx, ledgerID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("ledger", ledgerID.String())
			}
			return fmt.Errorf("get ledger: %w", err)
		}

		period := domain.Between(from, to)
		opening := ledger.OpeningBalance
		if period.From != nil {
			before, err := s.postings.SumLedger(ctx, ledgerID, domain.Before(*period.From))
			if err != nil {
				return fmt.Errorf("sum ledger before period: %w", err)
			}
			opening = opening.Add(before)
		}

		rows, err := s.postings.LedgerPostings(ctx, ledgerID, period)
		if err != nil {
			return fmt.Errorf("list ledger postings: %w", err)
		}

		result = &LedgerBalance{
			LedgerID:     ledger.ID,
			LedgerName:   ledger.Name,
			From:         period.From,
			To:           period.To,
			Opening:      opening,
			PeriodDebit:  types.Zero(),
			PeriodCredit: types.Zero(),
			Entries:      make([]LedgerRow, 0, len(rows)),
		}

		running := opening
		for _, p := range rows {
			running = running.Add(p.Amount)
			result.PeriodDebit = result.PeriodDebit.Add(p.Amount.DebitPart())
			result.PeriodCredit = result.PeriodCredit.Add(p.Amount.CreditPart())
			result.Entries = append(result.Entries, LedgerRow{
				LedgerPosting: p,
				Debit:         p.Amount.DebitPart(),
				Credit:        p.Amount.CreditPart(),
				Running:       running,
			})
		}
		result.Closing = running
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StockItemBalance returns opening quantity, inward/outward movement and
// closing quantity of a stock item. Omitted bounds are unbounded.
func (s *Service) StockItemBalance(ctx context.Context, stockItemID id.ID, from, to *time.Time) (*StockItemBalance, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}

	var result *StockItemBalance
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		item, err := s.masters.StockItems().GetByID(ctx, stockItemID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("stock item", stockItemID.String())
			}
			return fmt.Errorf("get stock item: %w", err)
		}

		period := domain.Between(from, to)
		opening := item.OpeningQty
		if period.From != nil {
			before, err := s.postings.SumInventory(ctx, stockItemID, domain.Before(*period.From))
			if err != nil {
				return fmt.Errorf("sum inventory before period: %w", err)
			}
			opening = opening.Add(before.Net())
		}

		rows, err := s.postings.InventoryPostings(ctx, stockItemID, period)
		if err != nil {
			return fmt.Errorf("list inventory postings: %w", err)
		}

		result = &StockItemBalance{
			StockItemID:   item.ID,
			StockItemName: item.Name,
			From:          period.From,
			To:            period.To,
			OpeningQty:    opening,
			QtyIn:         types.Zero(),
			QtyOut:        types.Zero(),
			Entries:       make([]StockRow, 0, len(rows)),
		}

		running := opening
		for _, p := range rows {
			row := StockRow{InventoryPosting: p, QtyIn: types.Zero(), QtyOut: types.Zero()}
			if p.Quantity.IsPositive() {
				row.QtyIn = p.Quantity
				result.QtyIn = result.QtyIn.Add(p.Quantity)
			} else {
				row.QtyOut = p.Quantity.Neg()
				result.QtyOut = result.QtyOut.Add(row.QtyOut)
			}
			running = running.Add(p.Quantity)
			row.RunningQty = running
			result.Entries = append(result.Entries, row)
		}
		result.ClosingQty = running
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
