package voucher

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/numerator"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/pkg/logger"
)

var tracer = otel.Tracer("ledgerbook/voucher")

// Service creates, edits, verifies and deletes vouchers.
// Every write runs in one transaction together with its entries.
type Service struct {
	repo      Repository
	masters   masters.Store
	txManager tx.Manager
	numerator numerator.Generator
	codes     *CodeGenerator
}

// NewService creates the voucher service.
func NewService(repo Repository, store masters.Store, txManager tx.Manager, gen numerator.Generator) *Service {
	return &Service{
		repo:      repo,
		masters:   store,
		txManager: txManager,
		numerator: gen,
		codes:     NewCodeGenerator(),
	}
}

// Create records a manually entered voucher. It starts PENDING unless the
// actor is privileged, in which case it is approved by the actor.
func (s *Service) Create(ctx context.Context, in Input, actor entity.Actor) (*entity.Voucher, error) {
	return s.create(ctx, in, actor, false)
}

// CreateImported records a voucher from an import as APPROVED. Called inside
// a transaction it joins it, so the voucher commits with the import's other
// changes.
func (s *Service) CreateImported(ctx context.Context, in Input, actor entity.Actor) (*entity.Voucher, error) {
	return s.create(ctx, in, actor, true)
}

func (s *Service) create(ctx context.Context, in Input, actor entity.Actor, imported bool) (*entity.Voucher, error) {
	ctx, span := tracer.Start(ctx, "voucher.create", trace.WithAttributes(
		attribute.String("company.id", in.CompanyID.String()),
		attribute.String("voucher.type", string(in.Type)),
	))
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	v := entity.NewVoucher(in.CompanyID, in.Type, in.Date, actor)
	in.apply(v)
	if err := v.Validate(ctx); err != nil {
		return nil, err
	}
	if imported {
		v.ApproveImported(actor)
	} else {
		v.ApplyCreateStatus(actor)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, v); err != nil {
			return err
		}
		if err := s.assignNumber(ctx, v); err != nil {
			return err
		}
		code, err := s.codes.Generate(ctx, v.CompanyID, s.repo.CodeExists)
		if err != nil {
			return err
		}
		v.TransactionCode = code
		if err := s.repo.Create(ctx, v); err != nil {
			return fmt.Errorf("create voucher: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "voucher created",
		"voucher_id", v.ID,
		"type", v.Type,
		"voucher_no", v.VoucherNo,
		"transaction_code", v.TransactionCode,
		"status", v.Status,
		"total", v.TotalAmount.StringFixed(2))
	return v, nil
}

// Edit replaces a voucher's contents. A structural change by a
// non-privileged actor sends the voucher back to PENDING; a privileged
// editor re-approves it. The transaction code never changes.
func (s *Service) Edit(ctx context.Context, voucherID id.ID, in Input, actor entity.Actor) (*entity.Voucher, error) {
	ctx, span := tracer.Start(ctx, "voucher.edit", trace.WithAttributes(
		attribute.String("voucher.id", voucherID.String()),
	))
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var v *entity.Voucher
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lock(ctx, voucherID)
		if err != nil {
			return err
		}
		if err := current.CanEdit(actor); err != nil {
			return err
		}
		if current.CompanyID != in.CompanyID {
			return apperror.NewValidation("voucher cannot move to another company").
				WithDetail("field", "companyId")
		}

		structural := structuralChange(current, &in)
		oldNo, oldType := current.VoucherNo, current.Type

		v = current
		in.apply(v)
		if err := v.Validate(ctx); err != nil {
			return err
		}
		if v.VoucherNo == "" {
			v.VoucherNo = oldNo
		}
		if v.VoucherNo != oldNo || v.Type != oldType {
			if err := s.ensureNumberFree(ctx, v); err != nil {
				return err
			}
		}
		if err := s.checkReferences(ctx, v); err != nil {
			return err
		}
		if structural || actor.Privileged {
			v.ApplyEditStatus(actor)
		}
		v.Touch()

		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("update voucher: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "voucher edited",
		"voucher_id", v.ID,
		"voucher_no", v.VoucherNo,
		"status", v.Status)
	return v, nil
}

// Verify approves a pending voucher on behalf of a checker. The creator can
// never verify their own voucher. Of two concurrent verifications at most
// one succeeds; the other gets a Conflict.
func (s *Service) Verify(ctx context.Context, voucherID id.ID, actor entity.Actor) (*entity.Voucher, error) {
	ctx, span := tracer.Start(ctx, "voucher.verify", trace.WithAttributes(
		attribute.String("voucher.id", voucherID.String()),
	))
	defer span.End()

	var v *entity.Voucher
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lock(ctx, voucherID)
		if err != nil {
			return err
		}
		if err := current.Verify(actor); err != nil {
			return err
		}
		changed, err := s.repo.UpdateStatus(ctx, current, entity.StatusPending)
		if err != nil {
			return fmt.Errorf("update voucher status: %w", err)
		}
		if !changed {
			return apperror.NewConflict("voucher was verified concurrently").
				WithDetail("voucher_id", voucherID.String())
		}
		v = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "voucher verified", "voucher_id", v.ID, "verified_by", actor.UserID)
	return v, nil
}

// Get returns a voucher with its entries.
func (s *Service) Get(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	v, err := s.repo.GetByID(ctx, voucherID)
	if err != nil {
		return nil, notFound(err, voucherID.String())
	}
	return v, nil
}

// GetByCode resolves a maker-checker handoff code.
func (s *Service) GetByCode(ctx context.Context, companyID id.ID, code string) (*entity.Voucher, error) {
	v, err := s.repo.GetByCode(ctx, companyID, code)
	if err != nil {
		return nil, notFound(err, code)
	}
	return v, nil
}

// List returns voucher headers.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*entity.Voucher], error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ListPending returns vouchers awaiting verification.
func (s *Service) ListPending(ctx context.Context, companyID id.ID, limit, offset int) (domain.ListResult[*entity.Voucher], error) {
	pending := entity.StatusPending
	return s.List(ctx, Filter{CompanyID: companyID, Status: &pending, Limit: limit, Offset: offset})
}

// Delete removes a voucher with its entries.
func (s *Service) Delete(ctx context.Context, voucherID id.ID, actor entity.Actor) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.lock(ctx, voucherID)
		if err != nil {
			return err
		}
		if err := v.CanEdit(actor); err != nil {
			return err
		}
		return s.repo.Delete(ctx, voucherID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "voucher deleted", "voucher_id", voucherID)
	return nil
}

// DeleteMany removes several vouchers atomically.
func (s *Service) DeleteMany(ctx context.Context, ids []id.ID, actor entity.Actor) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var removed int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, voucherID := range ids {
			v, err := s.lock(ctx, voucherID)
			if err != nil {
				return err
			}
			if err := v.CanEdit(actor); err != nil {
				return err
			}
		}
		n, err := s.repo.DeleteMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete vouchers: %w", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "vouchers deleted", "count", removed)
	return removed, nil
}

// UpsertResult tells whether an upsert created or replaced a voucher.
type UpsertResult struct {
	Voucher *entity.Voucher
	Created bool
}

// UpsertByNumber is the import-side merge for SALES and PURCHASE documents.
// An existing voucher with the same company, type and number has its entries
// replaced in place, keeping its id, creator and transaction code. Otherwise a
// new voucher is created with a fresh transaction code. Either way the
// voucher ends APPROVED.
func (s *Service) UpsertByNumber(ctx context.Context, in Input, actor entity.Actor) (*UpsertResult, error) {
	// Stored numbers are trimmed; look up by the same form.
	in.VoucherNo = strings.TrimSpace(in.VoucherNo)
	ctx, span := tracer.Start(ctx, "voucher.upsert", trace.WithAttributes(
		attribute.String("company.id", in.CompanyID.String()),
		attribute.String("voucher.no", in.VoucherNo),
	))
	defer span.End()

	if in.Type != entity.VoucherSales && in.Type != entity.VoucherPurchase {
		return nil, apperror.NewValidation("upsert supports SALES and PURCHASE vouchers only").
			WithDetail("type", string(in.Type))
	}
	if in.VoucherNo == "" {
		return nil, apperror.NewValidation("voucher number is required for upsert").
			WithDetail("field", "voucherNo")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result UpsertResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByNumber(ctx, in.CompanyID, in.Type, in.VoucherNo)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("find voucher by number: %w", err)
		}

		if existing != nil {
			if existing, err = s.lock(ctx, existing.ID); err != nil {
				return err
			}
			in.apply(existing)
			if err := existing.Validate(ctx); err != nil {
				return err
			}
			if err := s.checkReferences(ctx, existing); err != nil {
				return err
			}
			existing.ApproveImported(actor)
			existing.Touch()
			if err := s.repo.Update(ctx, existing); err != nil {
				return fmt.Errorf("replace voucher: %w", err)
			}
			result = UpsertResult{Voucher: existing}
			return nil
		}

		v := entity.NewVoucher(in.CompanyID, in.Type, in.Date, actor)
		in.apply(v)
		if err := v.Validate(ctx); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, v); err != nil {
			return err
		}
		code, err := s.codes.Generate(ctx, v.CompanyID, s.repo.CodeExists)
		if err != nil {
			return err
		}
		v.TransactionCode = code
		v.ApproveImported(actor)
		if err := s.repo.Create(ctx, v); err != nil {
			return fmt.Errorf("create voucher: %w", err)
		}
		result = UpsertResult{Voucher: v, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "voucher upserted",
		"voucher_id", result.Voucher.ID,
		"voucher_no", result.Voucher.VoucherNo,
		"created", result.Created)
	return &result, nil
}

func (s *Service) lock(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	v, err := s.repo.GetForUpdate(ctx, voucherID)
	if err != nil {
		return nil, notFound(err, voucherID.String())
	}
	return v, nil
}

func notFound(err error, key string) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("voucher", key)
	}
	return err
}

// assignNumber fills an empty voucher number from the numerator and checks
// the (company, type, number) uniqueness.
func (s *Service) assignNumber(ctx context.Context, v *entity.Voucher) error {
	if v.VoucherNo == "" {
		cfg := numerator.DefaultConfig(v.Type.NumberPrefix())
		no, err := s.numerator.Next(ctx, v.CompanyID, cfg, v.Date)
		if err != nil {
			return fmt.Errorf("next voucher number: %w", err)
		}
		v.VoucherNo = no
	}
	return s.ensureNumberFree(ctx, v)
}

func (s *Service) ensureNumberFree(ctx context.Context, v *entity.Voucher) error {
	other, err := s.repo.GetByNumber(ctx, v.CompanyID, v.Type, v.VoucherNo)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check voucher number: %w", err)
	}
	if other.ID != v.ID {
		return apperror.NewDuplicate("voucher", "voucherNo", v.VoucherNo).
			WithDetail("type", string(v.Type))
	}
	return nil
}

// checkReferences makes sure the company exists and every ledger and stock
// item on the voucher belongs to it.
func (s *Service) checkReferences(ctx context.Context, v *entity.Voucher) error {
	if _, err := s.masters.Companies().GetByID(ctx, v.CompanyID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("company", v.CompanyID.String())
		}
		return err
	}
	seenLedgers := make(map[id.ID]bool, len(v.LedgerEntries))
	for _, e := range v.LedgerEntries {
		if seenLedgers[e.LedgerID] {
			continue
		}
		l, err := s.masters.Ledgers().GetByID(ctx, e.LedgerID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("ledger", e.LedgerID.String())
			}
			return err
		}
		if l.CompanyID != v.CompanyID {
			return apperror.NewValidation("ledger belongs to another company").
				WithDetail("ledger_id", e.LedgerID.String())
		}
		seenLedgers[e.LedgerID] = true
	}
	seenItems := make(map[id.ID]bool, len(v.InventoryEntries))
	for _, e := range v.InventoryEntries {
		if seenItems[e.StockItemID] {
			continue
		}
		it, err := s.masters.StockItems().GetByID(ctx, e.StockItemID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("stock item", e.StockItemID.String())
			}
			return err
		}
		if it.CompanyID != v.CompanyID {
			return apperror.NewValidation("stock item belongs to another company").
				WithDetail("stock_item_id", e.StockItemID.String())
		}
		seenItems[e.StockItemID] = true
	}
	return nil
}
