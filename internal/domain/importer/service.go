// Package importer reconciles Tally-style XML exports into a company's books.
//
// A batch runs in two passes. The first creates account groups and stock
// groups so that later records can resolve their parents. The second creates
// ledgers, units and stock items, then posts vouchers. Every record is applied
// on its own; a failing record is reported in the summary and the batch goes
// on.
package importer

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain/importer/tallyxml"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/voucher"
	"ledgerbook/pkg/logger"
)

var tracer = otel.Tracer("ledgerbook/importer")

// Options tune a single batch.
type Options struct {
	// UpsertSalesPurchase replaces SALES and PURCHASE vouchers that already
	// exist under the same number instead of skipping them.
	UpsertSalesPurchase bool
}

// Config holds importer limits.
type Config struct {
	// MaxBytes caps the uncompressed payload. Zero selects the decoder default.
	MaxBytes int64
}

// Service imports XML exports.
type Service struct {
	masters     *masters.Service
	store       masters.Store
	vouchers    *voucher.Service
	voucherRepo voucher.Repository
	txManager   tx.Manager
	cfg         Config
}

// NewService creates the importer.
func NewService(
	m *masters.Service,
	store masters.Store,
	vouchers *voucher.Service,
	voucherRepo voucher.Repository,
	txManager tx.Manager,
	cfg Config,
) *Service {
	return &Service{
		masters:     m,
		store:       store,
		vouchers:    vouchers,
		voucherRepo: voucherRepo,
		txManager:   txManager,
		cfg:         cfg,
	}
}

// batch carries per-run state.
type batch struct {
	companyID id.ID
	actor     entity.Actor
	opts      Options
	summary   *Summary
}

// ImportXMLBatch decodes r and applies its records to the company.
// Only payload-level problems and an unknown company are returned as errors;
// record-level problems land in Summary.Failures.
func (s *Service) ImportXMLBatch(
	ctx context.Context,
	companyID id.ID,
	r io.Reader,
	opts Options,
	actor entity.Actor,
) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "importer.batch", trace.WithAttributes(
		attribute.String("company.id", companyID.String()),
		attribute.Bool("import.upsert", opts.UpsertSalesPurchase),
	))
	defer span.End()

	if _, err := s.masters.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	ctx = logger.WithFields(ctx, "company_id", companyID)

	doc, err := tallyxml.Decode(r, s.cfg.MaxBytes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	b := &batch{companyID: companyID, actor: actor, opts: opts, summary: &Summary{}}
	for _, br := range doc.Broken {
		b.summary.fail(Failure{
			Kind:        br.Kind,
			Name:        br.Name,
			VoucherNo:   br.VoucherNo,
			VoucherType: br.VoucherType,
		}, apperror.NewImportParse(br.Element, br.Err.Error()))
		logger.Warn(ctx, "import record malformed",
			"kind", br.Kind,
			"index", br.Index,
			"voucher_no", br.VoucherNo,
			"error", br.Err)
	}

	logger.Info(ctx, "import started",
		"messages", len(doc.Messages),
		"malformed", len(doc.Broken),
		"upsert", opts.UpsertSalesPurchase)

	var (
		groups      []*tallyxml.Group
		stockGroups []*tallyxml.StockGroup
		ledgers     []*tallyxml.Ledger
		units       []*tallyxml.Unit
		items       []*tallyxml.StockItem
		vouchers    []*tallyxml.Voucher
	)
	for _, m := range doc.Messages {
		switch m.Kind() {
		case tallyxml.KindGroup:
			groups = append(groups, m.Group)
		case tallyxml.KindStockGroup:
			stockGroups = append(stockGroups, m.StockGroup)
		case tallyxml.KindLedger:
			ledgers = append(ledgers, m.Ledger)
		case tallyxml.KindUnit:
			units = append(units, m.Unit)
		case tallyxml.KindStockItem:
			items = append(items, m.StockItem)
		case tallyxml.KindVoucher:
			vouchers = append(vouchers, m.Voucher)
		}
	}

	// Pass 1: hierarchies.
	s.importGroups(ctx, b, groups)
	s.importStockGroups(ctx, b, stockGroups)

	// Pass 2: masters, then transactions.
	for _, l := range ledgers {
		s.importLedger(ctx, b, l)
	}
	for _, u := range units {
		s.importUnit(ctx, b, u)
	}
	for _, it := range items {
		s.importStockItem(ctx, b, it)
	}
	for _, v := range vouchers {
		s.importVoucher(ctx, b, v)
	}

	sum := b.summary
	span.SetAttributes(
		attribute.Int("import.vouchers.created", sum.Created.Vouchers),
		attribute.Int("import.vouchers.skipped", sum.Skipped.Vouchers),
		attribute.Int("import.vouchers.updated", sum.UpdatedVouchers),
		attribute.Int("import.failures", len(sum.Failures)),
	)
	logger.Info(ctx, "import finished",
		"company_id", companyID,
		"created", sum.Created,
		"skipped", sum.Skipped,
		"updated_vouchers", sum.UpdatedVouchers,
		"failures", len(sum.Failures))
	return sum, nil
}
