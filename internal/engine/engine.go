// Package engine is the library boundary of the ledger. It wires the domain
// services over a storage backend and exposes the balance, statement, voucher
// and import operations as plain Go calls.
package engine

import (
	"context"
	"io"
	"time"

	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/numerator"
	"ledgerbook/internal/core/tx"
	"ledgerbook/internal/domain"
	"ledgerbook/internal/domain/balance"
	"ledgerbook/internal/domain/importer"
	"ledgerbook/internal/domain/masters"
	"ledgerbook/internal/domain/postings"
	"ledgerbook/internal/domain/statement"
	"ledgerbook/internal/domain/valuation"
	"ledgerbook/internal/domain/voucher"
	"ledgerbook/internal/infrastructure/storage/memory"
	"ledgerbook/internal/infrastructure/storage/postgres"
)

// Backend is the set of ports a storage implementation provides.
type Backend struct {
	Store     masters.Store
	TxManager tx.Manager
	Vouchers  voucher.Repository
	Postings  postings.Repository
	Numerator numerator.Generator
}

// MemoryBackend serves a process-local store.
func MemoryBackend(s *memory.Store) Backend {
	return Backend{
		Store:     s,
		TxManager: s,
		Vouchers:  s.Vouchers(),
		Postings:  s.Postings(),
		Numerator: s.Numerator(),
	}
}

// PostgresBackend serves a PostgreSQL store.
func PostgresBackend(s *postgres.Store) Backend {
	return Backend{
		Store:     s,
		TxManager: s,
		Vouchers:  s.Vouchers(),
		Postings:  s.Postings(),
		Numerator: s.Numerator(),
	}
}

// Config tunes the engine.
type Config struct {
	// ImportMaxBytes caps a decoded import payload (0 selects tallyxml.DefaultMaxBytes, 64 MiB).
	ImportMaxBytes int64
}

// Engine exposes every ledger operation.
type Engine struct {
	// Masters manages companies, groups, ledgers, stock groups, units and items.
	Masters *masters.Service

	vouchers   *voucher.Service
	balances   *balance.Service
	valuation  *valuation.Service
	statements *statement.Service
	importer   *importer.Service
}

// New wires the services over b.
func New(b Backend, cfg Config) *Engine {
	m := masters.NewService(b.Store, b.TxManager)
	vouchers := voucher.NewService(b.Vouchers, b.Store, b.TxManager, b.Numerator)
	stock := valuation.NewService(b.Store.StockItems(), b.Postings, b.TxManager)
	return &Engine{
		Masters:    m,
		vouchers:   vouchers,
		balances:   balance.NewService(b.Store, b.Postings, b.TxManager),
		valuation:  stock,
		statements: statement.NewService(b.Store, b.Postings, stock, b.TxManager),
		importer: importer.NewService(m, b.Store, vouchers, b.Vouchers, b.TxManager,
			importer.Config{MaxBytes: cfg.ImportMaxBytes}),
	}
}

// --- Reads ---

// LedgerBalance returns opening, period entries with running balance, and closing.
func (e *Engine) LedgerBalance(ctx context.Context, ledgerID id.ID, from, to *time.Time) (*balance.LedgerBalance, error) {
	return e.balances.LedgerBalance(ctx, ledgerID, from, to)
}

// StockItemBalance returns the quantity position of an item over a period.
func (e *Engine) StockItemBalance(ctx context.Context, stockItemID id.ID, from, to *time.Time) (*balance.StockItemBalance, error) {
	return e.balances.StockItemBalance(ctx, stockItemID, from, to)
}

// TradingAndPL builds the Trading and Profit & Loss account for a period.
func (e *Engine) TradingAndPL(ctx context.Context, companyID id.ID, from, to *time.Time) (*statement.TradingAndPL, error) {
	return e.statements.TradingAndPL(ctx, companyID, from, to)
}

// BalanceSheet builds the Balance Sheet as of asOf.
func (e *Engine) BalanceSheet(ctx context.Context, companyID id.ID, asOf time.Time) (*statement.BalanceSheet, error) {
	return e.statements.BalanceSheet(ctx, companyID, asOf)
}

// TrialBalance lists closing ledger balances as of asOf.
func (e *Engine) TrialBalance(ctx context.Context, companyID id.ID, asOf time.Time) (*statement.TrialBalance, error) {
	return e.statements.TrialBalance(ctx, companyID, asOf)
}

// StockSummary values every stock item as of asOf.
func (e *Engine) StockSummary(ctx context.Context, companyID id.ID, asOf *time.Time) (*valuation.StockSummary, error) {
	return e.valuation.StockSummary(ctx, companyID, asOf)
}

// --- Vouchers ---

// CreateVoucher records a voucher authored by actor. It starts PENDING unless
// actor is privileged, in which case it is approved at once.
func (e *Engine) CreateVoucher(ctx context.Context, in voucher.Input, actor entity.Actor) (*entity.Voucher, error) {
	return e.vouchers.Create(ctx, in, actor)
}

// EditVoucher replaces a voucher's header and entries. Only the creator or a
// privileged actor may edit. A non-privileged change to entries, date or type
// sends the voucher back to PENDING.
func (e *Engine) EditVoucher(ctx context.Context, voucherID id.ID, in voucher.Input, actor entity.Actor) (*entity.Voucher, error) {
	return e.vouchers.Edit(ctx, voucherID, in, actor)
}

// VerifyVoucher approves a PENDING voucher. The creator cannot verify their own voucher.
func (e *Engine) VerifyVoucher(ctx context.Context, voucherID id.ID, actor entity.Actor) (*entity.Voucher, error) {
	return e.vouchers.Verify(ctx, voucherID, actor)
}

// UpsertSalesPurchaseVoucher replaces a SALES or PURCHASE voucher with the
// same number, or creates it.
func (e *Engine) UpsertSalesPurchaseVoucher(ctx context.Context, in voucher.Input, actor entity.Actor) (*voucher.UpsertResult, error) {
	return e.vouchers.UpsertByNumber(ctx, in, actor)
}

// GetVoucher loads a voucher with its entries.
func (e *Engine) GetVoucher(ctx context.Context, voucherID id.ID) (*entity.Voucher, error) {
	return e.vouchers.Get(ctx, voucherID)
}

// GetVoucherByCode finds a voucher by its transaction code within a company.
func (e *Engine) GetVoucherByCode(ctx context.Context, companyID id.ID, code string) (*entity.Voucher, error) {
	return e.vouchers.GetByCode(ctx, companyID, code)
}

// ListVouchers pages vouchers matching filter.
func (e *Engine) ListVouchers(ctx context.Context, filter voucher.Filter) (domain.ListResult[*entity.Voucher], error) {
	return e.vouchers.List(ctx, filter)
}

// ListPending pages the company's vouchers awaiting verification.
func (e *Engine) ListPending(ctx context.Context, companyID id.ID, limit, offset int) (domain.ListResult[*entity.Voucher], error) {
	return e.vouchers.ListPending(ctx, companyID, limit, offset)
}

// DeleteVoucher removes a voucher the actor may edit.
func (e *Engine) DeleteVoucher(ctx context.Context, voucherID id.ID, actor entity.Actor) error {
	return e.vouchers.Delete(ctx, voucherID, actor)
}

// DeleteVouchers removes several vouchers atomically and returns how many
// were deleted.
func (e *Engine) DeleteVouchers(ctx context.Context, ids []id.ID, actor entity.Actor) (int64, error) {
	return e.vouchers.DeleteMany(ctx, ids, actor)
}

// --- Import ---

// ImportXMLBatch applies an XML export to a company and reports what happened.
func (e *Engine) ImportXMLBatch(ctx context.Context, companyID id.ID, r io.Reader, opts importer.Options, actor entity.Actor) (*importer.Summary, error) {
	return e.importer.ImportXMLBatch(ctx, companyID, r, opts, actor)
}
