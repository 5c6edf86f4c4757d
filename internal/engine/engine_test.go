package engine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/config"
	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/importer"
	"ledgerbook/internal/domain/voucher"
	"ledgerbook/internal/engine"
	"ledgerbook/internal/infrastructure/storage/memory"
	"ledgerbook/pkg/logger"
)

type books struct {
	eng     *engine.Engine
	ctx     context.Context
	company *entity.Company
	cash    *entity.Ledger
	sales   *entity.Ledger
}

func newBooks(t *testing.T) *books {
	t.Helper()
	eng := engine.New(engine.MemoryBackend(memory.New()), engine.Config{})
	ctx := logger.WithLogger(context.Background(), logger.Nop())

	company := entity.NewCompany("Engine Traders", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, eng.Masters.CreateCompany(ctx, company))

	assets := entity.NewGroup(company.ID, "Current Assets", entity.NatureAsset)
	capital := entity.NewGroup(company.ID, "Capital Account", entity.NatureCapital)
	income := entity.NewGroup(company.ID, "Sales Accounts", entity.NatureIncome)
	for _, g := range []*entity.Group{assets, capital, income} {
		require.NoError(t, eng.Masters.Groups.Create(ctx, g))
	}

	cash := entity.NewLedger(company.ID, assets.ID, "Cash", types.MustSigned("1000"))
	owner := entity.NewLedger(company.ID, capital.ID, "Owner Capital", types.MustSigned("-1000"))
	sales := entity.NewLedger(company.ID, income.ID, "Sales", types.MustSigned("0"))
	for _, l := range []*entity.Ledger{cash, owner, sales} {
		require.NoError(t, eng.Masters.Ledgers.Create(ctx, l))
	}

	return &books{eng: eng, ctx: ctx, company: company, cash: cash, sales: sales}
}

func (b *books) cashSale(amount string) voucher.Input {
	d := decimal.RequireFromString(amount)
	return voucher.Input{
		CompanyID: b.company.ID,
		Type:      entity.VoucherSales,
		Date:      time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		LedgerEntries: []voucher.EntryInput{
			{LedgerID: b.cash.ID, Amount: types.Dr(d)},
			{LedgerID: b.sales.ID, Amount: types.Cr(d)},
		},
	}
}

func TestEngine_MakerCheckerFlow(t *testing.T) {
	b := newBooks(t)
	maker := entity.Actor{UserID: id.New()}
	checker := entity.Actor{UserID: id.New()}

	v, err := b.eng.CreateVoucher(b.ctx, b.cashSale("500"), maker)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, v.Status)
	assert.True(t, strings.HasPrefix(v.VoucherNo, "SAL-"), v.VoucherNo)

	bal, err := b.eng.LedgerBalance(b.ctx, b.cash.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000.00 Dr", bal.Closing.String())

	pending, err := b.eng.ListPending(b.ctx, b.company.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)

	_, err = b.eng.VerifyVoucher(b.ctx, v.ID, maker)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	found, err := b.eng.GetVoucherByCode(b.ctx, b.company.ID, v.TransactionCode)
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	approved, err := b.eng.VerifyVoucher(b.ctx, v.ID, checker)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)

	bal, err = b.eng.LedgerBalance(b.ctx, b.cash.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1500.00 Dr", bal.Closing.String())
	require.Len(t, bal.Entries, 1)
}

func TestEngine_Statements(t *testing.T) {
	b := newBooks(t)
	admin := entity.Actor{UserID: id.New(), Privileged: true}

	_, err := b.eng.CreateVoucher(b.ctx, b.cashSale("300"), admin)
	require.NoError(t, err)

	pl, err := b.eng.TradingAndPL(b.ctx, b.company.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, pl.NetProfit.Equal(decimal.NewFromInt(300)), pl.NetProfit.String())

	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	bs, err := b.eng.BalanceSheet(b.ctx, b.company.ID, asOf)
	require.NoError(t, err)
	assert.True(t, bs.Assets.Total.Equal(bs.Liabilities.Total))
	assert.True(t, bs.Assets.Total.Equal(decimal.NewFromInt(1300)), bs.Assets.Total.String())

	tb, err := b.eng.TrialBalance(b.ctx, b.company.ID, asOf)
	require.NoError(t, err)
	assert.NotEmpty(t, tb.Lines)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
}

func TestEngine_UpsertRejectsOtherTypes(t *testing.T) {
	b := newBooks(t)
	in := b.cashSale("100")
	in.Type = entity.VoucherJournal
	in.VoucherNo = "J-1"

	_, err := b.eng.UpsertSalesPurchaseVoucher(b.ctx, in, entity.SystemActor(id.New()))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestEngine_ImportUnknownCompany(t *testing.T) {
	b := newBooks(t)

	_, err := b.eng.ImportXMLBatch(b.ctx, id.New(), strings.NewReader("<ENVELOPE/>"),
		importer.Options{}, entity.SystemActor(id.New()))
	assert.True(t, apperror.IsNotFound(err))
}

func TestOpen_Memory(t *testing.T) {
	rt, err := engine.Open(context.Background(), &config.Config{Storage: config.StorageMemory})
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	require.NoError(t, rt.Migrate(context.Background()))

	companies, err := rt.Masters.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, companies)
}
