package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/domain/balance"
	"ledgerbook/internal/domain/importer"
	"ledgerbook/internal/domain/importer/tallyxml"
	"ledgerbook/internal/domain/ledgertest"
	"ledgerbook/internal/domain/voucher"
)

const export = `<ENVELOPE>
 <HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER>
 <BODY><IMPORTDATA><REQUESTDATA>
  <TALLYMESSAGE><GROUP NAME="Primary"><PARENT></PARENT></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><GROUP NAME="North Debtors"><PARENT>Regional Debtors</PARENT></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><GROUP NAME="Regional Debtors"><PARENT>Sundry Debtors</PARENT></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><GROUP NAME="Sales Accounts"><PARENT>Primary</PARENT></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><GROUP NAME="Misc Income"><ISREVENUE>Yes</ISREVENUE><ISDEEMEDPOSITIVE>No</ISDEEMEDPOSITIVE></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><STOCKGROUP NAME="Hardware"><PARENT>Primary</PARENT></STOCKGROUP></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Acme Stores"><PARENT>North Debtors</PARENT><OPENINGBALANCE>-500.00</OPENINGBALANCE></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="HDFC Bank"><PARENT>Bank Accounts</PARENT><OPENINGBALANCE>-1,000.00</OPENINGBALANCE></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Sales"><PARENT>Sales Accounts</PARENT></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Purchases"><PARENT>Purchase Accounts</PARENT></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Profit &amp; Loss A/c"><PARENT>Primary</PARENT></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Mystery"><PARENT>Unknown Group</PARENT></LEDGER></TALLYMESSAGE>
  <TALLYMESSAGE><UNIT NAME="Nos"><ORIGINALNAME>Numbers</ORIGINALNAME></UNIT></TALLYMESSAGE>
  <TALLYMESSAGE><STOCKITEM NAME="Widget">
   <PARENT>Hardware</PARENT><BASEUNITS>Nos</BASEUNITS>
   <OPENINGBALANCE>10 Nos</OPENINGBALANCE><OPENINGVALUE>-60.00</OPENINGVALUE>
   <GSTDETAILS.LIST><STATEWISEDETAILS.LIST><RATEDETAILS.LIST>
    <GSTRATEDUTYHEAD>IGST</GSTRATEDUTYHEAD><GSTRATE>18</GSTRATE>
   </RATEDETAILS.LIST></STATEWISEDETAILS.LIST></GSTDETAILS.LIST>
  </STOCKITEM></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Purchase">
   <DATE>20240405</DATE><VOUCHERTYPENAME>Purchase</VOUCHERTYPENAME><VOUCHERNUMBER>P-1</VOUCHERNUMBER>
   <ALLINVENTORYENTRIES.LIST>
    <STOCKITEMNAME>Widget</STOCKITEMNAME><ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE>
    <RATE>6.00/Nos</RATE><AMOUNT>-60.00</AMOUNT><ACTUALQTY>10 Nos</ACTUALQTY>
    <ACCOUNTINGALLOCATIONS.LIST><LEDGERNAME>Purchases</LEDGERNAME><AMOUNT>-60.00</AMOUNT></ACCOUNTINGALLOCATIONS.LIST>
   </ALLINVENTORYENTRIES.LIST>
   <LEDGERENTRIES.LIST><LEDGERNAME>HDFC Bank</LEDGERNAME><AMOUNT>60.00</AMOUNT></LEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Sales">
   <DATE>20240410</DATE><VOUCHERTYPENAME>Sales GST</VOUCHERTYPENAME><VOUCHERNUMBER>S-1</VOUCHERNUMBER>
   <NARRATION>Counter sale</NARRATION>
   <LEDGERENTRIES.LIST><LEDGERNAME>Acme Stores</LEDGERNAME><ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE><AMOUNT>-50.00</AMOUNT></LEDGERENTRIES.LIST>
   <ALLINVENTORYENTRIES.LIST>
    <STOCKITEMNAME>Widget</STOCKITEMNAME><RATE>10.00/Nos</RATE><AMOUNT>50.00</AMOUNT><ACTUALQTY>5 Nos</ACTUALQTY>
    <ACCOUNTINGALLOCATIONS.LIST><LEDGERNAME>Sales</LEDGERNAME><AMOUNT>50.00</AMOUNT></ACCOUNTINGALLOCATIONS.LIST>
   </ALLINVENTORYENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Payment">
   <DATE>20240412</DATE><VOUCHERNUMBER>PY-1</VOUCHERNUMBER>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Courier Charges</LEDGERNAME><AMOUNT>-20.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>HDFC Bank</LEDGERNAME><AMOUNT>20.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Memorandum">
   <DATE>20240413</DATE><VOUCHERNUMBER>M-1</VOUCHERNUMBER>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Journal">
   <DATE>20240414</DATE><VOUCHERNUMBER>J-1</VOUCHERNUMBER>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Ghost Ledger</LEDGERNAME><AMOUNT>-10.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Sales</LEDGERNAME><AMOUNT>5.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
 </REQUESTDATA></IMPORTDATA></BODY>
</ENVELOPE>`

// resale replaces S-1 with a three-unit sale.
const resale = `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Sales">
   <DATE>20240410</DATE><VOUCHERNUMBER>S-1</VOUCHERNUMBER>
   <LEDGERENTRIES.LIST><LEDGERNAME>Acme Stores</LEDGERNAME><AMOUNT>-30.00</AMOUNT></LEDGERENTRIES.LIST>
   <ALLINVENTORYENTRIES.LIST>
    <STOCKITEMNAME>Widget</STOCKITEMNAME><RATE>10.00/Nos</RATE><ACTUALQTY>3 Nos</ACTUALQTY>
    <ACCOUNTINGALLOCATIONS.LIST><LEDGERNAME>Sales</LEDGERNAME><AMOUNT>30.00</AMOUNT></ACCOUNTINGALLOCATIONS.LIST>
   </ALLINVENTORYENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`

type env struct {
	*ledgertest.Fixture
	svc      *importer.Service
	balances *balance.Service
}

func newEnv(t *testing.T) *env {
	f := ledgertest.New(t, ledgertest.Date(2024, 4, 1))
	return &env{
		Fixture:  f,
		svc:      importer.NewService(f.Masters, f.Store, f.Vouchers, f.Store.Vouchers(), f.Store, importer.Config{}),
		balances: balance.NewService(f.Store, f.Store.Postings(), f.Store),
	}
}

func (e *env) run(t *testing.T, payload string, opts importer.Options) *importer.Summary {
	t.Helper()
	sum, err := e.svc.ImportXMLBatch(e.Ctx, e.Company.ID, strings.NewReader(payload), opts, entity.SystemActor(id.New()))
	require.NoError(t, err)
	return sum
}

func (e *env) group(t *testing.T, name string) *entity.Group {
	t.Helper()
	g, err := e.Masters.Groups.GetByKey(e.Ctx, e.Company.ID, name)
	require.NoError(t, err)
	return g
}

func (e *env) ledger(t *testing.T, name string) *entity.Ledger {
	t.Helper()
	l, err := e.Masters.Ledgers.GetByKey(e.Ctx, e.Company.ID, name)
	require.NoError(t, err)
	return l
}

func (e *env) widget(t *testing.T) *entity.StockItem {
	t.Helper()
	it, err := e.Masters.StockItems.GetByKey(e.Ctx, e.Company.ID, "Widget")
	require.NoError(t, err)
	return it
}

func (e *env) closing(t *testing.T, ledger string) string {
	t.Helper()
	b, err := e.balances.LedgerBalance(e.Ctx, e.ledger(t, ledger).ID, nil, nil)
	require.NoError(t, err)
	return b.Closing.String()
}

func failureCodes(sum *importer.Summary) map[string]string {
	out := make(map[string]string, len(sum.Failures))
	for _, f := range sum.Failures {
		out[f.VoucherNo] = f.Code
	}
	return out
}

func TestImportXMLBatch_FirstImport(t *testing.T) {
	e := newEnv(t)
	sum := e.run(t, export, importer.Options{})

	assert.Equal(t, importer.Counts{
		// Four declared groups plus Sundry Debtors, Bank Accounts,
		// Purchase Accounts and Suspense Account.
		Groups:      8,
		StockGroups: 1,
		// Six declared ledgers plus Courier Charges from PY-1.
		Ledgers:    7,
		Units:      1,
		StockItems: 1,
		Vouchers:   3,
	}, sum.Created)
	assert.Equal(t, map[string]string{
		"M-1": apperror.CodeImportParse,
		"J-1": apperror.CodeUnbalanced,
	}, failureCodes(sum))

	t.Run("group hierarchy and natures", func(t *testing.T) {
		sundry := e.group(t, "Sundry Debtors")
		regional := e.group(t, "Regional Debtors")
		north := e.group(t, "North Debtors")
		assert.Equal(t, entity.NatureAsset, sundry.Nature)
		assert.Equal(t, entity.NatureAsset, north.Nature)
		require.NotNil(t, regional.ParentID)
		assert.Equal(t, sundry.ID, *regional.ParentID)
		require.NotNil(t, north.ParentID)
		assert.Equal(t, regional.ID, *north.ParentID)

		assert.Equal(t, entity.NatureIncome, e.group(t, "Sales Accounts").Nature)
		assert.Nil(t, e.group(t, "Sales Accounts").ParentID)
		assert.Equal(t, entity.NatureIncome, e.group(t, "Misc Income").Nature)

		_, err := e.Masters.Groups.GetByKey(e.Ctx, e.Company.ID, "Primary")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("ledger placement and openings", func(t *testing.T) {
		suspense := e.group(t, entity.SuspenseGroupName)
		assert.Equal(t, suspense.ID, e.ledger(t, "Profit & Loss A/c").GroupID, "no Primary or Capital group to attach to")
		_, err := e.Masters.Groups.GetByKey(e.Ctx, e.Company.ID, entity.CapitalGroupName)
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, entity.NatureLiability, suspense.Nature)
		assert.Equal(t, suspense.ID, e.ledger(t, "Mystery").GroupID)
		assert.Equal(t, suspense.ID, e.ledger(t, "Courier Charges").GroupID)
		assert.Equal(t, entity.NatureExpense, e.group(t, "Purchase Accounts").Nature)

		assert.Equal(t, "500.00 Dr", e.ledger(t, "Acme Stores").OpeningBalance.String())
		assert.Equal(t, "1000.00 Dr", e.ledger(t, "HDFC Bank").OpeningBalance.String())

		_, err = e.Masters.Ledgers.GetByKey(e.Ctx, e.Company.ID, "Ghost Ledger")
		assert.True(t, apperror.IsNotFound(err), "failed voucher must not leave ledgers behind")
	})

	t.Run("stock masters", func(t *testing.T) {
		it := e.widget(t)
		assert.True(t, it.OpeningQty.Equal(ledgertest.Dec("10")))
		assert.True(t, it.OpeningValue.Equal(ledgertest.Dec("60")))
		assert.True(t, it.GSTRate.Equal(ledgertest.Dec("18")))
		assert.NotNil(t, it.StockGroupID)
		assert.NotNil(t, it.UnitID)
		assert.True(t, it.QuantityOnHand.Equal(ledgertest.Dec("15")), it.QuantityOnHand.String())

		u, err := e.Masters.Units.GetByKey(e.Ctx, e.Company.ID, "Nos")
		require.NoError(t, err)
		assert.Equal(t, "Numbers", u.Name)
	})

	t.Run("vouchers are approved and balanced", func(t *testing.T) {
		sale, err := e.Store.Vouchers().GetByNumber(e.Ctx, e.Company.ID, entity.VoucherSales, "S-1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusApproved, sale.Status)
		assert.NotEmpty(t, sale.TransactionCode)
		assert.Equal(t, "Counter sale", sale.Narration)
		require.Len(t, sale.InventoryEntries, 1)
		assert.True(t, sale.InventoryEntries[0].Quantity.Equal(ledgertest.Dec("-5")))
		assert.True(t, sale.InventoryEntries[0].Rate.Equal(ledgertest.Dec("10")))

		assert.Equal(t, "550.00 Dr", e.closing(t, "Acme Stores"))
		assert.Equal(t, "50.00 Cr", e.closing(t, "Sales"))
		assert.Equal(t, "920.00 Dr", e.closing(t, "HDFC Bank"))
		assert.Equal(t, "60.00 Dr", e.closing(t, "Purchases"))
	})
}

func TestImportXMLBatch_Idempotent(t *testing.T) {
	e := newEnv(t)
	e.run(t, export, importer.Options{})

	sum := e.run(t, export, importer.Options{})

	assert.Equal(t, importer.Counts{}, sum.Created)
	assert.Equal(t, importer.Counts{
		Groups:      4,
		StockGroups: 1,
		Ledgers:     6,
		Units:       1,
		StockItems:  1,
		Vouchers:    3,
	}, sum.Skipped)
	assert.Zero(t, sum.UpdatedVouchers)
	assert.Len(t, sum.Failures, 2)

	assert.True(t, e.widget(t).QuantityOnHand.Equal(ledgertest.Dec("15")))
	assert.Equal(t, "550.00 Dr", e.closing(t, "Acme Stores"))

	list, err := e.Vouchers.List(e.Ctx, voucher.Filter{CompanyID: e.Company.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
}

func TestImportXMLBatch_UpsertSalesPurchase(t *testing.T) {
	e := newEnv(t)
	e.run(t, export, importer.Options{})
	before, err := e.Store.Vouchers().GetByNumber(e.Ctx, e.Company.ID, entity.VoucherSales, "S-1")
	require.NoError(t, err)

	t.Run("without upsert the voucher is skipped", func(t *testing.T) {
		sum := e.run(t, resale, importer.Options{})
		assert.Equal(t, 1, sum.Skipped.Vouchers)
		assert.Equal(t, "550.00 Dr", e.closing(t, "Acme Stores"))
	})

	t.Run("upsert replaces entries in place", func(t *testing.T) {
		sum := e.run(t, resale, importer.Options{UpsertSalesPurchase: true})
		assert.Equal(t, 1, sum.UpdatedVouchers)
		assert.Zero(t, sum.Created.Vouchers)
		assert.Empty(t, sum.Failures)

		after, err := e.Store.Vouchers().GetByNumber(e.Ctx, e.Company.ID, entity.VoucherSales, "S-1")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.TransactionCode, after.TransactionCode)
		assert.Equal(t, entity.StatusApproved, after.Status)

		assert.Equal(t, "530.00 Dr", e.closing(t, "Acme Stores"))
		assert.True(t, e.widget(t).QuantityOnHand.Equal(ledgertest.Dec("17")))
	})

	t.Run("upsert creates missing numbers", func(t *testing.T) {
		sum := e.run(t, strings.Replace(resale, "S-1", "S-2", 1), importer.Options{UpsertSalesPurchase: true})
		assert.Equal(t, 1, sum.Created.Vouchers)
		assert.Zero(t, sum.UpdatedVouchers)
		assert.True(t, e.widget(t).QuantityOnHand.Equal(ledgertest.Dec("14")))
	})
}

func TestImportXMLBatch_Errors(t *testing.T) {
	e := newEnv(t)
	actor := entity.SystemActor(id.New())

	t.Run("unknown company", func(t *testing.T) {
		_, err := e.svc.ImportXMLBatch(e.Ctx, id.New(), strings.NewReader(export), importer.Options{}, actor)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("payload over the limit", func(t *testing.T) {
		small := importer.NewService(e.Masters, e.Store, e.Vouchers, e.Store.Vouchers(), e.Store, importer.Config{MaxBytes: 64})
		_, err := small.ImportXMLBatch(e.Ctx, e.Company.ID, strings.NewReader(export), importer.Options{}, actor)
		assert.True(t, apperror.IsCode(err, apperror.CodeImportParse))
	})

	t.Run("truncated payload keeps complete records", func(t *testing.T) {
		cut := export[:strings.Index(export, `<VOUCHER VCHTYPE="Sales">`)+30]
		sum, err := e.svc.ImportXMLBatch(e.Ctx, e.Company.ID, strings.NewReader(cut), importer.Options{}, actor)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Created.Vouchers)
		require.NotEmpty(t, sum.Failures)
		assert.Equal(t, tallyxml.KindVoucher, sum.Failures[0].Kind)
		assert.Equal(t, "Sales", sum.Failures[0].VoucherType)
		assert.Equal(t, apperror.CodeImportParse, sum.Failures[0].Code)
	})
}

func TestImportXMLBatch_MalformedVoucherIsIsolated(t *testing.T) {
	e := newEnv(t)

	payload := `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Payment">
   <DATE>20240501</DATE><VOUCHERNUMBER>PY-1</VOUCHERNUMBER><NARRATION>Rent</NARRATION>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Rent</LEDGERNAME><AMOUNT>-100.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>HDFC Bank</LEDGERNAME><AMOUNT>100.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Payment">
   <DATE>20240502</DATE><VOUCHERNUMBER>PY-2</VOUCHERNUMBER><NARRATION>Rent & deposit</NARRATION>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Rent</LEDGERNAME><AMOUNT>-300.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>HDFC Bank</LEDGERNAME><AMOUNT>300.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
  <TALLYMESSAGE><VOUCHER VCHTYPE="Payment">
   <DATE>20240503</DATE><VOUCHERNUMBER>PY-3</VOUCHERNUMBER><NARRATION>Rent</NARRATION>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>Rent</LEDGERNAME><AMOUNT>-50.00</AMOUNT></ALLLEDGERENTRIES.LIST>
   <ALLLEDGERENTRIES.LIST><LEDGERNAME>HDFC Bank</LEDGERNAME><AMOUNT>50.00</AMOUNT></ALLLEDGERENTRIES.LIST>
  </VOUCHER></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`

	sum := e.run(t, payload, importer.Options{})

	assert.Equal(t, 2, sum.Created.Vouchers)
	require.Len(t, sum.Failures, 1)
	f := sum.Failures[0]
	assert.Equal(t, tallyxml.KindVoucher, f.Kind)
	assert.Equal(t, "PY-2", f.VoucherNo)
	assert.Equal(t, "Payment", f.VoucherType)
	assert.Equal(t, apperror.CodeImportParse, f.Code)

	for _, no := range []string{"PY-1", "PY-3"} {
		_, err := e.Store.Vouchers().GetByNumber(e.Ctx, e.Company.ID, entity.VoucherPayment, no)
		assert.NoError(t, err, no)
	}
	_, err := e.Store.Vouchers().GetByNumber(e.Ctx, e.Company.ID, entity.VoucherPayment, "PY-2")
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "150.00 Dr", e.closing(t, "Rent"))
}

func TestImportXMLBatch_ProfitAndLossUnderExistingCapital(t *testing.T) {
	e := newEnv(t)
	payload := `<ENVELOPE>
  <TALLYMESSAGE><GROUP NAME="Capital Account"><PARENT>Primary</PARENT></GROUP></TALLYMESSAGE>
  <TALLYMESSAGE><LEDGER NAME="Profit &amp; Loss A/c"><PARENT>Primary</PARENT></LEDGER></TALLYMESSAGE>
</ENVELOPE>`

	sum := e.run(t, payload, importer.Options{})
	assert.Empty(t, sum.Failures)
	assert.Equal(t, e.group(t, entity.CapitalGroupName).ID, e.ledger(t, "Profit & Loss A/c").GroupID)
}
