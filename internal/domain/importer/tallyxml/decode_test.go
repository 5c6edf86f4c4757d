package tallyxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"ledgerbook/internal/core/apperror"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<ENVELOPE>
 <HEADER><TALLYREQUEST>Import Data</TALLYREQUEST></HEADER>
 <BODY><IMPORTDATA><REQUESTDATA>
  <TALLYMESSAGE vchtype="">
   <GROUP NAME="Regional Debtors" RESERVEDNAME="">
    <PARENT>&#4; Sundry Debtors</PARENT>
    <ISREVENUE>No</ISREVENUE>
    <ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE>
   </GROUP>
  </TALLYMESSAGE>
  <TALLYMESSAGE>
   <LEDGER NAME="Acme &amp; Sons">
    <PARENT>Regional Debtors</PARENT>
    <OPENINGBALANCE>-1,500.00</OPENINGBALANCE>
   </LEDGER>
   <UNIT NAME="Nos"><ORIGINALNAME>Numbers</ORIGINALNAME></UNIT>
  </TALLYMESSAGE>
  <TALLYMESSAGE>
   <STOCKITEM NAME="Widget">
    <PARENT>&#4; Primary</PARENT>
    <BASEUNITS>Nos</BASEUNITS>
    <OPENINGBALANCE>10 Nos</OPENINGBALANCE>
    <OPENINGVALUE>-60.00</OPENINGVALUE>
    <GSTDETAILS.LIST><STATEWISEDETAILS.LIST>
     <RATEDETAILS.LIST><GSTRATEDUTYHEAD>CGST</GSTRATEDUTYHEAD><GSTRATE>9</GSTRATE></RATEDETAILS.LIST>
     <RATEDETAILS.LIST><GSTRATEDUTYHEAD>IGST</GSTRATEDUTYHEAD><GSTRATE>18</GSTRATE></RATEDETAILS.LIST>
    </STATEWISEDETAILS.LIST></GSTDETAILS.LIST>
   </STOCKITEM>
  </TALLYMESSAGE>
  <TALLYMESSAGE>
   <VOUCHER VCHTYPE="Sales" ACTION="Create">
    <DATE>20240408</DATE>
    <VOUCHERTYPENAME>Sales</VOUCHERTYPENAME>
    <VOUCHERNUMBER> 7 </VOUCHERNUMBER>
    <LEDGERENTRIES.LIST>
     <LEDGERNAME>Acme &amp; Sons</LEDGERNAME>
     <ISDEEMEDPOSITIVE>Yes</ISDEEMEDPOSITIVE>
     <AMOUNT>-50.00</AMOUNT>
    </LEDGERENTRIES.LIST>
    <ALLINVENTORYENTRIES.LIST>
     <STOCKITEMNAME>Widget</STOCKITEMNAME>
     <RATE>10.00/Nos</RATE>
     <AMOUNT>50.00</AMOUNT>
     <ACTUALQTY> 5 Nos</ACTUALQTY>
     <ACCOUNTINGALLOCATIONS.LIST>
      <LEDGERNAME>Sales</LEDGERNAME>
      <AMOUNT>50.00</AMOUNT>
     </ACCOUNTINGALLOCATIONS.LIST>
    </ALLINVENTORYENTRIES.LIST>
   </VOUCHER>
  </TALLYMESSAGE>
 </REQUESTDATA></IMPORTDATA></BODY>
</ENVELOPE>`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample), 0)
	require.NoError(t, err)
	assert.Empty(t, doc.Broken)
	require.Len(t, doc.Messages, 5)

	g := doc.Messages[0].Group
	require.NotNil(t, g)
	assert.Equal(t, "Regional Debtors", g.Name())
	assert.Equal(t, "Sundry Debtors", g.ParentName())

	l := doc.Messages[1].Ledger
	require.NotNil(t, l)
	assert.Equal(t, "Acme & Sons", l.Name())
	assert.Equal(t, "-1,500.00", l.OpeningBalance)

	u := doc.Messages[2].Unit
	require.NotNil(t, u)
	assert.Equal(t, "Nos", u.Name())
	assert.Equal(t, "Numbers", u.OriginalName)

	it := doc.Messages[3].StockItem
	require.NotNil(t, it)
	assert.Empty(t, it.ParentName(), "Primary is no parent")
	assert.Equal(t, "18", it.IntegratedGSTRate())

	v := doc.Messages[4].Voucher
	require.NotNil(t, v)
	assert.Equal(t, KindVoucher, doc.Messages[4].Kind())
	assert.Equal(t, "Sales", v.TypeLabel())
	assert.Equal(t, "7", v.VoucherNo())
	require.Len(t, v.Ledgers(), 1)
	lines := v.InventoryLines()
	require.Len(t, lines, 1)
	assert.Equal(t, " 5 Nos", lines[0].Qty())
	require.Len(t, lines[0].Allocations, 1)
	assert.Equal(t, "Sales", lines[0].Allocations[0].LedgerName)
}

func TestDecode_Compressed(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	doc, err := Decode(&gz, 0)
	require.NoError(t, err)
	assert.Len(t, doc.Messages, 5)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll([]byte(sample), nil)
	require.NoError(t, enc.Close())

	doc, err = Decode(bytes.NewReader(zst), 0)
	require.NoError(t, err)
	assert.Len(t, doc.Messages, 5)
}

func TestDecode_UTF16WithBOM(t *testing.T) {
	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	payload, err := utf16.String(strings.Replace(sample, "UTF-8", "UTF-16", 1))
	require.NoError(t, err)

	doc, err := Decode(strings.NewReader(payload), 0)
	require.NoError(t, err)
	require.Len(t, doc.Messages, 5)
	assert.Equal(t, "Acme & Sons", doc.Messages[1].Ledger.Name())
}

func TestDecode_Windows1252(t *testing.T) {
	payload := []byte("<ENVELOPE><LEDGER NAME=\"Caf\xe9 Supplies\"><PARENT>Sundry Creditors</PARENT></LEDGER></ENVELOPE>")

	doc, err := Decode(bytes.NewReader(payload), 0)
	require.NoError(t, err)
	require.Len(t, doc.Messages, 1)
	assert.Equal(t, "Café Supplies", doc.Messages[0].Ledger.Name())
}

func TestDecode_TruncatedKeepsEarlierMessages(t *testing.T) {
	cut := sample[:strings.Index(sample, "<VOUCHER ")+40]

	doc, err := Decode(strings.NewReader(cut), 0)
	require.NoError(t, err)
	assert.Len(t, doc.Messages, 4)
	require.Len(t, doc.Broken, 1)
	assert.Equal(t, KindVoucher, doc.Broken[0].Kind)
	assert.Equal(t, 4, doc.Broken[0].Index)
	assert.Equal(t, "Sales", doc.Broken[0].VoucherType)
	assert.Error(t, doc.Broken[0].Err)
}

const vouchers = `<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>
 <TALLYMESSAGE><VOUCHER VCHTYPE="Payment"><DATE>20240501</DATE><VOUCHERNUMBER>PY-1</VOUCHERNUMBER><NARRATION>Rent</NARRATION></VOUCHER></TALLYMESSAGE>
 <TALLYMESSAGE><VOUCHER VCHTYPE="Payment"><DATE>20240502</DATE><VOUCHERNUMBER>PY-2</VOUCHERNUMBER><NARRATION>Rent & deposit</NARRATION></VOUCHER></TALLYMESSAGE>
 <TALLYMESSAGE><VOUCHER VCHTYPE="Payment"><DATE>20240503</DATE><VOUCHERNUMBER>PY-3</VOUCHERNUMBER><NARRATION>Rent</NARRATION></VOUCHER></TALLYMESSAGE>
</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>`

func TestDecode_MalformedRecordIsIsolated(t *testing.T) {
	doc, err := Decode(strings.NewReader(vouchers), 0)
	require.NoError(t, err)

	require.Len(t, doc.Messages, 2)
	assert.Equal(t, "PY-1", doc.Messages[0].Voucher.VoucherNo())
	assert.Equal(t, "PY-3", doc.Messages[1].Voucher.VoucherNo())
	assert.Equal(t, 2, doc.Messages[1].Index)

	require.Len(t, doc.Broken, 1)
	br := doc.Broken[0]
	assert.Equal(t, 1, br.Index)
	assert.Equal(t, KindVoucher, br.Kind)
	assert.Equal(t, "VOUCHER", br.Element)
	assert.Equal(t, "PY-2", br.VoucherNo)
	assert.Equal(t, "Payment", br.VoucherType)
	assert.Error(t, br.Err)
}

func TestDecode_BrokenMasterKeepsName(t *testing.T) {
	payload := `<ENVELOPE>
	 <LEDGER NAME="Rent &amp; Rates"><PARENT>Indirect Expenses</PARENT></LEDGER>
	 <LEDGER NAME="Repairs"><PARENT>Indirect <Expenses</PARENT></LEDGER>
	 <!-- <LEDGER NAME="Commented"> -->
	 <LEDGERENTRIES.LIST><LEDGERNAME>not a record</LEDGERNAME></LEDGERENTRIES.LIST>
	</ENVELOPE>`

	doc, err := Decode(strings.NewReader(payload), 0)
	require.NoError(t, err)
	require.Len(t, doc.Messages, 1)
	assert.Equal(t, "Rent & Rates", doc.Messages[0].Ledger.Name())
	require.Len(t, doc.Broken, 1)
	assert.Equal(t, KindLedger, doc.Broken[0].Kind)
	assert.Equal(t, "Repairs", doc.Broken[0].Name)
}

func TestDecode_EmptyEnvelope(t *testing.T) {
	doc, err := Decode(strings.NewReader("<ENVELOPE/>"), 0)
	require.NoError(t, err)
	assert.Empty(t, doc.Messages)
	assert.Empty(t, doc.Broken)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode(strings.NewReader("not xml at all"), 0)
	assert.True(t, apperror.IsCode(err, apperror.CodeImportParse))

	_, err = Decode(strings.NewReader(sample), 100)
	assert.True(t, apperror.IsCode(err, apperror.CodeImportParse))
}
