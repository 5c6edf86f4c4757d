// Package tallyxml reads Tally-style XML bookkeeping exports.
//
// Values are kept as the raw strings found in the payload; conversion to
// numbers, dates and signs happens per record so that one bad record can be
// reported without discarding the rest of the document.
package tallyxml

import "strings"

// Kind is the payload kind of a message.
type Kind string

const (
	KindGroup      Kind = "group"
	KindLedger     Kind = "ledger"
	KindUnit       Kind = "unit"
	KindStockGroup Kind = "stock group"
	KindStockItem  Kind = "stock item"
	KindVoucher    Kind = "voucher"
)

// Message is one master or voucher element in document order.
// Exactly one payload pointer is set.
type Message struct {
	Index int

	Group      *Group
	Ledger     *Ledger
	Unit       *Unit
	StockGroup *StockGroup
	StockItem  *StockItem
	Voucher    *Voucher
}

// Kind reports which payload the message carries.
func (m Message) Kind() Kind {
	switch {
	case m.Group != nil:
		return KindGroup
	case m.Ledger != nil:
		return KindLedger
	case m.Unit != nil:
		return KindUnit
	case m.StockGroup != nil:
		return KindStockGroup
	case m.StockItem != nil:
		return KindStockItem
	default:
		return KindVoucher
	}
}

// named carries the NAME attribute and the NAME.LIST fallback.
type named struct {
	NameAttr string   `xml:"NAME,attr"`
	Names    []string `xml:"NAME.LIST>NAME"`
	NameTag  string   `xml:"NAME"`
}

// Name is the record's primary name.
func (n named) Name() string {
	if s := clean(n.NameAttr); s != "" {
		return s
	}
	for _, s := range n.Names {
		if s = clean(s); s != "" {
			return s
		}
	}
	return clean(n.NameTag)
}

// Group is an account group.
type Group struct {
	named
	ReservedName     string `xml:"RESERVEDNAME,attr"`
	Parent           string `xml:"PARENT"`
	IsRevenue        string `xml:"ISREVENUE"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
}

// ParentName is the declared parent group, empty for top-level groups.
func (g *Group) ParentName() string {
	return parentName(g.Parent)
}

// Ledger is an account.
type Ledger struct {
	named
	Parent         string `xml:"PARENT"`
	OpeningBalance string `xml:"OPENINGBALANCE"`
}

// ParentName is the declared group.
func (l *Ledger) ParentName() string {
	return parentName(l.Parent)
}

// Unit is a unit of measure.
type Unit struct {
	named
	OriginalName string `xml:"ORIGINALNAME"`
}

// StockGroup classifies stock items.
type StockGroup struct {
	named
	Parent string `xml:"PARENT"`
}

// ParentName is the declared parent stock group.
func (g *StockGroup) ParentName() string {
	return parentName(g.Parent)
}

// GSTRate is one duty head of a stock item's GST details.
type GSTRate struct {
	DutyHead string `xml:"GSTRATEDUTYHEAD"`
	Rate     string `xml:"GSTRATE"`
}

// StockItem is an inventory article.
type StockItem struct {
	named
	Parent         string    `xml:"PARENT"`
	BaseUnits      string    `xml:"BASEUNITS"`
	OpeningBalance string    `xml:"OPENINGBALANCE"`
	OpeningValue   string    `xml:"OPENINGVALUE"`
	OpeningRate    string    `xml:"OPENINGRATE"`
	GSTRates       []GSTRate `xml:"GSTDETAILS.LIST>STATEWISEDETAILS.LIST>RATEDETAILS.LIST"`
}

// ParentName is the declared stock group.
func (s *StockItem) ParentName() string {
	return parentName(s.Parent)
}

// IntegratedGSTRate returns the IGST rate string, or the first rate listed.
func (s *StockItem) IntegratedGSTRate() string {
	for _, r := range s.GSTRates {
		if strings.EqualFold(clean(r.DutyHead), "IGST") || strings.EqualFold(clean(r.DutyHead), "Integrated Tax") {
			return r.Rate
		}
	}
	if len(s.GSTRates) > 0 {
		return s.GSTRates[0].Rate
	}
	return ""
}

// LedgerLine is one accounting line. Amount uses the export's polarity:
// negative is debit.
type LedgerLine struct {
	LedgerName       string `xml:"LEDGERNAME"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount           string `xml:"AMOUNT"`
}

// InventoryLine is one stock line with its nested accounting allocations.
type InventoryLine struct {
	StockItemName    string       `xml:"STOCKITEMNAME"`
	IsDeemedPositive string       `xml:"ISDEEMEDPOSITIVE"`
	Rate             string       `xml:"RATE"`
	Amount           string       `xml:"AMOUNT"`
	ActualQty        string       `xml:"ACTUALQTY"`
	BilledQty        string       `xml:"BILLEDQTY"`
	Allocations      []LedgerLine `xml:"ACCOUNTINGALLOCATIONS.LIST"`
}

// Qty is the actual quantity, or the billed one when absent.
func (l *InventoryLine) Qty() string {
	if strings.TrimSpace(l.ActualQty) != "" {
		return l.ActualQty
	}
	return l.BilledQty
}

// Voucher is a transaction document.
type Voucher struct {
	VchType         string          `xml:"VCHTYPE,attr"`
	GUID            string          `xml:"GUID"`
	Date            string          `xml:"DATE"`
	TypeName        string          `xml:"VOUCHERTYPENAME"`
	Number          string          `xml:"VOUCHERNUMBER"`
	Narration       string          `xml:"NARRATION"`
	PartyLedgerName string          `xml:"PARTYLEDGERNAME"`
	AllLedgerLines  []LedgerLine    `xml:"ALLLEDGERENTRIES.LIST"`
	LedgerLines     []LedgerLine    `xml:"LEDGERENTRIES.LIST"`
	AllInventory    []InventoryLine `xml:"ALLINVENTORYENTRIES.LIST"`
	Inventory       []InventoryLine `xml:"INVENTORYENTRIES.LIST"`
}

// TypeLabel is the declared voucher type name.
func (v *Voucher) TypeLabel() string {
	if s := clean(v.TypeName); s != "" {
		return s
	}
	return clean(v.VchType)
}

// VoucherNo is the trimmed voucher number.
func (v *Voucher) VoucherNo() string {
	return clean(v.Number)
}

// Ledgers returns every accounting line; both list spellings are accepted.
func (v *Voucher) Ledgers() []LedgerLine {
	out := make([]LedgerLine, 0, len(v.AllLedgerLines)+len(v.LedgerLines))
	out = append(out, v.AllLedgerLines...)
	return append(out, v.LedgerLines...)
}

// InventoryLines returns every stock line; both list spellings are accepted.
func (v *Voucher) InventoryLines() []InventoryLine {
	out := make([]InventoryLine, 0, len(v.AllInventory)+len(v.Inventory))
	out = append(out, v.AllInventory...)
	return append(out, v.Inventory...)
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

// parentName treats the reserved root "Primary" as no parent.
func parentName(s string) string {
	s = clean(s)
	if strings.EqualFold(s, "Primary") {
		return ""
	}
	return s
}
