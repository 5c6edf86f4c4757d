package tallyxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"

	"ledgerbook/internal/core/apperror"
)

// DefaultMaxBytes caps an uncompressed payload.
const DefaultMaxBytes = 64 << 20

// Document is a decoded export.
type Document struct {
	Messages []Message

	// Broken lists records whose markup could not be decoded. Each one is
	// reported on its own; the records around it are still usable.
	Broken []Broken
}

// Broken is a record that failed to decode. Its identifying fields are
// recovered from the raw markup on a best-effort basis.
type Broken struct {
	Index       int
	Kind        Kind
	Element     string
	Name        string
	VoucherNo   string
	VoucherType string
	Err         error
}

var recordKinds = map[string]Kind{
	"GROUP":      KindGroup,
	"LEDGER":     KindLedger,
	"UNIT":       KindUnit,
	"STOCKGROUP": KindStockGroup,
	"STOCKITEM":  KindStockItem,
	"VOUCHER":    KindVoucher,
}

// Tally escapes its root marker as a control character which XML 1.0 forbids.
var controlRefs = [][]byte{[]byte("&#4;"), []byte("&#x4;"), []byte("&#04;")}

// Decode reads a possibly compressed, possibly non-UTF-8 export and collects
// its GROUP, LEDGER, UNIT, STOCKGROUP, STOCKITEM and VOUCHER elements at any
// depth. maxBytes <= 0 selects DefaultMaxBytes.
func Decode(r io.Reader, maxBytes int64) (*Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	plain, closeFn, err := Decompress(r)
	if err != nil {
		return nil, apperror.NewImportParse("payload", err.Error())
	}
	defer closeFn()

	text, err := NewUTF8Reader(plain)
	if err != nil {
		return nil, apperror.NewImportParse("payload", err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(text, maxBytes+1))
	if err != nil {
		return nil, apperror.NewImportParse("payload", fmt.Sprintf("read payload: %v", err))
	}
	if int64(len(data)) > maxBytes {
		return nil, apperror.NewImportParse("payload", fmt.Sprintf("payload exceeds %d bytes", maxBytes))
	}
	for _, ref := range controlRefs {
		data = bytes.ReplaceAll(data, ref, nil)
	}

	return decodeXML(data)
}

// decodeXML cuts the payload into record blocks and decodes each one with
// its own decoder, so a malformed record cannot take the rest down with it.
func decodeXML(data []byte) (*Document, error) {
	doc := &Document{}
	for _, blk := range splitRecords(data) {
		index := len(doc.Messages) + len(doc.Broken)
		msg, err := decodeRecord(blk)
		if err != nil {
			doc.Broken = append(doc.Broken, brokenRecord(index, blk, err))
			continue
		}
		msg.Index = index
		doc.Messages = append(doc.Messages, msg)
	}

	if len(doc.Messages) == 0 && len(doc.Broken) == 0 {
		if err := firstElement(data); err != nil {
			return nil, apperror.NewImportParse("payload", err.Error())
		}
	}
	return doc, nil
}

// block is the raw markup of one record element.
type block struct {
	element string
	raw     []byte
	// open is set when the payload ends before the element is closed.
	open bool
}

func splitRecords(data []byte) []block {
	var out []block
	for pos := 0; pos < len(data); {
		lt := bytes.IndexByte(data[pos:], '<')
		if lt < 0 {
			break
		}
		start := pos + lt
		rest := data[start:]

		switch {
		case bytes.HasPrefix(rest, []byte("<!--")):
			pos = skipPast(data, start, "-->")
			continue
		case bytes.HasPrefix(rest, []byte("<![CDATA[")):
			pos = skipPast(data, start, "]]>")
			continue
		}

		name := tagName(rest[1:])
		if _, ok := recordKinds[name]; !ok || !nameEnds(rest[1+len(name):]) {
			pos = start + 1
			continue
		}

		end, closed := recordEnd(data, start, name)
		out = append(out, block{element: name, raw: data[start:end], open: !closed})
		pos = end
	}
	return out
}

func skipPast(data []byte, from int, marker string) int {
	i := bytes.Index(data[from:], []byte(marker))
	if i < 0 {
		return len(data)
	}
	return from + i + len(marker)
}

func tagName(b []byte) string {
	n := 0
	for n < len(b) && (b[n] >= 'A' && b[n] <= 'Z' || b[n] == '.' || b[n] == '_' || b[n] >= '0' && b[n] <= '9') {
		n++
	}
	return string(b[:n])
}

// nameEnds rejects longer names sharing the prefix, e.g. LEDGERENTRIES.LIST.
func nameEnds(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	switch b[0] {
	case ' ', '\t', '\r', '\n', '>', '/':
		return true
	}
	return false
}

// recordEnd returns the offset just past the element opened at start.
func recordEnd(data []byte, start int, name string) (int, bool) {
	gt, selfClosing := startTagEnd(data, start)
	if gt < 0 {
		return len(data), false
	}
	if selfClosing {
		return gt + 1, true
	}

	closing := []byte("</" + name)
	for pos := gt + 1; ; {
		i := bytes.Index(data[pos:], closing)
		if i < 0 {
			return len(data), false
		}
		j := pos + i + len(closing)
		for j < len(data) && (data[j] == ' ' || data[j] == '\t' || data[j] == '\r' || data[j] == '\n') {
			j++
		}
		if j < len(data) && data[j] == '>' {
			return j + 1, true
		}
		pos = pos + i + 1
	}
}

// startTagEnd finds the '>' closing the start tag, skipping quoted
// attribute values.
func startTagEnd(data []byte, start int) (int, bool) {
	var quote byte
	for i := start + 1; i < len(data); i++ {
		c := data[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i, data[i-1] == '/'
		}
	}
	return -1, false
}

func decodeRecord(blk block) (Message, error) {
	if blk.open {
		return Message{}, fmt.Errorf("%s element is not closed before the end of the payload", blk.element)
	}

	dec := xml.NewDecoder(bytes.NewReader(blk.raw))
	// The payload is already UTF-8 whatever the declaration says.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var msg Message
	var target any
	switch blk.element {
	case "GROUP":
		msg.Group = &Group{}
		target = msg.Group
	case "LEDGER":
		msg.Ledger = &Ledger{}
		target = msg.Ledger
	case "UNIT":
		msg.Unit = &Unit{}
		target = msg.Unit
	case "STOCKGROUP":
		msg.StockGroup = &StockGroup{}
		target = msg.StockGroup
	case "STOCKITEM":
		msg.StockItem = &StockItem{}
		target = msg.StockItem
	case "VOUCHER":
		msg.Voucher = &Voucher{}
		target = msg.Voucher
	}
	if err := dec.Decode(target); err != nil {
		return Message{}, fmt.Errorf("%s element: %w", blk.element, err)
	}
	return msg, nil
}

var (
	nameAttrRe = regexp.MustCompile(`^<[A-Z.]+[^>]*?\sNAME\s*=\s*"([^"]*)"`)
	nameTagRe  = regexp.MustCompile(`<NAME>([^<]*)</NAME>`)
	numberRe   = regexp.MustCompile(`<VOUCHERNUMBER>([^<]*)</VOUCHERNUMBER>`)
	typeAttrRe = regexp.MustCompile(`^<VOUCHER[^>]*?\sVCHTYPE\s*=\s*"([^"]*)"`)
	typeTagRe  = regexp.MustCompile(`<VOUCHERTYPENAME>([^<]*)</VOUCHERTYPENAME>`)
)

func brokenRecord(index int, blk block, err error) Broken {
	br := Broken{
		Index:   index,
		Kind:    recordKinds[blk.element],
		Element: blk.element,
		Err:     err,
	}
	if blk.element == "VOUCHER" {
		br.VoucherNo = firstMatch(blk.raw, numberRe)
		br.VoucherType = firstMatch(blk.raw, typeTagRe, typeAttrRe)
		return br
	}
	br.Name = firstMatch(blk.raw, nameAttrRe, nameTagRe)
	return br
}

func firstMatch(raw []byte, res ...*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindSubmatch(raw); m != nil {
			if v := clean(html.UnescapeString(string(m[1]))); v != "" {
				return v
			}
		}
	}
	return ""
}

// firstElement reports why a payload without records is not XML at all.
func firstElement(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return errors.New("no XML elements found")
		}
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}
