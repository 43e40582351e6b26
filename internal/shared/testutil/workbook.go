package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet layout of the broker's daily offer workbook
const (
	BankSheetName   = "Crédito bancário"
	BankHeaderRow   = 6
	PublicSheetName = "Títulos Públicos"
	PublicHeaderRow = 5
)

// BankHeaders is the header row of a typical bank-credit sheet
func BankHeaders() []string {
	return []string{"Emissor", "Produto", "Indexador", "Tx. Portal", "Prazo", "Vencimento", "Aplicação mínima", "Rating"}
}

// PublicHeaders is the header row of a typical public-bond sheet
func PublicHeaders() []string {
	return []string{"Título", "Vencimento", "Taxa do portal às 10h"}
}

// BankRow is one bank-credit offer. Fields are written as given, so a value
// can be a string, a number or a time.Time; nil leaves the cell blank.
type BankRow struct {
	Issuer        any
	Product       any
	Indexer       any
	Rate          any
	Term          any
	Maturity      any
	MinInvestment any
	Rating        any
}

func (r BankRow) values() []any {
	return []any{r.Issuer, r.Product, r.Indexer, r.Rate, r.Term, r.Maturity, r.MinInvestment, r.Rating}
}

// PublicRow is one public-bond quote
type PublicRow struct {
	Title    any
	Maturity any
	Rate     any
}

func (r PublicRow) values() []any {
	return []any{r.Title, r.Maturity, r.Rate}
}

// Workbook builds in-memory xlsx fixtures
type Workbook struct {
	t      *testing.T
	f      *excelize.File
	sheets int
}

// NewWorkbook starts an empty workbook
func NewWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	return &Workbook{t: t, f: f}
}

// Sheet writes headers at headerRow (1-based) with a title line above it,
// followed by rows. A nil row leaves a blank line.
func (w *Workbook) Sheet(name string, headerRow int, headers []string, rows [][]any) *Workbook {
	w.t.Helper()

	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			w.t.Fatalf("rename sheet: %v", err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		w.t.Fatalf("new sheet %s: %v", name, err)
	}
	w.sheets++

	if headerRow > 1 {
		w.set(name, "A1", "Ofertas do dia")
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	w.row(name, headerRow, header)

	for i, row := range rows {
		if row == nil {
			continue
		}
		w.row(name, headerRow+1+i, row)
	}
	return w
}

// BankSheet writes a bank-credit sheet with the default headers
func (w *Workbook) BankSheet(rows ...BankRow) *Workbook {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.values()
	}
	return w.Sheet(BankSheetName, BankHeaderRow, BankHeaders(), values)
}

// PublicSheet writes a public-bond sheet with the default headers
func (w *Workbook) PublicSheet(rows ...PublicRow) *Workbook {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.values()
	}
	return w.Sheet(PublicSheetName, PublicHeaderRow, PublicHeaders(), values)
}

// Set writes a single cell on an existing sheet
func (w *Workbook) Set(sheet, cell string, value any) *Workbook {
	w.t.Helper()
	w.set(sheet, cell, value)
	return w
}

// Bytes serializes the workbook
func (w *Workbook) Bytes() []byte {
	w.t.Helper()
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		w.t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func (w *Workbook) row(sheet string, row int, values []any) {
	for col, v := range values {
		if v == nil {
			continue
		}
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			w.t.Fatalf("cell name: %v", err)
		}
		w.set(sheet, name, v)
	}
}

func (w *Workbook) set(sheet, cell string, value any) {
	if err := w.f.SetCellValue(sheet, cell, value); err != nil {
		w.t.Fatalf("set %s!%s: %v", sheet, cell, err)
	}
}
