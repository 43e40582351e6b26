package dataprocessing

import (
	"rfdestaques/pkg/contracts/domain"
)

// Default sheet layout of the broker workbook
const (
	DefaultBankSheet       = "Crédito bancário"
	DefaultBankHeaderRow   = 6
	DefaultPublicSheet     = "Títulos Públicos"
	DefaultPublicHeaderRow = 5
	DefaultBlankRowLimit   = 20
)

// SheetSpec locates a table inside the workbook
type SheetSpec struct {
	Name string
	// HeaderRow is the 1-based worksheet row holding the column headers
	HeaderRow int
	// BlankRowLimit consecutive blank rows end the table; 0 reads to the end
	BlankRowLimit int
}

// DefaultBankSheetSpec returns the layout of the bank-credit sheet
func DefaultBankSheetSpec() SheetSpec {
	return SheetSpec{Name: DefaultBankSheet, HeaderRow: DefaultBankHeaderRow, BlankRowLimit: DefaultBlankRowLimit}
}

// DefaultPublicSheetSpec returns the layout of the public-bond sheet
func DefaultPublicSheetSpec() SheetSpec {
	return SheetSpec{Name: DefaultPublicSheet, HeaderRow: DefaultPublicHeaderRow, BlankRowLimit: DefaultBlankRowLimit}
}

// DropReason names why a row did not become a record
type DropReason string

const (
	DropMissingRate    DropReason = "missing_rate"
	DropMissingIndexer DropReason = "missing_indexer"
	DropMissingHorizon DropReason = "missing_horizon"
	DropNotNTNB        DropReason = "not_ntnb"
)

// DropStats counts rows dropped per reason. A row is counted once, under
// the first reason that applies.
type DropStats map[DropReason]int

// Total returns the number of dropped rows
func (d DropStats) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// NormalizationResult is the outcome of normalizing one table
type NormalizationResult struct {
	Sheet      string                    `json:"sheet"`
	Headers    []string                  `json:"headers"`
	Resolution Resolution                `json:"resolution"`
	RowsRead   int                       `json:"rows_read"`
	Records    []domain.NormalizedRecord `json:"records"`
	Dropped    DropStats                 `json:"dropped"`
}
