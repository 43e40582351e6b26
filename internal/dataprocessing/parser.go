package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rfdestaques/internal/classify"
	apperrors "rfdestaques/internal/errors"
	"rfdestaques/pkg/contracts/domain"
)

// Workbook is an opened broker spreadsheet
type Workbook struct {
	f      *excelize.File
	logger *slog.Logger
}

// OpenWorkbook reads an xlsx document from r
func OpenWorkbook(r io.Reader, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewUnreadableWorkbookError("", fmt.Errorf("failed to open workbook: %w", err))
	}
	return &Workbook{f: f, logger: logger.With(slog.String("component", "workbook_reader"))}, nil
}

// Close releases the underlying file
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames lists the sheets in workbook order
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// FindSheet resolves a configured sheet name to the name used in the file.
// An exact match wins; otherwise names are compared ignoring case, accents
// and surrounding spaces.
func (w *Workbook) FindSheet(name string) (string, bool) {
	sheets := w.f.GetSheetList()
	for _, s := range sheets {
		if s == name {
			return s, true
		}
	}
	want := classify.Fold(name)
	for _, s := range sheets {
		if classify.Fold(s) == want {
			return s, true
		}
	}
	return "", false
}

// ReadSheet loads the sheet described by spec. Rows above the header row are
// skipped, blank rows are discarded and a run of spec.BlankRowLimit
// consecutive blank rows ends the table.
func (w *Workbook) ReadSheet(spec SheetSpec) (*Table, error) {
	sheet, ok := w.FindSheet(spec.Name)
	if !ok {
		return nil, apperrors.NewMissingSheetError(spec.Name, w.SheetNames())
	}

	rows, err := w.f.Rows(sheet)
	if err != nil {
		return nil, apperrors.NewUnreadableWorkbookError(spec.Name, err)
	}
	defer rows.Close()

	table := &Table{Sheet: sheet}
	headerRow := spec.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	width := 0
	rowNum, blank := 0, 0
	for rows.Next() {
		rowNum++
		if rowNum < headerRow {
			continue
		}

		values, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewUnreadableWorkbookError(spec.Name, fmt.Errorf("row %d: %w", rowNum, err))
		}

		if rowNum == headerRow {
			table.Headers = make([]string, len(values))
			for i, v := range values {
				table.Headers[i] = NormalizeHeader(v)
			}
			width = len(values)
			continue
		}

		cells, empty := w.readCells(sheet, rowNum, values)
		if empty {
			blank++
			if spec.BlankRowLimit > 0 && blank >= spec.BlankRowLimit {
				w.logger.Debug("blank row limit reached",
					slog.String("sheet", sheet),
					slog.Int("row", rowNum),
					slog.Int("limit", spec.BlankRowLimit))
				break
			}
			continue
		}
		blank = 0

		if len(cells) > width {
			width = len(cells)
		}
		table.Rows = append(table.Rows, cells)
		table.SourceRows = append(table.SourceRows, rowNum)
	}
	if err := rows.Error(); err != nil {
		return nil, apperrors.NewUnreadableWorkbookError(spec.Name, err)
	}

	for len(table.Headers) < width {
		table.Headers = append(table.Headers, "")
	}
	for i, row := range table.Rows {
		for len(row) < width {
			row = append(row, domain.Cell{})
		}
		table.Rows[i] = row
	}
	table.dropEmptyColumns()

	w.logger.Info("sheet read",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Headers)))

	return table, nil
}

// readCells types each raw value. The second result is true when every cell
// is blank.
func (w *Workbook) readCells(sheet string, rowNum int, values []string) ([]domain.Cell, bool) {
	cells := make([]domain.Cell, len(values))
	empty := true
	for col, raw := range values {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		empty = false

		name, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			cells[col] = domain.TextCell(raw)
			continue
		}
		cellType, err := w.f.GetCellType(sheet, name)
		if err != nil {
			cellType = excelize.CellTypeUnset
		}
		cells[col] = typedCell(cellType, raw)
	}
	return cells, empty
}

// typedCell maps an excelize cell type and raw value to a domain cell.
// Strings stay text even if they look numeric, so "1.234,56" keeps its
// Brazilian notation for the field parsers.
func typedCell(cellType excelize.CellType, raw string) domain.Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return domain.TextCell(raw)
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return domain.DateCell(t)
			}
		}
		return domain.TextCell(raw)
	default:
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return domain.NumberCell(v)
		}
		return domain.TextCell(raw)
	}
}
