package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"rfdestaques/internal/presentation"
	"rfdestaques/internal/selection"
)

// BucketFilePrefix names the consolidated top-per-bucket export
const BucketFilePrefix = "top_ativos_credito_bancario"

const bucketSheet = "Top por bloco"

// BucketHeaders are the columns of the consolidated export
var BucketHeaders = []string{
	"Bloco", "Emissor", "Produto", "Indexador", "Taxa", "Taxa (valor)",
	"Aplicação mínima", "Vencimento", "Prazo (dias)", "Rating",
}

// BucketExporter writes the selected records of every bucket as one table,
// each row tagged with its "<indexer> | <horizon>" block
type BucketExporter struct {
	rows   []selection.BucketRow
	policy presentation.RatePolicy
	logger *slog.Logger
}

// NewBucketExporter flattens buckets in display order
func NewBucketExporter(b selection.Buckets, policy presentation.RatePolicy, logger *slog.Logger) *BucketExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketExporter{
		rows:   b.Flatten(),
		policy: policy,
		logger: logger.With(slog.String("component", "bucket_exporter")),
	}
}

// FileName returns the timestamped export name, e.g.
// top_ativos_credito_bancario_20261014_0930.csv
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", BucketFilePrefix, now.Format("20060102_1504"), ext)
}

// Records renders the rows as CSV/XLSX cell strings
func (e *BucketExporter) Records() [][]string {
	out := make([][]string, 0, len(e.rows))
	for _, row := range e.rows {
		r := row.Record
		out = append(out, []string{
			row.Key.Label(),
			r.Issuer,
			r.Product,
			r.IndexerRaw,
			e.policy.Format(r.Rate, r.Indexer),
			strconv.FormatFloat(r.Rate, 'f', -1, 64),
			presentation.FormatCurrencyBRL(r.MinInvestment),
			presentation.FormatDateBR(r.Maturity),
			strconv.Itoa(r.TermDays),
			r.RatingRaw,
		})
	}
	return out
}

// WriteCSV writes a UTF-8 CSV with BOM
func (e *BucketExporter) WriteCSV(w io.Writer) error {
	return Write(w, WriteOptions{Headers: BucketHeaders, Records: e.Records(), BOMPrefix: true})
}

// WriteXLSX writes a single-sheet workbook with a bold header row
func (e *BucketExporter) WriteXLSX(w io.Writer) error {
	f, err := e.workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// SaveCSV streams the export into dir and returns the file path
func (e *BucketExporter) SaveCSV(dir string, now time.Time) (string, error) {
	stream, err := NewCSVWriter(dir, e.logger).CreateStreamWriter(FileName(now, "csv"), BucketHeaders)
	if err != nil {
		return "", err
	}
	for i, rec := range e.Records() {
		if err := stream.WriteRecord(rec); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.Path(), nil
}

// SaveXLSX writes the workbook into dir and returns the file path
func (e *BucketExporter) SaveXLSX(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now, "xlsx"))

	f, err := e.workbook()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save xlsx: %w", err)
	}
	e.logger.Info("Wrote XLSX file", slog.String("full_path", path), slog.Int("record_count", len(e.rows)))
	return path, nil
}

func (e *BucketExporter) workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", bucketSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := append([][]string{BucketHeaders}, e.Records()...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(bucketSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(BucketHeaders), 1)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(bucketSheet, "A1", last, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	return f, nil
}
