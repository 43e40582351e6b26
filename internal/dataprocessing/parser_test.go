package dataprocessing

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rfdestaques/internal/errors"
	"rfdestaques/internal/shared/testutil"
	"rfdestaques/pkg/contracts/domain"
)

func openFixture(t *testing.T, data []byte) *Workbook {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	wb, err := OpenWorkbook(bytes.NewReader(data), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestReadSheet_BankLayout(t *testing.T) {
	maturity := time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC)
	data := testutil.NewWorkbook(t).BankSheet(
		testutil.BankRow{Issuer: "Banco A", Product: "CDB", Indexer: "CDI", Rate: "115% CDI", Term: 400, Maturity: maturity, MinInvestment: 5000, Rating: "AA"},
		testutil.BankRow{Issuer: "Banco B", Product: "LCA", Indexer: "IPCA", Rate: "IPCA+6,50%", Term: "900", Maturity: "15/01/2029", MinInvestment: "1.000,00"},
	).Bytes()

	wb := openFixture(t, data)
	table, err := wb.ReadSheet(DefaultBankSheetSpec())
	require.NoError(t, err)

	assert.Equal(t, testutil.BankSheetName, table.Sheet)
	assert.Equal(t, testutil.BankHeaders(), table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []int{7, 8}, table.SourceRows)

	row := table.Row(0)
	assert.Equal(t, domain.CellText, row.Get("Tx. Portal").Kind)
	assert.Equal(t, "115% CDI", row.Get("Tx. Portal").Text)
	assert.Equal(t, domain.CellNumber, row.Get("Prazo").Kind)
	assert.Equal(t, float64(400), row.Get("Prazo").Number)
	assert.Equal(t, domain.CellNumber, row.Get("Vencimento").Kind, "dates written by excel are serial numbers")
	assert.Equal(t, 7, row.SourceRow())

	second := table.Row(1)
	assert.Equal(t, domain.CellText, second.Get("Prazo").Kind, "numeric-looking strings stay text")
	assert.Equal(t, "1.000,00", second.Get("Aplicação mínima").Text)
	assert.True(t, second.Get("Rating").IsEmpty())
}

func TestReadSheet_HeaderNormalization(t *testing.T) {
	data := testutil.NewWorkbook(t).
		Sheet("Plan", 1, []string{"  Aplicação\nmínima ", "Tx.\r\nPortal", "", "Emissor"}, [][]any{{1000, "10%", nil, "Banco"}}).
		Bytes()

	wb := openFixture(t, data)
	table, err := wb.ReadSheet(SheetSpec{Name: "Plan", HeaderRow: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"Aplicação mínima", "Tx. Portal", "Emissor"}, table.Headers, "empty unnamed column is dropped")
	assert.Equal(t, "Banco", table.Row(0).Get("Emissor").Text)
}

func TestReadSheet_BlankRowLimit(t *testing.T) {
	rows := make([][]any, 30)
	rows[0] = []any{"first"}
	rows[3] = []any{"after short gap"}
	rows[29] = []any{"after long gap"}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"stops after limit", 20, []string{"first", "after short gap"}},
		{"limit disabled", 0, []string{"first", "after short gap", "after long gap"}},
		{"limit larger than gap", 30, []string{"first", "after short gap", "after long gap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testutil.NewWorkbook(t).Sheet("Dados", 2, []string{"Emissor"}, rows).Bytes()
			wb := openFixture(t, data)

			table, err := wb.ReadSheet(SheetSpec{Name: "Dados", HeaderRow: 2, BlankRowLimit: tt.limit})
			require.NoError(t, err)

			got := make([]string, 0, table.Len())
			for i := 0; i < table.Len(); i++ {
				got = append(got, table.Row(i).Cell(0).Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadSheet_MissingSheet(t *testing.T) {
	data := testutil.NewWorkbook(t).Sheet("Outra", 1, []string{"A"}, nil).Bytes()
	wb := openFixture(t, data)

	_, err := wb.ReadSheet(DefaultPublicSheetSpec())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIngestion))

	var ingestErr *apperrors.IngestionError
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, DefaultPublicSheet, ingestErr.Sheet)
	assert.Equal(t, []string{"Outra"}, ingestErr.AvailableSheets)
}

func TestFindSheet_IgnoresCaseAndAccents(t *testing.T) {
	data := testutil.NewWorkbook(t).Sheet("CREDITO BANCARIO", 1, []string{"A"}, nil).Bytes()
	wb := openFixture(t, data)

	name, ok := wb.FindSheet("Crédito bancário")
	assert.True(t, ok)
	assert.Equal(t, "CREDITO BANCARIO", name)

	_, ok = wb.FindSheet("Títulos Públicos")
	assert.False(t, ok)
}

func TestOpenWorkbook_NotXLSX(t *testing.T) {
	_, err := OpenWorkbook(bytes.NewReader([]byte("definitely not a zip")), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIngestion))
}
