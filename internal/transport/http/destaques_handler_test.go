package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rfdestaques/internal/config"
	apierrors "rfdestaques/internal/errors"
	"rfdestaques/internal/files"
	"rfdestaques/internal/messaging"
	"rfdestaques/internal/presentation"
	"rfdestaques/internal/services"
	"rfdestaques/internal/shared/testutil"
	"rfdestaques/internal/validation"
)

type fakeDispatch struct {
	got presentation.MessageSet
	err error
}

func (f *fakeDispatch) Send(_ context.Context, set presentation.MessageSet) (*services.DispatchSummary, error) {
	f.got = set
	if f.err != nil {
		return nil, f.err
	}
	return &services.DispatchSummary{
		Groups: []messaging.GroupResult{{Group: "clientes", Results: []messaging.MessageResult{{Order: 1, OK: true}}}},
		Sent:   1,
	}, nil
}

type testServer struct {
	router   chi.Router
	dispatch *fakeDispatch
	paths    *config.Paths
}

func newTestServer(t *testing.T, dispatch DispatchServiceInterface, mutate func(*DestaquesHandlerConfig)) *testServer {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)

	dir := t.TempDir()
	paths := &config.Paths{
		WorkingDir: dir,
		DataDir:    filepath.Join(dir, "data"),
		ExportsDir: filepath.Join(dir, "data", "exports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}

	cfg := DestaquesHandlerConfig{
		Archive:    files.NewManager(paths, logger),
		ExportsDir: paths.ExportsDir,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	h := NewDestaquesHandler(
		services.NewDestaquesService(config.Default(), nil, logger),
		dispatch,
		validation.NewWorkbookValidator(config.DefaultMaxUploadBytes, logger),
		cfg,
		logger,
		eh,
	)

	r := chi.NewRouter()
	r.Mount("/api/v1/destaques", h.Routes())

	ts := &testServer{router: r, paths: paths}
	if fd, ok := dispatch.(*fakeDispatch); ok {
		ts.dispatch = fd
	}
	return ts
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	return testutil.NewWorkbook(t).
		BankSheet(
			testutil.BankRow{Issuer: "Banco A", Product: "CDB", Indexer: "CDI", Rate: "115% CDI", Term: 400, Maturity: "17/11/2027", MinInvestment: 1000, Rating: "AA"},
			testutil.BankRow{Issuer: "Banco B", Product: "LCA", Indexer: "IPCA", Rate: "IPCA+6,50%", Term: 900, Maturity: "01/04/2029", MinInvestment: "5.000,00", Rating: "A"},
			testutil.BankRow{Issuer: "Banco C", Product: "LCI", Indexer: "PRÉ", Rate: "13,20% a.a.", Term: 200, Maturity: "02/05/2027", MinInvestment: 20000, Rating: "BB"},
		).
		PublicSheet(
			testutil.PublicRow{Title: "NTN-B 2035", Maturity: "15/05/2035", Rate: "7,45%"},
		).
		Bytes()
}

func uploadRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var onToday = map[string]string{"today": "2026-10-14"}

func TestDestaquesHandler_Process(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.do(t, uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", sampleWorkbook(t), onToday))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, "2026-10-14", body["today"])
	assert.NotEmpty(t, body["run_id"])
	assert.EqualValues(t, 3, body["eligible_records"])

	messages := body["messages"].(map[string]interface{})
	assert.Contains(t, messages["pos_cdi"], "Banco A")
	assert.Contains(t, messages["public"], "NTN-B 2035")

	archived, _ := body["archived_as"].(string)
	require.NotEmpty(t, archived)
	assert.FileExists(t, archived)
	assert.True(t, strings.HasPrefix(filepath.Base(archived), "20261014_"))
}

func TestDestaquesHandler_ProcessOptions(t *testing.T) {
	s := newBareServer(t)

	fields := map[string]string{"today": "2026-10-14", "rating_floor": "A", "max_min_investment": "5000"}
	rec := s.do(t, uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", sampleWorkbook(t), fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decodeJSON(t, rec)["eligible_records"])
}

// newBareServer has no archive configured
func newBareServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServer(t, nil, func(c *DestaquesHandlerConfig) { c.Archive = nil })
}

func TestDestaquesHandler_Errors(t *testing.T) {
	s := newBareServer(t)

	missingColumns := testutil.NewWorkbook(t).
		Sheet(testutil.BankSheetName, testutil.BankHeaderRow, []string{"Emissor", "Produto"}, [][]any{{"Banco A", "CDB"}}).
		Bytes()

	notZip := []byte("this is not a workbook")

	tests := []struct {
		name     string
		req      func() *http.Request
		status   int
		contains string
	}{
		{
			name: "file field missing",
			req: func() *http.Request {
				return uploadRequest(t, "/api/v1/destaques/", "", nil, onToday)
			},
			status:   http.StatusBadRequest,
			contains: "file",
		},
		{
			name: "wrong extension",
			req: func() *http.Request {
				return uploadRequest(t, "/api/v1/destaques/", "ofertas.csv", sampleWorkbook(t), onToday)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "not a zip",
			req: func() *http.Request {
				return uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", notZip, onToday)
			},
			status: http.StatusBadRequest,
		},
		{
			name: "top_n out of range",
			req: func() *http.Request {
				return uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", sampleWorkbook(t), map[string]string{"top_n": "50"})
			},
			status:   http.StatusBadRequest,
			contains: "top_n must be between 1 and 20",
		},
		{
			name: "missing columns",
			req: func() *http.Request {
				return uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", missingColumns, onToday)
			},
			status:   http.StatusUnprocessableEntity,
			contains: "missing_columns",
		},
		{
			name: "json body",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/destaques/", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			status: http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.req())
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "json")
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestDestaquesHandler_PayloadTooLarge(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)
	h := NewDestaquesHandler(
		services.NewDestaquesService(config.Default(), nil, logger),
		nil,
		validation.NewWorkbookValidator(512, logger),
		DestaquesHandlerConfig{},
		logger,
		eh,
	)
	r := chi.NewRouter()
	r.Mount("/api/v1/destaques", h.Routes())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "/api/v1/destaques/", "ofertas.xlsx", sampleWorkbook(t), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestDestaquesHandler_Export(t *testing.T) {
	s := newTestServer(t, nil, nil)

	t.Run("csv", func(t *testing.T) {
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/export?format=csv", "ofertas.xlsx", sampleWorkbook(t), onToday))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Regexp(t, `attachment; filename="top_ativos_credito_bancario_\d{8}_\d{4}\.csv"`, rec.Header().Get("Content-Disposition"))
		assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))

		lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(rec.Body.String(), "\ufeff")), "\n")
		assert.Len(t, lines, 4, "header plus three ranked rows")
	})

	t.Run("xlsx saved", func(t *testing.T) {
		fields := map[string]string{"today": "2026-10-14", "save": "true"}
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/export?format=xlsx", "ofertas.xlsx", sampleWorkbook(t), fields))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		require.NoError(t, err)
		assert.Len(t, rows, 4)

		list := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/destaques/exports", nil))
		require.Equal(t, http.StatusOK, list.Code)
		assert.EqualValues(t, 1, decodeJSON(t, list)["count"])
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/export?format=pdf", "ofertas.xlsx", sampleWorkbook(t), onToday))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "format must be one of: csv, xlsx")
	})
}

func TestDestaquesHandler_Send(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, nil, nil)
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/send", "ofertas.xlsx", sampleWorkbook(t), onToday))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "MESSAGING_UNAVAILABLE", decodeJSON(t, rec)["error_code"])
	})

	t.Run("service reports not configured", func(t *testing.T) {
		s := newTestServer(t, &fakeDispatch{err: services.ErrMessagingNotConfigured}, nil)
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/send", "ofertas.xlsx", sampleWorkbook(t), onToday))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("dispatched", func(t *testing.T) {
		s := newTestServer(t, &fakeDispatch{}, nil)
		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/send", "ofertas.xlsx", sampleWorkbook(t), onToday))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decodeJSON(t, rec)
		dispatch := body["dispatch"].(map[string]interface{})
		assert.EqualValues(t, 1, dispatch["sent"])
		assert.Contains(t, s.dispatch.got.PostCDI, "Banco A")
	})

	t.Run("api key required", func(t *testing.T) {
		s := newTestServer(t, &fakeDispatch{}, func(c *DestaquesHandlerConfig) {
			c.APIKeys = map[string]string{"s3cret": "mesa"}
		})

		rec := s.do(t, uploadRequest(t, "/api/v1/destaques/send", "ofertas.xlsx", sampleWorkbook(t), onToday))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req := uploadRequest(t, "/api/v1/destaques/send", "ofertas.xlsx", sampleWorkbook(t), onToday)
		req.Header.Set("X-API-Key", "s3cret")
		rec = s.do(t, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func TestDestaquesHandler_ListExportsWithoutArchive(t *testing.T) {
	s := newBareServer(t)
	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/destaques/exports", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
