package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"

	"rfdestaques/internal/classify"
	"rfdestaques/internal/config"
	"rfdestaques/internal/dataprocessing"
	apperrors "rfdestaques/internal/errors"
	"rfdestaques/internal/exporter"
	"rfdestaques/internal/infrastructure"
	"rfdestaques/internal/presentation"
	"rfdestaques/internal/selection"
	"rfdestaques/pkg/contracts/domain"
)

// Result cache lifetimes
const (
	DefaultResultTTL     = 15 * time.Minute
	resultCleanupPeriod = 30 * time.Minute
)

// ProcessOptions are the per-run knobs. The zero value is not valid; start
// from DestaquesService.DefaultOptions.
type ProcessOptions struct {
	TopN             int     `json:"top_n" validate:"min=1,max=20"`
	MessageTopN      int     `json:"message_top_n" validate:"min=1,max=20"`
	OmitEmptyBuckets bool    `json:"omit_empty_buckets"`
	RatingFloor      string  `json:"rating_floor,omitempty"`
	MaxMinInvestment float64 `json:"max_min_investment,omitempty" validate:"gte=0"`
	// Today overrides the reference date; zero uses the configured clock
	Today time.Time `json:"-"`
}

func (o ProcessOptions) cacheKey(hash string, today time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d|%t|%s|%g",
		hash, today.Format("20060102"), o.TopN, o.MessageTopN, o.OmitEmptyBuckets,
		strings.ToUpper(strings.TrimSpace(o.RatingFloor)), o.MaxMinInvestment)
}

// SheetSummary describes how one sheet was read
type SheetSummary struct {
	Sheet    string                               `json:"sheet"`
	Headers  []string                             `json:"detected_headers"`
	Columns  map[dataprocessing.ColumnRole]string `json:"resolved_columns"`
	RowsRead int                                  `json:"rows_read"`
	Records  int                                  `json:"records"`
	Dropped  dataprocessing.DropStats             `json:"dropped"`
}

// Result is everything one run produces. A Result is never modified after
// Process returns it; cached results are shared between callers.
type Result struct {
	RunID         string                     `json:"run_id"`
	InputHash     string                     `json:"input_hash"`
	Today         string                     `json:"today"`
	Options       ProcessOptions             `json:"options"`
	Bank          SheetSummary               `json:"bank"`
	Public        *SheetSummary              `json:"public,omitempty"`
	Eligible      int                        `json:"eligible_records"`
	Preview       []presentation.PreviewRow  `json:"preview"`
	Buckets       []presentation.BucketTable `json:"buckets"`
	PublicListing []presentation.PreviewRow  `json:"public_listing,omitempty"`
	Messages      presentation.MessageSet    `json:"messages"`
	Warnings      []string                   `json:"warnings"`

	selected selection.Buckets
}

// Selected returns the ranked top-N grid behind Buckets
func (r *Result) Selected() selection.Buckets {
	return r.selected
}

// DestaquesService runs the workbook pipeline: read, normalize, filter,
// rank and render. Results are memoized by input hash and options.
type DestaquesService struct {
	cfg       *config.Config
	policy    presentation.RatePolicy
	templates presentation.Templates
	cache     *cache.Cache
	metrics   *infrastructure.PipelineMetrics
	now       func() time.Time
	logger    *slog.Logger
}

var validate = validator.New()

// NewDestaquesService creates the pipeline service. metrics may be nil.
func NewDestaquesService(cfg *config.Config, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *DestaquesService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DestaquesService{
		cfg: cfg,
		policy: presentation.RatePolicy{
			PostCDIFractionMax: cfg.Presentation.PostCDIFractionMax,
			OtherFractionMax:   cfg.Presentation.OtherFractionMax,
		},
		templates: presentation.DefaultTemplates(),
		cache:     cache.New(DefaultResultTTL, resultCleanupPeriod),
		metrics:   metrics,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "destaques_service")),
	}
}

// DefaultOptions returns the options configured for this deployment
func (s *DestaquesService) DefaultOptions() ProcessOptions {
	return ProcessOptions{
		TopN:             s.cfg.Selection.TopN,
		MessageTopN:      s.cfg.Presentation.MessageTopN,
		OmitEmptyBuckets: s.cfg.Presentation.OmitEmptyBuckets,
		RatingFloor:      s.cfg.Selection.RatingFloor,
		MaxMinInvestment: s.cfg.Selection.MaxMinInvestment,
	}
}

// RatePolicy returns the rate display policy in effect
func (s *DestaquesService) RatePolicy() presentation.RatePolicy {
	return s.policy
}

// CachedResults returns the number of memoized results
func (s *DestaquesService) CachedResults() int {
	return s.cache.ItemCount()
}

// Process runs the pipeline over an xlsx document. Identical bytes and
// options on the same day return the same *Result.
func (s *DestaquesService) Process(ctx context.Context, file []byte, opts ProcessOptions) (*Result, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid processing options", err)
	}

	today := opts.Today
	if today.IsZero() {
		today = s.cfg.Today(s.now())
	} else {
		y, m, d := today.Date()
		today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	sum := sha256.Sum256(file)
	hash := hex.EncodeToString(sum[:])
	key := opts.cacheKey(hash, today)

	start := time.Now()
	if cached, ok := s.cache.Get(key); ok {
		res := cached.(*Result)
		s.metrics.RecordRun(ctx, time.Since(start), true, nil)
		s.logger.DebugContext(ctx, "Serving memoized result",
			slog.String("run_id", res.RunID),
			slog.String("input_hash", hash))
		return res, nil
	}

	runID := uuid.NewString()
	ctx = infrastructure.WithRunID(ctx, runID)
	ctx, span := s.metrics.StartSpan(ctx, "process",
		attribute.String("run_id", runID),
		attribute.String("input_hash", hash),
		attribute.Int("input_bytes", len(file)))
	defer span.End()

	res, err := s.run(ctx, file, opts, today)
	s.metrics.RecordRun(ctx, time.Since(start), false, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Processing failed", slog.String("error", err.Error()))
		return nil, err
	}

	res.RunID = runID
	res.InputHash = hash
	s.cache.SetDefault(key, res)

	s.logger.InfoContext(ctx, "Processing completed",
		slog.Int("bank_records", res.Bank.Records),
		slog.Int("eligible_records", res.Eligible),
		slog.Int("bucket_rows", res.selected.Count()),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func (s *DestaquesService) run(ctx context.Context, file []byte, opts ProcessOptions, today time.Time) (*Result, error) {
	wb, err := dataprocessing.OpenWorkbook(bytes.NewReader(file), s.logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	normalizer := dataprocessing.NewNormalizer(today,
		classify.IndexerRules{MatchBareDI: s.cfg.Ingestion.MatchBareDI}, s.logger)

	res := &Result{
		Today:    today.Format("2006-01-02"),
		Options:  opts,
		Warnings: make([]string, 0),
	}

	bank, err := s.readBank(ctx, wb, normalizer)
	if err != nil {
		return nil, err
	}
	res.Bank = summarize(bank)

	public, warning, err := s.readPublic(ctx, wb, normalizer)
	if err != nil {
		return nil, err
	}
	var publicRecords []domain.NormalizedRecord
	if warning != "" {
		res.Warnings = append(res.Warnings, warning)
		s.logger.WarnContext(ctx, "Public sheet skipped", slog.String("reason", warning))
	}
	if public != nil {
		summary := summarize(public)
		res.Public = &summary
		publicRecords = public.Records
	}

	_, selectSpan := s.metrics.StartSpan(ctx, "select")
	ratingFilter, warnings := selection.RatingFloor(opts.RatingFloor, bank.Records)
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "Rating filter disabled", slog.String("reason", w))
	}
	res.Warnings = append(res.Warnings, warnings...)

	eligible := selection.Apply(bank.Records, ratingFilter, selection.MaxMinInvestment(opts.MaxMinInvestment))
	res.Eligible = len(eligible)
	res.selected = selection.AllBuckets(eligible, opts.TopN)
	selectSpan.End()

	_, renderSpan := s.metrics.StartSpan(ctx, "render")
	previewLimit := s.cfg.Presentation.PreviewLimit
	if previewLimit <= 0 {
		previewLimit = presentation.DefaultPreviewLimit
	}
	res.Preview = presentation.Preview(bank.Records, previewLimit, s.policy)
	res.Buckets = presentation.BucketTables(res.selected, s.policy)
	if publicRecords != nil {
		res.PublicListing = presentation.PublicListing(publicRecords, s.policy)
	}

	builder := &presentation.MessageBuilder{
		Policy:           s.policy,
		OmitEmptyBuckets: opts.OmitEmptyBuckets,
		TopN:             opts.MessageTopN,
		Date:             today,
		Templates:        s.templates,
	}
	res.Messages = builder.Messages(eligible, publicRecords)
	renderSpan.End()

	return res, nil
}

func (s *DestaquesService) readBank(ctx context.Context, wb *dataprocessing.Workbook, n *dataprocessing.Normalizer) (*dataprocessing.NormalizationResult, error) {
	spec := dataprocessing.SheetSpec{
		Name:          s.cfg.Ingestion.BankSheet,
		HeaderRow:     s.cfg.Ingestion.BankHeaderRow,
		BlankRowLimit: s.cfg.Ingestion.BlankRowLimit,
	}

	_, span := s.metrics.StartSpan(ctx, "read_sheet", attribute.String("sheet", spec.Name))
	table, err := wb.ReadSheet(spec)
	span.End()
	if err != nil {
		return nil, err
	}

	_, span = s.metrics.StartSpan(ctx, "normalize", attribute.String("sheet", spec.Name))
	defer span.End()
	out, err := n.NormalizeBank(table)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSheet(ctx, string(domain.AssetBankCredit), out.RowsRead, len(out.Records), dropCounts(out.Dropped))
	return out, nil
}

// readPublic reads the NTN-B sheet. When the sheet is optional, an
// ingestion failure becomes a warning and a nil result.
func (s *DestaquesService) readPublic(ctx context.Context, wb *dataprocessing.Workbook, n *dataprocessing.Normalizer) (*dataprocessing.NormalizationResult, string, error) {
	if s.cfg.Ingestion.PublicSheet == "" {
		return nil, "", nil
	}
	spec := dataprocessing.SheetSpec{
		Name:          s.cfg.Ingestion.PublicSheet,
		HeaderRow:     s.cfg.Ingestion.PublicHeaderRow,
		BlankRowLimit: s.cfg.Ingestion.BlankRowLimit,
	}

	_, span := s.metrics.StartSpan(ctx, "read_sheet", attribute.String("sheet", spec.Name))
	table, err := wb.ReadSheet(spec)
	span.End()

	var out *dataprocessing.NormalizationResult
	if err == nil {
		out, err = n.NormalizePublic(table)
	}
	if err != nil {
		if !s.cfg.Ingestion.PublicSheetRequired && errors.Is(err, apperrors.ErrIngestion) {
			return nil, fmt.Sprintf("public bonds skipped: %v", err), nil
		}
		return nil, "", err
	}

	s.metrics.RecordSheet(ctx, string(domain.AssetPublicBond), out.RowsRead, len(out.Records), dropCounts(out.Dropped))
	return out, "", nil
}

// Export writes the ranked grid of res as csv or xlsx
func (s *DestaquesService) Export(ctx context.Context, res *Result, format string, w io.Writer) error {
	e := exporter.NewBucketExporter(res.Selected(), s.policy, s.logger)

	var err error
	switch strings.ToLower(format) {
	case "csv":
		err = e.WriteCSV(w)
	case "xlsx":
		err = e.WriteXLSX(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownExportFormat, format)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to write "+format+" export", err)
	}
	s.metrics.RecordExport(ctx, strings.ToLower(format))
	return nil
}

// SaveExports writes the requested files into dir and returns their paths
func (s *DestaquesService) SaveExports(ctx context.Context, res *Result, dir string, asCSV, asXLSX bool) ([]string, error) {
	e := exporter.NewBucketExporter(res.Selected(), s.policy, s.logger)
	now := s.now().In(s.cfg.Location())

	paths := make([]string, 0, 2)
	if asCSV {
		p, err := e.SaveCSV(dir, now)
		if err != nil {
			return paths, apperrors.NewStorageError("failed to save csv export", err)
		}
		s.metrics.RecordExport(ctx, "csv")
		paths = append(paths, p)
	}
	if asXLSX {
		p, err := e.SaveXLSX(dir, now)
		if err != nil {
			return paths, apperrors.NewStorageError("failed to save xlsx export", err)
		}
		s.metrics.RecordExport(ctx, "xlsx")
		paths = append(paths, p)
	}
	return paths, nil
}

// ExportFileName names an export produced now
func (s *DestaquesService) ExportFileName(format string) string {
	return exporter.FileName(s.now().In(s.cfg.Location()), strings.ToLower(format))
}

func summarize(r *dataprocessing.NormalizationResult) SheetSummary {
	return SheetSummary{
		Sheet:    r.Sheet,
		Headers:  r.Headers,
		Columns:  r.Resolution.Headers,
		RowsRead: r.RowsRead,
		Records:  len(r.Records),
		Dropped:  r.Dropped,
	}
}

func dropCounts(d dataprocessing.DropStats) map[string]int {
	out := make(map[string]int, len(d))
	for reason, n := range d {
		out[string(reason)] = n
	}
	return out
}
