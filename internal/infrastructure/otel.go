package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"rfdestaques/internal/config"
)

const (
	ServiceName    = config.AppName
	ServiceVersion = config.AppVersion
	MeterName      = "rfdestaques"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	// TraceWriter receives stdout spans; nil means os.Stdout
	TraceWriter io.Writer
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    "development",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	out := DefaultOTelConfig()
	if cfg.ServiceName != "" {
		out.ServiceName = cfg.ServiceName
	}
	if cfg.Environment != "" {
		out.Environment = cfg.Environment
	}
	if cfg.StdoutTraces {
		out.TraceExporter = "stdout"
	}
	out.EnableMetrics = cfg.MetricsEnabled
	return out
}

// InitializeOTel initializes tracing and metrics. The tracer provider is
// always created so spans have valid ids for log correlation, even when
// no exporter is configured.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := createResource(cfg)
	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	}

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case "none", "":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	tp := sdktrace.NewTracerProvider(opts...)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// A registry per provider keeps repeated initialization (tests,
		// restarts) from colliding on the global registerer
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}
	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace id for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// PipelineMetrics holds the counters of the ingestion and delivery pipeline.
// It satisfies messaging.Observer. A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	tracer trace.Tracer

	rowsRead         metric.Int64Counter
	rowsDropped      metric.Int64Counter
	records          metric.Int64Counter
	runDuration      metric.Float64Histogram
	cacheHits        metric.Int64Counter
	messagesSent     metric.Int64Counter
	messagesFailed   metric.Int64Counter
	exportsGenerated metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter. tracer
// may be nil, in which case the global tracer is used.
func NewPipelineMetrics(meter metric.Meter, tracer trace.Tracer) (*PipelineMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	if tracer == nil {
		tracer = otel.Tracer(MeterName)
	}

	m := &PipelineMetrics{tracer: tracer}
	var err error

	if m.rowsRead, err = meter.Int64Counter("destaques_rows_read_total",
		metric.WithDescription("Worksheet rows read, by sheet kind")); err != nil {
		return nil, err
	}
	if m.rowsDropped, err = meter.Int64Counter("destaques_rows_dropped_total",
		metric.WithDescription("Rows that did not become records, by reason")); err != nil {
		return nil, err
	}
	if m.records, err = meter.Int64Counter("destaques_records_total",
		metric.WithDescription("Normalized records produced, by sheet kind")); err != nil {
		return nil, err
	}
	if m.runDuration, err = meter.Float64Histogram("destaques_pipeline_duration_seconds",
		metric.WithDescription("Duration of one workbook processing run"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.cacheHits, err = meter.Int64Counter("destaques_result_cache_hits_total",
		metric.WithDescription("Processing runs answered from the result cache")); err != nil {
		return nil, err
	}
	if m.messagesSent, err = meter.Int64Counter("destaques_messages_sent_total",
		metric.WithDescription("WhatsApp messages accepted by the gateway, by group")); err != nil {
		return nil, err
	}
	if m.messagesFailed, err = meter.Int64Counter("destaques_messages_failed_total",
		metric.WithDescription("WhatsApp messages rejected or not sent, by group")); err != nil {
		return nil, err
	}
	if m.exportsGenerated, err = meter.Int64Counter("destaques_exports_total",
		metric.WithDescription("Bucket exports generated, by format")); err != nil {
		return nil, err
	}
	return m, nil
}

// StartSpan opens a pipeline span
func (m *PipelineMetrics) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(MeterName)
	if m != nil && m.tracer != nil {
		tracer = m.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordSheet records the outcome of normalizing one sheet
func (m *PipelineMetrics) RecordSheet(ctx context.Context, kind string, rowsRead, records int, dropped map[string]int) {
	if m == nil {
		return
	}
	kindAttr := metric.WithAttributes(attribute.String("kind", kind))
	m.rowsRead.Add(ctx, int64(rowsRead), kindAttr)
	m.records.Add(ctx, int64(records), kindAttr)
	for reason, n := range dropped {
		m.rowsDropped.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("reason", reason)))
	}
}

// RecordRun records the duration of a processing run
func (m *PipelineMetrics) RecordRun(ctx context.Context, d time.Duration, cached bool, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	if cached {
		m.cacheHits.Add(ctx, 1)
	}
	m.runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("status", status),
		attribute.Bool("cached", cached)))
}

// RecordExport counts a generated export file
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.exportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// MessageSent implements messaging.Observer
func (m *PipelineMetrics) MessageSent(ctx context.Context, group string) {
	if m == nil {
		return
	}
	m.messagesSent.Add(ctx, 1, metric.WithAttributes(attribute.String("group", group)))
}

// MessageFailed implements messaging.Observer
func (m *PipelineMetrics) MessageFailed(ctx context.Context, group string) {
	if m == nil {
		return
	}
	m.messagesFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("group", group)))
}
