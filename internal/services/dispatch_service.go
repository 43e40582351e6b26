package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rfdestaques/internal/config"
	"rfdestaques/internal/infrastructure"
	"rfdestaques/internal/messaging"
	"rfdestaques/internal/presentation"
)

// DispatchService sends a run's messages to every configured group
type DispatchService struct {
	dispatcher   *messaging.Dispatcher
	destinations []messaging.Destination
	metrics      *infrastructure.PipelineMetrics
	logger       *slog.Logger
}

// DispatchSummary aggregates the outcome of one send
type DispatchSummary struct {
	Groups []messaging.GroupResult `json:"groups"`
	Sent   int                     `json:"sent"`
	Failed int                     `json:"failed"`
}

// NewDispatchService wires a dispatcher over sender. participants may be
// nil, which disables mentions.
func NewDispatchService(cfg config.MessagingConfig, sender messaging.Sender, participants messaging.ParticipantSource, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *DispatchService {
	if logger == nil {
		logger = slog.Default()
	}

	var observer messaging.Observer
	if metrics != nil {
		observer = metrics
	}

	d := messaging.NewDispatcher(sender, participants, observer, messaging.DispatcherConfig{
		PauseBetween:    cfg.PauseBetween,
		DelayMessage:    cfg.DelayMessage,
		MentionsEnabled: cfg.MentionsEnabled,
		MentionGroups:   cfg.MentionGroups,
		MaxMentions:     cfg.MaxMentions,
		Concurrency:     cfg.Concurrency,
	}, logger)

	return &DispatchService{
		dispatcher:   d,
		destinations: messaging.DestinationsFromMap(cfg.Groups),
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "dispatch_service")),
	}
}

// NewZAPIDispatchService builds the production dispatch path: a Z-API
// client with a participant cache in front of it. It returns
// ErrMessagingNotConfigured when credentials or groups are missing.
func NewZAPIDispatchService(cfg config.MessagingConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) (*DispatchService, error) {
	if !cfg.Configured() {
		return nil, ErrMessagingNotConfigured
	}

	client, err := messaging.NewZAPIClient(messaging.ZAPIConfig{
		BaseURL:       cfg.BaseURL,
		InstanceID:    cfg.InstanceID,
		InstanceToken: cfg.InstanceToken,
		ClientToken:   cfg.ClientToken,
		Timeout:       cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	var participants messaging.ParticipantSource
	if cfg.MentionsEnabled {
		participants = messaging.NewParticipantCache(client, cfg.ParticipantsTTL)
	}
	return NewDispatchService(cfg, client, participants, metrics, logger), nil
}

// Destinations lists the configured groups in send order
func (s *DispatchService) Destinations() []messaging.Destination {
	if s == nil {
		return nil
	}
	return s.destinations
}

// Send delivers the bank messages (Pós, Pré, IPCA) and the NTN-B message to
// every group. Per-group failures are reported in the summary, not as an
// error.
func (s *DispatchService) Send(ctx context.Context, set presentation.MessageSet) (*DispatchSummary, error) {
	if s == nil || len(s.destinations) == 0 {
		return nil, ErrMessagingNotConfigured
	}

	messages := set.Outbound()
	ctx, span := s.metrics.StartSpan(ctx, "dispatch",
		attribute.Int("destinations", len(s.destinations)),
		attribute.Int("messages", len(messages)))
	defer span.End()

	start := time.Now()
	results := s.dispatcher.Dispatch(ctx, s.destinations, messages)

	summary := &DispatchSummary{Groups: results}
	for _, g := range results {
		failed := g.Failed()
		summary.Failed += failed
		summary.Sent += len(g.Results) - failed
	}

	s.logger.InfoContext(ctx, "Dispatch completed",
		slog.Int("groups", len(results)),
		slog.Int("sent", summary.Sent),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", time.Since(start)))
	return summary, nil
}
