package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// HealthService reports liveness and readiness of the API
type HealthService struct {
	version   string
	dataDir   string
	destaques *DestaquesService
	dispatch  *DispatchService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. dispatch may be nil when
// messaging is not configured.
func NewHealthService(version, dataDir string, destaques *DestaquesService, dispatch *DispatchService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		dataDir:   dataDir,
		destaques: destaques,
		dispatch:  dispatch,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns readiness of every component plus runtime figures.
// Messaging being unconfigured is reported but does not make the
// service unready.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{
			"pipeline":  hs.checkPipeline(),
			"messaging": hs.checkMessaging(),
			"data":      hs.checkData(),
		},
	}

	for name, s := range status.Services {
		if s.Status == "not_ready" && name != "messaging" {
			status.Status = "degraded"
		}
	}

	hs.logger.DebugContext(ctx, "Health check completed", slog.String("status", status.Status))
	return status
}

func (hs *HealthService) checkPipeline() ServiceHealth {
	if hs.destaques == nil {
		return ServiceHealth{Status: "not_ready", Message: "pipeline not initialized"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d cached results", hs.destaques.CachedResults()),
	}
}

func (hs *HealthService) checkMessaging() ServiceHealth {
	if hs.dispatch == nil {
		return ServiceHealth{Status: "not_ready", Message: "messaging provider is not configured"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d destination groups", len(hs.dispatch.Destinations())),
	}
}

func (hs *HealthService) checkData() ServiceHealth {
	if hs.dataDir == "" {
		return ServiceHealth{Status: "ready", Message: "no data directory configured"}
	}
	info, err := os.Stat(hs.dataDir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("data directory not found: %s", hs.dataDir)}
	}
	return ServiceHealth{Status: "ready"}
}
