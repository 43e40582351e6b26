package config

// Application constants
const (
	AppName    = "rf-destaques"
	AppVersion = "1.0.0"

	// Default directories, relative to the working directory
	DefaultDataDir    = "data"
	DefaultExportsDir = "data/exports"
	DefaultLogsDir    = "logs"

	// DefaultMaxUploadBytes caps the workbook accepted over HTTP
	DefaultMaxUploadBytes = 20 << 20 // 20MB

	// API Endpoints
	APIBasePath       = "/api/v1"
	DestaquesEndpoint = "/api/v1/destaques"
	HealthEndpoint    = "/healthz"
	MetricsEndpoint   = "/metrics"
)
