package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	_ "time/tzdata" // timezone lookups on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "rfdestaques/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. DESTAQUES_SERVER_PORT
const EnvPrefix = "DESTAQUES"

// ConfigPathEnv points Load at an explicit YAML file
const ConfigPathEnv = "DESTAQUES_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server" envconfig:"SERVER"`
	Security     SecurityConfig     `yaml:"security" envconfig:"SECURITY"`
	Logging      LoggingConfig      `yaml:"logging" envconfig:"LOGGING"`
	Paths        PathsConfig        `yaml:"paths" envconfig:"PATHS"`
	Ingestion    IngestionConfig    `yaml:"ingestion" envconfig:"INGESTION"`
	Selection    SelectionConfig    `yaml:"selection" envconfig:"SELECTION"`
	Presentation PresentationConfig `yaml:"presentation" envconfig:"PRESENTATION"`
	Messaging    MessagingConfig    `yaml:"messaging" envconfig:"MESSAGING"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" envconfig:"TELEMETRY"`
	Timezone     string             `yaml:"timezone" envconfig:"TIMEZONE" validate:"required"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains request limits and dispatch credentials
type SecurityConfig struct {
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	// APIKeys maps key -> client name. Empty leaves the send endpoint open.
	APIKeys     map[string]string `yaml:"api_keys" envconfig:"API_KEYS"`
	CORSOrigins []string          `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative paths
// are resolved against the working directory.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// IngestionConfig locates the sheets inside the daily workbook
type IngestionConfig struct {
	BankSheet           string `yaml:"bank_sheet" envconfig:"BANK_SHEET" validate:"required"`
	BankHeaderRow       int    `yaml:"bank_header_row" envconfig:"BANK_HEADER_ROW" validate:"min=1"`
	PublicSheet         string `yaml:"public_sheet" envconfig:"PUBLIC_SHEET"`
	PublicHeaderRow     int    `yaml:"public_header_row" envconfig:"PUBLIC_HEADER_ROW" validate:"min=1"`
	PublicSheetRequired bool   `yaml:"public_sheet_required" envconfig:"PUBLIC_SHEET_REQUIRED"`
	BlankRowLimit       int    `yaml:"blank_row_limit" envconfig:"BLANK_ROW_LIMIT" validate:"gte=0"`
	// MatchBareDI classifies a standalone "DI" token as post-fixed CDI
	MatchBareDI bool `yaml:"match_bare_di" envconfig:"MATCH_BARE_DI"`
}

// SelectionConfig controls the top-N grid
type SelectionConfig struct {
	TopN             int     `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=20"`
	RatingFloor      string  `yaml:"rating_floor" envconfig:"RATING_FLOOR"`
	MaxMinInvestment float64 `yaml:"max_min_investment" envconfig:"MAX_MIN_INVESTMENT" validate:"gte=0"`
}

// PresentationConfig controls message rendering
type PresentationConfig struct {
	MessageTopN        int     `yaml:"message_top_n" envconfig:"MESSAGE_TOP_N" validate:"min=1,max=20"`
	OmitEmptyBuckets   bool    `yaml:"omit_empty_buckets" envconfig:"OMIT_EMPTY_BUCKETS"`
	PostCDIFractionMax float64 `yaml:"post_cdi_fraction_max" envconfig:"POST_CDI_FRACTION_MAX" validate:"gte=0"`
	OtherFractionMax   float64 `yaml:"other_fraction_max" envconfig:"OTHER_FRACTION_MAX" validate:"gte=0"`
	PreviewLimit       int     `yaml:"preview_limit" envconfig:"PREVIEW_LIMIT" validate:"gte=0"`
}

// MessagingConfig holds the Z-API credentials and the fan-out policy.
// Groups maps a display name to a WhatsApp group id; from the environment
// it is written as name:id pairs separated by commas.
type MessagingConfig struct {
	BaseURL         string            `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	InstanceID      string            `yaml:"instance_id" envconfig:"INSTANCE_ID"`
	InstanceToken   string            `yaml:"instance_token" envconfig:"INSTANCE_TOKEN"`
	ClientToken     string            `yaml:"client_token" envconfig:"CLIENT_TOKEN"`
	Groups          map[string]string `yaml:"groups" envconfig:"GROUPS"`
	PauseBetween    time.Duration     `yaml:"pause_between" envconfig:"PAUSE_BETWEEN" validate:"gte=0"`
	DelayMessage    int               `yaml:"delay_message" envconfig:"DELAY_MESSAGE" validate:"min=0,max=15"`
	MentionsEnabled bool              `yaml:"mentions_enabled" envconfig:"MENTIONS_ENABLED"`
	MentionGroups   []string          `yaml:"mention_groups" envconfig:"MENTION_GROUPS"`
	MaxMentions     int               `yaml:"max_mentions" envconfig:"MAX_MENTIONS" validate:"gte=0"`
	Concurrency     int               `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1"`
	Timeout         time.Duration     `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	ParticipantsTTL time.Duration     `yaml:"participants_ttl" envconfig:"PARTICIPANTS_TTL" validate:"gt=0"`
}

// Configured reports whether credentials and at least one group are set
func (m MessagingConfig) Configured() bool {
	return m.InstanceID != "" && m.InstanceToken != "" && m.ClientToken != "" && len(m.Groups) > 0
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	StdoutTraces   bool   `yaml:"stdout_traces" envconfig:"STDOUT_TRACES"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the environment, in increasing precedence.
// path may be empty, in which case DESTAQUES_CONFIG and the usual
// locations are tried.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file "+path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load .env", err)
	}

	// No default tags: unset variables keep the YAML or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML document on cfg. Keys absent from the
// file keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, UTC if it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Today returns midnight of the current date in the configured timezone,
// expressed in UTC so day arithmetic ignores offsets
func (c *Config) Today(now time.Time) time.Time {
	y, m, d := now.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   20,
			},
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/destaques.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ExportsDir: DefaultExportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Ingestion: IngestionConfig{
			BankSheet:       "Crédito bancário",
			BankHeaderRow:   6,
			PublicSheet:     "Títulos Públicos",
			PublicHeaderRow: 5,
			BlankRowLimit:   20,
		},
		Selection: SelectionConfig{
			TopN: 5,
		},
		Presentation: PresentationConfig{
			MessageTopN:        5,
			OmitEmptyBuckets:   true,
			PostCDIFractionMax: 2,
			OtherFractionMax:   1.5,
			PreviewLimit:       80,
		},
		Messaging: MessagingConfig{
			BaseURL:         "https://api.z-api.io",
			PauseBetween:    2 * time.Second,
			MaxMentions:     50,
			Concurrency:     4,
			Timeout:         60 * time.Second,
			ParticipantsTTL: 10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			MetricsEnabled: true,
		},
		Timezone: "America/Sao_Paulo",
	}
}
