package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig controls ingestion policy and metric parameters
type PipelineConfig struct {
	MaxFileSize  int64         `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" validate:"gt=0"`
	MinFileSize  int64         `yaml:"min_file_size" envconfig:"MIN_FILE_SIZE" validate:"gte=0,ltefield=MaxFileSize"`
	OnParseError string        `yaml:"on_parse_error" envconfig:"ON_PARSE_ERROR" validate:"oneof=skip abort"`
	Workers      int           `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	TopN         int           `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=100"`
	Measure      string        `yaml:"measure" envconfig:"MEASURE" validate:"oneof=documents kilocharacters"`
	Insights     InsightConfig `yaml:"insights" envconfig:"INSIGHTS"`
}

// InsightConfig holds the thresholds of the insight rule battery
type InsightConfig struct {
	DeclineThreshold       float64 `yaml:"decline_threshold" envconfig:"DECLINE_THRESHOLD" validate:"gt=0,lte=1"`
	GrowthThreshold        float64 `yaml:"growth_threshold" envconfig:"GROWTH_THRESHOLD" validate:"gt=0"`
	LeaderShareThreshold   float64 `yaml:"leader_share_threshold" envconfig:"LEADER_SHARE_THRESHOLD" validate:"gt=0,lte=1"`
	TopShareThreshold      float64 `yaml:"top_share_threshold" envconfig:"TOP_SHARE_THRESHOLD" validate:"gt=0,lte=1"`
	EfficiencyOutlierRatio float64 `yaml:"efficiency_outlier_ratio" envconfig:"EFFICIENCY_OUTLIER_RATIO" validate:"gt=1"`
}

// ExportConfig controls where and how the CLI writes reports
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json csv xlsx all"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load loads configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence. An empty path falls back to
// EDIPULSE_CONFIG and then to the usual file locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every struct tag constraint
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"edipulse.yaml",
		"configs/edipulse.yaml",
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
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			AllowedOrigins:  []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Pipeline: PipelineConfig{
			MaxFileSize:  DefaultMaxFileSize,
			MinFileSize:  DefaultMinFileSize,
			OnParseError: ParsePolicySkip,
			Workers:      DefaultWorkers,
			TopN:         DefaultTopN,
			Measure:      "documents",
			Insights: InsightConfig{
				DeclineThreshold:       0.20,
				GrowthThreshold:        0.20,
				LeaderShareThreshold:   0.50,
				TopShareThreshold:      0.80,
				EfficiencyOutlierRatio: 2.0,
			},
		},
		Export: ExportConfig{
			OutputDir: DefaultOutputDir,
			Format:    "all",
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			EnableTracing: false,
			EnableMetrics: true,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}
