// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.sqlmind/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: provider, generation model, embedder model
//   - Storage: PostgreSQL connection (see storage.go)
//   - Cache: semantic cache similarity threshold
//   - Generation: few-shot example limit, per-call timeouts
//   - Tracing: OTLP trace export (see tracing.go)
//
// Security: sensitive data (passwords) are never logged.
// Validation: range checks in validation.go with clear error messages.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidThreshold indicates the cache similarity threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid cache threshold")

	// ErrInvalidExampleLimit indicates the few-shot example limit is out of range.
	ErrInvalidExampleLimit = errors.New("invalid example limit")

	// ErrInvalidTimeout indicates a per-call timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresPassword indicates the PostgreSQL password is invalid.
	ErrInvalidPostgresPassword = errors.New("invalid PostgreSQL password")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const (
	// DefaultGeminiEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 supports truncation to 768 dimensions via
	// OutputDimensionality; the pgvector schema uses 768 dimensions.
	DefaultGeminiEmbedderModel = "gemini-embedding-001"

	// DefaultCacheThreshold is the minimum cosine similarity for a cache hit.
	DefaultCacheThreshold = 0.85

	// DefaultExampleLimit is the default number of few-shot examples
	// included in a generation prompt.
	DefaultExampleLimit = 3
)

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider      string  `mapstructure:"provider" json:"provider"`       // "gemini" (default) or "openai"
	ModelName     string  `mapstructure:"model_name" json:"model_name"`   // e.g. "gemini-2.5-flash", "gpt-4o"
	Temperature   float32 `mapstructure:"temperature" json:"temperature"` // 0 = deterministic SQL output
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`

	// Semantic cache configuration
	CacheThreshold float32 `mapstructure:"cache_threshold" json:"cache_threshold"`

	// Generation configuration
	ExampleLimit int `mapstructure:"example_limit" json:"example_limit"`

	// Per-call timeouts for blocking external calls, in seconds.
	EmbedTimeoutSec    int `mapstructure:"embed_timeout_sec" json:"embed_timeout_sec"`
	GenerateTimeoutSec int `mapstructure:"generate_timeout_sec" json:"generate_timeout_sec"`
	ExecuteTimeoutSec  int `mapstructure:"execute_timeout_sec" json:"execute_timeout_sec"`

	// Storage configuration (see storage.go for documentation)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"-"` // SENSITIVE: never serialized
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Tracing configuration (see tracing.go for type definition)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// EmbedTimeout returns the embedding call timeout as a duration.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutSec) * time.Second
}

// GenerateTimeout returns the LLM generation call timeout as a duration.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}

// ExecuteTimeout returns the SQL execution timeout as a duration.
func (c *Config) ExecuteTimeout() time.Duration {
	return time.Duration(c.ExecuteTimeoutSec) * time.Second
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	// Configuration directory: ~/.sqlmind/
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".sqlmind")

	// Ensure directory exists (0750 for better security)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	// Read configuration file (if exists)
	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Parse DATABASE_URL if set (highest priority for PostgreSQL config)
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	// Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("temperature", 0.0)
	viper.SetDefault("embedder_model", DefaultGeminiEmbedderModel)

	// Cache defaults
	viper.SetDefault("cache_threshold", DefaultCacheThreshold)

	// Generation defaults
	viper.SetDefault("example_limit", DefaultExampleLimit)
	viper.SetDefault("embed_timeout_sec", 10)
	viper.SetDefault("generate_timeout_sec", 60)
	viper.SetDefault("execute_timeout_sec", 30)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "sqlmind")
	viper.SetDefault("postgres_password", "sqlmind_dev_password")
	viper.SetDefault("postgres_db_name", "sqlmind")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Tracing defaults
	viper.SetDefault("tracing.endpoint", "localhost:4318")
	viper.SetDefault("tracing.environment", "dev")
	viper.SetDefault("tracing.service_name", "sqlmind")
}

// bindEnvVariables binds environment variable overrides explicitly.
//
// NOTE: GEMINI_API_KEY and OPENAI_API_KEY are read directly by the Genkit
// plugins, not via Viper. Validation checks their presence based on the
// selected provider in cfg.Validate().
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "SQLMIND_PROVIDER")
	mustBind("model_name", "SQLMIND_MODEL_NAME")
	mustBind("embedder_model", "SQLMIND_EMBEDDER_MODEL")
	mustBind("cache_threshold", "SQLMIND_CACHE_THRESHOLD")
	mustBind("tracing.endpoint", "SQLMIND_OTLP_ENDPOINT")
}
