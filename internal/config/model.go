// internal/config/model.go
//
// Typed configuration model for the TalentFlux API.
//
// Context
// -------
// Config is the flat, immutable record that `Load()` builds from five
// overlay layers (defaults, optional YAML, dotenv, environment, and
// caller overrides).  Every field maps to one upper-case environment
// variable whose lower-case form is the koanf key, e.g. `SECRET_KEY →
// secret_key`.
//
// Any value whose string begins with `vault:` is resolved through the
// Vault client *before* unmarshalling, so the model never stores Vault
// URIs, only plain strings.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`.  The validator reports field names
//     using the upper-cased koanf tag so errors match the env var.
//   - List fields accept a YAML list or a comma-separated string.
//   - AI, storage, email, rate-limit, and feature-flag settings are
//     carried for collaborators outside this layer; nothing here
//     branches on them.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the immutable aggregate returned by Load().  Construct it once
// at process start and pass it explicitly to every component.
type Config struct {
	// Application metadata
	AppName     string `koanf:"app_name"    validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Description string `koanf:"description"`

	// Environment
	Environment string `koanf:"environment" validate:"required"`
	Debug       bool   `koanf:"debug"`

	// Server
	Host            string        `koanf:"host"             validate:"required"`
	Port            int           `koanf:"port"             validate:"min=1,max=65535"`
	Workers         int           `koanf:"workers"          validate:"min=1"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// Security
	SecretKey                string `koanf:"secret_key"                  validate:"required"`
	Algorithm                string `koanf:"algorithm"                   validate:"required"`
	AccessTokenExpireMinutes int    `koanf:"access_token_expire_minutes" validate:"min=1"`
	RefreshTokenExpireDays   int    `koanf:"refresh_token_expire_days"   validate:"min=1"`

	// CORS and trusted hosts
	AllowedOrigins []string `koanf:"allowed_origins" validate:"dive,required"`
	AllowedHosts   []string `koanf:"allowed_hosts"   validate:"min=1,dive,required"`

	// Database
	DatabaseURL         string `koanf:"database_url"          validate:"required"`
	DatabasePoolSize    int    `koanf:"database_pool_size"    validate:"min=1"`
	DatabaseMaxOverflow int    `koanf:"database_max_overflow" validate:"min=0"`
	DatabasePoolTimeout int    `koanf:"database_pool_timeout" validate:"min=1"`

	// Redis
	RedisURL      string `koanf:"redis_url"       validate:"omitempty,url"`
	RedisPoolSize int    `koanf:"redis_pool_size" validate:"min=1"`
	RedisRequired bool   `koanf:"redis_required"`

	// AI models
	OpenAIAPIKey    string  `koanf:"openai_api_key"`
	AnthropicAPIKey string  `koanf:"anthropic_api_key"`
	OpenAIModel     string  `koanf:"openai_model"`
	ClaudeModel     string  `koanf:"claude_model"`
	EmbeddingModel  string  `koanf:"embedding_model"`
	AIEnabled       bool    `koanf:"ai_enabled"`
	RAGEnabled      bool    `koanf:"rag_enabled"`
	MaxTokens       int     `koanf:"max_tokens"  validate:"min=1"`
	Temperature     float64 `koanf:"temperature" validate:"min=0,max=2"`

	// File storage
	StorageBucket      string `koanf:"storage_bucket"`
	StorageRegion      string `koanf:"storage_region"`
	AWSAccessKeyID     string `koanf:"aws_access_key_id"`
	AWSSecretAccessKey string `koanf:"aws_secret_access_key"`

	// Email
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port" validate:"min=1,max=65535"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	SMTPTLS      bool   `koanf:"smtp_tls"`
	FromEmail    string `koanf:"from_email" validate:"omitempty,email"`

	// Monitoring and logging
	LogLevel               string `koanf:"log_level"  validate:"required"`
	LogFormat              string `koanf:"log_format" validate:"oneof=json console"`
	LogDir                 string `koanf:"log_dir"`
	EnableTracing          bool   `koanf:"enable_tracing"`
	OTLPEndpoint           string `koanf:"otel_exporter_otlp_endpoint"`
	OTLPInsecure           bool   `koanf:"otel_exporter_otlp_insecure"`
	MetricsEnabled         bool   `koanf:"metrics_enabled"`
	RateLimitPerMinute     int    `koanf:"rate_limit_per_minute"      validate:"min=1"`
	RateLimitAuthPerMinute int    `koanf:"rate_limit_auth_per_minute" validate:"min=1"`

	// Pagination
	DefaultPageSize int `koanf:"default_page_size" validate:"min=1,ltefield=MaxPageSize"`
	MaxPageSize     int `koanf:"max_page_size"     validate:"min=1"`

	// Uploads
	MaxFileSize      int64    `koanf:"max_file_size"      validate:"min=1"`
	AllowedFileTypes []string `koanf:"allowed_file_types" validate:"dive,required"`

	// GDPR and compliance
	DataRetentionDays int `koanf:"data_retention_days" validate:"min=1"`
	ConsentExpiryDays int `koanf:"consent_expiry_days" validate:"min=1"`

	// Feature flags
	FeatureAIMatching   bool `koanf:"feature_ai_matching"`
	FeatureAIScreening  bool `koanf:"feature_ai_screening"`
	FeatureMaskedReview bool `koanf:"feature_masked_review"`
	FeatureDEIAnalytics bool `koanf:"feature_dei_analytics"`
}

//
// Derived predicates
//

// IsDevelopment reports whether ENVIRONMENT is "development" or "dev".
func (c *Config) IsDevelopment() bool { return envIn(c.Environment, "development", "dev") }

// IsProduction reports whether ENVIRONMENT is "production" or "prod".
func (c *Config) IsProduction() bool { return envIn(c.Environment, "production", "prod") }

// IsTesting reports whether ENVIRONMENT is "testing" or "test".
func (c *Config) IsTesting() bool { return envIn(c.Environment, "testing", "test") }

// DocsEnabled reports whether /docs, /redoc, and /openapi.json are served.
func (c *Config) DocsEnabled() bool { return !c.IsProduction() }

// CurrentTimestamp returns the current UTC instant in RFC 3339 format.
func (c *Config) CurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Addr joins HOST and PORT for http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func envIn(env string, names ...string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	for _, n := range names {
		if env == n {
			return true
		}
	}
	return false
}
