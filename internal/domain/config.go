package domain

import (
	"time"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Translation providers
const (
	ProviderGlossary = "glossary"
	ProviderHTTP     = "http"
	ProviderLLM      = "llm"
)

// Config represents the main application configuration
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Extraction  ExtractionConfig  `mapstructure:"extraction"`
	Translation TranslationConfig `mapstructure:"translation"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	MCP         MCPConfig         `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// StorageConfig selects and configures the report store
type StorageConfig struct {
	Driver        string         `mapstructure:"driver"` // memory, sqlite, postgres
	SQLitePath    string         `mapstructure:"sqlite_path"`
	Postgres      PostgresConfig `mapstructure:"postgres"`
	RunMigrations bool           `mapstructure:"run_migrations"`
}

// PostgresConfig represents database connection configuration
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ExtractionConfig tunes the classifier heuristics
type ExtractionConfig struct {
	// EventThreshold is the adverse-event count above which a report is at least moderate.
	EventThreshold int `mapstructure:"event_threshold"`
}

// TranslationConfig configures the translation backend
type TranslationConfig struct {
	Provider       string                `mapstructure:"provider"` // glossary, http, llm
	SourceLanguage string                `mapstructure:"source_language"`
	Languages      []string              `mapstructure:"languages"`
	HTTP           HTTPTranslationConfig `mapstructure:"http"`
	LLM            LLMTranslationConfig  `mapstructure:"llm"`
	Cache          TranslationCache      `mapstructure:"cache"`
}

// HTTPTranslationConfig configures a LibreTranslate-compatible endpoint
type HTTPTranslationConfig struct {
	BaseURL   string               `mapstructure:"base_url"`
	APIKey    string               `mapstructure:"api_key"`
	Timeout   time.Duration        `mapstructure:"timeout"`
	RateLimit int                  `mapstructure:"rate_limit"` // requests per second
	Breaker   CircuitBreakerConfig `mapstructure:"breaker"`
}

// CircuitBreakerConfig mirrors the gobreaker settings we expose
type CircuitBreakerConfig struct {
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LLMTranslationConfig configures an OpenAI-compatible chat model
type LLMTranslationConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// TranslationCache configures memoization of translated strings
type TranslationCache struct {
	Enabled  bool          `mapstructure:"enabled"`
	MaxItems int           `mapstructure:"max_items"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"` // optional second tier
}

// RateLimitConfig bounds request throughput at the HTTP boundary
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"` // stdout, stderr, file
	Filename string `mapstructure:"filename"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
