package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/translation"
)

// DefaultConfigPaths are searched, in order, for config.yaml
var DefaultConfigPaths = []string{".", "./config", "/etc/adverse-event-server/"}

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	paths  []string
	config *domain.Config
}

// NewManager creates a new configuration manager. When no paths are given the
// DefaultConfigPaths are used.
func NewManager(paths ...string) (*Manager, error) {
	if len(paths) == 0 {
		paths = DefaultConfigPaths
	}
	m := &Manager{paths: paths}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range m.paths {
		v.AddConfigPath(p)
	}

	// AE_REPORT_STORAGE_DRIVER overrides storage.driver, and so on
	v.SetEnvPrefix("AE_REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// for AutomaticEnv to pick up its environment override during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	// Storage defaults
	v.SetDefault("storage.driver", domain.StorageSQLite)
	v.SetDefault("storage.sqlite_path", "./data/reports.db")
	v.SetDefault("storage.run_migrations", true)
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.database", "adverse_events")
	v.SetDefault("storage.postgres.username", "postgres")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.ssl_mode", "disable")
	v.SetDefault("storage.postgres.max_conns", 10)
	v.SetDefault("storage.postgres.min_conns", 1)
	v.SetDefault("storage.postgres.conn_max_lifetime", "1h")
	v.SetDefault("storage.postgres.conn_max_idle_time", "30m")

	// Extraction defaults
	v.SetDefault("extraction.event_threshold", 2)

	// Translation defaults
	v.SetDefault("translation.provider", domain.ProviderGlossary)
	v.SetDefault("translation.source_language", "en")
	v.SetDefault("translation.languages", []string{"fr", "sw"})
	v.SetDefault("translation.http.base_url", "")
	v.SetDefault("translation.http.api_key", "")
	v.SetDefault("translation.http.timeout", "30s")
	v.SetDefault("translation.http.rate_limit", 5)
	v.SetDefault("translation.http.breaker.max_requests", 3)
	v.SetDefault("translation.http.breaker.interval", "30s")
	v.SetDefault("translation.http.breaker.timeout", "60s")
	v.SetDefault("translation.llm.base_url", "")
	v.SetDefault("translation.llm.api_key", "")
	v.SetDefault("translation.llm.model", "")
	v.SetDefault("translation.cache.enabled", true)
	v.SetDefault("translation.cache.max_items", 1000)
	v.SetDefault("translation.cache.ttl", "24h")
	v.SetDefault("translation.cache.redis_url", "")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.filename", "")

	// MCP defaults
	v.SetDefault("mcp.server_name", "adverse-event-mcp-server")
	v.SetDefault("mcp.server_version", "v0.1.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetTranslationConfig returns translation configuration
func (m *Manager) GetTranslationConfig() *domain.TranslationConfig {
	return &m.config.Translation
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Storage.Driver {
	case domain.StorageMemory:
	case domain.StorageSQLite:
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite driver")
		}
	case domain.StoragePostgres:
		if config.Storage.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Storage.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", config.Storage.Driver)
	}

	if config.Extraction.EventThreshold < 0 {
		return fmt.Errorf("event threshold must not be negative: %d", config.Extraction.EventThreshold)
	}

	tc := config.Translation
	if len(tc.Languages) == 0 {
		return fmt.Errorf("at least one translation language is required")
	}
	switch tc.Provider {
	case domain.ProviderGlossary:
		available := translation.NewGlossaryTranslator().Languages()
		for _, lang := range tc.Languages {
			if !containsFold(available, lang) {
				return fmt.Errorf("no glossary for translation language %q (available: %s)", lang, strings.Join(available, ", "))
			}
		}
	case domain.ProviderHTTP:
		if tc.HTTP.BaseURL == "" {
			return fmt.Errorf("translation http base URL is required")
		}
	case domain.ProviderLLM:
		if tc.LLM.Model == "" {
			return fmt.Errorf("translation llm model is required")
		}
	default:
		return fmt.Errorf("unknown translation provider: %q", tc.Provider)
	}
	if tc.Cache.Enabled && tc.Cache.MaxItems <= 0 {
		return fmt.Errorf("translation cache max items must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
