package domain

import (
	"context"
)

// ReportStore is the append-only, ID-indexed collection of reports.
// Implementations assign IDs sequentially starting at 1, never reuse them,
// and return copies rather than references to their own state.
type ReportStore interface {
	// Create persists fields under the next ID and returns the stored record.
	// A record is returned only once it has been durably stored.
	Create(ctx context.Context, fields *ReportFields) (*Report, error)

	// List returns every stored record in ascending ID order.
	List(ctx context.Context) ([]*Report, error)

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Translator renders a piece of text into another language
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Name() string
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetStorageConfig() *StorageConfig
	GetTranslationConfig() *TranslationConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
