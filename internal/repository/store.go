// Package repository holds the ReportStore implementations. Every store
// assigns increasing integer IDs, never reuses them and hands out copies.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/database"
	"github.com/adverse-event-server/internal/domain"
)

var errNilFields = errors.New("report fields are required")

// NewReportStore opens the store selected by config.Driver
func NewReportStore(ctx context.Context, config domain.StorageConfig, logger *logrus.Logger) (domain.ReportStore, error) {
	switch config.Driver {
	case domain.StorageMemory:
		logger.Warn("Using in-memory report store; reports are lost on restart")
		return NewMemoryStore(), nil

	case domain.StorageSQLite, "":
		store, err := NewSQLiteStore(config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.WithField("path", config.SQLitePath).Info("SQLite report store opened")
		return store, nil

	case domain.StoragePostgres:
		if config.RunMigrations {
			if err := database.Migrate(database.MigrationURL(config.Postgres), logger); err != nil {
				return nil, fmt.Errorf("migrating postgres: %w", err)
			}
		}
		db, err := database.NewConnection(ctx, config.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", config.Driver)
	}
}

// newReport copies the caller's fields into a fresh report without ID or
// timestamp. Empty and case-insensitively duplicated events are dropped and
// an out-of-set severity is rejected.
func newReport(fields *domain.ReportFields) (*domain.Report, error) {
	if fields == nil {
		return nil, errNilFields
	}
	if fields.Severity != nil && !fields.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSeverity, string(*fields.Severity))
	}

	events := make([]string, 0, len(fields.AdverseEvents))
	seen := make(map[string]bool, len(fields.AdverseEvents))
	for _, e := range fields.AdverseEvents {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		events = append(events, e)
	}

	r := (&domain.Report{
		Drug:     fields.Drug,
		Severity: fields.Severity,
		Outcome:  fields.Outcome,
		RawText:  fields.RawText,
	}).Clone()
	r.AdverseEvents = events
	return r, nil
}
