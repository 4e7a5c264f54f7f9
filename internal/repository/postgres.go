package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/database"
	"github.com/adverse-event-server/internal/domain"
)

// PostgresStore implements domain.ReportStore on PostgreSQL. IDs come from a
// BIGSERIAL sequence, which never hands out the same value twice.
type PostgresStore struct {
	db  *database.DB
	log *logrus.Logger
}

// NewPostgresStore creates a store on an open pool. The schema is expected to
// exist (see database.Migrate).
func NewPostgresStore(db *database.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: logger,
	}
}

// Create inserts a report and returns it with its assigned ID and timestamp
func (s *PostgresStore) Create(ctx context.Context, fields *domain.ReportFields) (*domain.Report, error) {
	report, err := newReport(fields)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO reports (drug, adverse_events, severity, outcome, raw_text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	var severity *string
	if report.Severity != nil {
		v := report.Severity.String()
		severity = &v
	}

	err = s.db.Pool.QueryRow(ctx, query,
		report.Drug,
		report.AdverseEvents,
		severity,
		report.Outcome,
		report.RawText,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"event_count": len(report.AdverseEvents),
			"error":       err,
		}).Error("Failed to create report")
		return nil, fmt.Errorf("creating report: %w", err)
	}

	report.CreatedAt = report.CreatedAt.UTC()
	return report, nil
}

// List returns all reports in ascending ID order
func (s *PostgresStore) List(ctx context.Context) ([]*domain.Report, error) {
	query := `
		SELECT id, drug, adverse_events, severity, outcome, raw_text, created_at
		FROM reports
		ORDER BY id ASC`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Report, error) {
		r := &domain.Report{}
		var severity *string
		if err := row.Scan(&r.ID, &r.Drug, &r.AdverseEvents, &severity, &r.Outcome, &r.RawText, &r.CreatedAt); err != nil {
			return nil, err
		}
		if severity != nil {
			sev, err := domain.ParseSeverity(*severity)
			if err != nil {
				return nil, fmt.Errorf("report %d: %w", r.ID, err)
			}
			r.Severity = &sev
		}
		if r.AdverseEvents == nil {
			r.AdverseEvents = []string{}
		}
		r.CreatedAt = r.CreatedAt.UTC()
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning reports: %w", err)
	}
	return reports, nil
}

// Ping checks the pool
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Health(ctx)
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
