package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adverse-event-server/internal/domain"
)

// SQLiteStore implements domain.ReportStore on an embedded SQLite file.
// AUTOINCREMENT keeps IDs from being reused after a rolled-back insert.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens the database at dbPath, creating the file and schema
// if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single writer connection serializes ID assignment
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// NewSQLiteStoreFromDB wraps an open database whose schema already exists
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		drug TEXT,
		adverse_events TEXT NOT NULL DEFAULT '[]',
		severity TEXT CHECK (severity IN ('mild', 'moderate', 'severe')),
		outcome TEXT,
		raw_text TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_severity ON reports(severity);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(s scanner) (*domain.Report, error) {
	r := &domain.Report{}
	var drug, severity, outcome sql.NullString
	var events, createdAt string

	if err := s.Scan(&r.ID, &drug, &events, &severity, &outcome, &r.RawText, &createdAt); err != nil {
		return nil, err
	}

	if drug.Valid {
		r.Drug = &drug.String
	}
	if outcome.Valid {
		r.Outcome = &outcome.String
	}
	if severity.Valid {
		sev, err := domain.ParseSeverity(severity.String)
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", r.ID, err)
		}
		r.Severity = &sev
	}

	r.AdverseEvents = []string{}
	if err := json.Unmarshal([]byte(events), &r.AdverseEvents); err != nil {
		return nil, fmt.Errorf("report %d: decoding adverse events: %w", r.ID, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("report %d: parsing created_at: %w", r.ID, err)
	}
	r.CreatedAt = ts.UTC()

	return r, nil
}

// Create inserts a report in its own transaction and returns the stored copy
func (s *SQLiteStore) Create(ctx context.Context, fields *domain.ReportFields) (*domain.Report, error) {
	report, err := newReport(fields)
	if err != nil {
		return nil, err
	}
	report.CreatedAt = time.Now().UTC()

	events, err := json.Marshal(report.AdverseEvents)
	if err != nil {
		return nil, fmt.Errorf("encoding adverse events: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reports (drug, adverse_events, severity, outcome, raw_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		nullString(report.Drug),
		string(events),
		nullSeverity(report.Severity),
		nullString(report.Outcome),
		report.RawText,
		report.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting report id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing report: %w", err)
	}

	report.ID = id
	return report, nil
}

// List returns all reports in ascending ID order
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drug, adverse_events, severity, outcome, raw_text, created_at
		FROM reports
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	reports := []*domain.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullSeverity(s *domain.Severity) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}
