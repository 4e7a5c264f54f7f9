package repository

import (
	"context"
	"sync"
	"time"

	"github.com/adverse-event-server/internal/domain"
)

// MemoryStore keeps reports in process memory. IDs start at 1 and are
// assigned under the write lock, so concurrent creates never collide.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	reports []*domain.Report
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new report and returns a copy of it
func (s *MemoryStore) Create(ctx context.Context, fields *domain.ReportFields) (*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report, err := newReport(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	report.ID = s.nextID
	report.CreatedAt = s.now()
	s.nextID++
	s.reports = append(s.reports, report)
	s.mu.Unlock()

	return report.Clone(), nil
}

// List returns copies of all reports in ascending ID order
func (s *MemoryStore) List(ctx context.Context) ([]*domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snapshot := make([]*domain.Report, len(s.reports))
	copy(snapshot, s.reports)
	s.mu.RUnlock()

	// stored reports are never mutated, so cloning can happen outside the lock
	out := make([]*domain.Report, len(snapshot))
	for i, r := range snapshot {
		out[i] = r.Clone()
	}
	return out, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
