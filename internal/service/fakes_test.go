package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adverse-event-server/internal/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	reports   []*domain.Report
	createErr error
	listErr   error
}

func (f *fakeStore) Create(_ context.Context, fields *domain.ReportFields) (*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	r := &domain.Report{
		ID:            f.nextID,
		Drug:          fields.Drug,
		AdverseEvents: append([]string{}, fields.AdverseEvents...),
		Severity:      fields.Severity,
		Outcome:       fields.Outcome,
		RawText:       fields.RawText,
		CreatedAt:     time.Now().UTC(),
	}
	f.reports = append(f.reports, r)
	return r.Clone(), nil
}

func (f *fakeStore) List(_ context.Context) ([]*domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Report, len(f.reports))
	for i, r := range f.reports {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }

func (f *fakeStore) Close() error { return nil }

// prefixTranslator tags text with the target language
type prefixTranslator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *prefixTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s] %s", target, strings.ToUpper(text)), nil
}

func (p *prefixTranslator) Name() string { return "prefix" }

func (p *prefixTranslator) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var errBackend = errors.New("backend unavailable")
