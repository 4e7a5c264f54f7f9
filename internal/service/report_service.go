package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
)

// MaxReportLength is the longest narrative, in characters, accepted for processing
const MaxReportLength = 20000

// ReportService runs the extract, classify and persist pipeline and serves
// the stored history.
type ReportService struct {
	logger     *logrus.Logger
	store      domain.ReportStore
	extractor  *FieldExtractor
	classifier *SeverityClassifier
}

// NewReportService creates a report service on top of store
func NewReportService(logger *logrus.Logger, store domain.ReportStore, cfg domain.ExtractionConfig) *ReportService {
	return &ReportService{
		logger:     logger,
		store:      store,
		extractor:  NewFieldExtractor(),
		classifier: NewSeverityClassifier(cfg.EventThreshold),
	}
}

// Analyze extracts and classifies text without persisting anything
func (s *ReportService) Analyze(text string) (*domain.ReportFields, Classification, error) {
	if err := validateReportText(text); err != nil {
		return nil, Classification{}, err
	}

	extracted := s.extractor.Extract(text)
	classification := s.classifier.Classify(extracted)

	fields := &domain.ReportFields{
		Drug:          domain.StringPtr(extracted.Drug),
		AdverseEvents: extracted.AdverseEvents,
		Severity:      domain.SeverityPtr(classification.Severity),
		Outcome:       domain.StringPtr(extracted.Outcome.String()),
		RawText:       text,
	}
	return fields, classification, nil
}

// ProcessReport turns a narrative into a stored report. Nothing is stored
// when the text is rejected or the store fails.
func (s *ReportService) ProcessReport(ctx context.Context, text string) (*domain.Report, error) {
	start := time.Now()

	fields, classification, err := s.Analyze(text)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"text_length": utf8.RuneCountInString(text),
		}).WithError(err).Warn("Rejected report text")
		return nil, err
	}

	report, err := s.store.Create(ctx, fields)
	if err != nil {
		s.logger.WithError(err).Error("Failed to store report")
		return nil, domain.NewStorageError("create", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"severity":    severityField(report.Severity),
		"rule":        classification.Rule,
		"event_count": len(report.AdverseEvents),
		"text_length": utf8.RuneCountInString(text),
		"duration":    time.Since(start),
	}).Info("Report processed")

	return report, nil
}

// ListReports returns every stored report in ascending ID order
func (s *ReportService) ListReports(ctx context.Context) ([]*domain.Report, error) {
	reports, err := s.store.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reports")
		return nil, domain.NewStorageError("list", err)
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	return reports, nil
}

// SeveritySummary returns the severity distribution over the current store contents
func (s *ReportService) SeveritySummary(ctx context.Context) ([]domain.SeverityCount, error) {
	reports, err := s.ListReports(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateSeverities(reports), nil
}

// Ping checks that the store is reachable
func (s *ReportService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return domain.NewStorageError("ping", err)
	}
	return nil
}

// Rules returns the classifier's rule names in evaluation order
func (s *ReportService) Rules() []string {
	return s.classifier.Rules()
}

func validateReportText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewInvalidInputError("report text is required", nil)
	}
	if !utf8.ValidString(text) {
		return domain.NewInvalidInputError("report text must be valid UTF-8", nil)
	}
	if n := utf8.RuneCountInString(text); n > MaxReportLength {
		return domain.NewInvalidInputError("report text is too long", domain.NewValidationError("report", "exceeds maximum length", n))
	}
	return nil
}

func severityField(s *domain.Severity) string {
	if s == nil {
		return "absent"
	}
	return s.String()
}
