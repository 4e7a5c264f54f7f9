package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
)

// TranslationService re-renders the free-text fields of a report in another
// language. It works on the caller's copy and never touches the store.
type TranslationService struct {
	logger     *logrus.Logger
	translator domain.Translator
	source     string
	languages  []string
	supported  map[string]bool
}

// NewTranslationService creates a translation service for the configured languages
func NewTranslationService(logger *logrus.Logger, translator domain.Translator, cfg domain.TranslationConfig) *TranslationService {
	source := normalizeLanguage(cfg.SourceLanguage)
	if source == "" {
		source = "en"
	}

	s := &TranslationService{
		logger:     logger,
		translator: translator,
		source:     source,
		supported:  make(map[string]bool, len(cfg.Languages)),
	}
	for _, lang := range cfg.Languages {
		lang = normalizeLanguage(lang)
		if lang == "" || s.supported[lang] {
			continue
		}
		s.supported[lang] = true
		s.languages = append(s.languages, lang)
	}
	return s
}

// SupportedLanguages returns the accepted target language tags in configured order
func (s *TranslationService) SupportedLanguages() []string {
	return append([]string{}, s.languages...)
}

// IsSupported reports whether language is an accepted target
func (s *TranslationService) IsSupported(language string) bool {
	return s.supported[normalizeLanguage(language)]
}

// Provider returns the name of the backing translator
func (s *TranslationService) Provider() string {
	return s.translator.Name()
}

// TranslateReport translates drug, each adverse event and outcome into
// language. Absent fields stay absent; ID, severity and creation time are
// copied through unchanged.
func (s *TranslationService) TranslateReport(ctx context.Context, report *domain.TranslatableReport, language string) (*domain.TranslatableReport, error) {
	if !s.IsSupported(language) {
		return nil, domain.NewUnsupportedLanguageError(language)
	}
	target := normalizeLanguage(language)
	if report == nil {
		return nil, domain.NewInvalidInputError("report is required", nil)
	}
	if report.Severity != nil && !report.Severity.IsValid() {
		return nil, domain.NewInvalidInputError("invalid severity", domain.NewValidationError("severity", "must be one of mild, moderate, severe", string(*report.Severity)))
	}

	out := &domain.TranslatableReport{
		ID:        report.ID,
		Severity:  report.Severity,
		CreatedAt: report.CreatedAt,
	}

	var err error
	if out.Drug, err = s.translateOptional(ctx, report.Drug, target); err != nil {
		return nil, s.failure(target, err)
	}
	if report.AdverseEvents != nil {
		out.AdverseEvents = make([]string, len(report.AdverseEvents))
		for i, event := range report.AdverseEvents {
			if out.AdverseEvents[i], err = s.translate(ctx, event, target); err != nil {
				return nil, s.failure(target, err)
			}
		}
	}
	if out.Outcome, err = s.translateOptional(ctx, report.Outcome, target); err != nil {
		return nil, s.failure(target, err)
	}

	s.logger.WithFields(logrus.Fields{
		"language": target,
		"provider": s.translator.Name(),
		"events":   len(out.AdverseEvents),
	}).Info("Report translated")

	return out, nil
}

func (s *TranslationService) translateOptional(ctx context.Context, text *string, target string) (*string, error) {
	if text == nil {
		return nil, nil
	}
	translated, err := s.translate(ctx, *text, target)
	if err != nil {
		return nil, err
	}
	return &translated, nil
}

func (s *TranslationService) translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.translator.Translate(ctx, text, s.source, target)
}

func (s *TranslationService) failure(target string, err error) error {
	s.logger.WithFields(logrus.Fields{
		"language": target,
		"provider": s.translator.Name(),
	}).WithError(err).Error("Translation failed")
	return domain.NewTranslationError(err)
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
