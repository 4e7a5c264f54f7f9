// Package app assembles the storage, translation and service layers from a
// loaded configuration. Both the HTTP and the MCP entry points start here.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/repository"
	"github.com/adverse-event-server/internal/service"
	"github.com/adverse-event-server/internal/translation"
)

// App holds the long-lived components shared by the entry points
type App struct {
	Store        domain.ReportStore
	Translator   domain.Translator
	Reports      *service.ReportService
	Translations *service.TranslationService
	logger       *logrus.Logger
}

// New opens the configured store and translator and builds the services on top
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	store, err := repository.NewReportStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}

	translator, err := translation.NewTranslator(ctx, cfg.Translation, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"storage":     cfg.Storage.Driver,
		"translation": translator.Name(),
		"languages":   cfg.Translation.Languages,
	}).Info("Application components initialized")

	return &App{
		Store:        store,
		Translator:   translator,
		Reports:      service.NewReportService(logger, store, cfg.Extraction),
		Translations: service.NewTranslationService(logger, translator, cfg.Translation),
		logger:       logger,
	}, nil
}

// Close releases the translator cache and the store
func (a *App) Close() error {
	if closer, ok := a.Translator.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close translator")
		}
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close report store: %w", err)
	}
	return nil
}
