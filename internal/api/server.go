package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/middleware"
	"github.com/adverse-event-server/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	reports       *service.ReportService
	translations  *service.TranslationService
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	reports *service.ReportService,
	translations *service.TranslationService,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	gin.SetMode(ginMode(configManager))

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.RateLimit(cfg.RateLimit))
	router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))

	server := &Server{
		configManager: configManager,
		reports:       reports,
		translations:  translations,
		logger:        logger,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// ginMode selects release mode in production. Debug mode needs a development
// environment with debug logging.
func ginMode(configManager domain.ConfigManager) string {
	if configManager.IsProduction() {
		return gin.ReleaseMode
	}
	if configManager.IsDevelopment() && strings.EqualFold(configManager.GetConfig().Logging.Level, "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/languages", s.handleLanguages)

	s.router.POST("/process-report", s.handleProcessReport)
	s.router.GET("/reports", s.handleListReports)
	s.router.GET("/reports/summary", s.handleSeveritySummary)
	s.router.POST("/translate", s.handleTranslate)
}
