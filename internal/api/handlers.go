package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/middleware"
)

// maxBodyBytes caps request bodies well above the longest accepted report
const maxBodyBytes = 1 << 20

// ProcessReportRequest is the body of POST /process-report
type ProcessReportRequest struct {
	Report *string `json:"report"`
}

// TranslateRequest is the body of POST /translate
type TranslateRequest struct {
	Report   *domain.TranslatableReport `json:"report"`
	Language string                     `json:"language"`
}

// TranslateResponse is the body returned by POST /translate
type TranslateResponse struct {
	TranslatedReport *domain.TranslatableReport `json:"translated_report"`
}

// HealthResponse is the body returned by GET /health
type HealthResponse struct {
	Status              string    `json:"status"`
	Storage             string    `json:"storage"`
	TranslationProvider string    `json:"translation_provider"`
	Timestamp           time.Time `json:"timestamp"`
	Version             string    `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:              "healthy",
		Storage:             "ok",
		TranslationProvider: s.translations.Provider(),
		Timestamp:           time.Now().UTC(),
		Version:             Version,
	}

	status := http.StatusOK
	if err := s.reports.Ping(c.Request.Context()); err != nil {
		s.logger.WithError(err).Warn("Health check: storage unavailable")
		resp.Status = "degraded"
		resp.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": s.translations.SupportedLanguages()})
}

func (s *Server) handleProcessReport(c *gin.Context) {
	var req ProcessReportRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.Report == nil {
		s.writeError(c, domain.NewInvalidInputError("report is required", nil))
		return
	}

	report, err := s.reports.ProcessReport(c.Request.Context(), *req.Report)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.reports.ListReports(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleSeveritySummary(c *gin.Context) {
	summary, err := s.reports.SeveritySummary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req TranslateRequest
	if !s.bindJSON(c, &req) {
		return
	}

	translated, err := s.translations.TranslateReport(c.Request.Context(), req.Report, req.Language)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TranslateResponse{TranslatedReport: translated})
}

// bindJSON decodes the body into dst, writing a 400 on failure
func (s *Server) bindJSON(c *gin.Context, dst interface{}) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		s.writeError(c, domain.NewInvalidInputError("malformed request body", err))
		return false
	}
	return true
}

// writeError maps a service error onto its HTTP status and error body
func (s *Server) writeError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := statusForCode(code)

	message := err.Error()
	details := ""
	var se *domain.ServiceError
	if errors.As(err, &se) {
		message = se.Message
		if se.Err != nil && status < http.StatusInternalServerError {
			details = se.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("correlation_id", middleware.GetCorrelationID(c)).Error("Request failed")
		if domain.IsCode(err, domain.ErrInternalServer) {
			message = "internal server error"
		}
	}

	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, middleware.GetCorrelationID(c)))
}

func statusForCode(code string) int {
	switch code {
	case domain.ErrInvalidInput, domain.ErrUnsupportedLanguage:
		return http.StatusBadRequest
	case domain.ErrRateLimit:
		return http.StatusTooManyRequests
	case domain.ErrTranslationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
