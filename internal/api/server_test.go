package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adverse-event-server/internal/config"
	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/logging"
	"github.com/adverse-event-server/internal/repository"
	"github.com/adverse-event-server/internal/service"
	"github.com/adverse-event-server/internal/translation"
)

type brokenStore struct{}

func (brokenStore) Create(context.Context, *domain.ReportFields) (*domain.Report, error) {
	return nil, errors.New("disk full")
}
func (brokenStore) List(context.Context) ([]*domain.Report, error) {
	return nil, errors.New("disk full")
}
func (brokenStore) Ping(context.Context) error { return errors.New("disk full") }
func (brokenStore) Close() error { return nil }

func newTestServer(t *testing.T, store domain.ReportStore) http.Handler {
	t.Helper()
	cm, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	cfg := cm.GetConfig()
	cfg.RateLimit.RequestsPerSecond = 0

	logger := logging.Discard()
	reports := service.NewReportService(logger, store, cfg.Extraction)
	translations := service.NewTranslationService(logger, translation.NewGlossaryTranslator(), cfg.Translation)
	return NewServer(cm, reports, translations, logger).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestProcessReport(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/process-report",
		`{"report": "Patient took Aspirin and developed a rash, hospitalized for observation."}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeMap(t, w)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Aspirin", body["drug"])
	assert.Equal(t, []interface{}{"rash"}, body["adverse_events"])
	assert.Equal(t, "moderate", body["severity"])
	assert.Equal(t, "hospitalized", body["outcome"])
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "raw_text")

	w = doJSON(t, h, http.MethodPost, "/process-report",
		`{"report": "Patient took Ibuprofen, no adverse effects noted, fully recovered."}`)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeMap(t, w)
	assert.Equal(t, float64(2), body["id"])
	assert.Equal(t, []interface{}{}, body["adverse_events"])
	assert.Equal(t, "recovered", body["outcome"])
	assert.Contains(t, body, "severity")
	assert.Nil(t, body["severity"])
}

func TestProcessReport_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty report", body: `{"report": ""}`},
		{name: "whitespace report", body: `{"report": "   \n"}`},
		{name: "missing report", body: `{}`},
		{name: "null report", body: `{"report": null}`},
		{name: "wrong type", body: `{"report": 42}`},
		{name: "malformed json", body: `{"report": `},
		{name: "too long", body: `{"report": "` + strings.Repeat("a", service.MaxReportLength+1) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, repository.NewMemoryStore())

			w := doJSON(t, h, http.MethodPost, "/process-report", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, domain.ErrInvalidInput, apiErr.Code)
			assert.Equal(t, w.Header().Get("X-Correlation-ID"), apiErr.RequestID)

			list := doJSON(t, h, http.MethodGet, "/reports", "")
			assert.JSONEq(t, `[]`, list.Body.String())
		})
	}
}

func TestListReportsAndSummary(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	w := doJSON(t, h, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, text := range []string{
		"Developed a rash.",
		"Patient died after taking Tramadol.",
		"Took Ibuprofen and recovered.",
		"Headache and nausea after Codeine.",
	} {
		resp := doJSON(t, h, http.MethodPost, "/process-report", `{"report": "`+text+`"}`)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, w.Code)
	var reports []domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	require.Len(t, reports, 4)
	for i, r := range reports {
		assert.Equal(t, int64(i+1), r.ID)
	}

	w = doJSON(t, h, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"severity": "mild", "count": 2},
		{"severity": "moderate", "count": 0},
		{"severity": "severe", "count": 1}
	]`, w.Body.String())
}

func TestTranslate(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/translate", `{
		"report": {"id": 3, "drug": "Aspirin", "adverse_events": ["rash", "fever"], "severity": "moderate", "outcome": "hospitalized"},
		"language": "fr"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"translated_report": {
		"id": 3,
		"drug": "Aspirine",
		"adverse_events": ["éruption cutanée", "fièvre"],
		"severity": "moderate",
		"outcome": "hospitalisé"
	}}`, w.Body.String())
}

func TestTranslate_NullFieldsStayNull(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/translate", `{
		"report": {"drug": null, "adverse_events": null, "severity": null, "outcome": "recovered"},
		"language": "sw"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"translated_report": {
		"drug": null,
		"adverse_events": null,
		"severity": null,
		"outcome": "amepona"
	}}`, w.Body.String())
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "unsupported language",
			body:   `{"report": {"drug": "Aspirin"}, "language": "xx"}`,
			status: http.StatusBadRequest,
			code:   domain.ErrUnsupportedLanguage,
		},
		{
			name:   "missing language",
			body:   `{"report": {"drug": "Aspirin"}}`,
			status: http.StatusBadRequest,
			code:   domain.ErrUnsupportedLanguage,
		},
		{
			name:   "missing report",
			body:   `{"language": "fr"}`,
			status: http.StatusBadRequest,
			code:   domain.ErrInvalidInput,
		},
		{
			name:   "invalid severity",
			body:   `{"report": {"severity": "deadly"}, "language": "fr"}`,
			status: http.StatusBadRequest,
			code:   domain.ErrInvalidInput,
		},
		{
			name:   "events of wrong type",
			body:   `{"report": {"adverse_events": [1, 2]}, "language": "fr"}`,
			status: http.StatusBadRequest,
			code:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, repository.NewMemoryStore())

			w := doJSON(t, h, http.MethodPost, "/translate", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestTranslate_DoesNotChangeStore(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	created := doJSON(t, h, http.MethodPost, "/process-report", `{"report": "Took Aspirin, developed a rash."}`)
	require.Equal(t, http.StatusOK, created.Code)
	before := doJSON(t, h, http.MethodGet, "/reports", "").Body.String()

	for _, lang := range []string{"fr", "sw", "xx"} {
		doJSON(t, h, http.MethodPost, "/translate", `{"report": {"drug": "Aspirin", "adverse_events": ["rash"]}, "language": "`+lang+`"}`)
	}

	after := doJSON(t, h, http.MethodGet, "/reports", "").Body.String()
	assert.JSONEq(t, before, after)
}

func TestStorageFailure(t *testing.T) {
	h := newTestServer(t, brokenStore{})

	w := doJSON(t, h, http.MethodPost, "/process-report", `{"report": "Developed a rash."}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrStorageFailure, apiErr.Code)
	assert.Empty(t, apiErr.Details)

	w = doJSON(t, h, http.MethodGet, "/reports", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(t, h, http.MethodGet, "/reports/summary", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	w := doJSON(t, newTestServer(t, repository.NewMemoryStore()), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Storage)
	assert.Equal(t, "glossary", resp.TranslationProvider)
	assert.Equal(t, Version, resp.Version)

	w = doJSON(t, newTestServer(t, brokenStore{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLanguages(t *testing.T) {
	w := doJSON(t, newTestServer(t, repository.NewMemoryStore()), http.MethodGet, "/languages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"languages": ["fr", "sw"]}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, repository.NewMemoryStore())

	req := httptest.NewRequest(http.MethodOptions, "/process-report", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGinMode(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		want        string
	}{
		{"production ignores debug logging", "production", "debug", gin.ReleaseMode},
		{"development with debug logging", "development", "debug", gin.DebugMode},
		{"development with info logging", "development", "info", gin.ReleaseMode},
		{"staging with debug logging", "staging", "debug", gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AE_REPORT_ENVIRONMENT", tt.environment)
			t.Setenv("AE_REPORT_LOGGING_LEVEL", tt.level)

			cm, err := config.NewManager(t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ginMode(cm))
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
		details string
	}{
		{
			name:    "unclassified error is hidden",
			err:     errors.New("nil pointer somewhere"),
			status:  http.StatusInternalServerError,
			code:    domain.ErrInternalServer,
			message: "internal server error",
		},
		{
			name:    "storage failure keeps its message",
			err:     domain.NewServiceError(domain.ErrStorageFailure, "failed to store report", errors.New("disk full")),
			status:  http.StatusInternalServerError,
			code:    domain.ErrStorageFailure,
			message: "failed to store report",
		},
		{
			name:    "invalid input carries details",
			err:     domain.NewInvalidInputError("report is required", errors.New("missing field")),
			status:  http.StatusBadRequest,
			code:    domain.ErrInvalidInput,
			message: "report is required",
			details: "missing field",
		},
	}

	s := &Server{logger: logging.Discard()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			s.writeError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.details, apiErr.Details)
		})
	}
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForCode(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, statusForCode(domain.ErrUnsupportedLanguage))
	assert.Equal(t, http.StatusTooManyRequests, statusForCode(domain.ErrRateLimit))
	assert.Equal(t, http.StatusBadGateway, statusForCode(domain.ErrTranslationFailure))
	assert.Equal(t, http.StatusInternalServerError, statusForCode(domain.ErrStorageFailure))
	assert.Equal(t, http.StatusInternalServerError, statusForCode(domain.ErrInternalServer))
}
