package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adverse-event-server/internal/domain"
)

// toolFunc runs one tool against its raw JSON arguments
type toolFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

type tool struct {
	definition *mcp.Tool
	call       toolFunc
}

// ProcessReportParams are the arguments of process_report
type ProcessReportParams struct {
	Report *string `json:"report"`
}

// TranslateReportParams are the arguments of translate_report
type TranslateReportParams struct {
	Report   *domain.TranslatableReport `json:"report"`
	Language string                     `json:"language"`
}

// ToolError is the body of a failed tool result
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) tools() []tool {
	nullableString := &jsonschema.Schema{Types: []string{"string", "null"}}

	return []tool{
		{
			definition: &mcp.Tool{
				Name:        "process_report",
				Description: "Extract drug, adverse events, severity and outcome from a free-text adverse event narrative and store the result",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"report": {Type: "string", Description: "Narrative text of the adverse event report"},
					},
					Required: []string{"report"},
				},
			},
			call: s.processReport,
		},
		{
			definition: &mcp.Tool{
				Name:        "list_reports",
				Description: "List every stored report in ascending id order",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			call: s.listReports,
		},
		{
			definition: &mcp.Tool{
				Name:        "severity_summary",
				Description: "Count stored reports per severity tier (mild, moderate, severe)",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			call: s.severitySummary,
		},
		{
			definition: &mcp.Tool{
				Name:        "translate_report",
				Description: "Translate the drug, adverse events and outcome of a report into a supported language",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"report": {
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"drug":           nullableString,
								"adverse_events": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
								"severity":       nullableString,
								"outcome":        nullableString,
							},
						},
						"language": {Type: "string", Description: "Target language tag such as fr or sw"},
					},
					Required: []string{"report", "language"},
				},
			},
			call: s.translateReport,
		},
		{
			definition: &mcp.Tool{
				Name:        "supported_languages",
				Description: "List the language tags accepted by translate_report",
				InputSchema: &jsonschema.Schema{Type: "object"},
			},
			call: s.supportedLanguages,
		},
	}
}

// wrap adapts a toolFunc to the SDK handler signature. Service failures become
// error results carrying their code so the client can distinguish them.
func (s *Server) wrap(name string, fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			raw, err := rawArguments(req.Params.Arguments)
			if err != nil {
				return errorResult(domain.NewInvalidInputError("invalid parameters", err)), nil
			}
			args = raw
		}
		return s.invoke(ctx, name, fn, args), nil
	}
}

// rawArguments normalises the call arguments to JSON. Requests decoded by the
// SDK carry json.RawMessage; in-process callers may pass any value.
func rawArguments(arguments interface{}) (json.RawMessage, error) {
	switch v := arguments.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}

func (s *Server) invoke(ctx context.Context, name string, fn toolFunc, args json.RawMessage) *mcp.CallToolResult {
	start := time.Now()
	logger := s.logger.WithField("tool", name)

	result, err := fn(ctx, args)
	if err != nil {
		logger.WithError(err).WithField("code", domain.CodeOf(err)).Warn("Tool failed")
		return errorResult(err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		logger.WithError(err).Error("Failed to encode tool result")
		return errorResult(domain.NewServiceError(domain.ErrInternalServer, "encoding result failed", err))
	}

	logger.WithField("duration", time.Since(start)).Info("Tool invoked")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	te := ToolError{Code: domain.CodeOf(err), Message: err.Error()}
	var se *domain.ServiceError
	if errors.As(err, &se) {
		te.Message = se.Message
	}
	body, _ := json.Marshal(te)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: true,
	}
}

func decodeArgs(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return domain.NewInvalidInputError("invalid parameters", err)
	}
	return nil
}

func (s *Server) processReport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var params ProcessReportParams
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if params.Report == nil {
		return nil, domain.NewInvalidInputError("report is required", nil)
	}
	return s.reports.ProcessReport(ctx, *params.Report)
}

func (s *Server) listReports(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return s.reports.ListReports(ctx)
}

func (s *Server) severitySummary(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return s.reports.SeveritySummary(ctx)
}

func (s *Server) translateReport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var params TranslateReportParams
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	translated, err := s.translations.TranslateReport(ctx, params.Report, params.Language)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"translated_report": translated}, nil
}

func (s *Server) supportedLanguages(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"languages": s.translations.SupportedLanguages()}, nil
}
