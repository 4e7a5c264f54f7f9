// Package mcp exposes the report pipeline as Model Context Protocol tools so
// assistant clients can submit narratives, read the store and request
// translations over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/adverse-event-server/internal/domain"
	"github.com/adverse-event-server/internal/service"
)

// Server represents the MCP server instance
type Server struct {
	config       domain.MCPConfig
	mcpServer    *mcp.Server
	reports      *service.ReportService
	translations *service.TranslationService
	logger       *logrus.Logger
}

// NewServer creates a new MCP server and registers its tools
func NewServer(cfg domain.MCPConfig, reports *service.ReportService, translations *service.TranslationService, logger *logrus.Logger) *Server {
	if cfg.ServerName == "" {
		cfg.ServerName = "adverse-event-mcp-server"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "v0.1.0"
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	s := &Server{
		config:       cfg,
		mcpServer:    mcpServer,
		reports:      reports,
		translations: translations,
		logger:       logger,
	}
	s.registerTools()
	return s
}

// registerTools adds every tool definition to the SDK server
func (s *Server) registerTools() {
	tools := s.tools()
	for _, t := range tools {
		s.mcpServer.AddTool(t.definition, s.wrap(t.definition.Name, t.call))
		s.logger.WithField("tool_name", t.definition.Name).Debug("Registered MCP tool")
	}
	s.logger.WithField("tool_count", len(tools)).Info("Successfully registered all tools")
}

// ToolNames lists the registered tools in registration order
func (s *Server) ToolNames() []string {
	tools := s.tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.definition.Name)
	}
	return names
}

// Run serves MCP requests over stdio until ctx is canceled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithFields(logrus.Fields{
		"server_name":    s.config.ServerName,
		"server_version": s.config.ServerVersion,
		"transport":      "stdio",
	}).Info("Starting MCP server")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
