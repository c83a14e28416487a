// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/qascope/qascope/core"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// Tool argument names.
const (
	argCodePath   = "code_path"
	argFolderPath = "folder_path"
	argPort       = "port"
	argPath       = "path"
	argHost       = "host"
	argOutput     = "output"
)

// ListAnalyzersTool is the name of the tool that lists every other tool.
const ListAnalyzersTool = "list_analyzers"

// DefaultProbePort is used when a probe call does not name a port.
const DefaultProbePort = 3000

// NewMCPServer initializes and configures the qascope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"qascope Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	for _, a := range core.Analyzers() {
		s.AddTool(analyzerTool(a), h.analyzerHandler(a))
	}

	s.AddTool(mcp.NewTool(ListAnalyzersTool,
		mcp.WithDescription("List every analyzer with its tool name and a short description."),
	), h.handleListAnalyzers)

	return s
}

// analyzerTool describes the arguments of one analyzer tool.
func analyzerTool(a contract.Analyzer) mcp.Tool {
	output := mcp.WithString(argOutput,
		mcp.Description("Report format: text (default) or json."),
		mcp.Enum(string(schema.TextOut), string(schema.JSONOut)),
	)

	switch a.Name() {
	case schema.ProbeAnalyzer:
		return mcp.NewTool(a.Tool(),
			mcp.WithDescription(a.Description()),
			mcp.WithString(argPort, mcp.Description("Port of the local server (defaults to 3000).")),
			mcp.WithString(argPath, mcp.Description("URL path to request (defaults to '/').")),
			mcp.WithString(argHost, mcp.Description("Host to probe (defaults to localhost).")),
			output,
		)
	case schema.StructureAnalyzer:
		return mcp.NewTool(a.Tool(),
			mcp.WithDescription(a.Description()),
			mcp.WithString(argFolderPath, mcp.Description("Folder to analyze."), mcp.Required()),
			output,
		)
	default:
		return mcp.NewTool(a.Tool(),
			mcp.WithDescription(a.Description()),
			mcp.WithString(argCodePath, mcp.Description("File or folder to analyze."), mcp.Required()),
			output,
		)
	}
}

// StartMCPServer starts the qascope MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
