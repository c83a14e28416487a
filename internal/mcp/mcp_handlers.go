package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/qascope/qascope/core"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/report"
	"github.com/qascope/qascope/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// analyzerHandler returns the handler that runs a single analyzer.
func (h *toolHandler) analyzerHandler(a contract.Analyzer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := h.target(a, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rep := a.Run(ctx, target)
		text, err := h.render(rep, request.GetString(argOutput, string(schema.TextOut)))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
		}
		if rep.Failed {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// target builds the analysis target from the tool arguments.
func (h *toolHandler) target(a contract.Analyzer, request mcp.CallToolRequest) (schema.AnalysisTarget, error) {
	if a.Name() == schema.ProbeAnalyzer {
		host := request.GetString(argHost, h.baseCfg.Host)
		if host == "" {
			host = contract.DefaultHost
		}
		port := request.GetInt(argPort, DefaultProbePort)
		if port < 1 || port > 65535 {
			return schema.AnalysisTarget{}, fmt.Errorf("port must be between 1 and 65535 (received %d)", port)
		}
		return schema.AnalysisTarget{
			Host:    host,
			Port:    port,
			URLPath: request.GetString(argPath, contract.DefaultURLPath),
			Timeout: h.baseCfg.Timeout,
		}, nil
	}

	key := argCodePath
	if a.Name() == schema.StructureAnalyzer {
		key = argFolderPath
	}
	path := strings.TrimSpace(request.GetString(key, ""))
	if path == "" {
		return schema.AnalysisTarget{}, fmt.Errorf("%s is required", key)
	}
	return schema.AnalysisTarget{Path: path, Excludes: h.baseCfg.Excludes}, nil
}

// render formats a report for the agent. Colors never apply over stdio.
func (h *toolHandler) render(rep schema.Report, output string) (string, error) {
	if schema.OutputMode(output) == schema.JSONOut {
		var b strings.Builder
		if err := report.WriteJSON(&b, []schema.Report{rep}); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	opts := report.OptionsFromConfig(h.baseCfg)
	opts.UseColors = false
	return report.Text(rep, opts), nil
}

type analyzerInfo struct {
	Name        schema.AnalyzerName `json:"name"`
	Tool        string              `json:"tool"`
	Description string              `json:"description"`
}

func (h *toolHandler) handleListAnalyzers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := make([]analyzerInfo, 0, len(schema.AllAnalyzers))
	for _, a := range core.Analyzers() {
		infos = append(infos, analyzerInfo{Name: a.Name(), Tool: a.Tool(), Description: a.Description()})
	}
	jsonData, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
