// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the bugsheet MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Bug Report Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_bug_reports ---
	s.AddTool(mcp.NewTool("analyze_bug_reports",
		mcp.WithDescription("Merge bug-report spreadsheets (xlsx/csv) and return severity, defect type and fix-rate statistics."),
		mcp.WithString("paths", mcp.Description("Comma-separated files or folders to analyze."), mcp.Required()),
		mcp.WithString("sheet", mcp.Description("Worksheet to read when a workbook has it.")),
		mcp.WithNumber("preview_rows", mcp.Description("Cap on detail rows in the report (0 keeps every row).")),
		mcp.WithBoolean("write_report", mcp.Description("Also write the xlsx report to the configured report directory.")),
	), h.handleAnalyzeBugReports)

	// --- 2. Tool: get_run_status ---
	s.AddTool(mcp.NewTool("get_run_status",
		mcp.WithDescription("Summarize the run history: number of runs, latest run and files processed."),
	), h.handleGetRunStatus)

	return s
}

// StartMCPServer starts the bugsheet MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
