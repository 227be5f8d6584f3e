package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/bugsheet/core"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// analysisResponse is the compact result returned to MCP clients; detail rows are left out.
type analysisResponse struct {
	Summary    schema.RunSummary     `json:"summary"`
	Stats      schema.AggregateStats `json:"stats"`
	Entries    []schema.StatEntry    `json:"entries"`
	ReportPath string                `json:"report_path,omitempty"`
}

func (h *toolHandler) handleAnalyzeBugReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Inputs = splitPaths(request.GetString("paths", ""))
	if len(cfg.Inputs) == 0 {
		return mcp.NewToolResultError("paths is required"), nil
	}
	if s := strings.TrimSpace(request.GetString("sheet", "")); s != "" {
		cfg.Sheet = s
	}
	if n := request.GetInt("preview_rows", -1); n >= 0 {
		if n > contract.MaxPreviewRows {
			return mcp.NewToolResultError(fmt.Sprintf("preview_rows must be between 0 and %d", contract.MaxPreviewRows)), nil
		}
		cfg.PreviewRows = n
	}
	cfg.WriteReport = request.GetBool("write_report", false)

	result, err := core.GetAnalysisResult(ctx, cfg, h.mgr)
	if err != nil {
		var empty *schema.EmptyBatchError
		if errors.As(err, &empty) {
			skipped, _ := json.MarshalIndent(empty.Skipped, "", "  ")
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v\n%s", err, skipped)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(analysisResponse{
		Summary:    result.Summary,
		Stats:      result.Stats,
		Entries:    result.Report.Stats.Entries,
		ReportPath: result.ReportPath,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetRunStore() == nil {
		return mcp.NewToolResultError("run tracking is not configured (set --run-backend)"), nil
	}

	status, err := h.mgr.GetRunStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read run status: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// splitPaths accepts comma or newline separated paths.
func splitPaths(raw string) []string {
	var paths []string
	for _, p := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
