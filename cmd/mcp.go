package cmd

import (
	"github.com/huangsam/bugsheet/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the bugsheet MCP server",
	Long: `Launch an MCP server on stdio so AI agents can analyze bug-report spreadsheets
through the analyze_bug_reports and get_run_status tools.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
