package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/bugsheet/core"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full pipeline over files and folders.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Merge bug-report spreadsheets and write the analysis report.",
	Long: `Read every given file, and every supported file directly inside every given folder,
then merge the usable tables and analyze them.

Each input goes through:
- Loading (xlsx/xlsm/csv, GBK csv included)
- Cleaning (blank rows and columns, duplicate or unnamed headers)
- Normalization (severity S/A/B/C, program vs non-program bug, fixed vs unfixed)

Files that cannot be read are skipped and listed in the summary; the run only fails
when no file is usable. The report is an xlsx workbook with a detail sheet and a
statistics sheet, named <report-prefix>_<timestamp>.xlsx.

Examples:
  # Analyze every bug list in a folder
  bugsheet analyze ./exports

  # Merge two files and print the summary as JSON
  bugsheet analyze release.xlsx hotfix.csv --output json

  # Skip the workbook and export analyzed rows as Parquet
  bugsheet analyze ./exports --report no --output parquet --output-file rows.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			var empty *schema.EmptyBatchError
			switch {
			case errors.As(err, &empty):
				for _, f := range empty.Skipped {
					_, _ = fmt.Fprintf(os.Stderr, "  skipped %s (%s): %s\n", f.Path, f.ErrorKind, f.Error)
				}
				contract.LogFatal("No usable input", err)
			case errors.Is(err, schema.ErrRunCancelled):
				contract.LogFatal("Run cancelled", err)
			default:
				contract.LogFatal("Cannot run analysis", err)
			}
		}
	},
}
