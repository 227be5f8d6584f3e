package cmd

import (
	"github.com/huangsam/bugsheet/core"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/spf13/cobra"
)

// verifyCmd checks the structure of a report written by analyze.
var verifyCmd = &cobra.Command{
	Use:   "verify <report.xlsx>",
	Short: "Check that a report has its detail and statistics sheets.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteVerify(args[0]); err != nil {
			contract.LogFatal("Report verification failed", err)
		}
	},
}
