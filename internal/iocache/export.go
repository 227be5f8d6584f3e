package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/parquet"
)

// ExecuteRunsExport writes the run history to two Parquet files next to outputFile.
func ExecuteRunsExport(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to export run history")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[runFilesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	files, err := store.GetAllFileOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve file outcomes: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".run_files.parquet"
	if err := parquet.WriteFileOutcomesParquet(parquet.ConvertFileOutcomeRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write file outcomes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file outcomes to: %s\n", len(files), filesFile)
	return nil
}
