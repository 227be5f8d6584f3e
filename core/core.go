// Package core has the pipeline that turns bug-report spreadsheets into an analysis report.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/huangsam/bugsheet/core/report"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/outwriter"
	"github.com/huangsam/bugsheet/schema"
)

// progressBuffer bounds the progress channel; events beyond it are dropped.
const progressBuffer = 64

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAnalyze runs the pipeline over the configured inputs, writes the xlsx
// report and prints the summary. It serves as the main entry point for 'analyze'.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, err := runAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintRunResult(result, cfg)
}

// GetAnalysisResult runs the pipeline quietly and returns the result instead of printing it.
// The xlsx report is still written when the config asks for it.
func GetAnalysisResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.RunResult, error) {
	return runAnalysis(WithSuppressHeader(ctx), cfg, mgr)
}

// ExecuteVerify checks the structure of an existing report file.
func ExecuteVerify(path string) error {
	if err := outwriter.VerifyWorkbook(path); err != nil {
		return err
	}
	fmt.Printf("✅ %s has sheets %s and %s\n", path, schema.DetailSheetName, schema.StatsSheetName)
	return nil
}

func runAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.RunResult, error) {
	verbose := !shouldSuppressHeader(ctx)

	// Header and progress go to stderr so stdout stays parseable for json/csv/parquet
	var events chan schema.ProgressEvent
	var wg sync.WaitGroup
	if verbose {
		outwriter.LogRunHeader(os.Stderr, cfg, cfg.Inputs)
		events = make(chan schema.ProgressEvent, progressBuffer)
		wg.Go(func() {
			for ev := range events {
				outwriter.PrintProgress(os.Stderr, ev, cfg)
			}
		})
	}

	result, err := RunPipeline(ctx, cfg, cfg.Inputs, mgr, events)
	if events != nil {
		close(events)
		wg.Wait()
	}
	if err != nil {
		return nil, err
	}

	if cfg.WriteReport {
		path, err := writeReport(result, cfg)
		if err != nil {
			return nil, err
		}
		result.ReportPath = path
	}
	return result, nil
}

// writeReport renders the workbook into the report directory and returns its path.
func writeReport(result *schema.RunResult, cfg *contract.Config) (string, error) {
	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	name := report.FileName(cfg.ReportPrefix, result.Report.Metadata.GeneratedAt)
	path := filepath.Join(cfg.ReportDir, name)
	if err := outwriter.WriteWorkbook(result.Report, path); err != nil {
		return "", err
	}
	return path, nil
}
