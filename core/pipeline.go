package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bugsheet/core/clean"
	"github.com/huangsam/bugsheet/core/load"
	"github.com/huangsam/bugsheet/core/merge"
	"github.com/huangsam/bugsheet/core/norm"
	"github.com/huangsam/bugsheet/core/report"
	"github.com/huangsam/bugsheet/core/stats"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
	"golang.org/x/sync/errgroup"
)

// fileResult is the slot one worker fills for one input.
type fileResult struct {
	table     *schema.Table
	outcome   schema.FileOutcome
	anomalies []schema.Anomaly
	err       error
}

// RunPipeline loads, cleans and normalizes every input in parallel, merges the
// usable tables in input order, analyzes the result and builds the report model.
//
// Files that cannot be used are skipped and recorded in the summary. When no file
// is usable the run fails with an EmptyBatchError, and a cancelled context fails it
// with ErrRunCancelled. events may be nil; sends on it never block.
func RunPipeline(ctx context.Context, cfg *contract.Config, paths []string, mgr contract.CacheManager, events chan<- schema.ProgressEvent) (*schema.RunResult, error) {
	start := time.Now()
	runID := runUUIDFrom(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	tracker := beginRun(mgr, runID, start, cfg)

	inputs := ResolveInputs(paths, cfg.Extensions)
	total := len(inputs)
	emit(events, schema.ProgressEvent{Stage: schema.StageStart, Total: total})

	inputPaths := make([]string, total)
	for i, in := range inputs {
		inputPaths[i] = in.Path
	}
	names := sourceNames(inputPaths)

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetLoadStore()
	}
	normalizer := norm.New(cfg.Vocabulary)
	opts := load.Options{
		Extensions:   cfg.Extensions,
		Sheet:        cfg.Sheet,
		SheetMatcher: normalizer.MatchesAnyField,
	}

	results := make([]fileResult, total)
	var done atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(max(cfg.Workers, 1))
	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := processFile(in, names[i], cfg, opts, normalizer, store)
			results[i] = res

			stage := schema.StageFileDone
			if res.outcome.Status == schema.FileSkipped {
				stage = schema.StageFileSkipped
			}
			emit(events, schema.ProgressEvent{
				Stage: stage,
				Path:  in.Path,
				Done:  int(done.Add(1)),
				Total: total,
				Err:   res.err,
			})
			return nil
		})
	}
	_ = g.Wait() // workers report through their result slots

	if err := ctx.Err(); err != nil {
		tracker.end(schema.RunTotals{FilesTotal: total, Outcome: schema.RunCancelled})
		return nil, fmt.Errorf("%w: %w", schema.ErrRunCancelled, err)
	}

	summary := schema.RunSummary{RunID: runID, Files: make([]schema.FileOutcome, total)}
	var tables []*schema.Table
	var tableNames []string
	for i, res := range results {
		summary.Files[i] = res.outcome
		summary.Anomalies = append(summary.Anomalies, res.anomalies...)
		if res.outcome.Status == schema.FileSucceeded {
			summary.Succeeded++
			tables = append(tables, res.table)
			tableNames = append(tableNames, names[i])
		} else {
			summary.Skipped++
		}
	}
	tracker.recordFiles(summary.Files)

	if len(tables) == 0 {
		tracker.end(totalsFor(summary.Files, schema.RunEmptyBatch))
		return nil, &schema.EmptyBatchError{Skipped: summary.Files}
	}

	table := tables[0]
	if len(tables) > 1 {
		emit(events, schema.ProgressEvent{Stage: schema.StageMerge, Done: len(tables), Total: total})
		merged, err := merge.Merge(tables, tableNames)
		if err != nil {
			tracker.end(totalsFor(summary.Files, schema.RunFailed))
			return nil, err
		}
		table = merged
	}

	emit(events, schema.ProgressEvent{Stage: schema.StageAnalyze, Done: total, Total: total})
	aggregate := stats.Analyze(table)
	meta := schema.ReportMetadata{
		GeneratedAt: time.Now(),
		SourceCount: len(tables),
		RunID:       runID,
		Sources:     tableNames,
	}
	model := report.Build(table, aggregate, meta, report.Options{PreviewRows: cfg.PreviewRows})

	totals := totalsFor(summary.Files, schema.RunCompleted)
	totals.FixRate = aggregate.FixRate
	tracker.end(totals)

	summary.Duration = time.Since(start)
	emit(events, schema.ProgressEvent{Stage: schema.StageDone, Done: total, Total: total})

	return &schema.RunResult{
		Table:   table,
		Stats:   aggregate,
		Report:  model,
		Summary: summary,
	}, nil
}

// processFile runs load, clean and normalize for one input.
// Any error stays inside the returned outcome.
func processFile(in Input, name string, cfg *contract.Config, opts load.Options, normalizer *norm.Normalizer, store contract.CacheStore) fileResult {
	outcome := schema.FileOutcome{Path: in.Path, Source: name}
	if in.Err != nil {
		return skipped(outcome, in.Err)
	}

	raw, hit, err := cachedLoad(in.Path, cfg, opts, store)
	if err != nil {
		return skipped(outcome, err)
	}
	outcome.CacheHit = hit
	outcome.Sheet = raw.Sheet

	// Tag every anomaly with the same name the merged rows carry
	raw.Name = name

	cleaned, validation := clean.Clean(raw)
	normalized, bindAnomalies := normalizer.Normalize(cleaned)

	outcome.Status = schema.FileSucceeded
	outcome.Rows = normalized.RowCount()
	outcome.DroppedRows = validation.DroppedRows
	outcome.DroppedColumns = validation.DroppedColumns
	outcome.RenamedHeaders = len(validation.HeaderCollisions)
	return fileResult{
		table:     normalized,
		outcome:   outcome,
		anomalies: append(validation.Anomalies, bindAnomalies...),
	}
}

func skipped(outcome schema.FileOutcome, err error) fileResult {
	outcome.Status = schema.FileSkipped
	outcome.ErrorKind = schema.ErrorKind(err)
	outcome.Error = err.Error()
	if outcome.Source == "" {
		outcome.Source = filepath.Base(outcome.Path)
	}
	return fileResult{outcome: outcome, err: err}
}

// emit delivers an event without ever blocking the pipeline.
func emit(events chan<- schema.ProgressEvent, ev schema.ProgressEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
	}
}
