package schema

import (
	"fmt"
	"time"
)

// FileOutcome is what happened to one input file.
type FileOutcome struct {
	Path      string     `json:"path"`
	Source    string     `json:"source"`
	Status    FileStatus `json:"status"`
	Sheet     string     `json:"sheet,omitempty"`
	Rows      int        `json:"rows"`
	CacheHit  bool       `json:"cache_hit,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty"`
	Error     string     `json:"error,omitempty"`

	// What cleaning removed or renamed before normalization
	DroppedRows    int      `json:"dropped_rows,omitempty"`
	DroppedColumns []string `json:"dropped_columns,omitempty"`
	RenamedHeaders int      `json:"renamed_headers,omitempty"`
}

// RunSummary reports how a run went across all inputs.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Files     []FileOutcome `json:"files"`
	Anomalies []Anomaly     `json:"anomalies,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// String renders the one-line success/failure message.
func (s RunSummary) String() string {
	total := s.Succeeded + s.Skipped
	if s.Succeeded == 0 {
		return fmt.Sprintf("no usable input: %d of %d file(s) skipped", s.Skipped, total)
	}
	if s.Skipped == 0 {
		return fmt.Sprintf("processed %d file(s) successfully", s.Succeeded)
	}
	return fmt.Sprintf("processed %d file(s): %d succeeded, %d skipped", total, s.Succeeded, s.Skipped)
}

// SkippedFiles returns the outcomes of files that were not used.
func (s RunSummary) SkippedFiles() []FileOutcome {
	var skipped []FileOutcome
	for _, f := range s.Files {
		if f.Status == FileSkipped {
			skipped = append(skipped, f)
		}
	}
	return skipped
}

// RunResult bundles everything a successful run produced.
type RunResult struct {
	Table      *Table         `json:"-"`
	Stats      AggregateStats `json:"stats"`
	Report     ReportModel    `json:"report"`
	Summary    RunSummary     `json:"summary"`
	ReportPath string         `json:"report_path,omitempty"`
}

// ProgressEvent is sent on the optional progress channel of a run.
type ProgressEvent struct {
	Stage Stage  `json:"stage"`
	Path  string `json:"path,omitempty"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Err   error  `json:"-"`
}

// Run outcomes recorded in run history.
const (
	RunCompleted  = "completed"
	RunEmptyBatch = "empty_batch"
	RunCancelled  = "cancelled"
	RunFailed     = "failed"
)
