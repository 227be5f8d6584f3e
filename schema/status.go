package schema

import "time"

// CacheStatus represents the status of the load cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStoreStatus represents the status of the run history store.
type RunStoreStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalFilesProcessed int              `json:"total_files_processed"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// RunTotals is what a finished run reports back to the run store.
type RunTotals struct {
	FilesTotal     int
	FilesSucceeded int
	FilesSkipped   int
	TotalRows      int
	FixRate        float64
	Outcome        string
}

// RunRecord represents a row from the bugsheet_runs table.
type RunRecord struct {
	RunID          int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	FilesTotal     int32
	FilesSucceeded int32
	FilesSkipped   int32
	TotalRows      int32
	FixRate        *float64
	Outcome        *string
	ConfigParams   *string
}

// FileOutcomeRecord represents a row from the bugsheet_run_files table.
type FileOutcomeRecord struct {
	RunID        int64
	FilePath     string
	Source       string
	Status       string
	RowCount     int32
	ErrorKind    *string
	ErrorMessage *string
	RecordedAt   time.Time
}
