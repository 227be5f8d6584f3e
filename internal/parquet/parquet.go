// Package parquet exports run history and report rows to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/bugsheet/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one pipeline run. It maps to the bugsheet_runs database table.
type Run struct {
	// RunID is the store's identifier for the run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the identifier printed in reports
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run finished (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	FilesTotal     int32 `parquet:"files_total,snappy"`
	FilesSucceeded int32 `parquet:"files_succeeded,snappy"`
	FilesSkipped   int32 `parquet:"files_skipped,snappy"`
	TotalRows      int32 `parquet:"total_rows,snappy"`

	// FixRate is the overall fix rate of the merged table (nullable)
	FixRate *float64 `parquet:"fix_rate,optional,snappy"`

	// Outcome is completed, empty_batch, cancelled or failed (nullable while running)
	Outcome *string `parquet:"outcome,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileOutcome is what one run did with one input file.
// It maps to the bugsheet_run_files database table.
type FileOutcome struct {
	RunID        int64     `parquet:"run_id,snappy"`
	FilePath     string    `parquet:"file_path,snappy"`
	Source       string    `parquet:"source,snappy"`
	Status       string    `parquet:"status,snappy"`
	RowCount     int32     `parquet:"row_count,snappy"`
	ErrorKind    *string   `parquet:"error_kind,optional,snappy"`
	ErrorMessage *string   `parquet:"error_message,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// DetailRow is one normalized bug record. Canonical fields get their own
// columns; RowJSON keeps every column of the row keyed by header.
type DetailRow struct {
	RunUUID    string  `parquet:"run_uuid,snappy"`
	RowIndex   int32   `parquet:"row_index,snappy"`
	Source     *string `parquet:"source_file,optional,snappy"`
	Severity   *string `parquet:"severity,optional,snappy"`
	DefectType *string `parquet:"defect_type,optional,snappy"`
	FixStatus  *string `parquet:"fix_status,optional,snappy"`
	Module     *string `parquet:"module,optional,snappy"`
	ReportedAt *string `parquet:"reported_at,optional,snappy"`
	RowJSON    string  `parquet:"row_json,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteFileOutcomesParquet writes file outcomes to a Parquet file.
func WriteFileOutcomesParquet(data []FileOutcome, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteDetailRows streams detail rows as Parquet to w.
func WriteDetailRows(w io.Writer, data []DetailRow) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

// write derives the Parquet schema from T's struct tags.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:          record.RunID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			FilesTotal:     record.FilesTotal,
			FilesSucceeded: record.FilesSucceeded,
			FilesSkipped:   record.FilesSkipped,
			TotalRows:      record.TotalRows,
			FixRate:        record.FixRate,
			Outcome:        record.Outcome,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertFileOutcomeRecords converts stored file outcomes for Parquet export.
func ConvertFileOutcomeRecords(records []schema.FileOutcomeRecord) []FileOutcome {
	result := make([]FileOutcome, len(records))
	for i, record := range records {
		result[i] = FileOutcome{
			RunID:        record.RunID,
			FilePath:     record.FilePath,
			Source:       record.Source,
			Status:       record.Status,
			RowCount:     record.RowCount,
			ErrorKind:    record.ErrorKind,
			ErrorMessage: record.ErrorMessage,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}

// ConvertTable flattens a normalized table into detail rows.
func ConvertTable(t *schema.Table, runUUID string) ([]DetailRow, error) {
	fieldCols := map[schema.Field]int{
		schema.SourceFileField: t.FieldIndex(schema.SourceFileField),
	}
	for _, f := range schema.BindableFields {
		fieldCols[f] = t.FieldIndex(f)
	}
	value := func(row []schema.Cell, f schema.Field) *string {
		col := fieldCols[f]
		if col < 0 || row[col].IsEmpty() {
			return nil
		}
		s := row[col].String()
		return &s
	}

	result := make([]DetailRow, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]string, len(t.Columns))
		for c, name := range t.Columns {
			values[name] = row[c].String()
		}
		data, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", i+1, err)
		}
		result[i] = DetailRow{
			RunUUID:    runUUID,
			RowIndex:   int32(i + 1),
			Source:     value(row, schema.SourceFileField),
			Severity:   value(row, schema.SeverityField),
			DefectType: value(row, schema.DefectTypeField),
			FixStatus:  value(row, schema.FixStatusField),
			Module:     value(row, schema.ModuleField),
			ReportedAt: value(row, schema.ReportedAtField),
			RowJSON:    string(data),
		}
	}
	return result, nil
}
