package parquet

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/bugsheet/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:  "runs",
			model: new(Run),
			columns: []string{
				"run_id", "run_uuid", "start_time", "end_time", "run_duration_ms",
				"files_total", "files_succeeded", "files_skipped", "total_rows",
				"fix_rate", "outcome", "config_params",
			},
		},
		{
			name:  "file outcomes",
			model: new(FileOutcome),
			columns: []string{
				"run_id", "file_path", "source", "status", "row_count",
				"error_kind", "error_message", "recorded_at",
			},
		},
		{
			name:  "detail rows",
			model: new(DetailRow),
			columns: []string{
				"run_uuid", "row_index", "source_file", "severity", "defect_type",
				"fix_status", "module", "reported_at", "row_json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func readFile[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	end := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	duration := int32(300000)
	rate := 0.75
	outcome := schema.RunCompleted
	params := `{"workers":4}`
	data := []Run{
		{
			RunID:          1,
			RunUUID:        "a-1",
			StartTime:      end.Add(-5 * time.Minute),
			EndTime:        &end,
			RunDurationMs:  &duration,
			FilesTotal:     3,
			FilesSucceeded: 2,
			FilesSkipped:   1,
			TotalRows:      40,
			FixRate:        &rate,
			Outcome:        &outcome,
			ConfigParams:   &params,
		},
		{
			RunID:     2,
			RunUUID:   "b-2",
			StartTime: end,
		},
	}

	require.NoError(t, WriteRunsParquet(data, outputPath))

	got := readFile[Run](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, "a-1", got[0].RunUUID)
	assert.Equal(t, int32(2), got[0].FilesSucceeded)
	assert.Equal(t, int32(40), got[0].TotalRows)
	require.NotNil(t, got[0].FixRate)
	assert.InDelta(t, 0.75, *got[0].FixRate, 1e-9)
	require.NotNil(t, got[0].Outcome)
	assert.Equal(t, schema.RunCompleted, *got[0].Outcome)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Millisecond)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].FixRate)
	assert.Nil(t, got[1].Outcome)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteFileOutcomesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "files.parquet")

	kind := schema.UnreadableFileKind
	msg := "unreadable file b.xlsx: zip: not a valid zip file"
	data := []FileOutcome{
		{RunID: 1, FilePath: "a.xlsx", Source: "a.xlsx", Status: "succeeded", RowCount: 10, RecordedAt: time.Now()},
		{RunID: 1, FilePath: "b.xlsx", Source: "b.xlsx", Status: "skipped", ErrorKind: &kind, ErrorMessage: &msg, RecordedAt: time.Now()},
	}

	require.NoError(t, WriteFileOutcomesParquet(data, outputPath))

	got := readFile[FileOutcome](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, int32(10), got[0].RowCount)
	assert.Nil(t, got[0].ErrorKind)
	require.NotNil(t, got[1].ErrorKind)
	assert.Equal(t, schema.UnreadableFileKind, *got[1].ErrorKind)
	assert.Equal(t, msg, *got[1].ErrorMessage)
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "An empty file still carries the footer")
	assert.Empty(t, readFile[Run](t, outputPath))
}

func TestWriteRunsParquet_BadPath(t *testing.T) {
	err := WriteRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}

func TestConvertRunRecords(t *testing.T) {
	outcome := schema.RunEmptyBatch
	records := []schema.RunRecord{
		{RunID: 7, RunUUID: "x", FilesTotal: 2, FilesSkipped: 2, Outcome: &outcome},
	}

	got := ConvertRunRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].RunID)
	assert.Equal(t, int32(2), got[0].FilesSkipped)
	assert.Equal(t, &outcome, got[0].Outcome)
}

func TestConvertFileOutcomeRecords(t *testing.T) {
	records := []schema.FileOutcomeRecord{
		{RunID: 3, FilePath: "dir/a.csv", Source: "a.csv", Status: "succeeded", RowCount: 5},
	}

	got := ConvertFileOutcomeRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, "dir/a.csv", got[0].FilePath)
	assert.Equal(t, int32(5), got[0].RowCount)
}

func TestConvertTable(t *testing.T) {
	table := &schema.Table{
		Name:    "merged",
		Columns: []string{"编号", "severity", "fix_status", "source_file"},
		Rows: [][]schema.Cell{
			{schema.NumberCell(1), schema.TextCell("S"), schema.TextCell("FIXED"), schema.TextCell("a.xlsx")},
			{schema.NumberCell(2), schema.TextCell("B"), schema.EmptyCell(), schema.TextCell("b.xlsx")},
		},
		Merged: true,
	}

	rows, err := ConvertTable(table, "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "run-1", first.RunUUID)
	assert.Equal(t, int32(1), first.RowIndex)
	require.NotNil(t, first.Severity)
	assert.Equal(t, "S", *first.Severity)
	require.NotNil(t, first.Source)
	assert.Equal(t, "a.xlsx", *first.Source)
	assert.Nil(t, first.Module, "Unbound field should be null")
	assert.Nil(t, first.DefectType)

	var values map[string]string
	require.NoError(t, json.Unmarshal([]byte(first.RowJSON), &values))
	assert.Equal(t, "1", values["编号"])
	assert.Equal(t, "FIXED", values["fix_status"])

	assert.Nil(t, rows[1].FixStatus, "Empty cell should be null")
}

func TestWriteDetailRows(t *testing.T) {
	table := &schema.Table{
		Columns: []string{"severity"},
		Rows:    [][]schema.Cell{{schema.TextCell("A")}, {schema.TextCell("C")}},
	}
	rows, err := ConvertTable(table, "run-2")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDetailRows(&buf, rows))

	reader := parquet.NewGenericReader[DetailRow](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	got := make([]DetailRow, reader.NumRows())
	n, err := reader.Read(got)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "C", *got[1].Severity)
}
