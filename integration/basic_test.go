//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyzeWritesReport runs the full pipeline and checks the workbook it leaves behind.
func TestAnalyzeWritesReport(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir)
	reportDir := filepath.Join(dir, "reports")

	args := append([]string{"analyze", "--report-dir", reportDir, "--report-prefix", "weekly"}, inputs...)
	output, err := runBugsheet(t, dir, args...)
	require.NoError(t, err)
	assert.Contains(t, output, "processed 2 file(s) successfully")

	reports, err := filepath.Glob(filepath.Join(reportDir, "weekly_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	output, err = runBugsheet(t, dir, "verify", reports[0])
	require.NoError(t, err)
	assert.Contains(t, output, "分析统计")
}

// TestAnalyzeJSONOutput checks that machine-readable output is written cleanly to a file.
func TestAnalyzeJSONOutput(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir)
	outFile := filepath.Join(dir, "result.json")

	args := append([]string{"analyze", "--report=no", "--output", "json", "--output-file", outFile}, inputs...)
	_, err := runBugsheet(t, dir, args...)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var result struct {
		Stats struct {
			TotalRows int `json:"total_rows"`
		} `json:"stats"`
		Summary struct {
			Succeeded int `json:"succeeded"`
		} `json:"summary"`
		ReportPath string `json:"report_path"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 3, result.Stats.TotalRows)
	assert.Equal(t, 2, result.Summary.Succeeded)
	assert.Empty(t, result.ReportPath)
}

// TestAnalyzeEmptyBatch checks that a batch without a usable file fails and lists the skips.
func TestAnalyzeEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, os.WriteFile(broken, []byte("not a workbook"), 0o600))

	output, err := runBugsheet(t, dir, "analyze", "--report-dir", dir, broken)
	require.Error(t, err)
	assert.Contains(t, output, "broken.xlsx")
	assert.Contains(t, output, "No usable input")

	reports, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []string{broken}, reports)
}

// TestVocabPrintsDefaults checks the effective vocabulary dump.
func TestVocabPrintsDefaults(t *testing.T) {
	dir := t.TempDir()
	output, err := runBugsheet(t, dir, "vocab")
	require.NoError(t, err)
	assert.Contains(t, output, "vocabulary:")
	assert.Contains(t, output, "严重级别")
}

// TestRunsWithSQLite records a run and exports the history.
func TestRunsWithSQLite(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir)

	args := append([]string{"analyze", "--report=no", "--run-backend", "sqlite"}, inputs...)
	_, err := runBugsheet(t, dir, args...)
	require.NoError(t, err)

	output, err := runBugsheet(t, dir, "runs", "status", "--run-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 1")

	output, err = runBugsheet(t, dir, "runs", "export", "--run-backend", "sqlite", "--output-file", filepath.Join(dir, "history"))
	require.NoError(t, err)
	assert.Contains(t, output, "Exported 1 runs")
	assert.FileExists(t, filepath.Join(dir, "history.runs.parquet"))
	assert.FileExists(t, filepath.Join(dir, "history.run_files.parquet"))

	_, err = runBugsheet(t, dir, "runs", "clear", "--run-backend", "sqlite")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, ".bugsheet_runs.db"))
}

// TestCacheStatusAfterRun checks that loaded tables land in the default SQLite cache.
func TestCacheStatusAfterRun(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir)

	args := append([]string{"analyze", "--report=no"}, inputs...)
	_, err := runBugsheet(t, dir, args...)
	require.NoError(t, err)

	output, err := runBugsheet(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Entries: 2")

	_, err = runBugsheet(t, dir, "cache", "clear")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, ".bugsheet_cache.db"))
}
