package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintCacheStatus(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalEntries:    3,
			LastEntryTime:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
			OldestEntryTime: time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local),
			TableSizeBytes:  8192,
		})

		out := buf.String()
		assert.Contains(t, out, "Cache Backend: sqlite")
		assert.Contains(t, out, "Total Entries: 3")
		assert.Contains(t, out, "Last Entry: 2026-01-02 03:04:05")
		assert.Contains(t, out, "Oldest Entry: 2025-12-01 00:00:00")
		assert.Contains(t, out, "Table Size: 8192 bytes")
	})

	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})

		assert.Contains(t, buf.String(), "Connected: false")
		assert.NotContains(t, buf.String(), "Total Entries")
	})
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStoreStatus{
		Backend:             "sqlite",
		Connected:           true,
		TotalRuns:           2,
		LastRunID:           2,
		LastRunTime:         time.Date(2026, 4, 1, 10, 0, 0, 0, time.Local),
		OldestRunTime:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
		TotalFilesProcessed: 5,
		TableSizes:          map[string]int64{runsTable: 2, runFilesTable: 5},
	})

	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Last Run ID: 2")
	assert.Contains(t, out, "Total Files Processed: 5")
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte(runFilesTable)),
		bytes.Index(buf.Bytes(), []byte(runsTable+":")),
		"Tables are listed by name")
}
