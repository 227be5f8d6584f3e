package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/bugsheet/internal/iocache"
	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTotalsFor(t *testing.T) {
	outcomes := []schema.FileOutcome{
		{Status: schema.FileSucceeded, Rows: 3},
		{Status: schema.FileSkipped, Rows: 0},
		{Status: schema.FileSucceeded, Rows: 4},
	}
	totals := totalsFor(outcomes, schema.RunCompleted)
	assert.Equal(t, schema.RunTotals{
		FilesTotal:     3,
		FilesSucceeded: 2,
		FilesSkipped:   1,
		TotalRows:      7,
		Outcome:        schema.RunCompleted,
	}, totals)
}

func TestRunTrackerWithoutStore(t *testing.T) {
	tracker := beginRun(nil, "run", time.Now(), testConfig())
	assert.Nil(t, tracker.store)
	tracker.recordFiles([]schema.FileOutcome{{Path: "a.csv"}})
	tracker.end(schema.RunTotals{})
}

func TestRunTrackerWarnsOnStoreErrors(t *testing.T) {
	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", "run", mock.Anything, mock.Anything).Return(int64(1), nil)
	runs.On("RecordFileOutcome", int64(1), mock.Anything, mock.Anything).Return(errors.New("write failed"))
	runs.On("EndRun", int64(1), mock.Anything, mock.Anything).Return(errors.New("write failed"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(runs)

	tracker := beginRun(mgr, "run", time.Now(), testConfig())
	tracker.recordFiles([]schema.FileOutcome{{Path: "a.csv"}, {Path: "b.csv"}})
	tracker.end(schema.RunTotals{Outcome: schema.RunCompleted})

	runs.AssertNumberOfCalls(t, "RecordFileOutcome", 2)
	runs.AssertNumberOfCalls(t, "EndRun", 1)
}
