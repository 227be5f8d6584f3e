package core

import (
	"fmt"
	"time"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// runTracker records one run in the run store. Every method is a no-op when
// no store is configured, and store failures only produce warnings.
type runTracker struct {
	store contract.RunStore
	id    int64
}

// beginRun opens a run record for the given run UUID.
func beginRun(mgr contract.CacheManager, runUUID string, start time.Time, cfg *contract.Config) *runTracker {
	t := &runTracker{}
	if mgr == nil {
		return t
	}
	store := mgr.GetRunStore()
	if store == nil {
		return t
	}
	id, err := store.BeginRun(runUUID, start, cfg.ConfigParams())
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return t
	}
	t.store = store
	t.id = id
	return t
}

// recordFiles stores every per-file outcome of the run.
func (t *runTracker) recordFiles(outcomes []schema.FileOutcome) {
	if t.store == nil {
		return
	}
	now := time.Now()
	for _, outcome := range outcomes {
		if err := t.store.RecordFileOutcome(t.id, outcome, now); err != nil {
			contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", outcome.Path), err)
		}
	}
}

// end finalizes the run record.
func (t *runTracker) end(totals schema.RunTotals) {
	if t.store == nil {
		return
	}
	if err := t.store.EndRun(t.id, time.Now(), totals); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// totalsFor summarizes outcomes for the run store.
func totalsFor(outcomes []schema.FileOutcome, outcome string) schema.RunTotals {
	totals := schema.RunTotals{FilesTotal: len(outcomes), Outcome: outcome}
	for _, o := range outcomes {
		if o.Status == schema.FileSucceeded {
			totals.FilesSucceeded++
			totals.TotalRows += o.Rows
		} else {
			totals.FilesSkipped++
		}
	}
	return totals
}
