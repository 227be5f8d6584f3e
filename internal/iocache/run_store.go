package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// Table names for run history.
const (
	runsTable     = "bugsheet_runs"
	runFilesTable = "bugsheet_run_files"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (%s)`,
		quoteTableName(runsTable, rs.backend), placeholders(rs.backend, 3))
	args := []any{runUUID, formatTime(startTime, rs.backend), string(configJSON)}

	var runID int64
	if rs.backend == schema.PostgreSQLBackend {
		err = rs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	} else {
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordFileOutcome stores what happened to one input file.
func (rs *RunStoreImpl) RecordFileOutcome(runID int64, outcome schema.FileOutcome, recordedAt time.Time) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, file_path, source, status, row_count, error_kind, error_message, recorded_at)
		VALUES (%s)`, quoteTableName(runFilesTable, rs.backend), placeholders(rs.backend, 8))
	_, err := rs.db.Exec(query,
		runID,
		outcome.Path,
		outcome.Source,
		string(outcome.Status),
		outcome.Rows,
		nullString(outcome.ErrorKind),
		nullString(outcome.Error),
		formatTime(recordedAt, rs.backend),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file outcome: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totals schema.RunTotals) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	start := scanTime{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	p := func(i int) string { return placeholder(rs.backend, i) }
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, files_total = %s, files_succeeded = %s,
		files_skipped = %s, total_rows = %s, fix_rate = %s, outcome = %s WHERE run_id = %s`,
		quotedTableName, p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9))
	_, err = rs.db.Exec(update,
		formatTime(endTime, rs.backend),
		durationMs,
		totals.FilesTotal,
		totals.FilesSucceeded,
		totals.FilesSkipped,
		totals.TotalRows,
		totals.FixRate,
		totals.Outcome,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(files_total), 0) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns, &status.TotalFilesProcessed); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := scanTime{backend: rs.backend}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := scanTime{backend: rs.backend}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range []string{runsTable, runFilesTable} {
		var count int64
		row = rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs ordered by ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, files_total, files_succeeded,
		files_skipped, total_rows, fix_rate, outcome, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := scanTime{backend: rs.backend}
		end := scanTime{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.RunUUID, start.dest(), end.dest(), &record.RunDurationMs,
			&record.FilesTotal, &record.FilesSucceeded, &record.FilesSkipped, &record.TotalRows,
			&record.FixRate, &record.Outcome, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllFileOutcomes retrieves all file outcomes ordered by run and path.
func (rs *RunStoreImpl) GetAllFileOutcomes() ([]schema.FileOutcomeRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, source, status, row_count, error_kind, error_message, recorded_at
		FROM %s ORDER BY run_id, file_path, file_id`, quoteTableName(runFilesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileOutcomeRecord
	for rows.Next() {
		var record schema.FileOutcomeRecord
		recorded := scanTime{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.FilePath, &record.Source, &record.Status, &record.RowCount,
			&record.ErrorKind, &record.ErrorMessage, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan file outcome: %w", err)
		}
		recordedAt, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if recordedAt != nil {
			record.RecordedAt = *recordedAt
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file outcomes: %w", err)
	}
	return results, nil
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
