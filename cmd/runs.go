package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/iocache"
	"github.com/huangsam/bugsheet/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackend reads and validates the run history backend settings.
func runsBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("run-backend")
	connStr := viper.GetString("run-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
func runsSetup(initStores bool) error {
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}

	if initStores {
		// No load caching for run history commands
		if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
			return fmt.Errorf("failed to initialize run history: %w", err)
		}
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runStoreOrFail returns the run store, exiting when tracking is disabled.
func runStoreOrFail(action string) contract.RunStore {
	store := iocache.Manager.GetRunStore()
	if store == nil {
		contract.LogFatal(action, errors.New("run tracking is disabled. Set --run-backend to sqlite, mysql or postgresql"))
	}
	return store
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by analyze.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of analysis runs and exports",
	Long: `Manage the run history recorded when --run-backend is set.

Each run stores:
- Run metadata (UUID, timestamps, configuration, duration, outcome)
- Totals (files succeeded and skipped, rows, fix rate)
- One outcome per input file (status, rows, error kind)

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Record runs in SQLite and check the history
  bugsheet analyze ./exports --run-backend sqlite
  bugsheet runs status --run-backend sqlite`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and per-file outcomes.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  bugsheet runs export --output-file backup
  bugsheet runs clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := sqliteFilePath(cfg.RunDBConnect, contract.GetRunDBFilePath())
		if err := iocache.ClearRuns(cfg.RunBackend, dbPath, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total files processed across all runs
- Database table sizes

Examples:
  bugsheet runs status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		status, err := runStoreOrFail("Failed to get run status").GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to Parquet format for use with analytics tools.

Exports two datasets next to --output-file:
- <output-file>.runs.parquet      - one row per run
- <output-file>.run_files.parquet - one row per input file of each run

Requires: --output-file parameter

Examples:
  bugsheet runs export --output-file history
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('history.runs.parquet') GROUP BY 1"`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(iocache.Manager.GetRunStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  bugsheet runs migrate --run-backend sqlite

  # Rollback to initial state
  bugsheet runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Migrations must run on a fresh database, so no store is opened
		return runsSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
