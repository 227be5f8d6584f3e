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

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Clearing removes the file or tables, so it must not hold them open
	if initStores {
		if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// sqliteFilePath returns the SQLite file a store uses: its connection string or the default.
func sqliteFilePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by analyze. No inputs are needed to manage the cache.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the spreadsheet load cache (improves performance)",
	Long: `Manage the cache of parsed spreadsheets that speeds up repeated runs.

Bugsheet caches each loaded table keyed by file path, size, modification time and
the vocabulary in use, so an unchanged file is not parsed again within seven days.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  bugsheet cache status

  # Clear cache after changing many files in place
  bugsheet cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached tables",
	Long: `Delete all cached tables from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  bugsheet cache clear

  # Clear MySQL cache (set connection string via env variable)
  BUGSHEET_CACHE_BACKEND=mysql BUGSHEET_CACHE_DB_CONNECT="..." bugsheet cache clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return cacheSetup(false)
	},
	Run: func(_ *cobra.Command, _ []string) {
		dbPath := sqliteFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, dbPath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the load cache.

Displays:
- Backend type and connection status
- Total number of cached tables
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  bugsheet cache status`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return cacheSetup(true)
	},
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetLoadStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("caching is disabled (cache-backend is none)"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
