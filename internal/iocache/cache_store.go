package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// CacheStoreImpl keeps serialized tables in one table of any supported backend.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = (*CacheStoreImpl)(nil)

// NewCacheStore opens the backend and makes sure tableName exists.
// The None backend yields a store that never hits and drops every write.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		return &CacheStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, GetDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// loadCacheColumns lists the column types of the load cache per backend:
// key, serialized table, format version, unix time of the write.
var loadCacheColumns = map[schema.DatabaseBackend][4]string{
	schema.MySQLBackend:      {"VARCHAR(64) PRIMARY KEY", "LONGBLOB NOT NULL", "INT NOT NULL", "BIGINT NOT NULL"},
	schema.PostgreSQLBackend: {"TEXT PRIMARY KEY", "BYTEA NOT NULL", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	schema.SQLiteBackend:     {"TEXT PRIMARY KEY", "BLOB NOT NULL", "INTEGER NOT NULL", "INTEGER NOT NULL"},
}

// getCreateTableQuery returns the CREATE TABLE statement of the load cache.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	types, ok := loadCacheColumns[backend]
	if !ok {
		types = loadCacheColumns[schema.SQLiteBackend]
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	table_key %s,
	table_json %s,
	format_version %s,
	cached_at %s
)`, quoteTableName(tableName, backend), types[0], types[1], types[2], types[3])
}

// Get returns the serialized table, its format version and write time.
// A missing key is reported as sql.ErrNoRows.
func (ps *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ps.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT table_json, format_version, cached_at FROM %s WHERE table_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	if err := ps.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set writes the serialized table under key, replacing any earlier entry.
func (ps *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ps.db == nil {
		return nil
	}
	_, err := ps.db.Exec(ps.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// getUpsertQuery returns the statement that writes or overwrites one cached table.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	table := quoteTableName(ps.tableName, ps.backend)
	insert := fmt.Sprintf("INSERT INTO %s (table_key, table_json, format_version, cached_at) VALUES (%s)",
		table, placeholders(ps.backend, 4))

	switch ps.backend {
	case schema.MySQLBackend:
		return insert + ` AS incoming ON DUPLICATE KEY UPDATE
	table_json = incoming.table_json, format_version = incoming.format_version, cached_at = incoming.cached_at`
	case schema.PostgreSQLBackend:
		return insert + ` ON CONFLICT (table_key) DO UPDATE SET
	table_json = EXCLUDED.table_json, format_version = EXCLUDED.format_version, cached_at = EXCLUDED.cached_at`
	default:
		return strings.Replace(insert, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	}
}

// Close releases the connection.
func (ps *CacheStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus counts the cached tables and reports their age range.
func (ps *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(ps.backend), Connected: ps.db != nil}
	if ps.db == nil {
		return status, nil
	}

	table := quoteTableName(ps.tableName, ps.backend)
	row := ps.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to count cached tables: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = ps.db.QueryRow(fmt.Sprintf("SELECT MAX(cached_at), MIN(cached_at) FROM %s", table))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)
	status.TableSizeBytes = ps.tableSize(status.TotalEntries)

	return status, nil
}

// tableSize asks the backend for the table's footprint, falling back to a rough estimate.
func (ps *CacheStoreImpl) tableSize(entries int) int64 {
	estimate := int64(entries) * 1000
	var size int64

	switch ps.backend {
	case schema.SQLiteBackend:
		row := ps.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		row := ps.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, ps.tableName)
		if err := row.Scan(&size); err != nil {
			return estimate
		}
		return size

	case schema.PostgreSQLBackend:
		row := ps.db.QueryRow("SELECT pg_total_relation_size($1)", ps.tableName)
		if err := row.Scan(&size); err != nil {
			return estimate
		}
		return size
	}
	return estimate
}
