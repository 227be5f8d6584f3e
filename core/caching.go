package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/bugsheet/core/load"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached table stays usable.
const cacheTTL = 7 * 24 * time.Hour

// cachedLoad reads path through the load cache when one is configured.
// The boolean reports a cache hit.
func cachedLoad(path string, cfg *contract.Config, opts load.Options, store contract.CacheStore) (*schema.Table, bool, error) {
	if store == nil {
		table, err := load.Load(path, opts)
		return table, false, err
	}

	key, ok := generateCacheKey(path, cfg)
	if !ok {
		// Let the loader report why the file cannot be used
		table, err := load.Load(path, opts)
		return table, false, err
	}

	// Check for cache hit
	if table := checkCacheHit(store, key); table != nil {
		return table, true, nil
	}

	// Cache miss: compute and store
	table, err := computeAndStore(path, opts, store, key)
	return table, false, err
}

// checkCacheHit attempts to retrieve and validate a cached table
func checkCacheHit(store contract.CacheStore, key string) *schema.Table {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var table schema.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return &table
}

// computeAndStore loads the table and stores it in cache
func computeAndStore(path string, opts load.Options, store contract.CacheStore, key string) (*schema.Table, error) {
	table, err := load.Load(path, opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(table); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache "+filepath.Base(path), err)
		}
	}
	return table, nil
}

// generateCacheKey identifies a file's contents and every setting that shapes how it is read.
// It fails when the file cannot be inspected.
func generateCacheKey(path string, cfg *contract.Config) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() || !load.Supported(abs, cfg.Extensions) {
		return "", false
	}

	key := fmt.Sprintf("%s:%d:%d:%s:%s:%s",
		abs,
		info.Size(),
		info.ModTime().UnixNano(),
		cfg.Sheet,
		strings.Join(cfg.Extensions, ","),
		cfg.Vocabulary.Fingerprint(),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), true
}
