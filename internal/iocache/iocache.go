// Package iocache holds the durable stores: the load cache and the run history.
package iocache

import (
	"errors"
	"sync"

	"github.com/huangsam/bugsheet/internal/contract"
)

// CacheStoreManager hands out the load cache and the run store to the pipeline.
// Either store may be nil, which callers treat as "feature off". The stores are
// installed once at startup and closed together at shutdown.
type CacheStoreManager struct {
	mu   sync.RWMutex
	load contract.CacheStore
	runs contract.RunStore
}

var _ contract.CacheManager = (*CacheStoreManager)(nil)

// GetLoadStore returns the load cache store, or nil when caching is off.
func (mgr *CacheStoreManager) GetLoadStore() contract.CacheStore {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.load
}

// GetRunStore returns the run history store, or nil when tracking is off.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.runs
}

func (mgr *CacheStoreManager) install(load contract.CacheStore, runs contract.RunStore) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.load = load
	mgr.runs = runs
}

// close shuts both stores and detaches them, so later lookups see nil.
func (mgr *CacheStoreManager) close() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	var errs []error
	if mgr.load != nil {
		errs = append(errs, mgr.load.Close())
	}
	if mgr.runs != nil {
		errs = append(errs, mgr.runs.Close())
	}
	mgr.load, mgr.runs = nil, nil
	return errors.Join(errs...)
}
