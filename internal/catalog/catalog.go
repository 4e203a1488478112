// Package catalog implements the Store Handler: the global name→Store
// mapping, its CreateStore/DropStore/ListStores/PurgeStores/GetStore
// operations, and the reader-writer discipline that mediates access to
// it independently of any single store's own internal locking.
package catalog

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/store"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

const sizeCacheCapacity = 4096

// Catalog owns the global mapping from store name to Store. All
// mutating operations (CreateStore, DropStore, PurgeStores) take the
// writer lock; GetStore and ListStores take the reader lock, matching
// the reader-writer discipline named for the Store Handler.
type Catalog struct {
	mu     sync.RWMutex
	stores map[string]*store.Store

	sizeCache *lru.Cache[string, sizeEstimate]
	audit     *AuditLog // nil when disabled
}

// sizeEstimate caches a store's size estimate alongside the entry count
// it was computed at, so ListStores can detect staleness with an O(1)
// Len() check instead of re-summing every entry on every call.
type sizeEstimate struct {
	bytes int64
	len   int
}

// Option configures a Catalog at construction time.
type Option func(*Catalog)

// WithAuditLog enables append-only audit logging of CreateStore/
// DropStore/PurgeStores calls to the given log.
func WithAuditLog(log *AuditLog) Option {
	return func(c *Catalog) { c.audit = log }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	cache, _ := lru.New[string, sizeEstimate](sizeCacheCapacity)
	c := &Catalog{
		stores:    make(map[string]*store.Store),
		sizeCache: cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateStore creates a new store. If a store with the same name
// already exists and errorIfExists is set, returns StoreAlreadyExists;
// otherwise the call is a no-op against the existing store.
func (c *Catalog) CreateStore(name string, dimension int, predicates []string, nonlinearBackends []nonlinear.Backend, errorIfExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.stores[name]; exists {
		if errorIfExists {
			return apierr.New(apierr.CodeStoreAlreadyExists, "store already exists: "+name, nil)
		}
		return nil
	}

	s := store.New(name, dimension,
		store.WithDeclaredPredicates(predicates...),
		store.WithNonLinearIndices(nonlinearBackends...))
	c.stores[name] = s
	c.sizeCache.Remove(name)
	c.recordAudit("create_store", name, dimension)
	return nil
}

// DropStore removes a store entirely, returning whether it existed.
// In-flight operations already holding a reference to the removed
// *store.Store complete against it; the struct is simply detached from
// the catalog and reclaimed by the garbage collector once unreferenced.
func (c *Catalog) DropStore(name string, errorIfNotExists bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.stores[name]
	if !exists {
		if errorIfNotExists {
			return false, apierr.New(apierr.CodeStoreNotFound, "store not found: "+name, nil)
		}
		return false, nil
	}

	s.Close()
	delete(c.stores, name)
	c.sizeCache.Remove(name)
	c.recordAudit("drop_store", name, s.Dimension())
	return true, nil
}

// PurgeStores drops every store and returns the count removed.
func (c *Catalog) PurgeStores() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.stores)
	for name, s := range c.stores {
		s.Close()
		delete(c.stores, name)
		c.sizeCache.Remove(name)
	}
	c.recordAudit("purge_stores", "", 0)
	return count, nil
}

// GetStore returns a handle to the named store, or StoreNotFound.
func (c *Catalog) GetStore(name string) (*store.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.stores[name]
	if !exists {
		return nil, apierr.New(apierr.CodeStoreNotFound, "store not found: "+name, nil)
	}
	return s, nil
}

// ListStores returns a summary of every store: name, entry count, and a
// best-effort size-in-bytes estimate. The estimate is cached per store
// name and invalidated by every mutating store operation the catalog
// itself performs, so repeated calls under read load do not re-sum
// every store's entries each time; per-store mutations routed directly
// through the returned *store.Store handle (Set/DelKey/...) invalidate
// their own cache entry lazily, the next time ListStores recomputes a
// stale size after noticing the store's Len() changed.
func (c *Catalog) ListStores() []valuetype.StoreInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]valuetype.StoreInfo, 0, len(c.stores))
	for name, s := range c.stores {
		out = append(out, valuetype.StoreInfo{
			Name:        name,
			Len:         s.Len(),
			SizeInBytes: c.estimateSize(name, s),
		})
	}
	return out
}

// estimateSize returns a cached size estimate, recomputing it only if
// the store's entry count has changed since the estimate was cached.
func (c *Catalog) estimateSize(name string, s *store.Store) int64 {
	length := s.Len()
	if v, ok := c.sizeCache.Get(name); ok && v.len == length {
		return v.bytes
	}

	bytes := estimateStoreBytes(s)
	c.sizeCache.Add(name, sizeEstimate{bytes: bytes, len: length})
	return bytes
}

func estimateStoreBytes(s *store.Store) int64 {
	var total int64
	s.ForEachEntry(func(_ valuetype.EntryID, vec valuetype.Vector, meta valuetype.MetadataMap) {
		total += int64(len(vec) * 4)
		for k, v := range meta {
			total += int64(len(k))
			if v.Kind == valuetype.MetadataBinary {
				total += int64(len(v.Binary))
			} else {
				total += int64(len(v.Text))
			}
		}
	})
	// Index overhead: a rough per-entry constant for reverse-index and
	// non-linear index bookkeeping.
	total += int64(s.Len() * 64)
	return total
}

func (c *Catalog) recordAudit(operation, storeName string, dimension int) {
	if c.audit == nil {
		return
	}
	c.audit.Record(operation, storeName, dimension)
}
