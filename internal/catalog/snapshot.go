package catalog

import (
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/store"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// StoreSnapshot is the persisted shape of one store: enough to rebuild
// it from scratch via store.LoadSnapshot, including its entries and
// declared index shape but never its non-linear index internals, which
// are always rederived on load.
type StoreSnapshot struct {
	Name       string
	Dimension  int
	Predicates []string
	Backends   []nonlinear.Backend
	Entries    []valuetype.Entry
}

// Snapshot returns a point-in-time copy of every store in the catalog,
// suitable for encoding to disk by the persistence package. Taking the
// snapshot holds the catalog's reader lock only long enough to copy the
// map of *store.Store pointers; each store's entries are then read
// through its own lock, so a long-running snapshot never blocks
// CreateStore/DropStore for its whole duration.
func (c *Catalog) Snapshot() []StoreSnapshot {
	c.mu.RLock()
	stores := make(map[string]*store.Store, len(c.stores))
	for name, s := range c.stores {
		stores[name] = s
	}
	c.mu.RUnlock()

	out := make([]StoreSnapshot, 0, len(stores))
	for name, s := range stores {
		snap := StoreSnapshot{
			Name:       name,
			Dimension:  s.Dimension(),
			Predicates: s.DeclaredPredicates(),
			Backends:   s.DeclaredNonLinearBackends(),
		}
		s.ForEachEntry(func(_ valuetype.EntryID, vec valuetype.Vector, meta valuetype.MetadataMap) {
			snap.Entries = append(snap.Entries, valuetype.Entry{Vector: vec, Metadata: meta})
		})
		out = append(out, snap)
	}
	return out
}

// Restore replaces the catalog's contents with the given snapshots. Any
// store currently held is closed and dropped first, matching
// PurgeStores' teardown. Intended for startup load only; concurrent
// client traffic during Restore is not a supported case.
func (c *Catalog) Restore(snapshots []StoreSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.stores {
		s.Close()
	}
	c.stores = make(map[string]*store.Store, len(snapshots))
	c.sizeCache.Purge()

	for _, snap := range snapshots {
		c.stores[snap.Name] = store.LoadSnapshot(snap.Name, snap.Dimension, snap.Predicates, snap.Backends, snap.Entries)
	}
}
