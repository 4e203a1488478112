package store

import (
	"sync"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

const shardCount = 32

// shardedEntries is a fixed-shard, RWMutex-guarded map from EntryID to
// entry, sharded by the low bits of the ID to bound lock contention on
// a single hot store under concurrent writers. This is the idiomatic Go
// stand-in for a concurrent hash map: no off-the-shelf sharded map
// fits a fixed key type this cleanly, so it is written by hand here.
type shardedEntries struct {
	shards [shardCount]*entryShard
}

type entryShard struct {
	mu   sync.RWMutex
	data map[valuetype.EntryID]entry
}

type entry struct {
	Vector   valuetype.Vector
	Metadata valuetype.MetadataMap
}

func newShardedEntries() *shardedEntries {
	s := &shardedEntries{}
	for i := range s.shards {
		s.shards[i] = &entryShard{data: make(map[valuetype.EntryID]entry)}
	}
	return s
}

func (s *shardedEntries) shardFor(id valuetype.EntryID) *entryShard {
	return s.shards[id[0]%shardCount]
}

func (s *shardedEntries) get(id valuetype.EntryID) (entry, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.data[id]
	return e, ok
}

func (s *shardedEntries) set(id valuetype.EntryID, e entry) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data[id] = e
}

func (s *shardedEntries) delete(id valuetype.EntryID) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.data, id)
}

// len reports the total number of entries across all shards. Callers
// needing a stable snapshot must pair this with external synchronization;
// for statistics (ListStores) an approximate count is acceptable.
func (s *shardedEntries) len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.data)
		sh.mu.RUnlock()
	}
	return total
}

// forEach calls fn for every (id, entry) pair. fn must not call back
// into the sharded map; each shard is held under its read lock for the
// duration of its own iteration.
func (s *shardedEntries) forEach(fn func(id valuetype.EntryID, e entry)) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, e := range sh.data {
			fn(id, e)
		}
		sh.mu.RUnlock()
	}
}
