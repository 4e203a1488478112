package predicate

import (
	"sync"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// IDSet is an unordered set of entry IDs. Scan order over an IDSet is
// unspecified, matching the reverse index's documented tie-break
// silence.
type IDSet map[valuetype.EntryID]struct{}

// NewIDSet builds an IDSet from a slice of IDs.
func NewIDSet(ids ...valuetype.EntryID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Slice returns the set's members as a slice, in unspecified order.
func (s IDSet) Slice() []valuetype.EntryID {
	out := make([]valuetype.EntryID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Intersect returns a new set containing members present in both sets.
func Intersect(a, b IDSet) IDSet {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	out := make(IDSet, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Union returns a new set containing members present in either set.
func Union(a, b IDSet) IDSet {
	out := make(IDSet, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

// Difference returns members of a not present in b.
func Difference(a, b IDSet) IDSet {
	out := make(IDSet, len(a))
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// ReverseIndex maps one declared predicate key's metadata values to the
// set of entry IDs carrying that value. Insert/remove/rebuild are the
// only mutation paths; lookups take a read lock so many concurrent
// readers and fine-grained writers can proceed together.
type ReverseIndex struct {
	mu      sync.RWMutex
	buckets map[string]IDSet // MetadataValue.MapKey() -> IDSet
}

// NewReverseIndex creates an empty reverse index.
func NewReverseIndex() *ReverseIndex {
	return &ReverseIndex{buckets: make(map[string]IDSet)}
}

// Insert adds id to the bucket for value.
func (r *ReverseIndex) Insert(id valuetype.EntryID, value valuetype.MetadataValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := value.MapKey()
	bucket, ok := r.buckets[key]
	if !ok {
		bucket = make(IDSet)
		r.buckets[key] = bucket
	}
	bucket[id] = struct{}{}
}

// Remove removes id from the bucket for value, dropping the bucket
// entirely once it becomes empty.
func (r *ReverseIndex) Remove(id valuetype.EntryID, value valuetype.MetadataValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := value.MapKey()
	bucket, ok := r.buckets[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(r.buckets, key)
	}
}

// Lookup returns the set of IDs carrying value, or an empty set.
func (r *ReverseIndex) Lookup(value valuetype.MetadataValue) IDSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bucket := r.buckets[value.MapKey()]
	out := make(IDSet, len(bucket))
	for id := range bucket {
		out[id] = struct{}{}
	}
	return out
}

// LookupAny returns the union of buckets for any of values.
func (r *ReverseIndex) LookupAny(values []valuetype.MetadataValue) IDSet {
	out := make(IDSet)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range values {
		for id := range r.buckets[v.MapKey()] {
			out[id] = struct{}{}
		}
	}
	return out
}

// Rebuild clears the index and reindexes every (id, value) pair for
// this key from all entries in one pass. Used when a predicate key is
// newly declared on an already-populated store.
func (r *ReverseIndex) Rebuild(entries map[valuetype.EntryID]valuetype.MetadataValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[string]IDSet)
	for id, value := range entries {
		key := value.MapKey()
		bucket, ok := r.buckets[key]
		if !ok {
			bucket = make(IDSet)
			r.buckets[key] = bucket
		}
		bucket[id] = struct{}{}
	}
}
