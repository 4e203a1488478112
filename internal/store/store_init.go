package store

import (
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// DeclaredPredicates returns the currently declared predicate keys, in
// no particular order. Used by persistence to snapshot a store's shape.
func (s *Store) DeclaredPredicates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.declaredPredicates))
	for k := range s.declaredPredicates {
		out = append(out, k)
	}
	return out
}

// DeclaredNonLinearBackends returns the backends with a built non-linear
// index, in no particular order. Non-linear indices are never
// serialized directly; persistence rebuilds them from this list plus the
// primary entries on load.
func (s *Store) DeclaredNonLinearBackends() []nonlinear.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]nonlinear.Backend, 0, len(s.nonlinearIndices))
	for b := range s.nonlinearIndices {
		out = append(out, b)
	}
	return out
}

// ForEachEntry calls fn for every (id, vector, metadata) triple
// currently in the store. Used by persistence to snapshot entries and
// by CandidateSet-adjacent full scans.
func (s *Store) ForEachEntry(fn func(id valuetype.EntryID, vec valuetype.Vector, meta valuetype.MetadataMap)) {
	s.entries.forEach(func(id valuetype.EntryID, e entry) {
		fn(id, e.Vector, e.Metadata)
	})
}

// LoadSnapshot repopulates an empty store from previously snapshotted
// entries, then rebuilds every declared predicate index and the
// non-linear indices named by backends (vectors are re-inserted into
// each, matching the persistence contract that non-linear state is
// derived, never serialized).
func LoadSnapshot(name string, dimension int, declaredPredicates []string, backends []nonlinear.Backend, entries []valuetype.Entry) *Store {
	s := New(name, dimension, WithDeclaredPredicates(declaredPredicates...), WithNonLinearIndices(backends...))
	for _, e := range entries {
		id := valuetype.HashVector(e.Vector)
		s.entries.set(id, entry{Vector: e.Vector, Metadata: e.Metadata.Clone()})
		s.indexNewEntry(id, e.Vector, e.Metadata)
	}
	return s
}
