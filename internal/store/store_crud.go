package store

import (
	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Upsert reports how many entries a Set call inserted versus updated.
type Upsert struct {
	Inserted int
	Updated  int
}

// Set inserts or updates entries. For each (vector, metadata) pair, the
// EntryID is derived from the vector's content: if it already exists,
// its metadata is overwritten in place (counted as Updated, predicate
// indices diffed, non-linear indices untouched since the vector itself
// is unchanged); otherwise a fresh entry is inserted (counted as
// Inserted, indexed into every declared predicate and non-linear index).
func (s *Store) Set(pairs []valuetype.Entry) (Upsert, error) {
	if err := s.checkOpen(); err != nil {
		return Upsert{}, apierr.Internal(err.Error(), err)
	}

	for _, p := range pairs {
		if len(p.Vector) != s.dimension {
			return Upsert{}, apierr.New(apierr.CodeDimensionMismatch,
				"vector dimension does not match store dimension", nil)
		}
		if err := p.Vector.Validate(); err != nil {
			return Upsert{}, apierr.New(apierr.CodeInvalidVector, err.Error(), err)
		}
	}

	var result Upsert
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range pairs {
		id := valuetype.HashVector(p.Vector)
		if existing, ok := s.entries.get(id); ok {
			s.diffPredicateIndices(id, existing.Metadata, p.Metadata)
			s.entries.set(id, entry{Vector: existing.Vector, Metadata: p.Metadata.Clone()})
			result.Updated++
			continue
		}

		s.entries.set(id, entry{Vector: p.Vector, Metadata: p.Metadata.Clone()})
		s.indexNewEntry(id, p.Vector, p.Metadata)
		result.Inserted++
	}

	return result, nil
}

// indexNewEntry inserts id into every declared predicate index whose key
// is present in meta, and into every non-linear index. Caller must hold
// mu for writing.
func (s *Store) indexNewEntry(id valuetype.EntryID, vec valuetype.Vector, meta valuetype.MetadataMap) {
	for key, idx := range s.predIndices {
		if v, ok := meta[key]; ok {
			idx.Insert(id, v)
		}
	}
	for _, idx := range s.nonlinearIndices {
		_ = idx.Insert(id, vec) // dimension already checked above
	}
}

// diffPredicateIndices moves id between old and new value buckets for
// every declared predicate key whose value changed. Caller must hold mu.
func (s *Store) diffPredicateIndices(id valuetype.EntryID, oldMeta, newMeta valuetype.MetadataMap) {
	for key, idx := range s.predIndices {
		oldV, oldOk := oldMeta[key]
		newV, newOk := newMeta[key]
		switch {
		case oldOk && newOk && oldV.Equal(newV):
			// unchanged
		case oldOk && newOk:
			idx.Remove(id, oldV)
			idx.Insert(id, newV)
		case oldOk && !newOk:
			idx.Remove(id, oldV)
		case !oldOk && newOk:
			idx.Insert(id, newV)
		}
	}
}

// GetKey returns the (vector, metadata) entry for each key vector that
// exists in the store. Missing keys are silently omitted.
func (s *Store) GetKey(keys []valuetype.Vector) ([]valuetype.Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, apierr.Internal(err.Error(), err)
	}
	for _, k := range keys {
		if len(k) != s.dimension {
			return nil, apierr.New(apierr.CodeDimensionMismatch,
				"vector dimension does not match store dimension", nil)
		}
	}

	out := make([]valuetype.Entry, 0, len(keys))
	for _, k := range keys {
		id := valuetype.HashVector(k)
		if e, ok := s.entries.get(id); ok {
			out = append(out, valuetype.Entry{Vector: e.Vector, Metadata: e.Metadata.Clone()})
		}
	}
	return out, nil
}

// DelKey removes each entry named by its key vector, detaching it from
// every predicate and non-linear index it participated in. Missing keys
// are silently skipped.
func (s *Store) DelKey(keys []valuetype.Vector) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}
	for _, k := range keys {
		if len(k) != s.dimension {
			return 0, apierr.New(apierr.CodeDimensionMismatch,
				"vector dimension does not match store dimension", nil)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, k := range keys {
		id := valuetype.HashVector(k)
		e, ok := s.entries.get(id)
		if !ok {
			continue
		}
		s.removeFromIndicesLocked(id, e)
		s.entries.delete(id)
		deleted++
	}
	return deleted, nil
}

func (s *Store) removeFromIndicesLocked(id valuetype.EntryID, e entry) {
	for key, idx := range s.predIndices {
		if v, ok := e.Metadata[key]; ok {
			idx.Remove(id, v)
		}
	}
	for _, idx := range s.nonlinearIndices {
		idx.Remove(id)
	}
}
