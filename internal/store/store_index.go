package store

import (
	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// CreatePredIndex declares each key as predicate-indexed, building its
// reverse index from the current contents of the store. Already
// declared keys are left untouched (idempotent; never an error).
func (s *Store) CreatePredIndex(keys []string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, key := range keys {
		if _, exists := s.declaredPredicates[key]; exists {
			continue
		}
		idx := predicate.NewReverseIndex()
		entries := make(map[valuetype.EntryID]valuetype.MetadataValue)
		s.entries.forEach(func(id valuetype.EntryID, e entry) {
			if v, ok := e.Metadata[key]; ok {
				entries[id] = v
			}
		})
		idx.Rebuild(entries)

		s.declaredPredicates[key] = struct{}{}
		s.predIndices[key] = idx
		created++
	}
	return created, nil
}

// DropPredIndex removes each key's predicate index. If errorIfNotExists
// and any key is not indexed, returns IndexNotFound without dropping
// anything from the call.
func (s *Store) DropPredIndex(keys []string, errorIfNotExists bool) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errorIfNotExists {
		for _, key := range keys {
			if _, exists := s.declaredPredicates[key]; !exists {
				return 0, apierr.New(apierr.CodeIndexNotFound,
					"predicate index not declared: "+key, nil)
			}
		}
	}

	deleted := 0
	for _, key := range keys {
		if _, exists := s.declaredPredicates[key]; !exists {
			continue
		}
		delete(s.declaredPredicates, key)
		delete(s.predIndices, key)
		deleted++
	}
	return deleted, nil
}

// CreateNonLinearIndex builds a non-linear index for each backend not
// already present, populated from the store's current entries.
// Idempotent; never an error.
func (s *Store) CreateNonLinearIndex(backends []nonlinear.Backend) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, backend := range backends {
		if _, exists := s.nonlinearIndices[backend]; exists {
			continue
		}
		idx, err := newNonLinearIndex(backend, s.dimension)
		if err != nil {
			return created, apierr.New(apierr.CodeUnknownAlgorithm, err.Error(), err)
		}
		s.entries.forEach(func(id valuetype.EntryID, e entry) {
			_ = idx.Insert(id, e.Vector)
		})
		s.nonlinearIndices[backend] = idx
		created++
	}
	return created, nil
}

// DropNonLinearIndex removes each backend's non-linear index. If
// errorIfNotExists and any backend has no built index, returns
// IndexNotFound without dropping anything from the call.
func (s *Store) DropNonLinearIndex(backends []nonlinear.Backend, errorIfNotExists bool) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errorIfNotExists {
		for _, backend := range backends {
			if _, exists := s.nonlinearIndices[backend]; !exists {
				return 0, apierr.New(apierr.CodeIndexNotFound,
					"non-linear index not built for backend: "+string(backend), nil)
			}
		}
	}

	deleted := 0
	for _, backend := range backends {
		if _, exists := s.nonlinearIndices[backend]; !exists {
			continue
		}
		delete(s.nonlinearIndices, backend)
		deleted++
	}
	return deleted, nil
}
