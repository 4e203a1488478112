// Package store implements a single named vector store: its primary
// entry map, declared predicate indices, and declared non-linear
// indices, plus the Set/Get/Del/Create/Drop operations a catalog
// delegates to it.
package store

import (
	"fmt"
	"sync"

	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Store holds one named collection of (vector, metadata) entries, its
// declared predicate keys and their reverse indices, and its declared
// non-linear algorithm indices. All fields except the sharded entry map
// itself are guarded by mu; the entry map has its own internal sharding
// for fine-grained concurrency (internal/store/shardmap.go).
type Store struct {
	name      string
	dimension int

	entries *shardedEntries

	mu                 sync.RWMutex
	declaredPredicates map[string]struct{}
	predIndices        map[string]*predicate.ReverseIndex
	nonlinearIndices   map[nonlinear.Backend]nonlinear.Index

	closed bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithDeclaredPredicates pre-declares predicate keys at store creation,
// matching CreateStore's "predicates" argument.
func WithDeclaredPredicates(keys ...string) Option {
	return func(s *Store) {
		for _, k := range keys {
			s.declaredPredicates[k] = struct{}{}
			s.predIndices[k] = predicate.NewReverseIndex()
		}
	}
}

// WithNonLinearIndices pre-creates non-linear indices at store creation,
// matching CreateStore's "nonlinear_indices" argument.
func WithNonLinearIndices(backends ...nonlinear.Backend) Option {
	return func(s *Store) {
		for _, backend := range backends {
			idx, err := newNonLinearIndex(backend, s.dimension)
			if err != nil {
				continue // UnknownAlgorithm is validated by the caller before this runs
			}
			s.nonlinearIndices[backend] = idx
		}
	}
}

// New creates an empty store with the given name and fixed dimension.
func New(name string, dimension int, opts ...Option) *Store {
	s := &Store{
		name:               name,
		dimension:          dimension,
		entries:            newShardedEntries(),
		declaredPredicates: make(map[string]struct{}),
		predIndices:        make(map[string]*predicate.ReverseIndex),
		nonlinearIndices:   make(map[nonlinear.Backend]nonlinear.Index),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the store's name.
func (s *Store) Name() string {
	return s.name
}

// Dimension returns the store's fixed vector dimension.
func (s *Store) Dimension() int {
	return s.dimension
}

// Len returns the current number of entries.
func (s *Store) Len() int {
	return s.entries.len()
}

// Close marks the store closed; subsequent operations return an error.
// The store's memory is reclaimed by the garbage collector once the
// catalog drops its reference and any in-flight operations complete.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store %q is closed", s.name)
	}
	return nil
}

// newNonLinearIndex builds the index implementation for backend. HNSW is
// always built native to cosine, per spec.md §4.4; a GetSimN naming the
// "hnsw" backend alongside DotProduct scoring has no matching index and
// returns UnknownIndex rather than silently reusing the cosine graph.
func newNonLinearIndex(backend nonlinear.Backend, dimension int) (nonlinear.Index, error) {
	switch backend {
	case nonlinear.BackendKDTree:
		return nonlinear.NewKDTree(dimension), nil
	case nonlinear.BackendHNSW:
		return nonlinear.NewHNSW(similarity.Cosine, dimension)
	default:
		return nil, fmt.Errorf("store: unknown non-linear backend %q", backend)
	}
}
