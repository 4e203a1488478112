package store

import (
	"sort"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// growthFactor controls GetSimN's over-fetch multiplier when a
// non-linear index must satisfy a predicate-filtered query: the
// requested n is multiplied by this factor, doubling again on each
// retry, until enough condition-satisfying results are found or the
// index is exhausted.
const growthFactor = 4

// GetPred returns every entry matching condition, using registered
// predicate indices to narrow the scan where possible.
func (s *Store) GetPred(condition *predicate.Condition) ([]valuetype.Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, apierr.Internal(err.Error(), err)
	}
	if err := condition.Validate(); err != nil {
		return nil, apierr.New(apierr.CodeInvalidQuery, err.Error(), err)
	}

	s.mu.RLock()
	indices := snapshotIndices(s.predIndices)
	s.mu.RUnlock()

	universe := s.universeIDs()
	candidates := predicate.CandidateSet(condition, indices, universe)

	out := make([]valuetype.Entry, 0, len(candidates))
	for id := range candidates {
		e, ok := s.entries.get(id)
		if !ok {
			continue
		}
		if predicate.Evaluate(condition, e.Metadata) {
			out = append(out, valuetype.Entry{Vector: e.Vector, Metadata: e.Metadata.Clone()})
		}
	}
	return out, nil
}

// DelPred deletes every entry matching condition and returns the count
// removed.
func (s *Store) DelPred(condition *predicate.Condition) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, apierr.Internal(err.Error(), err)
	}
	if err := condition.Validate(); err != nil {
		return 0, apierr.New(apierr.CodeInvalidQuery, err.Error(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := predicate.CandidateSet(condition, s.predIndices, s.universeIDs())

	deleted := 0
	for id := range candidates {
		e, ok := s.entries.get(id)
		if !ok || !predicate.Evaluate(condition, e.Metadata) {
			continue
		}
		s.removeFromIndicesLocked(id, e)
		s.entries.delete(id)
		deleted++
	}
	return deleted, nil
}

func snapshotIndices(m map[string]*predicate.ReverseIndex) map[string]*predicate.ReverseIndex {
	out := make(map[string]*predicate.ReverseIndex, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) universeIDs() predicate.IDSet {
	universe := make(predicate.IDSet, s.entries.len())
	s.entries.forEach(func(id valuetype.EntryID, _ entry) {
		universe[id] = struct{}{}
	})
	return universe
}

// scored pairs an entry with its similarity score, used internally to
// drive the sorted top-N selection.
type scored struct {
	id    valuetype.EntryID
	entry entry
	score valuetype.Similarity
}

// GetSimN returns the top-n entries by similarity to query under
// algorithm, optionally restricted to entries matching condition.
// Selection follows the store's four-step algorithm: linear scan for a
// plain linear query, predicate-narrowed linear scan when a condition is
// given, non-linear index lookup (with over-fetch under a condition)
// when a built non-linear index answers algorithm natively, and
// EntryID-ascending tie-breaks throughout.
//
// index, when non-empty, names a specific non-linear backend ("kdtree"
// or "hnsw") the caller requires; if that backend has no built index
// answering algorithm, GetSimN returns UnknownIndex rather than silently
// falling back to a linear scan. When index is empty, GetSimN picks
// whichever built non-linear index (if any) answers algorithm natively,
// and otherwise scans linearly — the backend choice is then implicit.
func (s *Store) GetSimN(query valuetype.Vector, n int, algo similarity.Algorithm, index nonlinear.Backend, condition *predicate.Condition) ([]valuetype.ScoredEntry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, apierr.Internal(err.Error(), err)
	}
	if len(query) != s.dimension {
		return nil, apierr.New(apierr.CodeDimensionMismatch,
			"query vector dimension does not match store dimension", nil)
	}
	kernel := similarity.KernelFor(algo)
	if kernel == nil {
		return nil, apierr.New(apierr.CodeUnknownAlgorithm, "unknown similarity algorithm", nil)
	}
	if condition != nil {
		if err := condition.Validate(); err != nil {
			return nil, apierr.New(apierr.CodeInvalidQuery, err.Error(), err)
		}
	}
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	idx, hasIndex := s.resolveNonLinearLocked(algo, index)
	indices := snapshotIndices(s.predIndices)
	s.mu.RUnlock()

	if index != "" && !hasIndex {
		return nil, apierr.New(apierr.CodeUnknownIndex,
			"non-linear index not built for backend: "+string(index), nil)
	}
	if hasIndex {
		return s.simNFromIndex(idx, query, n, algo, condition, indices)
	}
	return s.simNLinear(query, n, kernel, algo, condition, indices), nil
}

// resolveNonLinearLocked looks up the non-linear index GetSimN should
// use. With an explicit backend, it must both exist and answer algo
// natively to count as a match. Without one, any built index answering
// algo natively is used. Caller must hold at least the read lock.
func (s *Store) resolveNonLinearLocked(algo similarity.Algorithm, backend nonlinear.Backend) (nonlinear.Index, bool) {
	if backend != "" {
		idx, exists := s.nonlinearIndices[backend]
		if !exists || idx.Algorithm() != algo {
			return nil, false
		}
		return idx, true
	}
	for _, idx := range s.nonlinearIndices {
		if idx.Algorithm() == algo {
			return idx, true
		}
	}
	return nil, false
}

func (s *Store) simNLinear(query valuetype.Vector, n int, kernel similarity.Kernel, algo similarity.Algorithm, condition *predicate.Condition, indices map[string]*predicate.ReverseIndex) []valuetype.ScoredEntry {
	var idSpace predicate.IDSet
	if condition != nil {
		idSpace = predicate.CandidateSet(condition, indices, s.universeIDs())
	}

	var pool []scored
	collect := func(id valuetype.EntryID, e entry) {
		if condition != nil && !predicate.Evaluate(condition, e.Metadata) {
			return
		}
		pool = append(pool, scored{id: id, entry: e, score: kernel(query, e.Vector)})
	}

	if idSpace != nil {
		for id := range idSpace {
			if e, ok := s.entries.get(id); ok {
				collect(id, e)
			}
		}
	} else {
		s.entries.forEach(collect)
	}

	return topN(pool, n, algo)
}

// simNFromIndex asks a non-linear index for neighbors, over-fetching
// when a predicate condition must also be satisfied: it doubles the
// requested count (scaled first by growthFactor) until n matching
// results are found or the index is exhausted.
func (s *Store) simNFromIndex(idx nonlinear.Index, query valuetype.Vector, n int, algo similarity.Algorithm, condition *predicate.Condition, indices map[string]*predicate.ReverseIndex) ([]valuetype.ScoredEntry, error) {
	if condition == nil {
		neighbors, err := idx.Nearest(query, n)
		if err != nil {
			return nil, apierr.Internal(err.Error(), err)
		}
		return s.neighborsToEntries(neighbors, n, algo), nil
	}

	fetch := n * growthFactor
	for {
		neighbors, err := idx.Nearest(query, fetch)
		if err != nil {
			return nil, apierr.Internal(err.Error(), err)
		}

		var matched []nonlinear.Neighbor
		for _, nb := range neighbors {
			e, ok := s.entries.get(nb.ID)
			if !ok || !predicate.Evaluate(condition, e.Metadata) {
				continue
			}
			matched = append(matched, nb)
			if len(matched) == n {
				return s.neighborsToEntries(matched, n, algo), nil
			}
		}
		if len(neighbors) < fetch || fetch >= idx.Len() {
			return s.neighborsToEntries(matched, n, algo), nil
		}
		fetch *= 2
	}
}

func (s *Store) neighborsToEntries(neighbors []nonlinear.Neighbor, n int, algo similarity.Algorithm) []valuetype.ScoredEntry {
	pool := make([]scored, 0, len(neighbors))
	for _, nb := range neighbors {
		e, ok := s.entries.get(nb.ID)
		if !ok {
			continue
		}
		pool = append(pool, scored{id: nb.ID, entry: e, score: nb.Score})
	}
	return topN(pool, n, algo)
}

// topN sorts pool best-first under algo's ordering (descending for
// cosine/dot product, ascending for Euclidean), breaking ties by
// ascending EntryID, then truncates to n.
func topN(pool []scored, n int, algo similarity.Algorithm) []valuetype.ScoredEntry {
	descending := algo.Descending()
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].score == pool[j].score {
			return pool[i].id.Less(pool[j].id)
		}
		if descending {
			return pool[i].score > pool[j].score
		}
		return pool[i].score < pool[j].score
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	out := make([]valuetype.ScoredEntry, len(pool))
	for i, p := range pool {
		out[i] = valuetype.ScoredEntry{
			Entry:      valuetype.Entry{Vector: p.entry.Vector, Metadata: p.entry.Metadata.Clone()},
			Similarity: p.score,
			ID:         p.id,
		}
	}
	return out
}
