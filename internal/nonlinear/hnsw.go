package nonlinear

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// HNSW wraps a coder/hnsw graph as an approximate nearest-neighbor index
// native to cosine or dot-product similarity, the orderings a KD-Tree's
// axis-aligned splits cannot express. Deletion is lazy: coder/hnsw's own
// Delete corrupts the graph when the last node is removed, so a removed
// entry is instead dropped from the ID mapping and left orphaned in the
// graph until the next Rebuild.
type HNSW struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	algo  similarity.Algorithm

	idToKey map[valuetype.EntryID]uint64
	keyToID map[uint64]valuetype.EntryID
	nextKey uint64

	dimension int
}

// NewHNSW builds an empty HNSW index for the given algorithm and
// dimension. algo must be Cosine or DotProduct; Euclidean callers should
// use KDTree instead.
func NewHNSW(algo similarity.Algorithm, dimension int) (*HNSW, error) {
	graph := hnsw.NewGraph[uint64]()
	switch algo {
	case similarity.Cosine:
		graph.Distance = hnsw.CosineDistance
	case similarity.DotProduct:
		// coder/hnsw has no native dot-product metric; cosine distance
		// over the stored (unnormalized) vectors preserves the ranking
		// coder/hnsw needs internally, and the wrapper recomputes exact
		// dot-product scores on the result set before returning them.
		graph.Distance = hnsw.CosineDistance
	default:
		return nil, fmt.Errorf("nonlinear: hnsw index does not support algorithm %q", algo)
	}
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &HNSW{
		graph:     graph,
		algo:      algo,
		idToKey:   make(map[valuetype.EntryID]uint64),
		keyToID:   make(map[uint64]valuetype.EntryID),
		dimension: dimension,
	}, nil
}

// Algorithm reports the similarity kernel this index is native to.
func (h *HNSW) Algorithm() similarity.Algorithm {
	return h.algo
}

// Insert adds or replaces the vector for id, orphaning any prior graph
// node for id via lazy deletion.
func (h *HNSW) Insert(id valuetype.EntryID, vec valuetype.Vector) error {
	if len(vec) != h.dimension {
		return fmt.Errorf("nonlinear: vector has dimension %d, want %d", len(vec), h.dimension)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if oldKey, ok := h.idToKey[id]; ok {
		delete(h.keyToID, oldKey)
		delete(h.idToKey, id)
	}

	key := h.nextKey
	h.nextKey++

	stored := make(valuetype.Vector, len(vec))
	copy(stored, vec)

	h.graph.Add(hnsw.MakeNode(key, stored))
	h.idToKey[id] = key
	h.keyToID[key] = id
	return nil
}

// Remove orphans id's graph node. The node itself is reclaimed only by
// Rebuild.
func (h *HNSW) Remove(id valuetype.EntryID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key, ok := h.idToKey[id]
	if !ok {
		return
	}
	delete(h.keyToID, key)
	delete(h.idToKey, id)
}

// Len reports the number of live (non-orphaned) entries.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToKey)
}

// Nearest returns up to n approximate neighbors of query, best first. It
// over-fetches from the graph to absorb orphaned nodes before truncating
// to n live results.
func (h *HNSW) Nearest(query valuetype.Vector, n int) ([]Neighbor, error) {
	if len(query) != h.dimension {
		return nil, fmt.Errorf("nonlinear: query has dimension %d, want %d", len(query), h.dimension)
	}
	if n <= 0 {
		return nil, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph.Len() == 0 {
		return nil, nil
	}

	fetch := n
	for {
		nodes := h.graph.Search(query, fetch)
		out := make([]Neighbor, 0, n)
		for _, node := range nodes {
			id, ok := h.keyToID[node.Key]
			if !ok {
				continue // orphaned node, lazily deleted
			}
			var score valuetype.Similarity
			switch h.algo {
			case similarity.DotProduct:
				score = similarity.DotProductSimilarity(query, node.Value)
			default:
				score = similarity.CosineSimilarity(query, node.Value)
			}
			out = append(out, Neighbor{ID: id, Score: score})
			if len(out) == n {
				return out, nil
			}
		}
		if len(nodes) < fetch || fetch >= h.graph.Len() {
			return out, nil
		}
		fetch *= 4
	}
}
