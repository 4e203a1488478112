// Package nonlinear implements the non-linear index backends a store can
// attach over its vectors: an exact KD-Tree for Euclidean-native scans and
// an approximate HNSW graph (via coder/hnsw) for cosine/dot-product spaces
// the KD-Tree cannot order correctly.
package nonlinear

import (
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Backend names a non-linear index implementation a store can build,
// independent of the similarity kernel it happens to answer natively.
// A store may hold at most one index per Backend.
type Backend string

const (
	// BackendKDTree selects the exact KD-Tree, native to Euclidean.
	BackendKDTree Backend = "kdtree"
	// BackendHNSW selects the approximate coder/hnsw graph, native to
	// cosine similarity.
	BackendHNSW Backend = "hnsw"
)

// Neighbor is one result of a nearest-neighbor query: an entry ID paired
// with its similarity/distance score under the index's algorithm.
type Neighbor struct {
	ID    valuetype.EntryID
	Score valuetype.Similarity
}

// Index is a non-linear nearest-neighbor structure over a fixed-dimension
// vector space. Implementations are safe for concurrent use.
type Index interface {
	// Algorithm reports the similarity kernel this index is native to.
	// When the query algorithm does not match, GetSimN falls back to a
	// linear scan if no backend was named, and returns UnknownIndex if
	// this backend was named explicitly.
	Algorithm() similarity.Algorithm

	// Insert adds or replaces the vector for id.
	Insert(id valuetype.EntryID, vec valuetype.Vector) error

	// Remove deletes id from the index, if present.
	Remove(id valuetype.EntryID)

	// Nearest returns up to n neighbors of query, best first.
	Nearest(query valuetype.Vector, n int) ([]Neighbor, error)

	// Len reports the number of live entries in the index.
	Len() int
}
