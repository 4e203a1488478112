// Package similarity implements the pure vector-comparison kernels used
// by both linear-scan queries and non-linear index maintenance.
package similarity

import (
	"math"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Algorithm names a similarity/distance kernel and its ordering flag.
type Algorithm string

const (
	// Cosine orders results descending (higher = more similar).
	Cosine Algorithm = "cosine_similarity"
	// Euclidean orders results ascending (lower = more similar).
	Euclidean Algorithm = "euclidean_distance"
	// DotProduct orders results descending (higher = more similar).
	DotProduct Algorithm = "dot_product_similarity"
)

// Kernel computes a similarity/distance score between two equal-length
// vectors. Callers must ensure a and b have the same length; kernels do
// not validate dimension themselves, since the store already enforces
// it before invocation.
type Kernel func(a, b valuetype.Vector) valuetype.Similarity

// Descending reports whether this algorithm orders larger scores as
// more similar (true for Cosine/DotProduct, false for Euclidean).
func (a Algorithm) Descending() bool {
	return a != Euclidean
}

// Less implements the algorithm's ordering for a bounded top-N heap:
// it reports whether x is "worse" than y, i.e. whether y should be kept
// over x when only one of the two can survive.
func (a Algorithm) Less(x, y valuetype.Similarity) bool {
	if a.Descending() {
		return x < y
	}
	return x > y
}

// KernelFor returns the pure scoring function for an algorithm.
func KernelFor(a Algorithm) Kernel {
	switch a {
	case Cosine:
		return CosineSimilarity
	case Euclidean:
		return EuclideanDistance
	case DotProduct:
		return DotProductSimilarity
	default:
		return nil
	}
}

// CosineSimilarity returns cos(theta) between a and b. A zero-norm
// input is a documented degenerate case: it returns 0 without error,
// per the similarity-on-degenerate-vectors contract.
func CosineSimilarity(a, b valuetype.Vector) valuetype.Similarity {
	var dot, normA, normB float64
	for i := range a {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return valuetype.Similarity(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b valuetype.Vector) valuetype.Similarity {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return valuetype.Similarity(math.Sqrt(sum))
}

// DotProductSimilarity returns the raw dot product of a and b.
func DotProductSimilarity(a, b valuetype.Vector) valuetype.Similarity {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return valuetype.Similarity(sum)
}
