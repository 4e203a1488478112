package store

import (
	"fmt"
	"testing"

	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// BenchmarkStore_Set benchmarks batch insertion, the hot path for
// bulk-loading a store at startup.
func BenchmarkStore_Set(b *testing.B) {
	batchSizes := []int{10, 100, 1000}

	for _, size := range batchSizes {
		b.Run(fmt.Sprintf("batch_%d", size), func(b *testing.B) {
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				s := New("bench", 8)
				entries := generateBenchmarkEntries(size, i)
				b.StartTimer()

				if _, err := s.Set(entries); err != nil {
					b.Fatalf("Set failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkStore_GetSimN_LinearScan benchmarks GetSimN with no
// non-linear index built, the worst-case scan path.
func BenchmarkStore_GetSimN_LinearScan(b *testing.B) {
	s := New("bench", 8)
	if _, err := s.Set(generateBenchmarkEntries(1000, 0)); err != nil {
		b.Fatalf("Set failed: %v", err)
	}
	query := valuetype.Vector{1, 0, 0, 0, 0, 0, 0, 0}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.GetSimN(query, 10, similarity.Cosine, "", nil); err != nil {
			b.Fatalf("GetSimN failed: %v", err)
		}
	}
}

// BenchmarkStore_GetSimN_KDTree benchmarks GetSimN with an explicit
// KD-Tree backend, compared against the linear-scan baseline above.
func BenchmarkStore_GetSimN_KDTree(b *testing.B) {
	s := New("bench", 8, WithNonLinearIndices(nonlinear.BackendKDTree))
	if _, err := s.Set(generateBenchmarkEntries(1000, 0)); err != nil {
		b.Fatalf("Set failed: %v", err)
	}
	query := valuetype.Vector{1, 0, 0, 0, 0, 0, 0, 0}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.GetSimN(query, 10, similarity.Euclidean, nonlinear.BackendKDTree, nil); err != nil {
			b.Fatalf("GetSimN failed: %v", err)
		}
	}
}

// BenchmarkStore_GetSimN_HNSW benchmarks GetSimN against the HNSW
// backend for cosine queries.
func BenchmarkStore_GetSimN_HNSW(b *testing.B) {
	s := New("bench", 8, WithNonLinearIndices(nonlinear.BackendHNSW))
	if _, err := s.Set(generateBenchmarkEntries(1000, 0)); err != nil {
		b.Fatalf("Set failed: %v", err)
	}
	query := valuetype.Vector{1, 0, 0, 0, 0, 0, 0, 0}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.GetSimN(query, 10, similarity.Cosine, nonlinear.BackendHNSW, nil); err != nil {
			b.Fatalf("GetSimN failed: %v", err)
		}
	}
}

func generateBenchmarkEntries(n, seed int) []valuetype.Entry {
	entries := make([]valuetype.Entry, n)
	for i := 0; i < n; i++ {
		vec := make(valuetype.Vector, 8)
		for d := range vec {
			vec[d] = float32((i+seed+d)%97) / 97.0
		}
		entries[i] = valuetype.Entry{
			Vector: vec,
			Metadata: valuetype.MetadataMap{
				"bucket": valuetype.NewText(fmt.Sprintf("b%d", i%10)),
			},
		}
	}
	return entries
}
