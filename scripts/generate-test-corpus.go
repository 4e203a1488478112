//go:build ignore

// Command generate-test-corpus writes a synthetic snapshot file for
// benchmarking ahnlichd's store and non-linear index against a realistic
// number of entries.
// Usage: go run scripts/generate-test-corpus.go -entries 100000 -dimension 128 -output testdata/bench.snapshot
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/ahnlich/ahnlich-go/internal/catalog"
	"github.com/ahnlich/ahnlich-go/internal/persistence"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

var (
	numEntries = flag.Int("entries", 100_000, "Number of entries to generate")
	dimension  = flag.Int("dimension", 128, "Vector dimension")
	storeName  = flag.String("store", "bench", "Store name")
	outputPath = flag.String("output", "testdata/bench.snapshot", "Output snapshot path")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var categories = []string{"article", "product", "image", "audio", "video"}

func main() {
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	cat := catalog.New()
	if err := cat.CreateStore(*storeName, *dimension, []string{"category"}, nil, true); err != nil {
		log.Fatalf("create store: %v", err)
	}
	store, err := cat.GetStore(*storeName)
	if err != nil {
		log.Fatalf("get store: %v", err)
	}

	entries := make([]valuetype.Entry, *numEntries)
	for i := range entries {
		vec := make(valuetype.Vector, *dimension)
		for d := range vec {
			vec[d] = rng.Float32()*2 - 1
		}
		entries[i] = valuetype.Entry{
			Vector: vec,
			Metadata: valuetype.MetadataMap{
				"id":       valuetype.NewText(fmt.Sprintf("item-%d", i)),
				"category": valuetype.NewText(categories[rng.Intn(len(categories))]),
				"score":    valuetype.NewText(fmt.Sprintf("%.3f", rng.Float64())),
			},
		}
	}
	if _, err := store.Set(entries); err != nil {
		log.Fatalf("set entries: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	mgr := persistence.NewManager(cat, persistence.Config{Path: *outputPath})
	if err := mgr.Save(); err != nil {
		log.Fatalf("save snapshot: %v", err)
	}

	fmt.Printf("wrote %d entries (dimension %d) to %s\n", *numEntries, *dimension, *outputPath)
}
