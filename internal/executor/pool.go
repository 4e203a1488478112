package executor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// workerPool bounds how many CPU-heavy dispatches (linear scans,
// KD-Tree/HNSW queries) run concurrently across the whole daemon, sized
// at GOMAXPROCS by default. Each call still goes through errgroup so
// cancellation from the caller's context aborts the dispatch promptly.
type workerPool struct {
	sem chan struct{}
}

// newWorkerPool creates a pool with the given capacity, or GOMAXPROCS if
// capacity <= 0.
func newWorkerPool(capacity int) *workerPool {
	if capacity <= 0 {
		capacity = runtime.GOMAXPROCS(0)
	}
	return &workerPool{sem: make(chan struct{}, capacity)}
}

// run executes fn on the pool, blocking until a slot is free or ctx is
// cancelled, whichever comes first.
func (p *workerPool) run(ctx context.Context, fn func() error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
		case <-gctx.Done():
			return gctx.Err()
		}
		return fn()
	})
	return g.Wait()
}
