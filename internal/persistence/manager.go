package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ahnlich/ahnlich-go/internal/catalog"
)

// Config configures a Manager.
type Config struct {
	// Path is the snapshot file's location on disk.
	Path string
	// Interval is how often Start saves automatically. Zero disables
	// the periodic save; the caller is then responsible for calling
	// Save directly (e.g. on a signal-driven shutdown).
	Interval time.Duration
}

// Manager periodically snapshots a catalog to Path and can reload it on
// startup. Lifecycle mirrors a background indexer: Start is
// non-blocking, Stop signals and waits for the current cycle to drain.
type Manager struct {
	cfg     Config
	catalog *catalog.Catalog
	lock    *flock.Flock

	stopCh chan struct{}
	doneCh chan struct{}

	mu      sync.Mutex
	running bool
}

// NewManager creates a Manager over cat that persists to cfg.Path.
func NewManager(cat *catalog.Catalog, cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		catalog: cat,
		lock:    flock.New(cfg.Path + ".lock"),
	}
}

// Load reads an existing snapshot file, if present, and restores the
// catalog from it. A missing file is not an error: a fresh deployment
// simply starts empty.
func (m *Manager) Load() error {
	if err := m.lock.Lock(); err != nil {
		return fmt.Errorf("persistence: acquire lock: %w", err)
	}
	defer m.lock.Unlock()

	data, err := os.ReadFile(m.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persistence: read snapshot: %w", err)
	}

	snapshots, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	m.catalog.Restore(snapshots)
	return nil
}

// Save writes the catalog's current state to Path atomically: the
// payload is written to a temp file in the same directory, fsynced,
// then renamed over the destination so a reader never observes a
// partially written snapshot.
func (m *Manager) Save() error {
	if err := m.lock.Lock(); err != nil {
		return fmt.Errorf("persistence: acquire lock: %w", err)
	}
	defer m.lock.Unlock()

	data, err := encodeSnapshot(m.catalog.Snapshot())
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persistence: create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("persistence: create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: fsync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, m.cfg.Path); err != nil {
		return fmt.Errorf("persistence: rename snapshot into place: %w", err)
	}
	return nil
}

// Start begins periodic saving in a background goroutine. Non-blocking;
// call Stop to end the cycle and flush a final save.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.doneCh)
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			if err := m.Save(); err != nil {
				slog.Warn("persistence: periodic save failed", "error", err, "path", m.cfg.Path)
			}
		}
	}
}

// Stop signals the periodic save loop to exit, waits for it to drain,
// then flushes one last save so shutdown never loses the final writes.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		if err := m.Save(); err != nil {
			slog.Warn("persistence: final save failed", "error", err, "path", m.cfg.Path)
		}
		return
	}
	m.mu.Unlock()

	close(m.stopCh)
	<-m.doneCh

	if err := m.Save(); err != nil {
		slog.Warn("persistence: final save failed", "error", err, "path", m.cfg.Path)
	}
}
