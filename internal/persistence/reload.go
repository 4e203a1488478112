package persistence

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchForExternalChanges watches Path's directory and reloads the
// catalog whenever the snapshot file is replaced by something other
// than this Manager's own Save (e.g. an operator restoring a backup
// copy while the daemon is running). Runs until ctx is cancelled; a
// failure to start the watcher is logged and treated as a no-op, since
// external-reload is a convenience, not a correctness requirement.
func (m *Manager) WatchForExternalChanges(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("persistence: fsnotify unavailable, external reload disabled", "error", err)
		return
	}

	dir := filepath.Dir(m.cfg.Path)
	if err := watcher.Add(dir); err != nil {
		slog.Warn("persistence: failed to watch snapshot directory", "error", err, "dir", dir)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(m.cfg.Path) {
					continue
				}
				if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
					continue
				}
				if err := m.Load(); err != nil {
					slog.Warn("persistence: external reload failed", "error", err, "path", m.cfg.Path)
				} else {
					slog.Info("persistence: reloaded snapshot after external change", "path", m.cfg.Path)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("persistence: fsnotify error", "error", err)
			}
		}
	}()
}
