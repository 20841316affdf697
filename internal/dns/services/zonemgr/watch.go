package zonemgr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads dir whenever its files change, until ctx is done. Bursts of
// events are coalesced; a failed reload is logged and the previous zones
// keep serving.
func (m *Manager) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	m.logger.Info(map[string]any{"zone_dir": dir}, "Watching zone directory")

	timer := time.NewTimer(m.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			m.logger.Debug(map[string]any{"file": ev.Name, "op": ev.Op.String()}, "Zone file event")
			timer.Reset(m.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn(map[string]any{"error": err.Error()}, "Zone watcher error")

		case <-timer.C:
			if err := m.ReloadDirectory(ctx, dir); err != nil {
				m.logger.Error(map[string]any{
					"zone_dir": dir,
					"error":    err.Error(),
				}, "Zone reload failed; keeping previous zones")
			}
		}
	}
}

// relevant filters out permission changes and hidden (editor scratch) files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !strings.HasPrefix(filepath.Base(ev.Name), ".")
}
