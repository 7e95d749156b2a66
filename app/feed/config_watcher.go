package feed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// ConfigWatcher reloads the config file when it changes on disk. A file that
// fails to load or validate is logged and ignored, so the previous config stays active.
type ConfigWatcher struct {
	path     string
	onReload func(*Config)
	debounce time.Duration
}

func NewConfigWatcher(path string, onReload func(*Config)) *ConfigWatcher {
	return &ConfigWatcher{
		path:     path,
		onReload: onReload,
		debounce: reloadDebounce,
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched because
// editors and config management replace the file by renaming over it.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(w.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	slog.Info("Watching configuration for changes", "file", target)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Configuration watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	feedConfig, err := LoadConfig(w.path)
	if err != nil {
		slog.Error("Failed to reload configuration, keeping previous", "file", w.path, "error", err)
		return
	}

	slog.Info("Configuration reloaded",
		"file", w.path,
		"feeds", len(feedConfig.Feeds),
		"keywords", len(feedConfig.Keywords))

	w.onReload(feedConfig)
}
