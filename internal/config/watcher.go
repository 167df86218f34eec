package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/util"
)

// Watch observes the config file and invokes onChange after the file is
// rewritten. Fee and address rules change rarely; the watcher exists so
// the accounting cache can be invalidated without a restart. Events are
// debounced because editors produce bursts of writes for a single save.
func Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory, not the file: most editors replace the file
	// on save, which drops a direct file watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	util.SafeGoWithName("config-watcher", func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(250*time.Millisecond, func() {
					logging.Info("config file changed, reloading rules", "path", target)
					onChange()
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("config watcher error", logging.Err(err))
			}
		}
	})

	return nil
}
