package remotebranch

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/remotes/pkg/logger"
	"github.com/papercomputeco/remotes/pkg/store"
)

// Watch invalidates table whenever the store file in dir changes. Rewrites
// replace the file, so its directory is watched. Call the returned stop
// function to clean up.
func Watch(dir string, table *Table, l *slog.Logger) (stop func(), err error) {
	l = logger.OrNop(l)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("store watcher add %s: %w", dir, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != store.FileName {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					l.Debug("remote branch store changed", "path", ev.Name, "op", ev.Op.String())
					table.Invalidate()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.Warn("store watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}
