package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader re-reads persisted state, reporting whether anything changed.
type Reloader interface {
	Reload() bool
}

// Watch starts an fsnotify watcher on the directory holding file and calls
// r.Reload after each burst of writes to it, so edits made by another
// process show up without a restart. cb (if non-nil) runs after a reload
// that changed something. Writes made by the store itself are recognised
// by checksum inside Reload and ignored.
//
// The directory is watched rather than the file because atomic saves
// replace the file by rename.
func Watch(ctx context.Context, file string, r Reloader, debounce time.Duration, logger *slog.Logger, cb func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("file", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if r.Reload() {
				logger.Debug("watcher: reloaded", slog.String("file", abs))
				if cb != nil {
					cb()
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
