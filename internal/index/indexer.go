package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/workspace"
)

// DefaultDebounce is how long the indexer waits after the last change
// before re-syncing.
const DefaultDebounce = 200 * time.Millisecond

// Source is the workspace the indexer follows.
type Source interface {
	Snapshot() (models.AppData, string)
	Subscribe(fn func(workspace.Change)) func()
}

// Run syncs db with src once, then re-syncs after every burst of note or
// lore changes until ctx is cancelled.
func Run(ctx context.Context, db Index, src Source, debounce time.Duration, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	resync := func() {
		snap, _ := src.Snapshot()
		up, del, err := Sync(db, snap, logger)
		if err != nil {
			logger.Warn("indexer: sync failed", slog.String("error", err.Error()))
			return
		}
		if up > 0 || del > 0 {
			logger.Debug("indexer: synced", slog.Int("upserted", up), slog.Int("deleted", del))
		}
	}

	// Buffered so a burst of store writes never blocks the writer.
	dirty := make(chan struct{}, 1)
	unsubscribe := src.Subscribe(func(c workspace.Change) {
		switch c.Collection {
		case workspace.CollectionNote, workspace.CollectionLore, workspace.CollectionProject, workspace.CollectionWorkspace:
		default:
			return
		}
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	resync()
	logger.Info("indexer: started")

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("indexer: stopped")
			return nil
		case <-dirty:
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerCh = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerCh:
			resync()
		}
	}
}
