// Package testutil provides shared test helpers for setting up workspaces
// and search databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/ashval/inkweaver/internal/index"
	"github.com/ashval/inkweaver/internal/storage"
	"github.com/ashval/inkweaver/internal/workspace"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkweaver-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestWorkspace opens a store persisted under a temporary data directory.
func TestWorkspace(t *testing.T, opts ...workspace.Option) (string, *workspace.Store) {
	t.Helper()
	dataDir := t.TempDir()
	fs, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]workspace.Option{workspace.WithProvider(fs), workspace.WithLogger(Logger())}, opts...)
	return dataDir, workspace.Open(opts...)
}

// Synced copies the store's notes and lore into db.
func Synced(t *testing.T, db *index.DB, ws *workspace.Store) {
	t.Helper()
	snap, _ := ws.Snapshot()
	if _, _, err := index.Sync(db, snap, Logger()); err != nil {
		t.Fatal(err)
	}
}
