//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE on the documents table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _, _ string, _ []string) error {
	// Body is already stored in the documents table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled
// in). A non-nil project restricts hits to that project and global
// documents.
func (db *DB) Search(query string, project *string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	like := "%" + query + "%"
	scoped := project != nil
	rows, err := db.conn.Query(`
		SELECT id, kind, project, title, substr(body, 1, 200)
		FROM documents
		WHERE (title LIKE ? OR body LIKE ? OR tags LIKE ?)
		  AND (? = 0 OR project = '' OR project = ?)
		ORDER BY (title LIKE ?) DESC, updated_at DESC
		LIMIT ?
	`, like, like, like, scoped, projectKey(project), like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
