//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			id UNINDEXED,
			kind UNINDEXED,
			project UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, kind, project, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO documents_fts (id, kind, project, title, body, tags) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, project, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM documents_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search and returns matching results
// with snippets. Each word of query is matched as a quoted prefix term. A
// non-nil project restricts hits to that project and global documents.
func (db *DB) Search(query string, project *string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	match := matchExpr(query)
	if match == "" {
		return []SearchResult{}, nil
	}
	scoped := project != nil
	rows, err := db.conn.Query(`
		SELECT id,
		       kind,
		       project,
		       title,
		       snippet(documents_fts, 4, '<b>', '</b>', '...', 64)
		FROM documents_fts
		WHERE documents_fts MATCH ?
		  AND (? = 0 OR project = '' OR project = ?)
		ORDER BY rank
		LIMIT ?
	`, match, scoped, projectKey(project), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}

// matchExpr turns free text into an FTS5 expression of quoted prefix terms.
func matchExpr(q string) string {
	var terms []string
	for _, w := range strings.Fields(q) {
		w = strings.ReplaceAll(w, `"`, `""`)
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}
