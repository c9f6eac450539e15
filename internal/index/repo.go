package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kinds of indexed documents.
const (
	KindNote = "note"
	KindLore = "lore"
)

// Document is one indexed note or lore entry.
type Document struct {
	ID        string
	Kind      string
	ProjectID *string
	Title     string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult is one search hit.
type SearchResult struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	ProjectID *string `json:"projectId"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
}

// UpsertDocument inserts or replaces a document, its FTS entry and its
// mentions within a transaction.
func (db *DB) UpsertDocument(d Document, body string, mentions []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.Tags == nil {
		d.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(d.Tags)
	project := projectKey(d.ProjectID)

	_, err = tx.Exec(`
		INSERT INTO documents (id, kind, project, title, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind       = excluded.kind,
			project    = excluded.project,
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.ID, d.Kind, project, d.Title, d.Checksum, string(tagsJSON), body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.ID, d.Kind, project, d.Title, body, d.Tags); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM mentions WHERE source = ?`, d.ID)
	if len(mentions) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO mentions (source, title) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare mention insert: %w", err)
		}
		defer stmt.Close()
		for _, title := range mentions {
			if _, err := stmt.Exec(d.ID, strings.ToLower(title)); err != nil {
				return fmt.Errorf("index: insert mention: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry and its mentions.
func (db *DB) DeleteDocument(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM mentions WHERE source = ?`, id)
	_, _ = tx.Exec(`DELETE FROM documents WHERE id = ?`, id)

	return tx.Commit()
}

// Checksum returns the stored checksum for a document, or "" when it is not
// indexed.
func (db *DB) Checksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE id = ?`, id).Scan(&cs)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Mentioning returns the ids of documents that reference title
// (case-insensitive).
func (db *DB) Mentioning(title string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM mentions WHERE title = ? ORDER BY source`, strings.ToLower(strings.TrimSpace(title)))
	if err != nil {
		return nil, fmt.Errorf("index: mentions: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// projectKey stores global documents under "".
func projectKey(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func projectRef(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var project string
		if err := rows.Scan(&r.ID, &r.Kind, &project, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		r.ProjectID = projectRef(project)
		out = append(out, r)
	}
	return out, rows.Err()
}
