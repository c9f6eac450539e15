//go:build sqlite_fts5

package index

import (
	"strings"
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	d := Document{
		ID:        "fts",
		Kind:      KindNote,
		Title:     "Storm",
		Checksum:  "f1",
		Tags:      []string{"weather"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDocument(d, "Thunder rolls over the Ashval highlands.", nil); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	results, err := db.Search("highland", nil, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "fts" {
		t.Errorf("id = %q", results[0].ID)
	}
	if !strings.Contains(results[0].Snippet, "<b>") {
		t.Errorf("snippet not highlighted: %q", results[0].Snippet)
	}
}

func TestFTS5_QuotesAreEscaped(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "q", Kind: KindNote, Checksum: "1"}, `She said "run".`, nil)
	if _, err := db.Search(`"run`, nil, 10); err != nil {
		t.Fatalf("unbalanced quote should not break the query: %v", err)
	}
}

func TestFTS5_DeleteRemovesFromSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "gone", Kind: KindLore, Checksum: "1"}, "ephemeral lantern", nil)
	_ = db.DeleteDocument("gone")
	results, err := db.Search("lantern", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deleted document still searchable")
	}
}
