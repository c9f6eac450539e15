package index

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ashval/inkweaver/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "inkweaver-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func ptr(s string) *string { return &s }

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM mentions`).Scan(&count); err != nil {
		t.Fatalf("mentions table missing: %v", err)
	}
}

func TestUpsertAndChecksum(t *testing.T) {
	db := testDB(t)
	d := Document{
		ID:        "n1",
		Kind:      KindNote,
		Title:     "Chapter One",
		Checksum:  "abc123",
		Tags:      []string{"draft"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDocument(d, "Elina crosses the river.", []string{"Elina"}); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.Checksum("n1")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}

	d.Checksum = "def456"
	if err := db.UpsertDocument(d, "Elina waits.", nil); err != nil {
		t.Fatalf("second UpsertDocument: %v", err)
	}
	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all["n1"] != "def456" {
		t.Errorf("AllChecksums = %v", all)
	}
	// Re-upserting replaces the mention set.
	ids, _ := db.Mentioning("Elina")
	if len(ids) != 0 {
		t.Errorf("stale mentions: %v", ids)
	}
}

func TestMentioningIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "a", Kind: KindNote, Checksum: "1"}, "body", []string{"Elina"})
	_ = db.UpsertDocument(Document{ID: "b", Kind: KindLore, Checksum: "2"}, "body", []string{"elina", "Tower"})

	ids, err := db.Mentioning(" ELINA ")
	if err != nil {
		t.Fatalf("Mentioning: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("Mentioning = %v, want [a b]", ids)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "del", Kind: KindNote, Checksum: "x"}, "body", []string{"Target"})

	if err := db.DeleteDocument("del"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.Checksum("del")
	if cs != "" {
		t.Error("expected empty checksum after delete")
	}
	ids, _ := db.Mentioning("Target")
	if len(ids) != 0 {
		t.Errorf("expected mentions removed, got %v", ids)
	}
}

func TestSearchScopesByProject(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "g", Kind: KindLore, Title: "Moonwell", Checksum: "1"}, "A sacred spring.", nil)
	_ = db.UpsertDocument(Document{ID: "p1", Kind: KindNote, ProjectID: ptr("ashval"), Title: "Spring festival", Checksum: "2"}, "The spring rites.", nil)
	_ = db.UpsertDocument(Document{ID: "p2", Kind: KindNote, ProjectID: ptr("other"), Title: "Spring cleaning", Checksum: "3"}, "Unrelated spring.", nil)

	all, err := db.Search("spring", nil, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unscoped results = %d, want 3", len(all))
	}

	scoped, err := db.Search("spring", ptr("ashval"), 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped results = %d, want 2 (%v)", len(scoped), scoped)
	}
	for _, r := range scoped {
		if r.ID == "p2" {
			t.Errorf("other project's note leaked into scoped search")
		}
		if r.ID == "g" && r.ProjectID != nil {
			t.Errorf("global document has project %q", *r.ProjectID)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(Document{ID: "a", Kind: KindNote, Checksum: "1"}, "anything", nil)
	res, err := db.Search("   ", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Errorf("blank query returned %d results", len(res))
	}
}

func TestSyncUpsertsAndRemoves(t *testing.T) {
	db := testDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := models.EmptyAppData()
	snap.Notes = []models.Note{
		{ID: "n1", Title: "Arrival", RawMarkdownContent: "[[Elina|Character]] reaches the [[Old Tower]].", Tags: []string{}, UpdatedAt: now},
		{ID: "n2", Title: "Notes", RawMarkdownContent: "plain", Tags: []string{}, UpdatedAt: now},
	}
	snap.LoreEntries = []models.LoreEntry{
		{ID: "l1", Title: "Elina", Type: models.LoreCharacter, Content: "A ranger.", Tags: []string{}, CreatedAt: now},
	}

	up, del, err := Sync(db, snap, discardLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if up != 3 || del != 0 {
		t.Errorf("first sync = (%d, %d), want (3, 0)", up, del)
	}

	ids, _ := db.Mentioning("old tower")
	if len(ids) != 1 || ids[0] != "n1" {
		t.Errorf("Mentioning(old tower) = %v", ids)
	}

	// Unchanged snapshot: nothing to do.
	up, del, _ = Sync(db, snap, discardLogger())
	if up != 0 || del != 0 {
		t.Errorf("idempotent sync = (%d, %d), want (0, 0)", up, del)
	}

	// Moving a note to a project changes its checksum.
	snap.Notes[1].ProjectID = ptr("p")
	snap.LoreEntries = nil
	up, del, _ = Sync(db, snap, discardLogger())
	if up != 1 || del != 1 {
		t.Errorf("third sync = (%d, %d), want (1, 1)", up, del)
	}
	if cs, _ := db.Checksum("l1"); cs != "" {
		t.Error("removed lore entry still indexed")
	}
}
