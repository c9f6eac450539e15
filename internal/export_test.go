package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashval/inkweaver/internal/testutil"
	"github.com/ashval/inkweaver/internal/workspace"
)

func TestExportNotes_Project(t *testing.T) {
	_, ws := testutil.TestWorkspace(t)
	ctx := context.Background()
	p, err := ws.CreateProject(ctx, workspace.ProjectInput{Name: "Ashval"})
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range []workspace.NoteInput{
		{Title: "Prologue", Content: "Ash fell.", ProjectID: &p.ID},
		{Title: "Prologue", Content: "Second take.", ProjectID: &p.ID},
		{Title: "Global idea", Content: "Not exported."},
	} {
		if _, err := ws.CreateNote(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	dir := filepath.Join(t.TempDir(), "out")
	n, err := ExportNotes(ws, "ashval", dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("exported %d notes, want 2", n)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("files = %d, want 2", len(entries))
	}
	first, err := os.ReadFile(filepath.Join(dir, "Prologue.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "project: Ashval") {
		t.Errorf("front matter missing project: %s", first)
	}
	if _, err := os.Stat(filepath.Join(dir, "Prologue-2.md")); err != nil {
		t.Errorf("clashing name not suffixed: %v", err)
	}
}

func TestExportNotes_All(t *testing.T) {
	_, ws := testutil.TestWorkspace(t)
	_, _ = ws.CreateNote(context.Background(), workspace.NoteInput{Title: "Solo", Content: "x"})

	n, err := ExportNotes(ws, "", t.TempDir())
	if err != nil || n != 1 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
}

func TestExportNotes_UnknownProject(t *testing.T) {
	_, ws := testutil.TestWorkspace(t)
	if _, err := ExportNotes(ws, "nope", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown project")
	}
}
