package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ashval/inkweaver/internal/avatars"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/testutil"
	"github.com/ashval/inkweaver/internal/workspace"
)

func testServer(t *testing.T) (*Server, *workspace.Store) {
	t.Helper()

	dataDir, ws := testutil.TestWorkspace(t)
	db := testutil.TestDB(t)
	av, err := avatars.NewStore(filepath.Join(dataDir, "avatars"))
	if err != nil {
		t.Fatal(err)
	}

	srv := New(ws, db, WithAvatars(av), WithLogger(testutil.Logger()))
	return srv, ws
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so dispatch to the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_workspace":
		result, err = srv.searchWorkspace(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "list_lore":
		result, err = srv.listLore(ctx, req)
	case "create_lore_from_text":
		result, err = srv.createLoreFromText(ctx, req)
	case "get_project_context":
		result, err = srv.getProjectContext(ctx, req)
	case "get_notation_contract":
		result, err = srv.getNotationContract(ctx, req)
	case "set_lore_avatar":
		result, err = srv.setLoreAvatar(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, ws := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Chapter One",
		"content": "The river rose.",
		"tags":    "draft, river",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	id := strings.TrimPrefix(text, "created: ")
	n, ok := ws.Note(id)
	if !ok {
		t.Fatalf("note %s not stored", id)
	}
	if len(n.Tags) != 2 || n.Tags[1] != "river" {
		t.Errorf("tags = %v", n.Tags)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"note": "chapter one"})
	text = resultText(r)
	if !strings.Contains(text, "title: Chapter One") || !strings.Contains(text, "The river rose.") {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateNote_Duplicate(t *testing.T) {
	srv, _ := testServer(t)
	args := map[string]interface{}{"title": "Twice", "content": "x"}
	_ = callTool(t, srv, "create_note", args)
	r := callTool(t, srv, "create_note", args)
	if !r.IsError {
		t.Error("expected error for duplicate title")
	}
}

func TestCreateNote_UnknownProject(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_note", map[string]interface{}{"title": "x", "content": "y", "project": "Nowhere"})
	if !r.IsError {
		t.Error("expected error for unknown project")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"note": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestSearchWorkspace(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Crossing",
		"content": "The bridge fell into the river.",
	})

	r := callTool(t, srv, "search_workspace", map[string]interface{}{"query": "bridge"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	var results []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "Crossing" {
		t.Errorf("results = %+v", results)
	}
}

func TestLoreFromTextAndList(t *testing.T) {
	srv, ws := testServer(t)
	p, err := ws.CreateProject(context.Background(), workspace.ProjectInput{Name: "Ashval"})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "create_lore_from_text", map[string]interface{}{
		"text":    "[[Elina|Character]] walked to [[Moonwell|Place]].",
		"project": "ashval",
	})
	if r.IsError {
		t.Fatalf("create lore failed: %s", resultText(r))
	}
	var created []models.LoreEntry
	if err := json.Unmarshal([]byte(resultText(r)), &created); err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d entries, want 2", len(created))
	}
	if created[0].ProjectID == nil || *created[0].ProjectID != p.ID {
		t.Errorf("entry not assigned to project")
	}

	r = callTool(t, srv, "list_lore", map[string]interface{}{"project": p.ID, "type": "place"})
	text := resultText(r)
	if !strings.Contains(text, "Moonwell (Place)") || strings.Contains(text, "Elina") {
		t.Errorf("list_lore = %q", text)
	}

	r = callTool(t, srv, "list_lore", map[string]interface{}{"type": "dragon"})
	if !r.IsError {
		t.Error("expected error for unknown type")
	}
}

func TestGetProjectContext(t *testing.T) {
	srv, ws := testServer(t)
	ctx := context.Background()
	p, _ := ws.CreateProject(ctx, workspace.ProjectInput{Name: "Ashval", Genre: "Fantasy"})
	_, _ = ws.CreateNote(ctx, workspace.NoteInput{Title: "Prologue", Content: "Ash fell.", ProjectID: &p.ID})

	r := callTool(t, srv, "get_project_context", map[string]interface{}{"project": "Ashval"})
	text := resultText(r)
	if !strings.Contains(text, "Project context: Ashval") || !strings.Contains(text, "### Prologue") {
		t.Errorf("context = %q", text)
	}
}

func TestGetNotationContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_notation_contract", nil)
	if resultText(r) != NotationContract {
		t.Error("contract mismatch")
	}
}

func TestSetLoreAvatar(t *testing.T) {
	srv, ws := testServer(t)
	e, err := ws.CreateLore(context.Background(), workspace.LoreInput{Title: "Kael", Type: models.LoreCharacter})
	if err != nil {
		t.Fatal(err)
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	r := callTool(t, srv, "set_lore_avatar", map[string]interface{}{"lore": "kael", "url": uri})
	if r.IsError {
		t.Fatalf("set avatar failed: %s", resultText(r))
	}
	got, _ := ws.LoreEntry(e.ID)
	if !strings.HasPrefix(got.AvatarURL, avatars.URLPrefix) {
		t.Errorf("avatarUrl = %q", got.AvatarURL)
	}

	r = callTool(t, srv, "set_lore_avatar", map[string]interface{}{"lore": "nobody", "url": uri})
	if !r.IsError {
		t.Error("expected error for unknown lore entry")
	}
}
