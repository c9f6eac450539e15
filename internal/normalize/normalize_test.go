package normalize

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ashval/inkweaver/internal/models"
)

func testNormalizer() *Normalizer {
	seq := 0
	return &Normalizer{
		NewID: func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		},
		Now: func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return v
}

func TestNote_NeverPanicsOnMalformedInput(t *testing.T) {
	n := testNormalizer()
	inputs := []string{
		`null`, `0`, `"text"`, `true`, `[]`, `[1,2,3]`, `{}`,
		`{"title": 5, "tags": "a, b", "versions": "nope"}`,
		`{"title": {"x": 1}, "tags": [1, null, "x", {"y": 2}], "versions": [1, {"timestamp": "bad"}]}`,
		`{"id": 1700000000000, "createdAt": 1700000000000, "updatedAt": "2024-02-03T04:05:06Z"}`,
		`{"projectId": [], "content": null, "rawMarkdownContent": false}`,
	}
	for _, in := range inputs {
		note := n.Note(decode(t, in))
		if note.ID == "" {
			t.Errorf("%s: empty id", in)
		}
		if note.Title == "" {
			t.Errorf("%s: empty title", in)
		}
		if note.Tags == nil || note.Versions == nil {
			t.Errorf("%s: nil slices", in)
		}
		if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
			t.Errorf("%s: zero timestamps", in)
		}
	}
}

func TestNote_Defaults(t *testing.T) {
	n := testNormalizer()
	note := n.Note(decode(t, `{"content": "<p>hi</p>"}`))
	if note.Title != UntitledNote {
		t.Errorf("title = %q, want placeholder", note.Title)
	}
	if note.RawMarkdownContent != "<p>hi</p>" {
		t.Errorf("raw markdown should fall back to content, got %q", note.RawMarkdownContent)
	}
	if note.ProjectID != nil {
		t.Errorf("projectId = %v, want nil", *note.ProjectID)
	}
}

func TestNote_LegacyNumericIDAndMillis(t *testing.T) {
	n := testNormalizer()
	note := n.Note(decode(t, `{"id": 1700000000000, "title": "x", "createdAt": 1700000000000}`))
	if note.ID != "1700000000000" {
		t.Errorf("id = %q", note.ID)
	}
	if !note.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("createdAt = %v", note.CreatedAt)
	}
}

func TestNote_VersionsSortedAndCapped(t *testing.T) {
	n := testNormalizer()
	var versions []map[string]any
	for i := 0; i < 15; i++ {
		versions = append(versions, map[string]any{
			"timestamp": time.Date(2025, 1, 1, 0, i, 0, 0, time.UTC).Format(time.RFC3339),
			"content":   fmt.Sprintf("v%d", i),
		})
	}
	raw, _ := json.Marshal(map[string]any{"title": "t", "versions": versions})
	note := n.Note(decode(t, string(raw)))
	if len(note.Versions) != models.MaxNoteVersions {
		t.Fatalf("versions = %d, want %d", len(note.Versions), models.MaxNoteVersions)
	}
	if note.Versions[0].Content != "v14" || note.Versions[9].Content != "v5" {
		t.Errorf("versions not newest-first: first=%q last=%q", note.Versions[0].Content, note.Versions[9].Content)
	}
}

func TestTask_CompletedOnlyAcceptsBooleans(t *testing.T) {
	n := testNormalizer()
	task := n.Task(decode(t, `{"title": "t", "completed": "yes", "priority": "URGENT", "subtasks": [{"title": "s", "completed": 1}, 7]}`))
	if task.Completed {
		t.Error("non-boolean completed should be false")
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if len(task.Subtasks) != 1 || task.Subtasks[0].Completed {
		t.Errorf("subtasks = %+v", task.Subtasks)
	}
	if task.Subtasks[0].ID == "" {
		t.Error("subtask id should be generated")
	}
}

func TestLore_TypeAndFields(t *testing.T) {
	n := testNormalizer()
	e := n.Lore(decode(t, `{
		"id": "l1", "title": "Elina", "type": "character",
		"relationships": [{"targetCharacterId": "l2", "relationshipType": "sister"}, {"relationshipType": "orphan"}],
		"customFields": {"eyes": "green", "height": 170}
	}`))
	if e.Type != models.LoreCharacter {
		t.Errorf("type = %q", e.Type)
	}
	if len(e.Relationships) != 1 || e.Relationships[0].TargetCharacterID != "l2" {
		t.Errorf("relationships = %+v", e.Relationships)
	}
	if e.CustomFields["height"] != "170" || e.CustomFields["eyes"] != "green" {
		t.Errorf("customFields = %v", e.CustomFields)
	}

	unknown := n.Lore(decode(t, `{"type": "Dragon"}`))
	if unknown.Type != models.LoreOther || unknown.Title != UntitledLore {
		t.Errorf("unknown lore = %+v", unknown)
	}
}

func TestPreferences_OverlayDefaults(t *testing.T) {
	n := testNormalizer()
	p := n.Preferences(decode(t, `{"aiWriter": {"repetitionThreshold": 5, "menuStyle": "weird"}, "fontFamily": "serif"}`))
	def := models.DefaultPreferences()
	if p.AIWriter.RepetitionThreshold != 5 {
		t.Errorf("threshold = %d", p.AIWriter.RepetitionThreshold)
	}
	if p.AIWriter.MenuStyle != def.AIWriter.MenuStyle {
		t.Errorf("menu style = %q, want default", p.AIWriter.MenuStyle)
	}
	if p.FontFamily != "serif" {
		t.Errorf("font = %q", p.FontFamily)
	}
	if p.Notifications != def.Notifications {
		t.Errorf("notifications = %+v", p.Notifications)
	}
}

func TestAppData_EmptyOnGarbage(t *testing.T) {
	n := testNormalizer()
	for _, in := range []string{`null`, `"x"`, `[]`, `{"notes": "x", "tasks": {}}`} {
		d := n.AppData(decode(t, in))
		if d.Notes == nil || d.Tasks == nil || d.LoreEntries == nil || d.Projects == nil || d.PlotNodes == nil {
			t.Errorf("%s: nil collections", in)
		}
		if d.ActiveTheme != models.DefaultTheme {
			t.Errorf("%s: theme = %q", in, d.ActiveTheme)
		}
	}
}

func TestAppData_DuplicateIDsReassigned(t *testing.T) {
	n := testNormalizer()
	d := n.AppData(decode(t, `{"notes": [{"id": 1, "title": "a"}, {"id": 1, "title": "b"}]}`))
	if len(d.Notes) != 2 {
		t.Fatalf("notes = %d", len(d.Notes))
	}
	if d.Notes[0].ID == d.Notes[1].ID {
		t.Errorf("duplicate ids kept: %q", d.Notes[0].ID)
	}
}

func TestAppData_RebuildsPlotChildren(t *testing.T) {
	n := testNormalizer()
	d := n.AppData(decode(t, `{"plotOutlineNodes": [
		{"id": "root", "text": "Act I", "childrenIds": ["stale"]},
		{"id": "b", "text": "beat b", "parentId": "root", "order": 2},
		{"id": "a", "text": "beat a", "parentId": "root", "order": 1},
		{"id": "orphan", "text": "lost", "parentId": "missing"}
	]}`))
	byID := map[string]models.PlotNode{}
	for _, p := range d.PlotNodes {
		byID[p.ID] = p
	}
	kids := byID["root"].ChildrenIDs
	if len(kids) != 2 || kids[0] != "a" || kids[1] != "b" {
		t.Errorf("root children = %v, want [a b]", kids)
	}
	if byID["orphan"].ParentID != nil {
		t.Error("dangling parent should become root")
	}
}

func TestLearnedWords(t *testing.T) {
	got := LearnedWords(decode(t, `["Mana", "mana", " Aether ", 3, null]`))
	want := []string{"3", "aether", "mana"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("learned = %v, want %v", got, want)
	}
}
