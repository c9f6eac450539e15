// Package normalize coerces loosely-typed persisted JSON into fully-populated
// workspace records. Every function accepts any JSON-shaped value (the result
// of json.Unmarshal into an interface) and never panics; missing or malformed
// fields are replaced by defaults.
package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/ashval/inkweaver/internal/models"
)

// Placeholder titles for records persisted without one.
const (
	UntitledNote    = "Untitled note"
	UntitledTask    = "Untitled task"
	UntitledLore    = "Unnamed entry"
	UntitledProject = "Untitled project"
	UntitledBeat    = "New plot point"
)

// Normalizer carries the id and clock sources used to fill missing fields.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

// Default returns a Normalizer backed by UUIDv7 ids and the wall clock.
func Default() *Normalizer {
	return &Normalizer{
		NewID: func() string { return uuid.Must(uuid.NewV7()).String() },
		Now:   func() time.Time { return time.Now().UTC().Round(0) },
	}
}

// Project normalizes a single project record.
func (n *Normalizer) Project(v any) models.Project {
	m := object(v)
	now := n.Now()
	created := timestamp(m, "createdAt", now)
	return models.Project{
		ID:          n.id(m, "id"),
		Name:        text(m, "name", UntitledProject),
		Genre:       str(m, "genre"),
		Description: str(m, "description"),
		CreatedAt:   created,
		UpdatedAt:   timestamp(m, "updatedAt", created),
	}
}

// Note normalizes a single note record, including its version history.
func (n *Normalizer) Note(v any) models.Note {
	m := object(v)
	now := n.Now()
	created := timestamp(m, "createdAt", now)
	updated := timestamp(m, "updatedAt", created)

	raw, hasRaw := optStr(m, "rawMarkdownContent")
	content := str(m, "content")
	if !hasRaw {
		raw = content
	}

	return models.Note{
		ID:                 n.id(m, "id"),
		Title:              text(m, "title", UntitledNote),
		Icon:               str(m, "icon"),
		Content:            content,
		RawMarkdownContent: raw,
		Category:           str(m, "category"),
		Tags:               stringList(m["tags"]),
		CreatedAt:          created,
		UpdatedAt:          updated,
		Versions:           n.versions(m["versions"], updated),
		ProjectID:          optID(m, "projectId"),
	}
}

func (n *Normalizer) versions(v any, fallback time.Time) []models.NoteVersion {
	items, ok := v.([]any)
	if !ok {
		return []models.NoteVersion{}
	}
	out := make([]models.NoteVersion, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		raw, hasRaw := optStr(m, "rawMarkdownContent")
		content := str(m, "content")
		if !hasRaw {
			raw = content
		}
		out = append(out, models.NoteVersion{
			Timestamp:          timestamp(m, "timestamp", fallback),
			Content:            content,
			RawMarkdownContent: raw,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > models.MaxNoteVersions {
		out = out[:models.MaxNoteVersions]
	}
	return out
}

// Task normalizes a single task record and its subtasks.
func (n *Normalizer) Task(v any) models.Task {
	m := object(v)
	now := n.Now()
	created := timestamp(m, "createdAt", now)

	prio := models.Priority(strings.ToLower(str(m, "priority")))
	if !prio.Valid() {
		prio = models.PriorityMedium
	}

	var subtasks []models.Subtask
	if items, ok := m["subtasks"].([]any); ok {
		for _, it := range items {
			sm, ok := it.(map[string]any)
			if !ok {
				continue
			}
			subtasks = append(subtasks, models.Subtask{
				ID:        n.id(sm, "id"),
				Title:     text(sm, "title", UntitledTask),
				Completed: boolean(sm, "completed"),
			})
		}
	}
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}

	return models.Task{
		ID:        n.id(m, "id"),
		Title:     text(m, "title", UntitledTask),
		Icon:      str(m, "icon"),
		Completed: boolean(m, "completed"),
		Priority:  prio,
		DueDate:   str(m, "dueDate"),
		Category:  str(m, "category"),
		ProjectID: optID(m, "projectId"),
		Subtasks:  subtasks,
		CreatedAt: created,
		UpdatedAt: timestamp(m, "updatedAt", created),
	}
}

// Lore normalizes a single lore entry.
func (n *Normalizer) Lore(v any) models.LoreEntry {
	m := object(v)
	typ, ok := models.ParseLoreType(str(m, "type"))
	if !ok {
		typ = models.LoreOther
	}

	var rels []models.Relationship
	if items, ok := m["relationships"].([]any); ok {
		for _, it := range items {
			rm, ok := it.(map[string]any)
			if !ok {
				continue
			}
			target := str(rm, "targetCharacterId")
			if target == "" {
				continue
			}
			rels = append(rels, models.Relationship{
				TargetCharacterID: target,
				RelationshipType:  str(rm, "relationshipType"),
				Description:       str(rm, "description"),
			})
		}
	}

	var custom map[string]string
	if cm, err := cast.ToStringMapE(m["customFields"]); err == nil && len(cm) > 0 {
		custom = make(map[string]string, len(cm))
		for k, val := range cm {
			if s, err := cast.ToStringE(val); err == nil {
				custom[k] = s
			}
		}
	}

	var arcana []string
	if _, present := m["characterArcana"]; present {
		arcana = stringList(m["characterArcana"])
	}

	return models.LoreEntry{
		ID:              n.id(m, "id"),
		Title:           text(m, "title", UntitledLore),
		Type:            typ,
		Content:         str(m, "content"),
		Tags:            stringList(m["tags"]),
		CreatedAt:       timestamp(m, "createdAt", n.Now()),
		ProjectID:       optID(m, "projectId"),
		Role:            str(m, "role"),
		Age:             str(m, "age"),
		Gender:          str(m, "gender"),
		Status:          str(m, "status"),
		AvatarURL:       str(m, "avatarUrl"),
		CharacterArcana: arcana,
		Relationships:   rels,
		CustomFields:    custom,
	}
}

// PlotNode normalizes a single outline node. ChildrenIDs is taken as stored;
// AppData rebuilds it from parent links.
func (n *Normalizer) PlotNode(v any) models.PlotNode {
	m := object(v)
	expanded := true
	if b, ok := m["isExpanded"].(bool); ok {
		expanded = b
	}
	return models.PlotNode{
		ID:                n.id(m, "id"),
		Text:              text(m, "text", UntitledBeat),
		Order:             integer(m, "order", 0),
		ParentID:          optID(m, "parentId"),
		ChildrenIDs:       stringList(m["childrenIds"]),
		LinkedNoteID:      optID(m, "linkedNoteId"),
		LinkedLoreEntryID: optID(m, "linkedLoreEntryId"),
		ProjectID:         optID(m, "projectId"),
		IsExpanded:        expanded,
	}
}

// Preferences overlays stored values onto the default preferences.
func (n *Normalizer) Preferences(v any) models.UserPreferences {
	p := models.DefaultPreferences()
	m := object(v)

	notif := object(m["notifications"])
	p.Notifications.TaskReminders = boolOr(notif, "taskReminders", p.Notifications.TaskReminders)
	p.Notifications.PomodoroAlerts = boolOr(notif, "pomodoroAlerts", p.Notifications.PomodoroAlerts)
	p.Notifications.DailySummary = boolOr(notif, "dailySummary", p.Notifications.DailySummary)

	ai := object(m["aiWriter"])
	if th := integer(ai, "repetitionThreshold", p.AIWriter.RepetitionThreshold); th > 1 {
		p.AIWriter.RepetitionThreshold = th
	}
	p.AIWriter.AutoLoreCreation = boolOr(ai, "autoLoreCreation", p.AIWriter.AutoLoreCreation)
	p.AIWriter.AutoSceneAnalysis = boolOr(ai, "autoSceneAnalysis", p.AIWriter.AutoSceneAnalysis)
	switch ms := models.MenuStyle(str(ai, "menuStyle")); ms {
	case models.MenuStyleFloating, models.MenuStyleSidebar:
		p.AIWriter.MenuStyle = ms
	}
	p.AIWriter.CustomInstruction = str(ai, "customInstruction")

	if f := str(m, "fontFamily"); f != "" {
		p.FontFamily = f
	}
	return p
}

// Theme returns the stored theme or the default for unknown values.
func (n *Normalizer) Theme(v any) models.Theme {
	s, _ := v.(string)
	t := models.Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return models.DefaultTheme
	}
	return t
}

// Pomodoro overlays stored durations onto the default cycle; non-positive
// values keep the default.
func (n *Normalizer) Pomodoro(v any) models.PomodoroConfig {
	p := models.DefaultPomodoro()
	m := object(v)
	if x := integer(m, "work", 0); x > 0 {
		p.WorkMinutes = x
	}
	if x := integer(m, "shortBreak", 0); x > 0 {
		p.ShortBreakMinutes = x
	}
	if x := integer(m, "longBreak", 0); x > 0 {
		p.LongBreakMinutes = x
	}
	if x := integer(m, "sessionsBeforeLongBreak", 0); x > 0 {
		p.SessionsBeforeLongBreak = x
	}
	return p
}

// AppData normalizes the whole persistence envelope. Non-object collection
// elements are dropped, duplicate ids are reassigned, dangling plot parents
// become roots and ChildrenIDs is rebuilt from the parent links.
func (n *Normalizer) AppData(v any) models.AppData {
	m := object(v)
	d := models.EmptyAppData()

	seen := make(map[string]struct{})
	unique := func(id string) string {
		for {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				return id
			}
			id = n.NewID()
		}
	}

	for _, it := range objects(m["projects"]) {
		p := n.Project(it)
		p.ID = unique(p.ID)
		d.Projects = append(d.Projects, p)
	}
	for _, it := range objects(m["notes"]) {
		note := n.Note(it)
		note.ID = unique(note.ID)
		d.Notes = append(d.Notes, note)
	}
	for _, it := range objects(m["tasks"]) {
		t := n.Task(it)
		t.ID = unique(t.ID)
		d.Tasks = append(d.Tasks, t)
	}
	for _, it := range objects(m["loreEntries"]) {
		e := n.Lore(it)
		e.ID = unique(e.ID)
		d.LoreEntries = append(d.LoreEntries, e)
	}
	for _, it := range objects(m["plotOutlineNodes"]) {
		p := n.PlotNode(it)
		p.ID = unique(p.ID)
		d.PlotNodes = append(d.PlotNodes, p)
	}
	RebuildChildren(d.PlotNodes)

	d.UserPreferences = n.Preferences(m["userPreferences"])
	d.ActiveTheme = n.Theme(m["activeTheme"])
	d.PomodoroConfig = n.Pomodoro(m["pomodoroConfig"])
	return d
}

// LearnedWords normalizes the stored vocabulary list: trimmed, lower-cased,
// de-duplicated, sorted.
func LearnedWords(v any) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, w := range stringList(v) {
		w = strings.ToLower(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// RebuildChildren recomputes ChildrenIDs from ParentID links in place.
// Parents that do not exist are cleared so the node becomes a root.
// Children are listed by Order, then id.
func RebuildChildren(nodes []models.PlotNode) {
	idx := make(map[string]int, len(nodes))
	for i := range nodes {
		idx[nodes[i].ID] = i
	}
	kids := make(map[string][]int, len(nodes))
	for i := range nodes {
		p := nodes[i].ParentID
		if p == nil {
			continue
		}
		if _, ok := idx[*p]; !ok || *p == nodes[i].ID {
			nodes[i].ParentID = nil
			continue
		}
		kids[*p] = append(kids[*p], i)
	}
	for i := range nodes {
		list := kids[nodes[i].ID]
		sort.SliceStable(list, func(a, b int) bool {
			na, nb := nodes[list[a]], nodes[list[b]]
			if na.Order != nb.Order {
				return na.Order < nb.Order
			}
			return na.ID < nb.ID
		})
		ids := make([]string, 0, len(list))
		for _, k := range list {
			ids = append(ids, nodes[k].ID)
		}
		nodes[i].ChildrenIDs = ids
	}
}

// --- field helpers ---

func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	if m, err := cast.ToStringMapE(v); err == nil {
		return m
	}
	return map[string]any{}
}

func objects(v any) []any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(items))
	for _, it := range items {
		if _, ok := it.(map[string]any); ok {
			out = append(out, it)
		}
	}
	return out
}

func (n *Normalizer) id(m map[string]any, key string) string {
	if s := scalar(m[key]); s != "" {
		return s
	}
	return n.NewID()
}

// scalar renders strings and numbers; everything else yields "".
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int, int64, int32, uint, uint64, uint32:
		return cast.ToString(x)
	}
	return ""
}

func str(m map[string]any, key string) string {
	s, _ := optStr(m, key)
	return s
}

func optStr(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// text is a required display field: blank values fall back to def.
func text(m map[string]any, key, def string) string {
	s := strings.TrimSpace(str(m, key))
	if s == "" {
		return def
	}
	return s
}

func optID(m map[string]any, key string) *string {
	s := scalar(m[key])
	if s == "" || s == "null" {
		return nil
	}
	return &s
}

func boolean(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func boolOr(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func integer(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch v.(type) {
	case bool, map[string]any, []any:
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

func stringList(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, it := range x {
			if s := scalar(it); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// timestamp accepts RFC 3339 strings, other common date layouts and epoch
// milliseconds. Anything else yields def.
func timestamp(m map[string]any, key string, def time.Time) time.Time {
	switch x := m[key].(type) {
	case float64:
		if x <= 0 {
			return def
		}
		return time.UnixMilli(int64(x)).UTC()
	case string:
		if x == "" {
			return def
		}
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t.UTC()
		}
		if ms, err := strconv.ParseInt(x, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
		if t, err := cast.ToTimeE(x); err == nil {
			return t.UTC()
		}
	}
	return def
}
