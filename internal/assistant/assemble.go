package assistant

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
)

// Role of a chat turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message of the chat history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Payload is everything sent to the generator for one request.
type Payload struct {
	SystemInstruction string `json:"systemInstruction"`
	Prompt            string `json:"prompt"`
	History           []Turn `json:"history,omitempty"`
	// JSON asks the generator for an application/json response.
	JSON bool `json:"-"`
}

// Request is a writer's call to the assistant.
type Request struct {
	Mode      string            `json:"mode"`
	Input     string            `json:"input"`
	Fields    map[string]string `json:"fields,omitempty"`
	ProjectID *string           `json:"projectId"`
	// NoteID is the note being edited; it is left out of the context block.
	NoteID string `json:"noteId,omitempty"`
	// Instruction overrides the system instruction in custom mode.
	Instruction string `json:"instruction,omitempty"`
	History     []Turn `json:"history,omitempty"`
}

// Source is the read side of the workspace the assembler draws context
// from.
type Source interface {
	Project(id string) (models.Project, bool)
	Notes() []models.Note
	LoreEntries() []models.LoreEntry
}

// Limits bounds the context block and chat history.
type Limits struct {
	MaxNotes   int
	MaxLore    int
	MaxChars   int // per note or lore entry, in characters
	MaxHistory int // exchanges (user + model turn pairs)
}

// DefaultLimits returns the standard context caps.
func DefaultLimits() Limits {
	return Limits{MaxNotes: 5, MaxLore: 5, MaxChars: 2000, MaxHistory: 10}
}

// Assembler turns a Request into a Payload.
type Assembler struct {
	src                Source
	limits             Limits
	defaultInstruction string
}

// NewAssembler creates an assembler. defaultInstruction is the custom-mode
// instruction used when neither the request nor the preferences set one.
func NewAssembler(src Source, limits Limits, defaultInstruction string) *Assembler {
	return &Assembler{src: src, limits: limits, defaultInstruction: defaultInstruction}
}

// Assemble resolves the system instruction, formats the prompt, appends the
// project context block for context-aware modes, and caps the history.
// storedInstruction is the custom instruction saved in the preferences.
func (a *Assembler) Assemble(req Request, storedInstruction string) (Payload, error) {
	mode, ok := LookupMode(req.Mode)
	if !ok {
		return Payload{}, apperr.Invalid("assemble", fmt.Errorf("unknown mode %q", req.Mode))
	}
	if strings.TrimSpace(req.Input) == "" && len(mode.Fields) == 0 {
		return Payload{}, apperr.Invalid("assemble", errors.New("input is required"))
	}

	instruction := mode.SystemInstruction
	if mode.ID == ModeCustom {
		instruction = firstNonEmpty(req.Instruction, storedInstruction, a.defaultInstruction)
		if instruction == "" {
			return Payload{}, apperr.Invalid("assemble", errors.New("custom mode needs an instruction"))
		}
	}

	prompt := mode.Format(req.Input, req.Fields)
	if mode.ContextAware && req.ProjectID != nil {
		if block := a.ContextBlock(*req.ProjectID, req.NoteID); block != "" {
			prompt += "\n\n" + block
		}
	}

	return Payload{
		SystemInstruction: instruction,
		Prompt:            prompt,
		History:           capHistory(req.History, a.limits.MaxHistory),
	}, nil
}

// ContextBlock renders the labeled project context: up to MaxNotes notes of
// the project other than excludeNoteID and up to MaxLore lore entries, most
// recently updated first, each truncated to MaxChars. It returns "" for an
// unknown project or one with nothing to show.
func (a *Assembler) ContextBlock(projectID, excludeNoteID string) string {
	project, ok := a.src.Project(projectID)
	if !ok {
		return ""
	}

	var notes []models.Note
	for _, n := range a.src.Notes() {
		if n.ProjectID != nil && *n.ProjectID == projectID && n.ID != excludeNoteID {
			notes = append(notes, n)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].UpdatedAt.After(notes[j].UpdatedAt) })
	if len(notes) > a.limits.MaxNotes {
		notes = notes[:a.limits.MaxNotes]
	}

	var lore []models.LoreEntry
	for _, e := range a.src.LoreEntries() {
		if e.ProjectID != nil && *e.ProjectID == projectID {
			lore = append(lore, e)
		}
	}
	sort.SliceStable(lore, func(i, j int) bool { return lore[i].CreatedAt.After(lore[j].CreatedAt) })
	if len(lore) > a.limits.MaxLore {
		lore = lore[:a.limits.MaxLore]
	}

	if len(notes) == 0 && len(lore) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Project context: %s ---\n", project.Name)
	if project.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", project.Genre)
	}
	if len(notes) > 0 {
		b.WriteString("\n## Notes\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "\n### %s\n%s\n", n.Title, Truncate(n.RawMarkdownContent, a.limits.MaxChars))
		}
	}
	if len(lore) > 0 {
		b.WriteString("\n## Lore\n")
		for _, e := range lore {
			fmt.Fprintf(&b, "\n### %s (%s)\n%s\n", e.Title, e.Type, Truncate(e.Content, a.limits.MaxChars))
		}
	}
	b.WriteString("--- End of project context ---")
	return b.String()
}

// Truncate cuts s to at most n characters (runes).
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// capHistory keeps the last max exchanges, dropping the oldest turns first.
func capHistory(h []Turn, max int) []Turn {
	if max <= 0 || len(h) == 0 {
		return nil
	}
	limit := max * 2
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]Turn, 0, len(h))
	for _, t := range h {
		if t.Role != RoleModel {
			t.Role = RoleUser
		}
		if strings.TrimSpace(t.Text) != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
