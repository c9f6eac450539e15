package workspace

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ashval/inkweaver/internal/models"
)

// Patch fields are optional: nil leaves the stored value unchanged. For
// reference fields (ProjectID, ParentID, links) a pointer to "" clears the
// reference.

var errTitleRequired = errors.New("title is required")

// ProjectInput creates a project.
type ProjectInput struct {
	Name        string `json:"name"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

func (in ProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required"), validation.Length(1, 200)),
	)
}

// ProjectPatch updates a project.
type ProjectPatch struct {
	Name        *string `json:"name"`
	Genre       *string `json:"genre"`
	Description *string `json:"description"`
}

func (p ProjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errors.New("name must not be empty")
	}
	return nil
}

// NoteInput creates a note. Content holds the Markdown source.
type NoteInput struct {
	Title     string   `json:"title"`
	Icon      string   `json:"icon"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	ProjectID *string  `json:"projectId"`
}

func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error(errTitleRequired.Error())),
	)
}

// NotePatch updates a note. Content holds the Markdown source; changing it
// archives the previous version.
type NotePatch struct {
	Title     *string   `json:"title"`
	Icon      *string   `json:"icon"`
	Content   *string   `json:"content"`
	Category  *string   `json:"category"`
	Tags      *[]string `json:"tags"`
	ProjectID *string   `json:"projectId"`
}

func (p NotePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errTitleRequired
	}
	return nil
}

// TaskInput creates a task. Subtasks are titles of initial checklist items.
type TaskInput struct {
	Title     string          `json:"title"`
	Icon      string          `json:"icon"`
	Priority  models.Priority `json:"priority"`
	DueDate   string          `json:"dueDate"`
	Category  string          `json:"category"`
	ProjectID *string         `json:"projectId"`
	Subtasks  []string        `json:"subtasks"`
}

func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error(errTitleRequired.Error())),
		validation.Field(&in.Priority, validation.In(models.PriorityLow, models.PriorityMedium, models.PriorityHigh)),
		validation.Field(&in.DueDate, validation.Date("2006-01-02")),
	)
}

// TaskPatch updates a task.
type TaskPatch struct {
	Title     *string          `json:"title"`
	Icon      *string          `json:"icon"`
	Completed *bool            `json:"completed"`
	Priority  *models.Priority `json:"priority"`
	DueDate   *string          `json:"dueDate"`
	Category  *string          `json:"category"`
	ProjectID *string          `json:"projectId"`
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return errors.New("priority must be one of low, medium, high")
	}
	if p.DueDate != nil {
		if err := validation.Validate(*p.DueDate, validation.Date("2006-01-02")); err != nil {
			return errors.New("dueDate must be YYYY-MM-DD")
		}
	}
	return nil
}

// LoreInput creates a lore entry.
type LoreInput struct {
	Title           string                `json:"title"`
	Type            models.LoreType       `json:"type"`
	Content         string                `json:"content"`
	Tags            []string              `json:"tags"`
	ProjectID       *string               `json:"projectId"`
	Role            string                `json:"role"`
	Age             string                `json:"age"`
	Gender          string                `json:"gender"`
	Status          string                `json:"status"`
	AvatarURL       string                `json:"avatarUrl"`
	CharacterArcana []string              `json:"characterArcana"`
	Relationships   []models.Relationship `json:"relationships"`
	CustomFields    map[string]string     `json:"customFields"`
}

func (in LoreInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error(errTitleRequired.Error())),
		validation.Field(&in.Type, validation.In(loreTypeValues()...)),
	)
}

// LorePatch updates a lore entry. Slice and map fields replace the stored
// value wholesale.
type LorePatch struct {
	Title           *string                `json:"title"`
	Type            *models.LoreType       `json:"type"`
	Content         *string                `json:"content"`
	Tags            *[]string              `json:"tags"`
	ProjectID       *string                `json:"projectId"`
	Role            *string                `json:"role"`
	Age             *string                `json:"age"`
	Gender          *string                `json:"gender"`
	Status          *string                `json:"status"`
	AvatarURL       *string                `json:"avatarUrl"`
	CharacterArcana *[]string              `json:"characterArcana"`
	Relationships   *[]models.Relationship `json:"relationships"`
	CustomFields    *map[string]string     `json:"customFields"`
}

func (p LorePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errTitleRequired
	}
	if p.Type != nil {
		if _, ok := models.ParseLoreType(string(*p.Type)); !ok {
			return errors.New("unknown lore type")
		}
	}
	return nil
}

// PlotInput creates a plot node. A nil Order appends after the last sibling.
type PlotInput struct {
	Text              string  `json:"text"`
	ParentID          *string `json:"parentId"`
	Order             *int    `json:"order"`
	ProjectID         *string `json:"projectId"`
	LinkedNoteID      *string `json:"linkedNoteId"`
	LinkedLoreEntryID *string `json:"linkedLoreEntryId"`
}

func (in PlotInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return errors.New("text is required")
	}
	if nonEmpty(in.LinkedNoteID) && nonEmpty(in.LinkedLoreEntryID) {
		return errors.New("a plot node links to a note or a lore entry, not both")
	}
	return nil
}

// PlotPatch updates a plot node. Setting one link clears the other.
type PlotPatch struct {
	Text              *string `json:"text"`
	IsExpanded        *bool   `json:"isExpanded"`
	LinkedNoteID      *string `json:"linkedNoteId"`
	LinkedLoreEntryID *string `json:"linkedLoreEntryId"`
}

func (p PlotPatch) Validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return errors.New("text must not be empty")
	}
	if nonEmpty(p.LinkedNoteID) && nonEmpty(p.LinkedLoreEntryID) {
		return errors.New("a plot node links to a note or a lore entry, not both")
	}
	return nil
}

func loreTypeValues() []interface{} {
	out := make([]interface{}, len(models.LoreTypes))
	for i, t := range models.LoreTypes {
		out[i] = t
	}
	return out
}

func nonEmpty(p *string) bool { return p != nil && *p != "" }

// ref turns a patch reference into a stored one: "" clears it.
func ref(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}
