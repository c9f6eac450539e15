package models

import (
	"strings"
	"time"
)

// LoreType classifies a worldbuilding entry.
type LoreType string

const (
	LoreCharacter    LoreType = "Character"
	LorePlace        LoreType = "Place"
	LoreItem         LoreType = "Item"
	LoreConcept      LoreType = "Concept"
	LoreEvent        LoreType = "Event"
	LoreOther        LoreType = "Other"
	LoreArcanaSystem LoreType = "ArcanaSystem"
)

// LoreTypes lists every known lore type.
var LoreTypes = []LoreType{
	LoreCharacter, LorePlace, LoreItem, LoreConcept, LoreEvent, LoreOther, LoreArcanaSystem,
}

// ParseLoreType matches s case-insensitively against the known types.
func ParseLoreType(s string) (LoreType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range LoreTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// LoreEntry is a worldbuilding record. The character fields are only
// meaningful when Type is LoreCharacter.
type LoreEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      LoreType  `json:"type"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	ProjectID *string   `json:"projectId"`

	Role            string         `json:"role,omitempty"`
	Age             string         `json:"age,omitempty"`
	Gender          string         `json:"gender,omitempty"`
	Status          string         `json:"status,omitempty"`
	AvatarURL       string         `json:"avatarUrl,omitempty"`
	CharacterArcana []string       `json:"characterArcana,omitempty"`
	Relationships   []Relationship `json:"relationships,omitempty"`

	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Relationship links a character to another lore entry. The target is not
// required to exist; dangling targets are tolerated.
type Relationship struct {
	TargetCharacterID string `json:"targetCharacterId"`
	RelationshipType  string `json:"relationshipType"`
	Description       string `json:"description,omitempty"`
}

// Clone returns a deep copy of e.
func (e LoreEntry) Clone() LoreEntry {
	e.Tags = append([]string{}, e.Tags...)
	e.ProjectID = cloneID(e.ProjectID)
	if e.CharacterArcana != nil {
		e.CharacterArcana = append([]string{}, e.CharacterArcana...)
	}
	if e.Relationships != nil {
		e.Relationships = append([]Relationship{}, e.Relationships...)
	}
	if e.CustomFields != nil {
		m := make(map[string]string, len(e.CustomFields))
		for k, v := range e.CustomFields {
			m[k] = v
		}
		e.CustomFields = m
	}
	return e
}
