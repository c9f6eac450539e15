// Package assistant assembles prompts for the hosted text-generation API,
// calls it, and turns its replies into typed results.
package assistant

import (
	"fmt"
	"sort"
	"strings"
)

// ModeCustom is the mode whose system instruction is supplied by the user.
const ModeCustom = "custom"

// Mode is a named assistant behaviour: a system instruction plus a rule
// for wrapping the writer's input. ContextAware modes receive the project
// context block.
type Mode struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	SystemInstruction string `json:"systemInstruction"`
	ContextAware      bool   `json:"contextAware"`
	// Fields names the structured inputs the mode's formatter understands.
	Fields []string `json:"fields,omitempty"`

	format func(input string, fields map[string]string) string
}

// Format applies the mode's prompt formatter.
func (m Mode) Format(input string, fields map[string]string) string {
	if m.format == nil {
		return strings.TrimSpace(input)
	}
	return m.format(strings.TrimSpace(input), fields)
}

const yamlHint = "When you describe a character, place or item, put its structured attributes " +
	"in a fenced ```yaml block before the prose."

var modes = map[string]Mode{
	"continue": {
		ID:    "continue",
		Label: "Continue writing",
		SystemInstruction: "You are a novelist's co-writer. Continue the passage in the same voice, tense " +
			"and point of view. Do not repeat the given text.",
		ContextAware: true,
		format:       wrap("Continue this passage:\n\n%s"),
	},
	"improve": {
		ID:    "improve",
		Label: "Improve prose",
		SystemInstruction: "You are a careful line editor. Rewrite the passage to be clearer and more vivid " +
			"while keeping its meaning, voice and length roughly the same.",
		format: wrap("Improve this passage:\n\n%s"),
	},
	"summarize": {
		ID:                "summarize",
		Label:             "Summarize",
		SystemInstruction: "Summarize the text in a short paragraph, keeping names and key events.",
		format:            wrap("Summarize:\n\n%s"),
	},
	"expand": {
		ID:                "expand",
		Label:             "Expand",
		SystemInstruction: "Expand the outline or sketch into full prose with sensory detail and dialogue where it fits.",
		ContextAware:      true,
		format:            wrap("Expand this into a full passage:\n\n%s"),
	},
	"scene": {
		ID:    "scene",
		Label: "Scene creation",
		SystemInstruction: "You write complete scenes for a novel. Respect the established characters and " +
			"world. " + yamlHint,
		ContextAware: true,
		Fields:       []string{"setting", "characters", "mood", "goal"},
		format:       sceneFormat,
	},
	"dialogue": {
		ID:                "dialogue",
		Label:             "Dialogue",
		SystemInstruction: "Write natural dialogue that reveals character. Keep each speaker's voice distinct.",
		ContextAware:      true,
		Fields:            []string{"characters"},
		format:            dialogueFormat,
	},
	"character": {
		ID:    "character",
		Label: "Character profile",
		SystemInstruction: "Create a character profile for a novel: appearance, personality, history and " +
			"motivations. " + yamlHint,
		ContextAware: true,
		format:       wrap("Create a character profile for: %s"),
	},
	"worldbuilding": {
		ID:                "worldbuilding",
		Label:             "Worldbuilding",
		SystemInstruction: "Develop the setting consistently with existing lore. " + yamlHint,
		ContextAware:      true,
		format:            wrap("Develop this element of the world: %s"),
	},
	"brainstorm": {
		ID:                "brainstorm",
		Label:             "Brainstorm",
		SystemInstruction: "Offer a numbered list of distinct, concrete ideas. Favour surprising options over safe ones.",
		ContextAware:      true,
		format:            wrap("Brainstorm ideas about: %s"),
	},
	"grammar": {
		ID:                "grammar",
		Label:             "Grammar check",
		SystemInstruction: "Correct grammar, spelling and punctuation. Return only the corrected text.",
		format:            wrap("%s"),
	},
	ModeCustom: {
		ID:           ModeCustom,
		Label:        "Custom instruction",
		ContextAware: true,
		format:       wrap("%s"),
	},
}

// LookupMode returns the mode registered under id.
func LookupMode(id string) (Mode, bool) {
	m, ok := modes[strings.ToLower(strings.TrimSpace(id))]
	return m, ok
}

// Modes returns every registered mode ordered by id.
func Modes() []Mode {
	out := make([]Mode, 0, len(modes))
	for _, m := range modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func wrap(tmpl string) func(string, map[string]string) string {
	return func(input string, _ map[string]string) string {
		return fmt.Sprintf(tmpl, input)
	}
}

func sceneFormat(input string, fields map[string]string) string {
	var b strings.Builder
	b.WriteString("Write a scene.\n")
	for _, k := range []string{"setting", "characters", "mood", "goal"} {
		if v := strings.TrimSpace(fields[k]); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(k[:1])+k[1:], v)
		}
	}
	if input != "" {
		fmt.Fprintf(&b, "\nScene notes:\n%s", input)
	}
	return strings.TrimRight(b.String(), "\n")
}

func dialogueFormat(input string, fields map[string]string) string {
	if who := strings.TrimSpace(fields["characters"]); who != "" {
		return fmt.Sprintf("Write a dialogue between %s.\n\nSituation:\n%s", who, input)
	}
	return "Write a dialogue.\n\nSituation:\n" + input
}
