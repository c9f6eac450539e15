package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashval/inkweaver/internal/parser"
)

// MaxSuggestions caps the subtasks taken from one reply.
const MaxSuggestions = 8

const suggestInstruction = "You help writers break work into steps. Reply with a JSON array of 3 to 6 " +
	"short, concrete subtask titles (strings). Reply with the array only."

// SuggestPayload builds the subtask-suggestion request for a task.
func SuggestPayload(title, category string) Payload {
	prompt := fmt.Sprintf("Task: %s", strings.TrimSpace(title))
	if c := strings.TrimSpace(category); c != "" {
		prompt += fmt.Sprintf("\nCategory: %s", c)
	}
	return Payload{SystemInstruction: suggestInstruction, Prompt: prompt, JSON: true}
}

// ParseSuggestions reads a JSON array of strings from a reply, unwrapping a
// code fence first. Anything malformed yields no suggestions.
func ParseSuggestions(raw string) []string {
	text := parser.UnwrapFence(raw)
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && j > i {
		text = text[i : j+1]
	}
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return []string{}
	}
	out := []string{}
	seen := map[string]bool{}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
