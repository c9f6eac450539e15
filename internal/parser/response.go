package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	fencedYAMLRe = regexp.MustCompile("(?s)```ya?ml[ \\t]*\\r?\\n(.*?)\\r?\\n?```")
	dashedYAMLRe = regexp.MustCompile(`(?s)(?:^|\n)---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|$)`)
	codeFenceRe  = regexp.MustCompile("(?s)^\\s*```[A-Za-z0-9_-]*[ \\t]*\\r?\\n(.*?)\\r?\\n?```\\s*$")
)

// Split is a text divided into a YAML metadata region and prose.
type Split struct {
	Found    bool
	Metadata string         // raw YAML, trimmed
	Fields   map[string]any // parsed Metadata; nil when it is not a YAML mapping
	Prose    string
}

// SplitMetadata looks for a ```yaml fenced block, or failing that a ---
// delimited block, and splits it out of text. The prose fragments around the
// block are trimmed and joined with a blank line. Without a block the whole
// text (trimmed) is prose.
func SplitMetadata(text string) Split {
	loc := fencedYAMLRe.FindStringSubmatchIndex(text)
	if loc == nil {
		loc = dashedYAMLRe.FindStringSubmatchIndex(text)
	}
	if loc == nil {
		return Split{Prose: strings.TrimSpace(text)}
	}

	meta := strings.TrimSpace(text[loc[2]:loc[3]])
	var parts []string
	for _, frag := range []string{text[:loc[0]], text[loc[1]:]} {
		if frag = strings.TrimSpace(frag); frag != "" {
			parts = append(parts, frag)
		}
	}

	s := Split{
		Found:    true,
		Metadata: meta,
		Prose:    strings.Join(parts, "\n\n"),
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(meta), &fields); err == nil {
		s.Fields = fields
	}
	return s
}

// UnwrapFence strips a single surrounding ``` code fence (with an optional
// language tag) from s. Text without a fence is returned trimmed.
func UnwrapFence(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}
