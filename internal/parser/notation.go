// Package parser extracts lore notation, YAML metadata and front matter from
// writer and AI text.
package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ashval/inkweaver/internal/models"
)

var (
	// [[Title]] or [[Title|Type]]
	wikiRe = regexp.MustCompile(`\[\[([^\[\]|]+?)(?:\|([^\[\]]*?))?\]\]`)
	// @Name, not preceded by a word character (skips e-mail addresses).
	mentionRe = regexp.MustCompile(`(?:^|[^\p{L}\p{M}\p{N}_@.])@([\p{L}\p{M}\p{N}_]+)`)
)

// Match is one lore reference found in free text.
type Match struct {
	Title string
	Type  models.LoreType
	// Explicit is true when the type was written out ([[Title|Type]]).
	Explicit bool
	// Mention is true for the @Name form.
	Mention bool
	Offset  int
}

// ExtractNotation returns the lore references in text, in order of
// appearance, de-duplicated by title (case-insensitive, first wins).
//
// [[Title|Type]] yields Type when it names a known lore type; [[Title]] and
// unknown types yield Other. @Name always yields Character.
func ExtractNotation(text string) []Match {
	var found []Match

	for _, m := range wikiRe.FindAllStringSubmatchIndex(text, -1) {
		title := strings.TrimSpace(text[m[2]:m[3]])
		if title == "" {
			continue
		}
		match := Match{Title: title, Type: models.LoreOther, Offset: m[0]}
		if m[4] >= 0 {
			if t, ok := models.ParseLoreType(text[m[4]:m[5]]); ok {
				match.Type = t
				match.Explicit = true
			}
		}
		found = append(found, match)
	}

	for _, m := range mentionRe.FindAllStringSubmatchIndex(text, -1) {
		found = append(found, Match{
			Title:   text[m[2]:m[3]],
			Type:    models.LoreCharacter,
			Mention: true,
			Offset:  m[2] - 1,
		})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].Offset < found[j].Offset })

	seen := make(map[string]struct{}, len(found))
	out := found[:0]
	for _, f := range found {
		key := strings.ToLower(f.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
