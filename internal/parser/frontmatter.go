package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// SplitFrontmatter separates YAML front matter (between leading --- lines)
// from the Markdown body. If no valid front matter is found the whole text is
// body and fm is nil.
func SplitFrontmatter(text string) (fm map[string]any, body string) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n\r")

	if !strings.HasPrefix(trimmed, delim) {
		return nil, text
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, text
	}

	yamlBlock := rest[:idx]
	after := rest[idx+1+len(delim):]
	body = strings.TrimLeft(after, "\n\r")

	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil || fm == nil {
		// Invalid YAML: not front matter.
		return nil, text
	}
	return fm, body
}

// FormatFrontmatter renders fm as a --- delimited YAML block followed by the
// trimmed body. An empty fm renders the body alone.
func FormatFrontmatter(fm map[string]any, body string) (string, error) {
	body = strings.TrimSpace(body)
	if len(fm) == 0 {
		return body + "\n", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", err
	}
	_ = enc.Close()

	var out strings.Builder
	out.WriteString("---\n")
	out.WriteString(buf.String())
	out.WriteString("---\n\n")
	out.WriteString(body)
	out.WriteString("\n")
	return out.String(), nil
}
