package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ashval/inkweaver/internal/markdown"
	"github.com/ashval/inkweaver/internal/parser"
)

// Markers that identify a reply as an error message rather than content.
const (
	ErrorMarker      = "AI Error:"
	NoResponseMarker = "No response from AI"
)

// ErrNoResponse is returned by generators that got an empty reply.
var ErrNoResponse = errors.New(NoResponseMarker)

// Content is a successful reply split into prose and YAML metadata.
type Content struct {
	Raw       string         `json:"raw"`
	Prose     string         `json:"prose"`
	ProseHTML string         `json:"proseHtml"`
	Metadata  string         `json:"metadata,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// AIError is a failed call or an error reply. It is for display only.
type AIError struct {
	Message string `json:"message"`
	cause   error
}

func (e *AIError) Error() string { return e.Message }

func (e *AIError) Unwrap() error { return e.cause }

// Result is exactly one of Content or Err.
type Result struct {
	Content *Content
	Err     *AIError
}

// OK reports whether the result carries usable content.
func (r Result) OK() bool { return r.Content != nil && r.Err == nil }

// MarshalJSON renders {"ok": true, "content": ...} or {"ok": false, "error": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.OK() {
		return json.Marshal(struct {
			OK      bool     `json:"ok"`
			Content *Content `json:"content"`
		}{true, r.Content})
	}
	msg := NoResponseMarker
	if r.Err != nil {
		msg = r.Err.Message
	}
	return json.Marshal(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{false, msg})
}

// Interpret turns a generator reply into a Result. Call failures, empty
// replies and replies carrying an error marker become an AIError.
func Interpret(raw string, err error) Result {
	if err != nil {
		var aiErr *AIError
		if errors.As(err, &aiErr) {
			return Result{Err: aiErr}
		}
		msg := err.Error()
		if !strings.Contains(msg, ErrorMarker) && !errors.Is(err, ErrNoResponse) {
			msg = ErrorMarker + " " + msg
		}
		return Result{Err: &AIError{Message: msg, cause: err}}
	}
	text := strings.TrimSpace(raw)
	if text == "" || strings.Contains(text, NoResponseMarker) {
		return Result{Err: &AIError{Message: NoResponseMarker, cause: ErrNoResponse}}
	}
	if strings.Contains(text, ErrorMarker) {
		return Result{Err: &AIError{Message: text}}
	}

	split := parser.SplitMetadata(text)
	return Result{Content: &Content{
		Raw:       text,
		Prose:     split.Prose,
		ProseHTML: markdown.ToHTML(split.Prose),
		Metadata:  split.Metadata,
		Fields:    split.Fields,
	}}
}
