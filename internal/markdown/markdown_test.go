package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	out := ToHTML("# Chapter One\n\nElina **runs**.")
	if !strings.Contains(out, "<h1>Chapter One</h1>") {
		t.Errorf("missing heading: %q", out)
	}
	if !strings.Contains(out, "<strong>runs</strong>") {
		t.Errorf("missing emphasis: %q", out)
	}
}

func TestToHTML_EscapesRawHTML(t *testing.T) {
	out := ToHTML("<script>alert(1)</script>")
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html should not pass through: %q", out)
	}
}

func TestToHTML_Empty(t *testing.T) {
	if ToHTML("") != "" {
		t.Error("empty input should render empty")
	}
}
