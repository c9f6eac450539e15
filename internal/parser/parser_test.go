package parser

import (
	"strings"
	"testing"

	"github.com/ashval/inkweaver/internal/models"
)

func TestExtractNotation_ThaiExample(t *testing.T) {
	got := ExtractNotation("สวัสดี [[เอลิน่า|Character]] และ @โทมัส")
	if len(got) != 2 {
		t.Fatalf("matches = %+v, want 2", got)
	}
	if got[0].Title != "เอลิน่า" || got[0].Type != models.LoreCharacter || !got[0].Explicit {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Title != "โทมัส" || got[1].Type != models.LoreCharacter || got[1].Explicit || !got[1].Mention {
		t.Errorf("second = %+v", got[1])
	}
}

func TestExtractNotation_TypesAndDefaults(t *testing.T) {
	got := ExtractNotation("The [[Ember Blade|item]] lies in [[Vaelmoor]]; see [[Sigil|Spellbook]].")
	if len(got) != 3 {
		t.Fatalf("matches = %+v", got)
	}
	if got[0].Type != models.LoreItem || !got[0].Explicit {
		t.Errorf("item match = %+v", got[0])
	}
	if got[1].Title != "Vaelmoor" || got[1].Type != models.LoreOther || got[1].Explicit {
		t.Errorf("untyped match = %+v", got[1])
	}
	if got[2].Type != models.LoreOther || got[2].Explicit {
		t.Errorf("unknown type should fall back to Other: %+v", got[2])
	}
}

func TestExtractNotation_DedupAndEmail(t *testing.T) {
	got := ExtractNotation("@Mira met [[mira|Character]] and wrote to mira@example.com. [[ ]]")
	if len(got) != 1 {
		t.Fatalf("matches = %+v, want 1", got)
	}
	if got[0].Title != "Mira" || !got[0].Mention {
		t.Errorf("first occurrence should win: %+v", got[0])
	}
}

func TestSplitMetadata_FencedYAML(t *testing.T) {
	s := SplitMetadata("Some prose\n```yaml\nname: Elina\n```\nMore prose")
	if !s.Found {
		t.Fatal("expected metadata block")
	}
	if s.Metadata != "name: Elina" {
		t.Errorf("metadata = %q", s.Metadata)
	}
	if s.Prose != "Some prose\n\nMore prose" {
		t.Errorf("prose = %q", s.Prose)
	}
	if s.Fields["name"] != "Elina" {
		t.Errorf("fields = %v", s.Fields)
	}
}

func TestSplitMetadata_DashedYAML(t *testing.T) {
	s := SplitMetadata("---\ntitle: Scene 3\nmood: tense\n---\nThe door creaked.")
	if !s.Found || s.Fields["mood"] != "tense" {
		t.Fatalf("split = %+v", s)
	}
	if s.Prose != "The door creaked." {
		t.Errorf("prose = %q", s.Prose)
	}
}

func TestSplitMetadata_NoBlock(t *testing.T) {
	s := SplitMetadata("  Just prose.\n")
	if s.Found || s.Metadata != "" || s.Prose != "Just prose." {
		t.Errorf("split = %+v", s)
	}
}

func TestUnwrapFence(t *testing.T) {
	cases := map[string]string{
		"```json\n[\"a\", \"b\"]\n```": `["a", "b"]`,
		"```\n[1]\n```":                 "[1]",
		"  [\"plain\"]  ":                `["plain"]`,
	}
	for in, want := range cases {
		if got := UnwrapFence(in); got != want {
			t.Errorf("UnwrapFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitFrontmatter(t *testing.T) {
	fm, body := SplitFrontmatter("---\ntitle: Hello\ntags:\n  - draft\n---\n# Hello\nBody text.\n")
	if fm["title"] != "Hello" {
		t.Errorf("fm = %v", fm)
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_InvalidYAMLFallback(t *testing.T) {
	in := "---\n: invalid: yaml: {{{\n---\nBody\n"
	fm, body := SplitFrontmatter(in)
	if fm != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if body != in {
		t.Errorf("body should be the whole text")
	}
}

func TestFormatFrontmatter(t *testing.T) {
	out, err := FormatFrontmatter(map[string]any{"title": "Elina", "age": 19}, "\n\nShe waits.\n\n")
	if err != nil {
		t.Fatalf("FormatFrontmatter: %v", err)
	}
	if !strings.HasPrefix(out, "---\nage: 19\ntitle: Elina\n---\n\n") {
		t.Errorf("front matter = %q", out)
	}
	if !strings.HasSuffix(out, "\n\nShe waits.\n") {
		t.Errorf("body = %q", out)
	}

	plain, _ := FormatFrontmatter(nil, " body ")
	if plain != "body\n" {
		t.Errorf("plain = %q", plain)
	}
}
