package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashval/inkweaver/internal/workspace"
)

// ExportNotes writes every note of project (id or case-insensitive name;
// "" exports all notes) into dir as <title>.md with YAML front matter.
// Clashing file names get a numeric suffix.
func ExportNotes(ws *workspace.Store, project, dir string) (int, error) {
	var projectID string
	if project = strings.TrimSpace(project); project != "" {
		p, ok := ws.Project(project)
		if !ok {
			for _, cand := range ws.Projects() {
				if strings.EqualFold(cand.Name, project) {
					p, ok = cand, true
					break
				}
			}
		}
		if !ok {
			return 0, fmt.Errorf("export: unknown project %q", project)
		}
		projectID = p.ID
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("export: create dir: %w", err)
	}

	used := map[string]int{}
	written := 0
	for _, n := range ws.Notes() {
		if projectID != "" && (n.ProjectID == nil || *n.ProjectID != projectID) {
			continue
		}
		name, body, err := ws.ExportNote(n.ID)
		if err != nil {
			return written, err
		}
		key := strings.ToLower(name)
		used[key]++
		if c := used[key]; c > 1 {
			name = fmt.Sprintf("%s-%d.md", strings.TrimSuffix(name, ".md"), c)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return written, fmt.Errorf("export: write %s: %w", name, err)
		}
		written++
	}
	return written, nil
}
