package index

import (
	"log/slog"
	"strings"

	"github.com/ashval/inkweaver/internal/checksum"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/parser"
)

// Sync brings the index up to date with a workspace snapshot:
//   - new/changed notes and lore entries are upserted
//   - documents no longer in the snapshot are deleted from the index
//
// It returns the number of documents upserted and deleted.
func Sync(db Index, snap models.AppData, logger *slog.Logger) (upserted, deleted int, err error) {
	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, 0, err
	}

	docs := documents(snap)
	live := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		live[d.doc.ID] = struct{}{}
		if checksums[d.doc.ID] == d.doc.Checksum {
			continue
		}
		if err := db.UpsertDocument(d.doc, d.body, d.mentions); err != nil {
			logger.Warn("sync: index failed", slog.String("id", d.doc.ID), slog.String("error", err.Error()))
			continue
		}
		upserted++
		logger.Debug("sync: indexed", slog.String("id", d.doc.ID), slog.String("kind", d.doc.Kind))
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := live[id]; ok {
			continue
		}
		if err := db.DeleteDocument(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		deleted++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}
	return upserted, deleted, nil
}

type pending struct {
	doc      Document
	body     string
	mentions []string
}

// documents flattens the snapshot's notes and lore into index rows. The
// checksum covers every indexed field so a project move or retitle is
// picked up even when the body is unchanged.
func documents(snap models.AppData) []pending {
	out := make([]pending, 0, len(snap.Notes)+len(snap.LoreEntries))
	for _, n := range snap.Notes {
		body := n.RawMarkdownContent
		out = append(out, pending{
			doc: Document{
				ID:        n.ID,
				Kind:      KindNote,
				ProjectID: n.ProjectID,
				Title:     n.Title,
				Checksum:  docSum(n.Title, n.Category, body, n.ProjectID, n.Tags),
				Tags:      n.Tags,
				UpdatedAt: n.UpdatedAt,
			},
			body:     body,
			mentions: mentionTitles(body),
		})
	}
	for _, e := range snap.LoreEntries {
		out = append(out, pending{
			doc: Document{
				ID:        e.ID,
				Kind:      KindLore,
				ProjectID: e.ProjectID,
				Title:     e.Title,
				Checksum:  docSum(e.Title, string(e.Type), e.Content, e.ProjectID, e.Tags),
				Tags:      e.Tags,
				UpdatedAt: e.CreatedAt,
			},
			body:     e.Content,
			mentions: mentionTitles(e.Content),
		})
	}
	return out
}

func mentionTitles(text string) []string {
	matches := parser.ExtractNotation(text)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Title)
	}
	return out
}

func docSum(title, kind, body string, project *string, tags []string) string {
	return checksum.Sum([]byte(strings.Join([]string{
		title, kind, projectKey(project), strings.Join(tags, ","), body,
	}, "\x00")))
}
