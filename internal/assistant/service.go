package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/workspace"
)

// Workspace is the part of the store the service reads and writes.
type Workspace interface {
	Source
	Preferences() models.UserPreferences
	Task(id string) (models.Task, bool)
	CreateNote(ctx context.Context, in workspace.NoteInput) (models.Note, error)
	AutoCreateLore(ctx context.Context, projectID *string, text string) ([]models.LoreEntry, error)
	AddSubtasks(ctx context.Context, taskID string, titles []string) (models.Task, bool)
}

// Service ties the assembler, the generator and the workspace together.
type Service struct {
	ws        Workspace
	gen       Generator
	assembler *Assembler
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// Sessions idle for longer than sessionIdleTTL are dropped; beyond
// maxSessions the least recently used one goes.
const (
	maxSessions    = 256
	sessionIdleTTL = time.Hour
)

type sessionEntry struct {
	sess     *Session
	lastUsed time.Time
}

// NewService creates a Service.
func NewService(ws Workspace, gen Generator, limits Limits, defaultInstruction string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ws:        ws,
		gen:       gen,
		assembler: NewAssembler(ws, limits, defaultInstruction),
		logger:    logger,
		sessions:  make(map[string]*sessionEntry),
		now:       time.Now,
	}
}

// Outcome is the result of a generate call.
type Outcome struct {
	Seq         uint64             `json:"seq"`
	Result      Result             `json:"result"`
	CreatedLore []models.LoreEntry `json:"createdLore"`
}

// Preview returns the payload a request would send without calling the
// model.
func (s *Service) Preview(req Request) (Payload, error) {
	return s.assembler.Assemble(req, s.ws.Preferences().AIWriter.CustomInstruction)
}

// Generate runs req in the named session. A superseded call returns
// apperr.ErrStaleResponse. When auto lore creation is enabled, notation in
// the reply creates lore entries in the request's project.
func (s *Service) Generate(ctx context.Context, sessionKey string, req Request) (Outcome, error) {
	prefs := s.ws.Preferences()
	payload, err := s.assembler.Assemble(req, prefs.AIWriter.CustomInstruction)
	if err != nil {
		return Outcome{}, err
	}

	res, seq, err := s.session(sessionKey).Run(ctx, payload)
	if err != nil {
		return Outcome{Seq: seq}, err
	}
	out := Outcome{Seq: seq, Result: res, CreatedLore: []models.LoreEntry{}}
	if !res.OK() {
		s.logger.Warn("ai request failed", slog.String("mode", req.Mode), slog.String("error", res.Err.Message))
		return out, nil
	}

	if prefs.AIWriter.AutoLoreCreation {
		created, err := s.ws.AutoCreateLore(ctx, req.ProjectID, res.Content.Raw)
		if err != nil {
			s.logger.Warn("auto lore creation failed", slog.String("error", err.Error()))
		} else {
			out.CreatedLore = created
		}
	}
	return out, nil
}

// SaveAsNote stores a reply as a new note. Error replies are refused.
func (s *Service) SaveAsNote(ctx context.Context, title, reply string, projectID *string) (models.Note, error) {
	res := Interpret(reply, nil)
	if !res.OK() {
		return models.Note{}, apperr.Invalid("save reply", errors.New("reply is an error message, not content"))
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = deriveTitle(res.Content)
	}
	return s.ws.CreateNote(ctx, workspace.NoteInput{
		Title:     title,
		Content:   res.Content.Raw,
		Category:  "AI",
		ProjectID: projectID,
	})
}

// SuggestSubtasks asks the model for subtasks of a task. With apply set the
// suggestions are appended to the task. Failures and malformed replies
// yield no suggestions.
func (s *Service) SuggestSubtasks(ctx context.Context, taskID string, apply bool) ([]string, error) {
	task, ok := s.ws.Task(taskID)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	raw, err := s.gen.Generate(ctx, SuggestPayload(task.Title, task.Category))
	if err != nil {
		s.logger.Warn("subtask suggestion failed", slog.String("task", taskID), slog.String("error", err.Error()))
		return []string{}, nil
	}
	suggestions := ParseSuggestions(raw)
	if apply && len(suggestions) > 0 {
		s.ws.AddSubtasks(ctx, taskID, suggestions)
	}
	return suggestions, nil
}

func (s *Service) session(key string) *Session {
	if key == "" {
		key = "default"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.sessions[key]; ok {
		e.lastUsed = now
		return e.sess
	}

	for k, e := range s.sessions {
		if now.Sub(e.lastUsed) > sessionIdleTTL {
			delete(s.sessions, k)
		}
	}
	if len(s.sessions) >= maxSessions {
		var oldest string
		for k, e := range s.sessions {
			if oldest == "" || e.lastUsed.Before(s.sessions[oldest].lastUsed) {
				oldest = k
			}
		}
		delete(s.sessions, oldest)
	}

	sess := NewSession(s.gen)
	s.sessions[key] = &sessionEntry{sess: sess, lastUsed: now}
	return sess
}

// deriveTitle uses a "title" or "name" metadata field, or the first line
// of the prose.
func deriveTitle(c *Content) string {
	for _, k := range []string{"title", "name"} {
		if v, ok := c.Fields[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	line := strings.TrimSpace(strings.SplitN(c.Prose, "\n", 2)[0])
	line = strings.TrimLeft(line, "# ")
	if line == "" {
		return "AI draft"
	}
	return Truncate(line, 80)
}
