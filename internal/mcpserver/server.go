// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the writer's workspace to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/assistant"
	"github.com/ashval/inkweaver/internal/avatars"
	"github.com/ashval/inkweaver/internal/index"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/views"
	"github.com/ashval/inkweaver/internal/workspace"
)

const notationURI = "inkweaver://notation"

// Server wraps the MCP server with the workspace tools.
type Server struct {
	mcp       *server.MCPServer
	ws        *workspace.Store
	db        index.Index
	assembler *assistant.Assembler
	avatars   *avatars.Store
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAvatars enables the set_lore_avatar tool.
func WithAvatars(a *avatars.Store) Option {
	return func(s *Server) { s.avatars = a }
}

// WithLimits sets the caps of the project context block.
func WithLimits(l assistant.Limits) Option {
	return func(s *Server) { s.assembler = assistant.NewAssembler(s.ws, l, "") }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new MCP server with all workspace tools registered.
func New(ws *workspace.Store, db index.Index, opts ...Option) *Server {
	s := &Server{ws: ws, db: db, logger: slog.Default()}
	s.assembler = assistant.NewAssembler(ws, assistant.DefaultLimits(), "")
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"Inkweaver",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_workspace",
		mcp.WithDescription("Full-text search through notes and lore entries."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("project", mcp.Description("Project id or name; empty searches every project")),
	), s.searchWorkspace)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note as Markdown with YAML front matter."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note id or exact title")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note. Use [[Name|Type]] and @Name notation for "+
			"lore references; read the contract first via get_notation_contract or the "+
			notationURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("category", mcp.Description("Optional category")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
		mcp.WithString("project", mcp.Description("Project id or name; empty for a global note")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_lore",
		mcp.WithDescription("List lore entries visible in a project."),
		mcp.WithString("project", mcp.Description("Project id or name; empty lists everything")),
		mcp.WithString("type", mcp.Description("Optional lore type filter (Character, Place, ...)")),
	), s.listLore)

	s.mcp.AddTool(mcp.NewTool("create_lore_from_text",
		mcp.WithDescription("Create lore entries for every [[Name|Type]] and @Name reference in "+
			"the text that does not exist yet."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text containing lore notation")),
		mcp.WithString("project", mcp.Description("Project id or name; empty for global entries")),
	), s.createLoreFromText)

	s.mcp.AddTool(mcp.NewTool("get_project_context",
		mcp.WithDescription("Returns the project context block the writing assistant sends with "+
			"context-aware requests: recent notes and lore of the project."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project id or name")),
	), s.getProjectContext)

	s.mcp.AddTool(mcp.NewTool("get_notation_contract",
		mcp.WithDescription("Returns the lore notation and note format contract. "+
			"Call this before creating notes or lore."),
	), s.getNotationContract)

	if s.avatars != nil {
		s.mcp.AddTool(mcp.NewTool("set_lore_avatar",
			mcp.WithDescription("Download an image from a data: or http(s) URL and set it as the "+
				"avatar of a lore entry."),
			mcp.WithString("lore", mcp.Required(), mcp.Description("Lore entry id or exact title")),
			mcp.WithString("url", mcp.Required(), mcp.Description("data: URI or http(s) URL of the image")),
		), s.setLoreAvatar)
	}

	s.mcp.AddResource(
		mcp.NewResource(notationURI, "Notation Contract",
			mcp.WithResourceDescription("Lore notation and note format understood by the workspace."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNotationResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// resolveProject accepts a project id or a case-insensitive name. An empty
// ref resolves to nil.
func (s *Server) resolveProject(ref string) (*string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if p, ok := s.ws.Project(ref); ok {
		return &p.ID, nil
	}
	for _, p := range s.ws.Projects() {
		if strings.EqualFold(p.Name, ref) {
			id := p.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("unknown project: %s", ref)
}

func (s *Server) findNote(ref string) (models.Note, bool) {
	if n, ok := s.ws.Note(ref); ok {
		return n, true
	}
	for _, n := range s.ws.Notes() {
		if strings.EqualFold(n.Title, ref) {
			return n, true
		}
	}
	return models.Note{}, false
}

func (s *Server) findLore(ref string) (models.LoreEntry, bool) {
	if e, ok := s.ws.LoreEntry(ref); ok {
		return e, true
	}
	for _, e := range s.ws.LoreEntries() {
		if strings.EqualFold(e.Title, ref) {
			return e, true
		}
	}
	return models.LoreEntry{}, false
}

// reindex brings the search index up to date after a write.
func (s *Server) reindex() {
	if s.db == nil {
		return
	}
	snap, _ := s.ws.Snapshot()
	if _, _, err := index.Sync(s.db, snap, s.logger); err != nil {
		s.logger.Warn("mcp reindex failed", slog.String("error", err.Error()))
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) searchWorkspace(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.db == nil {
		return mcp.NewToolResultError("search index is not available"), nil
	}
	project, err := s.resolveProject(req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, project, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, ok := s.findNote(ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref)), nil
	}
	_, body, err := s.ws.ExportNote(n.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := s.resolveProject(req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	for _, t := range strings.Split(req.GetString("tags", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	for _, n := range s.ws.Notes() {
		if strings.EqualFold(n.Title, strings.TrimSpace(title)) && models.SameProject(n.ProjectID, project) {
			return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", n.Title)), nil
		}
	}

	n, err := s.ws.CreateNote(ctx, workspace.NoteInput{
		Title:     title,
		Content:   content,
		Category:  req.GetString("category", ""),
		Tags:      tags,
		ProjectID: project,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.reindex()
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) listLore(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := s.resolveProject(req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := views.Filter{Project: project}
	if raw := req.GetString("type", ""); raw != "" {
		t, ok := models.ParseLoreType(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown lore type: %s", raw)), nil
		}
		f.Type = t
	}

	entries := views.Lore(s.ws.LoreEntries(), f)
	if len(entries) == 0 {
		return mcp.NewToolResultText("no lore entries found"), nil
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s\t%s (%s)", e.ID, e.Title, e.Type))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) createLoreFromText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := s.resolveProject(req.GetString("project", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created, err := s.ws.AutoCreateLore(ctx, project, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(created) > 0 {
		s.reindex()
	}
	return jsonResult(created), nil
}

func (s *Server) getProjectContext(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := s.resolveProject(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if project == nil {
		return mcp.NewToolResultError("project is required"), nil
	}
	block := s.assembler.ContextBlock(*project, "")
	if block == "" {
		return mcp.NewToolResultText("no context for this project yet"), nil
	}
	return mcp.NewToolResultText(block), nil
}

func (s *Server) getNotationContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NotationContract), nil
}

func (s *Server) readNotationResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      notationURI,
			MIMEType: "text/markdown",
			Text:     NotationContract,
		},
	}, nil
}

type avatarResult struct {
	LoreID    string `json:"loreId"`
	AvatarURL string `json:"avatarUrl"`
}

func (s *Server) setLoreAvatar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("lore")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, ok := s.findLore(ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref)), nil
	}

	data, filename, ext, err := avatars.Fetch(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	url, err := s.avatars.Save(e.ID, filename, ext, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save avatar: %v", err)), nil
	}
	if _, found, err := s.ws.UpdateLore(ctx, e.ID, workspace.LorePatch{AvatarURL: &url}); err != nil || !found {
		if err == nil {
			err = apperr.ErrNotFound
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(avatarResult{LoreID: e.ID, AvatarURL: url}), nil
}
