// Package workspace is the state store of the writer's workspace: projects,
// notes, tasks, lore, plot outline and settings, with CRUD operations,
// change subscriptions and snapshot persistence.
//
// Every successful mutation serializes the whole envelope to the storage
// provider and hands it to the syncer. Persistence failures are logged and
// the in-memory state is kept; they are never returned to callers.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/checksum"
	"github.com/ashval/inkweaver/internal/markdown"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/normalize"
	"github.com/ashval/inkweaver/internal/storage"
)

// Collection names the part of the workspace a change touched.
type Collection string

const (
	CollectionProject     Collection = "project"
	CollectionNote        Collection = "note"
	CollectionTask        Collection = "task"
	CollectionLore        Collection = "lore"
	CollectionPlot        Collection = "plot"
	CollectionPreferences Collection = "preferences"
	CollectionWorkspace   Collection = "workspace"
)

// ChangeKind is what happened to the record.
type ChangeKind string

const (
	Created  ChangeKind = "created"
	Updated  ChangeKind = "updated"
	Deleted  ChangeKind = "deleted"
	Reloaded ChangeKind = "reloaded"
)

// Change describes one observed mutation.
type Change struct {
	Collection Collection `json:"collection"`
	Kind       ChangeKind `json:"kind"`
	ID         string     `json:"id,omitempty"`
}

// Store owns the workspace state.
type Store struct {
	mu            sync.RWMutex
	data          models.AppData
	learned       []string
	activeProject *string
	lastSum       string // checksum of the envelope last read or written

	provider storage.Provider
	syncer   storage.Syncer
	logger   *slog.Logger
	norm     *normalize.Normalizer
	now      func() time.Time
	newID    func() string

	subsMu  sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithProvider sets the persistence backend. Defaults to an in-memory one.
func WithProvider(p storage.Provider) Option {
	return func(s *Store) { s.provider = p }
}

// WithSyncer sets the remote sync seam. Defaults to storage.NoopSyncer.
func WithSyncer(sy storage.Syncer) Option {
	return func(s *Store) { s.syncer = sy }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open builds a Store and loads the persisted workspace. Missing or
// unreadable data yields an empty workspace; Open never fails.
func Open(opts ...Option) *Store {
	s := &Store{
		provider: storage.NewMem(),
		syncer:   storage.NoopSyncer{},
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC().Round(0) },
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		subs:     make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.norm = &normalize.Normalizer{NewID: s.newID, Now: s.now}

	s.mu.Lock()
	s.data, s.lastSum = s.readEnvelope()
	s.learned = s.readLearnedWords()
	s.activeProject = s.readActiveProject()
	s.mu.Unlock()
	return s
}

// Subscribe registers fn to be called after every change. fn runs on the
// mutating goroutine after the store lock is released. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(changes ...Change) {
	s.subsMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// Snapshot returns a deep copy of the envelope and its checksum, which
// serves as the ETag for Import.
func (s *Store) Snapshot() (models.AppData, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := json.Marshal(s.data)
	if err != nil {
		return s.data.Clone(), ""
	}
	return s.data.Clone(), checksum.Sum(raw)
}

// Import replaces the whole workspace with the envelope in raw, normalized
// the same way as on load. A non-empty ifMatch must equal the current
// snapshot checksum, otherwise apperr.ErrConflict is returned.
func (s *Store) Import(ctx context.Context, raw []byte, ifMatch string) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", apperr.Invalid("import", fmt.Errorf("envelope is not valid JSON: %w", err))
	}
	if _, ok := v.(map[string]any); !ok {
		return "", apperr.Invalid("import", errors.New("envelope must be a JSON object"))
	}

	s.mu.Lock()
	if ifMatch != "" {
		cur, err := json.Marshal(s.data)
		if err == nil && checksum.Sum(cur) != ifMatch {
			s.mu.Unlock()
			return "", apperr.ErrConflict
		}
	}
	s.data = s.prepare(s.norm.AppData(v))
	s.fixActiveProjectLocked()
	s.persistLocked(ctx)
	var sum string
	if cur, err := json.Marshal(s.data); err == nil {
		sum = checksum.Sum(cur)
	}
	s.mu.Unlock()

	s.notify(Change{Collection: CollectionWorkspace, Kind: Reloaded})
	return sum, nil
}

// Reload re-reads the envelope from the provider. It reports false when the
// stored bytes match what the store last read or wrote.
func (s *Store) Reload() bool {
	s.mu.Lock()
	raw, err := s.provider.Load(models.KeyAppData)
	if err != nil || checksum.Sum(raw) == s.lastSum {
		s.mu.Unlock()
		return false
	}
	s.data, s.lastSum = s.readEnvelope()
	s.fixActiveProjectLocked()
	s.mu.Unlock()

	s.logger.Info("workspace reloaded from storage")
	s.notify(Change{Collection: CollectionWorkspace, Kind: Reloaded})
	return true
}

// LastChecksum returns the checksum of the envelope last read or written.
func (s *Store) LastChecksum() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSum
}

func (s *Store) readEnvelope() (models.AppData, string) {
	raw, err := s.provider.Load(models.KeyAppData)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("no saved workspace; starting empty")
		} else {
			s.logger.Warn("load workspace failed; starting empty", slog.String("error", err.Error()))
		}
		return models.EmptyAppData(), ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("saved workspace is corrupt; starting empty", slog.String("error", err.Error()))
		return models.EmptyAppData(), ""
	}
	return s.prepare(s.norm.AppData(v)), checksum.Sum(raw)
}

// prepare derives note HTML where it is missing and applies collection order.
func (s *Store) prepare(d models.AppData) models.AppData {
	for i := range d.Notes {
		if d.Notes[i].Content == "" && d.Notes[i].RawMarkdownContent != "" {
			d.Notes[i].Content = markdown.ToHTML(d.Notes[i].RawMarkdownContent)
		}
	}
	sortNotes(d.Notes)
	sortTasks(d.Tasks)
	sortLore(d.LoreEntries)
	sortProjects(d.Projects)
	sortPlot(d.PlotNodes)
	return d
}

func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.logger.Warn("serialize workspace failed", slog.String("error", err.Error()))
		return
	}
	if err := s.provider.Save(models.KeyAppData, raw); err != nil {
		s.logger.Warn("persist workspace failed; continuing in memory", slog.String("error", err.Error()))
		return
	}
	s.lastSum = checksum.Sum(raw)
	if err := s.syncer.Sync(ctx, models.KeyAppData, raw); err != nil {
		s.logger.Warn("remote sync failed", slog.String("error", err.Error()))
	}
}

// commit persists and releases the write lock, then notifies subscribers.
func (s *Store) commit(ctx context.Context, changes ...Change) {
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify(changes...)
}

// stamp returns the current time, strictly after prev when prev is set.
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now()
	if !prev.IsZero() && !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}

func sortNotes(ns []models.Note) {
	sort.SliceStable(ns, func(i, j int) bool {
		if !ns[i].UpdatedAt.Equal(ns[j].UpdatedAt) {
			return ns[i].UpdatedAt.After(ns[j].UpdatedAt)
		}
		return ns[i].ID < ns[j].ID
	})
}

func sortTasks(ts []models.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].UpdatedAt.Equal(ts[j].UpdatedAt) {
			return ts[i].UpdatedAt.After(ts[j].UpdatedAt)
		}
		return ts[i].ID < ts[j].ID
	})
}

func sortLore(es []models.LoreEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := strings.ToLower(es[i].Title), strings.ToLower(es[j].Title)
		if a != b {
			return a < b
		}
		return es[i].ID < es[j].ID
	})
}

func sortProjects(ps []models.Project) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := strings.ToLower(ps[i].Name), strings.ToLower(ps[j].Name)
		if a != b {
			return a < b
		}
		return ps[i].ID < ps[j].ID
	})
}

func sortPlot(ps []models.PlotNode) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Order != ps[j].Order {
			return ps[i].Order < ps[j].Order
		}
		return ps[i].ID < ps[j].ID
	})
}
