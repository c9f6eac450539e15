package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/storage"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testStore opens a store on mem with deterministic ids and a clock that
// advances one second per call.
func testStore(t *testing.T, mem *storage.Mem, opts ...Option) *Store {
	t.Helper()
	seq, tick := 0, 0
	base := []Option{
		WithProvider(mem),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		WithClock(func() time.Time {
			tick++
			return t0.Add(time.Duration(tick) * time.Second)
		}),
	}
	return Open(append(base, opts...)...)
}

func TestOpen_EmptyWhenNothingSaved(t *testing.T) {
	s := testStore(t, storage.NewMem())
	snap, sum := s.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.NotNil(t, snap.Notes)
	assert.Equal(t, models.DefaultTheme, snap.ActiveTheme)
	assert.NotEmpty(t, sum)
	assert.Nil(t, s.ActiveProject())
}

func TestOpen_CorruptDataStartsEmpty(t *testing.T) {
	mem := storage.NewMem()
	require.NoError(t, mem.Save(models.KeyAppData, []byte("{not json")))
	require.NoError(t, mem.Save(models.KeyLearnedWords, []byte("42")))
	s := testStore(t, mem)
	assert.Empty(t, s.Notes())
	assert.Empty(t, s.LearnedWords())
}

func TestRoundTrip_ZeroNotesThreeTasks(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)
	for _, title := range []string{"Outline act I", "Name the villain", "Map the city"} {
		_, err := s.CreateTask(ctx, TaskInput{Title: title, Subtasks: []string{"draft"}})
		require.NoError(t, err)
	}

	reopened := testStore(t, mem)
	want, err := json.Marshal(s.Tasks())
	require.NoError(t, err)
	got, err := json.Marshal(reopened.Tasks())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.Empty(t, reopened.Notes())
	assert.Len(t, reopened.Tasks(), 3)
}

func TestPersistFailure_KeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	var logs bytes.Buffer
	s := testStore(t, mem, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	mem.SaveErr = errors.New("quota exceeded")

	n, err := s.CreateNote(ctx, NoteInput{Title: "Kept"})
	require.NoError(t, err)
	got, ok := s.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, "Kept", got.Title)
	assert.Contains(t, logs.String(), "quota exceeded")

	_, err = mem.Load(models.KeyAppData)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

type recordingSyncer struct{ keys []string }

func (r *recordingSyncer) Sync(_ context.Context, key string, _ []byte) error {
	r.keys = append(r.keys, key)
	return nil
}

func TestSyncerReceivesEveryPersist(t *testing.T) {
	ctx := context.Background()
	sy := &recordingSyncer{}
	s := testStore(t, storage.NewMem(), WithSyncer(sy))
	_, err := s.CreateProject(ctx, ProjectInput{Name: "Ashval"})
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(ctx, models.ThemeAshval))
	assert.Equal(t, []string{models.KeyAppData, models.KeyAppData}, sy.keys)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	n, err := s.CreateNote(ctx, NoteInput{Title: "A"})
	require.NoError(t, err)
	s.DeleteNote(ctx, n.ID)
	unsubscribe()
	_, _ = s.CreateNote(ctx, NoteInput{Title: "B"})

	require.Len(t, got, 2)
	assert.Equal(t, Change{Collection: CollectionNote, Kind: Created, ID: n.ID}, got[0])
	assert.Equal(t, Deleted, got[1].Kind)
}

func TestImport_ETag(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	_, sum := s.Snapshot()

	_, err := s.Import(ctx, []byte(`{"notes": [{"id": "n1", "title": "Imported"}]}`), "stale")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Import(ctx, []byte(`[1, 2]`), "")
	assert.True(t, apperr.IsValidation(err))

	newSum, err := s.Import(ctx, []byte(`{"notes": [{"id": "n1", "title": "Imported"}]}`), sum)
	require.NoError(t, err)
	assert.NotEqual(t, sum, newSum)
	n, ok := s.Note("n1")
	require.True(t, ok)
	assert.Equal(t, "Imported", n.Title)
}

func TestReload_DetectsExternalWrites(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)
	_, err := s.CreateNote(ctx, NoteInput{Title: "Mine"})
	require.NoError(t, err)
	assert.False(t, s.Reload(), "own write must not trigger a reload")

	require.NoError(t, mem.Save(models.KeyAppData, []byte(`{"notes": [{"id": "ext", "title": "External"}]}`)))
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })
	assert.True(t, s.Reload())
	_, ok := s.Note("ext")
	assert.True(t, ok)
	require.Len(t, changes, 1)
	assert.Equal(t, Reloaded, changes[0].Kind)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)

	assert.True(t, apperr.IsValidation(s.SetTheme(ctx, "neon")))
	require.NoError(t, s.SetTheme(ctx, models.ThemeMidnight))

	prefs := models.DefaultPreferences()
	prefs.AIWriter.RepetitionThreshold = 1
	_, err := s.SetPreferences(ctx, prefs)
	assert.True(t, apperr.IsValidation(err))
	prefs.AIWriter.RepetitionThreshold = 4
	_, err = s.SetPreferences(ctx, prefs)
	require.NoError(t, err)

	assert.True(t, apperr.IsValidation(s.SetPomodoro(ctx, models.PomodoroConfig{})))

	words, err := s.AddLearnedWord("  Aether ")
	require.NoError(t, err)
	assert.Equal(t, []string{"aether"}, words)
	_, _ = s.AddLearnedWord("mana")
	assert.Equal(t, []string{"mana"}, s.ForgetLearnedWord("AETHER"))

	reopened := testStore(t, mem)
	assert.Equal(t, models.ThemeMidnight, reopened.Theme())
	assert.Equal(t, 4, reopened.Preferences().AIWriter.RepetitionThreshold)
	assert.Equal(t, []string{"mana"}, reopened.LearnedWords())
}

func TestActiveProject(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)
	missing := "nope"
	assert.ErrorIs(t, s.SetActiveProject(&missing), apperr.ErrNotFound)

	p, err := s.CreateProject(ctx, ProjectInput{Name: "Ashval Chronicles"})
	require.NoError(t, err)
	require.NoError(t, s.SetActiveProject(&p.ID))

	reopened := testStore(t, mem)
	require.NotNil(t, reopened.ActiveProject())
	assert.Equal(t, p.ID, *reopened.ActiveProject())

	require.NoError(t, s.SetActiveProject(nil))
	_, err = mem.Load(models.KeyActiveProjectID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteProject_UnassignsEntities(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	p, err := s.CreateProject(ctx, ProjectInput{Name: "Book One"})
	require.NoError(t, err)
	require.NoError(t, s.SetActiveProject(&p.ID))
	n, err := s.CreateNote(ctx, NoteInput{Title: "Chapter 1", ProjectID: &p.ID})
	require.NoError(t, err)
	e, err := s.CreateLore(ctx, LoreInput{Title: "Elina", ProjectID: &p.ID})
	require.NoError(t, err)

	assert.True(t, s.DeleteProject(ctx, p.ID))
	assert.False(t, s.DeleteProject(ctx, p.ID))

	gotNote, _ := s.Note(n.ID)
	gotLore, _ := s.LoreEntry(e.ID)
	assert.Nil(t, gotNote.ProjectID)
	assert.Nil(t, gotLore.ProjectID)
	assert.Nil(t, s.ActiveProject())
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())

	_, err := s.CreateNote(ctx, NoteInput{Title: "   "})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.CreateTask(ctx, TaskInput{Title: "t", Priority: "urgent"})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.CreateTask(ctx, TaskInput{Title: "t", DueDate: "tomorrow"})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.CreateLore(ctx, LoreInput{Title: "x", Type: "Dragon"})
	assert.True(t, apperr.IsValidation(err))
	ghost := "ghost"
	_, err = s.CreateNote(ctx, NoteInput{Title: "x", ProjectID: &ghost})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.CreateProject(ctx, ProjectInput{})
	assert.True(t, apperr.IsValidation(err))

	assert.Empty(t, s.Notes())
	assert.Empty(t, s.Tasks())
}

func TestUpdate_MissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)
	title := "x"

	_, found, err := s.UpdateNote(ctx, "missing", NotePatch{Title: &title})
	assert.NoError(t, err)
	assert.False(t, found)
	_, found, err = s.UpdateTask(ctx, "missing", TaskPatch{Title: &title})
	assert.NoError(t, err)
	assert.False(t, found)
	_, found, err = s.UpdateLore(ctx, "missing", LorePatch{Title: &title})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.False(t, s.DeleteTask(ctx, "missing"))

	_, err = mem.Load(models.KeyAppData)
	assert.ErrorIs(t, err, storage.ErrNotFound, "no-op must not persist")
}
