package workspace

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/storage"
)

func TestPlot_ChildrenMaintained(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	act, err := s.CreatePlotNode(ctx, PlotInput{Text: "Act I"})
	require.NoError(t, err)
	a, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Inciting incident", ParentID: &act.ID})
	zero := 0
	b, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Opening image", ParentID: &act.ID, Order: &zero})

	root, _ := s.PlotNode(act.ID)
	assert.Equal(t, []string{b.ID, a.ID}, root.ChildrenIDs)
	gotA, _ := s.PlotNode(a.ID)
	assert.Equal(t, 1, gotA.Order)
	assert.True(t, gotA.IsExpanded)
}

func TestPlot_DeleteRefusedWithChildren(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	act, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Act I"})
	beat, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Beat", ParentID: &act.ID})

	found, err := s.DeletePlotNode(ctx, act.ID)
	assert.True(t, found)
	assert.ErrorIs(t, err, apperr.ErrHasChildren)
	_, ok := s.PlotNode(act.ID)
	assert.True(t, ok)

	found, err = s.DeletePlotNode(ctx, beat.ID)
	require.NoError(t, err)
	assert.True(t, found)
	root, _ := s.PlotNode(act.ID)
	assert.Empty(t, root.ChildrenIDs)

	found, err = s.DeletePlotNode(ctx, act.ID)
	require.NoError(t, err)
	assert.True(t, found)
	found, _ = s.DeletePlotNode(ctx, act.ID)
	assert.False(t, found)
}

func TestPlot_Move(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	act1, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Act I"})
	act2, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Act II"})
	beat, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Beat", ParentID: &act1.ID})
	sub, _ := s.CreatePlotNode(ctx, PlotInput{Text: "Sub-beat", ParentID: &beat.ID})

	_, err := s.MovePlotNode(ctx, act1.ID, &sub.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidMove)
	_, err = s.MovePlotNode(ctx, beat.ID, &beat.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidMove)

	moved, err := s.MovePlotNode(ctx, beat.ID, &act2.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, act2.ID, *moved.ParentID)
	assert.Equal(t, 0, moved.Order)

	old, _ := s.PlotNode(act1.ID)
	assert.Empty(t, old.ChildrenIDs)
	dst, _ := s.PlotNode(act2.ID)
	assert.Equal(t, []string{beat.ID}, dst.ChildrenIDs)
}

func TestPlot_Links(t *testing.T) {
	ctx := context.Background()
	s := testStore(t, storage.NewMem())
	n, _ := s.CreateNote(ctx, NoteInput{Title: "Scene"})
	e, _ := s.CreateLore(ctx, LoreInput{Title: "Elina"})

	_, err := s.CreatePlotNode(ctx, PlotInput{Text: "x", LinkedNoteID: &n.ID, LinkedLoreEntryID: &e.ID})
	assert.True(t, apperr.IsValidation(err))
	ghost := "ghost"
	_, err = s.CreatePlotNode(ctx, PlotInput{Text: "x", LinkedNoteID: &ghost})
	assert.True(t, apperr.IsValidation(err))

	p, err := s.CreatePlotNode(ctx, PlotInput{Text: "Beat", LinkedNoteID: &n.ID})
	require.NoError(t, err)
	got, found, err := s.UpdatePlotNode(ctx, p.ID, PlotPatch{LinkedLoreEntryID: &e.ID})
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, got.LinkedNoteID)
	require.NotNil(t, got.LinkedLoreEntryID)
	assert.Equal(t, e.ID, *got.LinkedLoreEntryID)
}

func TestPlot_TextTrimmedSurvivesReload(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMem()
	s := testStore(t, mem)
	act, err := s.CreatePlotNode(ctx, PlotInput{Text: "  Act I  "})
	require.NoError(t, err)
	assert.Equal(t, "Act I", act.Text)

	renamed := "  The Fall\t"
	got, found, err := s.UpdatePlotNode(ctx, act.ID, PlotPatch{Text: &renamed})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "The Fall", got.Text)

	want, _ := s.Snapshot()
	reloaded, _ := testStore(t, mem).Snapshot()
	wantJSON, err := json.Marshal(want.PlotNodes)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(reloaded.PlotNodes)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}
