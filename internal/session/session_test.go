package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/note"
)

func TestLoadSetsOriginalAndDropsCheckpoint(t *testing.T) {
	s := New()
	s.SetBody("draft")
	s.TakeCheckpoint()

	var kinds []ChangeKind
	s.OnChange(func(k ChangeKind) { kinds = append(kinds, k) })

	s.Load(note.Document{Title: "t", Folder: "f", Body: "b"})

	w := s.Working()
	require.NotNil(t, w.Original)
	assert.Equal(t, note.Location{Title: "t", Folder: "f"}, *w.Original)
	assert.False(t, w.New())
	assert.False(t, w.Moved())
	_, ok := s.Checkpoint()
	assert.False(t, ok)
	assert.Equal(t, []ChangeKind{Replaced}, kinds)
}

func TestWorkingCopyIsDetached(t *testing.T) {
	s := New()
	s.Load(note.Document{Title: "t"})
	w := s.Working()
	w.Original.Title = "changed"

	orig, ok := s.Original()
	require.True(t, ok)
	assert.Equal(t, "t", orig.Title)
}

func TestMoved(t *testing.T) {
	s := New()
	s.Load(note.Document{Title: "t", Folder: "a"})
	s.SetFolder("b")
	assert.True(t, s.Working().Moved())

	s.SetFolder("a")
	assert.False(t, s.Working().Moved())
}

func TestUndoIsSingleSlot(t *testing.T) {
	s := New()
	s.SetBody("v1")
	s.TakeCheckpoint()
	s.SetBody("v2")
	s.TakeCheckpoint()
	s.SetBody("v3")

	assert.True(t, s.Undo())
	assert.Equal(t, "v2", s.Document().Body)
	assert.False(t, s.Undo())
	assert.Equal(t, "v2", s.Document().Body)
}

func TestRenameFolderReconciles(t *testing.T) {
	tests := []struct {
		name       string
		folder     string
		original   string
		wantFolder string
		wantOrig   string
		changed    bool
	}{
		{"both match", "old", "old", "new", "new", true},
		{"only working", "old", "other", "new", "other", true},
		{"neither", "x", "x", "x", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Load(note.Document{Title: "t", Folder: tt.original})
			s.SetFolder(tt.folder)

			assert.Equal(t, tt.changed, s.RenameFolder("old", "new"))
			assert.Equal(t, tt.wantFolder, s.Document().Folder)
			orig, _ := s.Original()
			assert.Equal(t, tt.wantOrig, orig.Folder)
		})
	}
}

func TestBeginRewriteOnce(t *testing.T) {
	s := New()
	require.NoError(t, s.BeginRewrite())
	assert.ErrorIs(t, s.BeginRewrite(), note.ErrRewriteInProgress)
	s.EndRewrite()
	assert.NoError(t, s.BeginRewrite())
}

func TestSetModeClearsSelection(t *testing.T) {
	s := New()
	s.SetMode(ModeBatch)
	s.UpdateSelection(func(sel *Selection) {
		sel.Documents[note.Location{Title: "a"}] = true
		sel.Folders["f"] = true
	})
	assert.False(t, s.Selection().Empty())

	s.SetMode(ModeNormal)
	assert.True(t, s.Selection().Empty())
	assert.Equal(t, ModeNormal, s.Mode())
}

func TestSelectionCopyIsDetached(t *testing.T) {
	s := New()
	sel := s.Selection()
	sel.Documents[note.Location{Title: "a"}] = true
	assert.True(t, s.Selection().Empty())
}
