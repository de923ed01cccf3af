package mutation

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote/remotetest"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/vault"
)

type fixture struct {
	srv   *remotetest.Server
	store *vault.Store
	sess  *session.Session
	p     *Protocol
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := remotetest.New(t)
	client := srv.Client(t)
	store := vault.New(client, nil, nil)
	sess := session.New()
	return &fixture{srv: srv, store: store, sess: sess, p: New(client, store, sess, nil)}
}

func TestSaveCreate(t *testing.T) {
	f := newFixture(t)
	f.sess.Start("plan", "work")
	f.sess.SetBody("hello")

	require.NoError(t, f.p.Save(context.Background()))

	assert.Empty(t, f.srv.CallsTo(http.MethodPost, "/api/notes/move"))
	require.Len(t, f.srv.CallsTo(http.MethodPost, "/api/notes"), 1)
	body, ok := f.srv.Body(note.Location{Title: "plan", Folder: "work"})
	require.True(t, ok)
	assert.Equal(t, "hello", body)

	orig, ok := f.sess.Original()
	require.True(t, ok)
	assert.Equal(t, note.Location{Title: "plan", Folder: "work"}, orig)
	assert.True(t, f.store.Contains(orig))
}

func TestSaveEmptyTitle(t *testing.T) {
	f := newFixture(t)
	f.sess.Start("   ", "")

	err := f.p.Save(context.Background())
	assert.True(t, note.IsValidation(err))
	assert.Empty(t, f.srv.Calls())
}

func TestSaveUnchangedLocationNeverMoves(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a", Folder: "x"}
	f.srv.Put(loc, "old")
	require.NoError(t, f.p.Load(context.Background(), loc))

	f.sess.SetBody("new")
	require.NoError(t, f.p.Save(context.Background()))
	require.NoError(t, f.p.Save(context.Background()))

	assert.Empty(t, f.srv.CallsTo(http.MethodPost, "/api/notes/move"))
	assert.Len(t, f.srv.CallsTo(http.MethodPost, "/api/notes"), 2)
}

func TestSaveMovesBeforeWrite(t *testing.T) {
	f := newFixture(t)
	f.srv.Put(note.Location{Title: "a", Folder: "x"}, "old")
	require.NoError(t, f.p.Load(context.Background(), note.Location{Title: "a", Folder: "x"}))
	f.srv.ResetCalls()

	f.sess.SetTitle("b")
	f.sess.SetFolder("y")
	f.sess.SetBody("new")
	require.NoError(t, f.p.Save(context.Background()))

	muts := f.srv.Mutations()
	require.Len(t, muts, 2)
	assert.Equal(t, "/api/notes/move", muts[0].Path)
	assert.Equal(t, "/api/notes", muts[1].Path)

	_, ok := f.srv.Body(note.Location{Title: "a", Folder: "x"})
	assert.False(t, ok)
	body, _ := f.srv.Body(note.Location{Title: "b", Folder: "y"})
	assert.Equal(t, "new", body)

	orig, _ := f.sess.Original()
	assert.Equal(t, note.Location{Title: "b", Folder: "y"}, orig)
}

func TestSaveMoveFailureAborts(t *testing.T) {
	f := newFixture(t)
	l0 := note.Location{Title: "a"}
	f.srv.Put(l0, "a body")
	f.srv.Put(note.Location{Title: "b"}, "b body")
	require.NoError(t, f.p.Load(context.Background(), l0))
	f.srv.ResetCalls()

	f.sess.SetTitle("b")
	err := f.p.Save(context.Background())
	require.Error(t, err)
	assert.True(t, note.IsConflict(err))

	orig, _ := f.sess.Original()
	assert.Equal(t, l0, orig)
	assert.Empty(t, f.srv.CallsTo(http.MethodPost, "/api/notes"))
	body, _ := f.srv.Body(note.Location{Title: "b"})
	assert.Equal(t, "b body", body)
}

func TestSaveClearsCheckpoint(t *testing.T) {
	f := newFixture(t)
	f.sess.Start("t", "")
	f.sess.SetBody("before")
	f.sess.TakeCheckpoint()

	require.NoError(t, f.p.Save(context.Background()))
	_, ok := f.sess.Checkpoint()
	assert.False(t, ok)
}

func TestSaveTrimsTitle(t *testing.T) {
	f := newFixture(t)
	f.sess.Start("  spaced  ", "/work/")
	require.NoError(t, f.p.Save(context.Background()))
	require.NoError(t, f.p.Save(context.Background()))

	_, ok := f.srv.Body(note.Location{Title: "spaced", Folder: "work"})
	assert.True(t, ok)
	assert.Empty(t, f.srv.CallsTo(http.MethodPost, "/api/notes/move"))
}

func TestNewUsesTimestampTitle(t *testing.T) {
	f := newFixture(t)
	f.p.now = func() time.Time { return time.UnixMilli(1700000000123) }
	f.p.New("")

	w := f.sess.Working()
	assert.Equal(t, "Untitled-1700000000123", w.Title)
	assert.True(t, w.New())
}

func TestDeleteWorkingDocumentResets(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a"}
	f.srv.Put(loc, "x")
	require.NoError(t, f.p.Load(context.Background(), loc))

	require.NoError(t, f.p.Delete(context.Background(), loc))
	w := f.sess.Working()
	assert.True(t, w.New())
	assert.True(t, strings.HasPrefix(w.Title, "Untitled-"))
	assert.Empty(t, f.store.Documents())
}

func TestRelocateSameFolderIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.p.Relocate(context.Background(), note.Location{Title: "a"}, ""))
	require.NoError(t, f.p.Relocate(context.Background(), note.Location{Title: "a", Folder: "x"}, "/x/"))
	assert.Empty(t, f.srv.Calls())
}

func TestRelocateWorkingDocument(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a"}
	f.srv.Put(loc, "x")
	require.NoError(t, f.p.Load(context.Background(), loc))

	require.NoError(t, f.p.Relocate(context.Background(), loc, "archive"))

	w := f.sess.Working()
	assert.Equal(t, "archive", w.Folder)
	assert.Equal(t, note.Location{Title: "a", Folder: "archive"}, *w.Original)
	assert.False(t, w.Moved())
}

func TestRelocateKeepsUnsavedTitle(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a"}
	f.srv.Put(loc, "x")
	require.NoError(t, f.p.Load(context.Background(), loc))
	f.sess.SetTitle("renamed")

	require.NoError(t, f.p.Relocate(context.Background(), loc, "archive"))

	w := f.sess.Working()
	assert.Equal(t, "renamed", w.Title)
	assert.Equal(t, "archive", w.Folder)
	assert.Equal(t, note.Location{Title: "a", Folder: "archive"}, *w.Original)
	assert.True(t, w.Moved())

	require.NoError(t, f.p.Save(context.Background()))
	_, ok := f.srv.Body(note.Location{Title: "renamed", Folder: "archive"})
	assert.True(t, ok)
	_, ok = f.srv.Body(note.Location{Title: "a", Folder: "archive"})
	assert.False(t, ok)
}

func TestRenameFolderReconcilesOnSuccessOnly(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a", Folder: "old"}
	f.srv.Put(loc, "x")
	f.srv.AddFolder("taken")
	require.NoError(t, f.p.Load(context.Background(), loc))

	err := f.p.RenameFolder(context.Background(), "old", "taken")
	require.True(t, note.IsConflict(err))
	assert.Equal(t, "old", f.sess.Document().Folder)
	orig, _ := f.sess.Original()
	assert.Equal(t, "old", orig.Folder)

	require.NoError(t, f.p.RenameFolder(context.Background(), "old", "new"))
	assert.Equal(t, "new", f.sess.Document().Folder)
	orig, _ = f.sess.Original()
	assert.Equal(t, "new", orig.Folder)
	assert.Contains(t, f.store.Folders(), "new")
}

func TestFolderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.True(t, note.IsValidation(f.p.CreateFolder(ctx, " / ")))
	assert.True(t, note.IsValidation(f.p.RenameFolder(ctx, "", "x")))
	assert.True(t, note.IsValidation(f.p.RenameFolder(ctx, "x", "")))
	assert.True(t, note.IsValidation(f.p.DeleteFolder(ctx, "")))
	assert.Empty(t, f.srv.Calls())
}

func TestDeleteFolderCascadesWorkingDocument(t *testing.T) {
	f := newFixture(t)
	loc := note.Location{Title: "a", Folder: "f"}
	f.srv.Put(loc, "x")
	require.NoError(t, f.p.Load(context.Background(), loc))

	require.NoError(t, f.p.DeleteFolder(context.Background(), "f"))
	assert.True(t, f.sess.Working().New())
	assert.Equal(t, []string{""}, f.store.Folders())
}

func TestCreateFolderRefreshes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.p.CreateFolder(context.Background(), "drafts"))
	assert.Equal(t, []string{"", "drafts"}, f.store.Folders())
}
