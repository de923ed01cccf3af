package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/panel"
	"github.com/pfassina/scribe/internal/remote/remotetest"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/vault"
)

func newTestApp(t *testing.T, srv *remotetest.Server) *App {
	t.Helper()
	cfg := config.Default()
	cfg.ServerURL = srv.URL
	cfg.Token = "test-token"
	cfg.CacheDir = t.TempDir()
	cfg.AutosaveDelay = time.Hour

	eng, err := engine.Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))

	a := New(eng)
	t.Cleanup(a.Close)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func leader() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyCtrlX}
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestNewBindingsFromDefaults(t *testing.T) {
	b := newBindings(config.DefaultKeybinds())

	require.Contains(t, b, "f")
	assert.NotNil(t, b["f"].Action)

	require.Contains(t, b, "r")
	assert.Nil(t, b["r"].Action)
	assert.Equal(t, "+rewrite", b["r"].Label)
	require.Contains(t, b["r"].Children, "p")
	assert.NotNil(t, b["r"].Children["p"].Action)
}

func TestNewBindingsSkipsUnknownActions(t *testing.T) {
	b := newBindings([]config.Keybind{
		{Sequence: "Leader z", Action: "no_such_action", Label: "Nothing"},
		{Sequence: "Leader q", Action: "quit", Label: "Quit"},
		{Sequence: "q", Action: "quit", Label: "Not a leader sequence"},
	})
	assert.NotContains(t, b, "z")
	assert.Len(t, b, 1)
}

func TestLeaderTogglesBatchMode(t *testing.T) {
	srv := remotetest.New(t)
	a := newTestApp(t, srv)

	for _, k := range []tea.KeyMsg{leader(), key("b"), key("b")} {
		a.Update(k)
	}
	assert.Equal(t, session.ModeBatch, a.eng.Session.Mode())
	assert.Equal(t, focusTree, a.focused)
	assert.False(t, a.leader.active)
}

func TestLeaderUnknownKeyCancels(t *testing.T) {
	srv := remotetest.New(t)
	a := newTestApp(t, srv)

	a.Update(leader())
	require.True(t, a.leader.active)
	a.Update(key("z"))
	assert.False(t, a.leader.active)
}

func TestTypingStartsUntitledDocument(t *testing.T) {
	srv := remotetest.New(t)
	a := newTestApp(t, srv)

	a.Update(key("hi"))

	w := a.eng.Session.Working()
	assert.Equal(t, "hi", w.Body)
	assert.True(t, w.New())
	assert.Contains(t, w.Title, "Untitled")
}

func TestOpenDocumentSyncsPanels(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Plan", Folder: "work"}
	srv.Put(loc, "# Plan\n\nship it")
	a := newTestApp(t, srv)

	_, cmd := a.Update(panel.TreeOpenMsg{Location: loc})
	msg := run(t, cmd)
	require.NoError(t, msg.(opDoneMsg).err)

	a.Update(docChangedMsg{})
	assert.Equal(t, "# Plan\n\nship it", a.editor.Value())
	assert.Equal(t, "work/Plan", a.fileLabel())
	assert.Contains(t, a.View(), "Plan")
}

func TestNewFolderPrompt(t *testing.T) {
	srv := remotetest.New(t)
	a := newTestApp(t, srv)

	a.Update(panel.TreeNewFolderMsg{})
	require.True(t, a.prompt.Visible())

	_, cmd := a.Update(panel.PromptResultMsg{Value: "ideas"})
	assert.False(t, a.prompt.Visible())
	require.NoError(t, run(t, cmd).(opDoneMsg).err)
	assert.Contains(t, srv.FolderNames(), "ideas")
}

func TestDeleteFromTreeAsksFirst(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Old"}
	srv.Put(loc, "")
	a := newTestApp(t, srv)

	a.Update(panel.TreeDeleteMsg{Entry: vault.Entry{Name: "Old", Location: loc}})
	require.True(t, a.prompt.Visible())
	assert.Empty(t, srv.Mutations())

	_, cmd := a.Update(panel.PromptResultMsg{Value: "yes"})
	require.NoError(t, run(t, cmd).(opDoneMsg).err)
	_, ok := srv.Body(loc)
	assert.False(t, ok)
}

func TestPromptCancelKeepsServerUntouched(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Keep"}
	srv.Put(loc, "")
	a := newTestApp(t, srv)

	a.Update(panel.TreeDeleteMsg{Entry: vault.Entry{Name: "Keep", Location: loc}})
	a.Update(panel.PromptCancelledMsg{})

	assert.False(t, a.prompt.Visible())
	assert.Equal(t, promptNone, a.pendingPrompt.kind)
	assert.Empty(t, srv.Mutations())
}

func TestRetitleSavesMove(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Draft"}
	srv.Put(loc, "text")
	a := newTestApp(t, srv)
	require.NoError(t, a.eng.Mutations.Load(context.Background(), loc))

	require.Nil(t, a.promptRetitle())
	require.True(t, a.prompt.Visible())
	_, cmd := a.Update(panel.PromptResultMsg{Value: "Final"})
	require.NoError(t, run(t, cmd).(opDoneMsg).err)

	body, ok := srv.Body(note.Location{Title: "Final"})
	require.True(t, ok)
	assert.Equal(t, "text", body)
	_, ok = srv.Body(loc)
	assert.False(t, ok)
}

func TestCloseRemembersLastDocument(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Plan", Folder: "work"}
	srv.Put(loc, "body")
	a := newTestApp(t, srv)
	require.NoError(t, a.eng.Mutations.Load(context.Background(), loc))

	a.Close()
	a.Close()

	state, err := a.eng.States.Load()
	require.NoError(t, err)
	got, ok := state.LastLocation()
	require.True(t, ok)
	assert.Equal(t, loc, got)
}

func TestFinderSearchUsesListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "Groceries"}, "")
	srv.Put(note.Location{Title: "Plan", Folder: "work"}, "")
	a := newTestApp(t, srv)
	a.Update(listingMsg{})

	items := a.searchNotes("groc")
	require.Len(t, items, 1)
	assert.Equal(t, "Groceries", items[0].Location.Title)
}
