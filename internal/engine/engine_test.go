package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/autosave"
	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/remote/remotetest"
	"github.com/pfassina/scribe/internal/session"
)

func openEngine(t *testing.T, srv *remotetest.Server) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.ServerURL = srv.URL
	cfg.Token = "test-token"
	cfg.CacheDir = t.TempDir()
	cfg.AutosaveDelay = time.Hour

	e, err := Open(cfg, nil)
	require.NoError(t, err)
	return e
}

func TestStartFillsListingAndCache(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "Plan", Folder: "work"}, "# Plan")
	srv.Put(note.Location{Title: "Inbox"}, "")

	e := openEngine(t, srv)
	require.NoError(t, e.Start(context.Background()))
	require.NotNil(t, e.Cache)

	assert.Len(t, e.Listing.Documents(), 2)
	snap, err := e.Cache.Listing()
	require.NoError(t, err)
	assert.Len(t, snap.Documents, 2)
	require.NoError(t, e.Close())

	// A second engine sees the cached listing before any refresh.
	srv.Close()
	again := openEngine(t, srv)
	loaded, err := again.Listing.LoadCached()
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.True(t, again.Listing.Contains(note.Location{Title: "Plan", Folder: "work"}))
	require.NoError(t, again.Close())
}

func TestRestoreReopensLastDocument(t *testing.T) {
	srv := remotetest.New(t)
	loc := note.Location{Title: "Plan", Folder: "work"}
	srv.Put(loc, "body")

	e := openEngine(t, srv)
	defer e.Close()
	require.NoError(t, e.Start(context.Background()))

	state := session.Default()
	state.Remember(loc)
	assert.True(t, e.Restore(context.Background(), state))
	assert.Equal(t, "body", e.Session.Document().Body)

	state.Remember(note.Location{Title: "Gone"})
	assert.False(t, e.Restore(context.Background(), state))
}

func TestCloseFlushesPendingEdit(t *testing.T) {
	srv := remotetest.New(t)
	e := openEngine(t, srv)

	e.Session.Start("Draft", "")
	e.Session.SetBody("unsaved words")
	assert.Equal(t, autosave.StatusUnsaved, e.Autosave.Status())

	require.NoError(t, e.Close())
	body, ok := srv.Body(note.Location{Title: "Draft"})
	require.True(t, ok)
	assert.Equal(t, "unsaved words", body)
}

func TestWatchRemoteRefreshes(t *testing.T) {
	srv := remotetest.New(t)
	e := openEngine(t, srv)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.WatchRemote(ctx) }()

	require.Eventually(t, func() bool { return srv.Watchers() > 0 }, 2*time.Second, 10*time.Millisecond)

	srv.Put(note.Location{Title: "Remote"}, "")
	srv.Broadcast(remote.Event{Type: remote.EventCreated, Note: &note.Location{Title: "Remote"}})
	require.Eventually(t, func() bool {
		return e.Listing.Contains(note.Location{Title: "Remote"})
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
