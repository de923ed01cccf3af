package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/remote/remotetest"
)

func TestNewRejectsBadURL(t *testing.T) {
	_, err := remote.New(remote.Options{})
	assert.Error(t, err)

	_, err = remote.New(remote.Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	srv := remotetest.New(t)
	c := srv.Client(t)
	ctx := context.Background()

	loc := note.Location{Title: "plan", Folder: "work"}
	require.NoError(t, c.WriteDocument(ctx, note.Document{Title: "plan", Folder: "work", Body: "# Plan"}))

	doc, err := c.GetDocument(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, "# Plan", doc.Body)
	assert.Equal(t, loc, doc.Location())

	locs, err := c.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note.Location{loc}, locs)

	folders, err := c.ListFolders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, folders)

	require.NoError(t, c.DeleteDocument(ctx, loc))
	_, ok := srv.Body(loc)
	assert.False(t, ok)
}

func TestMoveConflict(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "a"}, "1")
	srv.Put(note.Location{Title: "b"}, "2")
	c := srv.Client(t)

	err := c.MoveDocument(context.Background(), note.Location{Title: "a"}, note.Location{Title: "b"})
	require.Error(t, err)
	assert.True(t, note.IsConflict(err))
	assert.Contains(t, err.Error(), "note already exists")

	body, _ := srv.Body(note.Location{Title: "a"})
	assert.Equal(t, "1", body)
}

func TestMoveSendsBothFields(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "a", Folder: "x"}, "1")
	c := srv.Client(t)

	err := c.MoveDocument(context.Background(),
		note.Location{Title: "a", Folder: "x"}, note.Location{Title: "b", Folder: "y"})
	require.NoError(t, err)

	calls := srv.CallsTo(http.MethodPost, "/api/notes/move")
	require.Len(t, calls, 1)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &got))
	assert.Equal(t, map[string]string{
		"old_title": "a", "old_folder": "x", "new_title": "b", "new_folder": "y",
	}, got)
}

func TestTransportErrors(t *testing.T) {
	srv := remotetest.New(t)
	c := srv.Client(t)

	srv.FailNext(http.MethodGet, "/api/notes", http.StatusInternalServerError, "disk full")
	_, err := c.ListDocuments(context.Background())
	var te *note.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Equal(t, "disk full", te.Detail)

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	c2, err := remote.New(remote.Options{BaseURL: dead.URL})
	require.NoError(t, err)
	_, err = c2.ListFolders(context.Background())
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
}

func TestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := remote.New(remote.Options{BaseURL: srv.URL, Token: "secret"})
	require.NoError(t, err)
	_, err = c.ListDocuments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "secret", got.Get(remote.TokenHeader))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestListingAcceptsLegacyShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/notes":
			w.Write([]byte(`["loose", {"title":"t","folder":"f"}]`))
		case "/api/folders":
			w.Write([]byte(`["a", {"name":"b"}]`))
		}
	}))
	defer srv.Close()

	c, err := remote.New(remote.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	locs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []note.Location{{Title: "loose"}, {Title: "t", Folder: "f"}}, locs)

	folders, err := c.ListFolders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, folders)
}

func TestFolderOperations(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "n", Folder: "old"}, "body")
	c := srv.Client(t)
	ctx := context.Background()

	require.NoError(t, c.CreateFolder(ctx, "empty"))
	require.NoError(t, c.RenameFolder(ctx, "old", "new"))
	body, ok := srv.Body(note.Location{Title: "n", Folder: "new"})
	require.True(t, ok)
	assert.Equal(t, "body", body)

	err := c.RenameFolder(ctx, "new", "empty")
	assert.True(t, note.IsConflict(err))

	require.NoError(t, c.DeleteFolder(ctx, "new"))
	assert.Empty(t, srv.Locations())

	err = c.DeleteFolder(ctx, note.RootFolder)
	assert.True(t, note.IsValidation(err))
	assert.Len(t, srv.CallsTo(http.MethodDelete, "/api/folders"), 1)
}

func TestRewriteProxy(t *testing.T) {
	srv := remotetest.New(t)
	srv.Rewrite = remotetest.StreamHandler("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\n")
	c := srv.Client(t)

	resp, err := c.Rewrite(context.Background(), remote.ModePolish, "text")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, resp.Streaming())

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hi")

	calls := srv.CallsTo(http.MethodPost, "/api/ai/polish")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"content":"text"}`, calls[0].Body)
}

func TestRewriteDirect(t *testing.T) {
	var auth, path string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"done"}`))
	}))
	defer srv.Close()

	c, err := remote.New(remote.Options{
		BaseURL: "http://authority.invalid",
		AI: remote.AIOptions{
			Mode:    remote.AIModeDirect,
			BaseURL: srv.URL + "/v1",
			Model:   "gpt-test",
			APIKey:  "k",
		},
	})
	require.NoError(t, err)

	resp, err := c.Rewrite(context.Background(), remote.ModeFormat, "body")
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, resp.Streaming())
	assert.Equal(t, "Bearer k", auth)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "gpt-test", payload["model"])
	assert.Equal(t, true, payload["stream"])
}

func TestRewriteErrorStatus(t *testing.T) {
	srv := remotetest.New(t)
	c := srv.Client(t)

	_, err := c.Rewrite(context.Background(), remote.ModePolish, "x")
	var te *note.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.Status)
}

func TestParseRewriteMode(t *testing.T) {
	m, err := remote.ParseRewriteMode(" Polish ")
	require.NoError(t, err)
	assert.Equal(t, remote.ModePolish, m)

	_, err = remote.ParseRewriteMode("summarize")
	assert.True(t, note.IsValidation(err))
}

func TestWatch(t *testing.T) {
	srv := remotetest.New(t)
	c := srv.Client(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan remote.Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, func(ev remote.Event) { events <- ev })
	}()

	require.Eventually(t, func() bool { return srv.Watchers() == 1 }, 2*time.Second, 10*time.Millisecond)
	srv.Broadcast(remote.Event{Type: remote.EventCreated, Note: &note.Location{Title: "x"}})

	select {
	case ev := <-events:
		assert.Equal(t, remote.EventCreated, ev.Type)
		assert.Equal(t, "x", ev.Note.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
