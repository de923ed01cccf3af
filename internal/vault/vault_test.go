package vault

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/index"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote/remotetest"
)

func TestGroupIncludesEmptyAndRoot(t *testing.T) {
	tests := []struct {
		name    string
		docs    []note.Location
		folders []string
		keys    []string
	}{
		{"nothing", nil, nil, []string{""}},
		{"empty folder", nil, []string{"drafts"}, []string{"", "drafts"}},
		{"implicit folder", []note.Location{{Title: "a", Folder: "work"}}, nil, []string{"", "work"}},
		{
			"mixed",
			[]note.Location{{Title: "a"}, {Title: "b", Folder: "x"}},
			[]string{"x", "y"},
			[]string{"", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Group(tt.docs, tt.folders)
			assert.Equal(t, tt.keys, FolderNames(g))
			for _, f := range tt.folders {
				assert.Contains(t, g, f)
			}
			assert.Contains(t, g, note.RootFolder)
		})
	}
}

func TestGroupAllowsDuplicateTitlesAcrossFolders(t *testing.T) {
	g := Group([]note.Location{{Title: "readme"}, {Title: "readme", Folder: "x"}}, nil)
	assert.Len(t, g.Members(""), 1)
	assert.Len(t, g.Members("x"), 1)
}

func TestRefreshReplacesListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "b", Folder: "work"}, "")
	srv.Put(note.Location{Title: "a"}, "")
	srv.AddFolder("empty")

	s := New(srv.Client(t), nil, nil)
	refreshed := 0
	s.OnRefresh(func() { refreshed++ })
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, 1, refreshed)
	assert.Equal(t, []note.Location{{Title: "a"}, {Title: "b", Folder: "work"}}, s.Documents())
	assert.Equal(t, []string{"", "empty", "work"}, s.Folders())
	assert.True(t, s.Contains(note.Location{Title: "b", Folder: "work"}))
	assert.False(t, s.Contains(note.Location{Title: "b"}))

	srv.Put(note.Location{Title: "c"}, "")
	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Documents(), 3)
}

func TestRefreshFailureKeepsListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "a"}, "")
	s := New(srv.Client(t), nil, nil)
	require.NoError(t, s.Refresh(context.Background()))

	srv.FailNext(http.MethodGet, "/api/folders", http.StatusBadGateway, "down")
	err := s.Refresh(context.Background())
	var te *note.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, []note.Location{{Title: "a"}}, s.Documents())
}

func TestEntries(t *testing.T) {
	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "root"}, "")
	srv.Put(note.Location{Title: "n", Folder: "work"}, "")
	srv.AddFolder("empty")

	s := New(srv.Client(t), nil, nil)
	require.NoError(t, s.Refresh(context.Background()))

	got := s.Entries()
	require.Len(t, got, 4)
	assert.Equal(t, Entry{Name: "empty", Folder: "empty", IsDir: true}, got[0])
	assert.Equal(t, Entry{Name: "work", Folder: "work", IsDir: true}, got[1])
	assert.Equal(t, "n", got[2].Name)
	assert.Equal(t, 1, got[2].Depth)
	assert.Equal(t, note.Location{Title: "root"}, got[3].Location)
}

func TestSnapshotCache(t *testing.T) {
	db, err := index.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	srv := remotetest.New(t)
	srv.Put(note.Location{Title: "cached", Folder: "f"}, "")

	first := New(srv.Client(t), db, nil)
	ok, err := first.LoadCached()
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, first.Refresh(context.Background()))

	second := New(srv.Client(t), db, nil)
	ok, err = second.LoadCached()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []note.Location{{Title: "cached", Folder: "f"}}, second.Documents())
	assert.True(t, second.FetchedAt().IsZero())
}
