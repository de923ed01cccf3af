package export

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"todo", "todo.md"},
		{"work/plan", "work/plan.md"},
		{"notes.md", "notes.md"},
		{"../escape", "escape.md"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.in))
		})
	}
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	entries := []Entry{
		{Path: "readme", Body: "# Root"},
		{Path: "work/readme", Body: "# Work"},
	}
	require.NoError(t, Write(&buf, entries, now))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	bodies := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		bodies[f.Name] = string(data)
	}
	assert.Equal(t, "# Root", bodies["readme.md"])
	assert.Equal(t, "# Work", bodies["work/readme.md"])
	assert.Contains(t, bodies, ManifestName)

	m, err := ReadManifest(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count)
	assert.True(t, m.CreatedAt.Equal(now))
	assert.Equal(t, "work/readme", m.Documents[1].Path)
	assert.Equal(t, 6, m.Documents[1].Bytes)
}

func TestWriteDeduplicatesNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Entry{{Path: "a"}, {Path: "a.md"}}, time.Now()))

	m, err := ReadManifest(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "a.md", m.Documents[0].File)
	assert.Equal(t, "a-1.md", m.Documents[1].File)
}

func TestWriteFile(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	name := filepath.Join(t.TempDir(), "exports", DefaultName(now))
	assert.Equal(t, "scribe-20240501-093000.zip", filepath.Base(name))

	require.NoError(t, WriteFile(name, []Entry{{Path: "todo", Body: "buy milk"}}, now))

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	m, err := ReadManifest(f, info.Size())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count)
	assert.Equal(t, "todo.md", m.Documents[0].File)
}
