// Package export packages documents into a zip archive with a YAML
// manifest.
package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry is one exported document: its folder/title path and body.
type Entry struct {
	Path string
	Body string
}

// Manifest describes an archive's contents.
type Manifest struct {
	CreatedAt time.Time      `yaml:"created_at"`
	Count     int            `yaml:"count"`
	Documents []ManifestItem `yaml:"documents"`
}

// ManifestItem is one manifest row.
type ManifestItem struct {
	Path  string `yaml:"path"`
	File  string `yaml:"file"`
	Bytes int    `yaml:"bytes"`
}

// ManifestName is the archive member holding the manifest.
const ManifestName = "manifest.yaml"

// FileName maps a document path to its archive member name.
func FileName(p string) string {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if !strings.HasSuffix(strings.ToLower(clean), ".md") {
		clean += ".md"
	}
	return clean
}

// Write packages entries into a zip archive written to w.
func Write(w io.Writer, entries []Entry, now time.Time) error {
	zw := zip.NewWriter(w)

	m := Manifest{CreatedAt: now.UTC(), Count: len(entries)}
	seen := make(map[string]int)
	for _, e := range entries {
		name := FileName(e.Path)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s-%d.md", strings.TrimSuffix(name, ".md"), n)
		}
		seen[FileName(e.Path)]++

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, e.Body); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		m.Documents = append(m.Documents, ManifestItem{Path: e.Path, File: name, Bytes: len(e.Body)})
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestName, Method: zip.Deflate, Modified: now})
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	enc := yaml.NewEncoder(mw)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	return zw.Close()
}

// DefaultName returns the archive file name used when none is given.
func DefaultName(now time.Time) string {
	return "scribe-" + now.Format("20060102-150405") + ".zip"
}

// WriteFile writes the archive to name, creating its directory. A partly
// written file is removed on failure.
func WriteFile(name string, entries []Entry, now time.Time) (err error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			os.Remove(name)
		}
	}()
	return Write(f, entries, now)
}

// ReadManifest extracts the manifest from an archive.
func ReadManifest(r io.ReaderAt, size int64) (Manifest, error) {
	var m Manifest
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return m, err
	}
	f, err := zr.Open(ManifestName)
	if err != nil {
		return m, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
