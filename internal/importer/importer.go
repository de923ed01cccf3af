// Package importer writes local text files to the authority as root-level
// documents.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scribe/internal/note"
)

// Extensions lists the file types that are imported.
var Extensions = []string{".md", ".markdown", ".txt"}

// Writer stores a document on the authority.
type Writer interface {
	WriteDocument(ctx context.Context, doc note.Document) error
}

// Refresher re-fetches the directory listing.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Importer uploads files.
type Importer struct {
	w       Writer
	listing Refresher
	log     *log.Logger
}

// New creates an Importer. listing may be nil.
func New(w Writer, listing Refresher, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{w: w, listing: listing, log: logger.WithPrefix("import")}
}

// Accepts reports whether path has an importable extension.
func Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TitleFromPath returns the file's base name without its extension.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Files writes each file to the root folder, titled by its base name. A
// failing file does not stop the others; failures are returned joined.
func (im *Importer) Files(ctx context.Context, paths []string) ([]note.Location, error) {
	var (
		done []note.Location
		errs []error
	)
	for _, p := range paths {
		loc, err := im.file(ctx, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		done = append(done, loc)
	}

	if len(done) > 0 && im.listing != nil {
		if err := im.listing.Refresh(ctx); err != nil {
			im.log.Warn("listing refresh failed", "err", err)
		}
	}
	return done, errors.Join(errs...)
}

func (im *Importer) file(ctx context.Context, path string) (note.Location, error) {
	if !Accepts(path) {
		return note.Location{}, &note.ValidationError{Field: "file", Reason: fmt.Sprintf("%s: unsupported type", path)}
	}
	title := note.NormalizeTitle(TitleFromPath(path))
	if title == "" {
		return note.Location{}, &note.ValidationError{Field: "title", Reason: fmt.Sprintf("%s: empty file name", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return note.Location{}, fmt.Errorf("read %s: %w", path, err)
	}

	doc := note.Document{Title: title, Folder: note.RootFolder, Body: string(data)}
	if err := im.w.WriteDocument(ctx, doc); err != nil {
		return note.Location{}, fmt.Errorf("import %s: %w", path, err)
	}
	im.log.Info("imported", "file", path, "title", title)
	return doc.Location(), nil
}
