// Package mutation applies location-changing and content-writing operations
// to the authority and reconciles the session with the result.
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/session"
)

// Refresher re-fetches the directory listing.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Protocol performs document and folder mutations. Every mutation that
// reaches the authority ends with a listing refresh.
type Protocol struct {
	auth    remote.Authority
	listing Refresher
	sess    *session.Session
	log     *log.Logger

	now func() time.Time
}

// New creates a Protocol.
func New(auth remote.Authority, listing Refresher, sess *session.Session, logger *log.Logger) *Protocol {
	if logger == nil {
		logger = log.Default()
	}
	return &Protocol{
		auth:    auth,
		listing: listing,
		sess:    sess,
		log:     logger.WithPrefix("mutation"),
		now:     time.Now,
	}
}

// Session returns the session the protocol reconciles.
func (p *Protocol) Session() *session.Session {
	return p.sess
}

func (p *Protocol) refresh(ctx context.Context) {
	if err := p.listing.Refresh(ctx); err != nil {
		p.log.Warn("listing refresh failed", "err", err)
	}
}

// Save persists the working document. A new document is written directly.
// A persisted document whose title or folder changed is moved first; if
// the move fails nothing is written and the session is untouched.
func (p *Protocol) Save(ctx context.Context) error {
	w := p.sess.Working()

	target := note.Location{
		Title:  note.NormalizeTitle(w.Title),
		Folder: note.NormalizeFolder(w.Folder),
	}
	if target.Title == "" {
		return &note.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if w.Original != nil && *w.Original != target {
		if err := p.auth.MoveDocument(ctx, *w.Original, target); err != nil {
			return fmt.Errorf("save %s: %w", target, err)
		}
		p.sess.MarkPersisted(target)
		p.log.Info("document moved", "from", w.Original.Path(), "to", target.Path())
	}

	doc := note.Document{Title: target.Title, Folder: target.Folder, Body: w.Body}
	if err := p.auth.WriteDocument(ctx, doc); err != nil {
		if w.Original != nil && *w.Original != target {
			// The move landed; the session now points at the new location.
			p.refresh(ctx)
		}
		return fmt.Errorf("save %s: %w", target, err)
	}

	p.sess.MarkPersisted(target)
	p.sess.ClearCheckpoint()
	p.log.Debug("document saved", "location", target.Path(), "bytes", len(w.Body))

	p.refresh(ctx)
	return nil
}

// Load fetches loc and makes it the working document.
func (p *Protocol) Load(ctx context.Context, loc note.Location) error {
	doc, err := p.auth.GetDocument(ctx, loc)
	if err != nil {
		return fmt.Errorf("load %s: %w", loc, err)
	}
	p.sess.Load(doc)
	return nil
}

// UntitledName returns the default title for a new document.
func (p *Protocol) UntitledName() string {
	return fmt.Sprintf("Untitled-%d", p.now().UnixMilli())
}

// New starts an unpersisted document with a default title in folder.
func (p *Protocol) New(folder string) {
	p.sess.Start(p.UntitledName(), note.NormalizeFolder(folder))
}

// Delete removes one document. Deleting the working document replaces it
// with a fresh one.
func (p *Protocol) Delete(ctx context.Context, loc note.Location) error {
	if err := p.auth.DeleteDocument(ctx, loc); err != nil {
		return fmt.Errorf("delete %s: %w", loc, err)
	}
	if orig, ok := p.sess.Original(); ok && orig == loc {
		p.New(note.RootFolder)
	}
	p.log.Info("document deleted", "location", loc.Path())
	p.refresh(ctx)
	return nil
}

// Move relocates and/or renames a document in one authority call. A move to
// the same location is skipped without a request.
func (p *Protocol) Move(ctx context.Context, from, to note.Location) error {
	to.Title = note.NormalizeTitle(to.Title)
	to.Folder = note.NormalizeFolder(to.Folder)
	if to.Title == "" {
		return &note.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if from == to {
		return nil
	}

	if err := p.auth.MoveDocument(ctx, from, to); err != nil {
		return fmt.Errorf("move %s: %w", from, err)
	}
	if orig, ok := p.sess.Original(); ok && orig == from {
		p.sess.Relocate(from, to)
	}
	p.log.Info("document moved", "from", from.Path(), "to", to.Path())
	p.refresh(ctx)
	return nil
}

// Relocate moves a document to another folder, keeping its title.
func (p *Protocol) Relocate(ctx context.Context, loc note.Location, folder string) error {
	return p.Move(ctx, loc, note.Location{Title: loc.Title, Folder: folder})
}

// CreateFolder registers an empty folder.
func (p *Protocol) CreateFolder(ctx context.Context, name string) error {
	name = note.NormalizeFolder(name)
	if name == "" {
		return &note.ValidationError{Field: "folder", Reason: "must not be empty"}
	}
	if err := p.auth.CreateFolder(ctx, name); err != nil {
		return fmt.Errorf("create folder %q: %w", name, err)
	}
	p.refresh(ctx)
	return nil
}

// RenameFolder renames a folder on the authority. Only after it succeeds are
// the working folder and persisted location updated.
func (p *Protocol) RenameFolder(ctx context.Context, oldName, newName string) error {
	oldName = note.NormalizeFolder(oldName)
	newName = note.NormalizeFolder(newName)
	switch {
	case oldName == note.RootFolder:
		return &note.ValidationError{Field: "folder", Reason: "the root folder cannot be renamed"}
	case newName == "":
		return &note.ValidationError{Field: "folder", Reason: "new name must not be empty"}
	case oldName == newName:
		return nil
	}

	if err := p.auth.RenameFolder(ctx, oldName, newName); err != nil {
		return fmt.Errorf("rename folder %q: %w", oldName, err)
	}
	p.sess.RenameFolder(oldName, newName)
	p.log.Info("folder renamed", "from", oldName, "to", newName)
	p.refresh(ctx)
	return nil
}

// DeleteFolder removes a folder and, on the authority, every document in it.
func (p *Protocol) DeleteFolder(ctx context.Context, name string) error {
	name = note.NormalizeFolder(name)
	if name == note.RootFolder {
		return &note.ValidationError{Field: "folder", Reason: "the root folder cannot be deleted"}
	}
	if err := p.auth.DeleteFolder(ctx, name); err != nil {
		return fmt.Errorf("delete folder %q: %w", name, err)
	}
	if orig, ok := p.sess.Original(); ok && orig.Folder == name {
		p.New(note.RootFolder)
	}
	p.log.Info("folder deleted", "name", name)
	p.refresh(ctx)
	return nil
}
