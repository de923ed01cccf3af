// Package batch implements multi-select over documents and folders and the
// destructive and export operations that act on a selection.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pfassina/scribe/internal/export"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/vault"
)

const defaultFetchLimit = 4

// Listing is the directory store as seen by the selection engine.
type Listing interface {
	Documents() []note.Location
	Group() vault.Grouping
	Refresh(ctx context.Context) error
}

// Engine applies selection rules to the session.
type Engine struct {
	sess    *session.Session
	listing Listing
	auth    remote.Authority
	log     *log.Logger

	fetchLimit int
}

// New creates an Engine.
func New(sess *session.Session, listing Listing, auth remote.Authority, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		sess:       sess,
		listing:    listing,
		auth:       auth,
		log:        logger.WithPrefix("batch"),
		fetchLimit: defaultFetchLimit,
	}
}

// ToggleMode switches between normal and batch mode and returns the new
// mode. Either direction clears the selection.
func (e *Engine) ToggleMode() session.Mode {
	next := session.ModeBatch
	if e.sess.Mode() == session.ModeBatch {
		next = session.ModeNormal
	}
	e.sess.SetMode(next)
	return next
}

func (e *Engine) active() bool {
	return e.sess.Mode() == session.ModeBatch
}

// ToggleDocument flips loc's membership. It reports the new membership and
// does nothing outside batch mode.
func (e *Engine) ToggleDocument(loc note.Location) bool {
	if !e.active() {
		return false
	}
	var selected bool
	e.sess.UpdateSelection(func(sel *session.Selection) {
		if sel.Documents[loc] {
			delete(sel.Documents, loc)
			return
		}
		sel.Documents[loc] = true
		selected = true
	})
	return selected
}

// ToggleFolder flips a folder's membership together with its documents.
// Selecting adds every member; deselecting removes exactly the members
// that the selection added, so documents picked individually beforehand
// stay selected.
func (e *Engine) ToggleFolder(folder string) bool {
	if !e.active() {
		return false
	}
	members := e.listing.Group().Members(folder)

	var selected bool
	e.sess.UpdateSelection(func(sel *session.Selection) {
		if sel.Folders[folder] {
			delete(sel.Folders, folder)
			for _, loc := range sel.FolderAdded[folder] {
				delete(sel.Documents, loc)
			}
			delete(sel.FolderAdded, folder)
			return
		}

		var added []note.Location
		for _, loc := range members {
			if !sel.Documents[loc] {
				sel.Documents[loc] = true
				added = append(added, loc)
			}
		}
		sel.Folders[folder] = true
		sel.FolderAdded[folder] = added
		selected = true
	})
	return selected
}

// SelectAll selects every document, or clears the document selection when
// everything is already selected. Folders are not touched.
func (e *Engine) SelectAll() {
	if !e.active() {
		return
	}
	docs := e.listing.Documents()
	e.sess.UpdateSelection(func(sel *session.Selection) {
		if len(sel.Documents) == len(docs) {
			clear(sel.Documents)
			clear(sel.FolderAdded)
			return
		}
		for _, loc := range docs {
			sel.Documents[loc] = true
		}
	})
}

// Delete removes the selection from the authority: selected folders first,
// then the selected documents that did not live in a deleted folder. It
// keeps going past individual failures and returns them joined. Afterwards
// the working document and selection are cleared, batch mode is left and
// the listing is refreshed.
func (e *Engine) Delete(ctx context.Context) error {
	sel := e.sess.Selection()

	var errs []error
	deleted := make(map[string]bool)
	for _, folder := range sel.SortedFolders() {
		if folder == note.RootFolder {
			continue
		}
		if err := e.auth.DeleteFolder(ctx, folder); err != nil {
			errs = append(errs, fmt.Errorf("folder %q: %w", folder, err))
			continue
		}
		deleted[folder] = true
	}

	for _, loc := range sel.SortedDocuments() {
		if deleted[loc.Folder] {
			continue
		}
		if err := e.auth.DeleteDocument(ctx, loc); err != nil {
			errs = append(errs, fmt.Errorf("document %s: %w", loc, err))
		}
	}

	e.sess.Clear()
	e.sess.SetMode(session.ModeNormal)
	if err := e.listing.Refresh(ctx); err != nil {
		e.log.Warn("listing refresh failed", "err", err)
	}

	e.log.Info("batch delete", "folders", len(deleted), "documents", len(sel.Documents), "errors", len(errs))
	return errors.Join(errs...)
}

// Export fetches the body of every selected document and returns
// (path, body) pairs in folder/title order.
func (e *Engine) Export(ctx context.Context) ([]export.Entry, error) {
	locs := e.sess.Selection().SortedDocuments()
	entries := make([]export.Entry, len(locs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchLimit)
	for i, loc := range locs {
		g.Go(func() error {
			doc, err := e.auth.GetDocument(gctx, loc)
			if err != nil {
				return fmt.Errorf("export %s: %w", loc, err)
			}
			entries[i] = export.Entry{Path: loc.Path(), Body: doc.Body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
