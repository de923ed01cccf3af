package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pfassina/scribe/internal/note"
)

type moveRequest struct {
	OldTitle  string `json:"old_title"`
	OldFolder string `json:"old_folder"`
	NewTitle  string `json:"new_title"`
	NewFolder string `json:"new_folder"`
}

// ListDocuments returns every document location known to the authority.
// Entries may be {"title","folder"} objects or bare title strings, the
// latter meaning a root-level document.
func (c *Client) ListDocuments(ctx context.Context) ([]note.Location, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, "list documents", http.MethodGet, "/api/notes", nil, nil, &raw); err != nil {
		return nil, err
	}

	locs := make([]note.Location, 0, len(raw))
	for _, item := range raw {
		var title string
		if json.Unmarshal(item, &title) == nil {
			locs = append(locs, note.Location{Title: title})
			continue
		}
		var loc note.Location
		if err := json.Unmarshal(item, &loc); err != nil {
			return nil, &note.TransportError{Op: "list documents", Err: fmt.Errorf("decode entry %s: %w", item, err)}
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// GetDocument fetches the body of one document.
func (c *Client) GetDocument(ctx context.Context, loc note.Location) (note.Document, error) {
	q := url.Values{"title": {loc.Title}, "folder": {loc.Folder}}
	var doc note.Document
	if err := c.do(ctx, "get document", http.MethodGet, "/api/notes/content", q, nil, &doc); err != nil {
		return note.Document{}, err
	}
	// The authority may omit the key fields; the request is authoritative.
	doc.Title = loc.Title
	doc.Folder = loc.Folder
	return doc, nil
}

// WriteDocument creates or overwrites a document at its location.
func (c *Client) WriteDocument(ctx context.Context, doc note.Document) error {
	return c.do(ctx, "write document", http.MethodPost, "/api/notes", nil, doc, nil)
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, loc note.Location) error {
	q := url.Values{"title": {loc.Title}, "folder": {loc.Folder}}
	return c.do(ctx, "delete document", http.MethodDelete, "/api/notes", q, nil, nil)
}

// MoveDocument renames and/or relocates a document in one call. The authority
// answers 409 when the destination is taken, surfaced as a ConflictError.
func (c *Client) MoveDocument(ctx context.Context, from, to note.Location) error {
	req := moveRequest{
		OldTitle:  from.Title,
		OldFolder: from.Folder,
		NewTitle:  to.Title,
		NewFolder: to.Folder,
	}
	return c.do(ctx, "move document", http.MethodPost, "/api/notes/move", nil, req, nil)
}
