package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pfassina/scribe/internal/note"
)

// ListFolders returns the folder names known to the authority, which may
// include empty folders. Entries may be bare strings or {"name": ...} objects.
func (c *Client) ListFolders(ctx context.Context) ([]string, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, "list folders", http.MethodGet, "/api/folders", nil, nil, &raw); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if json.Unmarshal(item, &name) == nil {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, &note.TransportError{Op: "list folders", Err: fmt.Errorf("decode entry %s: %w", item, err)}
		}
		names = append(names, obj.Name)
	}
	return names, nil
}

// CreateFolder creates an empty folder.
func (c *Client) CreateFolder(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, "create folder", http.MethodPost, "/api/folders", nil, body, nil)
}

// RenameFolder renames a folder along with every document in it.
func (c *Client) RenameFolder(ctx context.Context, oldName, newName string) error {
	body := map[string]string{"old_name": oldName, "new_name": newName}
	return c.do(ctx, "rename folder", http.MethodPost, "/api/folders/rename", nil, body, nil)
}

// DeleteFolder removes a folder and all documents in it.
func (c *Client) DeleteFolder(ctx context.Context, name string) error {
	if name == note.RootFolder {
		return &note.ValidationError{Field: "folder", Reason: "the root folder cannot be deleted"}
	}
	q := url.Values{"name": {name}}
	return c.do(ctx, "delete folder", http.MethodDelete, "/api/folders", q, nil, nil)
}
