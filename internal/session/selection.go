package session

import (
	"sort"

	"github.com/pfassina/scribe/internal/note"
)

// Selection is the batch-mode selection. FolderAdded remembers, per selected
// folder, which documents the folder selection itself put into Documents.
type Selection struct {
	Documents   map[note.Location]bool
	Folders     map[string]bool
	FolderAdded map[string][]note.Location
}

func newSelection() Selection {
	return Selection{
		Documents:   make(map[note.Location]bool),
		Folders:     make(map[string]bool),
		FolderAdded: make(map[string][]note.Location),
	}
}

func (s Selection) clone() Selection {
	c := newSelection()
	for k := range s.Documents {
		c.Documents[k] = true
	}
	for k := range s.Folders {
		c.Folders[k] = true
	}
	for k, v := range s.FolderAdded {
		c.FolderAdded[k] = append([]note.Location(nil), v...)
	}
	return c
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Documents) == 0 && len(s.Folders) == 0
}

// SortedDocuments returns the selected documents ordered by folder, then
// title.
func (s Selection) SortedDocuments() []note.Location {
	locs := make([]note.Location, 0, len(s.Documents))
	for loc := range s.Documents {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Folder != locs[j].Folder {
			return locs[i].Folder < locs[j].Folder
		}
		return locs[i].Title < locs[j].Title
	})
	return locs
}

// SortedFolders returns the selected folder names in order.
func (s Selection) SortedFolders() []string {
	names := make([]string, 0, len(s.Folders))
	for name := range s.Folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
