package vault

import (
	"sort"

	"github.com/pfassina/scribe/internal/note"
)

// Grouping maps a folder name to the documents directly inside it.
type Grouping map[string][]note.Location

// Group partitions docs by folder. Every name in folders is a key even when
// it holds no documents, and so is the root.
func Group(docs []note.Location, folders []string) Grouping {
	g := Grouping{note.RootFolder: {}}
	for _, f := range folders {
		if _, ok := g[f]; !ok {
			g[f] = []note.Location{}
		}
	}
	for _, d := range docs {
		g[d.Folder] = append(g[d.Folder], d)
	}
	return g
}

// Members returns the documents grouped under folder.
func (g Grouping) Members(folder string) []note.Location {
	return g[folder]
}

// FolderNames returns the keys of g with the root first and the rest sorted.
func FolderNames(g Grouping) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		if name != note.RootFolder {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{note.RootFolder}, names...)
}
