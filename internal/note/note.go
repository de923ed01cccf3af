package note

import "strings"

// RootFolder is the folder name of documents that live at the top level.
const RootFolder = ""

// Location identifies a document by its title within a folder.
// Titles are only unique inside one folder.
type Location struct {
	Title  string `json:"title"`
	Folder string `json:"folder"`
}

// Path returns "folder/title", or just the title for root documents.
func (l Location) Path() string {
	if l.Folder == RootFolder {
		return l.Title
	}
	return l.Folder + "/" + l.Title
}

// ParseLocation is the inverse of Path: everything before the last slash
// is the folder.
func ParseLocation(p string) Location {
	p = strings.Trim(strings.TrimSpace(p), "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return Location{Title: p}
	}
	return Location{Title: p[i+1:], Folder: p[:i]}
}

func (l Location) String() string {
	return l.Path()
}

// Document is a note with its body.
type Document struct {
	Title  string `json:"title"`
	Folder string `json:"folder"`
	Body   string `json:"content"`
}

// Location returns the document's location key.
func (d Document) Location() Location {
	return Location{Title: d.Title, Folder: d.Folder}
}

// NormalizeTitle trims surrounding whitespace from a user supplied title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// NormalizeFolder trims whitespace and surrounding slashes so "/work/" and
// "work" name the same folder.
func NormalizeFolder(folder string) string {
	return strings.Trim(strings.TrimSpace(folder), "/")
}
