package session

import "github.com/pfassina/scribe/internal/note"

// State is the UI state persisted between runs.
type State struct {
	LastTitle  string `json:"last_title,omitempty"`
	LastFolder string `json:"last_folder,omitempty"`
	ShowTree   bool   `json:"show_tree"`
	ShowInfo   bool   `json:"show_info"`
	TreeWidth  int    `json:"tree_width,omitempty"`
	InfoWidth  int    `json:"info_width,omitempty"`
}

// Default returns the default session state.
func Default() State {
	return State{
		ShowTree:  true,
		ShowInfo:  true,
		TreeWidth: 30,
		InfoWidth: 30,
	}
}

// LastLocation returns the last opened document, if one was recorded.
func (s State) LastLocation() (note.Location, bool) {
	if s.LastTitle == "" {
		return note.Location{}, false
	}
	return note.Location{Title: s.LastTitle, Folder: s.LastFolder}, true
}

// Remember records loc as the last opened document.
func (s *State) Remember(loc note.Location) {
	s.LastTitle = loc.Title
	s.LastFolder = loc.Folder
}
