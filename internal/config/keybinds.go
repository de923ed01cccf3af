package config

import "strings"

// LeaderToken stands for the configured leader key inside a sequence.
const LeaderToken = "Leader"

// Keybind represents a key binding configuration. Entries with an empty
// Action name a group prefix and only carry a label.
type Keybind struct {
	Sequence string
	Action   string
	Label    string
}

// Keys splits the sequence into its keys, leader first.
func (k Keybind) Keys() []string {
	return strings.Fields(k.Sequence)
}

// DefaultKeybinds returns the default leader key bindings.
func DefaultKeybinds() []Keybind {
	return []Keybind{
		{Sequence: "Leader f", Action: "finder", Label: "Find note"},
		{Sequence: "Leader s", Action: "save", Label: "Save note"},
		{Sequence: "Leader d", Action: "delete_note", Label: "Delete note"},
		{Sequence: "Leader t", Action: "rename_note", Label: "Retitle note"},
		{Sequence: "Leader m", Action: "move_note", Label: "Move note"},
		{Sequence: "Leader g", Action: "refresh", Label: "Refresh listing"},

		{Sequence: "Leader n", Label: "+new"},
		{Sequence: "Leader n n", Action: "new_note", Label: "New note"},
		{Sequence: "Leader n f", Action: "new_folder", Label: "New folder"},

		{Sequence: "Leader r", Label: "+rewrite"},
		{Sequence: "Leader r p", Action: "rewrite_polish", Label: "Polish"},
		{Sequence: "Leader r f", Action: "rewrite_format", Label: "Format"},
		{Sequence: "Leader r u", Action: "rewrite_undo", Label: "Undo rewrite"},

		{Sequence: "Leader b", Label: "+batch"},
		{Sequence: "Leader b b", Action: "batch_toggle", Label: "Toggle batch mode"},
		{Sequence: "Leader b a", Action: "batch_select_all", Label: "Select all"},
		{Sequence: "Leader b d", Action: "batch_delete", Label: "Delete selection"},
		{Sequence: "Leader b e", Action: "batch_export", Label: "Export selection"},

		{Sequence: "Leader v", Label: "+view"},
		{Sequence: "Leader v t", Action: "toggle_tree", Label: "Toggle tree"},
		{Sequence: "Leader v i", Action: "toggle_info", Label: "Toggle outline"},
		{Sequence: "Leader v s", Action: "toggle_status", Label: "Toggle status"},

		{Sequence: "Leader q", Action: "quit", Label: "Quit"},
	}
}
