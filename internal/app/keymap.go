package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/panel"
	"github.com/pfassina/scribe/internal/remote"
)

// Binding represents a leader key binding.
type Binding struct {
	Key      string
	Label    string
	Action   func(a *App) tea.Cmd
	Children map[string]*Binding
}

// LeaderState tracks the leader key sequence.
type LeaderState struct {
	active   bool
	keys     string
	node     map[string]*Binding
	showHelp bool
}

// actionTable maps keybind action names to their implementation.
func actionTable() map[string]func(a *App) tea.Cmd {
	return map[string]func(a *App) tea.Cmd{
	"finder": func(a *App) tea.Cmd {
		a.ToggleFinder()
		return nil
	},
	"save":        func(a *App) tea.Cmd { return a.saveNow() },
	"delete_note": func(a *App) tea.Cmd { return a.promptDeleteWorking() },
	"rename_note": func(a *App) tea.Cmd { return a.promptRetitle() },
	"move_note":   func(a *App) tea.Cmd { return a.promptMoveWorking() },
	"refresh":     func(a *App) tea.Cmd { return a.refresh() },
	"new_note":    func(a *App) tea.Cmd { return a.newNote(a.currentFolder()) },
	"new_folder": func(a *App) tea.Cmd {
		a.showPrompt(promptAction{kind: promptNewFolder}, "New folder", "")
		return nil
	},
	"rewrite_polish": func(a *App) tea.Cmd { return a.startRewrite(remote.ModePolish) },
	"rewrite_format": func(a *App) tea.Cmd { return a.startRewrite(remote.ModeFormat) },
	"rewrite_undo":   func(a *App) tea.Cmd { return a.undoRewrite() },
	"batch_toggle":   func(a *App) tea.Cmd { return a.toggleBatch() },
	"batch_select_all": func(a *App) tea.Cmd {
		a.eng.Batch.SelectAll()
		a.syncSelection()
		return nil
	},
	"batch_delete": func(a *App) tea.Cmd { return a.promptBatchDelete() },
	"batch_export": func(a *App) tea.Cmd { return a.exportSelection() },
	"toggle_tree": func(a *App) tea.Cmd {
		a.ToggleTree()
		return nil
	},
	"toggle_info": func(a *App) tea.Cmd {
		a.ToggleInfo()
		return nil
	},
	"toggle_status": func(a *App) tea.Cmd {
		a.ToggleStatus()
		return nil
	},
	"quit": func(a *App) tea.Cmd {
		a.Close()
		return tea.Quit
	},
	}
}

// newBindings builds the leader tree from keybind sequences. Unknown action
// names are skipped.
func newBindings(kbs []config.Keybind) map[string]*Binding {
	actions := actionTable()
	root := make(map[string]*Binding)
	for _, kb := range kbs {
		keys := kb.Keys()
		if len(keys) < 2 || keys[0] != config.LeaderToken {
			continue
		}
		keys = keys[1:]

		node := root
		for i, k := range keys {
			b, ok := node[k]
			if !ok {
				b = &Binding{Key: k}
				node[k] = b
			}
			if i < len(keys)-1 {
				if b.Children == nil {
					b.Children = make(map[string]*Binding)
				}
				node = b.Children
				continue
			}
			b.Label = kb.Label
			if kb.Action == "" {
				if b.Children == nil {
					b.Children = make(map[string]*Binding)
				}
				continue
			}
			if fn, ok := actions[kb.Action]; ok {
				b.Action = fn
			} else {
				delete(node, k)
			}
		}
	}
	return root
}

func (a *App) initLeader() {
	a.bindings = newBindings(config.DefaultKeybinds())
	a.leader = LeaderState{}
}

func (a *App) leaderTimeout() tea.Cmd {
	return tea.Tick(time.Duration(a.cfg.LeaderTimeout)*time.Millisecond, func(time.Time) tea.Msg {
		return leaderTimeoutMsg{}
	})
}

// handleLeaderKey processes a key during leader mode.
// Returns true if the key was consumed by the leader system.
func (a *App) handleLeaderKey(key string) (consumed bool, cmd tea.Cmd) {
	if !a.leader.active {
		if key != a.cfg.LeaderKey {
			return false, nil
		}
		a.leader.active = true
		a.leader.keys = ""
		a.leader.node = a.bindings
		a.leader.showHelp = false
		return true, a.leaderTimeout()
	}

	if key == "esc" {
		a.cancelLeader()
		return true, nil
	}

	// We're in leader mode - accumulate the key
	a.leader.keys += key

	if binding, ok := a.leader.node[key]; ok {
		if binding.Action == nil && binding.Children != nil {
			// This is a group - wait for next key
			a.leader.node = binding.Children
			a.leader.showHelp = false
			return true, a.leaderTimeout()
		}
		a.cancelLeader()
		if binding.Action != nil {
			return true, binding.Action(a)
		}
		return true, nil
	}

	// No match - cancel leader mode
	a.cancelLeader()
	return true, nil
}

func (a *App) handleLeaderTimeout() {
	if a.leader.active {
		a.leader.showHelp = true
	}
}

func (a *App) cancelLeader() {
	a.leader.active = false
	a.leader.showHelp = false
}

func (a *App) updateWhichKey() {
	if !a.leader.showHelp || a.leader.node == nil {
		a.whichKey.Clear()
		return
	}

	var entries []panel.WhichKeyEntry
	for _, b := range a.leader.node {
		entries = append(entries, panel.WhichKeyEntry{
			Key:   b.Key,
			Label: b.Label,
			Group: b.Action == nil,
		})
	}
	a.whichKey.SetEntries(a.leader.keys, entries)
}
