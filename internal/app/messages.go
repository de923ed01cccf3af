package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/scribe/internal/rewrite"
)

// Engine callbacks run on arbitrary goroutines. They never carry state: each
// ping makes Update re-read the engine, so a dropped ping is harmless while
// another one is queued.
type (
	// docChangedMsg: the working document changed.
	docChangedMsg struct{}
	// saveStatusMsg: the autosave indicator changed.
	saveStatusMsg struct{}
	// listingMsg: the directory store was refreshed.
	listingMsg struct{}
)

// startedMsg reports the initial refresh.
type startedMsg struct {
	err      error
	restored bool
}

// opDoneMsg reports a finished engine operation. label is shown on success.
type opDoneMsg struct {
	label string
	err   error
}

type rewriteDoneMsg struct {
	result rewrite.Result
	err    error
}

type importedMsg struct {
	path string
	err  error
}

// watchStoppedMsg is sent when a background watcher exits.
type watchStoppedMsg struct {
	what string
	err  error
}

// leaderTimeoutMsg signals leader key timeout.
type leaderTimeoutMsg struct{}

// waitForEvent delivers the next engine ping.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
