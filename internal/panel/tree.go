package panel

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/theme"
	"github.com/pfassina/scribe/internal/vault"
)

// TreeOpenMsg is sent when a document is selected in the tree.
type TreeOpenMsg struct {
	Location note.Location
}

// TreeNewNoteMsg is sent when the user presses 'a' to add a note.
type TreeNewNoteMsg struct {
	Folder string
}

// TreeNewFolderMsg is sent when the user presses 'A' to add a folder.
type TreeNewFolderMsg struct{}

// TreeDeleteMsg is sent when the user presses 'd' on a document or folder.
type TreeDeleteMsg struct {
	Entry vault.Entry
}

// TreeRenameFolderMsg is sent when the user presses 'r' on a folder.
type TreeRenameFolderMsg struct {
	Folder string
}

// TreeMoveNoteMsg is sent when the user presses 'm' on a document.
type TreeMoveNoteMsg struct {
	Location note.Location
}

// TreeToggleMarkMsg is sent when the user presses space on a row.
type TreeToggleMarkMsg struct {
	Entry vault.Entry
}

// TreeBatchDeleteMsg is sent when the user presses 'x'.
type TreeBatchDeleteMsg struct{}

// EntrySource provides the flattened folder tree.
type EntrySource interface {
	Entries() []vault.Entry
}

// Tree is the folder tree panel.
type Tree struct {
	source     EntrySource
	allEntries []vault.Entry
	entries    []vault.Entry
	collapsed  map[string]bool
	selection  session.Selection
	batch      bool
	current    note.Location
	hasCurrent bool
	cursor     int
	offset     int
	width      int
	height     int
	focused    bool
	showHelp   bool
	theme      *theme.Theme
}

func NewTree(src EntrySource) Tree {
	return Tree{
		source:    src,
		collapsed: make(map[string]bool),
	}
}

// SetTheme sets the color theme for the tree panel.
func (t *Tree) SetTheme(th *theme.Theme) { t.theme = th }

func (t *Tree) Refresh() {
	if t.source == nil {
		return
	}
	t.allEntries = t.source.Entries()
	t.rebuildVisible()
}

// SetSelection updates the batch marks shown next to rows.
func (t *Tree) SetSelection(sel session.Selection, batch bool) {
	t.selection = sel
	t.batch = batch
}

// SetCurrent highlights the open document.
func (t *Tree) SetCurrent(loc note.Location, ok bool) {
	t.current = loc
	t.hasCurrent = ok
}

// rebuildVisible filters allEntries based on collapsed state.
func (t *Tree) rebuildVisible() {
	t.entries = t.entries[:0]
	for _, e := range t.allEntries {
		if !e.IsDir && e.Depth > 0 && t.collapsed[e.Folder] {
			continue
		}
		t.entries = append(t.entries, e)
	}
	// Clamp cursor
	if t.cursor >= len(t.entries) {
		t.cursor = len(t.entries) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.offset > t.cursor {
		t.offset = t.cursor
	}
}

// Selected returns the row under the cursor.
func (t Tree) Selected() (vault.Entry, bool) {
	if t.cursor < len(t.entries) {
		return t.entries[t.cursor], true
	}
	return vault.Entry{}, false
}

func (t Tree) Init() tea.Cmd {
	return nil
}

func (t Tree) Update(msg tea.Msg) (Tree, tea.Cmd) {
	if !t.focused {
		return t, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// When help is shown, any key dismisses it
		if t.showHelp {
			t.showHelp = false
			return t, nil
		}

		entry, ok := t.Selected()

		switch msg.String() {
		case "j", "down":
			if t.cursor < len(t.entries)-1 {
				t.cursor++
				if t.cursor-t.offset >= t.height-2 {
					t.offset++
				}
			}
		case "k", "up":
			if t.cursor > 0 {
				t.cursor--
				if t.cursor < t.offset {
					t.offset = t.cursor
				}
			}
		case "enter":
			if !ok {
				break
			}
			if entry.IsDir {
				t.collapsed[entry.Folder] = !t.collapsed[entry.Folder]
				t.rebuildVisible()
				break
			}
			return t, func() tea.Msg { return TreeOpenMsg{Location: entry.Location} }
		case "G":
			if len(t.entries) == 0 {
				break
			}
			t.cursor = len(t.entries) - 1
			if t.cursor-t.offset >= t.height-2 {
				t.offset = t.cursor - t.height + 3
			}
		case "g":
			t.cursor = 0
			t.offset = 0
		case "a":
			folder := note.RootFolder
			if ok {
				folder = entry.Folder
			}
			return t, func() tea.Msg { return TreeNewNoteMsg{Folder: folder} }
		case "A":
			return t, func() tea.Msg { return TreeNewFolderMsg{} }
		case "d":
			if ok {
				return t, func() tea.Msg { return TreeDeleteMsg{Entry: entry} }
			}
		case "r":
			if ok && entry.IsDir {
				return t, func() tea.Msg { return TreeRenameFolderMsg{Folder: entry.Folder} }
			}
		case "m":
			if ok && !entry.IsDir {
				return t, func() tea.Msg { return TreeMoveNoteMsg{Location: entry.Location} }
			}
		case " ":
			if ok && t.batch {
				return t, func() tea.Msg { return TreeToggleMarkMsg{Entry: entry} }
			}
		case "x":
			if t.batch {
				return t, func() tea.Msg { return TreeBatchDeleteMsg{} }
			}
		case "?":
			t.showHelp = !t.showHelp
		}
	}

	return t, nil
}

func (t Tree) palette() *theme.Theme {
	if t.theme != nil {
		return t.theme
	}
	th := theme.DefaultTheme()
	return &th
}

func (t Tree) marked(e vault.Entry) bool {
	if e.IsDir {
		return t.selection.Folders[e.Folder]
	}
	return t.selection.Documents[e.Location]
}

func (t Tree) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}
	th := t.palette()

	var titleStyle lipgloss.Style
	if t.focused {
		titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(th.Accent).
			Underline(true).
			Padding(0, 1)
	} else {
		titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(th.Dim).
			Padding(0, 1)
	}

	var b strings.Builder

	label := "Notes"
	if t.batch {
		label = "Notes [batch]"
	}
	title := titleStyle.Render(label)
	if t.focused && !t.showHelp {
		hint := lipgloss.NewStyle().Foreground(th.Dim).Render("?")
		gap := t.width - 2 - lipgloss.Width(title) - lipgloss.Width(hint)
		if gap > 0 {
			b.WriteString(title)
			b.WriteString(strings.Repeat(" ", gap))
			b.WriteString(hint)
		} else {
			b.WriteString(title)
		}
	} else {
		b.WriteString(title)
	}
	b.WriteByte('\n')

	viewHeight := t.height - 2 // title + bottom padding
	if viewHeight < 0 {
		viewHeight = 0
	}

	helpLines := 0
	if t.showHelp {
		helpLines = 14
		viewHeight -= helpLines
		if viewHeight < 0 {
			viewHeight = 0
		}
	}

	if len(t.entries) == 0 {
		dim := lipgloss.NewStyle().Foreground(th.Dim).Padding(0, 1)
		b.WriteString(dim.Render("No notes"))
		b.WriteByte('\n')
	}

	for i := t.offset; i < len(t.entries) && i-t.offset < viewHeight; i++ {
		entry := t.entries[i]
		indent := strings.Repeat("  ", entry.Depth)
		icon := "  "
		if entry.IsDir {
			if t.collapsed[entry.Folder] {
				icon = "▸ "
			} else {
				icon = "▾ "
			}
		}
		mark := ""
		if t.batch {
			mark = "[ ] "
			if t.marked(entry) {
				mark = "[x] "
			}
		}

		line := fmt.Sprintf("%s%s%s%s", indent, mark, icon, entry.Name)
		line = ansi.Truncate(line, t.width-2, "...")
		if w := lipgloss.Width(line); w < t.width-2 {
			line += strings.Repeat(" ", t.width-2-w)
		}

		style := lipgloss.NewStyle().Foreground(th.Text)
		switch {
		case i == t.cursor && t.focused:
			style = lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
		case t.batch && t.marked(entry):
			style = lipgloss.NewStyle().Foreground(th.Mark)
		case !entry.IsDir && t.hasCurrent && entry.Location == t.current:
			style = lipgloss.NewStyle().Foreground(th.Accent)
		}
		b.WriteString(style.Render(line))
		b.WriteByte('\n')
	}

	if t.showHelp {
		b.WriteString(t.renderHelp())
	}

	return b.String()
}

func (t Tree) renderHelp() string {
	th := t.palette()
	dim := lipgloss.NewStyle().Foreground(th.Dim)
	key := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Dim).
		Padding(0, 1).
		Width(t.width - 6)

	lines := []struct{ k, v string }{
		{"j/k", "Navigate"},
		{"enter", "Open / Toggle folder"},
		{"a", "New note"},
		{"A", "New folder"},
		{"d", "Delete note or folder"},
		{"r", "Rename folder"},
		{"m", "Move note"},
		{"space", "Mark (batch)"},
		{"x", "Delete marked (batch)"},
		{"g/G", "Top / Bottom"},
		{"?", "Toggle help"},
	}

	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", key.Render(fmt.Sprintf("%-5s", l.k)), dim.Render(l.v)))
	}

	return border.Render(strings.TrimRight(sb.String(), "\n"))
}

func (t *Tree) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t *Tree) SetFocused(focused bool) {
	t.focused = focused
}

func (t Tree) ShowingHelp() bool {
	return t.showHelp
}
