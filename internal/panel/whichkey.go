package panel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/scribe/internal/theme"
)

// WhichKeyEntry represents a single key binding for display.
type WhichKeyEntry struct {
	Key   string
	Label string
	Group bool
}

// WhichKey renders a popup listing the bindings reachable from the current
// leader prefix.
type WhichKey struct {
	entries []WhichKeyEntry
	leader  string
	prefix  string
	width   int
	theme   *theme.Theme
}

func NewWhichKey(leader string) WhichKey {
	return WhichKey{leader: leader}
}

// SetTheme sets the color theme for the popup.
func (w *WhichKey) SetTheme(th *theme.Theme) { w.theme = th }

func (w *WhichKey) SetEntries(prefix string, entries []WhichKeyEntry) {
	w.prefix = prefix
	w.entries = entries
	sort.Slice(w.entries, func(i, j int) bool {
		if w.entries[i].Group != w.entries[j].Group {
			return !w.entries[i].Group
		}
		return w.entries[i].Key < w.entries[j].Key
	})
}

func (w *WhichKey) SetWidth(width int) {
	w.width = width
}

func (w *WhichKey) Clear() {
	w.entries = nil
	w.prefix = ""
}

func (w WhichKey) palette() *theme.Theme {
	if w.theme != nil {
		return w.theme
	}
	th := theme.DefaultTheme()
	return &th
}

func (w WhichKey) View() string {
	if len(w.entries) == 0 {
		return ""
	}
	th := w.palette()

	width := w.width
	if width == 0 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent).
		Padding(0, 1).
		Width(width - 4)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Accent)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Saved).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(th.Text)

	groupStyle := lipgloss.NewStyle().
		Foreground(th.Mark)

	var lines []string
	title := w.leader
	if w.prefix != "" {
		title = fmt.Sprintf("%s > %s", w.leader, w.prefix)
	}
	lines = append(lines, titleStyle.Render(title))

	// Two columns when there is room
	colWidth := (width - 4) / 2
	if colWidth < 20 {
		colWidth = width - 4
	}

	render := func(e WhichKeyEntry) string {
		label := labelStyle.Render(e.Label)
		if e.Group {
			label = groupStyle.Render(e.Label)
		}
		return fmt.Sprintf("%s %s", keyStyle.Render(e.Key), label)
	}

	for i := 0; i < len(w.entries); i += 2 {
		left := render(w.entries[i])

		if i+1 < len(w.entries) && colWidth < width-4 {
			right := render(w.entries[i+1])
			leftPad := colWidth - lipgloss.Width(left)
			if leftPad < 1 {
				leftPad = 1
			}
			lines = append(lines, left+strings.Repeat(" ", leftPad)+right)
		} else {
			lines = append(lines, left)
		}
	}

	content := strings.Join(lines, "\n")
	return borderStyle.Render(content)
}
