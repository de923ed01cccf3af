package panel

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scribe/internal/markdown"
	"github.com/pfassina/scribe/internal/theme"
)

// Info is the outline panel: headings of the working document plus counts.
type Info struct {
	width    int
	height   int
	headings []markdown.Heading
	stats    markdown.Stats
	tags     []string
	offset   int
	focused  bool
	parser   *markdown.Parser
	theme    *theme.Theme
}

func NewInfo() Info {
	return Info{parser: markdown.NewParser()}
}

// SetTheme sets the color theme for the info panel.
func (i *Info) SetTheme(th *theme.Theme) { i.theme = th }

// SetDocument re-parses body for the outline.
func (i *Info) SetDocument(body string) {
	if i.parser == nil {
		i.parser = markdown.NewParser()
	}
	parsed := i.parser.Parse([]byte(body))
	i.headings = parsed.Headings
	i.stats = parsed.Stats
	i.tags = nil
	if parsed.Frontmatter != nil {
		i.tags = parsed.Frontmatter.Tags
	}
	if i.offset >= len(i.headings) {
		i.offset = 0
	}
}

func (i *Info) Clear() {
	i.headings = nil
	i.stats = markdown.Stats{}
	i.tags = nil
	i.offset = 0
}

func (i Info) Update(msg tea.Msg) (Info, tea.Cmd) {
	if !i.focused {
		return i, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "down":
			if i.offset < len(i.headings)-1 {
				i.offset++
			}
		case "k", "up":
			if i.offset > 0 {
				i.offset--
			}
		}
	}
	return i, nil
}

func (i Info) palette() *theme.Theme {
	if i.theme != nil {
		return i.theme
	}
	th := theme.DefaultTheme()
	return &th
}

func (i Info) View() string {
	if i.width == 0 || i.height == 0 {
		return ""
	}
	th := i.palette()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Dim).
		Padding(0, 1)
	if i.focused {
		titleStyle = titleStyle.Foreground(th.Accent).Underline(true)
	}
	dim := lipgloss.NewStyle().Foreground(th.Dim).Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Outline"))
	b.WriteByte('\n')

	viewHeight := i.height - 4 // title, blank, stats, padding
	if len(i.tags) > 0 {
		viewHeight--
	}
	if viewHeight < 0 {
		viewHeight = 0
	}

	if len(i.headings) == 0 {
		b.WriteString(dim.Render("No headings"))
		b.WriteByte('\n')
	} else {
		for j := i.offset; j < len(i.headings) && j-i.offset < viewHeight; j++ {
			line := ansi.Truncate(i.headings[j].Indented(), i.width-2, "...")
			b.WriteString(" ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(dim.Render(fmt.Sprintf("%d words, %d lines", i.stats.Words, i.stats.Lines)))
	if len(i.tags) > 0 {
		b.WriteByte('\n')
		b.WriteString(dim.Render(ansi.Truncate("#"+strings.Join(i.tags, " #"), i.width-2, "...")))
	}
	b.WriteByte('\n')

	return b.String()
}

func (i *Info) SetSize(width, height int) {
	i.width = width
	i.height = height
}

func (i *Info) SetFocused(focused bool) {
	i.focused = focused
}
