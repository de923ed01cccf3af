package panel

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/scribe/internal/theme"
)

// Editor is the body editing pane.
type Editor struct {
	area     textarea.Model
	readOnly bool
	theme    *theme.Theme
}

func NewEditor() Editor {
	ta := textarea.New()
	ta.Placeholder = "Start writing..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = ""
	ta.Focus()
	return Editor{area: ta}
}

// SetTheme sets the color theme for the editor.
func (e *Editor) SetTheme(th *theme.Theme) {
	e.theme = th
	e.area.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(th.Dim)
	e.area.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(th.Dim)
	e.area.FocusedStyle.CursorLine = lipgloss.NewStyle()
	e.area.FocusedStyle.Text = lipgloss.NewStyle().Foreground(th.Text)
	e.area.BlurredStyle.Text = lipgloss.NewStyle().Foreground(th.Subtle)
}

// Value returns the current text.
func (e Editor) Value() string {
	return e.area.Value()
}

// SetValue replaces the text when it differs, keeping the cursor otherwise.
func (e *Editor) SetValue(s string) {
	if e.area.Value() == s {
		return
	}
	e.area.SetValue(s)
}

// SetReadOnly drops key input while a rewrite streams into the body.
func (e *Editor) SetReadOnly(ro bool) {
	e.readOnly = ro
}

func (e *Editor) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}

func (e *Editor) SetFocused(focused bool) {
	if focused {
		e.area.Focus()
	} else {
		e.area.Blur()
	}
}

func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok && e.readOnly {
		return e, nil
	}

	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return e, cmd
}

func (e Editor) View() string {
	return e.area.View()
}
