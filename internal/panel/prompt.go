package panel

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/scribe/internal/theme"
)

// PromptResultMsg is sent when the prompt is confirmed.
type PromptResultMsg struct {
	Value string
}

// PromptCancelledMsg is sent when the prompt is dismissed.
type PromptCancelledMsg struct{}

// Prompt is a centered overlay text input dialog. In confirm mode it asks
// for "yes" before reporting a result.
type Prompt struct {
	input   textinput.Model
	title   string
	errMsg  string
	confirm bool
	width   int
	height  int
	visible bool
	theme   *theme.Theme
}

func NewPrompt() Prompt {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	return Prompt{input: ti}
}

// SetTheme sets the color theme for the prompt.
func (p *Prompt) SetTheme(th *theme.Theme) { p.theme = th }

// Show opens the prompt with an initial value.
func (p *Prompt) Show(title, value string) {
	p.visible = true
	p.confirm = false
	p.title = title
	p.errMsg = ""
	p.input.Placeholder = ""
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
}

// ShowConfirm opens a yes/no confirmation.
func (p *Prompt) ShowConfirm(title string) {
	p.Show(title, "")
	p.confirm = true
	p.input.Placeholder = "type yes to confirm"
}

// SetError shows msg under the input and keeps the prompt open.
func (p *Prompt) SetError(msg string) {
	p.visible = true
	p.errMsg = msg
	p.input.Focus()
}

func (p *Prompt) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p Prompt) Visible() bool {
	return p.visible
}

// Confirmed reports whether value answers a confirmation prompt.
func Confirmed(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "yes" || v == "y"
}

func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(p.input.Value())
			if value == "" || (p.confirm && !Confirmed(value)) {
				p.visible = false
				return p, func() tea.Msg { return PromptCancelledMsg{} }
			}
			// The app hides the prompt once the value is accepted.
			return p, func() tea.Msg { return PromptResultMsg{Value: value} }

		case "esc", "ctrl+c":
			p.visible = false
			return p, func() tea.Msg { return PromptCancelledMsg{} }
		}
	}

	p.errMsg = ""
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) palette() *theme.Theme {
	if p.theme != nil {
		return p.theme
	}
	th := theme.DefaultTheme()
	return &th
}

func (p Prompt) View() string {
	if !p.visible {
		return ""
	}
	th := p.palette()

	width := p.width
	if width == 0 {
		width = 60
	}
	innerWidth := width - 6

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent).
		Padding(0, 1).
		Width(innerWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Accent)

	dimStyle := lipgloss.NewStyle().
		Foreground(th.Dim)

	var lines []string
	lines = append(lines, titleStyle.Render(p.title))
	lines = append(lines, p.input.View())
	if p.errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(th.Error).Render(p.errMsg))
	}
	lines = append(lines, "")
	lines = append(lines, dimStyle.Render("Enter to confirm, Esc to cancel"))

	content := strings.Join(lines, "\n")
	return borderStyle.Render(content)
}

func (p *Prompt) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = width/2 - 8
}
