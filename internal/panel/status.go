package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/scribe/internal/autosave"
	"github.com/pfassina/scribe/internal/theme"
)

// Status is the status bar at the bottom.
type Status struct {
	width    int
	mode     string
	file     string
	server   string
	save     autosave.Status
	selected int
	activity string
	errMsg   string
	theme    *theme.Theme
}

func NewStatus(server string) Status {
	return Status{
		server: server,
		mode:   "NORMAL",
	}
}

// SetTheme sets the color theme for the status bar.
func (s *Status) SetTheme(th *theme.Theme) { s.theme = th }

func (s *Status) SetMode(mode string) {
	s.mode = mode
}

func (s *Status) SetFile(file string) {
	s.file = file
}

func (s *Status) SetWidth(width int) {
	s.width = width
}

// SetSave sets the save indicator.
func (s *Status) SetSave(st autosave.Status) {
	s.save = st
}

// SetSelected sets the batch selection count shown on the right.
func (s *Status) SetSelected(n int) {
	s.selected = n
}

// SetActivity shows a transient label such as "rewriting".
func (s *Status) SetActivity(label string) {
	s.activity = label
}

func (s *Status) SetError(msg string) {
	s.errMsg = msg
}

func (s *Status) ClearError() {
	s.errMsg = ""
}

// Error returns the message currently shown, if any.
func (s Status) Error() string {
	return s.errMsg
}

func (s Status) palette() *theme.Theme {
	if s.theme != nil {
		return s.theme
	}
	th := theme.DefaultTheme()
	return &th
}

func (s Status) View() string {
	if s.width == 0 {
		return ""
	}
	th := s.palette()

	bgStyle := lipgloss.NewStyle().Background(th.StatusBg)

	color := th.NormalMode
	if s.mode == "BATCH" {
		color = th.BatchMode
	}

	modeStyle := lipgloss.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("0")).
		Bold(true).
		Padding(0, 1)

	cell := lipgloss.NewStyle().
		Background(th.StatusBg).
		Foreground(th.StatusFg).
		Padding(0, 1)

	mode := modeStyle.Render(s.mode)

	var fileSection string
	if s.errMsg != "" {
		fileSection = cell.Foreground(th.Error).Render(s.errMsg)
	} else {
		file := s.file
		if file == "" {
			file = s.server
		}
		fileSection = cell.Render(file)
	}

	left := fmt.Sprintf("%s %s", mode, fileSection)

	var right []string
	if s.activity != "" {
		right = append(right, cell.Foreground(th.Accent).Render(s.activity))
	}
	if s.selected > 0 {
		right = append(right, cell.Foreground(th.Mark).Render(fmt.Sprintf("%d selected", s.selected)))
	}
	switch s.save {
	case autosave.StatusSaved:
		right = append(right, cell.Foreground(th.Saved).Render(s.save.String()))
	case autosave.StatusUnsaved, autosave.StatusSaving:
		right = append(right, cell.Foreground(th.Unsaved).Render(s.save.String()))
	}
	rightSection := strings.Join(right, "")

	padLen := s.width - lipgloss.Width(left) - lipgloss.Width(rightSection)
	if padLen < 0 {
		padLen = 0
	}
	padding := bgStyle.Render(strings.Repeat(" ", padLen))

	return left + padding + rightSection
}
