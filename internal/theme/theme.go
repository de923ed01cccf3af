package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines a color palette used by all TUI panels.
// Panels hold a *Theme pointer so swapping the palette is visible on the
// next View() call.
type Theme struct {
	Name       string
	Accent     lipgloss.Color
	Subtle     lipgloss.Color
	Text       lipgloss.Color
	Dim        lipgloss.Color
	Border     lipgloss.Color
	StatusBg   lipgloss.Color
	StatusFg   lipgloss.Color
	Error      lipgloss.Color
	Saved      lipgloss.Color
	Unsaved    lipgloss.Color
	Mark       lipgloss.Color
	NormalMode lipgloss.Color
	BatchMode  lipgloss.Color
}

var palettes = map[string]Theme{
	"catppuccin": {
		Name:       "catppuccin",
		Accent:     lipgloss.Color("#cba6f7"),
		Subtle:     lipgloss.Color("#6c7086"),
		Text:       lipgloss.Color("#cdd6f4"),
		Dim:        lipgloss.Color("#585b70"),
		Border:     lipgloss.Color("#45475a"),
		StatusBg:   lipgloss.Color("#313244"),
		StatusFg:   lipgloss.Color("#cdd6f4"),
		Error:      lipgloss.Color("#f38ba8"),
		Saved:      lipgloss.Color("#a6e3a1"),
		Unsaved:    lipgloss.Color("#f9e2af"),
		Mark:       lipgloss.Color("#fab387"),
		NormalMode: lipgloss.Color("#89b4fa"),
		BatchMode:  lipgloss.Color("#f9e2af"),
	},
	"nord": {
		Name:       "nord",
		Accent:     lipgloss.Color("#88c0d0"),
		Subtle:     lipgloss.Color("#4c566a"),
		Text:       lipgloss.Color("#eceff4"),
		Dim:        lipgloss.Color("#434c5e"),
		Border:     lipgloss.Color("#3b4252"),
		StatusBg:   lipgloss.Color("#3b4252"),
		StatusFg:   lipgloss.Color("#eceff4"),
		Error:      lipgloss.Color("#bf616a"),
		Saved:      lipgloss.Color("#a3be8c"),
		Unsaved:    lipgloss.Color("#ebcb8b"),
		Mark:       lipgloss.Color("#d08770"),
		NormalMode: lipgloss.Color("#81a1c1"),
		BatchMode:  lipgloss.Color("#ebcb8b"),
	},
	"gruvbox": {
		Name:       "gruvbox",
		Accent:     lipgloss.Color("#d79921"),
		Subtle:     lipgloss.Color("#665c54"),
		Text:       lipgloss.Color("#ebdbb2"),
		Dim:        lipgloss.Color("#504945"),
		Border:     lipgloss.Color("#3c3836"),
		StatusBg:   lipgloss.Color("#3c3836"),
		StatusFg:   lipgloss.Color("#ebdbb2"),
		Error:      lipgloss.Color("#fb4934"),
		Saved:      lipgloss.Color("#b8bb26"),
		Unsaved:    lipgloss.Color("#fabd2f"),
		Mark:       lipgloss.Color("#fe8019"),
		NormalMode: lipgloss.Color("#83a598"),
		BatchMode:  lipgloss.Color("#fabd2f"),
	},
	"tokyo-night": {
		Name:       "tokyo-night",
		Accent:     lipgloss.Color("#7aa2f7"),
		Subtle:     lipgloss.Color("#565f89"),
		Text:       lipgloss.Color("#c0caf5"),
		Dim:        lipgloss.Color("#414868"),
		Border:     lipgloss.Color("#292e42"),
		StatusBg:   lipgloss.Color("#1f2335"),
		StatusFg:   lipgloss.Color("#c0caf5"),
		Error:      lipgloss.Color("#f7768e"),
		Saved:      lipgloss.Color("#9ece6a"),
		Unsaved:    lipgloss.Color("#e0af68"),
		Mark:       lipgloss.Color("#ff9e64"),
		NormalMode: lipgloss.Color("#7aa2f7"),
		BatchMode:  lipgloss.Color("#e0af68"),
	},
}

// DefaultTheme returns the default color palette (catppuccin-inspired).
func DefaultTheme() Theme {
	return palettes["catppuccin"]
}

// Named returns a palette by name, falling back to the default for unknown
// names and "default".
func Named(name string) Theme {
	if t, ok := palettes[name]; ok {
		return t
	}
	return DefaultTheme()
}
