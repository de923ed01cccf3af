package app

// Panes says which optional panels are shown and how wide the side
// columns would like to be.
type Panes struct {
	Tree      bool
	Info      bool
	Status    bool
	TreeWidth int
	InfoWidth int
}

// Layout holds the computed panel dimensions.
type Layout struct {
	TreeWidth    int
	EditorWidth  int
	InfoWidth    int
	Height       int // rows shared by the columns
	EditorHeight int // editor text area, below its title row
	StatusHeight int
	PromptWidth  int
}

const (
	promptMinWidth = 40
	promptMaxWidth = 100
)

// ComputeLayout splits width between the tree, the editor and the outline,
// and height between the columns and the status bar.
func ComputeLayout(width, height int, p Panes) Layout {
	// Terminals can report zero sizes mid-resize.
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	var l Layout
	if p.Status {
		l.StatusHeight = 1
	}
	l.Height = max(height-l.StatusHeight, 1)
	l.EditorHeight = max(l.Height-1, 1)

	remaining := width
	if p.Tree {
		l.TreeWidth = sideWidth(p.TreeWidth, remaining)
		remaining -= l.TreeWidth - 1 // columns share a border
	}
	if p.Info {
		l.InfoWidth = sideWidth(p.InfoWidth, remaining)
		remaining -= l.InfoWidth - 1
	}
	l.EditorWidth = max(remaining, 1)

	l.PromptWidth = min(max(l.EditorWidth*4/5, promptMinWidth), promptMaxWidth, l.EditorWidth-2)
	l.PromptWidth = max(l.PromptWidth, 1)
	return l
}

// sideWidth caps a side column at a third of what is left.
func sideWidth(want, remaining int) int {
	return min(want, remaining/3)
}
