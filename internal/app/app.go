package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scribe/internal/autosave"
	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/panel"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/theme"
	"github.com/pfassina/scribe/internal/vault"
)

type focusedPanel int

const (
	focusEditor focusedPanel = iota
	focusTree
	focusInfo
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewFolder
	promptRenameFolder
	promptMoveNote
	promptMoveWorking
	promptRetitle
	promptDelete
	promptDeleteWorking
	promptBatchDelete
	promptFinderCreate
)

type promptAction struct {
	kind   promptKind
	entry  vault.Entry
	loc    note.Location
	folder string
	name   string
}

// eventBuffer bounds queued engine pings.
const eventBuffer = 64

type App struct {
	cfg    config.Config
	eng    *engine.Engine
	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg
	closed sync.Once

	editor   panel.Editor
	tree     panel.Tree
	info     panel.Info
	status   panel.Status
	whichKey panel.WhichKey
	finder   panel.Finder
	prompt   panel.Prompt
	theme    theme.Theme
	state    session.State

	width      int
	height     int
	focused    focusedPanel
	showTree   bool
	showInfo   bool
	showStatus bool

	// Leader key system
	bindings map[string]*Binding
	leader   LeaderState

	// pendingPrompt tracks which action the overlay prompt is serving.
	pendingPrompt promptAction
}

// New builds the UI over eng. The App owns eng from here on: Close
// releases it.
func New(eng *engine.Engine) *App {
	cfg := eng.Config
	state, err := eng.States.Load()
	if err != nil {
		eng.Log.Warn("load session state", "err", err)
		state = session.Default()
	}
	if _, err := eng.Listing.LoadCached(); err != nil {
		eng.Log.Warn("read listing cache", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:        cfg,
		eng:        eng,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan tea.Msg, eventBuffer),
		editor:     panel.NewEditor(),
		tree:       panel.NewTree(eng.Listing),
		info:       panel.NewInfo(),
		status:     panel.NewStatus(cfg.ServerURL),
		whichKey:   panel.NewWhichKey(cfg.LeaderKey),
		finder:     panel.NewFinder(),
		prompt:     panel.NewPrompt(),
		theme:      theme.Named(cfg.Theme),
		state:      state,
		focused:    focusEditor,
		showTree:   cfg.ShowTree && state.ShowTree,
		showInfo:   cfg.ShowInfo && state.ShowInfo,
		showStatus: cfg.ShowStatus,
	}
	a.initLeader()
	a.tree.Refresh()
	a.finder.SetSearchFunc(a.searchNotes)
	a.status.SetMode("NORMAL")

	a.tree.SetTheme(&a.theme)
	a.info.SetTheme(&a.theme)
	a.finder.SetTheme(&a.theme)
	a.prompt.SetTheme(&a.theme)
	a.status.SetTheme(&a.theme)
	a.whichKey.SetTheme(&a.theme)
	a.editor.SetTheme(&a.theme)

	eng.Session.OnChange(func(session.ChangeKind) { a.post(docChangedMsg{}) })
	eng.Autosave.OnStatus(func(autosave.Status) { a.post(saveStatusMsg{}) })
	eng.Listing.OnRefresh(func() { a.post(listingMsg{}) })

	return a
}

// post queues msg for the UI loop without blocking the engine.
func (a *App) post(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(a.events), a.start(), a.watchImports()}
	if a.cfg.LiveRefresh {
		cmds = append(cmds, a.watchRemote())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case docChangedMsg:
		a.syncDocument()
		return a, waitForEvent(a.events)

	case saveStatusMsg:
		a.status.SetSave(a.eng.Autosave.Status())
		if err := a.eng.Autosave.LastError(); err != nil {
			a.status.SetError("save failed: " + err.Error())
		}
		return a, waitForEvent(a.events)

	case listingMsg:
		a.tree.Refresh()
		a.syncSelection()
		return a, waitForEvent(a.events)

	case importedMsg:
		if msg.err != nil {
			a.status.SetError(fmt.Sprintf("import %s: %v", msg.path, msg.err))
		} else {
			a.status.SetActivity("imported " + msg.path)
		}
		return a, waitForEvent(a.events)

	case startedMsg:
		if msg.err != nil {
			a.status.SetError("offline: " + msg.err.Error())
		}
		a.eng.Log.Debug("started", "restored", msg.restored)
		a.tree.Refresh()
		return a, nil

	case watchStoppedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			a.eng.Log.Warn("watcher stopped", "watcher", msg.what, "err", msg.err)
			a.status.SetError(fmt.Sprintf("%s watch stopped: %v", msg.what, msg.err))
		}
		return a, nil

	case opDoneMsg:
		if msg.err != nil {
			a.status.SetError(msg.err.Error())
			return a, nil
		}
		a.status.ClearError()
		if msg.label != "" {
			a.status.SetActivity(msg.label)
		}
		return a, nil

	case rewriteDoneMsg:
		a.editor.SetReadOnly(false)
		a.syncDocument()
		if msg.err != nil {
			a.status.SetActivity("")
			a.status.SetError("rewrite: " + msg.err.Error())
			return a, nil
		}
		a.status.ClearError()
		a.status.SetActivity(rewriteSummary(msg.result.Streamed, msg.result.Tokens, msg.result.Skipped))
		return a, nil

	case leaderTimeoutMsg:
		a.handleLeaderTimeout()
		a.updateWhichKey()
		return a, nil

	case tea.WindowSizeMsg:
		// Some terminals send transient 0x0 sizes during live resizes; ignore them.
		if msg.Width <= 0 || msg.Height <= 0 {
			return a, nil
		}
		a.width = msg.Width
		a.height = msg.Height
		a.finder.SetSize(msg.Width, msg.Height)

		minW, minH := a.minWindowSize()
		if a.width < minW || a.height < minH {
			return a, tea.ClearScreen
		}

		a.updateLayout()
		return a, tea.ClearScreen

	case panel.TreeOpenMsg:
		a.setFocus(focusEditor)
		return a, a.openDocument(msg.Location)

	case panel.TreeNewNoteMsg:
		return a, a.newNote(msg.Folder)

	case panel.TreeNewFolderMsg:
		a.showPrompt(promptAction{kind: promptNewFolder}, "New folder", "")
		return a, nil

	case panel.TreeDeleteMsg:
		name := msg.Entry.Location.String()
		if msg.Entry.IsDir {
			name = "folder " + msg.Entry.Folder + " and its documents"
		}
		a.showConfirm(promptAction{kind: promptDelete, entry: msg.Entry}, "Delete "+name+"?")
		return a, nil

	case panel.TreeRenameFolderMsg:
		a.showPrompt(promptAction{kind: promptRenameFolder, folder: msg.Folder}, "Rename folder", msg.Folder)
		return a, nil

	case panel.TreeMoveNoteMsg:
		a.showPrompt(promptAction{kind: promptMoveNote, loc: msg.Location}, "Move to folder (/ for root)", msg.Location.Folder)
		return a, nil

	case panel.TreeToggleMarkMsg:
		a.toggleMark(msg.Entry)
		return a, nil

	case panel.TreeBatchDeleteMsg:
		return a, a.promptBatchDelete()

	case panel.FinderResultMsg:
		a.setFocus(focusEditor)
		return a, a.openDocument(msg.Location)

	case panel.FinderCreateRequestMsg:
		// Keep finder visible so cancel returns the user to the same query.
		a.showConfirm(promptAction{kind: promptFinderCreate, name: msg.Name}, fmt.Sprintf("Create note %q?", msg.Name))
		return a, nil

	case panel.FinderClosedMsg:
		a.setFocus(focusEditor)
		return a, nil

	case panel.PromptResultMsg:
		return a, a.handlePromptResult(msg.Value)

	case panel.PromptCancelledMsg:
		return a, a.handlePromptCancelled()
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		a.Close()
		return tea.Quit
	}

	var cmd tea.Cmd
	if a.prompt.Visible() {
		a.prompt, cmd = a.prompt.Update(msg)
		return cmd
	}
	if a.finder.Visible() {
		a.finder, cmd = a.finder.Update(msg)
		return cmd
	}

	switch key {
	case "ctrl+h":
		a.focusLeft()
		return nil
	case "ctrl+l":
		a.focusRight()
		return nil
	case "ctrl+s":
		return a.saveNow()
	}

	// Escape returns from side panels to editor (unless tree help is showing)
	if key == "esc" && !a.leader.active && (a.focused == focusTree || a.focused == focusInfo) {
		if a.focused != focusTree || !a.tree.ShowingHelp() {
			a.setFocus(focusEditor)
			return nil
		}
	}

	// Skip when tree help is showing so any key dismisses help first
	if a.focused != focusTree || !a.tree.ShowingHelp() {
		if consumed, cmd := a.handleLeaderKey(key); consumed {
			a.updateWhichKey()
			return cmd
		}
	}

	switch a.focused {
	case focusTree:
		a.tree, cmd = a.tree.Update(msg)
	case focusInfo:
		a.info, cmd = a.info.Update(msg)
	default:
		a.editor, cmd = a.editor.Update(msg)
		a.commitEditor()
	}
	return cmd
}

// commitEditor copies typed text into the working document, starting an
// untitled one when nothing is open.
func (a *App) commitEditor() {
	if a.eng.Session.Rewriting() {
		return
	}
	value := a.editor.Value()
	doc := a.eng.Session.Document()
	if value == doc.Body {
		return
	}
	if doc.Title == "" {
		a.eng.Mutations.New(note.RootFolder)
	}
	a.eng.Session.SetBody(value)
}

// syncDocument redraws everything derived from the working document.
func (a *App) syncDocument() {
	doc := a.eng.Session.Document()
	a.editor.SetValue(doc.Body)
	a.editor.SetReadOnly(a.eng.Session.Rewriting())
	if doc.Title == "" {
		a.info.Clear()
	} else {
		a.info.SetDocument(doc.Body)
	}
	orig, ok := a.eng.Session.Original()
	a.tree.SetCurrent(orig, ok)
	a.status.SetFile(a.fileLabel())
	a.syncSelection()
}

func (a *App) syncSelection() {
	batch := a.eng.Session.Mode() == session.ModeBatch
	sel := a.eng.Session.Selection()
	a.tree.SetSelection(sel, batch)
	a.status.SetMode(strings.ToUpper(a.eng.Session.Mode().String()))
	if batch {
		a.status.SetSelected(len(sel.Documents))
	} else {
		a.status.SetSelected(0)
	}
}

func (a *App) fileLabel() string {
	w := a.eng.Session.Working()
	if w.Title == "" {
		return ""
	}
	label := w.Location().Path()
	if w.New() {
		label += " [new]"
	}
	return label
}

func rewriteSummary(streamed bool, tokens, skipped int) string {
	s := "rewrite applied"
	if streamed {
		s = fmt.Sprintf("rewrite applied (%d tokens)", tokens)
	}
	if skipped > 0 {
		s += fmt.Sprintf(", %d bad lines skipped", skipped)
	}
	return s
}

func (a *App) showPrompt(act promptAction, title, value string) {
	a.pendingPrompt = act
	a.prompt.Show(title, value)
}

func (a *App) showConfirm(act promptAction, title string) {
	a.pendingPrompt = act
	a.prompt.ShowConfirm(title)
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	minW, minH := a.minWindowSize()
	if a.width < minW || a.height < minH {
		msg := fmt.Sprintf("Window too small (%dx%d)\nMinimum supported: %dx%d", a.width, a.height, minW, minH)
		style := lipgloss.NewStyle().
			Foreground(a.theme.Text).
			Padding(1, 2)
		box := style.Render(msg)

		base := strings.Repeat("\n", a.height)
		return overlayCenter(base, box, a.width, a.height)
	}

	layout := a.layout()
	editorView := a.editorTitle() + "\n" + a.editor.View()

	var columns []string
	if a.showTree {
		tw := layout.TreeWidth - 1
		if tw < 0 {
			tw = 0
		}
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(a.theme.Border).
			Width(tw).
			Height(layout.Height)
		columns = append(columns, borderStyle.Render(a.tree.View()))
	}

	editorStyle := lipgloss.NewStyle().
		Width(layout.EditorWidth).
		Height(layout.Height)
	columns = append(columns, editorStyle.Render(editorView))

	if a.showInfo {
		iw := layout.InfoWidth - 1
		if iw < 0 {
			iw = 0
		}
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(a.theme.Border).
			Width(iw).
			Height(layout.Height)
		columns = append(columns, borderStyle.Render(a.info.View()))
	}

	result := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	if a.showStatus {
		result += "\n" + a.status.View()
	}

	if a.leader.showHelp {
		if wk := a.whichKey.View(); wk != "" {
			result = overlayCenter(result, wk, a.width, a.height)
		}
	}
	if a.finder.Visible() {
		if fv := a.finder.View(); fv != "" {
			result = overlayCenter(result, fv, a.width, a.height)
		}
	}
	if a.prompt.Visible() {
		if pv := a.prompt.View(); pv != "" {
			result = overlayCenter(result, pv, a.width, a.height)
		}
	}

	return result
}

// Close stops the watchers, saves pending edits and the UI state, and
// releases the engine. It is safe to call more than once.
func (a *App) Close() {
	a.closed.Do(func() {
		a.cancel()
		if err := a.eng.Close(); err != nil {
			a.eng.Log.Error("close engine", "err", err)
		}

		state := a.state
		state.ShowTree = a.showTree
		state.ShowInfo = a.showInfo
		loc, _ := a.eng.Session.Original()
		state.Remember(loc)
		if err := a.eng.States.Save(state); err != nil {
			a.eng.Log.Error("save session state", "err", err)
		}
	})
}

func (a *App) minWindowSize() (minW, minH int) {
	return 60, 16
}

func (a *App) layout() Layout {
	return ComputeLayout(a.width, a.height, Panes{
		Tree:      a.showTree,
		Info:      a.showInfo,
		Status:    a.showStatus,
		TreeWidth: a.cfg.TreeWidth,
		InfoWidth: a.cfg.InfoWidth,
	})
}

func (a *App) updateLayout() {
	layout := a.layout()

	a.tree.SetSize(layout.TreeWidth, layout.Height)
	a.info.SetSize(layout.InfoWidth, layout.Height)
	a.status.SetWidth(a.width)
	a.whichKey.SetWidth(a.width / 2)
	a.prompt.SetSize(layout.PromptWidth, layout.Height)
	a.editor.SetSize(layout.EditorWidth, layout.EditorHeight)
}

func (a *App) editorTitle() string {
	title := "Scribe"
	if doc := a.eng.Session.Document(); doc.Title != "" {
		title = doc.Title
	}
	if a.eng.Session.Rewriting() {
		title += " (rewriting)"
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	if a.focused == focusEditor {
		style = style.Foreground(a.theme.Accent).Underline(true)
	} else {
		style = style.Foreground(a.theme.Dim)
	}

	return style.Render(title)
}

func (a *App) setFocus(target focusedPanel) {
	a.tree.SetFocused(target == focusTree)
	a.info.SetFocused(target == focusInfo)
	a.editor.SetFocused(target == focusEditor)
	a.focused = target
}

func (a *App) focusLeft() {
	switch a.focused {
	case focusEditor:
		if a.showTree {
			a.setFocus(focusTree)
		}
	case focusInfo:
		a.setFocus(focusEditor)
	}
}

func (a *App) focusRight() {
	switch a.focused {
	case focusEditor:
		if a.showInfo {
			a.setFocus(focusInfo)
		}
	case focusTree:
		a.setFocus(focusEditor)
	}
}

func (a *App) ToggleTree() {
	a.showTree = !a.showTree
	if !a.showTree && a.focused == focusTree {
		a.setFocus(focusEditor)
	}
	a.updateLayout()
}

func (a *App) ToggleInfo() {
	a.showInfo = !a.showInfo
	if !a.showInfo && a.focused == focusInfo {
		a.setFocus(focusEditor)
	}
	a.updateLayout()
}

func (a *App) ToggleStatus() {
	a.showStatus = !a.showStatus
	a.updateLayout()
}

// ToggleFinder opens the finder, or closes it when it is showing.
func (a *App) ToggleFinder() {
	if a.finder.Visible() {
		a.finder.Hide()
		return
	}
	a.finder.Show()
}

func overlayCenter(base, overlay string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := 0
	for _, line := range overlayLines {
		w := lipgloss.Width(line)
		if w > overlayWidth {
			overlayWidth = w
		}
	}

	startRow := (height - len(overlayLines)) / 2
	startCol := (width - overlayWidth) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	padToCol := func(s string, col int) string {
		if w := lipgloss.Width(s); w < col {
			s += strings.Repeat(" ", col-w)
		}
		return s
	}

	for i, overlayLine := range overlayLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}

		baseLine := padToCol(baseLines[row], startCol)

		// Cut by visible columns so ANSI sequences stay intact.
		left := ansi.Cut(baseLine, 0, startCol)
		right := ansi.Cut(baseLine, startCol+overlayWidth, width)

		baseLines[row] = ansi.Truncate(left+overlayLine+right, width, "")
	}

	return strings.Join(baseLines, "\n")
}
