package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/scribe/internal/export"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/panel"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/vault"
)

// op runs fn off the UI goroutine and reports the result.
func (a *App) op(label string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{label: label, err: fn(ctx)}
	}
}

func (a *App) start() tea.Cmd {
	ctx, state := a.ctx, a.state
	return func() tea.Msg {
		err := a.eng.Start(ctx)
		return startedMsg{err: err, restored: a.eng.Restore(ctx, state)}
	}
}

func (a *App) watchRemote() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return watchStoppedMsg{what: "remote", err: a.eng.WatchRemote(ctx)}
	}
}

func (a *App) watchImports() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		err := a.eng.WatchImports(ctx, func(path string, err error) {
			a.post(importedMsg{path: path, err: err})
		})
		return watchStoppedMsg{what: "import", err: err}
	}
}

// saveNow runs any pending autosave immediately.
func (a *App) saveNow() tea.Cmd {
	return func() tea.Msg {
		a.eng.Autosave.Flush()
		return opDoneMsg{err: a.eng.Autosave.LastError()}
	}
}

func (a *App) refresh() tea.Cmd {
	return a.op("listing refreshed", a.eng.Listing.Refresh)
}

// openDocument saves the working document before replacing it.
func (a *App) openDocument(loc note.Location) tea.Cmd {
	return a.op("", func(ctx context.Context) error {
		a.eng.Autosave.Flush()
		return a.eng.Mutations.Load(ctx, loc)
	})
}

func (a *App) newNote(folder string) tea.Cmd {
	a.setFocus(focusEditor)
	return a.op("", func(context.Context) error {
		a.eng.Autosave.Flush()
		a.eng.Mutations.New(folder)
		return nil
	})
}

// createNote starts a document called title and persists it right away so
// it shows up in the listing.
func (a *App) createNote(title string) tea.Cmd {
	a.setFocus(focusEditor)
	return func() tea.Msg {
		a.eng.Autosave.Flush()
		a.eng.Mutations.New(note.RootFolder)
		a.eng.Session.SetTitle(title)
		a.eng.Autosave.Flush()
		return opDoneMsg{label: "created " + title, err: a.eng.Autosave.LastError()}
	}
}

func (a *App) startRewrite(mode remote.RewriteMode) tea.Cmd {
	if a.eng.Session.Document().Title == "" {
		a.status.SetError(note.ErrNoDocument.Error())
		return nil
	}
	a.editor.SetReadOnly(true)
	a.status.SetActivity(string(mode) + "...")
	ctx := a.ctx
	return func() tea.Msg {
		res, err := a.eng.Rewrite.Run(ctx, mode)
		return rewriteDoneMsg{result: res, err: err}
	}
}

func (a *App) undoRewrite() tea.Cmd {
	if !a.eng.Rewrite.Undo() {
		a.status.SetError("nothing to undo")
		return nil
	}
	a.status.SetActivity("rewrite undone")
	return nil
}

func (a *App) toggleBatch() tea.Cmd {
	mode := a.eng.Batch.ToggleMode()
	if mode == session.ModeBatch {
		a.setFocus(focusTree)
		if !a.showTree {
			a.ToggleTree()
		}
	}
	a.syncSelection()
	return nil
}

func (a *App) toggleMark(e vault.Entry) {
	if e.IsDir {
		a.eng.Batch.ToggleFolder(e.Folder)
	} else {
		a.eng.Batch.ToggleDocument(e.Location)
	}
	a.syncSelection()
}

func (a *App) exportSelection() tea.Cmd {
	if a.eng.Session.Selection().Empty() {
		a.status.SetError("nothing selected")
		return nil
	}
	a.status.SetActivity("exporting...")
	dir := filepath.Join(a.cfg.CacheDir, "exports")
	return a.op("", func(ctx context.Context) error {
		entries, err := a.eng.Batch.Export(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		name := filepath.Join(dir, export.DefaultName(now))
		if err := export.WriteFile(name, entries, now); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		a.post(opDoneMsg{label: fmt.Sprintf("exported %d to %s", len(entries), name)})
		return nil
	})
}

func (a *App) searchNotes(query string) []panel.FinderItem {
	return panel.MatchLocations(a.eng.Listing.Documents(), query)
}

// currentFolder is the folder new notes go to: the tree cursor's folder
// when the tree is focused, otherwise the working document's.
func (a *App) currentFolder() string {
	if a.focused == focusTree {
		if e, ok := a.tree.Selected(); ok {
			return e.Folder
		}
	}
	return a.eng.Session.Document().Folder
}

func (a *App) promptRetitle() tea.Cmd {
	doc := a.eng.Session.Document()
	if doc.Title == "" {
		a.status.SetError(note.ErrNoDocument.Error())
		return nil
	}
	a.showPrompt(promptAction{kind: promptRetitle}, "Title", doc.Title)
	return nil
}

func (a *App) promptMoveWorking() tea.Cmd {
	doc := a.eng.Session.Document()
	if doc.Title == "" {
		a.status.SetError(note.ErrNoDocument.Error())
		return nil
	}
	a.showPrompt(promptAction{kind: promptMoveWorking}, "Move to folder (/ for root)", doc.Folder)
	return nil
}

func (a *App) promptDeleteWorking() tea.Cmd {
	loc, ok := a.eng.Session.Original()
	if !ok {
		if a.eng.Session.Document().Title == "" {
			a.status.SetError(note.ErrNoDocument.Error())
			return nil
		}
		// Never saved: nothing to remove on the server.
		a.eng.Session.Clear()
		return nil
	}
	a.showConfirm(promptAction{kind: promptDeleteWorking, loc: loc}, fmt.Sprintf("Delete %s?", loc))
	return nil
}

func (a *App) promptBatchDelete() tea.Cmd {
	sel := a.eng.Session.Selection()
	if a.eng.Session.Mode() != session.ModeBatch || sel.Empty() {
		a.status.SetError("nothing selected")
		return nil
	}
	title := fmt.Sprintf("Delete %d documents", len(sel.Documents))
	if n := len(sel.Folders); n > 0 {
		title += fmt.Sprintf(" and %d folders", n)
	}
	a.showConfirm(promptAction{kind: promptBatchDelete}, title+"?")
	return nil
}

func (a *App) handlePromptResult(value string) tea.Cmd {
	act := a.pendingPrompt
	a.pendingPrompt = promptAction{}
	a.prompt.Hide()

	m := a.eng.Mutations
	switch act.kind {
	case promptNewFolder:
		return a.op("created folder "+value, func(ctx context.Context) error {
			return m.CreateFolder(ctx, value)
		})
	case promptRenameFolder:
		return a.op("renamed "+act.folder, func(ctx context.Context) error {
			return m.RenameFolder(ctx, act.folder, value)
		})
	case promptMoveNote:
		return a.op("moved "+act.loc.Title, func(ctx context.Context) error {
			return m.Relocate(ctx, act.loc, note.NormalizeFolder(value))
		})
	case promptMoveWorking:
		a.eng.Session.SetFolder(note.NormalizeFolder(value))
		return a.saveNow()
	case promptRetitle:
		a.eng.Session.SetTitle(value)
		return a.saveNow()
	case promptDelete:
		if act.entry.IsDir {
			return a.op("deleted folder "+act.entry.Folder, func(ctx context.Context) error {
				return m.DeleteFolder(ctx, act.entry.Folder)
			})
		}
		return a.op("deleted "+act.entry.Location.Title, func(ctx context.Context) error {
			return m.Delete(ctx, act.entry.Location)
		})
	case promptDeleteWorking:
		return a.op("deleted "+act.loc.Title, func(ctx context.Context) error {
			return m.Delete(ctx, act.loc)
		})
	case promptBatchDelete:
		return a.op("selection deleted", a.eng.Batch.Delete)
	case promptFinderCreate:
		a.finder.Hide()
		return a.createNote(act.name)
	}
	return nil
}

func (a *App) handlePromptCancelled() tea.Cmd {
	a.pendingPrompt = promptAction{}
	a.prompt.Hide()
	return nil
}
