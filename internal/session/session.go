package session

import (
	"sync"

	"github.com/pfassina/scribe/internal/note"
)

// Mode is the interaction mode of the directory view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeBatch
)

func (m Mode) String() string {
	if m == ModeBatch {
		return "batch"
	}
	return "normal"
}

// ChangeKind tells listeners what happened to the working document.
type ChangeKind int

const (
	// Edited: the title, folder or body changed and has not been saved.
	Edited ChangeKind = iota
	// Replaced: another document was loaded, a new one started, or the
	// working document was cleared.
	Replaced
	// Relocated: the persisted location changed on the authority (a move or
	// a folder rename) without an edit.
	Relocated
)

// Working is a copy of the working document and its persisted location.
type Working struct {
	note.Document
	Original *note.Location
}

// New reports whether the document has never been persisted.
func (w Working) New() bool {
	return w.Original == nil
}

// Moved reports whether saving would relocate the document.
func (w Working) Moved() bool {
	return w.Original != nil && *w.Original != w.Location()
}

// Session is the explicit context shared by the engine components: the
// working document, the interaction mode, the batch selection, the undo
// checkpoint and the rewrite flag. Each method is one atomic update.
type Session struct {
	mu         sync.Mutex
	doc        note.Document
	original   *note.Location
	mode       Mode
	sel        Selection
	checkpoint *string
	rewriting  bool
	listeners  []func(ChangeKind)
}

// New returns an empty session in normal mode.
func New() *Session {
	return &Session{sel: newSelection()}
}

// OnChange registers fn to be called after each change to the working
// document. fn runs outside the session lock.
func (s *Session) OnChange(fn func(ChangeKind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(kind ChangeKind) {
	s.mu.Lock()
	listeners := append([]func(ChangeKind){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(kind)
	}
}

// Working returns a copy of the working document.
func (s *Session) Working() Working {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := Working{Document: s.doc}
	if s.original != nil {
		orig := *s.original
		w.Original = &orig
	}
	return w
}

// Document returns the working document.
func (s *Session) Document() note.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Original returns the persisted location, if any.
func (s *Session) Original() (note.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return note.Location{}, false
	}
	return *s.original, true
}

func (s *Session) edit(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify(Edited)
}

// SetTitle changes the working title.
func (s *Session) SetTitle(title string) {
	s.edit(func() { s.doc.Title = title })
}

// SetFolder changes the working folder.
func (s *Session) SetFolder(folder string) {
	s.edit(func() { s.doc.Folder = folder })
}

// SetBody replaces the working body.
func (s *Session) SetBody(body string) {
	s.edit(func() { s.doc.Body = body })
}

// AppendBody appends a fragment to the working body.
func (s *Session) AppendBody(fragment string) {
	s.edit(func() { s.doc.Body += fragment })
}

// Load makes doc the working document, persisted at its own location.
// The undo checkpoint is dropped.
func (s *Session) Load(doc note.Document) {
	s.mu.Lock()
	s.doc = doc
	loc := doc.Location()
	s.original = &loc
	s.checkpoint = nil
	s.mu.Unlock()
	s.notify(Replaced)
}

// Start begins a new, unpersisted document.
func (s *Session) Start(title, folder string) {
	s.mu.Lock()
	s.doc = note.Document{Title: title, Folder: folder}
	s.original = nil
	s.checkpoint = nil
	s.mu.Unlock()
	s.notify(Replaced)
}

// Clear empties the working document.
func (s *Session) Clear() {
	s.Start("", note.RootFolder)
}

// MarkPersisted records loc as the document's location on the authority.
func (s *Session) MarkPersisted(loc note.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = &loc
}

// Relocate records that the authority moved the persisted document from
// from to to. Working title and folder follow only where they still match
// from, so unsaved edits to either survive.
func (s *Session) Relocate(from, to note.Location) {
	s.mu.Lock()
	if s.doc.Title == from.Title {
		s.doc.Title = to.Title
	}
	if s.doc.Folder == from.Folder {
		s.doc.Folder = to.Folder
	}
	s.original = &to
	s.mu.Unlock()
	s.notify(Relocated)
}

// RenameFolder rewrites references to oldName in the working folder and in
// the persisted location. It reports whether anything changed.
func (s *Session) RenameFolder(oldName, newName string) bool {
	s.mu.Lock()
	changed := false
	if s.doc.Folder == oldName {
		s.doc.Folder = newName
		changed = true
	}
	if s.original != nil && s.original.Folder == oldName {
		loc := note.Location{Title: s.original.Title, Folder: newName}
		s.original = &loc
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.notify(Relocated)
	}
	return changed
}

// Checkpoint returns the pre-rewrite body, if one is held.
func (s *Session) Checkpoint() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkpoint == nil {
		return "", false
	}
	return *s.checkpoint, true
}

// TakeCheckpoint snapshots the current body, replacing any older snapshot.
func (s *Session) TakeCheckpoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := s.doc.Body
	s.checkpoint = &body
}

// ClearCheckpoint drops the undo snapshot.
func (s *Session) ClearCheckpoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoint = nil
}

// Undo restores the checkpoint into the body and drops it. It reports false
// when there was nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	if s.checkpoint == nil {
		s.mu.Unlock()
		return false
	}
	s.doc.Body = *s.checkpoint
	s.checkpoint = nil
	s.mu.Unlock()
	s.notify(Edited)
	return true
}

// BeginRewrite marks a rewrite as streaming.
func (s *Session) BeginRewrite() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rewriting {
		return note.ErrRewriteInProgress
	}
	s.rewriting = true
	return nil
}

// EndRewrite clears the rewrite flag.
func (s *Session) EndRewrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewriting = false
}

// Rewriting reports whether a rewrite is streaming.
func (s *Session) Rewriting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewriting
}

// Mode returns the interaction mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches modes. Any switch clears the selection.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	s.sel = newSelection()
}

// Selection returns a copy of the batch selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.clone()
}

// UpdateSelection applies fn to the live selection under the session lock.
func (s *Session) UpdateSelection(fn func(*Selection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.sel)
}
