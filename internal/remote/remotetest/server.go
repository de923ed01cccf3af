// Package remotetest provides an in-memory note authority for tests.
package remotetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
)

// Call records one request received by the server.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// String renders the call as "METHOD /path?query".
func (c Call) String() string {
	if c.Query == "" {
		return c.Method + " " + c.Path
	}
	return c.Method + " " + c.Path + "?" + c.Query
}

type failure struct {
	status int
	msg    string
}

// Server is a fake authority backed by maps.
type Server struct {
	*httptest.Server

	// Rewrite, if set, handles POST /api/ai/{mode}.
	Rewrite http.HandlerFunc

	mu      sync.Mutex
	docs    map[note.Location]string
	folders map[string]bool
	calls   []Call
	fail    map[string]failure
	conns   map[*websocket.Conn]bool
}

// New starts a fake authority. It is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		docs:    make(map[note.Location]string),
		folders: make(map[string]bool),
		fail:    make(map[string]failure),
		conns:   make(map[*websocket.Conn]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes", s.listNotes)
	mux.HandleFunc("POST /api/notes", s.writeNote)
	mux.HandleFunc("DELETE /api/notes", s.deleteNote)
	mux.HandleFunc("GET /api/notes/content", s.getNote)
	mux.HandleFunc("POST /api/notes/move", s.moveNote)
	mux.HandleFunc("GET /api/folders", s.listFolders)
	mux.HandleFunc("POST /api/folders", s.createFolder)
	mux.HandleFunc("DELETE /api/folders", s.deleteFolder)
	mux.HandleFunc("POST /api/folders/rename", s.renameFolder)
	mux.HandleFunc("POST /api/ai/{mode}", s.rewrite)
	mux.HandleFunc("GET "+remote.WatchPath, s.watch)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Client returns a remote.Client pointed at the server.
func (s *Server) Client(t testing.TB) *remote.Client {
	c, err := remote.New(remote.Options{BaseURL: s.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("remote client: %v", err)
	}
	return c
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		f, failing := s.fail[r.Method+" "+r.URL.Path]
		if failing {
			delete(s.fail, r.Method+" "+r.URL.Path)
		}
		s.mu.Unlock()

		if failing {
			writeError(w, f.status, f.msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailNext makes the next request to "METHOD /path" fail with status.
func (s *Server) FailNext(method, path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method+" "+path] = failure{status: status, msg: msg}
}

// Calls returns every recorded request in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded requests for one method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Mutations returns recorded requests that are not GETs.
func (s *Server) Mutations() []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Put stores a document directly, bypassing the call log.
func (s *Server) Put(loc note.Location, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[loc] = body
	if loc.Folder != note.RootFolder {
		s.folders[loc.Folder] = true
	}
}

// AddFolder creates a folder directly, bypassing the call log.
func (s *Server) AddFolder(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[name] = true
}

// Body returns a stored document body.
func (s *Server) Body(loc note.Location) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[loc]
	return b, ok
}

// Locations returns all stored document locations, sorted by path.
func (s *Server) Locations() []note.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	locs := make([]note.Location, 0, len(s.docs))
	for loc := range s.docs {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Path() < locs[j].Path() })
	return locs
}

// FolderNames returns the stored folder names, sorted.
func (s *Server) FolderNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folderNamesLocked()
}

func (s *Server) folderNamesLocked() []string {
	names := make([]string, 0, len(s.folders))
	for name := range s.folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Broadcast pushes a change event to every connected watcher.
func (s *Server) Broadcast(ev remote.Event) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(ev); err != nil {
			s.mu.Lock()
			delete(s.conns, c)
			s.mu.Unlock()
			c.Close()
		}
	}
}

// Watchers reports how many change feed connections are open.
func (s *Server) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryLocation(r *http.Request) note.Location {
	return note.Location{
		Title:  r.URL.Query().Get("title"),
		Folder: r.URL.Query().Get("folder"),
	}
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Locations())
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	loc := queryLocation(r)
	body, ok := s.Body(loc)
	if !ok {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, note.Document{Title: loc.Title, Folder: loc.Folder, Body: body})
}

func (s *Server) writeNote(w http.ResponseWriter, r *http.Request) {
	var doc note.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid note")
		return
	}
	s.Put(doc.Location(), doc.Body)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	loc := queryLocation(r)
	s.mu.Lock()
	_, ok := s.docs[loc]
	delete(s.docs, loc)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) moveNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldTitle  string `json:"old_title"`
		OldFolder string `json:"old_folder"`
		NewTitle  string `json:"new_title"`
		NewFolder string `json:"new_folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	from := note.Location{Title: req.OldTitle, Folder: req.OldFolder}
	to := note.Location{Title: req.NewTitle, Folder: req.NewFolder}

	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.docs[from]
	if !ok {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if _, taken := s.docs[to]; taken && to != from {
		writeError(w, http.StatusConflict, "note already exists")
		return
	}
	delete(s.docs, from)
	s.docs[to] = body
	if to.Folder != note.RootFolder {
		s.folders[to.Folder] = true
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.FolderNames())
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid folder")
		return
	}
	s.AddFolder(req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) renameFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldName == "" || req.NewName == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.folders[req.OldName] {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	if s.folders[req.NewName] {
		writeError(w, http.StatusConflict, "folder already exists")
		return
	}
	delete(s.folders, req.OldName)
	s.folders[req.NewName] = true
	for loc, body := range s.docs {
		if loc.Folder == req.OldName {
			delete(s.docs, loc)
			s.docs[note.Location{Title: loc.Title, Folder: req.NewName}] = body
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) deleteFolder(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.folders[name] {
		writeError(w, http.StatusNotFound, "folder not found")
		return
	}
	delete(s.folders, name)
	for loc := range s.docs {
		if loc.Folder == name {
			delete(s.docs, loc)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request) {
	if s.Rewrite == nil {
		writeError(w, http.StatusServiceUnavailable, "rewrite not configured")
		return
	}
	s.Rewrite(w, r)
}

var upgrader = websocket.Upgrader{}

func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()

	// Drain until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// StreamHandler returns a rewrite handler that writes chunks verbatim as an
// event stream, flushing after each one.
func StreamHandler(chunks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			_, _ = io.WriteString(w, c)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// JSONHandler returns a rewrite handler that answers with a single JSON body.
func JSONHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	}
}
