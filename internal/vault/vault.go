// Package vault holds the directory store: the client's view of which
// documents and folders exist on the authority.
package vault

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pfassina/scribe/internal/index"
	"github.com/pfassina/scribe/internal/note"
)

// Source is the remote directory listing.
type Source interface {
	ListDocuments(ctx context.Context) ([]note.Location, error)
	ListFolders(ctx context.Context) ([]string, error)
}

// Cache persists the last successful listing.
type Cache interface {
	ReplaceListing(docs []note.Location, folders []string, at time.Time) error
	Listing() (index.Snapshot, error)
}

// Entry is one row of the flattened folder tree.
type Entry struct {
	Name     string
	Folder   string
	Location note.Location
	IsDir    bool
	Depth    int
}

// Store is the in-memory directory listing. It is only ever replaced by a
// full re-fetch; mutations elsewhere call Refresh instead of patching it.
type Store struct {
	src   Source
	cache Cache
	log   *log.Logger

	mu        sync.RWMutex
	docs      []note.Location
	folders   []string
	fetchedAt time.Time
	listeners []func()
}

// New creates a store over src. cache may be nil.
func New(src Source, cache Cache, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{src: src, cache: cache, log: logger.WithPrefix("vault")}
}

// OnRefresh registers fn to run after every successful refresh.
func (s *Store) OnRefresh(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh re-queries the authority for documents and folders and replaces
// the listing. On failure the previous listing is kept.
func (s *Store) Refresh(ctx context.Context) error {
	var (
		docs    []note.Location
		folders []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.src.ListDocuments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		folders, err = s.src.ListFolders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh listing: %w", err)
	}

	sortLocations(docs)
	now := time.Now()

	s.mu.Lock()
	s.docs = docs
	s.folders = folders
	s.fetchedAt = now
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.ReplaceListing(docs, folders, now); err != nil {
			s.log.Warn("snapshot write failed", "err", err)
		}
	}
	s.log.Debug("listing refreshed", "documents", len(docs), "folders", len(folders))

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// LoadCached seeds the store from the snapshot cache. It reports false when
// there is no cache or the cache is empty. A store that has already been
// refreshed is left alone.
func (s *Store) LoadCached() (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	snap, err := s.cache.Listing()
	if err != nil {
		return false, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.Empty() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fetchedAt.IsZero() {
		return false, nil
	}
	s.docs = snap.Documents
	s.folders = snap.Folders
	return true, nil
}

// FetchedAt returns when the listing was last refreshed from the authority.
func (s *Store) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Documents returns every known document location.
func (s *Store) Documents() []note.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]note.Location(nil), s.docs...)
}

// Contains reports whether loc is in the listing.
func (s *Store) Contains(loc note.Location) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d == loc {
			return true
		}
	}
	return false
}

// Folders returns the exposed folder set: registered folders plus every
// folder referenced by a document, always including the root. The root comes
// first, the rest sorted.
func (s *Store) Folders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FolderNames(Group(s.docs, s.folders))
}

// Group partitions the current listing by folder.
func (s *Store) Group() Grouping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Group(s.docs, s.folders)
}

// Entries flattens the grouping into tree rows: each folder followed by its
// documents, then the root documents.
func (s *Store) Entries() []Entry {
	g := s.Group()
	var entries []Entry
	for _, folder := range FolderNames(g) {
		if folder == note.RootFolder {
			continue
		}
		entries = append(entries, Entry{Name: folder, Folder: folder, IsDir: true})
		for _, loc := range g[folder] {
			entries = append(entries, Entry{Name: loc.Title, Folder: folder, Location: loc, Depth: 1})
		}
	}
	for _, loc := range g[note.RootFolder] {
		entries = append(entries, Entry{Name: loc.Title, Location: loc})
	}
	return entries
}

func sortLocations(locs []note.Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Folder != locs[j].Folder {
			return locs[i].Folder < locs[j].Folder
		}
		return locs[i].Title < locs[j].Title
	})
}
