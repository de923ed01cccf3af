package importer

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 200 * time.Millisecond

// Watcher imports files as they appear or change in a directory.
type Watcher struct {
	im       *Importer
	watcher  *fsnotify.Watcher
	dir      string
	debounce map[string]*time.Timer
	mu       sync.Mutex
	onImport func(path string, err error)
}

// NewWatcher watches dir. onImport, if set, is called after each attempt.
func NewWatcher(im *Importer, dir string, onImport func(path string, err error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	return &Watcher{
		im:       im,
		watcher:  fw,
		dir:      dir,
		debounce: make(map[string]*time.Timer),
		onImport: onImport,
	}, nil
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.im.log.Warn("watch error", "dir", w.dir, "err", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name
	if !Accepts(path) {
		return
	}
	// Removals are not propagated to the authority.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// Editors write in bursts; import once the file settles.
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		_, err := w.im.Files(ctx, []string{path})
		if err != nil {
			w.im.log.Warn("import failed", "file", path, "err", err)
		}
		if w.onImport != nil {
			w.onImport(path, err)
		}
	})
	w.mu.Unlock()
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.debounce {
		t.Stop()
		delete(w.debounce, path)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
