// Package autosave debounces edits to the working document and saves it
// once the user pauses.
package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scribe/internal/session"
)

// DefaultDelay is the pause after the last edit before a save starts.
const DefaultDelay = 2 * time.Second

const saveTimeout = 30 * time.Second

// Status is the save indicator.
type Status int

const (
	StatusUnset Status = iota
	StatusUnsaved
	StatusSaving
	StatusSaved
)

func (s Status) String() string {
	switch s {
	case StatusUnsaved:
		return "unsaved"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	default:
		return ""
	}
}

// Saver persists the working document.
type Saver interface {
	Save(ctx context.Context) error
}

// Scheduler arms a timer on every edit and saves when it fires. At most one
// save runs at a time; an expiry during a save is deferred until it ends.
type Scheduler struct {
	saver Saver
	sess  *session.Session
	delay time.Duration
	log   *log.Logger

	mu        sync.Mutex
	status    Status
	timer     *time.Timer
	gen       uint64
	epoch     uint64
	inflight  bool
	pending   bool
	stopped   bool
	lastErr   error
	listeners []func(Status)
}

// New creates a Scheduler and subscribes it to sess.
func New(saver Saver, sess *session.Session, delay time.Duration, logger *log.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Scheduler{
		saver: saver,
		sess:  sess,
		delay: delay,
		log:   logger.WithPrefix("autosave"),
	}
	sess.OnChange(s.observe)
	return s
}

// OnStatus registers fn to be called on every status change.
func (s *Scheduler) OnStatus(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Status returns the current indicator.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastError returns the error of the most recent failed save, cleared by the
// next successful one.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Scheduler) setStatus(st Status) {
	s.mu.Lock()
	changed := s.status != st
	s.status = st
	listeners := append([]func(Status){}, s.listeners...)
	s.mu.Unlock()
	if changed {
		for _, fn := range listeners {
			fn(st)
		}
	}
}

func (s *Scheduler) observe(kind session.ChangeKind) {
	switch kind {
	case session.Edited:
		s.Touch()
	case session.Replaced:
		s.mu.Lock()
		s.cancelLocked()
		s.epoch++
		s.mu.Unlock()
		if _, ok := s.sess.Original(); ok {
			s.setStatus(StatusSaved)
		} else {
			s.setStatus(StatusUnset)
		}
	}
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Touch marks the document unsaved and restarts the debounce timer. An
// untitled document stays unset; it cannot be saved yet.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.cancelLocked()
	s.timer = time.AfterFunc(s.delay, s.fire)
	s.mu.Unlock()

	if strings.TrimSpace(s.sess.Document().Title) == "" {
		s.setStatus(StatusUnset)
		return
	}
	s.setStatus(StatusUnsaved)
}

// Flush runs a pending save now instead of waiting for the timer. It is a
// no-op when nothing is armed.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	armed := s.timer != nil && s.timer.Stop()
	s.timer = nil
	s.mu.Unlock()
	if armed {
		s.fire()
	}
}

// Stop cancels any pending timer. Later edits are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelLocked()
}

func (s *Scheduler) fire() {
	for {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		if s.inflight {
			s.pending = true
			s.mu.Unlock()
			return
		}
		if strings.TrimSpace(s.sess.Document().Title) == "" {
			s.mu.Unlock()
			return
		}
		s.inflight = true
		gen, epoch := s.gen, s.epoch
		s.mu.Unlock()

		s.setStatus(StatusSaving)

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.saver.Save(ctx)
		cancel()

		s.mu.Lock()
		s.inflight = false
		again := s.pending
		s.pending = false
		edited := s.gen != gen
		replaced := s.epoch != epoch
		if err != nil {
			s.lastErr = err
		} else {
			s.lastErr = nil
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Warn("autosave failed", "err", err)
		}
		switch {
		case replaced:
			// Another document was opened; its status is already set.
		case err != nil:
			s.setStatus(StatusUnsaved)
		case edited:
			// Edited while saving; the next expiry saves again.
			s.setStatus(StatusUnsaved)
		default:
			s.setStatus(StatusSaved)
		}

		if !again {
			return
		}
	}
}
