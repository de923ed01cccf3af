// Package engine wires the client-side components into one working session:
// the authority client, the listing cache, the directory store, the session
// context and the protocols that act on it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scribe/internal/autosave"
	"github.com/pfassina/scribe/internal/batch"
	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/importer"
	"github.com/pfassina/scribe/internal/index"
	"github.com/pfassina/scribe/internal/mutation"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/rewrite"
	"github.com/pfassina/scribe/internal/session"
	"github.com/pfassina/scribe/internal/vault"
)

// CacheFile is the listing cache inside the cache directory.
const CacheFile = "listing.db"

// Engine holds every component of one editing session.
type Engine struct {
	Config    config.Config
	Log       *log.Logger
	Client    *remote.Client
	Cache     *index.DB
	Listing   *vault.Store
	Session   *session.Session
	Mutations *mutation.Protocol
	Batch     *batch.Engine
	Rewrite   *rewrite.Pipeline
	Autosave  *autosave.Scheduler
	Importer  *importer.Importer
	States    *session.Store
}

// Open builds an engine from cfg. A listing cache that cannot be opened is
// logged and skipped; the engine then starts with an empty listing.
func Open(cfg config.Config, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}

	client, err := remote.New(remote.Options{
		BaseURL: cfg.ServerURL,
		Token:   cfg.Token,
		AI: remote.AIOptions{
			Mode:    cfg.AI.Mode,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			APIKey:  cfg.AI.APIKey,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Config:  cfg,
		Log:     logger,
		Client:  client,
		Session: session.New(),
		States:  session.NewStore(cfg.CacheDir),
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		logger.Warn("cache dir unavailable", "dir", cfg.CacheDir, "err", err)
	} else if db, err := index.Open(filepath.Join(cfg.CacheDir, CacheFile)); err != nil {
		logger.Warn("listing cache unavailable", "err", err)
	} else {
		e.Cache = db
	}

	var cache vault.Cache
	if e.Cache != nil {
		cache = e.Cache
	}
	e.Listing = vault.New(client, cache, logger)
	e.Mutations = mutation.New(client, e.Listing, e.Session, logger)
	e.Batch = batch.New(e.Session, e.Listing, client, logger)
	e.Rewrite = rewrite.New(client, e.Session, logger)
	e.Autosave = autosave.New(e.Mutations, e.Session, cfg.AutosaveDelay, logger)
	e.Importer = importer.New(client, e.Listing, logger)

	return e, nil
}

// Start loads the cached listing for an immediate tree, then refreshes it
// from the authority. A failed refresh is returned but leaves the cached
// listing in place.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.Listing.LoadCached(); err != nil {
		e.Log.Warn("read listing cache", "err", err)
	}
	if err := e.Listing.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}
	return nil
}

// Restore reopens the document recorded in state, if it still exists.
func (e *Engine) Restore(ctx context.Context, state session.State) bool {
	loc, ok := state.LastLocation()
	if !ok || !e.Listing.Contains(loc) {
		return false
	}
	if err := e.Mutations.Load(ctx, loc); err != nil {
		e.Log.Warn("restore last document", "doc", loc, "err", err)
		return false
	}
	return true
}

// WatchRemote follows the authority's change feed and refreshes the listing
// on every event until ctx is cancelled.
func (e *Engine) WatchRemote(ctx context.Context) error {
	return e.Client.Watch(ctx, func(ev remote.Event) {
		e.Log.Debug("remote change", "type", ev.Type)
		if err := e.Listing.Refresh(ctx); err != nil {
			e.Log.Warn("refresh after remote change", "err", err)
		}
	})
}

// WatchImports uploads files that appear in the configured import directory
// until ctx is cancelled. It returns immediately when none is configured.
func (e *Engine) WatchImports(ctx context.Context, onImport func(path string, err error)) error {
	if e.Config.ImportDir == "" {
		return nil
	}
	w, err := importer.NewWatcher(e.Importer, e.Config.ImportDir, onImport)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}

// Close flushes a pending autosave, stops the scheduler and closes the
// cache.
func (e *Engine) Close() error {
	e.Autosave.Flush()
	e.Autosave.Stop()

	var errs []error
	if err := e.Autosave.LastError(); err != nil {
		errs = append(errs, fmt.Errorf("final save: %w", err))
	}
	if e.Cache != nil {
		if err := e.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
