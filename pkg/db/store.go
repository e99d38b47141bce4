package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dibba-app/dibba-backend/pkg/db/models"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	"go.uber.org/multierr"
)

// CheckpointObserver receives the outcome of every checkpoint.
type CheckpointObserver interface {
	ObserveCheckpoint(duration time.Duration, err error)
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store holds the whole document in memory behind one RWMutex and writes it
// back to a single JSON file after every successful transaction.
type Store struct {
	mu       sync.RWMutex
	path     string
	doc      *models.Document
	closed   bool
	logg     *logger.Logger
	observer CheckpointObserver
}

// Open loads the document at path, creating an empty one when the file does
// not exist yet.
func Open(ctx context.Context, path string, logg *logger.Logger, observer CheckpointObserver) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	s := &Store{
		path:     path,
		logg:     logg,
		observer: observer,
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc := &models.Document{}
		doc.Normalize()
		if err := s.checkpoint(doc); err != nil {
			return nil, fmt.Errorf("initializing store: %w", err)
		}
		s.doc = doc
		logg.Info(ctx, "store initialized with empty document")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading store: %w", err)
	}

	doc := &models.Document{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, fmt.Errorf("decoding store: %w", err)
		}
	}
	doc.Normalize()
	if err := Validate(doc); err != nil {
		return nil, fmt.Errorf("validating store: %w", err)
	}
	s.doc = doc

	ctx = logg.WithFields(ctx, map[string]any{
		"users":  len(doc.Users),
		"meals":  len(doc.Meals),
		"orders": len(doc.Orders),
	})
	logg.Info(ctx, "store loaded")
	return s, nil
}

// Read runs fn under the shared lock. fn must not retain or mutate the document.
func (s *Store) Read(ctx context.Context, fn func(doc *models.Document) error) error {
	if fn == nil {
		return ErrNilTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(s.doc)
}

// WithTx runs fn against a private copy of the document while holding the
// exclusive lock. The copy replaces the live document only after it has been
// written to disk; an fn error or a failed write leaves both untouched.
func (s *Store) WithTx(ctx context.Context, fn func(doc *models.Document) error) error {
	if fn == nil {
		return ErrNilTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	working, err := clone(s.doc)
	if err != nil {
		return fmt.Errorf("copying document: %w", err)
	}
	if err := fn(working); err != nil {
		return err
	}
	working.Normalize()
	if err := s.checkpoint(working); err != nil {
		s.logg.Error(ctx, "store.checkpoint_failed", err)
		return fmt.Errorf("checkpoint: %w", err)
	}
	s.doc = working
	return nil
}

// Ping reports whether the store is open and its directory is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("store directory: %w", err)
	}
	return nil
}

// Close marks the store closed. Every committed transaction is already on disk.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) checkpoint(doc *models.Document) (err error) {
	started := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveCheckpoint(time.Since(started), err)
		}
	}()

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	_, writeErr := tmp.Write(payload)
	closeErr := tmp.Close()
	if err = multierr.Append(writeErr, closeErr); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

func clone(doc *models.Document) (*models.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := &models.Document{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	out.Normalize()
	return out, nil
}
