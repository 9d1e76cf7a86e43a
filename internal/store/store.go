// Package store owns the planner document. Every change goes through
// Store.Mutate, which persists the whole document locally and then notifies
// save listeners such as the remote sync scheduler.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/XBigRoad/banquet-master/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNotLoaded   = errors.New("store not loaded")
	ErrImportParse = errors.New("document could not be parsed")
)

// Blobs is the local persistence the store writes through to.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Command changes the document in place. Returning an error discards the
// change.
type Command func(*models.AppState) error

// Store holds the current document.
type Store struct {
	mu     sync.RWMutex
	blobs  Blobs
	now    func() time.Time
	state  models.AppState
	loaded bool
	onSave []func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store on top of blobs. Call Load before using it.
func New(blobs Blobs, opts ...Option) *Store {
	s := &Store{blobs: blobs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// OnSave registers a listener called after every successful save.
func (s *Store) OnSave(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = append(s.onSave, f)
}

// Load reads the persisted document. An unreadable current document is
// replaced by a migrated legacy document or by the defaults; that recovery is
// logged, not returned. The normalised result is written back, so a second
// Load returns the same document.
func (s *Store) Load(ctx context.Context) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	raw, found, err := s.blobs.Get(ctx, CurrentKey)
	if err != nil {
		return models.AppState{}, err
	}

	st, ok := s.readCurrent(raw, found)
	if !ok {
		st, ok = s.readLegacy(ctx, now)
	}
	if !ok {
		st = models.Defaults(now)
	}
	Normalize(&st, now)

	doc, err := json.Marshal(st)
	if err != nil {
		return models.AppState{}, fmt.Errorf("encode state: %w", err)
	}
	if !bytes.Equal(doc, raw) {
		if err := s.blobs.Put(ctx, CurrentKey, doc); err != nil {
			return models.AppState{}, err
		}
	}
	s.state = st
	s.loaded = true
	return st.Clone(), nil
}

func (s *Store) readCurrent(raw []byte, found bool) (models.AppState, bool) {
	if !found {
		return models.AppState{}, false
	}
	doc, err := decodeDocument(raw)
	if err == nil {
		st, derr := decodeState(doc)
		if derr == nil {
			return st, true
		}
		err = derr
	}
	log.Printf("store: local document %s unreadable, recovering: %v", CurrentKey, err)
	return models.AppState{}, false
}

func (s *Store) readLegacy(ctx context.Context, now time.Time) (models.AppState, bool) {
	for _, lk := range legacyKeys {
		raw, found, err := s.blobs.Get(ctx, lk.Key)
		if err != nil || !found {
			continue
		}
		st, err := migrateLegacy(raw, lk.Version, now)
		if err != nil {
			log.Printf("store: legacy document %s unreadable: %v", lk.Key, err)
			continue
		}
		log.Printf("store: migrated %s (version %s) to %s", lk.Key, lk.Version, models.SchemaVersion)
		return st, true
	}
	return models.AppState{}, false
}

func migrateLegacy(raw []byte, version string, now time.Time) (models.AppState, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.AppState{}, err
	}
	if doc == nil {
		return models.AppState{}, errors.New("document is null")
	}
	defaults, err := defaultsDocument(now)
	if err != nil {
		return models.AppState{}, err
	}
	doc, err = Migrate(doc, version, defaults)
	if err != nil {
		return models.AppState{}, err
	}
	return decodeState(doc)
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Mutate applies cmd to a copy of the document, persists the copy and makes
// it current. The document is unchanged when cmd or the write fails.
func (s *Store) Mutate(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	next := s.state.Clone()
	if err := cmd(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	return s.commitLocked(ctx, next)
}

// commitLocked persists next, swaps it in and releases the lock before
// notifying listeners.
func (s *Store) commitLocked(ctx context.Context, next models.AppState) error {
	doc, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.blobs.Put(ctx, CurrentKey, doc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	listeners := append([]func(){}, s.onSave...)
	s.mu.Unlock()

	for _, f := range listeners {
		f()
	}
	return nil
}

// Document returns the current document as compact JSON.
func (s *Store) Document() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.state)
}

// Export returns the current document as indented JSON.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.state, "", "  ")
}

// Replace swaps in a whole document pulled from the remote store. raw must
// have the planner shape; otherwise the error wraps ErrImportParse and
// nothing changes. The signed-in user is local to this installation and
// survives the swap.
func (s *Store) Replace(ctx context.Context, raw []byte) error {
	return s.replace(ctx, raw, true)
}

// Import replaces the document with an exported one, signed-in user
// included.
func (s *Store) Import(ctx context.Context, raw []byte) error {
	return s.replace(ctx, raw, false)
}

func (s *Store) replace(ctx context.Context, raw []byte, keepCurrentUser bool) error {
	doc, err := decodeDocument(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportParse, err)
	}
	st, err := decodeState(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportParse, err)
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if keepCurrentUser {
		st.CurrentUser = nil
		if cu := s.state.CurrentUser; cu != nil {
			u := *cu
			st.CurrentUser = &u
		}
	}
	Normalize(&st, s.now())
	return s.commitLocked(ctx, st)
}

// Reset restores the factory document. Legacy documents are dropped too, so
// a later unreadable current document cannot bring pre-reset data back.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	for _, lk := range legacyKeys {
		if err := s.blobs.Delete(ctx, lk.Key); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("drop %s: %w", lk.Key, err)
		}
	}
	return s.commitLocked(ctx, models.Defaults(s.now()))
}
