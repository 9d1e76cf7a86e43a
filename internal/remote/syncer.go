package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/XBigRoad/banquet-master/internal/config"
)

// Document is the local side of the sync: the current document and a way to
// replace it wholesale.
type Document interface {
	Document() ([]byte, error)
	Replace(ctx context.Context, raw []byte) error
}

// Syncer mirrors the local document to the remote store. Pushes and pulls
// share one in-flight flag; remote conflicts resolve as last writer wins.
type Syncer struct {
	client *Client
	doc    Document
	sched  *Scheduler
	now    func() time.Time

	inFlight atomic.Bool

	mu     sync.RWMutex
	status Status
}

// NewSyncer wires doc to the remote store described by cfg. With no URL the
// syncer stays offline and every operation returns ErrNotConfigured.
func NewSyncer(cfg config.SyncConfig, doc Document) *Syncer {
	s := &Syncer{doc: doc, now: time.Now}
	if cfg.Enabled() {
		s.client = NewClient(cfg.URL, cfg.APIKey, cfg.Timeout)
	}
	s.status = Status{Enabled: s.client != nil, State: Offline, Message: MsgOffline}
	s.sched = NewScheduler(cfg.Debounce, cfg.Interval, s.background)
	return s
}

func (s *Syncer) background(ctx context.Context) {
	// Failures are already logged and reflected in the status.
	_ = s.PushNow(ctx)
}

// Status returns the current indicator.
func (s *Syncer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Syncer) setStatus(state State, msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state
	s.status.Message = msg
	s.status.At = s.now()
	if err != nil {
		s.status.LastError = err.Error()
	} else if state == Online {
		s.status.LastError = ""
	}
}

func (s *Syncer) acquire() error {
	if s.client == nil {
		return ErrNotConfigured
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	return nil
}

// PushNow uploads the whole local document.
func (s *Syncer) PushNow(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.inFlight.Store(false)

	s.setStatus(Syncing, MsgUploading, nil)
	body, err := s.doc.Document()
	if err == nil {
		err = s.client.Push(ctx, body)
	}
	if err != nil {
		log.Printf("sync push failed: %v", err)
		s.setStatus(Offline, MsgOffline, err)
		return fmt.Errorf("push: %w", err)
	}
	s.setStatus(Online, MsgOnline, nil)
	return nil
}

// PullNow downloads the remote document and, when it carries a categories
// member, replaces the local one. It reports whether a replacement happened.
func (s *Syncer) PullNow(ctx context.Context) (bool, error) {
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.inFlight.Store(false)

	s.setStatus(Syncing, MsgDownloading, nil)
	record, err := s.client.Pull(ctx)
	replaced := false
	if err == nil && hasCategories(record) {
		err = s.doc.Replace(ctx, record)
		replaced = err == nil
	}
	if err != nil {
		log.Printf("sync pull failed: %v", err)
		s.setStatus(Offline, MsgOffline, err)
		return false, fmt.Errorf("pull: %w", err)
	}
	s.setStatus(Online, MsgOnline, nil)
	return replaced, nil
}

func hasCategories(record json.RawMessage) bool {
	if len(record) == 0 {
		return false
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(record, &doc); err != nil {
		return false
	}
	c, ok := doc["categories"]
	return ok && string(c) != "null"
}

// Notify schedules a debounced push. It is a no-op when sync is disabled.
func (s *Syncer) Notify() {
	if s.client == nil {
		return
	}
	s.sched.Notify()
}

// Start pulls once and then pushes periodically, in the background.
// Later calls do nothing.
func (s *Syncer) Start() {
	if s.client == nil {
		return
	}
	s.sched.Start(func(ctx context.Context) { _, _ = s.PullNow(ctx) })
}

// Stop cancels pending and periodic pushes.
func (s *Syncer) Stop() { s.sched.Stop() }
