package remote

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a job after a quiet period following the last Notify, and
// on a fixed interval once started. Stop cancels both and the context passed
// to the job.
type Scheduler struct {
	debounce time.Duration
	interval time.Duration
	job      func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
}

// NewScheduler returns an idle scheduler.
func NewScheduler(debounce, interval time.Duration, job func(ctx context.Context)) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{debounce: debounce, interval: interval, job: job, ctx: ctx, cancel: cancel}
}

// Notify restarts the quiet period. Bursts of calls run the job once.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	if s.ctx.Err() != nil {
		return
	}
	s.job(s.ctx)
}

// Start runs first, if not nil, and then the job on every interval tick, on
// one background goroutine. It reports false if already started or stopped.
// A non-positive interval disables the ticker.
func (s *Scheduler) Start(first func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return false
	}
	s.started = true
	go s.loop(first)
	return true
}

func (s *Scheduler) loop(first func(ctx context.Context)) {
	if first != nil {
		first(s.ctx)
	}
	if s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.job(s.ctx)
		}
	}
}

// Stop cancels the pending debounce, the ticker and any running job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
}
