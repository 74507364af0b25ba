package autosave

import (
	"sync"
	"time"

	"github.com/debemdeboas/session-editor/internal/model"
)

// DefaultDelay is the quiet period before an auto-save fires.
const DefaultDelay = 5 * time.Second

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Scheduler holds at most one pending invocation. Every Schedule replaces
// the pending payload, so a burst of edits ends in one call with the last one.
type Scheduler struct {
	delay     time.Duration
	run       func(model.FormState)
	afterFunc afterFunc

	mu    sync.Mutex
	timer timer
	// generation invalidates callbacks whose timer fired while Schedule or
	// Cancel was replacing it.
	generation uint64
}

func NewScheduler(delay time.Duration, run func(model.FormState)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		delay:     delay,
		run:       run,
		afterFunc: realAfterFunc,
	}
}

func (s *Scheduler) Schedule(payload model.FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.generation++
	gen := s.generation
	s.timer = s.afterFunc(s.delay, func() {
		s.fire(gen, payload)
	})
}

// Cancel drops the pending invocation, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

func (s *Scheduler) fire(gen uint64, payload model.FormState) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	// Outside the lock: run may take as long as a network round trip.
	s.run(payload)
}
