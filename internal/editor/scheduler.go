package editor

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet period after the last keystroke
// before the buffered content is written out.
const DefaultDebounceDelay = 500 * time.Millisecond

// DispatchFunc receives the surviving write when the timer fires or a
// forced save bypasses the delay.
type DispatchFunc func(noteID, content string)

// Scheduler coalesces rapid edits into a single deferred write. At
// most one timer is pending at any instant; each Schedule call
// supersedes the previous payload, so only the last edit before a
// quiet period produces a write.
type Scheduler struct {
	mu       sync.Mutex
	delay    time.Duration
	dispatch DispatchFunc

	timer          *time.Timer
	gen            uint64
	pending        bool
	pendingID      string
	pendingContent string
}

func NewScheduler(delay time.Duration, dispatch DispatchFunc) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Scheduler{delay: delay, dispatch: dispatch}
}

// Schedule arms the timer with the given payload, superseding any
// pending one. A forced call cancels the timer and dispatches
// synchronously instead.
func (s *Scheduler) Schedule(noteID, content string, force bool) {
	s.mu.Lock()
	s.cancelLocked()

	if force {
		s.mu.Unlock()
		s.dispatch(noteID, content)
		return
	}

	s.pending = true
	s.pendingID = noteID
	s.pendingContent = content
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()
}

// Cancel discards any pending write without dispatching it.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// Pending reports whether a deferred write is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	// A timer that lost the Stop race fires with a stale generation.
	if gen != s.gen || !s.pending {
		s.mu.Unlock()
		return
	}
	noteID, content := s.pendingID, s.pendingContent
	// Pending state is cleared before dispatch begins, so a dispatch
	// failure cannot leave a phantom pending flag.
	s.cancelLocked()
	s.mu.Unlock()

	s.dispatch(noteID, content)
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
	s.pendingID = ""
	s.pendingContent = ""
}
