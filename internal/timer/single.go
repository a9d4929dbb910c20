// Package timer provides the single scheduled deadline primitive
// (libinput_timer_set/cancel): at most one deadline pending at a time,
// later calls overwriting earlier ones, firing handed back onto the
// caller's own loop instead of a stray goroutine so the FSM never
// needs internal locking.
package timer

import (
	"sync"
	"time"

	"touchpad/internal/tap"
)

// Single is a tap.Timer backed by time.AfterFunc. Fire deadlines are
// posted to C rather than invoked directly, so the receiver can
// serialise timeout handling onto the same goroutine that processes
// touch ticks.
type Single struct {
	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
	C     chan tap.Time
}

// New returns a Single whose fires are delivered on the returned
// channel. The channel has capacity 1: a timer that fires while the
// previous fire is still unread simply overwrites the pending value,
// since only the latest deadline matters.
func New() *Single {
	return &Single{C: make(chan tap.Time, 1)}
}

// Set arms (or re-arms) the single outstanding deadline, replacing
// whatever was previously scheduled: a later Set always wins.
func (s *Single) Set(deadline tap.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}

	now := time.Now()
	fireAt := time.UnixMicro(int64(deadline))
	d := fireAt.Sub(now)
	if d < 0 {
		d = 0
	}

	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		current := s.gen
		s.mu.Unlock()
		if current != gen {
			// Superseded by a later Set/Cancel; drop this fire.
			return
		}

		select {
		case s.C <- deadline:
		default:
			// Drain the stale pending value and replace it with this one.
			select {
			case <-s.C:
			default:
			}
			s.C <- deadline
		}
	})
}

// Cancel disarms the timer. Idempotent: cancelling an already-cancelled
// or never-armed timer is a no-op.
func (s *Single) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	select {
	case <-s.C:
	default:
	}
}
