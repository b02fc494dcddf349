package carousel

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled action.
type Task interface {
	// Cancel stops the action if it has not run yet. Cancelling a task that
	// already ran or was already cancelled does nothing.
	Cancel()
}

// Scheduler runs fn once after delay unless the returned Task is cancelled.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Task
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) Task {
	return timerTask{timer: time.AfterFunc(delay, fn)}
}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Cancel() {
	t.timer.Stop()
}

// ManualScheduler is a Scheduler driven by an explicit virtual clock.
// Nothing runs until Advance moves the clock past a task's deadline.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTask
}

type manualTask struct {
	s        *ManualScheduler
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

func (t *manualTask) Cancel() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.canceled = true
}

func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{s: s, at: s.now + delay, seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the virtual clock forward by d and runs every task that
// became due, earliest deadline first.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due, rest []*manualTask
	for _, t := range s.pending {
		switch {
		case t.canceled:
		case t.at <= s.now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	for _, t := range due {
		// a task run earlier in this batch may have cancelled a later one
		s.mu.Lock()
		canceled := t.canceled
		s.mu.Unlock()
		if !canceled {
			t.fn()
		}
	}
}

// Pending reports how many live tasks are still waiting.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.canceled {
			n++
		}
	}
	return n
}
