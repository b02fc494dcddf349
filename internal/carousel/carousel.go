// Package carousel tracks the drink-type cards: which one is focused, how
// many cups are pending on each, and how swipes and long-presses move them.
package carousel

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// SwipeThreshold is the dead zone in pixels; a swipe must exceed it.
	SwipeThreshold = 50
	// LongPressDelay is how long a card must be held before its cups reset.
	LongPressDelay = 800 * time.Millisecond
)

// Card is the transient per drink type counter.
type Card struct {
	Type        string `json:"type"`
	PendingCups int    `json:"pending_cups"`
}

// Pending is one non-zero card captured for confirmation.
type Pending struct {
	Type string `json:"type"`
	Cups int    `json:"cups"`
}

// Selection reports the outcome of SelectCard.
type Selection struct {
	Index int `json:"index"`
	// Moved is true when the call changed focus instead of adding a cup.
	Moved bool `json:"moved"`
	Cups  int  `json:"cups"`
}

type drag struct {
	active bool
	startX float64
}

// Engine holds the carousel state. All methods are safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	cards     []Card
	focused   int
	scheduler Scheduler
	press     Task
	pressSeq  uint64
	drag      drag
	onChange  func(totalCups int)
}

// New creates an engine with one card per drink type, focused on the first.
// A nil scheduler uses the runtime timer.
func New(types []string, scheduler Scheduler) *Engine {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	cards := make([]Card, len(types))
	for i, t := range types {
		cards[i] = Card{Type: t}
	}
	return &Engine{cards: cards, scheduler: scheduler}
}

// OnChange registers a listener called with the new total whenever pending
// cups change. It is called without the engine lock held.
func (e *Engine) OnChange(fn func(totalCups int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

func (e *Engine) notify(fn func(int), total int) {
	if fn != nil {
		fn(total)
	}
}

// Len returns the number of cards.
func (e *Engine) Len() int {
	return len(e.cards)
}

// Focused returns the focused card index.
func (e *Engine) Focused() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// Cards returns a copy of every card in definition order.
func (e *Engine) Cards() []Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Card, len(e.cards))
	copy(out, e.cards)
	return out
}

// SelectCard focuses the card at index, or adds a cup to it when it already
// has focus. An out of range index returns false and changes nothing.
func (e *Engine) SelectCard(index int) (Selection, bool) {
	e.mu.Lock()
	if index < 0 || index >= len(e.cards) {
		e.mu.Unlock()
		return Selection{}, false
	}
	if index != e.focused {
		e.focused = index
		sel := Selection{Index: index, Moved: true, Cups: e.cards[index].PendingCups}
		e.mu.Unlock()
		return sel, true
	}
	e.cards[index].PendingCups++
	sel := Selection{Index: index, Cups: e.cards[index].PendingCups}
	total, fn := e.totalLocked(), e.onChange
	e.mu.Unlock()

	e.notify(fn, total)
	return sel, true
}

// ApplySwipe moves focus one card for a swipe of distance (start x minus
// end x) and returns the focused index. Boundaries clamp.
func (e *Engine) ApplySwipe(distance float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.swipeLocked(distance)
	return e.focused
}

func (e *Engine) swipeLocked(distance float64) {
	if math.Abs(distance) <= SwipeThreshold {
		return
	}
	if distance > 0 && e.focused < len(e.cards)-1 {
		e.focused++
	} else if distance < 0 && e.focused > 0 {
		e.focused--
	}
}

// StartLongPress arms the reset of the card at index. An already armed
// press is cancelled first, even when index is out of range.
func (e *Engine) StartLongPress(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.armLocked(index)
}

func (e *Engine) armLocked(index int) {
	e.cancelLocked()
	if index < 0 || index >= len(e.cards) {
		return
	}
	e.pressSeq++
	seq := e.pressSeq
	e.press = e.scheduler.Schedule(LongPressDelay, func() {
		e.firePress(seq, index)
	})
}

func (e *Engine) firePress(seq uint64, index int) {
	e.mu.Lock()
	if e.press == nil || e.pressSeq != seq {
		e.mu.Unlock()
		return
	}
	e.press = nil
	e.cards[index].PendingCups = 0
	total, fn := e.totalLocked(), e.onChange
	e.mu.Unlock()

	log.Debug("Long press reset card", "index", index)
	e.notify(fn, total)
}

// CancelLongPress disarms a pending long-press. It is a no-op when nothing
// is armed.
func (e *Engine) CancelLongPress() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *Engine) cancelLocked() {
	if e.press != nil {
		e.press.Cancel()
		e.press = nil
	}
}

// LongPressArmed reports whether a long-press is waiting to fire.
func (e *Engine) LongPressArmed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.press != nil
}

// TotalPendingCups sums pending cups over every card.
func (e *Engine) TotalPendingCups() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalLocked()
}

func (e *Engine) totalLocked() int {
	total := 0
	for _, c := range e.cards {
		total += c.PendingCups
	}
	return total
}

// SnapshotNonZero returns every card with pending cups, in card order.
func (e *Engine) SnapshotNonZero() []Pending {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Pending
	for _, c := range e.cards {
		if c.PendingCups > 0 {
			out = append(out, Pending{Type: c.Type, Cups: c.PendingCups})
		}
	}
	return out
}

// Drain returns what SnapshotNonZero would and zeroes every card in the same
// step, so no tap can land between reading and resetting.
func (e *Engine) Drain() []Pending {
	e.mu.Lock()
	var out []Pending
	for i, c := range e.cards {
		if c.PendingCups > 0 {
			out = append(out, Pending{Type: c.Type, Cups: c.PendingCups})
			e.cards[i].PendingCups = 0
		}
	}
	fn := e.onChange
	e.mu.Unlock()

	if len(out) > 0 {
		e.notify(fn, 0)
	}
	return out
}

// ResetAll zeroes every card. Focus is kept.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	for i := range e.cards {
		e.cards[i].PendingCups = 0
	}
	fn := e.onChange
	e.mu.Unlock()

	e.notify(fn, 0)
}
