package cheers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cheers/internal/carousel"
	"cheers/internal/db"
	"cheers/internal/stats"
)

var testDrinks = []string{"beer", "wine", "baijiu", "whisky"}

func fixedNow() time.Time {
	return time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)
}

func newTestState(t *testing.T, kv db.KV) (*State, *carousel.ManualScheduler) {
	t.Helper()
	if kv == nil {
		kv = db.NewMemoryKV()
	}
	sched := &carousel.ManualScheduler{}
	logs := db.NewLogStore(kv, db.StorageKey)
	logs.SetClock(fixedNow)
	return NewState(carousel.New(testDrinks, sched), logs, fixedNow), sched
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) hook(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// failingKV reads fine and refuses every write.
type failingKV struct {
	db.KV
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestNewStateStartsOnToday(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.Equal(t, "2024-05-15", s.Today())
	assert.Equal(t, "2024-05-15", s.Date())
}

func TestCheersLogsPendingCupsOnSelectedDate(t *testing.T) {
	s, _ := newTestState(t, nil)
	rec := &recorder{}
	s.AddHook(rec.hook)

	s.Tap(0)
	s.Tap(0)
	sel, ok := s.Tap(2)
	require.True(t, ok)
	assert.True(t, sel.Moved)
	s.Tap(2)
	assert.Equal(t, 3, s.Cards.TotalPendingCups())

	res, ok := s.Cheers(t.Context())
	require.True(t, ok)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "2024-05-15", res.Date)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "beer", res.Entries[0].Type)
	assert.Equal(t, 800, res.Entries[0].Amount)
	assert.Equal(t, "baijiu", res.Entries[1].Type)
	assert.Equal(t, 400, res.Entries[1].Amount)

	assert.Equal(t, 0, s.Cards.TotalPendingCups())
	assert.Len(t, s.Logs.Logs(t.Context()), 2)
	assert.Contains(t, rec.kinds(), EventCheers)
	assert.Contains(t, rec.kinds(), EventFocus)
}

func TestCheersWithNothingPending(t *testing.T) {
	s, _ := newTestState(t, nil)
	rec := &recorder{}
	s.AddHook(rec.hook)

	_, ok := s.Cheers(t.Context())
	assert.False(t, ok)
	assert.Empty(t, s.Logs.Logs(t.Context()))
	assert.Empty(t, rec.kinds())
}

func TestSetDateResetsCards(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.Tap(0)
	s.Tap(0)

	require.NoError(t, s.SetDate("2024-05-01"))
	assert.Equal(t, "2024-05-01", s.Date())
	assert.Equal(t, 0, s.Cards.TotalPendingCups())

	s.Tap(0)
	res, ok := s.Cheers(t.Context())
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", res.Entries[0].Date)
}

func TestSetDateRejectsInvalid(t *testing.T) {
	s, _ := newTestState(t, nil)
	s.Tap(0)

	err := s.SetDate("May 1st")
	assert.ErrorIs(t, err, db.ErrInvalidDate)
	assert.Equal(t, "2024-05-15", s.Date())
	assert.Equal(t, 1, s.Cards.TotalPendingCups())
}

func TestCheersWarnsWhenSaveFails(t *testing.T) {
	s, _ := newTestState(t, failingKV{KV: db.NewMemoryKV()})
	s.Tap(0)

	res, ok := s.Cheers(t.Context())
	require.True(t, ok)
	assert.Contains(t, res.Warning, "disk full")
	assert.Empty(t, res.Entries)
	assert.Equal(t, 0, s.Cards.TotalPendingCups())
}

func TestDeleteLog(t *testing.T) {
	s, _ := newTestState(t, nil)
	rec := &recorder{}
	s.AddHook(rec.hook)

	removed, err := s.DeleteLog(t.Context(), db.IntID(12345))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, rec.kinds())

	entry, err := s.Logs.Add(t.Context(), "2024-05-15", "wine", 1)
	require.NoError(t, err)
	removed, err = s.DeleteLog(t.Context(), entry.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{EventDeleted}, rec.kinds())
	assert.Empty(t, s.Logs.Logs(t.Context()))
}

func TestGestureLongPressResetsCard(t *testing.T) {
	s, sched := newTestState(t, nil)
	s.Tap(1)
	s.Tap(1)
	s.Tap(1)
	require.Equal(t, 2, s.Cards.Cards()[1].PendingCups)

	require.NoError(t, s.Gesture("touchstart", 1, 100))
	sched.Advance(carousel.LongPressDelay)
	assert.Equal(t, 0, s.Cards.Cards()[1].PendingCups)

	require.NoError(t, s.Gesture("touchend", 1, 100))
	assert.Equal(t, 1, s.Cards.Focused())
}

func TestGestureSwipe(t *testing.T) {
	s, sched := newTestState(t, nil)
	rec := &recorder{}
	s.AddHook(rec.hook)

	require.NoError(t, s.Gesture("touchstart", 0, 300))
	require.NoError(t, s.Gesture("touchmove", 0, 0))
	require.NoError(t, s.Gesture("touchend", 0, 200))
	assert.Equal(t, 1, s.Cards.Focused())
	assert.Equal(t, 0, sched.Pending())

	require.NoError(t, s.Gesture("mousedown", 0, 100))
	require.NoError(t, s.Gesture("mouseup", 0, 180))
	assert.Equal(t, 0, s.Cards.Focused())
	assert.Equal(t, []string{EventFocus, EventFocus}, rec.kinds())

	assert.ErrorIs(t, s.Gesture("pinch", 0, 0), ErrUnknownGesture)
}

func TestSwipeWithinDeadZoneKeepsFocus(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.Equal(t, 0, s.Swipe(50))
	assert.Equal(t, 1, s.Swipe(50.5))
}

func TestViewRecomputesFromLog(t *testing.T) {
	s, _ := newTestState(t, nil)
	ctx := t.Context()
	_, err := s.Logs.Add(ctx, "2024-05-15", "beer", 2)
	require.NoError(t, err)
	_, err = s.Logs.Add(ctx, "2024-05-15", "wine", 1)
	require.NoError(t, err)
	_, err = s.Logs.Add(ctx, "2024-04-02", "whisky", 8)
	require.NoError(t, err)

	v := s.View(ctx)
	assert.Equal(t, "2024-05-15", v.Date)
	assert.Len(t, v.Cards, len(testDrinks))
	assert.False(t, v.Ready)

	assert.Equal(t, 3.0, v.TodayPanel.Cups)
	assert.Equal(t, "beer", v.TodayPanel.Type)
	assert.Equal(t, "bottle", v.TodayPanel.Unit)
	assert.Equal(t, 1200, v.TodayPanel.TotalVolume)
	assert.Equal(t, 6, v.TodayPanel.MetabolismHours)
	assert.Equal(t, stats.TierModerate, v.TodayPanel.Status.Tier)

	assert.Equal(t, time.May, v.Calendar.Month)
	assert.Equal(t, stats.CellModerate, v.Calendar.Days[14].Class)
	assert.Equal(t, stats.CellFuture, v.Calendar.Days[15].Class)
	assert.Equal(t, 1200, v.MonthVolume)

	assert.Equal(t, stats.Totals{Count: 3, TotalVolume: 4400}, v.Totals)
	require.Len(t, v.MonthlyTotals, 2)
	assert.Equal(t, "2024-04", v.MonthlyTotals[0].Month)

	require.Len(t, v.History, 3)
	assert.Equal(t, "2024-04-02", v.History[2].Date)
	assert.Equal(t, "8.0", v.History[2].Cups)
}

func TestCardChangesFireCupsEvents(t *testing.T) {
	s, _ := newTestState(t, nil)
	rec := &recorder{}
	s.AddHook(rec.hook)

	s.Tap(0)
	s.Cards.ResetAll()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 2)
	assert.Equal(t, EventCups, rec.events[0].Kind)
	assert.Equal(t, 1, rec.events[0].TotalCups)
	assert.True(t, rec.events[0].Ready)
	assert.Equal(t, 0, rec.events[1].TotalCups)
}
