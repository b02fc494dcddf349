package cheers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"cheers/internal/carousel"
	"cheers/internal/db"
	"cheers/internal/stats"
)

// HistoryLimit is how many entries the history list shows.
const HistoryLimit = 50

// Event describes a state change pushed to hooks.
type Event struct {
	Kind      string              `json:"event"`
	Date      string              `json:"date,omitempty"`
	Focused   int                 `json:"focused"`
	TotalCups int                 `json:"total_cups"`
	Ready     bool                `json:"ready"`
	Selection *carousel.Selection `json:"selection,omitempty"`
	Entries   []db.LogEntry       `json:"entries,omitempty"`
	DeletedID json.Number         `json:"deleted_id,omitempty"`
}

const (
	EventCups    = "cups"
	EventFocus   = "focus"
	EventDate    = "date"
	EventCheers  = "cheers"
	EventDeleted = "deleted"
)

// State is the interactive session: the selected date, the card carousel
// and the log the confirmed cups go to.
type State struct {
	Cards *carousel.Engine
	Logs  *db.LogStore

	now func() time.Time

	mu    sync.Mutex
	date  string
	hooks []Hook
}

// NewState starts a session on today's date. now defaults to time.Now.
func NewState(cards *carousel.Engine, logs *db.LogStore, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	s := &State{Cards: cards, Logs: logs, now: now}
	s.date = s.Today()
	cards.OnChange(func(total int) {
		s.fire(Event{Kind: EventCups, TotalCups: total, Ready: total > 0, Focused: cards.Focused()})
	})
	return s
}

// Today is the current date in the clock's location.
func (s *State) Today() string {
	return s.now().Format(db.DateLayout)
}

// Date is the date new entries are logged on.
func (s *State) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// SetDate switches the selected date and clears every pending cup.
func (s *State) SetDate(date string) error {
	if _, err := db.ParseDate(date); err != nil {
		return err
	}
	s.mu.Lock()
	s.date = date
	s.mu.Unlock()

	s.Cards.ResetAll()
	log.Info("Date selected", "date", date)
	s.fire(Event{Kind: EventDate, Date: date, Focused: s.Cards.Focused()})
	return nil
}

// Tap selects or counts the card at index. ok is false for an unknown card.
func (s *State) Tap(index int) (carousel.Selection, bool) {
	sel, ok := s.Cards.SelectCard(index)
	if ok && sel.Moved {
		s.fire(Event{Kind: EventFocus, Focused: sel.Index, Selection: &sel})
	}
	return sel, ok
}

// Swipe applies a drag of distance pixels and returns the focused card.
func (s *State) Swipe(distance float64) int {
	before := s.Cards.Focused()
	after := s.Cards.ApplySwipe(distance)
	if after != before {
		s.fire(Event{Kind: EventFocus, Focused: after})
	}
	return after
}

var ErrUnknownGesture = errors.New("unknown gesture")

// Gesture feeds a raw pointer event to the carousel.
func (s *State) Gesture(kind string, index int, x float64) error {
	before := s.Cards.Focused()
	switch kind {
	case "touchstart":
		s.Cards.TouchStart(index, x)
	case "touchmove":
		s.Cards.TouchMove()
	case "touchend":
		s.Cards.TouchEnd(x)
	case "mousedown":
		s.Cards.MouseDown(x)
	case "mouseup":
		s.Cards.MouseUp(x)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGesture, kind)
	}
	if after := s.Cards.Focused(); after != before {
		s.fire(Event{Kind: EventFocus, Focused: after})
	}
	return nil
}

// CheersResult reports a confirmation. Warning is set when some entries
// could not be saved; the cups are cleared either way.
type CheersResult struct {
	Date    string        `json:"date"`
	Entries []db.LogEntry `json:"entries"`
	Warning string        `json:"warning,omitempty"`
}

// Cheers logs one entry per card with pending cups on the selected date.
// ok is false when there was nothing to log.
func (s *State) Cheers(ctx context.Context) (CheersResult, bool) {
	pending := s.Cards.Drain()
	if len(pending) == 0 {
		return CheersResult{}, false
	}

	res := CheersResult{Date: s.Date(), Entries: []db.LogEntry{}}
	var errs []error
	for _, p := range pending {
		entry, err := s.Logs.Add(ctx, res.Date, p.Type, p.Cups)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn("Cheers not fully saved", "date", res.Date, "error", err)
		res.Warning = err.Error()
	}

	log.Info("Cheers", "date", res.Date, "entries", len(res.Entries))
	s.fire(Event{Kind: EventCheers, Date: res.Date, Entries: res.Entries, Focused: s.Cards.Focused()})
	return res, true
}

// DeleteLog removes a history entry. Unknown ids are ignored.
func (s *State) DeleteLog(ctx context.Context, id json.Number) (bool, error) {
	removed, err := s.Logs.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.fire(Event{Kind: EventDeleted, DeletedID: id, Focused: s.Cards.Focused()})
	}
	return removed, nil
}

// TodayPanel is the left/right panel pair of the overview.
type TodayPanel struct {
	stats.Summary
	Unit            string        `json:"unit"`
	MetabolismHours int           `json:"metabolism_hours"`
	Status          stats.Message `json:"status"`
}

// HistoryItem is one history row.
type HistoryItem struct {
	db.LogEntry
	Cups string `json:"cups"`
}

// View is everything a rendering surface needs, recomputed from the full log.
type View struct {
	Date          string             `json:"date"`
	Today         string             `json:"today"`
	Focused       int                `json:"focused"`
	Cards         []carousel.Card    `json:"cards"`
	TotalCups     int                `json:"total_cups"`
	Ready         bool               `json:"ready"`
	TodayPanel    TodayPanel         `json:"today_panel"`
	Calendar      stats.Calendar     `json:"calendar"`
	MonthVolume   int                `json:"month_volume"`
	Totals        stats.Totals       `json:"totals"`
	MonthlyTotals []stats.MonthTotal `json:"monthly_totals"`
	History       []HistoryItem      `json:"history"`
}

// Panel summarises what was drunk today.
func (s *State) Panel(entries []db.LogEntry) TodayPanel {
	sum := stats.DailySummary(entries, s.Today())
	return TodayPanel{
		Summary:         sum,
		Unit:            stats.CupUnit(sum.Type),
		MetabolismHours: stats.MetabolismHours(sum.TotalVolume),
		Status:          stats.StatusMessage(stats.StatusTier(sum.TotalVolume)),
	}
}

// Calendar lays out year/month against the current date.
func (s *State) Calendar(entries []db.LogEntry, year int, month time.Month) stats.Calendar {
	return stats.MonthlyCalendar(entries, year, month, s.now())
}

// History returns the latest limit entries with display cups.
func History(entries []db.LogEntry, limit int) []HistoryItem {
	logs := stats.History(entries, limit)
	items := make([]HistoryItem, len(logs))
	for i, l := range logs {
		items[i] = HistoryItem{LogEntry: l, Cups: stats.MLToCups(l.Amount)}
	}
	return items
}

// View recomputes the whole overview.
func (s *State) View(ctx context.Context) View {
	entries := s.Logs.Logs(ctx)
	now := s.now()
	total := s.Cards.TotalPendingCups()

	return View{
		Date:          s.Date(),
		Today:         s.Today(),
		Focused:       s.Cards.Focused(),
		Cards:         s.Cards.Cards(),
		TotalCups:     total,
		Ready:         total > 0,
		TodayPanel:    s.Panel(entries),
		Calendar:      s.Calendar(entries, now.Year(), now.Month()),
		MonthVolume:   stats.MonthVolume(entries, now.Format("2006-01")),
		Totals:        stats.AggregateTotals(entries),
		MonthlyTotals: stats.MonthlyTotals(entries),
		History:       History(entries, HistoryLimit),
	}
}
