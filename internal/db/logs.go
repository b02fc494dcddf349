package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// MLPerCup is the volume of one cup.
	MLPerCup = 400
	// StorageKey is where the log list lives in the KV store.
	StorageKey = "alcoholLogs"
	// DateLayout is the day-granularity date format used everywhere.
	DateLayout = "2006-01-02"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidEntry = errors.New("invalid entry")
)

// LogEntry is one confirmed drink record. ID keeps the stored number text
// as is; lists written by the browser widget carry fractional ids.
type LogEntry struct {
	ID     json.Number `json:"id"`
	Date   string      `json:"date"`
	Type   string      `json:"type"`
	Amount int         `json:"amount"`
}

// IntID formats an integer id.
func IntID(n int64) json.Number {
	return json.Number(strconv.FormatInt(n, 10))
}

// ParseID accepts any JSON number literal, fractional ones included.
func ParseID(s string) (json.Number, error) {
	s = strings.TrimSpace(s)
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.InputOffset() != int64(len(s)) {
		return "", fmt.Errorf("%w: id %q", ErrInvalidEntry, s)
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", fmt.Errorf("%w: id %q", ErrInvalidEntry, s)
	}
	return n, nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// SortLogs orders logs by date, newest first. Entries on the same date keep
// their relative order.
func SortLogs(logs []LogEntry) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})
}

// LogStore persists the whole entry list as one JSON array under a single key.
// Every mutation reads the full list, changes it and writes it back.
type LogStore struct {
	kv  KV
	key string
	now func() time.Time

	mu     sync.Mutex
	lastID int64
}

// NewLogStore stores the list under key, or StorageKey when key is empty.
func NewLogStore(kv KV, key string) *LogStore {
	if key == "" {
		key = StorageKey
	}
	return &LogStore{kv: kv, key: key, now: time.Now}
}

// SetClock replaces the clock used to mint entry ids.
func (s *LogStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// snapshot is one read of the stored value. unread holds array elements
// that did not decode and corrupt the whole value when it was not an array;
// both are carried into the next write so nothing stored is lost.
type snapshot struct {
	logs    []LogEntry
	unread  []json.RawMessage
	corrupt string
}

// Logs returns every entry, newest date first. Missing or unreadable data
// yields an empty list; the problem is logged, never returned.
func (s *LogStore) Logs(ctx context.Context) []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.load(ctx)
	return snap.logs
}

// load reads the stored list. The error is set only when the KV read failed,
// in which case nothing may be written back.
func (s *LogStore) load(ctx context.Context) (snapshot, error) {
	snap := snapshot{logs: []LogEntry{}}
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		log.Warn("Failed to read logs, using empty list", "key", s.key, "error", err)
		return snap, fmt.Errorf("failed to read logs: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return snap, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || elems == nil {
		log.Warn("Stored logs are corrupt, using empty list", "key", s.key, "error", err)
		snap.corrupt = raw
		return snap, nil
	}

	for _, el := range elems {
		var l LogEntry
		if err := json.Unmarshal(el, &l); err != nil {
			log.Warn("Skipping unreadable log", "raw", string(el), "error", err)
			snap.unread = append(snap.unread, el)
			continue
		}
		if l.Amount < 0 {
			log.Warn("Skipping log with negative amount", "id", l.ID, "amount", l.Amount)
			snap.unread = append(snap.unread, el)
			continue
		}
		snap.logs = append(snap.logs, l)
	}
	SortLogs(snap.logs)
	return snap, nil
}

// Save replaces the readable entries of the stored list. Elements that could
// not be read are kept.
func (s *LogStore) Save(ctx context.Context, logs []LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	snap.logs = logs
	return s.save(ctx, snap)
}

func (s *LogStore) save(ctx context.Context, snap snapshot) error {
	if snap.corrupt != "" {
		backup := s.key + ".corrupt"
		if err := s.kv.Set(ctx, backup, snap.corrupt); err != nil {
			return fmt.Errorf("failed to back up corrupt logs: %w", err)
		}
		log.Warn("Corrupt logs backed up before overwrite", "key", backup)
	}

	elems := make([]json.RawMessage, 0, len(snap.logs)+len(snap.unread))
	for _, l := range snap.logs {
		b, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to marshal log %s: %w", l.ID, err)
		}
		elems = append(elems, b)
	}
	elems = append(elems, snap.unread...)

	data, err := json.Marshal(elems)
	if err != nil {
		return fmt.Errorf("failed to marshal logs: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		log.Warn("Failed to save logs", "key", s.key, "error", err)
		return fmt.Errorf("failed to save logs: %w", err)
	}
	return nil
}

// Add records cups of drinkType on date. The entry is returned even when
// saving fails, together with the error.
func (s *LogStore) Add(ctx context.Context, date, drinkType string, cups int) (LogEntry, error) {
	if _, err := ParseDate(date); err != nil {
		return LogEntry{}, err
	}
	if strings.TrimSpace(drinkType) == "" {
		return LogEntry{}, fmt.Errorf("%w: empty type", ErrInvalidEntry)
	}
	if cups <= 0 {
		return LogEntry{}, fmt.Errorf("%w: cups must be positive, got %d", ErrInvalidEntry, cups)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return LogEntry{}, err
	}
	entry := LogEntry{
		ID:     s.nextID(snap.logs),
		Date:   date,
		Type:   drinkType,
		Amount: cups * MLPerCup,
	}
	snap.logs = append(snap.logs, entry)
	SortLogs(snap.logs)

	if err := s.save(ctx, snap); err != nil {
		return entry, err
	}
	log.Info("Log added", "id", entry.ID, "date", date, "type", drinkType, "amount", entry.Amount)
	return entry, nil
}

// nextID derives an id from the wall clock, strictly increasing within this
// store and unique within logs.
func (s *LogStore) nextID(logs []LogEntry) json.Number {
	id := s.now().UnixMilli() * 1000
	if id <= s.lastID {
		id = s.lastID + 1
	}
	taken := make(map[json.Number]struct{}, len(logs))
	for _, l := range logs {
		taken[l.ID] = struct{}{}
	}
	for {
		if _, ok := taken[IntID(id)]; !ok {
			break
		}
		id++
	}
	s.lastID = id
	return IntID(id)
}

// Delete removes the entry with id. It reports whether one was removed; an
// unknown id is not an error and writes nothing.
func (s *LogStore) Delete(ctx context.Context, id json.Number) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	n := len(snap.logs)
	kept := snap.logs[:0]
	for _, l := range snap.logs {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == n {
		return false, nil
	}
	snap.logs = kept
	if err := s.save(ctx, snap); err != nil {
		return false, err
	}
	log.Info("Log deleted", "id", id)
	return true, nil
}
