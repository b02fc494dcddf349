package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingKV reads from an inner store but refuses every write.
type failingKV struct {
	KV
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore() (*LogStore, *MemoryKV) {
	kv := NewMemoryKV()
	s := NewLogStore(kv, "")
	s.SetClock(fixedClock(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)))
	return s, kv
}

func TestLogsMissingKeyIsEmpty(t *testing.T) {
	s, _ := newTestStore()
	logs := s.Logs(context.Background())
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestLogsCorruptDataIsEmpty(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"not json":   "{{{",
		"object":     `{"id":1}`,
		"number":     "42",
		"bad fields": `[{"id":"x","date":1}]`,
		"null":       "null",
		"blank":      "  ",
	} {
		t.Run(name, func(t *testing.T) {
			s, kv := newTestStore()
			require.NoError(t, kv.Set(ctx, StorageKey, raw))
			assert.Empty(t, s.Logs(ctx))
		})
	}
}

func TestLogsDropsNegativeAmounts(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, kv.Set(ctx, StorageKey, `[{"id":1,"date":"2024-06-01","type":"beer","amount":-400},{"id":2,"date":"2024-06-01","type":"beer","amount":400}]`))

	logs := s.Logs(ctx)
	require.Len(t, logs, 1)
	assert.Equal(t, IntID(2), logs[0].ID)
}

func TestAddStoresCupsAsMillilitres(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	entry, err := s.Add(ctx, "2024-06-01", "beer", 2)
	require.NoError(t, err)
	assert.Equal(t, 800, entry.Amount)
	assert.Equal(t, "2024-06-01", entry.Date)
	assert.Equal(t, "beer", entry.Type)

	assert.Equal(t, []LogEntry{entry}, s.Logs(ctx))
}

func TestAddKeepsIDsUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	seen := map[json.Number]bool{}
	for i := 0; i < 20; i++ {
		e, err := s.Add(ctx, "2024-06-01", "wine", 1)
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}

	// a fresh store over the same data must not reuse ids either
	other := NewLogStore(s.kv, "")
	other.SetClock(fixedClock(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)))
	e, err := other.Add(ctx, "2024-06-01", "wine", 1)
	require.NoError(t, err)
	assert.False(t, seen[e.ID])
}

func TestAddSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	for _, d := range []string{"2024-05-30", "2024-06-02", "2024-06-01", "2024-06-02"} {
		_, err := s.Add(ctx, d, "beer", 1)
		require.NoError(t, err)
	}

	var dates []string
	for _, l := range s.Logs(ctx) {
		dates = append(dates, l.Date)
	}
	assert.Equal(t, []string{"2024-06-02", "2024-06-02", "2024-06-01", "2024-05-30"}, dates)
}

func TestAddValidates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_, err := s.Add(ctx, "2024-13-01", "beer", 1)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.Add(ctx, "2024-06-01", " ", 1)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = s.Add(ctx, "2024-06-01", "beer", 0)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	assert.Empty(t, s.Logs(ctx))
}

func TestAddWriteFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	require.NoError(t, inner.Set(ctx, StorageKey, `[{"id":1,"date":"2024-06-01","type":"beer","amount":400}]`))
	s := NewLogStore(failingKV{inner}, "")

	entry, err := s.Add(ctx, "2024-06-01", "wine", 1)
	assert.Error(t, err)
	assert.Equal(t, 400, entry.Amount)
	assert.Len(t, s.Logs(ctx), 1)
}

func TestDeleteRemovesEntry(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	a, _ := s.Add(ctx, "2024-06-01", "beer", 1)
	b, _ := s.Add(ctx, "2024-06-01", "wine", 2)

	removed, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []LogEntry{b}, s.Logs(ctx))
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	s.Add(ctx, "2024-06-01", "beer", 1)
	s.Add(ctx, "2024-06-02", "wine", 1)
	before, _, _ := kv.Get(ctx, StorageKey)

	removed, err := s.Delete(ctx, IntID(12345))
	require.NoError(t, err)
	assert.False(t, removed)

	after, _, _ := kv.Get(ctx, StorageKey)
	assert.Equal(t, before, after)
}

func TestRoundTripPreservesEntries(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	want := []LogEntry{
		{ID: "3", Date: "2024-06-03", Type: "baijiu", Amount: 1200},
		{ID: "1", Date: "2024-06-01", Type: "beer", Amount: 400},
		{ID: "2", Date: "2024-05-20", Type: "wine", Amount: 0},
	}
	require.NoError(t, s.Save(ctx, want))

	assert.ElementsMatch(t, want, s.Logs(ctx))

	raw, _, _ := kv.Get(ctx, StorageKey)
	var layout []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &layout))
	assert.Equal(t, map[string]any{"id": 3.0, "date": "2024-06-03", "type": "baijiu", "amount": 1200.0}, layout[0])
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, s.Save(ctx, nil))

	raw, ok, _ := kv.Get(ctx, StorageKey)
	assert.True(t, ok)
	assert.Equal(t, "[]", raw)
}

const widgetLogs = `[{"id":1717243200000.1234,"date":"2024-06-01","type":"beer","amount":800},` +
	`{"id":1717243300000.5,"date":"2024-05-31","type":"wine","amount":400}]`

func TestFractionalIDsSurviveAdd(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, kv.Set(ctx, StorageKey, widgetLogs))

	logs := s.Logs(ctx)
	require.Len(t, logs, 2)
	assert.Equal(t, json.Number("1717243200000.1234"), logs[0].ID)

	_, err := s.Add(ctx, "2024-06-02", "beer", 1)
	require.NoError(t, err)

	assert.Len(t, s.Logs(ctx), 3)
	raw, _, _ := kv.Get(ctx, StorageKey)
	assert.Contains(t, raw, `"id":1717243200000.1234`)
	assert.Contains(t, raw, `"id":1717243300000.5`)
}

func TestDeleteFractionalID(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, kv.Set(ctx, StorageKey, widgetLogs))

	id, err := ParseID("1717243300000.5")
	require.NoError(t, err)
	removed, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	logs := s.Logs(ctx)
	require.Len(t, logs, 1)
	assert.Equal(t, json.Number("1717243200000.1234"), logs[0].ID)
}

func TestUnreadableEntriesKeptOnWrite(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, kv.Set(ctx, StorageKey, `[{"id":"x","date":1},`+
		`{"id":1,"date":"2024-06-01","type":"beer","amount":400},`+
		`{"id":2,"date":"2024-06-01","type":"beer","amount":-400}]`))
	require.Len(t, s.Logs(ctx), 1)

	_, err := s.Add(ctx, "2024-06-02", "wine", 1)
	require.NoError(t, err)

	raw, _, _ := kv.Get(ctx, StorageKey)
	var elems []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &elems))
	assert.Len(t, elems, 4)
	assert.Contains(t, raw, `{"id":"x","date":1}`)
	assert.Contains(t, raw, `"amount":-400`)
	assert.Len(t, s.Logs(ctx), 2)
}

func TestCorruptValueBackedUpBeforeOverwrite(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore()
	require.NoError(t, kv.Set(ctx, StorageKey, "{{{"))

	_, err := s.Add(ctx, "2024-06-02", "wine", 1)
	require.NoError(t, err)

	backup, ok, _ := kv.Get(ctx, StorageKey+".corrupt")
	require.True(t, ok)
	assert.Equal(t, "{{{", backup)
	assert.Len(t, s.Logs(ctx), 1)
}

// unreadableKV fails every read and records writes.
type unreadableKV struct {
	MemoryKV
	writes int
}

func (u *unreadableKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection reset")
}

func (u *unreadableKV) Set(context.Context, string, string) error {
	u.writes++
	return nil
}

func TestAddDoesNotWriteWhenReadFails(t *testing.T) {
	ctx := context.Background()
	kv := &unreadableKV{}
	s := NewLogStore(kv, "")

	assert.Empty(t, s.Logs(ctx))
	_, err := s.Add(ctx, "2024-06-02", "wine", 1)
	assert.Error(t, err)
	_, err = s.Delete(ctx, IntID(1))
	assert.Error(t, err)
	assert.Zero(t, kv.writes)
}

func TestParseID(t *testing.T) {
	for in, want := range map[string]json.Number{
		"42":                "42",
		" 1717243200000.5 ": "1717243200000.5",
		"-3":                "-3",
		"1e3":               "1e3",
	} {
		got, err := ParseID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "abc", `"42"`, "42 43", "NaN", "1."} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, ErrInvalidEntry, in)
	}
}
