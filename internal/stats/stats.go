// Package stats derives every view of the drink log. All functions are pure
// and recompute from the full entry list.
package stats

import (
	"math"
	"sort"
	"strconv"

	"cheers/internal/db"
)

// HeavyVolume is the daily volume in ml from which a day counts as heavy.
const HeavyVolume = 3000

// Summary aggregates the entries of one day.
type Summary struct {
	Cups        float64 `json:"cups"`
	Type        string  `json:"type"`
	TotalVolume int     `json:"total_volume"`
}

// DailySummary totals the entries logged on date. Type is the drink with the
// largest volume; on a tie the first one seen wins.
func DailySummary(entries []db.LogEntry, date string) Summary {
	var (
		order   []string
		amounts = map[string]int{}
		total   int
	)
	for _, e := range entries {
		if e.Date != date {
			continue
		}
		if _, ok := amounts[e.Type]; !ok {
			order = append(order, e.Type)
		}
		amounts[e.Type] += e.Amount
		total += e.Amount
	}
	if len(order) == 0 {
		return Summary{}
	}

	mainType, maxAmount := "", 0
	for _, t := range order {
		if amounts[t] > maxAmount {
			mainType, maxAmount = t, amounts[t]
		}
	}

	return Summary{
		Cups:        math.Round(float64(total)/db.MLPerCup*10) / 10,
		Type:        mainType,
		TotalVolume: total,
	}
}

// MetabolismHours estimates two hours for every started cup of volume.
func MetabolismHours(totalVolume int) int {
	if totalVolume <= 0 {
		return 0
	}
	return (totalVolume + db.MLPerCup - 1) / db.MLPerCup * 2
}

// MLToCups formats ml as cups with one decimal.
func MLToCups(ml int) string {
	return strconv.FormatFloat(float64(ml)/db.MLPerCup, 'f', 1, 64)
}

// Totals is the all-time aggregate.
type Totals struct {
	Count       int `json:"count"`
	TotalVolume int `json:"total_volume"`
}

func AggregateTotals(entries []db.LogEntry) Totals {
	t := Totals{Count: len(entries)}
	for _, e := range entries {
		t.TotalVolume += e.Amount
	}
	return t
}

// MonthTotal is the volume of one YYYY-MM month.
type MonthTotal struct {
	Month  string `json:"month"`
	Amount int    `json:"amount"`
}

// MonthlyTotals groups volume by month, oldest month first.
func MonthlyTotals(entries []db.LogEntry) []MonthTotal {
	sums := map[string]int{}
	for _, e := range entries {
		sums[monthKey(e.Date)] += e.Amount
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthTotal, len(keys))
	for i, k := range keys {
		out[i] = MonthTotal{Month: k, Amount: sums[k]}
	}
	return out
}

// MonthVolume sums the volume logged in month (YYYY-MM).
func MonthVolume(entries []db.LogEntry, month string) int {
	total := 0
	for _, e := range entries {
		if monthKey(e.Date) == month {
			total += e.Amount
		}
	}
	return total
}

func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// History returns up to limit entries, newest date first. A non-positive
// limit returns every entry.
func History(entries []db.LogEntry, limit int) []db.LogEntry {
	out := make([]db.LogEntry, len(entries))
	copy(out, entries)
	db.SortLogs(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
