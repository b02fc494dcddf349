package stats

import (
	"time"

	"cheers/internal/db"
)

// CellClass colours one calendar day.
type CellClass string

const (
	CellFuture   CellClass = "future"
	CellNone     CellClass = "none"
	CellModerate CellClass = "moderate"
	CellHeavy    CellClass = "heavy"
)

var monthLabels = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// MonthLabel returns the three letter calendar title for m.
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthLabels[m-1]
}

type DayCell struct {
	Day    int       `json:"day"`
	Volume int       `json:"volume"`
	Class  CellClass `json:"class"`
}

// Calendar is a month laid out on a Monday-first grid.
type Calendar struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Title string     `json:"title"`
	// LeadingBlanks is the number of empty cells before day 1.
	LeadingBlanks int       `json:"leading_blanks"`
	Days          []DayCell `json:"days"`
}

// MonthlyCalendar classifies every day of the month. Days after today are
// future; the others are graded by the volume drunk that day.
func MonthlyCalendar(entries []db.LogEntry, year int, month time.Month, today time.Time) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	volumes := make([]int, daysInMonth+1)
	for _, e := range entries {
		d, err := db.ParseDate(e.Date)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			volumes[d.Day()] += e.Amount
		}
	}

	cal := Calendar{
		Year:          year,
		Month:         month,
		Title:         MonthLabel(month),
		LeadingBlanks: MondayOffset(first.Weekday()),
		Days:          make([]DayCell, 0, daysInMonth),
	}
	last := lastElapsedDay(year, month, daysInMonth, today)
	for day := 1; day <= daysInMonth; day++ {
		cal.Days = append(cal.Days, DayCell{
			Day:    day,
			Volume: volumes[day],
			Class:  classify(day, last, volumes[day]),
		})
	}
	return cal
}

// MondayOffset maps a weekday to its column in a Monday-first week.
func MondayOffset(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// lastElapsedDay is the last day of the month that is not in the future.
func lastElapsedDay(year int, month time.Month, daysInMonth int, today time.Time) int {
	ty, tm, td := today.Date()
	switch {
	case year < ty || (year == ty && month < tm):
		return daysInMonth
	case year > ty || (year == ty && month > tm):
		return 0
	default:
		return td
	}
}

func classify(day, lastElapsed, volume int) CellClass {
	switch {
	case day > lastElapsed:
		return CellFuture
	case volume == 0:
		return CellNone
	case volume < HeavyVolume:
		return CellModerate
	default:
		return CellHeavy
	}
}
