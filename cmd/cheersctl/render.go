package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cheers/internal/db"
	"cheers/internal/stats"
)

var (
	accent   = lipgloss.Color("#F5A623")
	muted    = lipgloss.Color("#8A8F98")
	moderate = lipgloss.Color("#F8E71C")
	heavy    = lipgloss.Color("#D0021B")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)

	cellStyles = map[stats.CellClass]lipgloss.Style{
		stats.CellFuture:   lipgloss.NewStyle().Foreground(muted).Faint(true),
		stats.CellNone:     lipgloss.NewStyle(),
		stats.CellModerate: lipgloss.NewStyle().Foreground(moderate),
		stats.CellHeavy:    lipgloss.NewStyle().Foreground(heavy).Bold(true),
	}
)

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func renderToday(date string, sum stats.Summary) string {
	status := stats.StatusMessage(stats.StatusTier(sum.TotalVolume))

	left := []string{titleStyle.Render("Today " + date)}
	if sum.TotalVolume == 0 {
		left = append(left, labelStyle.Render("Nothing logged yet"))
	} else {
		cups := stats.MLToCups(sum.TotalVolume)
		unit := stats.CupUnit(sum.Type)
		if cups != "1.0" {
			unit += "s"
		}
		left = append(left,
			fmt.Sprintf("%s %s %s of %s", labelStyle.Render("Drank"),
				valueStyle.Render(cups), unit, sum.Type),
			fmt.Sprintf("%s %s ml", labelStyle.Render("Volume"), valueStyle.Render(fmt.Sprint(sum.TotalVolume))),
		)
	}
	left = append(left, fmt.Sprintf("%s %d h", labelStyle.Render("Metabolism"), stats.MetabolismHours(sum.TotalVolume)))

	right := []string{titleStyle.Render("Status"), status.Text}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(strings.Join(left, "\n")),
		panelStyle.Render(strings.Join(right, "\n")),
	) + "\n"
}

func renderCalendar(cal stats.Calendar) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(cal.Title))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render(strings.Join(weekdayHeader, " ")))
	sb.WriteString("\n")

	col := 0
	for ; col < cal.LeadingBlanks; col++ {
		sb.WriteString("   ")
	}
	for _, d := range cal.Days {
		sb.WriteString(cellStyles[d.Class].Render(fmt.Sprintf("%2d", d.Day)))
		col++
		if col%7 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	if col%7 != 0 {
		sb.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n")) + "\n"
}

func renderHistory(entries []db.LogEntry) string {
	if len(entries) == 0 {
		return labelStyle.Render("No entries") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("History"))
	sb.WriteString("\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %-10s %s cups  %s\n",
			e.Date, e.Type, valueStyle.Render(stats.MLToCups(e.Amount)), labelStyle.Render("#"+e.ID.String()))
	}
	return sb.String()
}

func renderMonthly(months []stats.MonthTotal) string {
	if len(months) == 0 {
		return labelStyle.Render("No entries") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Monthly"))
	sb.WriteString("\n")
	for _, m := range months {
		fmt.Fprintf(&sb, "%s  %s ml  %s cups\n", m.Month,
			valueStyle.Render(fmt.Sprintf("%6d", m.Amount)), stats.MLToCups(m.Amount))
	}
	return sb.String()
}

func renderTotals(t stats.Totals) string {
	return fmt.Sprintf("%s %d\n%s %s ml\n%s %s\n",
		labelStyle.Render("Entries:"), t.Count,
		labelStyle.Render("Total volume:"), valueStyle.Render(fmt.Sprint(t.TotalVolume)),
		labelStyle.Render("Total cups:"), valueStyle.Render(stats.MLToCups(t.TotalVolume)))
}
