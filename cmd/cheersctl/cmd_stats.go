package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cheers/internal/stats"
)

var (
	calendarYear  int
	calendarMonth int
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's summary and status",
	RunE:  runToday,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the monthly heat-map",
	RunE:  runCalendar,
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show per-month totals",
	RunE:  runMonthly,
}

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show aggregate totals",
	RunE:  runTotals,
}

func init() {
	calendarCmd.Flags().IntVar(&calendarYear, "year", 0, "year (default current)")
	calendarCmd.Flags().IntVar(&calendarMonth, "month", 0, "month 1-12 (default current)")
}

func runToday(cmd *cobra.Command, args []string) error {
	sum := stats.DailySummary(store.Logs(cmd.Context()), today())
	fmt.Fprint(cmd.OutOrStdout(), renderToday(today(), sum))
	return nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	t := now()
	year, month := t.Year(), t.Month()
	if calendarYear != 0 {
		year = calendarYear
	}
	if calendarMonth != 0 {
		if calendarMonth < 1 || calendarMonth > 12 {
			return fmt.Errorf("month out of range: %d", calendarMonth)
		}
		month = time.Month(calendarMonth)
	}
	cal := stats.MonthlyCalendar(store.Logs(cmd.Context()), year, month, t)
	fmt.Fprint(cmd.OutOrStdout(), renderCalendar(cal))
	return nil
}

func runMonthly(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.OutOrStdout(), renderMonthly(stats.MonthlyTotals(store.Logs(cmd.Context()))))
	return nil
}

func runTotals(cmd *cobra.Command, args []string) error {
	totals := stats.AggregateTotals(store.Logs(cmd.Context()))
	fmt.Fprint(cmd.OutOrStdout(), renderTotals(totals))
	return nil
}
