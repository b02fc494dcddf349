package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cheers/internal/db"
	"cheers/internal/stats"
)

var (
	addDate      string
	addCups      int
	historyLimit int
)

var addCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Log cups of a drink",
	Long: `Log cups of a drink on a date. Each cup is 400ml.

Example:
  cheersctl add beer --cups 2 --date 2024-05-01`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a history entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the latest entries, newest date first",
	RunE:  runHistory,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "date as YYYY-MM-DD (default today)")
	addCmd.Flags().IntVar(&addCups, "cups", 1, "number of cups")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum entries, 0 for all")
}

func today() string {
	return now().Format(db.DateLayout)
}

func runAdd(cmd *cobra.Command, args []string) error {
	date := addDate
	if date == "" {
		date = today()
	}
	entry, err := store.Add(cmd.Context(), date, args[0], addCups)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s cups of %s (id %s)\n",
		entry.Date, stats.MLToCups(entry.Amount), entry.Type, entry.ID)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := db.ParseID(args[0])
	if err != nil {
		return err
	}
	removed, err := store.Delete(cmd.Context(), id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No entry with id %s\n", id)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries := stats.History(store.Logs(cmd.Context()), historyLimit)
	fmt.Fprint(cmd.OutOrStdout(), renderHistory(entries))
	return nil
}
