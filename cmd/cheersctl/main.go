// Command cheersctl reads and edits the drink log from the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"cheers/internal/config"
	"cheers/internal/db"
)

var (
	envFile string
	backend string

	// store and now are set in PersistentPreRunE unless a test already did.
	store   *db.LogStore
	now     func() time.Time
	closeKV func() error
)

var rootCmd = &cobra.Command{
	Use:   "cheersctl",
	Short: "Inspect and edit the drink log",
	Long: `cheersctl works on the same store as the cheers server.

Available subcommands:
  add      - Log cups of a drink on a date
  delete   - Remove a history entry by id
  history  - List the latest entries
  today    - Show today's summary and status
  calendar - Show the monthly heat-map
  monthly  - Show per-month totals
  totals   - Show aggregate totals`,
	SilenceUsage:      true,
	PersistentPreRunE: openStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeKV == nil {
			return nil
		}
		err := closeKV()
		closeKV = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", config.DefaultEnvFile, "dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "override CHEERS_BACKEND")

	rootCmd.AddCommand(addCmd, deleteCmd, historyCmd, todayCmd, calendarCmd, monthlyCmd, totalsCmd)
}

func openStore(cmd *cobra.Command, args []string) error {
	if store != nil {
		return nil
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	if backend != "" {
		cfg.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now = func() time.Time { return time.Now().In(loc) }

	kv, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	if c, ok := kv.(interface{ Close() error }); ok {
		closeKV = c.Close
	}
	store = db.NewLogStore(kv, cfg.StorageKey)
	return nil
}

func main() {
	log.SetTimeFormat(time.Stamp)
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
