package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"journal/internal/config"
	"journal/internal/logging"
	"journal/internal/store"
)

var (
	verbose     bool
	databaseURL string
	closeLog    = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "journalctl",
	Short:         "Administer the journal database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnvFile()
		if verbose {
			_ = os.Setenv("JOURNAL_DEBUG_LEVEL", "debug")
		}
		closeLog = logging.Setup(os.Stderr)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		closeLog()
		fatal("journalctl", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "Database URL (defaults to JOURNAL_DATABASE_URL)")
}

func storeOptions() store.Options {
	cfg := config.Load()
	dsn := cfg.DatabaseURL
	if databaseURL != "" {
		dsn = databaseURL
	}
	return store.Options{
		DSN:         dsn,
		BusyTimeout: cfg.DBBusyTimeout,
		LockTimeout: cfg.DBLockTimeout,
	}
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, storeOptions())
}
