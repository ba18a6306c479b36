// Package cli implements the schedsim command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/schedsim/internal/config"
	"github.com/me/schedsim/internal/logging"
	"github.com/me/schedsim/internal/store"
)

var (
	flagConfig    string
	flagServer    string
	flagDB        string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	cfg    config.Config
	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SCHEDSIM_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SCHEDSIM_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the schedsim CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedsim",
		Short: "schedsim: priority-preemptive multi-processor scheduling simulator",
		Long: `schedsim simulates tasks arriving at a bounded buffer in front of a pool of
processors. Higher-priority work preempts lower-priority work; tasks that
find the buffer full are rejected.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(flagConfig); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Logging.Level = flagLogLevel
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = flagLogFormat
			}
			if flagDebug {
				cfg.Logging.Level = "debug"
			}
			if flags.Changed("db") {
				cfg.Store.Path = flagDB
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, cmd.ErrOrStderr())
			client = NewClient(flagServer, logger)
			return nil
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "Path to a YAML config file")
	pf.StringVar(&flagServer, "server", defaultServer(), "schedsim server URL for status and remote history (or SCHEDSIM_SERVER env)")
	pf.StringVar(&flagDB, "db", "", "SQLite run history path (overrides store.path)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newGenerateCmd(),
		newConfigCmd(),
	)

	return root
}

// openStore opens and migrates the run history database, or returns nil
// when archiving is disabled.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	st, err := store.NewSQLiteStore(cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Debug("database ready", "path", cfg.Store.Path)
	return st, nil
}
