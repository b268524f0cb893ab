// =============================================================================
// Fixture Survey - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (survey)
//   ├── ingestCmd  (survey ingest <file>)      - load a survey export
//   ├── columnsCmd (survey columns <file>)     - preview column detection
//   ├── reportCmd  (survey report)             - render the report
//   ├── editCmd    (survey edit ...)           - operator overrides
//   ├── rowCmd     (survey row add|delete)     - manual report rows
//   ├── resetCmd   (survey reset)              - drop session and overrides
//   └── versionCmd (survey version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading .env and the configuration file
//   3. Setting up logging
//   4. Opening the state store shared by all commands
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/fixture-survey/internal/config"
	"github.com/ginjaninja78/fixture-survey/internal/logging"
	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/store"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// Shared by every command; set up in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *zap.Logger
	st     store.Store
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "survey",
	Short: "Fixture Survey - consolidate installation surveys into unit reports",
	Long: `Fixture Survey turns a plumbing-fixture installation survey (CSV or
spreadsheet export) into a per-unit report of kitchen aerators, bathroom
aerators, shower heads and toilets, with operator notes.

Workflow:
  survey ingest survey.csv --customer "Acme Housing"   # load and consolidate
  survey report                                        # preview in the terminal
  survey edit note 101 "Tenant refused entry."         # annotate a unit
  survey report --format pdf                           # write the PDF

State (session and edits) is kept in the configured store between commands.
A new ingest replaces the previous session and all of its edits.`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},

	// Without a subcommand, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		teardown()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigFile,
		"Path to the main configuration file",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// setup loads the configuration, builds the logger and opens the store.
func setup(cmd *cobra.Command) error {
	if cmd == versionCmd {
		return nil
	}

	// A missing .env is normal; a broken one is worth a warning once the
	// logger exists.
	envErr := config.LoadDotEnv()

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return err
	}

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(envErr))
	}

	st, err = store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	logger.Debug("Store opened",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path))

	return nil
}

// teardown flushes the logger and closes the store. Safe to call twice.
func teardown() {
	if st != nil {
		if err := st.Close(); err != nil && logger != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
		st = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadSession loads the current session, with a hint when there is none.
func loadSession() (*session.Session, error) {
	sess, err := session.Load(st)
	if errors.Is(err, session.ErrNoSession) {
		return nil, fmt.Errorf("%w (survey ingest <file>)", err)
	}
	return sess, err
}

// newManager returns the override manager for the open store. Note changes
// are logged.
func newManager() *overrides.Manager {
	m := overrides.NewManager(st, logger)
	m.OnNotesChanged(func() {
		logger.Debug("Unit notes changed")
	})
	return m
}

// resolveRef checks that ref addresses a row of the report: an original unit
// of the session or the ID of an added row.
func resolveRef(sess *session.Session, state overrides.State, ref string) error {
	for _, u := range sess.Base {
		if u.Unit == ref {
			return nil
		}
	}
	for _, u := range state.AdditionalRows {
		if overrides.RefOf(u) == ref {
			return nil
		}
	}
	return fmt.Errorf("no unit or added row %q in the current session (see 'survey report --format json' for refs)", ref)
}
