// =============================================================================
// Sales Batch Processor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (processor)
//   ├── processCmd  (processor process)
//   ├── runCmd      (processor run)
//   ├── watchCmd    (processor watch)
//   ├── generateCmd (processor generate)
//   ├── configCmd   (processor config)
//   └── versionCmd  (processor version)
//
// CONFIGURATION:
//   Before any command runs, the root command:
//   1. Loads the configuration (file, .env, environment)
//   2. Applies the --log-level and --json-logs overrides
//   3. Initializes the global logger
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// logLevel overrides the configured log level when set.
var logLevel string

// jsonLogs forces JSON log output.
var jsonLogs bool

// appConfig is the configuration loaded before each command runs.
var appConfig *config.Config

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "processor",
	Short: "Sales Batch Processor - Validate, aggregate and screen sales transaction batches",
	Long: `Sales Batch Processor reads batches of e-commerce sales transactions as JSON
documents, validates each transaction against business rules, computes sales
analytics and flags anomalous activity. Every input produces exactly one
result document.

Key Features:
  - Per-transaction validation with detailed rejection reasons
  - Revenue, customer, product and method breakdowns
  - High value, duplicate, high quantity and frequent customer detection
  - Concurrent local processing, directory watch and batch worker modes
  - Optional YAML output and XLSX reports

Example Usage:
  processor process ./input              # Process every batch in a directory
  processor process --file batch.json    # Process one file
  processor run                          # Run one batch task from the environment
  processor generate --count 500         # Write a synthetic batch`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. Any command error exits with status 1. Commands
// receive a context that is cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		pterm.Error.Println(err.Error())
		if hints := errors.FlattenHints(err); hints != "" {
			pterm.Info.Println(hints)
		}
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile,
		"Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides log_level)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"Emit JSON log lines (overrides log_json)")
}

// initConfig loads the configuration and sets up logging.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.LogJSON = jsonLogs
	}

	if err := logging.Initialize(cfg.LogLevel, cfg.LogJSON); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "invalid log level %q", cfg.LogLevel),
			"use one of debug, info, warn, error",
		)
	}

	appConfig = cfg
	logging.Debugw("Configuration loaded", "config_file", cfgFile)
	return nil
}
