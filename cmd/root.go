// =============================================================================
// Project Data Cleaner - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (cleaner)
//   ├── processCmd  (cleaner process)
//   ├── extractCmd  (cleaner extract)
//   ├── validateCmd (cleaner validate)
//   └── versionCmd  (cleaner version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main and dataset configurations
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cleaner",
	Short: "Project Data Cleaner - Normalize project-management exports",
	Long: `Project Data Cleaner normalizes heterogeneous, locale-inconsistent
project-management data (dates, currency, percentages, categories, durations,
yes/no flags) into one canonical schema.

Key Features:
  - Brazilian and US number formats, accounting negatives, typo repair
  - Day-first and ISO dates with month/day swap repair
  - Closed vocabularies for priority, status and yes/no fields
  - Per-value outcome ledger and data quality report
  - Excel workbook extraction to raw CSV
  - Optional SQL audit trail of every corrected or failed value

Example Usage:
  cleaner process                      # Clean every CSV in the input directory
  cleaner process --extract            # Extract workbooks first, then clean
  cleaner process --file in/Horas.csv  # Clean a single file
  cleaner validate                     # Check configuration without processing`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// app bundles what every command needs.
type app struct {
	cfg      *config.MainConfig
	datasets map[string]*config.DatasetConfig
	logger   *zap.Logger
	close    func()
}

// loadApp loads the configuration and builds the logger. With warningsLog
// the warnings log in logs_dir is (re)created.
func loadApp(warningsLog bool) (*app, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	datasets, err := config.LoadDatasetConfigs(cfg.ConfigsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset configs: %w", err)
	}

	opts := logging.Options{Level: cfg.LogLevel}
	if verbose {
		opts.Level = "debug"
	}
	if warningsLog {
		opts.LogsDir = cfg.LogsDir
	}
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		zap.String("config", cfgFile),
		zap.Int("datasets", len(datasets)),
	)

	return &app{
		cfg:      cfg,
		datasets: datasets,
		logger:   logger,
		close:    closeFn,
	}, nil
}
