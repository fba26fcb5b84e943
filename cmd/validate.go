// =============================================================================
// Project Data Cleaner - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads and validates the
// main configuration and every dataset configuration without processing any
// file. Invalid field types, unknown category tables and duplicate columns
// are all reported here.
//
// COMMAND USAGE:
//   cleaner validate
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration files without processing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		printDatasets(os.Stdout, a.cfg, a.datasets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// printDatasets writes a summary of the loaded configuration.
func printDatasets(w io.Writer, cfg *config.MainConfig, datasets map[string]*config.DatasetConfig) {
	fmt.Fprintf(w, "Configuration OK\n")
	fmt.Fprintf(w, "  input_dir:   %s\n", cfg.InputDir)
	fmt.Fprintf(w, "  output_dir:  %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "  logs_dir:    %s\n", cfg.LogsDir)
	if cfg.Audit.Enabled() {
		fmt.Fprintf(w, "  audit:       %s (table %s)\n", cfg.Audit.Driver, cfg.Audit.Table)
	}
	fmt.Fprintf(w, "\n")

	codes := make([]string, 0, len(datasets))
	for code := range datasets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		d := datasets[code]
		fmt.Fprintf(w, "Dataset %s (%s)\n", d.DatasetCode, d.DatasetName)
		fmt.Fprintf(w, "  files: %s\n", strings.Join(d.FileMatchingPatterns, ", "))
		for _, spec := range d.Schema().Fields() {
			fmt.Fprintf(w, "  %-20s %s\n", spec.Name, describeSpec(spec))
		}
		fmt.Fprintf(w, "\n")
	}
}

func describeSpec(spec normalize.FieldSpec) string {
	switch spec.Kind {
	case normalize.KindCategory:
		return fmt.Sprintf("category (%s)", spec.Table)
	case normalize.KindPercentage:
		limit := spec.Cap
		if limit == 0 {
			limit = normalize.DefaultPercentCap
		}
		return fmt.Sprintf("percentage (cap %d%%)", limit)
	case normalize.KindText:
		if spec.Lowercase {
			return "text (lowercase)"
		}
	}
	return string(spec.Kind)
}
