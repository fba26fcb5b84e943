// =============================================================================
// Project Data Cleaner - Extract Command
// =============================================================================
//
// This file defines the 'extract' command, which converts Excel workbooks to
// raw CSV files in the input directory.
//
// COMMAND USAGE:
//   cleaner extract                        # every *.xlsx in input_dir
//   cleaner extract --workbook raw.xlsx    # a single workbook
//
// OUTPUT:
//   <workbook>_<sheet>_raw.csv per sheet, in input_dir.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/xlsxparser"
	"github.com/ginjaninja78/project-data-cleaner/pkg/utils"
)

// workbookPath is a single workbook to extract.
var workbookPath string

// extractCmd represents the 'extract' command.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract Excel workbooks to raw CSV files",
	Long: `The extract command writes every sheet of every workbook in the input
directory as <workbook>_<sheet>_raw.csv, ready for 'cleaner process'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.close()

		fm := utils.NewFileManager(a.cfg.InputDir, a.cfg.OutputDir, a.cfg.LogsDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}

		results, err := extractWorkbooks(fm, workbookPath, a.logger)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("  %s [%s] -> %s (%d rows)\n", filepath.Base(r.Workbook), r.Sheet, r.OutputFile, r.Rows)
		}
		fmt.Printf("Extracted %d sheet(s)\n", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&workbookPath, "workbook", "", "Path to a single workbook to extract")
}

// extractWorkbooks extracts one workbook, or every workbook of the input
// directory when workbook is empty, into the input directory.
func extractWorkbooks(fm *utils.FileManager, workbook string, logger *zap.Logger) ([]xlsxparser.SheetResult, error) {
	workbooks := []string{workbook}
	if workbook == "" {
		var err error
		workbooks, err = fm.DiscoverWorkbooks()
		if err != nil {
			return nil, fmt.Errorf("failed to discover workbooks: %w", err)
		}
	}

	var all []xlsxparser.SheetResult
	for _, wb := range workbooks {
		results, err := xlsxparser.Extract(wb, fm.InputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", wb, err)
		}
		for _, r := range results {
			logger.Info("Extracted sheet",
				zap.String("workbook", filepath.Base(r.Workbook)),
				zap.String("sheet", r.Sheet),
				zap.String("output", r.OutputFile),
				zap.Int("rows", r.Rows),
			)
		}
		all = append(all, results...)
	}

	if len(workbooks) == 0 {
		logger.Info("No workbooks found", zap.String("input_dir", fm.InputDir))
	}
	return all, nil
}
