// =============================================================================
// Project Data Cleaner - XLSX Extractor
// =============================================================================
//
// This module extracts raw CSV files from Excel workbooks so they can go
// through the same cleaning pipeline as exported CSV files.
//
// OUTPUT NAMING:
//   Every sheet of every workbook becomes one file in the output directory:
//
//     Projetos.xlsx, sheet "Custos" -> Projetos_Custos_raw.csv
//
//   Characters that are not safe in file names are replaced with "_".
//
// CELL VALUES:
//   Cells are written as Excel displays them (formatted values), so dates and
//   amounts keep the locale of the workbook; the resolvers handle them like
//   any other raw text. Rows are padded to the widest row of the sheet and
//   trailing blank rows are dropped.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/project-data-cleaner/internal/csvwriter"
	"github.com/ginjaninja78/project-data-cleaner/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// SheetResult describes one extracted sheet.
type SheetResult struct {
	// Workbook is the path to the source workbook.
	Workbook string

	// Sheet is the sheet name as it appears in the workbook.
	Sheet string

	// OutputFile is the path to the raw CSV file.
	OutputFile string

	// Rows is the number of rows written, header included.
	Rows int
}

// =============================================================================
// EXTRACTION FUNCTIONS
// =============================================================================

// Extract writes every sheet of the workbook to outputDir.
//
// PARAMETERS:
//   - workbookPath: The path to the .xlsx file.
//   - outputDir: The directory that receives the raw CSV files.
//
// RETURNS:
//   - One SheetResult per sheet, in workbook order. Empty sheets are skipped.
//   - An error if the workbook cannot be opened or a sheet cannot be written.
func Extract(workbookPath, outputDir string) ([]SheetResult, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ExtractFile(f, workbookPath, outputDir)
}

// ExtractFile writes every sheet of an open workbook to outputDir.
// workbookPath is only used for naming.
func ExtractFile(f *excelize.File, workbookPath, outputDir string) ([]SheetResult, error) {
	stem := utils.FileStem(workbookPath)

	var results []SheetResult
	for _, sheetName := range f.GetSheetList() {
		rows, width, err := readSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", sheetName, err)
		}
		if len(rows) == 0 {
			continue
		}

		doc, err := csvwriter.GenerateRows(rows, width, csvwriter.DefaultGenerateOptions())
		if err != nil {
			return nil, fmt.Errorf("error rendering sheet '%s': %w", sheetName, err)
		}

		outputPath := filepath.Join(outputDir, SheetFileName(stem, sheetName))
		if err := utils.WriteFile(outputPath, doc); err != nil {
			return nil, fmt.Errorf("error writing sheet '%s': %w", sheetName, err)
		}

		results = append(results, SheetResult{
			Workbook:   workbookPath,
			Sheet:      sheetName,
			OutputFile: outputPath,
			Rows:       len(rows),
		})
	}

	return results, nil
}

// SheetFileName returns the raw CSV name for a workbook stem and sheet.
func SheetFileName(stem, sheet string) string {
	return fmt.Sprintf("%s_%s_raw.csv", sanitize(stem), sanitize(sheet))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readSheet returns the rows of a sheet without trailing blank rows, and the
// width of the widest row.
func readSheet(f *excelize.File, sheetName string) ([][]string, int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}

	for len(rows) > 0 && isRowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return rows, width, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sanitize replaces characters that are unsafe in file names.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
}
