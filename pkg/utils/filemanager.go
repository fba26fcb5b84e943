// =============================================================================
// Project Data Cleaner - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the cleaner, including:
//   - Directory management
//   - Input discovery (CSV files and Excel workbooks)
//   - Output file naming
//   - The run report (cleaning_report.txt)
//
// OUTPUT NAMING:
//   The stem of an input file is its base name without extension and without
//   a trailing "_raw": "Projetos_raw.csv" -> "Projetos". With the default
//   format "{stem}_clean.csv" this yields "Projetos_clean.csv".
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
)

// ReportFileName is the run report written to the output directory.
const ReportFileName = "cleaning_report.txt"

// rawSuffix marks extracted or exported files that have not been cleaned.
const rawSuffix = "_raw"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the cleaner.
type FileManager struct {
	// InputDir is the directory where raw files are placed.
	InputDir string

	// OutputDir is the directory where clean files and the report are placed.
	OutputDir string

	// LogsDir is the directory for the warnings log.
	LogsDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, logsDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
		LogsDir:   logsDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory for files matching the pattern.
//
// PARAMETERS:
//   - pattern: A glob pattern to match files (e.g., "*.csv").
//              If empty, defaults to "*.csv".
//
// RETURNS:
//   - The matching file paths in lexical order.
//   - An error if the pattern is malformed.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			result = append(result, file)
		}
	}

	return result, nil
}

// DiscoverWorkbooks returns the .xlsx files of the input directory. Office
// lock files ("~$Book.xlsx") are skipped.
func (fm *FileManager) DiscoverWorkbooks() ([]string, error) {
	files, err := fm.DiscoverInputFiles("*.xlsx")
	if err != nil {
		return nil, err
	}

	var result []string
	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "~$") {
			continue
		}
		result = append(result, file)
	}
	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// FileStem returns the base name of path without extension and without a
// trailing "_raw".
func FileStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(stem, rawSuffix)
}

// GenerateOutputFileName generates the output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {stem}      - Input stem (see FileStem)
//               {dataset}   - Dataset code
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//   - params: A map of placeholder values, without braces.
//
// RETURNS:
//   - The generated file name, always ending in .csv.
//
// EXAMPLE:
//   format: "{stem}_clean_{date}.csv"
//   params: {"stem": "Projetos"}
//   output: "Projetos_clean_20260220.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	result = filepath.Base(result)

	if !strings.HasSuffix(strings.ToLower(result), ".csv") {
		result += ".csv"
	}

	return result
}

// WriteFile writes data to path, creating the parent directory. The data is
// written to a temporary file first so readers never see a partial file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// =============================================================================
// RUN REPORT
// =============================================================================

// RunSummary contains summary information about a processing run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	DryRun    bool
	Files     []FileReport
}

// FileReport contains the outcome of one input file.
type FileReport struct {
	InputFile  string
	OutputFile string
	Dataset    string
	Rows       int
	Success    bool
	Error      string
	Report     ledger.QualityReport
}

// Successful returns the number of files processed without a fatal error.
func (s RunSummary) Successful() int {
	n := 0
	for _, f := range s.Files {
		if f.Success {
			n++
		}
	}
	return n
}

// Combined sums the quality reports of all successful files.
func (s RunSummary) Combined() ledger.QualityReport {
	var combined ledger.QualityReport
	for _, f := range s.Files {
		if f.Success {
			combined = combined.Merge(f.Report)
		}
	}
	combined.File = "all files"
	return combined
}

// WriteReport writes the run report to dir/cleaning_report.txt.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - dir: The directory to write the report to.
//
// RETURNS:
//   - The path to the report file.
//   - An error if writing fails.
func WriteReport(summary RunSummary, dir string) (string, error) {
	reportPath := filepath.Join(dir, ReportFileName)

	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writeSummary(writer, summary)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush report file: %w", err)
	}

	return reportPath, nil
}

const separator = "================================================================================\n"

func writeSummary(w *bufio.Writer, summary RunSummary) {
	duration := summary.EndTime.Sub(summary.StartTime)
	mode := "write"
	if summary.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(w, "Project Data Cleaner - Cleaning Report\n"+
		separator+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Mode:           %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		mode,
		len(summary.Files),
		summary.Successful(),
		len(summary.Files)-summary.Successful(),
	)

	for _, f := range summary.Files {
		w.WriteString(separator)
		fmt.Fprintf(w, "Input:   %s\n", f.InputFile)
		fmt.Fprintf(w, "Dataset: %s\n", f.Dataset)
		if !f.Success {
			fmt.Fprintf(w, "Error:   %s\n\n", f.Error)
			continue
		}
		if f.OutputFile != "" {
			fmt.Fprintf(w, "Output:  %s\n", f.OutputFile)
		}
		fmt.Fprintf(w, "Rows:    %d\n\n", f.Rows)
		w.WriteString(f.Report.Format())
		w.WriteString("\n")
	}

	if summary.Successful() > 0 {
		w.WriteString(separator)
		w.WriteString("Run Summary\n\n")
		w.WriteString(summary.Combined().Format())
		w.WriteString("\n")
	}

	w.WriteString(separator + "End of Report\n")
}
