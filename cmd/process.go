// =============================================================================
// Project Data Cleaner - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// cleaning raw exports. It orchestrates the pipeline over all input files.
//
// COMMAND USAGE:
//   cleaner process [flags]
//
// FLAGS:
//   --dry-run   : Resolve and report without writing clean files
//   --file      : Clean only this file
//   --dataset   : Clean only files of this dataset (or force it with --file)
//   --extract   : Extract Excel workbooks to raw CSV first
//
// PROCESSING PIPELINE:
//   1. Load configuration files
//   2. Extract workbooks (optional)
//   3. Discover CSV files and match each to a dataset
//   4. Clean the files concurrently, each with its own ledger
//   5. Write cleaning_report.txt with every file report and the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/project-data-cleaner/internal/audit"
	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/converter"
	"github.com/ginjaninja78/project-data-cleaner/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun resolves every file without writing output files.
var dryRun bool

// filePath is the path to a specific file to process.
var filePath string

// datasetCode filters processing to a specific dataset.
var datasetCode string

// extractFirst extracts workbooks before cleaning.
var extractFirst bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean raw CSV files",
	Long: `The process command scans the input directory for CSV files, matches them
to a dataset configuration, and writes a clean copy of each file to the output
directory.

Files are processed concurrently (max_concurrency). A value that cannot be
resolved is written as an empty cell and logged; it never stops the file.

Outputs:
  - <stem>_clean.csv per input file ("_raw" is dropped from the stem)
  - cleaning_report.txt with a quality report per file and a run summary
  - cleaning_warnings.log in logs_dir with every corrected or failed value`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and report without writing clean files")
	processCmd.Flags().StringVar(&filePath, "file", "", "Path to a specific file to process")
	processCmd.Flags().StringVar(&datasetCode, "dataset", "", "Process only files of this dataset")
	processCmd.Flags().BoolVar(&extractFirst, "extract", false, "Extract Excel workbooks to raw CSV before cleaning")
}

// =============================================================================
// JOBS
// =============================================================================

// job pairs an input file with its dataset. dataset is nil when no dataset
// matches.
type job struct {
	path    string
	dataset *config.DatasetConfig
}

// selectJobs matches files to datasets.
//
// MATCHING LOGIC:
//   - Without code, each file is matched by its dataset's file patterns.
//   - With code and forced, every file uses that dataset.
//   - With code and not forced, only files matching that dataset are kept.
func selectJobs(files []string, datasets map[string]*config.DatasetConfig, code string, forced bool) ([]job, error) {
	var only *config.DatasetConfig
	if code != "" {
		only = datasets[code]
		if only == nil {
			return nil, fmt.Errorf("unknown dataset %q", code)
		}
	}

	jobs := make([]job, 0, len(files))
	for _, file := range files {
		switch {
		case only != nil && forced:
			jobs = append(jobs, job{path: file, dataset: only})
		case only != nil:
			if only.Matches(file) {
				jobs = append(jobs, job{path: file, dataset: only})
			}
		default:
			jobs = append(jobs, job{path: file, dataset: config.FindDataset(file, datasets)})
		}
	}
	return jobs, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess is the main function that orchestrates the cleaning pipeline.
func runProcess(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	fm := utils.NewFileManager(a.cfg.InputDir, a.cfg.OutputDir, a.cfg.LogsDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: EXTRACT WORKBOOKS
	// =========================================================================

	if extractFirst || a.cfg.ExtractWorkbooks {
		if _, err := extractWorkbooks(fm, "", a.logger); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	var files []string
	if filePath != "" {
		files = []string{filePath}
	} else {
		files, err = fm.DiscoverInputFiles("*.csv")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	jobs, err := selectJobs(files, a.datasets, datasetCode, filePath != "")
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		a.logger.Info("No CSV files to process", zap.String("input_dir", a.cfg.InputDir))
		return nil
	}

	a.logger.Info("Found files to process", zap.Int("count", len(jobs)))

	// =========================================================================
	// STEP 4: PROCESS FILES CONCURRENTLY
	// =========================================================================

	opts := converter.Options{RunID: uuid.NewString(), DryRun: dryRun}
	if a.cfg.Audit.Enabled() && !dryRun {
		sink, err := audit.Open(ctx, a.cfg.Audit, a.logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts.Sink = sink
	}

	results, runErr := processJobs(ctx, a, jobs, opts)

	// =========================================================================
	// STEP 5: REPORT
	// =========================================================================

	summary := utils.RunSummary{
		RunID:     opts.RunID,
		StartTime: startTime,
		EndTime:   time.Now(),
		DryRun:    dryRun,
	}
	for _, result := range results {
		if result.FilePath == "" {
			// not started: an earlier file failed with continue_on_error off
			continue
		}
		fr := utils.FileReport{
			InputFile:  result.FilePath,
			OutputFile: result.OutputFile,
			Dataset:    result.Dataset,
			Rows:       result.Stats.RowsProcessed,
			Success:    result.Success,
			Report:     result.Report,
		}
		if result.Error != nil {
			fr.Error = result.Error.Error()
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
		} else {
			fmt.Printf("  ✓ %s -> %s (%d rows, %d corrected, %d failed)\n",
				filepath.Base(result.FilePath), displayOutput(result.OutputFile),
				result.Stats.RowsProcessed, result.Stats.Corrected, result.Stats.Failed)
		}
		summary.Files = append(summary.Files, fr)
	}

	reportPath, err := utils.WriteReport(summary, a.cfg.OutputDir)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(summary.Files))
	fmt.Printf("Successful:      %d\n", summary.Successful())
	fmt.Printf("Errors:          %d\n", len(summary.Files)-summary.Successful())
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))
	fmt.Printf("Report:          %s\n", reportPath)

	return runErr
}

// processJobs cleans the files with at most max_concurrency at a time.
// Results keep the order of jobs. With continue_on_error off, the first
// failed file cancels the files not yet started and its error is returned.
func processJobs(ctx context.Context, a *app, jobs []job, opts converter.Options) ([]converter.Result, error) {
	results := make([]converter.Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrency)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}

			if j.dataset == nil {
				results[i] = converter.Result{
					FilePath: j.path,
					Error:    fmt.Errorf("no matching dataset configuration found"),
				}
			} else {
				results[i] = converter.New(j.path, j.dataset, a.cfg, a.logger, opts).Run(ctx)
			}

			if !results[i].Success {
				a.logger.Error("File failed",
					zap.String("file", j.path),
					zap.Error(results[i].Error),
				)
				if !a.cfg.ShouldContinueOnError() {
					return fmt.Errorf("%s: %w", filepath.Base(j.path), results[i].Error)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func displayOutput(path string) string {
	if path == "" {
		return "(dry run)"
	}
	return path
}
