// =============================================================================
// Project Data Cleaner - Converter Module
// =============================================================================
//
// This module contains the core cleaning pipeline. It orchestrates the work
// for a single file, from CSV parsing to the clean CSV.
//
// CLEANING PIPELINE:
//   1. Parse the input CSV file
//   2. Resolve every record against the dataset schema
//   3. Finalize: clear null tokens that survived resolution
//   4. Validate the canonical shape of every field
//   5. Generate the clean CSV document
//   6. Write the output file (skipped in dry-run mode)
//   7. Send Failed and Corrected outcomes to the audit sink
//
// CONCURRENCY:
//   Each file is processed by its own Converter with its own ledger. Several
//   converters can run concurrently; they share only the logger and the
//   audit sink, both safe for concurrent use.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/audit"
	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/csvparser"
	"github.com/ginjaninja78/project-data-cleaner/internal/csvwriter"
	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
	"github.com/ginjaninja78/project-data-cleaner/internal/validation"
	"github.com/ginjaninja78/project-data-cleaner/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Dataset is the code of the dataset the file was matched to.
	Dataset string

	// OutputFile is the path to the clean CSV file.
	// This is empty if processing failed or in dry-run mode.
	OutputFile string

	// Success indicates whether the processing was successful.
	// Failed values do not make a file unsuccessful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Report is the quality report of the file.
	Report ledger.QualityReport

	// Ledger holds every outcome of the file.
	Ledger *ledger.Ledger

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows read.
	RowsProcessed int

	// ShortRows is the number of rows with fewer cells than headers.
	ShortRows int

	// Corrected is the number of values repaired.
	Corrected int

	// Failed is the number of values that could not be resolved.
	Failed int

	// NullResidue is the number of null tokens cleared by Finalize.
	NullResidue int

	// ValidationErrors is the number of shape errors found after Finalize.
	ValidationErrors int

	// AuditRows is the number of rows sent to the audit sink.
	AuditRows int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options controls a converter run.
type Options struct {
	// RunID identifies the run in audit rows and output names.
	RunID string

	// DryRun skips writing the clean file.
	DryRun bool

	// Sink receives the audit trail. Nil disables auditing.
	Sink audit.Sink
}

// Converter handles the cleaning of a single CSV file.
type Converter struct {
	// csvPath is the path to the input CSV file.
	csvPath string

	// dataset is the configuration of the dataset the file belongs to.
	dataset *config.DatasetConfig

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	opts   Options
	logger *zap.Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - csvPath: The path to the input CSV file.
//   - dataset: The dataset configuration matched to the file.
//   - mainConfig: The main application configuration.
//   - logger: The application logger.
//   - opts: Run options.
//
// RETURNS:
//   - A new Converter instance.
func New(csvPath string, dataset *config.DatasetConfig, mainConfig *config.MainConfig, logger *zap.Logger, opts Options) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		csvPath:    csvPath,
		dataset:    dataset,
		mainConfig: mainConfig,
		opts:       opts,
		logger: logger.With(
			zap.String("file", filepath.Base(csvPath)),
			zap.String("dataset", dataset.DatasetCode),
		),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the cleaning pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{
		FilePath: c.csvPath,
		Dataset:  c.dataset.DatasetCode,
		Ledger:   ledger.New(),
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Info("Processing file", zap.String("path", c.csvPath))

	// =========================================================================
	// STEP 1: PARSE INPUT CSV
	// =========================================================================

	csvData, err := csvparser.Parse(c.csvPath, c.dataset.CSVSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse CSV: %w", err)
		return result
	}

	result.Stats.RowsProcessed = csvData.RowCount()
	result.Stats.ShortRows = csvData.ShortRows
	c.logger.Debug("Parsed CSV",
		zap.Int("rows", csvData.RowCount()),
		zap.Int("short_rows", csvData.ShortRows),
		zap.Strings("headers", csvData.Headers),
	)

	schema := c.dataset.Schema()
	c.warnMissingColumns(schema, csvData.Headers)

	// =========================================================================
	// STEP 2: RESOLVE RECORDS
	// =========================================================================

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	resolver := NewResolver(schema, csvData.Headers, "", c.logger)
	records := resolver.ResolveAll(result.Ledger, csvData.Records)

	// =========================================================================
	// STEP 3: FINALIZE
	// =========================================================================

	residue := validation.Finalize(records, result.Ledger)
	result.Stats.NullResidue = len(residue)
	for _, ve := range residue {
		c.logger.Warn("Cleared null token left in output",
			zap.String("field", ve.Field),
			zap.Int("row", ve.RowNumber),
			zap.String("original", ve.Value),
		)
	}

	// =========================================================================
	// STEP 4: VALIDATE
	// =========================================================================

	validationResult := validation.NewValidator(schema).ValidateAll(records)
	result.Stats.ValidationErrors = validationResult.ErrorCount
	for _, ve := range validationResult.Errors {
		if ve.Severity == validation.SeverityError {
			c.logger.Error("Validation error", zap.String("error", ve.Error()))
		}
	}

	result.Stats.Failed = len(result.Ledger.Entries(normalize.OutcomeFailed))
	result.Stats.Corrected = len(result.Ledger.Entries(normalize.OutcomeCorrected))

	// =========================================================================
	// STEP 5: GENERATE CSV DOCUMENT
	// =========================================================================

	options := csvwriter.DefaultGenerateOptions()
	options.Delimiter = csvparser.Delimiter(c.dataset.CSVSettings.OutputDelimiter)

	doc, err := csvwriter.GenerateWithOptions(csvData.Headers, records, options)
	if err != nil {
		result.Error = fmt.Errorf("failed to generate CSV: %w", err)
		return result
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILE
	// =========================================================================

	if c.opts.DryRun {
		c.logger.Info("Dry run, output not written")
	} else {
		outputPath, err := c.writeOutput(doc)
		if err != nil {
			result.Error = fmt.Errorf("failed to write output: %w", err)
			return result
		}
		result.OutputFile = outputPath
		c.logger.Info("Wrote output", zap.String("path", outputPath))
	}

	// =========================================================================
	// STEP 7: AUDIT
	// =========================================================================

	if c.opts.Sink != nil && !c.opts.DryRun {
		ops := audit.Operations(c.opts.RunID, c.dataset.DatasetCode, c.csvPath, result.Ledger, time.Now().UTC())
		if err := c.opts.Sink.Write(ctx, ops); err != nil {
			// The clean file is already written.
			c.logger.Error("Failed to write audit rows", zap.Error(err))
		} else {
			result.Stats.AuditRows = len(ops)
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Report = result.Ledger.Report(filepath.Base(c.csvPath))
	result.Success = true

	c.logger.Info("File cleaned",
		zap.Int("rows", result.Stats.RowsProcessed),
		zap.Int("corrected", result.Stats.Corrected),
		zap.Int("failed", result.Stats.Failed),
	)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// warnMissingColumns logs schema fields that the file does not have. Such
// fields are not resolved and do not appear in the output.
func (c *Converter) warnMissingColumns(schema *normalize.Schema, headers []string) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, spec := range schema.Fields() {
		if !present[spec.Name] {
			c.logger.Warn("Configured column not found in file", zap.String("field", spec.Name))
		}
	}
}

// OutputPath returns the path the clean file is written to.
func (c *Converter) OutputPath() string {
	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, map[string]string{
		"stem":    utils.FileStem(c.csvPath),
		"dataset": c.dataset.DatasetCode,
	})
	return filepath.Join(c.mainConfig.OutputDir, fileName)
}

// writeOutput writes the clean CSV to the output directory.
func (c *Converter) writeOutput(doc []byte) (string, error) {
	outputPath := c.OutputPath()
	if err := utils.WriteFile(outputPath, doc); err != nil {
		return "", err
	}
	return outputPath, nil
}
