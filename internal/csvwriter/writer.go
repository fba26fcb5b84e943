// =============================================================================
// Project Data Cleaner - CSV Writer Module
// =============================================================================
//
// This module renders cleaned records back to CSV. The output keeps the
// header order of the input file and writes every null representation as an
// empty cell.
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ginjaninja78/project-data-cleaner/internal/types"
)

// =============================================================================
// CSV GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for CSV generation.
type GenerateOptions struct {
	// Delimiter separates the output fields.
	// Default: ','
	Delimiter rune

	// UseCRLF ends lines with \r\n instead of \n.
	// Default: false
	UseCRLF bool

	// IncludeHeader writes the header row first.
	// Default: true
	IncludeHeader bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Delimiter:     ',',
		UseCRLF:       false,
		IncludeHeader: true,
	}
}

// =============================================================================
// CSV GENERATION FUNCTIONS
// =============================================================================

// Generate renders the records with the default options.
func Generate(headers []string, records []types.CleanRecord) ([]byte, error) {
	return GenerateWithOptions(headers, records, DefaultGenerateOptions())
}

// GenerateRows renders plain rows as CSV, without a separate header. Rows
// shorter than width are padded with empty cells.
func GenerateRows(rows [][]string, width int, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	w := newWriter(&buffer, options)
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buffer.Bytes(), nil
}

// GenerateWithOptions renders the records as CSV.
//
// PARAMETERS:
//   - headers: The column order of the output.
//   - records: The cleaned records. Missing fields are written empty.
//   - options: Output formatting.
//
// RETURNS:
//   - The CSV document as a byte slice.
//   - An error if writing fails.
func GenerateWithOptions(headers []string, records []types.CleanRecord, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	w := newWriter(&buffer, options)
	if options.IncludeHeader {
		if err := w.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := make([]string, len(headers))
	for _, record := range records {
		for i, header := range headers {
			row[i] = record.Fields[header]
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", record.RowNumber, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buffer.Bytes(), nil
}

func newWriter(out io.Writer, options GenerateOptions) *csv.Writer {
	w := csv.NewWriter(out)
	if options.Delimiter != 0 {
		w.Comma = options.Delimiter
	}
	w.UseCRLF = options.UseCRLF
	return w
}
