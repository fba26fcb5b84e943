// =============================================================================
// Project Data Cleaner - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser
//   - converter
//   - validation
//   - csvwriter
//
// =============================================================================

package types

import "github.com/ginjaninja78/project-data-cleaner/internal/normalize"

// =============================================================================
// RECORD TYPES
// =============================================================================

// Record is one data row as read from the source file.
type Record struct {
	// RowNumber is the 1-based index of the row among data rows.
	// Ledger entries and log lines refer to this number.
	RowNumber int

	// LineNumber is the 1-based physical row in the file, header included.
	LineNumber int

	// Values maps column header to the raw cell. Columns missing from a short
	// row are present as normalize.Absent().
	Values map[string]normalize.RawValue
}

// Value returns the raw cell for header, or Absent when the column is unknown.
func (r Record) Value(header string) normalize.RawValue {
	v, ok := r.Values[header]
	if !ok {
		return normalize.Absent()
	}
	return v
}

// CleanRecord is one resolved row, ready to be written.
type CleanRecord struct {
	// RowNumber matches the Record it was resolved from.
	RowNumber int

	// Fields maps column header to the canonical output string.
	Fields map[string]string
}
