// =============================================================================
// Project Data Cleaner - Transformation Ledger
// =============================================================================
//
// The ledger records one outcome per (row, field) resolved during a file run
// and builds the per-field quality report from them.
//
// OWNERSHIP:
//   A Ledger belongs to exactly one file run and is passed explicitly to the
//   code that resolves records. It is not safe for concurrent use. Ledgers of
//   independent runs are combined with Merge after the runs finish.
//
// AUDIT TRAIL:
//   Entries(normalize.OutcomeFailed, normalize.OutcomeCorrected) returns the
//   rows that need review, in the order they were recorded.
//
// =============================================================================

package ledger

import (
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// Entry is one recorded outcome.
type Entry struct {
	// Row is the 1-based data row number in the source file.
	Row int

	// Field is the column header.
	Field string

	// Outcome is what happened to the value.
	Outcome normalize.Outcome
}

type entryKey struct {
	row   int
	field string
}

// Ledger accumulates outcomes for one file run.
type Ledger struct {
	entries []Entry
	index   map[entryKey]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{index: make(map[entryKey]int)}
}

// Record appends an outcome for (row, field).
func (l *Ledger) Record(row int, field string, o normalize.Outcome) {
	if l.index == nil {
		l.index = make(map[entryKey]int)
	}
	l.index[entryKey{row, field}] = len(l.entries)
	l.entries = append(l.entries, Entry{Row: row, Field: field, Outcome: o})
}

// Override replaces the latest outcome recorded for (row, field), or records
// it when there is none.
func (l *Ledger) Override(row int, field string, o normalize.Outcome) {
	if i, ok := l.index[entryKey{row, field}]; ok {
		l.entries[i].Outcome = o
		return
	}
	l.Record(row, field, o)
}

// Lookup returns the latest outcome recorded for (row, field).
func (l *Ledger) Lookup(row int, field string) (normalize.Outcome, bool) {
	i, ok := l.index[entryKey{row, field}]
	if !ok {
		return normalize.Outcome{}, false
	}
	return l.entries[i].Outcome, true
}

// Len returns the number of recorded outcomes.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns the recorded entries whose kind is in kinds, in recording
// order. With no kinds every entry is returned.
func (l *Ledger) Entries(kinds ...normalize.OutcomeKind) []Entry {
	if len(kinds) == 0 {
		return append([]Entry(nil), l.entries...)
	}

	wanted := make(map[normalize.OutcomeKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var out []Entry
	for _, e := range l.entries {
		if wanted[e.Outcome.Kind] {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards every recorded outcome.
func (l *Ledger) Reset() {
	l.entries = nil
	l.index = make(map[entryKey]int)
}

// Merge appends the entries of other. other is left untouched.
//
// Merged entries count in Report and Entries but are not indexed: Lookup and
// Override only address outcomes recorded on l itself, since row numbers of
// different files overlap.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	l.entries = append(l.entries, other.entries...)
}

// Report builds the quality report for file from the recorded outcomes.
func (l *Ledger) Report(file string) QualityReport {
	report := QualityReport{File: file, fields: make(map[string]*FieldStats)}
	for _, e := range l.entries {
		report.add(e.Field, e.Outcome)
	}
	return report
}
