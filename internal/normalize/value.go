// =============================================================================
// Project Data Cleaner - Value Model
// =============================================================================
//
// This file defines the values that flow through the normalization engine:
//   - RawValue:       a cell as read from the source file
//   - CanonicalValue: the typed, normalized value written to the output
//   - Outcome:        what happened to one value during resolution
//
// A raw cell can be absent (the row was shorter than the header), empty,
// a null-equivalent token ("nan", "NULL", "n/a", ...) or real text. These are
// distinct cases and are compared explicitly; nothing relies on a sentinel.
//
// =============================================================================

package normalize

import (
	"strconv"
	"strings"
)

// =============================================================================
// RAW VALUES
// =============================================================================

// RawKind classifies a raw cell before any type-specific parsing.
type RawKind int

const (
	// RawAbsent means the column was missing from the row.
	RawAbsent RawKind = iota

	// RawEmpty means the cell was empty or contained only whitespace.
	RawEmpty

	// RawNullToken means the cell held a null-equivalent token such as "nan".
	RawNullToken

	// RawText means the cell holds a value that must be resolved.
	RawText
)

// String returns the name of the raw kind.
func (k RawKind) String() string {
	switch k {
	case RawAbsent:
		return "absent"
	case RawEmpty:
		return "empty"
	case RawNullToken:
		return "null_token"
	default:
		return "text"
	}
}

// RawValue is an input cell.
type RawValue struct {
	// Text is the cell content exactly as read.
	Text string

	// Present is false when the row had no cell for the column.
	Present bool
}

// Raw wraps a cell that was present in the source row.
func Raw(s string) RawValue {
	return RawValue{Text: s, Present: true}
}

// Absent returns the value of a column missing from the source row.
func Absent() RawValue {
	return RawValue{}
}

// Kind classifies the raw value. Null detection is case-insensitive and
// ignores surrounding whitespace.
func (v RawValue) Kind() RawKind {
	if !v.Present {
		return RawAbsent
	}
	trimmed := strings.TrimSpace(v.Text)
	if trimmed == "" {
		return RawEmpty
	}
	if IsNullToken(trimmed) {
		return RawNullToken
	}
	return RawText
}

// IsNull reports whether the value is absent, empty or a null-equivalent token.
func (v RawValue) IsNull() bool {
	return v.Kind() != RawText
}

// Trimmed returns the cell text without surrounding whitespace.
func (v RawValue) Trimmed() string {
	return strings.TrimSpace(v.Text)
}

// =============================================================================
// CANONICAL VALUES
// =============================================================================

// ValueKind is the representation of a canonical value.
type ValueKind int

const (
	// ValueEmpty is the canonical empty value, written as "".
	ValueEmpty ValueKind = iota

	// ValueText is a string value: ISO date, "NN%", category token, free text.
	ValueText

	// ValueNumber is a float value: currency amount or fractional hours.
	ValueNumber
)

// CanonicalValue is the normalized output for one field.
type CanonicalValue struct {
	kind   ValueKind
	text   string
	number float64
	places int
}

// Empty returns the canonical empty value.
func Empty() CanonicalValue {
	return CanonicalValue{kind: ValueEmpty}
}

// Text returns a canonical string value. An empty string yields Empty().
func Text(s string) CanonicalValue {
	if s == "" {
		return Empty()
	}
	return CanonicalValue{kind: ValueText, text: s}
}

// Number returns a canonical numeric value rendered with the given number of
// decimal places. A negative places value renders the shortest representation.
func Number(f float64, places int) CanonicalValue {
	return CanonicalValue{kind: ValueNumber, number: f, places: places}
}

// Kind returns the representation of the value.
func (v CanonicalValue) Kind() ValueKind {
	return v.kind
}

// IsEmpty reports whether the value is the canonical empty value.
func (v CanonicalValue) IsEmpty() bool {
	return v.kind == ValueEmpty
}

// Float returns the numeric value, if the value is numeric.
func (v CanonicalValue) Float() (float64, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	return v.number, true
}

// String renders the value as it is written to the output file.
func (v CanonicalValue) String() string {
	switch v.kind {
	case ValueText:
		return v.text
	case ValueNumber:
		return strconv.FormatFloat(v.number, 'f', v.places, 64)
	default:
		return ""
	}
}

// =============================================================================
// OUTCOMES
// =============================================================================

// OutcomeKind classifies what happened to a value during resolution.
type OutcomeKind int

const (
	// OutcomeUnchanged means the input was already canonical.
	OutcomeUnchanged OutcomeKind = iota

	// OutcomeCorrected means the input was out of range or ambiguous and was repaired.
	OutcomeCorrected

	// OutcomeStandardized means the input was valid but in a non-canonical format.
	OutcomeStandardized

	// OutcomeFailed means no supported layout or locale rule could parse the input.
	OutcomeFailed

	// OutcomeEmpty means the input was null-equivalent. It is not an error.
	OutcomeEmpty
)

// OutcomeKinds lists every kind in report order.
var OutcomeKinds = []OutcomeKind{OutcomeUnchanged, OutcomeCorrected, OutcomeStandardized, OutcomeFailed, OutcomeEmpty}

// String returns the name used in logs, reports and the audit table.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCorrected:
		return "corrected"
	case OutcomeStandardized:
		return "standardized"
	case OutcomeFailed:
		return "failed"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether the kind counts towards the success rate.
func (k OutcomeKind) IsSuccess() bool {
	return k != OutcomeFailed
}

// Outcome records the resolution of one (record, field) value.
// Outcomes are never mutated after creation.
type Outcome struct {
	Kind     OutcomeKind
	Original string
	Result   string
	Reason   string
}

// emptyOutcome is returned by every resolver for null-equivalent input.
func emptyOutcome(raw RawValue) (CanonicalValue, Outcome) {
	return Empty(), Outcome{
		Kind:     OutcomeEmpty,
		Original: raw.Text,
		Reason:   "null-equivalent input (" + raw.Kind().String() + ")",
	}
}

// failed builds a Failed outcome that degrades to the canonical empty value.
func failed(raw RawValue, reason string) (CanonicalValue, Outcome) {
	return Empty(), Outcome{
		Kind:     OutcomeFailed,
		Original: raw.Text,
		Reason:   reason,
	}
}

// settle classifies a successful resolution: Corrected when a repair was made,
// Unchanged when the canonical form equals the trimmed input, Standardized
// otherwise.
func settle(raw RawValue, value CanonicalValue, repaired bool, reason string) (CanonicalValue, Outcome) {
	out := Outcome{
		Original: raw.Text,
		Result:   value.String(),
		Reason:   reason,
	}
	switch {
	case repaired:
		out.Kind = OutcomeCorrected
	case out.Result == raw.Trimmed():
		out.Kind = OutcomeUnchanged
		out.Reason = ""
	default:
		out.Kind = OutcomeStandardized
	}
	return value, out
}
