// =============================================================================
// Project Data Cleaner - Validation Engine
// =============================================================================
//
// This module checks cleaned records before they are written:
//   - Null residue: no output field may hold a null-equivalent token other
//     than "" ("nan", "NULL", "None", "n/a"). Finalize repairs residue and
//     records it in the ledger as Failed.
//   - Canonical shape: each field matches the format of its kind
//     (YYYY-MM-DD, 2-decimal amounts, "NN%", table tokens, ...).
//
// ERROR HANDLING:
//   - Errors are collected, not thrown immediately
//   - Each error includes the row, field and value
//   - Shape mismatches of Failed categorical values are warnings, since the
//     normalized text is kept on purpose; everything else is an error
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
	"github.com/ginjaninja78/project-data-cleaner/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation error.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the column that failed validation.
	Field string

	// Value is the output value that failed validation.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RowNumber is the data row number.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors (warnings allowed).
	IsValid bool

	// Errors contains all validation errors, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// FieldsValidated is the number of fields checked.
	FieldsValidated int

	// RecordsValidated is the number of records checked.
	RecordsValidated int
}

func (r *ValidationResult) add(errs ...*ValidationError) {
	for _, e := range errs {
		r.Errors = append(r.Errors, e)
		if e.Severity == SeverityWarning {
			r.WarningCount++
		} else {
			r.ErrorCount++
		}
	}
}

// =============================================================================
// NULL RESIDUE
// =============================================================================

// FindNullResidue returns one error per output field holding a
// null-equivalent token other than "".
func FindNullResidue(records []types.CleanRecord) []*ValidationError {
	var errs []*ValidationError
	for _, record := range records {
		for _, field := range sortedFields(record) {
			value := record.Fields[field]
			if value != "" && normalize.IsNullToken(value) {
				errs = append(errs, &ValidationError{
					Severity:  SeverityError,
					Field:     field,
					Value:     value,
					Rule:      "null_residue",
					Message:   "null-equivalent token in output",
					RowNumber: record.RowNumber,
				})
			}
		}
	}
	return errs
}

// Finalize replaces every surviving null-equivalent token with "" and records
// the replacement as a Failed outcome. It returns the cleared residue.
// After Finalize, FindNullResidue(records) is empty.
func Finalize(records []types.CleanRecord, l *ledger.Ledger) []*ValidationError {
	residue := FindNullResidue(records)
	for _, e := range residue {
		for _, record := range records {
			if record.RowNumber != e.RowNumber {
				continue
			}
			record.Fields[e.Field] = ""
		}
		l.Override(e.RowNumber, e.Field, normalize.Outcome{
			Kind:     normalize.OutcomeFailed,
			Original: e.Value,
			Result:   "",
			Reason:   "null-equivalent token survived resolution",
		})
	}
	return residue
}

func sortedFields(record types.CleanRecord) []string {
	fields := make([]string, 0, len(record.Fields))
	for field := range record.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks cleaned records against a dataset schema.
type Validator struct {
	schema *normalize.Schema
}

// NewValidator creates a new Validator instance.
func NewValidator(schema *normalize.Schema) *Validator {
	return &Validator{schema: schema}
}

// ValidateAll validates every record and returns a detailed result.
func (v *Validator) ValidateAll(records []types.CleanRecord) *ValidationResult {
	result := &ValidationResult{}

	result.add(FindNullResidue(records)...)

	for _, record := range records {
		result.RecordsValidated++
		for _, spec := range v.schema.Fields() {
			value, ok := record.Fields[spec.Name]
			if !ok {
				continue
			}
			result.FieldsValidated++
			result.add(v.ValidateField(value, spec, record.RowNumber)...)
		}
	}

	result.IsValid = result.ErrorCount == 0
	return result
}

// ValidateField checks that value has the canonical shape of spec.Kind.
// The empty value is valid for every kind.
func (v *Validator) ValidateField(value string, spec normalize.FieldSpec, row int) []*ValidationError {
	if value == "" {
		return nil
	}

	msg, severity := validateDataType(value, spec)
	if msg == "" {
		return nil
	}
	return []*ValidationError{{
		Severity:  severity,
		Field:     spec.Name,
		Value:     value,
		Rule:      string(spec.Kind),
		Message:   msg,
		RowNumber: row,
	}}
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

var (
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	amountPattern   = regexp.MustCompile(`^-?\d+\.\d{2}$`)
	percentPattern  = regexp.MustCompile(`^(\d+)%$`)
	durationPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// validateDataType returns an error message and severity, or "" when value
// has the canonical shape of spec.Kind.
func validateDataType(value string, spec normalize.FieldSpec) (string, string) {
	switch spec.Kind {
	case normalize.KindDate:
		return validateDate(value), SeverityError
	case normalize.KindCurrency:
		if !amountPattern.MatchString(value) {
			return "amount must have exactly 2 decimals", SeverityError
		}
	case normalize.KindPercentage:
		return validatePercentage(value, spec.Cap), SeverityError
	case normalize.KindDuration:
		if !durationPattern.MatchString(value) {
			return "duration must be non-negative hours with at most 2 decimals", SeverityError
		}
	case normalize.KindBoolean:
		return validateToken(value, normalize.BooleanTable()), SeverityWarning
	case normalize.KindCategory:
		table, err := normalize.LookupTable(spec.Table)
		if err != nil {
			return err.Error(), SeverityError
		}
		return validateToken(value, table), SeverityWarning
	case normalize.KindText:
		if value != strings.Join(strings.Fields(value), " ") {
			return "text has untrimmed or repeated whitespace", SeverityError
		}
	}
	return "", ""
}

func validateDate(value string) string {
	if !isoDatePattern.MatchString(value) {
		return "date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return "date is not a valid calendar date"
	}
	return ""
}

func validatePercentage(value string, cap int) string {
	m := percentPattern.FindStringSubmatch(value)
	if m == nil {
		return "percentage must be an integer followed by %"
	}
	if cap <= 0 {
		cap = normalize.DefaultPercentCap
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > cap {
		return fmt.Sprintf("percentage above %d%%", cap)
	}
	return ""
}

func validateToken(value string, table normalize.CategoryTable) string {
	for _, token := range table.Tokens() {
		if token == value {
			return ""
		}
	}
	return fmt.Sprintf("value is not a %s token", table.Name)
}
