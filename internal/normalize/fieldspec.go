// =============================================================================
// Project Data Cleaner - Field Specifications
// =============================================================================
//
// A FieldSpec binds one column to a semantic type and the resolver that
// handles it. A Schema is the immutable set of FieldSpecs for one dataset,
// built once from the dataset config and shared by every record.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for a field type that has no resolver.
var ErrUnknownKind = errors.New("unknown field kind")

// Kind is the semantic type of a field.
type Kind string

const (
	KindText       Kind = "text"
	KindDate       Kind = "date"
	KindCurrency   Kind = "currency"
	KindPercentage Kind = "percentage"
	KindDuration   Kind = "duration"
	KindCategory   Kind = "category"
	KindBoolean    Kind = "boolean"
)

// Kinds lists the supported field kinds.
var Kinds = []Kind{KindText, KindDate, KindCurrency, KindPercentage, KindDuration, KindCategory, KindBoolean}

// ParseKind converts a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// FieldSpec describes how one column is resolved.
type FieldSpec struct {
	// Name is the column header.
	Name string

	// Kind selects the resolver.
	Kind Kind

	// Table names the category table (category fields only).
	Table string

	// Cap is the percentage ceiling (percentage fields only, 0 = 100).
	Cap int

	// Lowercase lowercases free text (text fields only).
	Lowercase bool
}

// Validate checks that the spec can be resolved.
func (f FieldSpec) Validate() error {
	if f.Name == "" {
		return errors.New("field name is required")
	}
	if _, err := ParseKind(string(f.Kind)); err != nil {
		return fmt.Errorf("field %q: %w", f.Name, err)
	}
	if f.Kind == KindCategory {
		if _, err := LookupTable(f.Table); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	if f.Cap < 0 {
		return fmt.Errorf("field %q: cap must not be negative", f.Name)
	}
	return nil
}

// Resolve dispatches raw to the resolver for spec.Kind.
func Resolve(spec FieldSpec, raw RawValue) (CanonicalValue, Outcome) {
	switch spec.Kind {
	case KindText:
		return ResolveText(raw, spec.Lowercase)
	case KindDate:
		return ResolveDate(raw)
	case KindCurrency:
		return ResolveCurrency(raw)
	case KindPercentage:
		return ResolvePercentage(raw, PercentRules{Cap: spec.Cap})
	case KindDuration:
		return ResolveDuration(raw)
	case KindBoolean:
		return ResolveCategory(raw, BooleanTable())
	case KindCategory:
		table, err := LookupTable(spec.Table)
		if err != nil {
			if raw.IsNull() {
				return emptyOutcome(raw)
			}
			return failed(raw, err.Error())
		}
		return ResolveCategory(raw, table)
	default:
		if raw.IsNull() {
			return emptyOutcome(raw)
		}
		return failed(raw, fmt.Sprintf("%v: %q", ErrUnknownKind, spec.Kind))
	}
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is the ordered set of field specs for one dataset.
type Schema struct {
	Dataset string
	fields  []FieldSpec
	index   map[string]int
}

// NewSchema validates fields and builds a schema. All problems are reported
// together.
func NewSchema(dataset string, fields []FieldSpec) (*Schema, error) {
	s := &Schema{
		Dataset: dataset,
		fields:  append([]FieldSpec(nil), fields...),
		index:   make(map[string]int, len(fields)),
	}
	for i, f := range s.fields {
		if _, dup := s.index[f.Name]; dup && f.Name != "" {
			continue
		}
		s.index[f.Name] = i
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports every invalid or duplicated field spec.
func (s *Schema) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("field %q is declared more than once", f.Name))
		}
		seen[f.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("dataset %q: %w", s.Dataset, errors.Join(errs...))
	}
	return nil
}

// Field returns the spec for a column.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Fields returns the specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	return append([]FieldSpec(nil), s.fields...)
}
