// =============================================================================
// Project Data Cleaner - Category Mapper
// =============================================================================
//
// Maps free-form labels onto the fixed vocabularies in tables.go after text
// normalization. Matching is exact; there is no fuzzy fallback.
//
// =============================================================================

package normalize

import "fmt"

// ResolveCategory maps a value onto table. Unknown values fail but keep their
// normalized text so nothing is dropped.
func ResolveCategory(raw RawValue, table CategoryTable) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	normalized := NormalizeText(raw.Text)
	canonical, ok := table.Lookup(normalized)
	if !ok {
		return Text(normalized), Outcome{
			Kind:     OutcomeFailed,
			Original: raw.Text,
			Result:   normalized,
			Reason:   fmt.Sprintf("%q is not in the %s table", normalized, table.Name),
		}
	}

	return settle(raw, Text(canonical), false, fmt.Sprintf("mapped by %s table", table.Name))
}
