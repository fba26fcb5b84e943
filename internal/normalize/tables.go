// =============================================================================
// Project Data Cleaner - Category Tables
// =============================================================================
//
// Closed vocabularies for categorical fields. Every synonym is stored in its
// normalized form (see NormalizeText) so lookups are accent and case
// insensitive.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTable is returned when a dataset references a table that does
// not exist.
var ErrUnknownTable = errors.New("unknown category table")

// CategoryTable maps normalized synonyms to canonical tokens.
type CategoryTable struct {
	// Name is the identifier used in dataset configs.
	Name string

	tokens  []string
	entries map[string]string
}

// newCategoryTable builds a table from canonical -> synonyms. The canonical
// token always maps to itself.
func newCategoryTable(name string, synonyms map[string][]string) CategoryTable {
	t := CategoryTable{
		Name:    name,
		entries: make(map[string]string),
	}
	for canonical, words := range synonyms {
		t.tokens = append(t.tokens, canonical)
		t.entries[NormalizeText(canonical)] = canonical
		for _, w := range words {
			t.entries[NormalizeText(w)] = canonical
		}
	}
	sort.Strings(t.tokens)
	return t
}

// Lookup returns the canonical token for an already normalized input.
func (t CategoryTable) Lookup(normalized string) (string, bool) {
	canonical, ok := t.entries[normalized]
	return canonical, ok
}

// Tokens returns the canonical tokens in sorted order.
func (t CategoryTable) Tokens() []string {
	out := make([]string, len(t.tokens))
	copy(out, t.tokens)
	return out
}

var (
	priorityTable = newCategoryTable("priority", map[string][]string{
		"media":   {"medium", "med"},
		"baixa":   {"low"},
		"alta":    {"high"},
		"urgente": {"urgent"},
	})

	statusTable = newCategoryTable("status", map[string][]string{
		"critico":  {"critical", "critique"},
		"atrasado": {"delayed", "late"},
		"em dia":   {"on schedule", "on time", "on track"},
		"pausado": {
			"on hold", "em espera", "aguardando", "waiting", "pending",
			"hold", "paused", "suspenso", "suspended",
		},
	})

	booleanTable = newCategoryTable("boolean", map[string][]string{
		"s": {"sim", "yes", "y", "true", "1", "x"},
		"n": {"nao", "no", "false", "0"},
	})

	tablesByName = map[string]CategoryTable{
		priorityTable.Name: priorityTable,
		statusTable.Name:   statusTable,
		booleanTable.Name:  booleanTable,
	}
)

// PriorityTable returns the priority vocabulary {media, baixa, alta, urgente}.
func PriorityTable() CategoryTable { return priorityTable }

// StatusTable returns the status vocabulary {critico, atrasado, em dia, pausado}.
func StatusTable() CategoryTable { return statusTable }

// BooleanTable returns the yes/no vocabulary {s, n}.
func BooleanTable() CategoryTable { return booleanTable }

// LookupTable returns the table registered under name.
func LookupTable(name string) (CategoryTable, error) {
	t, ok := tablesByName[name]
	if !ok {
		return CategoryTable{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// TableNames returns the registered table names in sorted order.
func TableNames() []string {
	names := make([]string, 0, len(tablesByName))
	for name := range tablesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
