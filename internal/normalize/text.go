// =============================================================================
// Project Data Cleaner - Text Normalizer
// =============================================================================
//
// Accent stripping, case folding and null-token canonicalization.
//
// The normalizer is applied before category lookups and any accent-sensitive
// comparison. It is NOT applied before numeric or date parsing, which depend
// on the original digit and punctuation positions.
//
// =============================================================================

package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nullTokens are the lowercase spellings of "no value".
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
}

// NullTokens returns the null-equivalent tokens in lowercase form.
func NullTokens() []string {
	return []string{"", "nan", "null", "none", "n/a"}
}

// stripMarks decomposes to NFD, drops combining marks and recomposes.
// transform.Chain is stateful, so a fresh chain is built per call.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// NormalizeText strips diacritics, lowercases, trims and collapses runs of
// whitespace to a single space.
//
// EXAMPLE:
//
//	"  Média " -> "media"
//	"EM  Espera" -> "em espera"
func NormalizeText(raw string) string {
	folded := strings.ToLower(stripMarks(raw))
	return strings.Join(strings.Fields(folded), " ")
}

// IsNullToken reports whether raw is a null-equivalent token.
func IsNullToken(raw string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// CanonicalNull returns "" for null-equivalent input and raw otherwise.
func CanonicalNull(raw string) string {
	if IsNullToken(raw) {
		return ""
	}
	return raw
}

// ResolveText resolves a free-text field: whitespace is trimmed and
// collapsed, and the value is lowercased when lowercase is set.
func ResolveText(raw RawValue, lowercase bool) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	cleaned := strings.Join(strings.Fields(raw.Text), " ")
	if lowercase {
		cleaned = strings.ToLower(cleaned)
	}

	return settle(raw, Text(cleaned), false, "whitespace/case normalized")
}
