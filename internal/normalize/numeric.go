// =============================================================================
// Project Data Cleaner - Numeric Locale Resolver
// =============================================================================
//
// Resolves monetary amounts written in Brazilian ("16.591,06") or US
// ("25,000.00") conventions to a float rounded to two decimal places.
//
// RESOLUTION STEPS:
//   1. Strip currency symbols, letter-bearing parenthetical annotations such
//      as "(estim,)" and all whitespace.
//   2. Repair keyboard typos inside numeric runs (O -> 0, I/l -> 1).
//   3. Detect which separator is the decimal separator.
//   4. Parse and round half away from zero to 2 places.
//
// SEPARATOR RULES:
//   - Both "." and ",": the rightmost one is the decimal separator and the
//     other one is a thousands separator.
//   - A single separator occurring once with 1-2 trailing digits is a decimal
//     separator ("68,91", "1.43").
//   - A single separator occurring once with 3 or more trailing digits is a
//     thousands separator ("1.234" -> 1234, "1.2345" -> 12345), unless the
//     integer part is zero or missing ("0,956" -> 0.956).
//   - A separator repeated in 3-digit groups is a thousands separator
//     ("1.234.567"). Other repeated groupings are rejected.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currencySymbols are removed before parsing. Longer symbols come first so
// "R$" is not left behind as "R".
var currencySymbols = []string{"R$", "US$", "$"}

// annotationPattern matches parenthetical notes that contain a letter,
// e.g. "(estim,)" or "(aprox.)". Purely numeric parentheses are kept since
// they denote a negative amount.
var annotationPattern = regexp.MustCompile(`\([^()]*\p{L}[^()]*\)`)

// typoDigits maps letters commonly typed in place of digits.
var typoDigits = map[rune]rune{
	'O': '0',
	'o': '0',
	'I': '1',
	'l': '1',
}

var errNotNumeric = errors.New("not a numeric value")

// amountToken is the cleaned form of a monetary string.
type amountToken struct {
	digits    string
	negative  bool
	hadSymbol bool
	repaired  bool
}

// cleanAmount strips symbols, annotations and whitespace and repairs typos.
func cleanAmount(text string) amountToken {
	var tok amountToken

	s := annotationPattern.ReplaceAllString(text, "")
	for _, symbol := range currencySymbols {
		if strings.Contains(s, symbol) {
			tok.hadSymbol = true
			s = strings.ReplaceAll(s, symbol, "")
		}
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	// Accounting negative: "(1.234,56)".
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		tok.negative = true
	}

	tok.digits, tok.repaired = fixTypos(s)
	return tok
}

// fixTypos replaces typo letters that sit inside a numeric run. A letter is
// replaced when both neighbours are numeric, or when it is at the edge of the
// token next to a numeric rune. Tokens without any real digit are left alone.
func fixTypos(s string) (string, bool) {
	rs := []rune(s)
	if !containsDigit(rs) {
		return s, false
	}

	numeric := func(i int) bool {
		if i < 0 || i >= len(rs) {
			return false
		}
		r := rs[i]
		_, typo := typoDigits[r]
		return unicode.IsDigit(r) || r == '.' || r == ',' || typo
	}

	out := make([]rune, len(rs))
	copy(out, rs)
	changed := false

	for i, r := range rs {
		digit, ok := typoDigits[r]
		if !ok {
			continue
		}
		left, right := numeric(i-1), numeric(i+1)
		edge := i == 0 || i == len(rs)-1 || rs[i-1] == '-' || rs[i-1] == '+'
		if (left && right) || (edge && (left || right)) {
			out[i] = digit
			changed = true
		}
	}

	return string(out), changed
}

func containsDigit(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// parseLocaleNumber parses a signed number written with Brazilian or US
// separators. The input must already be free of symbols and whitespace.
func parseLocaleNumber(s string) (decimal.Decimal, error) {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	if s == "" {
		return decimal.Zero, errNotNumeric
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != ',' {
			return decimal.Zero, fmt.Errorf("%w: unexpected character %q", errNotNumeric, r)
		}
	}
	if !containsDigit([]rune(s)) {
		return decimal.Zero, errNotNumeric
	}

	plain, err := resolveSeparators(s)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := decimal.NewFromString(sign + plain)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errNotNumeric, err)
	}
	return d, nil
}

// resolveSeparators rewrites s so that "." is the only (decimal) separator.
func resolveSeparators(s string) (string, error) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep, thousandsSep := ",", "."
		pos := lastComma
		if lastDot > lastComma {
			decimalSep, thousandsSep = ".", ","
			pos = lastDot
		}
		if strings.Count(s, decimalSep) > 1 {
			return "", fmt.Errorf("%w: repeated decimal separator %q", errNotNumeric, decimalSep)
		}
		intPart := strings.ReplaceAll(s[:pos], thousandsSep, "")
		return withLeadingZero(intPart) + "." + s[pos+1:], nil
	case lastComma >= 0:
		return singleSeparator(s, ",")
	case lastDot >= 0:
		return singleSeparator(s, ".")
	default:
		return s, nil
	}
}

// singleSeparator resolves a string that uses only one kind of separator.
func singleSeparator(s, sep string) (string, error) {
	parts := strings.Split(s, sep)
	last := parts[len(parts)-1]

	if len(parts) == 2 {
		// A zero or missing integer part is never thousands-grouped: "0,956".
		if len(last) <= 2 || strings.Trim(parts[0], "0") == "" {
			if last == "" {
				return withLeadingZero(parts[0]), nil
			}
			return withLeadingZero(parts[0]) + "." + last, nil
		}
		return parts[0] + last, nil
	}

	if parts[0] == "" {
		return "", fmt.Errorf("%w: %q starts with a thousands separator", errNotNumeric, s)
	}
	for _, group := range parts[1:] {
		if len(group) != 3 {
			return "", fmt.Errorf("%w: ambiguous grouping in %q", errNotNumeric, s)
		}
	}
	return strings.Join(parts, ""), nil
}

// parseFraction parses a value known to be a fraction, such as the
// currency-shaped "R$ 0,955", reading its only separator as the decimal one.
func parseFraction(s string) (decimal.Decimal, bool) {
	if strings.Count(s, ".")+strings.Count(s, ",") != 1 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func withLeadingZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// ResolveCurrency resolves a monetary amount to a float with 2 decimals.
//
// EXAMPLES:
//
//	"R$ 16.591,06"   -> 16591.06 (Standardized)
//	"25,000.00"      -> 25000.00 (Standardized)
//	"R$ 25.000,0O"   -> 25000.00 (Corrected, typo repaired)
//	"16591.06"       -> 16591.06 (Unchanged)
//	"abc"            -> ""       (Failed)
func ResolveCurrency(raw RawValue) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	tok := cleanAmount(raw.Trimmed())
	if tok.digits == "" {
		return failed(raw, "no numeric content after removing symbols and annotations")
	}

	d, err := parseLocaleNumber(tok.digits)
	if err != nil {
		return failed(raw, fmt.Sprintf("could not parse currency: %v", err))
	}
	if tok.negative {
		d = d.Neg()
	}

	amount := d.Round(2).InexactFloat64()
	if amount == 0 {
		amount = 0 // drop negative zero
	}

	reason := "locale separators resolved"
	if tok.repaired {
		reason = fmt.Sprintf("typo substitution %q -> %q", raw.Trimmed(), tok.digits)
	}
	return settle(raw, Number(amount, 2), tok.repaired, reason)
}
