// =============================================================================
// Project Data Cleaner - Date Resolver
// =============================================================================
//
// Resolves dates written in day-first or ISO layouts to zero-padded
// YYYY-MM-DD.
//
// SUPPORTED LAYOUTS (any of "/", "-", "." as separator, one kind per value):
//   - DD/MM/YY    (two-digit year, mapped to 2000+YY)
//   - DD/MM/YYYY
//   - YYYY-MM-DD
//
// A trailing time of day ("2025-01-05 00:00:00", "2025-01-05T08:30:00"), as
// written by spreadsheet exports, is dropped.
//
// When the month is greater than 12 and the day is not, the two are swapped
// and the outcome is marked Corrected ("2025-13-05" -> "2025-05-13").
//
// =============================================================================

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern captures the three date components, the separators between
// them and an optional time of day that is discarded.
var datePattern = regexp.MustCompile(
	`^(\d{1,4})([/.\-])(\d{1,2})([/.\-])(\d{1,4})(?:[ T]\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?)?$`,
)

// dateParts holds the numeric components of a date before validation.
type dateParts struct {
	year, month, day int
}

// splitDate matches text against the supported layouts.
func splitDate(text string) (dateParts, error) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return dateParts{}, fmt.Errorf("no supported date layout matches %q", text)
	}
	if m[2] != m[4] {
		return dateParts{}, fmt.Errorf("mixed separators %q and %q", m[2], m[4])
	}

	first, second, third := m[1], m[3], m[5]
	a, _ := strconv.Atoi(first)
	b, _ := strconv.Atoi(second)
	c, _ := strconv.Atoi(third)

	switch {
	case len(first) == 4:
		// YYYY-MM-DD
		if len(third) > 2 {
			return dateParts{}, fmt.Errorf("day %q has too many digits", third)
		}
		return dateParts{year: a, month: b, day: c}, nil
	case len(first) > 2:
		return dateParts{}, fmt.Errorf("day %q has too many digits", first)
	case len(third) == 2:
		// DD/MM/YY
		return dateParts{year: 2000 + c, month: b, day: a}, nil
	case len(third) == 4:
		// DD/MM/YYYY
		return dateParts{year: c, month: b, day: a}, nil
	default:
		return dateParts{}, fmt.Errorf("year %q must have 2 or 4 digits", third)
	}
}

// validDate reports whether the components form a real calendar date.
func validDate(p dateParts) bool {
	if p.month < 1 || p.month > 12 || p.day < 1 {
		return false
	}
	t := time.Date(p.year, time.Month(p.month), p.day, 0, 0, 0, 0, time.UTC)
	return t.Year() == p.year && int(t.Month()) == p.month && t.Day() == p.day
}

// ResolveDate resolves a date to ISO YYYY-MM-DD.
//
// EXAMPLES:
//
//	"20/02/26"   -> "2026-02-20" (Standardized)
//	"07.01.2026" -> "2026-01-07" (Standardized)
//	"2025-13-05" -> "2025-05-13" (Corrected, month/day swapped)
//	"2026-02-30" -> ""           (Failed)
func ResolveDate(raw RawValue) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	text := strings.Trim(raw.Trimmed(), `"'`)
	parts, err := splitDate(text)
	if err != nil {
		return failed(raw, err.Error())
	}

	swapped := false
	if parts.month > 12 && parts.day <= 12 {
		parts.month, parts.day = parts.day, parts.month
		swapped = true
	}

	if !validDate(parts) {
		return failed(raw, fmt.Sprintf("invalid calendar date (year %d, month %d, day %d)", parts.year, parts.month, parts.day))
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", parts.year, parts.month, parts.day)
	reason := "reformatted to YYYY-MM-DD"
	if swapped {
		reason = "month greater than 12, swapped month and day"
	}
	return settle(raw, Text(iso), swapped, reason)
}
