// =============================================================================
// Project Data Cleaner - Duration Resolver
// =============================================================================
//
// Resolves worked time to fractional hours. Clock forms ("3:30", "1:15:00")
// are converted; decimal hours may use either separator ("3,6", "2.08").
//
// =============================================================================

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// clockPattern matches H:MM, HH:MM and HH:MM:SS.
var clockPattern = regexp.MustCompile(`^(\d{1,3}):(\d{2})(?::(\d{2}))?$`)

// ResolveDuration resolves a duration to fractional hours rounded to 2
// decimals. "3:30" is 3.5, "3,6" is 3.6 and "2.08" stays 2.08. An
// unparseable duration degrades to the empty value, never to zero.
func ResolveDuration(raw RawValue) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	text := strings.TrimSpace(strings.Trim(raw.Trimmed(), `"'`))
	if IsNullToken(text) {
		return emptyOutcome(raw)
	}

	var hours decimal.Decimal
	reason := "decimal hours"

	if m := clockPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds := 0
		if m[3] != "" {
			seconds, _ = strconv.Atoi(m[3])
		}
		if minutes > 59 || seconds > 59 {
			return failed(raw, fmt.Sprintf("minutes and seconds must be 0-59 in %q", text))
		}
		hours = decimal.NewFromInt(int64(h)).
			Add(decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))).
			Add(decimal.NewFromInt(int64(seconds)).Div(decimal.NewFromInt(3600)))
		reason = "clock time converted to hours"
	} else {
		s := strings.Replace(text, ",", ".", 1)
		if strings.ContainsAny(s, ",eE") {
			return failed(raw, fmt.Sprintf("could not parse duration %q", text))
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return failed(raw, fmt.Sprintf("could not parse duration %q", text))
		}
		if strings.Contains(text, ",") {
			reason = "decimal comma replaced"
		}
		hours = d
	}

	if hours.IsNegative() {
		return failed(raw, fmt.Sprintf("negative duration %q", text))
	}

	return settle(raw, Number(hours.Round(2).InexactFloat64(), -1), false, reason)
}
