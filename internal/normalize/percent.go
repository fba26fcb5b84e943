// =============================================================================
// Project Data Cleaner - Percentage Resolver
// =============================================================================
//
// Resolves completion percentages to an integer string with a "%" suffix.
//
// RULES:
//   - "85%", "85,7%"          -> integer part before the sign
//   - "R$ 0,95", "0.5", "1,0" -> fraction of 1, times 100, rounded
//   - "0,956", "R$ 0,955"     -> fraction with 3+ decimals, never thousands
//   - "68,91", "12.5"         -> already percentage scale, rounded
//   - "40"                    -> percentage scale
//
// Values above the cap are clamped and marked Corrected. Negative and
// unparseable values fail.
//
// =============================================================================

package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPercentCap is the ceiling applied when PercentRules.Cap is unset.
const DefaultPercentCap = 100

// PercentRules configures the percentage resolver.
type PercentRules struct {
	// Cap is the maximum percentage. Zero means DefaultPercentCap.
	Cap int
}

func (r PercentRules) ceiling() decimal.Decimal {
	if r.Cap <= 0 {
		return decimal.NewFromInt(DefaultPercentCap)
	}
	return decimal.NewFromInt(int64(r.Cap))
}

// ResolvePercentage resolves a percentage to "NN%".
func ResolvePercentage(raw RawValue, rules PercentRules) (CanonicalValue, Outcome) {
	if raw.IsNull() {
		return emptyOutcome(raw)
	}

	text := strings.Trim(raw.Trimmed(), `"'`)
	suffixed := strings.HasSuffix(text, "%")

	tok := cleanAmount(strings.TrimSuffix(text, "%"))

	// A currency symbol marks a fraction, so its separator is decimal.
	var d decimal.Decimal
	fraction := false
	if tok.hadSymbol && !suffixed {
		d, fraction = parseFraction(tok.digits)
	}
	if !fraction {
		var err error
		d, err = parseLocaleNumber(tok.digits)
		if err != nil {
			return failed(raw, fmt.Sprintf("could not parse percentage: %v", err))
		}
	}
	if tok.negative {
		d = d.Neg()
	}

	var pct decimal.Decimal
	var reason string
	hasDecimal := strings.ContainsAny(tok.digits, ".,")

	switch {
	case suffixed:
		pct = d.Truncate(0)
		reason = "integer part of percentage kept"
	case tok.hadSymbol || (hasDecimal && d.LessThanOrEqual(decimal.NewFromInt(1))):
		pct = d.Mul(decimal.NewFromInt(100)).Round(0)
		reason = "fraction of 1 converted to percentage"
	default:
		pct = d.Round(0)
		reason = "rounded to integer percentage"
	}

	if pct.IsNegative() {
		return failed(raw, fmt.Sprintf("negative percentage %s", pct.String()))
	}

	repaired := tok.repaired
	if ceiling := rules.ceiling(); pct.GreaterThan(ceiling) {
		reason = fmt.Sprintf("%s%% capped at %s%%", pct.String(), ceiling.String())
		pct = ceiling
		repaired = true
	}

	return settle(raw, Text(fmt.Sprintf("%d%%", pct.IntPart())), repaired, reason)
}
