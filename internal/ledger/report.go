package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// =============================================================================
// FIELD STATISTICS
// =============================================================================

// FieldStats summarizes the outcomes of one field.
type FieldStats struct {
	// Field is the column header.
	Field string

	// Total is the number of outcomes recorded for the field.
	Total int

	// Counts holds the number of outcomes per kind.
	Counts map[normalize.OutcomeKind]int

	numbers    []float64
	nonNumeric int
}

// Count returns the number of outcomes of kind k.
func (s FieldStats) Count(k normalize.OutcomeKind) int {
	return s.Counts[k]
}

// SuccessRate is (Unchanged+Corrected+Standardized+Empty)/Total.
func (s FieldStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Total-s.Counts[normalize.OutcomeFailed]) / float64(s.Total)
}

// NumericProfile describes the range of a numeric field.
type NumericProfile struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// Profile returns the range of the field's canonical values. It is only
// available when every non-empty successful result is numeric.
func (s FieldStats) Profile() (NumericProfile, bool) {
	if s.nonNumeric > 0 || len(s.numbers) == 0 {
		return NumericProfile{}, false
	}

	data := stats.Float64Data(s.numbers)
	p := NumericProfile{Count: len(s.numbers)}
	var err error
	if p.Min, err = stats.Min(data); err != nil {
		return NumericProfile{}, false
	}
	if p.Max, err = stats.Max(data); err != nil {
		return NumericProfile{}, false
	}
	if p.Mean, err = stats.Mean(data); err != nil {
		return NumericProfile{}, false
	}
	if p.Median, err = stats.Median(data); err != nil {
		return NumericProfile{}, false
	}
	return p, true
}

func (s *FieldStats) add(o normalize.Outcome) {
	s.Total++
	s.Counts[o.Kind]++

	if !o.Kind.IsSuccess() || o.Result == "" {
		return
	}
	if f, err := strconv.ParseFloat(o.Result, 64); err == nil {
		s.numbers = append(s.numbers, f)
	} else {
		s.nonNumeric++
	}
}

func (s FieldStats) clone() *FieldStats {
	c := &FieldStats{
		Field:      s.Field,
		Total:      s.Total,
		Counts:     make(map[normalize.OutcomeKind]int, len(s.Counts)),
		numbers:    append([]float64(nil), s.numbers...),
		nonNumeric: s.nonNumeric,
	}
	for k, n := range s.Counts {
		c.Counts[k] = n
	}
	return c
}

// =============================================================================
// QUALITY REPORT
// =============================================================================

// QualityReport holds per-field statistics for one file or a merged run.
// Reports are values; Merge returns a new report.
type QualityReport struct {
	// File is the source file name, or the label of a merged report.
	File string

	fields map[string]*FieldStats
}

func (r *QualityReport) add(field string, o normalize.Outcome) {
	if r.fields == nil {
		r.fields = make(map[string]*FieldStats)
	}
	s, ok := r.fields[field]
	if !ok {
		s = &FieldStats{Field: field, Counts: make(map[normalize.OutcomeKind]int)}
		r.fields[field] = s
	}
	s.add(o)
}

// Fields returns the statistics of every field, sorted by field name.
func (r QualityReport) Fields() []FieldStats {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FieldStats, 0, len(names))
	for _, name := range names {
		out = append(out, *r.fields[name].clone())
	}
	return out
}

// Field returns the statistics of one field.
func (r QualityReport) Field(name string) (FieldStats, bool) {
	s, ok := r.fields[name]
	if !ok {
		return FieldStats{}, false
	}
	return *s.clone(), true
}

// Totals sums every field into one FieldStats.
func (r QualityReport) Totals() FieldStats {
	total := FieldStats{Field: "total", Counts: make(map[normalize.OutcomeKind]int)}
	for _, s := range r.fields {
		total.Total += s.Total
		for k, n := range s.Counts {
			total.Counts[k] += n
		}
	}
	return total
}

// Merge sums two reports field by field. The File label is kept when both
// reports share it and cleared otherwise.
func (r QualityReport) Merge(other QualityReport) QualityReport {
	merged := QualityReport{fields: make(map[string]*FieldStats)}
	if r.File == other.File {
		merged.File = r.File
	}

	for _, src := range []QualityReport{r, other} {
		for name, s := range src.fields {
			dst, ok := merged.fields[name]
			if !ok {
				merged.fields[name] = s.clone()
				continue
			}
			dst.Total += s.Total
			for k, n := range s.Counts {
				dst.Counts[k] += n
			}
			dst.numbers = append(dst.numbers, s.numbers...)
			dst.nonNumeric += s.nonNumeric
		}
	}
	return merged
}

// Format renders the report as the plain-text block written to
// cleaning_report.txt.
func (r QualityReport) Format() string {
	var b strings.Builder

	title := r.File
	if title == "" {
		title = "(all files)"
	}
	fmt.Fprintf(&b, "Data Quality Report: %s\n", title)
	b.WriteString(strings.Repeat("-", 80) + "\n")

	fmt.Fprintf(&b, "%-20s %6s", "Field", "Total")
	for _, k := range normalize.OutcomeKinds {
		fmt.Fprintf(&b, " %12s", k.String())
	}
	fmt.Fprintf(&b, " %8s\n", "success")

	for _, s := range append(r.Fields(), r.Totals()) {
		fmt.Fprintf(&b, "%-20s %6d", s.Field, s.Total)
		for _, k := range normalize.OutcomeKinds {
			fmt.Fprintf(&b, " %12d", s.Count(k))
		}
		fmt.Fprintf(&b, " %7.2f%%\n", s.SuccessRate()*100)

		if p, ok := s.Profile(); ok {
			fmt.Fprintf(&b, "%-20s range %.2f .. %.2f, mean %.2f, median %.2f (n=%d)\n",
				"", p.Min, p.Max, p.Mean, p.Median, p.Count)
		}
	}

	return b.String()
}
