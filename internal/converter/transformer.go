// =============================================================================
// Project Data Cleaner - Record Resolver
// =============================================================================
//
// This module turns raw records into clean records. Each column bound to a
// FieldSpec goes through normalize.Resolve; the outcome is recorded in the
// ledger and, when it needs review, logged.
//
// COLUMN HANDLING:
//   - Columns with a FieldSpec: resolved, outcome recorded.
//   - Columns without a FieldSpec: copied verbatim. Null tokens left in them
//     are cleared later by validation.Finalize, which records them.
//   - Absent cells (short rows) resolve like empty input.
//
// LOGGING:
//   Failed and Corrected outcomes are logged at warn level, one line per
//   value, so they all land in the warnings log.
//
// =============================================================================

package converter

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
	"github.com/ginjaninja78/project-data-cleaner/internal/types"
)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver resolves the records of one file. It holds no per-record state;
// the ledger is passed in by the caller.
type Resolver struct {
	schema  *normalize.Schema
	headers []string
	file    string
	logger  *zap.Logger
}

// NewResolver creates a Resolver for a file with the given headers. file is
// added to log lines; leave it empty when logger already carries it.
func NewResolver(schema *normalize.Schema, headers []string, file string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		schema:  schema,
		headers: headers,
		file:    file,
		logger:  logger,
	}
}

// ResolveRecord resolves every column of rec and records the outcomes in l.
//
// PARAMETERS:
//   - l: The ledger of the current file run.
//   - rec: The raw record.
//
// RETURNS:
//   - The clean record. Every header of the file has an entry.
func (r *Resolver) ResolveRecord(l *ledger.Ledger, rec types.Record) types.CleanRecord {
	clean := types.CleanRecord{
		RowNumber: rec.RowNumber,
		Fields:    make(map[string]string, len(r.headers)),
	}

	for _, header := range r.headers {
		raw := rec.Value(header)

		spec, ok := r.schema.Field(header)
		if !ok {
			clean.Fields[header] = raw.Text
			continue
		}

		value, outcome := normalize.Resolve(spec, raw)
		clean.Fields[header] = value.String()
		l.Record(rec.RowNumber, header, outcome)
		r.logOutcome(rec, header, outcome)
	}

	return clean
}

// ResolveAll resolves records in order.
func (r *Resolver) ResolveAll(l *ledger.Ledger, records []types.Record) []types.CleanRecord {
	out := make([]types.CleanRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, r.ResolveRecord(l, rec))
	}
	return out
}

// logOutcome logs outcomes that need review.
func (r *Resolver) logOutcome(rec types.Record, field string, o normalize.Outcome) {
	switch o.Kind {
	case normalize.OutcomeFailed:
		r.logger.Warn("Value could not be resolved", r.outcomeFields(rec, field, o)...)
	case normalize.OutcomeCorrected:
		r.logger.Warn("Value corrected", r.outcomeFields(rec, field, o)...)
	case normalize.OutcomeStandardized:
		r.logger.Debug("Value standardized", r.outcomeFields(rec, field, o)...)
	}
}

func (r *Resolver) outcomeFields(rec types.Record, field string, o normalize.Outcome) []zap.Field {
	fields := make([]zap.Field, 0, 7)
	if r.file != "" {
		fields = append(fields, zap.String("file", r.file))
	}
	return append(fields,
		zap.String("field", field),
		zap.Int("row", rec.RowNumber),
		zap.Int("line", rec.LineNumber),
		zap.String("original", o.Original),
		zap.String("result", o.Result),
		zap.String("reason", o.Reason),
	)
}

// ResolveRecord resolves one record against schema without logging.
// headers fixes the output columns; nil means the columns of rec.
func ResolveRecord(l *ledger.Ledger, rec types.Record, schema *normalize.Schema, headers []string) types.CleanRecord {
	if headers == nil {
		for header := range rec.Values {
			headers = append(headers, header)
		}
		sort.Strings(headers)
	}
	return NewResolver(schema, headers, "", nil).ResolveRecord(l, rec)
}
