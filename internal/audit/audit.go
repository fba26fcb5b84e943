// =============================================================================
// Project Data Cleaner - Audit Sink
// =============================================================================
//
// Persists the audit trail of a run (every Failed and Corrected outcome) to a
// SQL table so reviewers can query what was changed and why.
//
// SUPPORTED DRIVERS:
//   - postgres (github.com/lib/pq)
//   - sqlite3  (github.com/mattn/go-sqlite3)
//
// TABLE (default name cleaning_audit):
//
//   run_id          TEXT      uuid of the cleaner run
//   dataset         TEXT      dataset code
//   source_file     TEXT      input file path
//   source_row      INTEGER   1-based data row
//   column_name     TEXT
//   original_value  TEXT
//   new_value       TEXT      "" when the value could not be resolved
//   outcome         TEXT      failed | corrected
//   reason          TEXT
//   cleaned_at      TIMESTAMP
//
// =============================================================================

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ginjaninja78/project-data-cleaner/internal/config"
	"github.com/ginjaninja78/project-data-cleaner/internal/ledger"
	"github.com/ginjaninja78/project-data-cleaner/internal/normalize"
)

// DefaultTable is the audit table used when none is configured.
const DefaultTable = "cleaning_audit"

// =============================================================================
// OPERATION
// =============================================================================

// Operation is one audited cleaning operation.
type Operation struct {
	RunID         string    `db:"run_id"`
	Dataset       string    `db:"dataset"`
	SourceFile    string    `db:"source_file"`
	SourceRow     int       `db:"source_row"`
	ColumnName    string    `db:"column_name"`
	OriginalValue string    `db:"original_value"`
	NewValue      string    `db:"new_value"`
	Outcome       string    `db:"outcome"`
	Reason        string    `db:"reason"`
	CleanedAt     time.Time `db:"cleaned_at"`
}

// AuditedKinds are the outcome kinds written to the audit table.
var AuditedKinds = []normalize.OutcomeKind{normalize.OutcomeFailed, normalize.OutcomeCorrected}

// Operations converts the Failed and Corrected ledger entries of one file
// to audit rows.
func Operations(runID, dataset, sourceFile string, l *ledger.Ledger, at time.Time) []Operation {
	entries := l.Entries(AuditedKinds...)
	ops := make([]Operation, 0, len(entries))
	for _, e := range entries {
		ops = append(ops, Operation{
			RunID:         runID,
			Dataset:       dataset,
			SourceFile:    sourceFile,
			SourceRow:     e.Row,
			ColumnName:    e.Field,
			OriginalValue: e.Outcome.Original,
			NewValue:      e.Outcome.Result,
			Outcome:       e.Outcome.Kind.String(),
			Reason:        e.Outcome.Reason,
			CleanedAt:     at,
		})
	}
	return ops
}

// =============================================================================
// SINK
// =============================================================================

// Sink receives the audit rows of each processed file. Implementations must
// be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, ops []Operation) error
}

// SQLSink writes operations to a SQL table.
type SQLSink struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// Open connects to the configured database and ensures the audit table
// exists.
func Open(ctx context.Context, cfg config.AuditConfig, logger *zap.Logger) (*SQLSink, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}
	if cfg.Driver == "sqlite3" {
		// One writer at a time; also keeps ":memory:" on a single database.
		db.SetMaxOpenConns(1)
	}

	sink, err := NewSQLSink(ctx, db, cfg.Table, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

// NewSQLSink wraps an open database and creates the audit table if needed.
func NewSQLSink(ctx context.Context, db *sqlx.DB, table string, logger *zap.Logger) (*SQLSink, error) {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SQLSink{db: db, table: table, logger: logger}
	if err := s.setupTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// setupTable ensures the audit table exists.
func (s *SQLSink) setupTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id TEXT NOT NULL,
			dataset TEXT NOT NULL,
			source_file TEXT NOT NULL,
			source_row INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL,
			cleaned_at TIMESTAMP NOT NULL
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}

	s.logger.Debug("Ensured audit table exists", zap.String("table", s.table))
	return nil
}

// Write inserts ops in one transaction.
func (s *SQLSink) Write(ctx context.Context, ops []Operation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s
		(run_id, dataset, source_file, source_row, column_name,
		 original_value, new_value, outcome, reason, cleaned_at)
		VALUES (:run_id, :dataset, :source_file, :source_row, :column_name,
		 :original_value, :new_value, :outcome, :reason, :cleaned_at)
	`, s.table)

	for _, op := range ops {
		if _, err := tx.NamedExecContext(ctx, insertSQL, op); err != nil {
			return fmt.Errorf("failed to insert audit row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Recorded cleaning operations",
		zap.String("table", s.table),
		zap.Int("count", len(ops)),
	)
	return nil
}

// Count returns the number of audit rows stored for runID.
func (s *SQLSink) Count(ctx context.Context, runID string) (int, error) {
	var n int
	query := s.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE run_id = ?", s.table))
	if err := s.db.GetContext(ctx, &n, query, runID); err != nil {
		return 0, fmt.Errorf("failed to count audit rows: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
