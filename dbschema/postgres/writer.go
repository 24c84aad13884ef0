package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Writer executes provisioning SQL against a PostgreSQL database. It manages
// a single transaction at a time and supports dry-run mode, where statements
// are logged instead of executed.
type Writer struct {
	db     *sql.DB
	tx     *sql.Tx
	dryRun bool
}

// NewWriter creates a PostgreSQL provisioning writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// SetDryRun toggles dry-run mode
func (w *Writer) SetDryRun(dryRun bool) {
	w.dryRun = dryRun
}

// IsDryRun reports whether the writer is in dry-run mode
func (w *Writer) IsDryRun() bool {
	return w.dryRun
}

// ExecuteSQL executes a statement inside the current transaction, or directly
// on the connection if no transaction is open.
func (w *Writer) ExecuteSQL(sqlText string) error {
	if w.dryRun {
		slog.Info("Dry run: would execute SQL", "sql", sqlText)
		return nil
	}

	var err error
	if w.tx != nil {
		_, err = w.tx.Exec(sqlText)
	} else {
		_, err = w.db.Exec(sqlText)
	}
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w\nSQL: %s", err, sqlText)
	}
	return nil
}

// BeginTransaction starts a transaction. Nested transactions are an error.
func (w *Writer) BeginTransaction() error {
	if w.dryRun {
		return nil
	}
	if w.tx != nil {
		return fmt.Errorf("transaction already in progress")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	w.tx = tx
	return nil
}

// CommitTransaction commits the current transaction
func (w *Writer) CommitTransaction() error {
	if w.dryRun {
		return nil
	}
	if w.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}

	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the current transaction
func (w *Writer) RollbackTransaction() error {
	if w.dryRun {
		return nil
	}
	if w.tx == nil {
		return fmt.Errorf("no transaction in progress")
	}

	err := w.tx.Rollback()
	w.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
