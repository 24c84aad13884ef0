// Package applier executes generated grants scripts against a live database.
//
// The manual workflow (paste the generated SQL into the project's SQL editor)
// remains the documented default; the applier exists for CI environments
// where the grants must land without a human in the loop. Applied scripts are
// recorded in a grants_history table so reruns are idempotent.
package applier

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/giamma80/gymbro-platform-sub001/dbschema"
)

// Status describes the apply state of a service's grants scripts
type Status struct {
	Service        string `json:"service"`
	AppliedScripts []int  `json:"applied_scripts"`
	PendingScripts []int  `json:"pending_scripts"`
	TotalScripts   int    `json:"total_scripts"`
}

// Applier applies grants scripts for one service against a database
type Applier struct {
	conn        *dbschema.DatabaseConnection
	provider    ScriptProvider
	service     string
	initialized bool
	logger      *slog.Logger
}

// NewFSApplier creates an applier that loads scripts from a filesystem,
// typically the generator's per-service output directory.
func NewFSApplier(conn *dbschema.DatabaseConnection, service string, fsys fs.FS) (*Applier, error) {
	provider, err := NewFSScriptProvider(fsys)
	if err != nil {
		return nil, err
	}
	return NewApplier(conn, service, provider), nil
}

// NewApplier creates an applier with the given connection and script provider
func NewApplier(conn *dbschema.DatabaseConnection, service string, provider ScriptProvider) *Applier {
	return &Applier{
		conn:     conn,
		provider: provider,
		service:  service,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger for the applier
func (a *Applier) WithLogger(l *slog.Logger) *Applier {
	tmp := *a
	tmp.logger = l
	return &tmp
}

// Provider returns the script provider
func (a *Applier) Provider() ScriptProvider {
	return a.provider
}

// Initialize creates the grants_history table if it doesn't exist
func (a *Applier) Initialize(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	_, err := a.conn.ExecContext(ctx, historySchemaSQL)
	if err != nil {
		return fmt.Errorf("failed to create grants_history table: %w", err)
	}

	a.initialized = true
	return nil
}

// AppliedScripts returns the script numbers already recorded for the service
func (a *Applier) AppliedScripts(ctx context.Context) ([]int, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}

	rows, err := a.conn.Query(appliedScriptsSQL, a.service)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied scripts: %w", err)
	}
	defer rows.Close()

	var applied []int
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan script number: %w", err)
		}
		applied = append(applied, number)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating script rows: %w", err)
	}

	return applied, nil
}

// GetStatus returns the apply status for the service
func (a *Applier) GetStatus(ctx context.Context) (*Status, error) {
	applied, err := a.AppliedScripts(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, number := range applied {
		appliedSet[number] = true
	}

	scripts := a.provider.Scripts()
	var pending []int
	for _, script := range scripts {
		if !appliedSet[script.Number] {
			pending = append(pending, script.Number)
		}
	}

	return &Status{
		Service:        a.service,
		AppliedScripts: applied,
		PendingScripts: pending,
		TotalScripts:   len(scripts),
	}, nil
}

// ApplyAll applies every pending script in a transaction each, recording it
// in grants_history. Already-recorded scripts are skipped.
func (a *Applier) ApplyAll(ctx context.Context) error {
	appliedSet := make(map[int]bool)
	// Dry runs must not touch the history table.
	if !a.conn.Writer().IsDryRun() {
		if err := a.Initialize(ctx); err != nil {
			return err
		}

		applied, err := a.AppliedScripts(ctx)
		if err != nil {
			return err
		}
		for _, number := range applied {
			appliedSet[number] = true
		}
	}

	runID := uuid.NewString()
	scripts := a.provider.Scripts()

	a.logger.Info("Applying grants scripts", "service", a.service, "runID", runID, "totalScripts", len(scripts))

	for _, script := range scripts {
		if appliedSet[script.Number] {
			a.logger.Info("Skipping script", "number", script.Number, "schema", script.Schema)
			continue
		}

		a.logger.Info("Applying script", "number", script.Number, "schema", script.Schema)

		if err := a.conn.Writer().BeginTransaction(); err != nil {
			return fmt.Errorf("failed to begin transaction for script %d: %w", script.Number, err)
		}

		if err := script.Up(ctx, a.conn); err != nil {
			_ = a.conn.Writer().RollbackTransaction()
			return fmt.Errorf("failed to apply script %d: %w", script.Number, err)
		}

		recordSQL := fmt.Sprintf(recordScriptSQL,
			script.Number, pq.QuoteLiteral(a.service), pq.QuoteLiteral(script.Schema), pq.QuoteLiteral(runID))
		if err := a.conn.Writer().ExecuteSQL(recordSQL); err != nil {
			_ = a.conn.Writer().RollbackTransaction()
			return fmt.Errorf("failed to record script %d: %w", script.Number, err)
		}

		if err := a.conn.Writer().CommitTransaction(); err != nil {
			return fmt.Errorf("failed to commit transaction for script %d: %w", script.Number, err)
		}

		a.logger.Info("Applied script", "number", script.Number, "schema", script.Schema)
	}

	a.logger.Info("All grants scripts applied", "service", a.service)
	return nil
}
