// Package dbschema provides the database connection layer for grants
// provisioning and verification against Supabase-hosted PostgreSQL projects.
package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/giamma80/gymbro-platform-sub001/dbschema/postgres"
	"github.com/giamma80/gymbro-platform-sub001/dbschema/types"
)

// DatabaseConnection wraps a live PostgreSQL connection together with the
// grants reader and writer bound to it.
type DatabaseConnection struct {
	db     *sql.DB
	info   types.DBInfo
	writer *postgres.Writer
}

// Connect opens a database/sql connection for the given PostgreSQL URL using
// the pgx driver. Pool parameters understood only by pgxpool are stripped
// from the URL first.
func Connect(dbURL string) (*sql.DB, error) {
	if !strings.HasPrefix(dbURL, "postgres://") && !strings.HasPrefix(dbURL, "postgresql://") {
		return nil, fmt.Errorf("unsupported database URL %q: only postgres:// URLs are supported", dbURL)
	}
	db, err := sql.Open("pgx", removePostgresPoolParams(dbURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// ConnectToDatabase opens a connection and verifies it with a ping.
func ConnectToDatabase(dbURL string) (*DatabaseConnection, error) {
	db, err := Connect(dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var version string
	if err := db.QueryRow("SELECT version()").Scan(&version); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	return &DatabaseConnection{
		db: db,
		info: types.DBInfo{
			Dialect: "postgres",
			Version: version,
			URL:     dbURL,
		},
		writer: postgres.NewWriter(db),
	}, nil
}

// Info returns connection metadata.
func (c *DatabaseConnection) Info() types.DBInfo {
	return c.info
}

// Reader returns a grants reader scoped to the given schema.
func (c *DatabaseConnection) Reader(schema string) types.GrantsReader {
	return postgres.NewReader(c.db, schema)
}

// Writer returns the provisioning SQL writer for this connection.
func (c *DatabaseConnection) Writer() types.SchemaWriter {
	return c.writer
}

// Close closes the underlying database connection.
func (c *DatabaseConnection) Close() error {
	return c.db.Close()
}

// ExecContext executes a statement outside any managed transaction.
func (c *DatabaseConnection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Query runs a query outside any managed transaction.
func (c *DatabaseConnection) Query(query string, args ...any) (*sql.Rows, error) {
	return c.db.Query(query, args...)
}

// removePostgresPoolParams strips pgxpool-specific parameters from a
// PostgreSQL URL. database/sql connections reject them.
func removePostgresPoolParams(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}

	query := parsed.Query()
	query.Del("pool_max_conns")
	query.Del("pool_min_conns")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
