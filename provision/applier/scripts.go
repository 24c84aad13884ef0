package applier

import (
	"context"
	_ "embed"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"github.com/giamma80/gymbro-platform-sub001/dbschema"
)

//go:embed base/history.sql
var historySchemaSQL string

//go:embed base/record_script.sql
var recordScriptSQL string

//go:embed base/applied_scripts.sql
var appliedScriptsSQL string

// ScriptFunc executes one grants script against a database connection
type ScriptFunc func(context.Context, *dbschema.DatabaseConnection) error

// Script represents a numbered grants script for one service schema
type Script struct {
	Number int
	Schema string
	Up     ScriptFunc
}

// scriptFileRe matches generated script names: NNN_grant_<schema>.sql
var scriptFileRe = regexp.MustCompile(`^(\d{3,})_grant_([a-z_][a-z0-9_]*)\.sql$`)

// ScriptFileName builds the canonical file name for a grants script.
func ScriptFileName(number int, schema string) string {
	return fmt.Sprintf("%03d_grant_%s.sql", number, schema)
}

// ScriptFile holds the parsed components of a script file name
type ScriptFile struct {
	Number int
	Schema string
}

// ParseScriptFileName parses a generated script file name. Files that do not
// follow the naming convention return an error.
func ParseScriptFileName(name string) (*ScriptFile, error) {
	m := scriptFileRe.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("%q is not a grants script file name", name)
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid script number in %q: %w", name, err)
	}
	return &ScriptFile{Number: number, Schema: m[2]}, nil
}

// ScriptFuncFromSQLFilename returns a script function that reads SQL from a
// file in the provided filesystem and executes it statement by statement.
func ScriptFuncFromSQLFilename(filename string, fsys fs.FS) ScriptFunc {
	return func(ctx context.Context, conn *dbschema.DatabaseConnection) error {
		sqlText, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read script file: %w", err)
		}

		for _, stmt := range SplitSQLStatements(string(sqlText)) {
			if err := conn.Writer().ExecuteSQL(stmt); err != nil {
				return fmt.Errorf("failed to execute script SQL: %w", err)
			}
		}

		return nil
	}
}

// SplitSQLStatements splits a SQL string into individual statements.
// Line comments are dropped, and semicolons or comment markers inside single
// quoted literals are preserved. Comment and quote handling share one scan so
// a "--" inside a literal never truncates the statement.
func SplitSQLStatements(sqlText string) []string {
	var statements []string
	var b strings.Builder
	inString := false

	flush := func() {
		stmt := strings.TrimSpace(b.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		b.Reset()
	}

	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]
		if !inString && ch == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-' {
			// Line comment: skip to end of line.
			for i < len(sqlText) && sqlText[i] != '\n' {
				i++
			}
			b.WriteByte('\n')
			continue
		}
		if ch == '\'' {
			// A doubled quote inside a literal is an escaped quote.
			if inString && i+1 < len(sqlText) && sqlText[i+1] == '\'' {
				b.WriteByte(ch)
				b.WriteByte(sqlText[i+1])
				i++
				continue
			}
			inString = !inString
		}
		if ch == ';' && !inString {
			flush()
			continue
		}
		b.WriteByte(ch)
	}
	flush()

	return statements
}

// NoopScriptFunc is a no-op script function
func NoopScriptFunc(_ context.Context, _ *dbschema.DatabaseConnection) error {
	return nil
}

// ScriptFromSQL creates a script from a SQL string. This is useful for
// programmatically registering scripts without a filesystem.
func ScriptFromSQL(number int, schema, sqlText string) *Script {
	return &Script{
		Number: number,
		Schema: schema,
		Up: func(ctx context.Context, conn *dbschema.DatabaseConnection) error {
			for _, stmt := range SplitSQLStatements(sqlText) {
				if err := conn.Writer().ExecuteSQL(stmt); err != nil {
					return fmt.Errorf("failed to execute script SQL: %w", err)
				}
			}
			return nil
		},
	}
}
