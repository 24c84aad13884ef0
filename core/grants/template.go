// Package grants renders the SQL grants script that exposes a custom schema
// to the Supabase API roles.
//
// The template is a static SQL skeleton with a single substitutable token,
// SchemaToken. Rendering replaces every occurrence with the quoted schema
// name and fails if the result would still contain an unsubstituted token.
package grants

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/giamma80/gymbro-platform-sub001/core/platform"
)

// SchemaToken is the placeholder replaced by the target schema name.
const SchemaToken = "{{SCHEMA_NAME}}"

//go:embed templates/grant_schema.sql
var grantSchemaSQL string

// Template returns the raw grants template text.
func Template() string {
	return grantSchemaSQL
}

// Render substitutes the schema token in the grants template and returns the
// executable SQL. The schema name is validated and quoted as an identifier.
func Render(schema string) (string, error) {
	return RenderTemplate(grantSchemaSQL, schema)
}

// RenderTemplate substitutes the schema token in an arbitrary template. Used
// by tests and by operators supplying a custom template file.
func RenderTemplate(template, schema string) (string, error) {
	if err := platform.ValidateSchemaName(schema); err != nil {
		return "", fmt.Errorf("cannot render grants: %w", err)
	}
	if !strings.Contains(template, SchemaToken) {
		return "", fmt.Errorf("template does not contain the %s token", SchemaToken)
	}

	rendered := strings.ReplaceAll(template, SchemaToken, pq.QuoteIdentifier(schema))

	// A template with a mistyped token (e.g. {{SCHEMA}}) would silently
	// produce broken SQL, so reject any leftover double-brace token.
	if idx := strings.Index(rendered, "{{"); idx != -1 {
		end := strings.Index(rendered[idx:], "}}")
		if end == -1 {
			end = len(rendered) - idx
		} else {
			end += 2
		}
		return "", fmt.Errorf("template contains unsubstituted token %q", rendered[idx:idx+end])
	}

	return rendered, nil
}
