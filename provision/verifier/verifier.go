// Package verifier compares the grants state a service's schema should have
// with what a live database actually reports.
//
// The expected state follows directly from the grants template: the three
// Supabase API roles exist, each has USAGE on the schema, and each holds the
// full privilege set on every table in the schema. Anything missing is
// reported as drift; verification never mutates the database.
package verifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/giamma80/gymbro-platform-sub001/config"
	"github.com/giamma80/gymbro-platform-sub001/core/platform"
	"github.com/giamma80/gymbro-platform-sub001/dbschema/types"
)

// tablePrivileges is the privilege set GRANT ALL expands to for tables.
var tablePrivileges = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "TRUNCATE", "REFERENCES", "TRIGGER",
}

// Finding is a single piece of drift detected during verification
type Finding struct {
	// Kind classifies the finding: schema_missing, role_missing,
	// usage_missing, table_grant_missing.
	Kind string `json:"kind"`
	// Role is the affected role, when applicable
	Role string `json:"role,omitempty"`
	// Object is the affected table or schema, when applicable
	Object string `json:"object,omitempty"`
	// Detail is a human-readable description with the corrective action
	Detail string `json:"detail"`
}

// Report is the outcome of verifying one schema
type Report struct {
	Schema   string    `json:"schema"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether verification found no drift
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

// Summary renders the report as a short human-readable block
func (r *Report) Summary() string {
	if r.Clean() {
		return fmt.Sprintf("schema %s: grants verified, no drift", r.Schema)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "schema %s: %d finding(s)\n", r.Schema, len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  - [%s] %s\n", f.Kind, f.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Verify compares a grants snapshot against the expected state for the
// schema. A nil opts uses the default ignored-roles list.
func Verify(snapshot *types.GrantsSnapshot, opts *config.VerifyOptions) *Report {
	if opts == nil {
		opts = config.DefaultVerifyOptions()
	}

	report := &Report{Schema: snapshot.Schema}

	if !snapshot.SchemaExists {
		report.Findings = append(report.Findings, Finding{
			Kind:   "schema_missing",
			Object: snapshot.Schema,
			Detail: fmt.Sprintf("schema %q does not exist; create it before generating grants", snapshot.Schema),
		})
		return report
	}

	for _, role := range platform.APIRoles() {
		if opts.IsRoleIgnored(role) {
			continue
		}
		if !snapshot.HasRole(role) {
			report.Findings = append(report.Findings, Finding{
				Kind:   "role_missing",
				Role:   role,
				Detail: fmt.Sprintf("role %q does not exist; Supabase provisions it on every project, check the connection target", role),
			})
			continue
		}

		usage, ok := snapshot.UsageFor(role)
		if !ok || !usage.HasUsage {
			report.Findings = append(report.Findings, Finding{
				Kind:   "usage_missing",
				Role:   role,
				Object: snapshot.Schema,
				Detail: fmt.Sprintf("role %q has no USAGE on schema %q; run the generated grants script", role, snapshot.Schema),
			})
		}
	}

	report.Findings = append(report.Findings, verifyTableGrants(snapshot, opts)...)

	return report
}

// verifyTableGrants checks that every API role holds the full privilege set
// on every table of the schema.
func verifyTableGrants(snapshot *types.GrantsSnapshot, opts *config.VerifyOptions) []Finding {
	// grantee -> table -> privileges
	held := make(map[string]map[string]map[string]bool)
	tables := make(map[string]bool)
	for _, grant := range snapshot.TableGrants {
		tables[grant.Table] = true
		if held[grant.Grantee] == nil {
			held[grant.Grantee] = make(map[string]map[string]bool)
		}
		if held[grant.Grantee][grant.Table] == nil {
			held[grant.Grantee][grant.Table] = make(map[string]bool)
		}
		held[grant.Grantee][grant.Table][grant.Privilege] = true
	}

	var findings []Finding
	for table := range tables {
		for _, role := range platform.APIRoles() {
			if opts.IsRoleIgnored(role) || !snapshot.HasRole(role) {
				continue
			}
			var missing []string
			for _, privilege := range tablePrivileges {
				if !held[role][table][privilege] {
					missing = append(missing, privilege)
				}
			}
			if len(missing) > 0 {
				findings = append(findings, Finding{
					Kind:   "table_grant_missing",
					Role:   role,
					Object: table,
					Detail: fmt.Sprintf("role %q is missing %s on table %q; run the generated grants script", role, strings.Join(missing, ", "), table),
				})
			}
		}
	}

	sortFindings(findings)
	return findings
}

// sortFindings orders findings by object then role for stable output
func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Object != findings[j].Object {
			return findings[i].Object < findings[j].Object
		}
		return findings[i].Role < findings[j].Role
	})
}
