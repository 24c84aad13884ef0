package types

// DBInfo contains connection and metadata information
type DBInfo struct {
	Dialect string `json:"dialect"` // always postgres for Supabase projects
	Version string `json:"version"`
	URL     string `json:"url"` // database connection URL (for reference)
}

// DBRole represents a PostgreSQL role read from the database
type DBRole struct {
	Name      string `json:"name"`
	Login     bool   `json:"login"`
	Inherit   bool   `json:"inherit"`
	BypassRLS bool   `json:"bypass_rls"`
}

// SchemaUsage represents a role's privileges on a schema
type SchemaUsage struct {
	Role      string `json:"role"`
	HasUsage  bool   `json:"has_usage"`
	HasCreate bool   `json:"has_create"`
}

// TableGrant represents a privilege granted to a role on a table
type TableGrant struct {
	Grantee   string `json:"grantee"`
	Table     string `json:"table"`
	Privilege string `json:"privilege"` // SELECT, INSERT, UPDATE, DELETE, ...
}

// SequenceGrant represents a privilege granted to a role on a sequence
type SequenceGrant struct {
	Grantee   string `json:"grantee"`
	Sequence  string `json:"sequence"`
	Privilege string `json:"privilege"` // USAGE, SELECT, UPDATE
}

// GrantsSnapshot is the complete grants state of one schema as read from a
// live database.
type GrantsSnapshot struct {
	Schema         string          `json:"schema"`
	SchemaExists   bool            `json:"schema_exists"`
	Roles          []DBRole        `json:"roles"`
	SchemaUsage    []SchemaUsage   `json:"schema_usage"`
	TableGrants    []TableGrant    `json:"table_grants"`
	SequenceGrants []SequenceGrant `json:"sequence_grants"`
}

// HasRole reports whether a role with the given name exists in the snapshot.
func (s *GrantsSnapshot) HasRole(name string) bool {
	for _, role := range s.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// UsageFor returns the schema usage entry for a role, if present.
func (s *GrantsSnapshot) UsageFor(role string) (SchemaUsage, bool) {
	for _, usage := range s.SchemaUsage {
		if usage.Role == role {
			return usage, true
		}
	}
	return SchemaUsage{}, false
}

// GrantsReader reads the grants state of a schema from a database
type GrantsReader interface {
	ReadGrants() (*GrantsSnapshot, error)
}

// SchemaWriter executes provisioning SQL against a database
type SchemaWriter interface {
	ExecuteSQL(sql string) error
	BeginTransaction() error
	CommitTransaction() error
	RollbackTransaction() error
	SetDryRun(dryRun bool)
	IsDryRun() bool
}
