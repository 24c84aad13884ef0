package postgres

import (
	"database/sql"
	"fmt"

	"github.com/giamma80/gymbro-platform-sub001/core/platform"
	"github.com/giamma80/gymbro-platform-sub001/dbschema/types"
)

// Reader reads the grants state of a schema from a PostgreSQL database
type Reader struct {
	db     *sql.DB
	schema string
}

// NewReader creates a PostgreSQL grants reader scoped to a schema
func NewReader(db *sql.DB, schema string) *Reader {
	if schema == "" {
		schema = "public"
	}
	return &Reader{
		db:     db,
		schema: schema,
	}
}

// ReadGrants reads the complete grants state of the schema
func (r *Reader) ReadGrants() (*types.GrantsSnapshot, error) {
	snapshot := &types.GrantsSnapshot{Schema: r.schema}

	exists, err := r.readSchemaExists()
	if err != nil {
		return nil, fmt.Errorf("failed to check schema existence: %w", err)
	}
	snapshot.SchemaExists = exists

	roles, err := r.readRoles()
	if err != nil {
		return nil, fmt.Errorf("failed to read roles: %w", err)
	}
	snapshot.Roles = roles

	// Privilege queries on a missing schema would error out.
	if !exists {
		return snapshot, nil
	}

	usage, err := r.readSchemaUsage(roles)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema privileges: %w", err)
	}
	snapshot.SchemaUsage = usage

	tableGrants, err := r.readTableGrants()
	if err != nil {
		return nil, fmt.Errorf("failed to read table grants: %w", err)
	}
	snapshot.TableGrants = tableGrants

	sequenceGrants, err := r.readSequenceGrants()
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence grants: %w", err)
	}
	snapshot.SequenceGrants = sequenceGrants

	return snapshot, nil
}

// readSchemaExists checks the schema in information_schema.schemata
func (r *Reader) readSchemaExists() (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.schemata
			WHERE schema_name = $1
		)`

	if err := r.db.QueryRow(query, r.schema).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query schemata: %w", err)
	}
	return exists, nil
}

// readRoles reads all non-system roles from the database
func (r *Reader) readRoles() ([]types.DBRole, error) {
	rolesQuery := `
		SELECT
			rolname,
			rolcanlogin,
			rolinherit,
			rolbypassrls
		FROM pg_roles
		WHERE rolname NOT LIKE 'pg\_%'  -- Exclude system roles
		ORDER BY rolname`

	rows, err := r.db.Query(rolesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []types.DBRole
	for rows.Next() {
		var role types.DBRole
		err := rows.Scan(
			&role.Name,
			&role.Login,
			&role.Inherit,
			&role.BypassRLS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}

		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

// readSchemaUsage checks USAGE and CREATE on the schema for the API roles
func (r *Reader) readSchemaUsage(roles []types.DBRole) ([]types.SchemaUsage, error) {
	apiRoles := make(map[string]bool, 3)
	for _, name := range platform.APIRoles() {
		apiRoles[name] = true
	}

	usageQuery := `
		SELECT
			has_schema_privilege($1, $2, 'USAGE'),
			has_schema_privilege($1, $2, 'CREATE')`

	var usages []types.SchemaUsage
	for _, role := range roles {
		if !apiRoles[role.Name] {
			continue
		}

		usage := types.SchemaUsage{Role: role.Name}
		err := r.db.QueryRow(usageQuery, role.Name, r.schema).Scan(&usage.HasUsage, &usage.HasCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to check schema privileges for role %s: %w", role.Name, err)
		}

		usages = append(usages, usage)
	}

	return usages, nil
}

// readTableGrants reads table privileges granted in the schema
func (r *Reader) readTableGrants() ([]types.TableGrant, error) {
	grantsQuery := `
		SELECT grantee, table_name, privilege_type
		FROM information_schema.role_table_grants
		WHERE table_schema = $1
		AND grantee NOT IN ('PUBLIC')
		ORDER BY table_name, grantee, privilege_type`

	rows, err := r.db.Query(grantsQuery, r.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query table grants: %w", err)
	}
	defer rows.Close()

	var grants []types.TableGrant
	for rows.Next() {
		var grant types.TableGrant
		if err := rows.Scan(&grant.Grantee, &grant.Table, &grant.Privilege); err != nil {
			return nil, fmt.Errorf("failed to scan table grant: %w", err)
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table grant rows: %w", err)
	}

	return grants, nil
}

// readSequenceGrants reads sequence privileges granted in the schema.
// information_schema.role_usage_grants only covers USAGE, so the pg_catalog
// ACLs are consulted instead.
func (r *Reader) readSequenceGrants() ([]types.SequenceGrant, error) {
	grantsQuery := `
		SELECT
			grt.grantee::regrole::text AS grantee,
			c.relname AS sequence_name,
			grt.privilege_type
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace,
		LATERAL aclexplode(COALESCE(c.relacl, acldefault('r', c.relowner))) AS grt
		WHERE c.relkind = 'S'
		AND n.nspname = $1
		ORDER BY c.relname, grantee, grt.privilege_type`

	rows, err := r.db.Query(grantsQuery, r.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence grants: %w", err)
	}
	defer rows.Close()

	var grants []types.SequenceGrant
	for rows.Next() {
		var grant types.SequenceGrant
		if err := rows.Scan(&grant.Grantee, &grant.Sequence, &grant.Privilege); err != nil {
			return nil, fmt.Errorf("failed to scan sequence grant: %w", err)
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sequence grant rows: %w", err)
	}

	return grants, nil
}
