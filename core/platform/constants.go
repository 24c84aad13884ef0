package platform

import (
	"fmt"
	"regexp"
	"strings"
)

// Supabase API roles that every exposed schema is granted to.
const (
	RoleAnon          = "anon"
	RoleAuthenticated = "authenticated"
	RoleServiceRole   = "service_role"
)

// APIRoles lists the Supabase roles in grant order.
func APIRoles() []string {
	return []string{RoleAnon, RoleAuthenticated, RoleServiceRole}
}

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// NormalizeSchemaName derives a PostgreSQL schema name from a service name.
// Kebab-case service names become snake_case schemas (calorie-balance ->
// calorie_balance). Names that are already valid identifiers pass through.
func NormalizeSchemaName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ValidateSchemaName checks that a schema name is a plain lowercase
// PostgreSQL identifier. Quoted or mixed-case identifiers are rejected on
// purpose: the platform policy mandates snake_case schema names.
func ValidateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name is empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("schema name %q exceeds 63 characters", name)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("schema name %q is not a valid snake_case identifier", name)
	}
	return nil
}

// ValidateServiceName checks that a service name is lowercase kebab-case.
func ValidateServiceName(name string) error {
	if name == "" {
		return fmt.Errorf("service name is empty")
	}
	for _, part := range strings.Split(name, "-") {
		if part == "" || !identifierRe.MatchString(part) {
			return fmt.Errorf("service name %q is not a valid kebab-case name", name)
		}
	}
	return nil
}
