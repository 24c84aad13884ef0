// Package apikeys mints the long-lived PostgREST API keys for a service
// project: HS256 JWTs carrying the anon or service_role claim, signed with
// the project's JWT secret.
package apikeys

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/giamma80/gymbro-platform-sub001/core/platform"
)

// DefaultTTL matches the lifetime Supabase uses for project API keys.
const DefaultTTL = 365 * 24 * time.Hour

// Options controls key generation.
type Options struct {
	// Secret is the project JWT secret. Required.
	Secret string
	// ProjectRef identifies the Supabase project the key belongs to.
	ProjectRef string
	// TTL is the key lifetime. Defaults to DefaultTTL.
	TTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Keys holds the minted key pair for a project.
type Keys struct {
	AnonKey        string `json:"anon_key"`
	ServiceRoleKey string `json:"service_role_key"`
}

// Generate mints anon and service_role keys with the given options.
func Generate(opts Options) (*Keys, error) {
	anon, err := GenerateForRole(platform.RoleAnon, opts)
	if err != nil {
		return nil, err
	}
	serviceRole, err := GenerateForRole(platform.RoleServiceRole, opts)
	if err != nil {
		return nil, err
	}
	return &Keys{AnonKey: anon, ServiceRoleKey: serviceRole}, nil
}

// GenerateForRole mints a single key for the given Supabase role.
func GenerateForRole(role string, opts Options) (string, error) {
	if opts.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	switch role {
	case platform.RoleAnon, platform.RoleServiceRole, platform.RoleAuthenticated:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	issuedAt := now()
	claims := jwt.MapClaims{
		"role": role,
		"iss":  "supabase",
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(ttl).Unix(),
	}
	if opts.ProjectRef != "" {
		claims["ref"] = opts.ProjectRef
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s key: %w", role, err)
	}
	return signed, nil
}
